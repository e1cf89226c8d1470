package sketch

import (
	"fmt"
	"io"
	"os"

	"github.com/biogo/hts/bgzf"
	"gopkg.in/vmihailenco/msgpack.v2"
)

// SketchStore holds the sketches of an indexed reference collection, keyed by reference name
type SketchStore map[string]*Sketch

// AddSketch is a method to add a sketch to the store, checking that the reference name is not already in use
func (SketchStore SketchStore) AddSketch(newSketch *Sketch) error {
	if _, ok := SketchStore[newSketch.Name]; ok {
		return fmt.Errorf("duplicate reference name: %v", newSketch.Name)
	}
	SketchStore[newSketch.Name] = newSketch
	return nil
}

// Dump is a method to write a sketch store to disk (msgpack encoded, bgzf compressed)
func (SketchStore SketchStore) Dump(path string) error {
	b, err := msgpack.Marshal(SketchStore)
	if err != nil {
		return err
	}
	fh, err := os.Create(path)
	if err != nil {
		return err
	}
	writer := bgzf.NewWriter(fh, 1)
	if _, err := writer.Write(b); err != nil {
		fh.Close()
		return err
	}
	if err := writer.Close(); err != nil {
		fh.Close()
		return err
	}
	return fh.Close()
}

// Load is a method to populate a sketch store from disk
func (SketchStore SketchStore) Load(path string) error {
	fh, err := os.Open(path)
	if err != nil {
		return err
	}
	defer fh.Close()

	// make sure the bgzf magic block is present before decoding
	ok, err := bgzf.HasEOF(fh)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("sketch file has no bgzf magic block, it may be truncated: %v", path)
	}
	reader, err := bgzf.NewReader(fh, 0)
	if err != nil {
		return err
	}
	b, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	if err := reader.Close(); err != nil {
		return err
	}
	loaded := make(map[string]*Sketch)
	if err := msgpack.Unmarshal(b, &loaded); err != nil {
		return err
	}
	for name, loadedSketch := range loaded {
		SketchStore[name] = loadedSketch
	}
	return nil
}
