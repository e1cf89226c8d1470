package pipeline

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"os"

	"github.com/will-rowe/minnow/src/sketch"
)

// Info stores the runtime information
type Info struct {
	Version              string
	NumProc              int
	Profiling            bool
	KmerSize             uint
	WindowSize           int
	ContainmentThreshold float64
	IndexDir             string
	NumRefs              int

	// the following fields are populated by the running subcommand
	Index  IndexCmd
	Screen ScreenCmd
	db     sketch.SketchStore
}

// IndexCmd stores the runtime info for the index command
type IndexCmd struct {
	RefFiles []string
	OutDir   string
}

// ScreenCmd stores the runtime info for the screen command
type ScreenCmd struct {
	Fasta          bool
	BloomFilter    bool
	Trim           bool
	MinBaseQuality int
	MinReadLength  int
	TopHits        int
	OutFile        string
	PlotFile       string
}

// AttachDB is a method to attach a sketch store to the runtime
func (Info *Info) AttachDB(db sketch.SketchStore) {
	Info.db = db
}

// SaveDB is a method to write the attached sketch store to disk
func (Info *Info) SaveDB(filePath string) error {
	return Info.db.Dump(filePath)
}

// Dump is a method to dump the pipeline info to file
func (Info *Info) Dump(path string) error {
	fh, err := os.Create(path)
	if err != nil {
		return err
	}
	defer fh.Close()
	encoder := gob.NewEncoder(fh)
	return encoder.Encode(Info)
}

// Load is a method to load Info from file
func (Info *Info) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return Info.LoadFromBytes(data)
}

// LoadFromBytes is a method to load Info from bytes
func (Info *Info) LoadFromBytes(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("minnow index info appears empty")
	}
	buf := bytes.NewBuffer(data)
	decoder := gob.NewDecoder(buf)
	return decoder.Decode(Info)
}
