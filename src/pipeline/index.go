package pipeline

/*
 this part of the pipeline will load the reference sequences, sketch them and store the sketches in a queryable index
*/

import (
	"compress/gzip"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq/linear"
	"github.com/will-rowe/gfa"
	"github.com/will-rowe/minnow/src/misc"
	"github.com/will-rowe/minnow/src/seqio"
	"github.com/will-rowe/minnow/src/sketch"
)

// RefLoader is a pipeline process that loads reference sequences from FASTA and GFA files
type RefLoader struct {
	info   *Info
	input  []string
	output chan *seqio.Sequence
}

// NewRefLoader is the constructor
func NewRefLoader(info *Info) *RefLoader {
	return &RefLoader{info: info, output: make(chan *seqio.Sequence, BUFFERSIZE)}
}

// Connect is the method to connect the RefLoader to some data source
func (proc *RefLoader) Connect(input []string) {
	proc.input = input
}

// Run is the method to run this process, which satisfies the pipeline interface
func (proc *RefLoader) Run() {
	defer close(proc.output)

	// a sequence needs to fill at least one window of k-mers to be sketchable
	minLength := proc.info.WindowSize + int(proc.info.KmerSize) - 1
	for _, refFile := range proc.input {
		var refs []*seqio.Sequence
		var err error
		if strings.HasSuffix(refFile, ".gfa") || strings.HasSuffix(refFile, ".gfa.gz") {
			refs, err = readGFA(refFile)
		} else {
			refs, err = readFASTA(refFile)
		}
		misc.ErrorCheck(err)
		for _, ref := range refs {
			if len(ref.Seq) < minLength {
				log.Printf("\tsequence for %v is shorter than one window of k-mers (%d vs. %d), skipping sequence", string(ref.ID), len(ref.Seq), minLength)
				continue
			}
			proc.output <- ref
		}
	}
}

// readFASTA loads all the sequences from a FASTA file (which may be gzipped)
func readFASTA(path string) ([]*seqio.Sequence, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	var r io.Reader = fh
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(fh)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		r = gz
	}
	template := linear.NewSeq("", nil, alphabet.DNA)
	reader := fasta.NewReader(r, template)
	refs := []*seqio.Sequence{}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("could not read fasta record from %v: %v", path, err)
		}
		fastaSeq, ok := record.(*linear.Seq)
		if !ok {
			return nil, fmt.Errorf("unexpected record type in fasta file: %v", path)
		}
		ref, err := seqio.NewSequence([]byte(fastaSeq.Name()), []byte(fastaSeq.Seq.String()))
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	if len(refs) == 0 {
		return nil, fmt.Errorf("no fasta records found in file: %v", path)
	}
	return refs, nil
}

// readGFA loads a GFA file (which may be gzipped) and rebuilds the linear sequence of each path
func readGFA(path string) ([]*seqio.Sequence, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	var r io.Reader = fh
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(fh)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		r = gz
	}
	reader, err := gfa.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("could not open GFA file %v: %v", path, err)
	}
	myGFA := reader.CollectGFA()
	for {
		line, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("could not read GFA line in %v: %v", path, err)
		}
		if err := line.Add(myGFA); err != nil {
			return nil, fmt.Errorf("could not build GFA instance from %v: %v", path, err)
		}
	}

	// collect the segment sequences
	segments, err := myGFA.GetSegments()
	if err != nil {
		return nil, fmt.Errorf("could not get segments from GFA file %v: %v", path, err)
	}
	segSeqs := make(map[string][]byte)
	for _, segment := range segments {
		segSeqs[string(segment.Name)] = segment.Sequence
	}

	// rebuild each path by walking its segments
	paths, err := myGFA.GetPaths()
	if err != nil {
		return nil, fmt.Errorf("could not get paths from GFA file %v: %v", path, err)
	}
	refs := []*seqio.Sequence{}
	for _, gfaPath := range paths {
		pathSeq := []byte{}
		for _, segName := range gfaPath.SegNames {

			// the final character of each path segment records the orientation
			name, orientation := string(segName[:len(segName)-1]), segName[len(segName)-1]
			segSeq, ok := segSeqs[name]
			if !ok {
				return nil, fmt.Errorf("path %v references a missing segment: %v", string(gfaPath.PathName), name)
			}
			if orientation == '-' {
				segSeq = seqio.ReverseComplement(segSeq)
			}
			pathSeq = append(pathSeq, segSeq...)
		}
		ref, err := seqio.NewSequence(gfaPath.PathName, pathSeq)
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

// RefSketcher is a pipeline process that sketches the reference sequences
type RefSketcher struct {
	info   *Info
	input  chan *seqio.Sequence
	output chan *sketch.Sketch
}

// NewRefSketcher is the constructor
func NewRefSketcher(info *Info) *RefSketcher {
	return &RefSketcher{info: info, output: make(chan *sketch.Sketch, BUFFERSIZE)}
}

// Connect is the method to connect the RefSketcher to the output of a RefLoader
func (proc *RefSketcher) Connect(previous *RefLoader) {
	proc.input = previous.output
}

// Run is the method to run this process, which satisfies the pipeline interface
func (proc *RefSketcher) Run() {
	defer close(proc.output)
	var wg sync.WaitGroup
	for ref := range proc.input {
		wg.Add(1)
		go func(ref *seqio.Sequence) {
			defer wg.Done()
			refSketch, err := sketch.New(string(ref.ID), ref.Seq, proc.info.KmerSize, proc.info.WindowSize)
			misc.ErrorCheck(err)
			proc.output <- refSketch
		}(ref)
	}
	wg.Wait()
}

// IndexWriter is a pipeline process that collects the reference sketches into a store and attaches it to the runtime info
type IndexWriter struct {
	info  *Info
	input chan *sketch.Sketch
}

// NewIndexWriter is the constructor
func NewIndexWriter(info *Info) *IndexWriter {
	return &IndexWriter{info: info}
}

// Connect is the method to connect the IndexWriter to the output of a RefSketcher
func (proc *IndexWriter) Connect(previous *RefSketcher) {
	proc.input = previous.output
}

// Run is the method to run this process, which satisfies the pipeline interface
func (proc *IndexWriter) Run() {

	// collect the sketches from the upstream processes
	store := make(sketch.SketchStore)
	minimiserCount := 0
	for refSketch := range proc.input {
		misc.ErrorCheck(store.AddSketch(refSketch))
		minimiserCount += len(refSketch.Minimisers)
	}

	// check some references made it through sketching
	if len(store) == 0 {
		misc.ErrorCheck(fmt.Errorf("could not sketch any reference sequences"))
	}
	log.Printf("\tnumber of references sketched: %d", len(store))
	log.Printf("\ttotal number of minimisers: %d", minimiserCount)
	log.Printf("\tmean minimisers per reference: %.0f", float64(minimiserCount)/float64(len(store)))

	// the store has all the sketches, now add it to the runtime info for serialisation
	proc.info.NumRefs = len(store)
	proc.info.AttachDB(store)
}
