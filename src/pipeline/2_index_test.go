package pipeline

import (
	"testing"

	"github.com/will-rowe/minnow/src/misc"
	"github.com/will-rowe/minnow/src/sketch"
)

func TestIndexBuild(t *testing.T) {
	if err := setupTmpDir(); err != nil {
		t.Fatal(err)
	}
	if err := writeTestRefs(); err != nil {
		t.Fatal(err)
	}
	indexingPipeline := NewPipeline()

	// initialise processes
	refLoader := NewRefLoader(testParameters)
	refSketcher := NewRefSketcher(testParameters)
	indexWriter := NewIndexWriter(testParameters)

	// connect the pipeline processes
	refLoader.Connect(append(refFasta, refGFA...))
	refSketcher.Connect(refLoader)
	indexWriter.Connect(refSketcher)

	// submit each process to the pipeline and run it
	indexingPipeline.AddProcesses(refLoader, refSketcher, indexWriter)
	if indexingPipeline.GetNumProcesses() != 3 {
		t.Fatal("wrong number of processes in pipeline")
	}
	indexingPipeline.Run()

	// three fasta records and one GFA path should have been sketched
	if testParameters.NumRefs != 4 {
		t.Fatalf("expected 4 reference sketches, got %d", testParameters.NumRefs)
	}
	if err := testParameters.SaveDB("test-data/tmp/minnow.sketches"); err != nil {
		t.Fatal(err)
	}
	if err := testParameters.Dump("test-data/tmp/minnow.info"); err != nil {
		t.Fatal(err)
	}

	// check the index files can be read back
	loadedInfo := new(Info)
	if err := loadedInfo.Load("test-data/tmp/minnow.info"); err != nil {
		t.Fatal(err)
	}
	if loadedInfo.KmerSize != testParameters.KmerSize || loadedInfo.WindowSize != testParameters.WindowSize || loadedInfo.NumRefs != 4 {
		t.Fatal("runtime info changed during the dump/load round trip")
	}
	loadedStore := make(sketch.SketchStore)
	if err := loadedStore.Load("test-data/tmp/minnow.sketches"); err != nil {
		t.Fatal(err)
	}
	if len(loadedStore) != 4 {
		t.Fatalf("expected 4 sketches in the loaded store, got %d", len(loadedStore))
	}
	for name, loadedSketch := range loadedStore {
		original, ok := testParameters.db[name]
		if !ok {
			t.Fatalf("loaded store has an unknown reference: %v", name)
		}
		if !misc.Uint64SliceEqual(loadedSketch.Minimisers, original.Minimisers) {
			t.Fatalf("minimisers of %v changed during the dump/load round trip", name)
		}
	}
}

// benchmark indexing
func BenchmarkIndexing(b *testing.B) {
	// run the indexing pipeline b.N times
	for n := 0; n < b.N; n++ {
		indexingPipeline := NewPipeline()
		refLoader := NewRefLoader(testParameters)
		refSketcher := NewRefSketcher(testParameters)
		indexWriter := NewIndexWriter(testParameters)
		refLoader.Connect(append(refFasta, refGFA...))
		refSketcher.Connect(refLoader)
		indexWriter.Connect(refSketcher)
		indexingPipeline.AddProcesses(refLoader, refSketcher, indexWriter)
		indexingPipeline.Run()
	}
}
