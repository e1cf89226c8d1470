package pipeline

import (
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/will-rowe/minnow/src/version"
)

///////////////////////////////////////////////////////////////////////////////////////////////

/*
TEST DATA
*/
// three reference sequences, written to a FASTA file by the index test
var refSeqA = "ACAGCAGGAAGGCTTACTGGAGAAACGTATCGACTATAAGAATCGGGTGATGGAACCTCACTCTCCCATCAGCGCACAACATAGTTCGACGGGTATGACCTTGACCGGTACCAGTTTCAAGCGTTGCGCCAGCTGGGAAATAAGCTAATC"
var refSeqB = "GATTCTGAGCCATTTGAGCAAGGCTAGGACTTCGGATCTTACCGAATGCATACGGCTTACGGTATTCTAACCTGATCGAATGGCAGTTAGCGATACCGATAGTCCGAGGTTCACATCGGAATCTTGGCTGGACTCCATGACGTTAGGCTA"
var refSeqC = "TCGAGGTTTAGGCACTATCGAACCTTGATGGTTCAGGATCCATCGTTACGACTTAGGCATAGCAGTTCCGTTAGCGGAACCAACTGGATTGCCTATTCGATTGGCATGGAATCGAACTTGCGGATCAGTAACTGCCATTCGAGTTCTGAC"

// two segments making up the single path of the GFA test file
var gfaSeg1 = "TATGCCGGAACTGTTCGAGACCATAGGCATTTGAAGCCTAGATCCAGTTACGCATTGGCAAGTTCACCGT"
var gfaSeg2 = "CATGGATTCGAACCGTATGGATTCAGCTAACGGTTAGCATTCAGGACCTAGCATTCGGTAACCTTGCAGATGCATTGGAC"

// a sequence unrelated to any of the references
var decoySeq = "CCTAGAGTTCGATGCAACGGTTACCAGGTTAAGGCTTCAGATCGGATTACGTTCCTAGCATGACGGATTACACCGTTAGGTACGATCCAGGATTACGCTTAGGATCCGTATTCAGGCATCAACGTTGGCATCCGATTAGCGGATTCAACG"

// the test files written under test-data/tmp
var refFasta = []string{"test-data/tmp/test-refs.fasta"}
var refGFA = []string{"test-data/tmp/test-graph.gfa"}
var fastq = []string{"test-data/tmp/test-reads.fastq"}

///////////////////////////////////////////////////////////////////////////////////////////////

/*
TEST PARAMETERS
*/
var testParameters = &Info{
	NumProc:              1,
	Version:              version.GetVersion(),
	KmerSize:             7,
	WindowSize:           5,
	ContainmentThreshold: 0.99,
	IndexDir:             "test-data/tmp",
	Index: IndexCmd{
		OutDir: "test-data/tmp",
	},
	Screen: ScreenCmd{
		Fasta:       false,
		BloomFilter: true,
		Trim:        false,
		TopHits:     3,
		OutFile:     "test-data/tmp/screen.tsv",
		PlotFile:    "test-data/tmp/screen.png",
	},
}

func setupTmpDir() error {
	_ = os.RemoveAll("test-data/tmp")
	err := os.MkdirAll("test-data/tmp", 0777)
	return err
}

// writeTestRefs writes the FASTA and GFA reference files used by the index test
func writeTestRefs() error {
	fastaData := fmt.Sprintf(">refA\n%v\n>refB\n%v\n>refC\n%v\n", refSeqA, refSeqB, refSeqC)
	if err := os.WriteFile(refFasta[0], []byte(fastaData), 0644); err != nil {
		return err
	}
	gfaData := fmt.Sprintf("H\tVN:Z:1.0\nS\t1\t%v\nS\t2\t%v\nL\t1\t+\t2\t+\t0M\nP\tpathD\t1+,2+\t*\n", gfaSeg1, gfaSeg2)
	return os.WriteFile(refGFA[0], []byte(gfaData), 0644)
}

// writeTestReads writes a FASTQ file holding exact copies of three references plus a decoy read
func writeTestReads() error {
	var fastqData strings.Builder
	reads := map[string]string{
		"read1": refSeqA,
		"read2": refSeqB,
		"read3": gfaSeg1 + gfaSeg2,
		"read4": decoySeq,
	}
	for _, readID := range []string{"read1", "read2", "read3", "read4"} {
		seq := reads[readID]
		fmt.Fprintf(&fastqData, "@%v\n%v\n+\n%v\n", readID, seq, strings.Repeat("I", len(seq)))
	}
	return os.WriteFile(fastq[0], []byte(fastqData.String()), 0644)
}

///////////////////////////////////////////////////////////////////////////////////////////////

/*
DUMMY PIPELINE
*/

type ComponentA struct {
	input  []int
	output chan int
}

func NewComponentA(i []int) *ComponentA {
	return &ComponentA{input: i, output: make(chan int)}
}

func (ComponentA *ComponentA) Run() {
	defer close(ComponentA.output)
	for _, input := range ComponentA.input {
		ComponentA.output <- input
	}
}

type ComponentB struct {
	input      chan int
	multiplier int
	results    []int
}

func NewComponentB(i int) *ComponentB {
	return &ComponentB{multiplier: i}
}

func (ComponentB *ComponentB) Connect(previous *ComponentA) {
	ComponentB.input = previous.output
}

func (ComponentB *ComponentB) Run() {
	results := []int{}
	for input := range ComponentB.input {
		results = append(results, (input * ComponentB.multiplier))
	}
	ComponentB.results = results
}

///////////////////////////////////////////////////////////////////////////////////////////////

/*
DUMMY PIPELINE TEST
*/

func TestPipeline(t *testing.T) {
	inputValues := []int{1, 2, 3, 4}
	expectedOutput := []int{10, 20, 30, 40}

	// create the processes
	a := NewComponentA(inputValues)
	b := NewComponentB(10)

	// create the pipeline
	newPipeline := NewPipeline()

	// add the processes and connect them
	newPipeline.AddProcesses(a, b)
	b.Connect(a)
	if len(newPipeline.processes) != 2 {
		t.Fatal("did not add correct number of processes to pipeline")
	}

	// run the pipeline
	newPipeline.Run()

	// once the pipeline is done, there should be results in the final component
	if len(expectedOutput) != len(b.results) {
		t.Fatal("pipeline did not produce expected output")
	}
	for i, val := range b.results {
		if val != expectedOutput[i] {
			t.Fatal("pipeline did not produce expected output")
		}
	}
}
