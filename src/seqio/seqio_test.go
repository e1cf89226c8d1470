package seqio

import (
	"testing"
)

// setup variables
var (
	l1 = []byte("@0_chr1_0_186027_186126_263_(Bla)BIC-1:GQ260093:1-885:885")
	l2 = []byte("acagcaggaaggcttactggagaaacgtatcgactataagaatcgggtgatggaacctcactctcccatcagcgcacaacatagttcgacgggtatgacc")
	l3 = []byte("+")
	l4 = []byte("====@==@AAD?>D@@==DACBC?@BB@C==AB==A@D>AD==?CB==@=B?=A>D?=DB=?>>D@EB===??=@C=?C>@>@B>=?C@@>=====?@>=")
)

// test results
var (
	expectedUpperCase  = []byte("ACAGCAGGAAGGCTTACTGGAGAAACGTATCGACTATAAGAATCGGGTGATGGAACCTCACTCTCCCATCAGCGCACAACATAGTTCGACGGGTATGACC")
	expectedTrimmedSeq = []byte("GAAGGCTTACTGGAGAAACGTATCGACTATAAGAATCGGGTGATGGAACCTCACTCTCCCATCAGCGCACAACATAGTTCGAC")
	expectedRevComp    = []byte("GTCGAACTATGTTGTGCGCTGATGGGAGAGTGAGGTTCCATCACCCGATTCTTATAGTCGATACGTTTCTCCAGTAAGCCTTC")
)

// test functions to check equality of slices
func ByteSliceCheck(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// begin the tests
func TestReadConstructor(t *testing.T) {
	if _, err := NewFASTQread(l1, l2, l3, l4); err != nil {
		t.Fatalf("could not generate FASTQ read using NewFASTQread: %v", err)
	}
	if _, err := NewFASTQread([]byte("missing-an-at"), l2, l3, l4); err == nil {
		t.Fatal("accepted a read ID with no @ prefix")
	}
	if _, err := NewFASTQread(l1, l2, l3, l4[:10]); err == nil {
		t.Fatal("accepted a read with mismatched sequence and quality lengths")
	}
}

func TestSequenceConstructor(t *testing.T) {
	seq, err := NewSequence([]byte("ref-1"), []byte("acgtXacgt"))
	if err != nil {
		t.Fatal(err)
	}
	if !ByteSliceCheck(seq.Seq, []byte("ACGTNACGT")) {
		t.Fatalf("bases were not sanitised: %v", string(seq.Seq))
	}
	if _, err := NewSequence([]byte("ref-2"), []byte{}); err == nil {
		t.Fatal("accepted an empty sequence")
	}
}

func TestSeqMethods(t *testing.T) {
	seq := append([]byte{}, l2...)
	qual := append([]byte{}, l4...)
	read, err := NewFASTQread(l1, seq, l3, qual)
	if err != nil {
		t.Fatalf("could not generate FASTQ read using NewFASTQread: %v", err)
	}
	read.BaseCheck()
	if !ByteSliceCheck(read.Seq, expectedUpperCase) {
		t.Errorf("BaseCheck did not upper case the read")
	}
	read.QualTrim(30)
	if !ByteSliceCheck(read.Seq, expectedTrimmedSeq) {
		t.Errorf("QualTrim method failed")
	}
	read.RevComplement()
	if !ByteSliceCheck(read.Seq, expectedRevComp) {
		t.Errorf("RevComplement method failed")
	}
	if read.RC != true {
		t.Errorf("RevComplement did not flip the strand flag")
	}
}

func TestReverseComplement(t *testing.T) {
	seq := []byte("AACGTN")
	revComp := ReverseComplement(seq)
	if !ByteSliceCheck(revComp, []byte("NACGTT")) {
		t.Fatalf("expected NACGTT, got %v", string(revComp))
	}
	// the input must be left untouched
	if !ByteSliceCheck(seq, []byte("AACGTN")) {
		t.Fatal("ReverseComplement modified its input")
	}
	// reverse complementing twice restores the input
	if !ByteSliceCheck(ReverseComplement(revComp), seq) {
		t.Fatal("double reverse complement did not restore the sequence")
	}
}
