package kmerstream

import (
	"testing"

	"github.com/will-rowe/minnow/src/minimiser"
)

// setup variables
var (
	testSeq      = []byte("ACAGCAGGAAGGCTTACTGGAGAAACGTATCGACTATAAGAATCGGGTGATGGAACCTCACTCTCCCATCAGCGCACAACATAGTTCGACGGGTATGACC")
	testKmerSize = uint(7)
	testWindow   = 5
)

// drain pulls every minimiser from a cursor
func drain(curs *minimiser.Cursor[uint64]) []uint64 {
	values := []uint64{}
	for curs.Next() {
		values = append(values, curs.At())
	}
	return values
}

// begin the tests
func TestHashConstructor(t *testing.T) {
	hashes, err := Hash(testSeq, testKmerSize, true)
	if err != nil {
		t.Fatal(err)
	}
	if hashes.Len() != len(testSeq)-int(testKmerSize)+1 {
		t.Fatalf("expected %d hash values, got %d", len(testSeq)-int(testKmerSize)+1, hashes.Len())
	}
	if hashes.KmerSize != testKmerSize || !hashes.Canonical {
		t.Fatal("hash parameters were not kept")
	}
}

func TestHashErrors(t *testing.T) {
	if _, err := Hash(testSeq, 0, true); err == nil {
		t.Fatal("accepted a k-mer size of 0")
	}
	if _, err := Hash([]byte("ACTG"), 7, true); err == nil {
		t.Fatal("accepted a sequence shorter than the k-mer size")
	}
}

func TestIteratorIndependence(t *testing.T) {
	hashes, err := Hash(testSeq, testKmerSize, true)
	if err != nil {
		t.Fatal(err)
	}
	itA, itB := hashes.Iterator(), hashes.Iterator()
	for itA.Next() {
		if !itB.Next() || itA.At() != itB.At() {
			t.Fatal("independent iterators over the same hashes disagree")
		}
	}
	if itB.Next() {
		t.Fatal("iterators yielded different numbers of values")
	}
}

func TestCanonicalMatchesBothStrands(t *testing.T) {
	// the canonical hash of a k-mer is the smaller of its two strand
	// hashes, so canonical minimisers must equal the paired minimisers of
	// the two strand streams
	canonical, err := Hash(testSeq, testKmerSize, true)
	if err != nil {
		t.Fatal(err)
	}
	forward, reverse, err := HashBothStrands(testSeq, testKmerSize)
	if err != nil {
		t.Fatal(err)
	}
	if forward.Len() != canonical.Len() || reverse.Len() != canonical.Len() {
		t.Fatal("strand hash streams are not the same length as the canonical stream")
	}
	canonicalStream, err := minimiser.New[uint64](canonical, testWindow)
	if err != nil {
		t.Fatal(err)
	}
	pairedStream, err := minimiser.NewPaired[uint64](forward, reverse, testWindow)
	if err != nil {
		t.Fatal(err)
	}
	canonicalMins := drain(canonicalStream.Cursor())
	pairedMins := drain(pairedStream.Cursor())
	if len(canonicalMins) == 0 {
		t.Fatal("no minimisers produced")
	}
	if len(canonicalMins) != len(pairedMins) {
		t.Fatalf("canonical and paired minimiser counts differ: %d vs %d", len(canonicalMins), len(pairedMins))
	}
	for i := range canonicalMins {
		if canonicalMins[i] != pairedMins[i] {
			t.Fatalf("canonical and paired minimisers differ at %d: %d vs %d", i, canonicalMins[i], pairedMins[i])
		}
	}
}

// benchmark the rolling hash
func BenchmarkHash(b *testing.B) {
	for n := 0; n < b.N; n++ {
		if _, err := Hash(testSeq, testKmerSize, true); err != nil {
			b.Fatal(err)
		}
	}
}
