// Package sketch builds and compares minimiser sketches of DNA sequences. A sketch is the ordered set of windowed minimisers from the canonical k-mer hashes of a sequence, so two sketches can be compared without revisiting the sequences themselves.
package sketch

import (
	"fmt"

	"github.com/will-rowe/minnow/src/kmerstream"
	"github.com/will-rowe/minnow/src/minimiser"
)

// Sketch holds the minimisers of a single sequence, in order of appearance
type Sketch struct {
	Name       string   // the sequence identifier
	Length     int      // the sequence length in bases
	KmerSize   uint     // the k-mer size used during hashing
	WindowSize int      // the number of k-mers per window
	Minimisers []uint64 // the minimiser of each window
	Positions  []int    // the offset of each minimiser's k-mer in the sequence
}

// New is the Sketch constructor. It hashes the sequence with canonical k-mers and then collects the windowed minimisers
func New(name string, seq []byte, kmerSize uint, windowSize int) (*Sketch, error) {
	hashes, err := kmerstream.Hash(seq, kmerSize, true)
	if err != nil {
		return nil, fmt.Errorf("could not hash %v: %v", name, err)
	}
	stream, err := minimiser.New[uint64](hashes, windowSize)
	if err != nil {
		return nil, err
	}
	newSketch := &Sketch{
		Name:       name,
		Length:     len(seq),
		KmerSize:   kmerSize,
		WindowSize: windowSize,
	}
	for curs := stream.Cursor(); curs.Next(); {
		newSketch.Minimisers = append(newSketch.Minimisers, curs.At())
		newSketch.Positions = append(newSketch.Positions, curs.Position())
	}
	return newSketch, nil
}

// Cardinality returns the number of distinct minimisers in the sketch
func (Sketch *Sketch) Cardinality() int {
	return len(Sketch.distinct())
}

// Intersection returns the number of distinct minimisers shared between two sketches
func (Sketch *Sketch) Intersection(query *Sketch) (int, error) {
	if err := Sketch.checkComparable(query); err != nil {
		return 0, err
	}
	queryMinimisers := query.distinct()
	intersect := 0
	for value := range Sketch.distinct() {
		if _, ok := queryMinimisers[value]; ok {
			intersect++
		}
	}
	return intersect, nil
}

// Containment estimates the fraction of the sketch's distinct minimisers that are also found in the query sketch
func (Sketch *Sketch) Containment(query *Sketch) (float64, error) {
	intersect, err := Sketch.Intersection(query)
	if err != nil {
		return 0.0, err
	}
	distinct := Sketch.Cardinality()
	if distinct == 0 {
		return 0.0, nil
	}
	return float64(intersect) / float64(distinct), nil
}

// Similarity estimates the Jaccard similarity between the distinct minimiser sets of two sketches
func (Sketch *Sketch) Similarity(query *Sketch) (float64, error) {
	intersect, err := Sketch.Intersection(query)
	if err != nil {
		return 0.0, err
	}
	union := Sketch.Cardinality() + query.Cardinality() - intersect
	if union == 0 {
		return 0.0, nil
	}
	return float64(intersect) / float64(union), nil
}

// distinct collects the minimisers of the sketch into a set
func (Sketch *Sketch) distinct() map[uint64]struct{} {
	set := make(map[uint64]struct{}, len(Sketch.Minimisers))
	for _, value := range Sketch.Minimisers {
		set[value] = struct{}{}
	}
	return set
}

// checkComparable makes sure two sketches were built with the same k-mer and window sizes
func (Sketch *Sketch) checkComparable(query *Sketch) error {
	if Sketch.KmerSize != query.KmerSize {
		return fmt.Errorf("sketches have different k-mer sizes (%d vs %d)", Sketch.KmerSize, query.KmerSize)
	}
	if Sketch.WindowSize != query.WindowSize {
		return fmt.Errorf("sketches have different window sizes (%d vs %d)", Sketch.WindowSize, query.WindowSize)
	}
	return nil
}
