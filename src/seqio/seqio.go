/*
	the seqio package contains the types and methods for holding and processing DNA sequence data
*/
package seqio

import (
	"fmt"
)

// encoding used by the FASTQ quality scores
const encoding = 33

// complementBases is the lookup table used during reverse complementation
var complementBases = []byte{
	'A': 'T',
	'T': 'A',
	'C': 'G',
	'G': 'C',
	'N': 'N',
}

// baseTable maps upper and lower case ACTGN bases to their upper case form;
// any other byte maps to zero and is replaced with an N during BaseCheck
var baseTable = [256]byte{
	'A': 'A', 'a': 'A',
	'C': 'C', 'c': 'C',
	'T': 'T', 't': 'T',
	'G': 'G', 'g': 'G',
	'N': 'N', 'n': 'N',
}

// Sequence is the base type for a DNA sequence
type Sequence struct {
	ID  []byte
	Seq []byte
}

// FASTQread is a type that holds a single FASTQ read
type FASTQread struct {
	Sequence
	Misc []byte
	Qual []byte
	RC   bool
}

// NewSequence is the Sequence constructor; the bases are checked and
// converted to their canonical upper case form
func NewSequence(id, seq []byte) (*Sequence, error) {
	if len(seq) == 0 {
		return nil, fmt.Errorf("empty sequence: %v", string(id))
	}
	sequence := &Sequence{ID: id, Seq: seq}
	if err := sequence.BaseCheck(); err != nil {
		return nil, err
	}
	return sequence, nil
}

// BaseCheck is a method to convert bases to upper case and replace any
// non-ACTGN base with an N
func (Sequence *Sequence) BaseCheck() error {
	for i, base := range Sequence.Seq {
		if converted := baseTable[base]; converted != 0 {
			Sequence.Seq[i] = converted
		} else {
			Sequence.Seq[i] = 'N'
		}
	}
	return nil
}

// ReverseComplement returns the reverse complement of a sequence, leaving
// the original untouched; the caller is expected to have run BaseCheck
func ReverseComplement(seq []byte) []byte {
	revComp := make([]byte, len(seq))
	for i, base := range seq {
		revComp[len(seq)-1-i] = complementBases[base]
	}
	return revComp
}

// RevComplement is a method to reverse complement the sequence held by a
// FASTQread, flipping the strand flag
// TODO: the quality scores are currently not reversed by this method
func (FASTQread *FASTQread) RevComplement() {
	FASTQread.Seq = ReverseComplement(FASTQread.Seq)
	FASTQread.RC = !FASTQread.RC
}

// QualTrim is a method to quality trim the sequence held by a FASTQread
/* the algorithm is based on bwa/cutadapt read quality trim functions:
-1. for each index position, subtract qual cutoff from the quality score
-2. sum these values across the read and trim at the index where the sum in minimal
-3. return the high-quality region
*/
func (FASTQread *FASTQread) QualTrim(minQual int) {
	start, qualSum, qualMax := 0, 0, 0
	end := len(FASTQread.Qual)
	for i, qual := range FASTQread.Qual {
		qualSum += minQual - (int(qual) - encoding)
		if qualSum < 0 {
			break
		}
		if qualSum > qualMax {
			qualMax = qualSum
			start = i + 1
		}
	}
	qualSum, qualMax = 0, 0
	for i, j := 0, len(FASTQread.Qual)-1; j >= i; j-- {
		qualSum += minQual - (int(FASTQread.Qual[j]) - encoding)
		if qualSum < 0 {
			break
		}
		if qualSum > qualMax {
			qualMax = qualSum
			end = j
		}
	}
	if start >= end {
		start, end = 0, 0
	}
	FASTQread.Seq = FASTQread.Seq[start:end]
	FASTQread.Qual = FASTQread.Qual[start:end]
}

// NewFASTQread generates a new fastq read from 4 lines of data
func NewFASTQread(l1 []byte, l2 []byte, l3 []byte, l4 []byte) (*FASTQread, error) {
	if len(l1) == 0 || l1[0] != '@' {
		return nil, fmt.Errorf("read ID in fastq file does not begin with @: %v", string(l1))
	}
	// fasta entries are wrapped in this type too, so only check the quality line when one was given
	if l4 != nil && len(l2) != len(l4) {
		return nil, fmt.Errorf("sequence and quality lines are unequal lengths in fastq file: %v", string(l1))
	}
	seq := Sequence{ID: l1, Seq: l2}
	return &FASTQread{
		Sequence: seq,
		Misc:     l3,
		Qual:     l4,
	}, nil
}
