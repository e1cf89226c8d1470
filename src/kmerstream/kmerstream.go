/*
	the kmerstream package turns DNA sequences into streams of k-mer hash
	values, ready for minimiser selection
*/
package kmerstream

import (
	"fmt"

	"github.com/will-rowe/ntHash"

	"github.com/will-rowe/minnow/src/minimiser"
	"github.com/will-rowe/minnow/src/seqio"
)

// KmerHashes holds the ntHash values of one sequence. The values are cached
// so that any number of independent iterators can be minted, which is what
// lets one hash run feed several minimiser traversals.
type KmerHashes struct {
	KmerSize  uint
	Canonical bool
	hashes    minimiser.Slice[uint64]
}

// Hash runs the rolling ntHash over a sequence and caches the values; set
// canonical to hash each k-mer and its reverse complement together, keeping
// the smaller value. The sequence is expected to have been through
// seqio.BaseCheck.
func Hash(seq []byte, kmerSize uint, canonical bool) (*KmerHashes, error) {
	if kmerSize == 0 {
		return nil, fmt.Errorf("k-mer size must be greater than 0")
	}
	if len(seq) < int(kmerSize) {
		return nil, fmt.Errorf("sequence length (%d) is shorter than k-mer length (%d)", len(seq), kmerSize)
	}

	// initiate the rolling ntHash
	hasher, err := ntHash.New(&seq, kmerSize)
	if err != nil {
		return nil, err
	}

	// collect the hashed k-mers
	hashes := make(minimiser.Slice[uint64], 0, len(seq)-int(kmerSize)+1)
	for hv := range hasher.Hash(canonical) {
		hashes = append(hashes, hv)
	}
	return &KmerHashes{
		KmerSize:  kmerSize,
		Canonical: canonical,
		hashes:    hashes,
	}, nil
}

// HashBothStrands hashes a sequence strand by strand, returning the forward
// strand values and the reverse complement strand values aligned so that
// position i of both describes the same sequence position. Feeding the pair
// through the two sequence minimiser form is equivalent to hashing
// canonically.
func HashBothStrands(seq []byte, kmerSize uint) (*KmerHashes, *KmerHashes, error) {
	forward, err := Hash(seq, kmerSize, false)
	if err != nil {
		return nil, nil, err
	}
	reverse, err := Hash(seqio.ReverseComplement(seq), kmerSize, false)
	if err != nil {
		return nil, nil, err
	}

	// the reverse strand hashes arrive in reverse strand order, so flip
	// them into forward coordinates
	for i, j := 0, len(reverse.hashes)-1; i < j; i, j = i+1, j-1 {
		reverse.hashes[i], reverse.hashes[j] = reverse.hashes[j], reverse.hashes[i]
	}
	return forward, reverse, nil
}

// Iterator returns a fresh iterator over the hash values, satisfying
// minimiser.Sequence
func (KmerHashes *KmerHashes) Iterator() minimiser.Iterator[uint64] {
	return KmerHashes.hashes.Iterator()
}

// Len returns the number of hash values (one per k-mer)
func (KmerHashes *KmerHashes) Len() int {
	return len(KmerHashes.hashes)
}
