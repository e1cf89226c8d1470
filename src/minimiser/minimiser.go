// the minimiser package computes the minimiser sequence of one, or two
// position-synchronised, streams of totally ordered values. A sliding window
// of consecutive values is kept and the window minimum is emitted each time
// it changes, with ties broken in favour of the most recently added value
// (robust winnowing). Consecutive windows sharing their minimiser produce a
// single value. The minimum is maintained incrementally; only the expiry of
// the tracked minimiser forces a rescan of the window, so the worst case for
// one shift is linear in the window size (the monotonic queue variant would
// avoid this but is deliberately not used, keeping the behaviour of the
// reference scheme).
package minimiser

import (
	"cmp"
	"errors"
	"fmt"
)

// errors returned during stream construction
var (
	ErrWindowSize     = errors.New("minimiser: invalid window size")
	ErrLengthMismatch = errors.New("minimiser: paired sequences must be the same length")
)

// Iterator is a single pass, forward only cursor over ordered values. Next
// advances the iterator and reports whether a value is available; At returns
// the current value and is only meaningful after a call to Next has returned
// true.
type Iterator[V cmp.Ordered] interface {
	Next() bool
	At() V
}

// Sequence is a source of ordered values that can mint any number of
// independent iterators. Implementations must not share traversal state
// between the iterators they hand out.
type Sequence[V cmp.Ordered] interface {
	Iterator() Iterator[V]
}

// Slice is a slice-backed Sequence.
type Slice[V cmp.Ordered] []V

// Iterator returns a fresh iterator over the slice values.
func (s Slice[V]) Iterator() Iterator[V] {
	return &sliceIterator[V]{values: s}
}

// Len returns the number of values in the slice.
func (s Slice[V]) Len() int {
	return len(s)
}

type sliceIterator[V cmp.Ordered] struct {
	values []V
	pos    int // 1-based position of the current value
}

func (it *sliceIterator[V]) Next() bool {
	if it.pos >= len(it.values) {
		return false
	}
	it.pos++
	return true
}

func (it *sliceIterator[V]) At() V {
	return it.values[it.pos-1]
}

// Stream is the minimiser view over one or two sequences: it holds the
// configuration and mints cursors, it does not compute anything itself.
// Immutable once constructed.
type Stream[V cmp.Ordered] struct {
	primary    Sequence[V]
	secondary  Sequence[V] // nil in the single sequence form
	windowSize int
}

// New is the single sequence Stream constructor. Window sizes below 1 are
// rejected, as is a window size of exactly 1, which would just copy the
// input. Window sizes larger than the input are accepted and clamped by the
// cursor, degenerating to a single window over the whole input.
func New[V cmp.Ordered](primary Sequence[V], windowSize int) (*Stream[V], error) {
	if windowSize <= 1 {
		return nil, fmt.Errorf("%w: %d (must be greater than 1)", ErrWindowSize, windowSize)
	}
	return &Stream[V]{primary: primary, windowSize: windowSize}, nil
}

// NewPaired is the two sequence Stream constructor: each window position
// holds the smaller of the two sequence values, so two representations of
// the same positions (typically forward and reverse complement strand
// hashes) contribute one value each. The sequences must be the same length.
// A window size of 1 is permitted here and reduces the stream to the
// element-wise minimum of the pair.
func NewPaired[V cmp.Ordered](primary, secondary Sequence[V], windowSize int) (*Stream[V], error) {
	if windowSize < 1 {
		return nil, fmt.Errorf("%w: %d (must be at least 1)", ErrWindowSize, windowSize)
	}
	lenA := sequenceLength(primary)
	lenB := sequenceLength(secondary)
	if lenA != lenB {
		return nil, fmt.Errorf("%w: %d vs %d", ErrLengthMismatch, lenA, lenB)
	}
	return &Stream[V]{primary: primary, secondary: secondary, windowSize: windowSize}, nil
}

// WindowSize returns the configured window size.
func (stream *Stream[V]) WindowSize() int {
	return stream.windowSize
}

// Cursor begins a new traversal of the stream. Cursors are independent: a
// stream can be traversed any number of times, provided its sequences mint
// independent iterators.
func (stream *Stream[V]) Cursor() *Cursor[V] {
	var secondary Iterator[V]
	if stream.secondary != nil {
		secondary = stream.secondary.Iterator()
	}
	return newCursor(stream.primary.Iterator(), secondary, stream.windowSize)
}

// Iterator makes Stream satisfy Sequence, so a minimiser stream can feed
// another minimiser stream, or anything else consuming ordered values.
func (stream *Stream[V]) Iterator() Iterator[V] {
	return stream.Cursor()
}

// sequenceLength reports how many values a sequence yields, using the Len
// method when the implementation has one and counting a full iteration
// otherwise.
func sequenceLength[V cmp.Ordered](seq Sequence[V]) int {
	if l, ok := seq.(interface{ Len() int }); ok {
		return l.Len()
	}
	count := 0
	for it := seq.Iterator(); it.Next(); {
		count++
	}
	return count
}
