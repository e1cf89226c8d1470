package minimiser

import "cmp"

// Cursor is one traversal of a Stream. It owns the window buffer and the
// minimum bookkeeping; the input iterators are advanced in lockstep as the
// window slides. A cursor is used from a single goroutine; separate cursors
// over the same stream never share state.
//
// A Cursor is itself an Iterator: call Next until it returns false and read
// the current minimiser with At.
type Cursor[V cmp.Ordered] struct {
	value  V   // current minimiser
	offset int // offset of the minimiser from the oldest value in the window

	primary   Iterator[V]
	secondary Iterator[V] // nil in the single sequence form
	window    *window[V]

	pos       int  // input positions consumed so far
	started   bool // the first call to Next serves the primed window
	exhausted bool // the primary iterator hit its end
}

// newCursor primes the first window so the first call to Next can answer
// straight away.
func newCursor[V cmp.Ordered](primary, secondary Iterator[V], windowSize int) *Cursor[V] {
	curs := &Cursor[V]{
		primary:   primary,
		secondary: secondary,
		window:    newWindow[V](windowSize),
	}
	curs.prime(windowSize)
	return curs
}

// prime fills the first window and finds its minimiser. An input shorter
// than the window clamps the window to the input length, so a short input
// still produces its one minimiser before the cursor reports exhaustion.
func (curs *Cursor[V]) prime(windowSize int) {
	for i := 0; i < windowSize; i++ {
		v, ok := curs.step()
		if !ok {
			curs.exhausted = true
			break
		}
		curs.window.push(v)
	}
	if curs.window.len() == 0 {
		curs.exhausted = true
		return
	}
	curs.rescan()
}

// Next advances the cursor to the next distinct minimiser and reports
// whether one is available. Once Next has returned false it returns false
// forever.
func (curs *Cursor[V]) Next() bool {
	if !curs.started {
		curs.started = true
		return curs.window.len() != 0
	}
	if curs.exhausted {
		return false
	}
	return curs.advance()
}

// At returns the current minimiser value. It is only meaningful after a call
// to Next has returned true.
func (curs *Cursor[V]) At() V {
	return curs.value
}

// Position returns the position of the current minimiser in the input,
// 0-based over the combined values. Like At, it is only meaningful after
// Next has returned true.
func (curs *Cursor[V]) Position() int {
	return curs.pos - curs.window.len() + curs.offset
}

// Exhausted reports whether the primary input has run out; no further
// minimisers will be produced.
func (curs *Cursor[V]) Exhausted() bool {
	return curs.exhausted
}

// Equal reports whether two cursors sit at the same place: the same input
// position with the same window length.
func (curs *Cursor[V]) Equal(other *Cursor[V]) bool {
	return curs.pos == other.pos && curs.window.len() == other.window.len()
}

// advance slides the window one position at a time until a distinct
// minimiser turns up or the input runs out.
func (curs *Cursor[V]) advance() bool {
	for {
		v, ok := curs.step()
		if !ok {
			curs.exhausted = true
			return false
		}
		curs.window.popFront()
		curs.window.push(v)

		// the tracked minimiser just left the window: rescan. The rescan
		// can land on a value equal to the one that expired, which still
		// counts as a fresh minimiser because its position is new.
		if curs.offset == 0 {
			curs.rescan()
			return true
		}

		// a strictly smaller value entered at the back
		if v < curs.value {
			curs.value = v
			curs.offset = curs.window.len() - 1
			return true
		}

		// minimiser unchanged, now one step closer to the front; keep
		// sliding so the same value is never emitted twice in a row
		curs.offset--
	}
}

// step advances the underlying iterators in lockstep and returns the
// combined value for the new position: the primary value alone, or the
// smaller of the pair.
func (curs *Cursor[V]) step() (V, bool) {
	if !curs.primary.Next() {
		var zero V
		return zero, false
	}
	v := curs.primary.At()
	if curs.secondary != nil {
		curs.secondary.Next()
		if s := curs.secondary.At(); s < v {
			v = s
		}
	}
	curs.pos++
	return v, true
}

// rescan finds the window minimum with a left to right scan, keeping the
// rightmost of any tied values: the tie that entered the window last is the
// one that survives the most shifts.
func (curs *Cursor[V]) rescan() {
	best := curs.window.at(0)
	offset := 0
	for i := 1; i < curs.window.len(); i++ {
		if v := curs.window.at(i); v <= best {
			best = v
			offset = i
		}
	}
	curs.value = best
	curs.offset = offset
}
