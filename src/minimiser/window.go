package minimiser

import "cmp"

// window is a fixed capacity ring deque holding the values of the current
// window, oldest at the front. The capacity is set once at construction and
// the cursor never holds more than that many values, so there is no resize
// path.
type window[V cmp.Ordered] struct {
	values []V
	head   int
	count  int
}

func newWindow[V cmp.Ordered](capacity int) *window[V] {
	return &window[V]{values: make([]V, capacity)}
}

// push adds a value at the back of the window.
func (win *window[V]) push(v V) {
	win.values[(win.head+win.count)%len(win.values)] = v
	win.count++
}

// popFront removes the oldest value.
func (win *window[V]) popFront() {
	win.head = (win.head + 1) % len(win.values)
	win.count--
}

// at returns the value at offset i from the oldest value.
func (win *window[V]) at(i int) V {
	return win.values[(win.head+i)%len(win.values)]
}

// len returns the number of values currently held.
func (win *window[V]) len() int {
	return win.count
}
