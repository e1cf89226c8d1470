package sketch

import "sync"

// defaultFilterSize used to create a bloom filter
const defaultFilterSize = 10000

// bitsPerMinimiser scales the bloom filter to the number of minimisers it will hold
const bitsPerMinimiser = 16

var mask [64]uint64

// init will prepare the mask prior to creating a bloom filter
func init() {
	mask[0] = 1
	for i := 1; i < len(mask); i++ {
		mask[i] = 2 * mask[i-1]
	}
}

// Filter is a bloom filter over the minimisers held in a sketch store. It gives a cheap check for whether a minimiser was seen during indexing, so reads with no chance of a hit can be skipped before any sketch comparison is run
type Filter struct {
	size  uint64
	table []uint64
	lock  sync.RWMutex // lock the filter for read/write access
}

// Reset will clear all marked bits in the filter
func (Filter *Filter) Reset() {
	Filter.lock.Lock()
	for i := 0; i < len(Filter.table); i++ {
		Filter.table[i] = 0
	}
	Filter.lock.Unlock()
}

// Add is a method to add a minimiser to the filter
func (Filter *Filter) Add(minimiser uint64) {
	h := (minimiser % Filter.size)
	c := h / 64 // cell
	o := h % 64 // offset
	Filter.lock.Lock()
	Filter.table[c] = Filter.table[c] | mask[o]
	Filter.lock.Unlock()
}

// Check is a method to check a minimiser against the filter; false means the minimiser was definitely never added
func (Filter *Filter) Check(minimiser uint64) bool {
	h := (minimiser % Filter.size)
	c := h / 64 // cell
	o := h % 64 // offset
	Filter.lock.RLock()
	defer Filter.lock.RUnlock()
	return (Filter.table[c] & mask[o]) > 0
}

// NewFilter is a filter constructor, using a specified size in bits
func NewFilter(size int) *Filter {
	if size > 64 {
		size = size / 64
	} else {
		size = 1
	}
	return &Filter{
		size:  64 * uint64(size),
		table: make([]uint64, size),
	}
}

// NewStoreFilter is a filter constructor that sizes the filter for a sketch store and adds every minimiser in the store
func NewStoreFilter(store SketchStore) *Filter {
	numMinimisers := 0
	for _, storedSketch := range store {
		numMinimisers += len(storedSketch.Minimisers)
	}
	size := numMinimisers * bitsPerMinimiser
	if size < defaultFilterSize {
		size = defaultFilterSize
	}
	filter := NewFilter(size)
	for _, storedSketch := range store {
		for _, value := range storedSketch.Minimisers {
			filter.Add(value)
		}
	}
	return filter
}
