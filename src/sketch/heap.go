package sketch

import (
	"container/heap"
	"sort"
)

// Hit records one reference that a query sketch was contained in
type Hit struct {
	Reference   string  // the reference name from the sketch store
	Shared      int     // the number of distinct minimisers shared with the reference
	Containment float64 // the fraction of the query's distinct minimisers found in the reference
}

// hitHeap is a min-heap of hits (we're satisfying the heap interface: https://golang.org/pkg/container/heap/)
type hitHeap []Hit

// the less method is returning the smallest containment, so that it is at index position 0 and can be evicted
func (hitHeap hitHeap) Less(i, j int) bool { return hitHeap[i].Containment < hitHeap[j].Containment }
func (hitHeap hitHeap) Swap(i, j int)      { hitHeap[i], hitHeap[j] = hitHeap[j], hitHeap[i] }
func (hitHeap hitHeap) Len() int           { return len(hitHeap) }

// Push is a method to add an element to the heap
func (hitHeap *hitHeap) Push(x any) {
	// dereference the pointer to modify the slice's length, not just its contents
	*hitHeap = append(*hitHeap, x.(Hit))
}

// Pop is a method to remove an element from the heap
func (hitHeap *hitHeap) Pop() any {
	old := *hitHeap
	n := len(old)
	x := old[n-1]
	*hitHeap = old[0 : n-1]
	return x
}

// TopHits keeps the best hits for a query sketch, ranked by containment
type TopHits struct {
	limit int
	hits  hitHeap
}

// NewTopHits is the TopHits constructor; limit caps the number of hits kept
func NewTopHits(limit int) *TopHits {
	if limit < 1 {
		limit = 1
	}
	return &TopHits{
		limit: limit,
		hits:  make(hitHeap, 0, limit),
	}
}

// Add offers a hit to the collector; it is dropped if the collector is full of better hits
func (TopHits *TopHits) Add(hit Hit) {
	if len(TopHits.hits) < TopHits.limit {
		heap.Push(&TopHits.hits, hit)
		return
	}
	if hit.Containment > TopHits.hits[0].Containment {
		TopHits.hits[0] = hit
		heap.Fix(&TopHits.hits, 0)
	}
}

// Collect returns the kept hits, best first
func (TopHits *TopHits) Collect() []Hit {
	collected := make([]Hit, len(TopHits.hits))
	copy(collected, TopHits.hits)
	sort.Slice(collected, func(i, j int) bool {
		if collected[i].Containment != collected[j].Containment {
			return collected[i].Containment > collected[j].Containment
		}
		return collected[i].Reference < collected[j].Reference
	})
	return collected
}
