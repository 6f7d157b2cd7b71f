// Package queue provides a bounded priority queue for top-k selection.
package queue

import "slices"

// Item is a candidate result.
type Item struct {
	Doc      int
	Distance float32
}

// TopK keeps the k items with the smallest Distance seen so far.
// It is a max-heap on Distance, so the worst kept item is at the root.
type TopK struct {
	k     int
	items []Item
}

// NewTopK creates a queue that keeps at most k items.
func NewTopK(k int) *TopK {
	return &TopK{
		k:     max(k, 0),
		items: make([]Item, 0, max(k, 0)),
	}
}

// Len returns the number of kept items.
func (q *TopK) Len() int { return len(q.items) }

// Worst returns the kept item with the largest distance.
func (q *TopK) Worst() (Item, bool) {
	if len(q.items) == 0 {
		return Item{}, false
	}
	return q.items[0], true
}

// Offer adds it if it beats the worst kept item. It reports whether it was kept.
func (q *TopK) Offer(it Item) bool {
	if q.k == 0 {
		return false
	}
	if len(q.items) < q.k {
		q.items = append(q.items, it)
		q.siftUp(len(q.items) - 1)
		return true
	}
	if !worse(q.items[0], it) {
		return false
	}
	q.items[0] = it
	q.siftDown(0)
	return true
}

// Sorted returns the kept items by ascending distance, ties by document.
// The queue is left unchanged.
func (q *TopK) Sorted() []Item {
	out := slices.Clone(q.items)
	slices.SortFunc(out, func(a, b Item) int {
		switch {
		case worse(b, a):
			return -1
		case worse(a, b):
			return 1
		default:
			return 0
		}
	})
	return out
}

// Reset empties the queue for reuse.
func (q *TopK) Reset() {
	q.items = q.items[:0]
}

// worse reports whether a ranks after b.
func worse(a, b Item) bool {
	if a.Distance != b.Distance {
		return a.Distance > b.Distance
	}
	return a.Doc > b.Doc
}

func (q *TopK) siftUp(i int) {
	for i > 0 {
		p := (i - 1) / 2
		if !worse(q.items[i], q.items[p]) {
			return
		}
		q.items[i], q.items[p] = q.items[p], q.items[i]
		i = p
	}
}

func (q *TopK) siftDown(i int) {
	n := len(q.items)
	for {
		l := 2*i + 1
		if l >= n {
			return
		}
		w := l
		if r := l + 1; r < n && worse(q.items[r], q.items[l]) {
			w = r
		}
		if !worse(q.items[w], q.items[i]) {
			return
		}
		q.items[i], q.items[w] = q.items[w], q.items[i]
		i = w
	}
}
