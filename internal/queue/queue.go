// Package queue holds the shared, append-only item log that a reader
// writes into and the matcher pool shards over: spec.md §5 requires it
// stay a monotonic-length log with a single writer and many readers, so
// a snapshot index is always safe to re-read without locking out the
// writer.
package queue

import (
	"sync"

	"github.com/dshills/gofind/internal/item"
)

// Queue is safe for one concurrent writer (Push) and any number of
// concurrent readers (Len, At, Slice, Snapshot).
type Queue struct {
	mu    sync.RWMutex
	items []item.Item
}

// New returns an empty Queue.
func New() *Queue {
	return &Queue{}
}

// Push appends it, assigning no ordinal itself: callers set item.Ordinal
// before pushing (spec.md §4: "insertion index assigned once by the
// reader").
func (q *Queue) Push(it item.Item) {
	q.mu.Lock()
	q.items = append(q.items, it)
	q.mu.Unlock()
}

// Len returns the current length. A matcher worker that recorded a
// smaller Len earlier can always safely read indices up to that older
// value: items are never mutated once pushed, and only Reset removes
// them.
func (q *Queue) Len() int {
	q.mu.RLock()
	n := len(q.items)
	q.mu.RUnlock()
	return n
}

// At returns the item at index i. i must be less than a Len() this
// caller has already observed.
func (q *Queue) At(i int) item.Item {
	q.mu.RLock()
	it := q.items[i]
	q.mu.RUnlock()
	return it
}

// Slice returns a copy of items in [start,end). end may not exceed a
// previously observed Len().
func (q *Queue) Slice(start, end int) []item.Item {
	q.mu.RLock()
	defer q.mu.RUnlock()
	out := make([]item.Item, end-start)
	copy(out, q.items[start:end])
	return out
}

// Snapshot returns a copy of every item currently in the queue.
func (q *Queue) Snapshot() []item.Item {
	q.mu.RLock()
	defer q.mu.RUnlock()
	out := make([]item.Item, len(q.items))
	copy(out, q.items)
	return out
}

// Reset empties the queue; used by the coordinator when restarting with
// a new reader generation (spec.md §4.6).
func (q *Queue) Reset() {
	q.mu.Lock()
	q.items = nil
	q.mu.Unlock()
}
