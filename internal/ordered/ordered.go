// Package ordered implements the top-K-sorted / tail-unsorted ranking
// container described in spec.md §4.4: in typical use only the first
// screenful is ever read, so sorting the long tail is deferred until a
// caller genuinely pages past it.
package ordered

import (
	"sort"

	"github.com/dshills/gofind/internal/fuzzy"
	"github.com/dshills/gofind/internal/item"
)

// DefaultCapacity is K from spec.md §3/§4.4.
const DefaultCapacity = 300

// MatchedItem pairs an item with its match result, owned by a Buffer
// once appended.
type MatchedItem struct {
	Item   item.Item
	Result fuzzy.MatchResult
}

// Less is the default Comparator: spec.md's tie-break chain, ending in
// the item's insertion ordinal so ranking is deterministic regardless
// of matcher worker interleaving (spec.md §5).
func Less(a, b MatchedItem) bool {
	if a.Result.Score != b.Result.Score {
		return a.Result.Score > b.Result.Score
	}
	if a.Result.FirstPos != b.Result.FirstPos {
		return a.Result.FirstPos < b.Result.FirstPos
	}
	if a.Result.TextLen != b.Result.TextLen {
		return a.Result.TextLen < b.Result.TextLen
	}
	return a.Item.Ordinal < b.Item.Ordinal
}

// Comparator orders two MatchedItems; it must be a pure function of its
// arguments and must not be mutated after a Buffer is constructed.
type Comparator func(a, b MatchedItem) bool

// Buffer is NOT internally synchronized: per spec.md §5 it is owned
// exclusively by the coordinator and accessed single-threaded: matcher
// output crosses a channel into the coordinator before ever reaching a
// Buffer.
type Buffer struct {
	k    int
	cmp  Comparator
	pre  []MatchedItem // sorted, len(pre) <= k
	tail []MatchedItem // unsorted while tailSorted is false
	tailSorted bool
}

// New creates a Buffer with the given prefix capacity and comparator.
// A non-positive capacity defaults to DefaultCapacity.
func New(capacity int, cmp Comparator) *Buffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if cmp == nil {
		cmp = Less
	}
	return &Buffer{k: capacity, cmp: cmp, tailSorted: true}
}

// AppendOrdered sorts batch by the comparator, then merges it with the
// current prefix using a stable merge (ties keep the left run's order,
// i.e. existing prefix entries sort before equal new entries). Overflow
// past the prefix capacity is appended to the tail, unsorted.
func (b *Buffer) AppendOrdered(batch []MatchedItem) {
	if len(batch) == 0 {
		return
	}

	sorted := make([]MatchedItem, len(batch))
	copy(sorted, batch)
	sort.SliceStable(sorted, func(i, j int) bool { return b.cmp(sorted[i], sorted[j]) })

	merged := stableMerge(b.pre, sorted, b.cmp)

	if len(merged) <= b.k {
		b.pre = merged
		return
	}

	b.pre = merged[:b.k]
	overflow := merged[b.k:]
	b.tail = append(b.tail, overflow...)
	b.tailSorted = false
}

// Get returns the item at rank i. For i < capacity this is O(1). For
// i >= capacity this triggers a one-time stable sort of the tail - a
// "heavy" operation the caller should expect only when paging past the
// visible prefix.
func (b *Buffer) Get(i int) (MatchedItem, bool) {
	if i < 0 {
		return MatchedItem{}, false
	}
	if i < len(b.pre) {
		return b.pre[i], true
	}
	idx := i - len(b.pre)
	if idx >= len(b.tail) {
		return MatchedItem{}, false
	}
	b.sortTailIfNeeded()
	return b.tail[idx], true
}

// Len returns the total number of items held.
func (b *Buffer) Len() int { return len(b.pre) + len(b.tail) }

// IsEmpty reports whether the buffer holds no items.
func (b *Buffer) IsEmpty() bool { return b.Len() == 0 }

// Clear empties the buffer; used by the coordinator on restart (spec.md
// §4.6).
func (b *Buffer) Clear() {
	b.pre = nil
	b.tail = nil
	b.tailSorted = true
}

// All yields items in current order: the sorted prefix, then the tail
// as stored (unsorted unless a prior Get forced a sort).
func (b *Buffer) All(yield func(int, MatchedItem) bool) {
	idx := 0
	for _, m := range b.pre {
		if !yield(idx, m) {
			return
		}
		idx++
	}
	for _, m := range b.tail {
		if !yield(idx, m) {
			return
		}
		idx++
	}
}

func (b *Buffer) sortTailIfNeeded() {
	if b.tailSorted {
		return
	}
	sort.SliceStable(b.tail, func(i, j int) bool { return b.cmp(b.tail[i], b.tail[j]) })
	b.tailSorted = true
}

// stableMerge merges two already-comparator-sorted slices into one
// comparator-sorted slice, preferring a (the left run) on ties to keep
// merge semantics stable.
func stableMerge(a, b []MatchedItem, less Comparator) []MatchedItem {
	out := make([]MatchedItem, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if less(b[j], a[i]) {
			out = append(out, b[j])
			j++
		} else {
			out = append(out, a[i])
			i++
		}
	}
	out = append(out, a[i:]...)
	out = append(out, b[j:]...)
	return out
}
