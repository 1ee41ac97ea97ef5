package ordered

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/dshills/gofind/internal/fuzzy"
	"github.com/dshills/gofind/internal/item"
)

func mi(score, ordinal int) MatchedItem {
	return MatchedItem{
		Item:   item.New("x", ordinal),
		Result: fuzzy.MatchResult{Score: score, FirstPos: 0, TextLen: 1},
	}
}

// TestPrefixStaysOrdered is property 4 from spec.md §8: after any
// sequence of AppendOrdered calls, the first min(K, len) elements are
// in non-decreasing comparator order.
func TestPrefixStaysOrdered(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	const k = 5
	b := New(k, Less)

	var all []MatchedItem
	for round := 0; round < 50; round++ {
		batchLen := rng.Intn(4)
		batch := make([]MatchedItem, batchLen)
		for i := range batch {
			batch[i] = mi(rng.Intn(10), len(all)+i)
		}
		b.AppendOrdered(batch)
		all = append(all, batch...)

		for i := 1; i < len(b.pre); i++ {
			if Less(b.pre[i], b.pre[i-1]) {
				t.Fatalf("round %d: prefix out of order at %d: %+v", round, i, b.pre)
			}
		}
		if len(b.pre) > k {
			t.Fatalf("round %d: prefix exceeds capacity: len=%d", round, len(b.pre))
		}
	}

	sort.SliceStable(all, func(i, j int) bool { return Less(all[i], all[j]) })
	want := all
	if len(want) > k {
		want = want[:k]
	}
	if len(b.pre) != len(want) {
		t.Fatalf("prefix len = %d, want %d", len(b.pre), len(want))
	}
	for i := range want {
		if b.pre[i].Item.Ordinal != want[i].Item.Ordinal {
			t.Fatalf("prefix[%d] ordinal = %d, want %d", i, b.pre[i].Item.Ordinal, want[i].Item.Ordinal)
		}
	}
}

func TestAppendOrderedStableOnTies(t *testing.T) {
	b := New(10, Less)
	b.AppendOrdered([]MatchedItem{mi(5, 0), mi(5, 1), mi(5, 2)})
	b.AppendOrdered([]MatchedItem{mi(5, 3)})

	got, _ := b.Get(0)
	if got.Item.Ordinal != 0 {
		t.Fatalf("expected ordinal 0 first among ties by Less tie-break, got %d", got.Item.Ordinal)
	}
	for i := 0; i < 4; i++ {
		m, ok := b.Get(i)
		if !ok || m.Item.Ordinal != i {
			t.Fatalf("Get(%d) = %+v, ok=%v; want ordinal %d", i, m, ok, i)
		}
	}
}

func TestOverflowGoesToTailAndLazilySorts(t *testing.T) {
	b := New(2, Less)
	b.AppendOrdered([]MatchedItem{mi(1, 0), mi(2, 1), mi(3, 2)})

	if len(b.pre) != 2 {
		t.Fatalf("prefix len = %d, want 2", len(b.pre))
	}
	if b.tailSorted {
		t.Fatal("tail should not be marked sorted before a Get forces it")
	}

	b.AppendOrdered([]MatchedItem{mi(0, 3)})

	if b.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", b.Len())
	}

	last, ok := b.Get(3)
	if !ok {
		t.Fatal("expected a fourth element")
	}
	if last.Result.Score != 0 {
		t.Fatalf("lowest score should sort last in tail, got %+v", last)
	}
	if !b.tailSorted {
		t.Fatal("Get past the prefix should force a tail sort")
	}
}

func TestClearEmptiesBuffer(t *testing.T) {
	b := New(3, Less)
	b.AppendOrdered([]MatchedItem{mi(1, 0), mi(2, 1), mi(3, 2), mi(4, 3)})
	if b.IsEmpty() {
		t.Fatal("expected non-empty buffer before Clear")
	}
	b.Clear()
	if !b.IsEmpty() || b.Len() != 0 {
		t.Fatalf("expected empty buffer after Clear, got Len()=%d", b.Len())
	}
	if _, ok := b.Get(0); ok {
		t.Fatal("Get should fail on an empty buffer")
	}
}

func TestNewDefaultsCapacityAndComparator(t *testing.T) {
	b := New(0, nil)
	if b.k != DefaultCapacity {
		t.Fatalf("k = %d, want %d", b.k, DefaultCapacity)
	}
	if b.cmp == nil {
		t.Fatal("expected a default comparator")
	}
}

func TestAllIteratesPrefixThenTailInStoredOrder(t *testing.T) {
	b := New(1, Less)
	b.AppendOrdered([]MatchedItem{mi(3, 0), mi(2, 1), mi(1, 2)})

	var ordinals []int
	b.All(func(_ int, m MatchedItem) bool {
		ordinals = append(ordinals, m.Item.Ordinal)
		return true
	})
	if len(ordinals) != 3 {
		t.Fatalf("All() visited %d items, want 3", len(ordinals))
	}
	if ordinals[0] != 0 {
		t.Fatalf("prefix head ordinal = %d, want 0 (best score)", ordinals[0])
	}
}

func TestAllStopsWhenYieldReturnsFalse(t *testing.T) {
	b := New(5, Less)
	b.AppendOrdered([]MatchedItem{mi(3, 0), mi(2, 1), mi(1, 2)})

	count := 0
	b.All(func(_ int, _ MatchedItem) bool {
		count++
		return count < 1
	})
	if count != 1 {
		t.Fatalf("expected iteration to stop after 1, got %d", count)
	}
}
