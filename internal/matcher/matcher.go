// Package matcher implements the worker pool that scores queue items
// against a compiled query, grounded on the chunked top-K worker-pool
// pattern in the teacher's async fuzzy matcher: disjoint index-range
// sharding, one goroutine per worker, generation-tagged cancellation
// checked between items so no worker ever blocks the reader.
package matcher

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/dshills/gofind/internal/fuzzy"
	"github.com/dshills/gofind/internal/item"
	"github.com/dshills/gofind/internal/ordered"
)

// Source is the minimal read surface a Pool needs from the shared item
// log (satisfied by *queue.Queue).
type Source interface {
	Len() int
	At(i int) item.Item
}

// Batch is one emission from a matching pass: a slice of scored items
// tagged with the generation that produced them, plus a running total
// so the coordinator can report progress.
type Batch struct {
	Generation uint64
	Items      []ordered.MatchedItem
	Scanned    int
	Total      int
	Done       bool
}

const (
	batchMaxLen      = 256
	batchFlushPeriod = 30 * time.Millisecond
	minChunkSize     = 50
)

// Pool runs W goroutines (default runtime.NumCPU()) that shard a
// Source's items for one matching pass.
type Pool struct {
	workers int
}

// NewPool returns a Pool with the given worker count. A non-positive
// count defaults to runtime.NumCPU().
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Pool{workers: workers}
}

// Start launches one matching pass over source against scorer, tagged
// with generation, and returns a channel of Batches. The channel is
// closed after a final Batch with Done set to true. Canceling ctx stops
// all workers promptly; the channel is still closed, but the final
// Batch may report Done=false if work was left unfinished — callers
// check ctx.Err() to distinguish interruption from completion.
//
// A finished initial sweep re-checks source.Len(): any items appended
// to the queue while the sweep ran are scored in a trailing pass, so a
// matcher never needs the reader to pause for it to produce a complete
// result set.
func (p *Pool) Start(ctx context.Context, source Source, scorer fuzzy.CompiledScorer, generation uint64) <-chan Batch {
	out := make(chan Batch, p.workers)

	go func() {
		defer close(out)

		processed := 0
		for {
			total := source.Len()
			if total <= processed {
				select {
				case out <- Batch{Generation: generation, Total: total, Scanned: processed, Done: true}:
				case <-ctx.Done():
				}
				return
			}
			if !p.sweep(ctx, source, scorer, generation, processed, total, out) {
				return
			}
			processed = total
		}
	}()

	return out
}

// sweep scores indices [start,end) of source, sharded across p.workers,
// emitting batches as workers accumulate results. Returns false if ctx
// was canceled before the sweep completed.
func (p *Pool) sweep(ctx context.Context, source Source, scorer fuzzy.CompiledScorer, generation uint64, start, end int, out chan<- Batch) bool {
	n := end - start
	chunk := (n + p.workers - 1) / p.workers
	if chunk < minChunkSize {
		chunk = minChunkSize
	}

	var wg sync.WaitGroup
	for s := start; s < end; s += chunk {
		e := s + chunk
		if e > end {
			e = end
		}
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			p.worker(ctx, source, scorer, generation, lo, hi, end, out)
		}(s, e)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return true
	case <-ctx.Done():
		<-done
		return false
	}
}

// worker scores source[lo:hi], flushing a Batch whenever batchMaxLen
// matches accumulate or batchFlushPeriod elapses since the last flush,
// whichever comes first.
func (p *Pool) worker(ctx context.Context, source Source, scorer fuzzy.CompiledScorer, generation uint64, lo, hi, total int, out chan<- Batch) {
	var batch []ordered.MatchedItem
	lastFlush := time.Now()

	flush := func(force bool) bool {
		if len(batch) == 0 && !force {
			return true
		}
		select {
		case out <- Batch{Generation: generation, Items: batch, Total: total, Scanned: hi}:
			batch = nil
			lastFlush = time.Now()
			return true
		case <-ctx.Done():
			return false
		}
	}

	for i := lo; i < hi; i++ {
		select {
		case <-ctx.Done():
			return
		default:
		}

		it := source.At(i)
		res, ok := fuzzy.ScoreItem(scorer, it)
		if ok {
			batch = append(batch, ordered.MatchedItem{Item: it, Result: res})
		}

		if len(batch) >= batchMaxLen || time.Since(lastFlush) >= batchFlushPeriod {
			if !flush(false) {
				return
			}
		}
	}

	flush(true)
}
