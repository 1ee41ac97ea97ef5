package cli

import (
	"bufio"
	"context"
	"io"

	"github.com/dshills/gofind/internal/item"
)

// stdinItems reads r line by line, ANSI-parsing each line into an
// item.Item, and streams them on the returned channel until r is
// exhausted or ctx is canceled. This is the channel-source half of
// SPEC_FULL.md §4.5/§6 ("stdin if omitted"): the coordinator's
// StartChannel drives the rest (teeing into the shared queue,
// generation bookkeeping).
func stdinItems(ctx context.Context, r io.Reader) <-chan item.Item {
	out := make(chan item.Item)
	go func() {
		defer close(out)
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)
		for scanner.Scan() {
			it := item.Item{Text: scanner.Text(), Display: item.ParseANSI(scanner.Text())}
			select {
			case out <- it:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}
