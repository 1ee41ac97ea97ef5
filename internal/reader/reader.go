// Package reader implements the item sources that feed the shared
// queue: a spawned-command source, a caller-supplied channel source,
// and a file-watching variant of the command source grounded on the
// teacher's fsnotify-backed project watcher.
package reader

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/dshills/gofind/internal/applog"
	"github.com/dshills/gofind/internal/errs"
	"github.com/dshills/gofind/internal/item"
	"github.com/dshills/gofind/internal/queue"
)

// Source is a reader in progress: it pushes item.Item values into a
// queue.Queue on a dedicated goroutine and reports when it's done.
type Source interface {
	// Stop cancels the source and waits for its goroutine(s) to exit; no
	// child process outlives Stop.
	Stop()
	// IsDone reports whether the source has finished producing items.
	// Non-blocking.
	IsDone() bool
	// Queue returns the shared queue this source pushes into.
	Queue() *queue.Queue
}

// interpolate replaces the first "%s" token in cmdTemplate with query,
// shell-quoted. If cmdTemplate contains no "%s", query is appended as a
// final shell-quoted argument.
func interpolate(cmdTemplate, query string) string {
	quoted := shellQuote(query)
	if strings.Contains(cmdTemplate, "%s") {
		return strings.Replace(cmdTemplate, "%s", quoted, 1)
	}
	if cmdTemplate == "" {
		return quoted
	}
	return cmdTemplate + " " + quoted
}

// shellQuote wraps s in single quotes for /bin/sh -c, escaping any
// embedded single quotes.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// CommandSource spawns a shell command, reads its stdout line by line,
// ANSI-parses each line into an item.Item, and pushes into q.
type CommandSource struct {
	q      *queue.Queue
	log    *applog.Logger
	cancel context.CancelFunc
	wg     sync.WaitGroup
	done   atomic.Bool
	err    atomic.Value // error
}

// NewCommandSource starts cmdTemplate (with query interpolated via %s,
// or appended if absent) under /bin/sh -c and begins streaming its
// output into a new queue.
func NewCommandSource(ctx context.Context, cmdTemplate, query string, log *applog.Logger) *CommandSource {
	if log == nil {
		log = applog.Null
	}
	ctx, cancel := context.WithCancel(ctx)
	cs := &CommandSource{
		q:      queue.New(),
		log:    log,
		cancel: cancel,
	}

	shellCmd := interpolate(cmdTemplate, query)
	cmd := exec.CommandContext(ctx, "/bin/sh", "-c", shellCmd)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cs.err.Store(err)
		cs.done.Store(true)
		cancel()
		return cs
	}
	if startErr := cmd.Start(); startErr != nil {
		cs.err.Store(startErr)
		cs.done.Store(true)
		cancel()
		return cs
	}

	cs.wg.Add(1)
	go cs.stream(cmd, stdout)

	return cs
}

func (cs *CommandSource) stream(cmd *exec.Cmd, stdout io.Reader) {
	defer cs.wg.Done()
	defer cs.done.Store(true)

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	ordinal := 0
	for scanner.Scan() {
		raw := scanner.Text()
		display := item.ParseANSI(raw)
		it := item.Item{Text: raw, Display: display, Ordinal: ordinal}
		cs.q.Push(it)
		ordinal++
	}
	if err := scanner.Err(); err != nil {
		cs.log.WithField("source", "command").Warn("scan error: %v", err)
		cs.err.Store(err)
	}

	_ = cmd.Wait()
}

// Stop cancels the command's context and waits for the reading
// goroutine to exit, guaranteeing no orphan child process.
func (cs *CommandSource) Stop() {
	cs.cancel()
	cs.wg.Wait()
}

// IsDone reports whether stdout has been fully drained.
func (cs *CommandSource) IsDone() bool { return cs.done.Load() }

// Queue returns the shared queue this source pushes into.
func (cs *CommandSource) Queue() *queue.Queue { return cs.q }

// Err returns the first error encountered, if any, wrapped in
// errs.ErrSourceFailure.
func (cs *CommandSource) Err() error {
	if err, ok := cs.err.Load().(error); ok {
		return fmt.Errorf("%w: %v", errs.ErrSourceFailure, err)
	}
	return nil
}

// ChannelSource tees a caller-supplied channel of items into a queue
// until the channel closes.
type ChannelSource struct {
	q      *queue.Queue
	cancel context.CancelFunc
	wg     sync.WaitGroup
	done   atomic.Bool
}

// NewChannelSource starts teeing in into a new queue, assigning
// ordinals in arrival order. The source stops either when in closes or
// when the returned Source's Stop is called.
func NewChannelSource(ctx context.Context, in <-chan item.Item) *ChannelSource {
	ctx, cancel := context.WithCancel(ctx)
	chs := &ChannelSource{q: queue.New(), cancel: cancel}

	chs.wg.Add(1)
	go chs.tee(ctx, in)

	return chs
}

func (chs *ChannelSource) tee(ctx context.Context, in <-chan item.Item) {
	defer chs.wg.Done()
	defer chs.done.Store(true)

	ordinal := 0
	for {
		select {
		case it, ok := <-in:
			if !ok {
				return
			}
			it.Ordinal = ordinal
			chs.q.Push(it)
			ordinal++
		case <-ctx.Done():
			return
		}
	}
}

// Stop cancels teeing; it does not close in, which the caller owns.
func (chs *ChannelSource) Stop() {
	chs.cancel()
	chs.wg.Wait()
}

// IsDone reports whether the input channel has closed or Stop was
// called.
func (chs *ChannelSource) IsDone() bool { return chs.done.Load() }

// Queue returns the shared queue this source pushes into.
func (chs *ChannelSource) Queue() *queue.Queue { return chs.q }
