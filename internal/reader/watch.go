package reader

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"

	"github.com/dshills/gofind/internal/applog"
	"github.com/dshills/gofind/internal/queue"
)

// WatchCommandSource wraps CommandSource with an fsnotify watch on a
// caller-specified path: a write to the watched path retires the
// current CommandSource generation and starts a fresh one, letting
// callers re-run the source command whenever a file it depends on
// changes (e.g. live grep-reload on a changing file list).
type WatchCommandSource struct {
	mu          sync.Mutex
	cmdTemplate string
	query       string
	log         *applog.Logger
	ctx         context.Context

	current *CommandSource
	gen     atomic.Uint64

	watcher  *fsnotify.Watcher
	closeCh  chan struct{}
	closedWg sync.WaitGroup
}

// NewWatchCommandSource starts cmdTemplate as a CommandSource and
// begins watching watchPath; each write/create event to watchPath
// restarts the command.
func NewWatchCommandSource(ctx context.Context, cmdTemplate, query, watchPath string, log *applog.Logger) (*WatchCommandSource, error) {
	if log == nil {
		log = applog.Null
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(watchPath); err != nil {
		_ = fsw.Close()
		return nil, err
	}

	wcs := &WatchCommandSource{
		cmdTemplate: cmdTemplate,
		query:       query,
		log:         log,
		ctx:         ctx,
		watcher:     fsw,
		closeCh:     make(chan struct{}),
	}
	wcs.current = NewCommandSource(ctx, cmdTemplate, query, log)

	wcs.closedWg.Add(1)
	go wcs.watchLoop()

	return wcs, nil
}

// Generation returns the current restart generation: it increments
// each time the watched path triggers a command restart.
func (wcs *WatchCommandSource) Generation() uint64 {
	return wcs.gen.Load()
}

func (wcs *WatchCommandSource) watchLoop() {
	defer wcs.closedWg.Done()

	for {
		select {
		case <-wcs.closeCh:
			return
		case ev, ok := <-wcs.watcher.Events:
			if !ok {
				return
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
				wcs.restart()
			}
		case err, ok := <-wcs.watcher.Errors:
			if !ok {
				return
			}
			wcs.log.WithComponent("reader.watch").Warn("fsnotify error: %v", err)
		}
	}
}

func (wcs *WatchCommandSource) restart() {
	wcs.mu.Lock()
	defer wcs.mu.Unlock()

	wcs.current.Stop()
	wcs.current = NewCommandSource(wcs.ctx, wcs.cmdTemplate, wcs.query, wcs.log)
	wcs.gen.Add(1)
}

// Stop cancels the active command, stops watching, and closes the
// fsnotify watcher. No orphan child process or goroutine survives it.
func (wcs *WatchCommandSource) Stop() {
	wcs.mu.Lock()
	current := wcs.current
	wcs.mu.Unlock()

	current.Stop()

	select {
	case <-wcs.closeCh:
	default:
		close(wcs.closeCh)
	}
	wcs.closedWg.Wait()
	_ = wcs.watcher.Close()
}

// IsDone reports whether the currently active command has finished.
func (wcs *WatchCommandSource) IsDone() bool {
	wcs.mu.Lock()
	defer wcs.mu.Unlock()
	return wcs.current.IsDone()
}

// Queue returns the currently active command's queue. A restart swaps
// in a fresh, empty queue: callers that need restart notifications
// should poll Generation alongside Queue.
func (wcs *WatchCommandSource) Queue() *queue.Queue {
	wcs.mu.Lock()
	defer wcs.mu.Unlock()
	return wcs.current.Queue()
}
