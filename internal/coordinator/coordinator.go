// Package coordinator implements the single-threaded cooperative event
// loop that owns query state and the reader/matcher/ordered-buffer
// lifecycle, grounded on the teacher's Application event loop
// (select over input events and a render ticker, generation-tagged
// async work discarded when stale).
package coordinator

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/gofind/internal/applog"
	"github.com/dshills/gofind/internal/errs"
	"github.com/dshills/gofind/internal/event"
	"github.com/dshills/gofind/internal/event/events"
	"github.com/dshills/gofind/internal/fuzzy"
	"github.com/dshills/gofind/internal/item"
	"github.com/dshills/gofind/internal/matcher"
	"github.com/dshills/gofind/internal/ordered"
	"github.com/dshills/gofind/internal/reader"
)

// Renderer is the UI collaborator the coordinator drives at render-tick
// boundaries (spec.md §6). A nil Renderer is valid: Run then operates
// headless, useful for tests and for --select-1 non-interactive runs.
type Renderer interface {
	Render(Snapshot)
}

// ScorerFactory compiles a query into a fuzzy.CompiledScorer. Both
// fuzzy.Factory (the default) and scripthook.Factory (the optional
// Lua-backed override, SPEC_FULL.md §12) satisfy this.
type ScorerFactory interface {
	Compile(query string, mode fuzzy.CaseMode) fuzzy.CompiledScorer
}

// PreviewRunner renders preview content for an item; preview.Runner
// satisfies this. A nil PreviewRunner makes ActionInvokePreview a no-op.
type PreviewRunner interface {
	Render(ctx context.Context, it item.Item) (string, error)
}

// Config configures a Coordinator.
type Config struct {
	Workers       int
	CaseMode      fuzzy.CaseMode
	MultiSelect   bool
	Capacity      int // ordered buffer prefix size K; 0 defaults to ordered.DefaultCapacity
	Log           *applog.Logger
	Bus           event.Bus // optional; lifecycle notifications published here if non-nil
	TickPeriod    time.Duration
	ScorerFactory ScorerFactory // nil defaults to fuzzy.NewFactory()
	Preview       PreviewRunner // nil disables ActionInvokePreview
}

func (c Config) withDefaults() Config {
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.Log == nil {
		c.Log = applog.Null
	}
	if c.TickPeriod <= 0 {
		c.TickPeriod = 16 * time.Millisecond
	}
	if c.ScorerFactory == nil {
		c.ScorerFactory = fuzzy.NewFactory()
	}
	return c
}

// Coordinator is not safe for concurrent use of its Run loop from
// multiple goroutines; Send is the only method meant to be called
// concurrently with Run (spec.md §5: single-threaded cooperative loop).
type Coordinator struct {
	cfg Config

	mu           sync.Mutex
	state        State
	readerGen    uint64
	matcherGen   uint64
	searchQuery  string
	cmdTemplate  string
	commandQuery string

	src  reader.Source
	pool *matcher.Pool
	buf  *ordered.Buffer

	matchCancel context.CancelFunc
	matchCh     <-chan matcher.Batch

	selected    map[int]item.Item
	highlighted int

	previewOrdinal int
	previewText    string

	sessionID string

	events chan Event
	done   chan struct{}
	once   sync.Once
}

// New constructs an idle Coordinator ready for Start. Each Coordinator
// is tagged with a random session ID (SPEC_FULL.md §13), attached to
// every log line so reader/matcher/UI output from one finder
// invocation can be correlated in aggregated logs.
func New(cfg Config) *Coordinator {
	cfg = cfg.withDefaults()
	sessionID := uuid.NewString()
	cfg.Log = cfg.Log.WithField("session", sessionID)
	return &Coordinator{
		cfg:       cfg,
		state:     StateIdle,
		pool:      matcher.NewPool(cfg.Workers),
		buf:       ordered.New(cfg.Capacity, ordered.Less),
		selected:  make(map[int]item.Item),
		sessionID: sessionID,
		events:    make(chan Event, 256),
		done:      make(chan struct{}),
	}
}

// SessionID returns this coordinator's random session identifier, for
// callers that want to correlate external logs (e.g. a preview
// subprocess's own stderr) with this run.
func (c *Coordinator) SessionID() string { return c.sessionID }

// Send delivers an Event to the coordinator's loop. Safe to call from
// any goroutine; never blocks past Run returning.
func (c *Coordinator) Send(ev Event) {
	select {
	case c.events <- ev:
	case <-c.done:
	}
}

// StartCommand transitions Idle→Reading using a spawned command source.
func (c *Coordinator) StartCommand(ctx context.Context, cmdTemplate, query string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateIdle {
		return errs.ErrAlreadyRunning
	}
	c.cmdTemplate = cmdTemplate
	c.commandQuery = query
	c.readerGen++
	c.src = reader.NewCommandSource(ctx, cmdTemplate, query, c.cfg.Log)
	c.state = StateReading
	c.publishState(StateIdle, StateReading)
	return nil
}

// StartChannel transitions Idle→Reading using a caller-supplied item
// channel.
func (c *Coordinator) StartChannel(ctx context.Context, in <-chan item.Item) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateIdle {
		return errs.ErrAlreadyRunning
	}
	c.readerGen++
	c.src = reader.NewChannelSource(ctx, in)
	c.state = StateReading
	c.publishState(StateIdle, StateReading)
	return nil
}

// Run drives the event loop until Accept, Abort, or ctx is canceled. It
// calls render.Render(Snapshot) at each tick boundary if render is
// non-nil. Run is not reentrant: call it once per Coordinator.
func (c *Coordinator) Run(ctx context.Context, render Renderer) (Result, error) {
	defer c.once.Do(func() { close(c.done) })

	ticker := time.NewTicker(c.cfg.TickPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.stopChildren()
			return Result{Aborted: true}, ctx.Err()

		case ev := <-c.events:
			if result, terminal := c.handleEvent(ctx, ev); terminal {
				c.stopChildren()
				return result, nil
			}

		case <-ticker.C:
			c.tick(ctx)
			if render != nil {
				render.Render(c.snapshotLocked())
			}
		}
	}
}

func (c *Coordinator) handleEvent(ctx context.Context, ev Event) (Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch ev.Kind {
	case EventKeyPress:
		c.searchQuery += string(ev.Rune)
		c.restartMatchingLocked(ctx)

	case EventResize:
		// Dimensions are consumed by the Renderer via Snapshot; the
		// coordinator itself holds no layout state.

	case EventInterrupt:
		// No-op: its only purpose is to unblock a blocking Send/select.

	case EventPreviewReady:
		if ev.PreviewOrdinal == c.highlightedOrdinalLocked() {
			c.previewOrdinal = ev.PreviewOrdinal
			c.previewText = ev.PreviewText
		}

	case EventAction:
		switch ev.Action {
		case ActionBackspace:
			if n := len(c.searchQuery); n > 0 {
				_, size := decodeLastRune(c.searchQuery)
				c.searchQuery = c.searchQuery[:n-size]
				c.restartMatchingLocked(ctx)
			}
		case ActionMoveUp:
			if c.highlighted > 0 {
				c.highlighted--
			}
		case ActionMoveDown:
			if c.highlighted+1 < c.buf.Len() {
				c.highlighted++
			}
		case ActionPageUp:
			c.highlighted -= pageSize
			if c.highlighted < 0 {
				c.highlighted = 0
			}
		case ActionPageDown:
			c.highlighted += pageSize
			if max := c.buf.Len() - 1; c.highlighted > max {
				c.highlighted = max
			}
			if c.highlighted < 0 {
				c.highlighted = 0
			}
		case ActionToggleSelect:
			if c.cfg.MultiSelect {
				c.toggleSelectLocked()
			}
		case ActionInvokePreview:
			c.invokePreviewLocked(ctx)
		case ActionAccept:
			result := c.acceptLocked(ev.AcceptTag)
			from := c.state
			c.state = StateAccepted
			c.publishState(from, StateAccepted)
			c.publishAccepted(result)
			return result, true
		case ActionAbort:
			from := c.state
			c.state = StateAborted
			c.publishState(from, StateAborted)
			c.publishAborted("user abort")
			return Result{Query: c.searchQuery, Aborted: true}, true
		case ActionRestart:
			c.restartWithLocked(ctx, ev.NewCommand, ev.NewQuery)
		}
	}
	return Result{}, false
}

const pageSize = 10

func (c *Coordinator) toggleSelectLocked() {
	m, ok := c.buf.Get(c.highlighted)
	if !ok {
		return
	}
	if _, already := c.selected[m.Item.Ordinal]; already {
		delete(c.selected, m.Item.Ordinal)
	} else {
		c.selected[m.Item.Ordinal] = m.Item
	}
}

// highlightedOrdinalLocked returns the Ordinal of the currently
// highlighted item, or -1 if there is none, so a preview result can be
// dropped if the highlight moved on before the render finished.
func (c *Coordinator) highlightedOrdinalLocked() int {
	m, ok := c.buf.Get(c.highlighted)
	if !ok {
		return -1
	}
	return m.Item.Ordinal
}

// invokePreviewLocked spawns the preview collaborator for the
// highlighted item on its own goroutine (preview.Runner.Render may
// shell out and block on a subprocess) and feeds the result back in as
// an EventPreviewReady so Run's own state stays single-threaded.
func (c *Coordinator) invokePreviewLocked(ctx context.Context) {
	if c.cfg.Preview == nil {
		return
	}
	m, ok := c.buf.Get(c.highlighted)
	if !ok {
		return
	}
	it := m.Item
	go func() {
		text, err := c.cfg.Preview.Render(ctx, it)
		if err != nil {
			text = err.Error()
		}
		c.Send(Event{Kind: EventPreviewReady, PreviewOrdinal: it.Ordinal, PreviewText: text})
	}()
}

func (c *Coordinator) acceptLocked(tag string) Result {
	result := Result{Query: c.searchQuery, Tag: tag}
	if len(c.selected) > 0 {
		for _, it := range c.selected {
			result.Selected = append(result.Selected, it)
		}
		return result
	}
	if m, ok := c.buf.Get(c.highlighted); ok {
		result.Selected = []item.Item{m.Item}
	}
	return result
}

// tick drains any pending matcher batches into the ordered buffer and,
// if the reader has produced its first items while still in Reading,
// starts the matcher pool (spec.md §4.6: Reading→Matching).
func (c *Coordinator) tick(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateReading && c.src != nil && c.src.Queue().Len() > 0 {
		c.startMatchingLocked(ctx)
	}

	if c.matchCh == nil {
		return
	}
	for {
		select {
		case batch, ok := <-c.matchCh:
			if !ok {
				c.matchCh = nil
				return
			}
			if batch.Generation != c.matcherGen {
				continue // stale generation, discard (spec.md §4.3, §5)
			}
			if len(batch.Items) > 0 {
				c.buf.AppendOrdered(batch.Items)
			}
			c.publishMatcherTick(batch)
		default:
			return
		}
	}
}

func (c *Coordinator) startMatchingLocked(ctx context.Context) {
	c.matcherGen++
	c.buf.Clear()
	c.highlighted = 0

	matchCtx, cancel := context.WithCancel(ctx)
	c.matchCancel = cancel
	scorer := c.cfg.ScorerFactory.Compile(c.searchQuery, c.cfg.CaseMode)
	c.matchCh = c.pool.Start(matchCtx, c.src.Queue(), scorer, c.matcherGen)

	from := c.state
	c.state = StateMatching
	c.publishState(from, StateMatching)
}

// restartMatchingLocked implements Matching↔Matching' on query change:
// cancel in-flight matcher workers, clear the buffer, re-match the
// whole (possibly still-growing) queue against the new query.
func (c *Coordinator) restartMatchingLocked(ctx context.Context) {
	if c.state != StateMatching && c.state != StateReading {
		return
	}
	if c.matchCancel != nil {
		c.matchCancel()
	}
	if c.src == nil {
		return
	}
	c.startMatchingLocked(ctx)
}

// restartWithLocked implements Any→Restarting: stop reader and matcher,
// clear queue and buffer, bump both generations, transition to Reading.
func (c *Coordinator) restartWithLocked(ctx context.Context, newCmd, newQuery string) {
	from := c.state
	c.state = StateRestarting
	c.publishState(from, StateRestarting)

	if c.matchCancel != nil {
		c.matchCancel()
		c.matchCancel = nil
	}
	c.matchCh = nil
	c.matcherGen++
	if c.src != nil {
		c.src.Stop()
	}
	c.buf.Clear()
	c.selected = make(map[int]item.Item)
	c.highlighted = 0

	if newCmd != "" {
		c.cmdTemplate = newCmd
	}
	if newQuery != "" {
		c.commandQuery = newQuery
	}
	c.readerGen++
	c.src = reader.NewCommandSource(ctx, c.cmdTemplate, c.commandQuery, c.cfg.Log)

	c.publishReaderRestarted()
	c.state = StateReading
	c.publishState(StateRestarting, StateReading)
}

func (c *Coordinator) stopChildren() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.matchCancel != nil {
		c.matchCancel()
	}
	if c.src != nil {
		c.src.Stop()
	}
}

func (c *Coordinator) snapshotLocked() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := c.buf.Len()
	snap := Snapshot{
		State:          c.state,
		Query:          c.searchQuery,
		Selected:       c.selected,
		Highlighted:    c.highlighted,
		MatchedCount:   n,
		TotalCount:     n,
		PreviewOrdinal: c.previewOrdinal,
		PreviewText:    c.previewText,
	}
	if c.src != nil {
		snap.TotalCount = c.src.Queue().Len()
		snap.ReaderDone = c.src.IsDone()
	}

	limit := n
	if limit > ordered.DefaultCapacity {
		limit = ordered.DefaultCapacity
	}
	snap.Items = make([]item.Item, 0, limit)
	snap.Scores = make([]int, 0, limit)
	snap.Positions = make([][]int, 0, limit)
	for i := 0; i < limit; i++ {
		m, ok := c.buf.Get(i)
		if !ok {
			break
		}
		snap.Items = append(snap.Items, m.Item)
		snap.Scores = append(snap.Scores, m.Result.Score)
		snap.Positions = append(snap.Positions, m.Result.Positions)
	}
	return snap
}

func (c *Coordinator) publishState(from, to State) {
	if c.cfg.Bus == nil {
		return
	}
	evt := event.NewEvent(events.TopicCoordinatorStateChanged,
		events.CoordinatorStateChanged{From: from.String(), To: to.String()}, "coordinator")
	_ = c.cfg.Bus.Publish(context.Background(), evt)
}

func (c *Coordinator) publishReaderRestarted() {
	if c.cfg.Bus == nil {
		return
	}
	evt := event.NewEvent(events.TopicReaderRestarted,
		events.ReaderRestarted{Generation: c.readerGen, Command: c.cmdTemplate}, "reader")
	_ = c.cfg.Bus.Publish(context.Background(), evt)
}

func (c *Coordinator) publishAccepted(result Result) {
	if c.cfg.Bus == nil {
		return
	}
	ordinals := make([]int, 0, len(result.Selected))
	for _, it := range result.Selected {
		ordinals = append(ordinals, it.Ordinal)
	}
	evt := event.NewEvent(events.TopicCoordinatorAccepted,
		events.CoordinatorAccepted{Selected: ordinals, Query: result.Query}, "coordinator")
	_ = c.cfg.Bus.Publish(context.Background(), evt)
}

func (c *Coordinator) publishAborted(reason string) {
	if c.cfg.Bus == nil {
		return
	}
	evt := event.NewEvent(events.TopicCoordinatorAborted,
		events.CoordinatorAborted{Reason: reason}, "coordinator")
	_ = c.cfg.Bus.Publish(context.Background(), evt)
}

func (c *Coordinator) publishMatcherTick(batch matcher.Batch) {
	if c.cfg.Bus == nil {
		return
	}
	evt := event.NewEvent(events.TopicMatcherTick,
		events.MatcherTick{Generation: batch.Generation, Matched: c.buf.Len(), Total: batch.Total, Done: batch.Done},
		"matcher")
	_ = c.cfg.Bus.Publish(context.Background(), evt)
}

// decodeLastRune returns the last rune of s and its byte size, for
// backspace handling on multi-byte queries.
func decodeLastRune(s string) (rune, int) {
	for i := len(s) - 1; i >= 0; i-- {
		if utf8RuneStart(s[i]) {
			r := []rune(s[i:])
			return r[0], len(s) - i
		}
	}
	return 0, 0
}

func utf8RuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
