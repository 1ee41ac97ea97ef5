package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/dshills/gofind/internal/applog"
	"github.com/dshills/gofind/internal/config"
	"github.com/dshills/gofind/internal/coordinator"
	"github.com/dshills/gofind/internal/errs"
	"github.com/dshills/gofind/internal/event"
	"github.com/dshills/gofind/internal/event/topic"
	"github.com/dshills/gofind/internal/fuzzy"
	"github.com/dshills/gofind/internal/keymap"
	"github.com/dshills/gofind/internal/preview"
	"github.com/dshills/gofind/internal/scripthook"
	"github.com/dshills/gofind/internal/tui"
)

// Exit codes (SPEC_FULL.md §7).
const (
	ExitOK                  = 0
	ExitAborted             = 1
	ExitTerminalUnavailable = 2
	ExitUsage               = 3
)

// App is an assembled, ready-to-run gofind instance, analogous to the
// teacher's app.Application but scoped to the streaming fuzzy-finder
// core plus its concrete UI/preview/config collaborators.
type App struct {
	cfg   config.Config
	log   *applog.Logger
	coord *coordinator.Coordinator
	bus   event.Bus
	out   io.Writer
}

// New builds an App from parsed Options: loads and merges
// configuration, builds the logger, the keymap table, the coordinator,
// and (if --score-script is set) a Lua-backed scorer factory override.
// It does not yet spawn a reader or open a terminal; call Run for that.
func New(opts Options) (*App, error) {
	flagCfg, err := opts.ToConfig()
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(opts.ConfigPath, flagCfg)
	if err != nil {
		return nil, err
	}

	log := applog.New(applog.Config{Level: applog.ParseLevel(cfg.LogLevel), Output: os.Stderr, Prefix: "gofind"})

	var scorerFactory coordinator.ScorerFactory
	if cfg.ScoreScript != "" {
		scorer, err := scripthook.Load(cfg.ScoreScript)
		if err != nil {
			return nil, fmt.Errorf("loading --score-script: %w", err)
		}
		scorerFactory = scripthook.NewFactory(scorer)
	}

	bus := event.NewBus()
	if err := bus.Start(); err != nil {
		return nil, fmt.Errorf("starting event bus: %w", err)
	}
	if _, err := bus.SubscribeFunc(
		topic.Topic(topic.WildcardMulti),
		newLifecycleLogHandler(log),
		event.WithPriority(event.PriorityLow),
		event.WithDeliveryMode(event.DeliveryAsync),
	); err != nil {
		_ = bus.Stop(context.Background())
		return nil, fmt.Errorf("subscribing event log sink: %w", err)
	}

	coordCfg := coordinator.Config{
		CaseMode:      cfg.CaseMode(),
		MultiSelect:   cfg.Multi,
		Log:           log,
		Bus:           bus,
		ScorerFactory: scorerFactory,
		Preview:       preview.New(cfg.Preview),
	}
	coord := coordinator.New(coordCfg)

	return &App{cfg: cfg, log: log, coord: coord, bus: bus, out: os.Stdout}, nil
}

// newLifecycleLogHandler returns a handler that logs every event the
// coordinator publishes on the bus (state transitions, reader restarts,
// matcher ticks, accept/abort), subscribed to the multi-segment
// wildcard so it sees every lifecycle topic in internal/event/events
// without naming each one, the way the teacher's own subscription
// handlers log a single concern each (internal/app/subscriptions.go).
func newLifecycleLogHandler(log *applog.Logger) event.HandlerFunc {
	elog := log.WithComponent("event")
	return func(_ context.Context, ev any) error {
		tp, ok := ev.(event.TopicProvider)
		if !ok {
			return nil
		}
		elog.Debug("%s %+v", tp.EventTopic(), ev)
		return nil
	}
}

// Config returns the App's fully merged configuration (used by
// --print-config).
func (a *App) Config() config.Config { return a.cfg }

// Run drives the App to completion: starts the configured source,
// opens a terminal UI whenever stdout is a TTY (without a TTY it runs
// headless, which only --select-1 allows; otherwise it returns
// ExitTerminalUnavailable), runs the coordinator's
// event loop, and writes the output contract to a.out. It returns the
// process exit code (SPEC_FULL.md §7).
func (a *App) Run(ctx context.Context) int {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer func() { _ = a.bus.Stop(context.Background()) }()

	if err := a.startSource(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "gofind: %v\n", err)
		return ExitUsage
	}

	tbl, err := keymap.FromBindings(a.cfg.Bindings)
	if err != nil {
		fmt.Fprintf(os.Stderr, "gofind: %v\n", err)
		return ExitUsage
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) && !a.cfg.Select1 {
		// Non-interactive, non-select-1 invocation: nothing to render to
		// and no auto-accept rule, so there's no way to pick a result.
		// Matches the teacher's own "backend required unless headless
		// mode applies" check in cmd/keystorm.
		fmt.Fprintln(os.Stderr, "gofind: stdout is not a terminal (use --select-1 for non-interactive use)")
		return ExitTerminalUnavailable
	}

	var ui *tui.Terminal
	if term.IsTerminal(int(os.Stdout.Fd())) {
		ui, err = tui.New(tbl, a.cfg.Mouse)
		if err != nil {
			fmt.Fprintf(os.Stderr, "gofind: %v\n", err)
			return ExitTerminalUnavailable
		}
		defer ui.Close()
		go a.pumpUI(ctx, ui)
	}

	result, err := a.coord.Run(ctx, renderAdapter{ui: ui, app: a})
	if err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "gofind: %v\n", err)
		return ExitAborted
	}

	return a.writeResult(result)
}

// pumpUI forwards translated UI events into the coordinator until ctx
// is canceled, implementing the "UI produces events into the
// coordinator" half of spec.md §2's control flow.
func (a *App) pumpUI(ctx context.Context, ui *tui.Terminal) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		ev := ui.PollEvent()
		a.coord.Send(ev)
	}
}

// renderAdapter adapts a possibly-nil *tui.Terminal to
// coordinator.Renderer; a nil ui means headless (--select-1 without a
// TTY), in which case Render is a no-op. It also implements --select-1
// (SPEC_FULL.md §6): once the reader is done and exactly one item has
// ever matched, it injects an accept action so a headless or
// interactive run resolves without a keypress.
type renderAdapter struct {
	ui  *tui.Terminal
	app *App
}

func (r renderAdapter) Render(snap coordinator.Snapshot) {
	if r.app.cfg.Select1 && snap.ReaderDone && snap.MatchedCount == 1 {
		r.app.coord.Send(coordinator.Event{Kind: coordinator.EventAction, Action: coordinator.ActionAccept})
	}
	if r.ui == nil {
		return
	}
	r.ui.Render(snap)
}

func (a *App) startSource(ctx context.Context) error {
	if a.cfg.Source != "" {
		return a.coord.StartCommand(ctx, a.cfg.Source, a.cfg.Query)
	}
	if term.IsTerminal(int(os.Stdin.Fd())) {
		return fmt.Errorf("%w: no --source given and stdin is a terminal", errs.ErrSourceFailure)
	}
	return a.coord.StartChannel(ctx, stdinItems(ctx, os.Stdin))
}

// writeResult implements the output contract (SPEC_FULL.md §6, §7):
// accept prints the key tag (if any) on its own line followed by one
// selected item per line; abort prints nothing and the process exits
// non-zero; an empty selection at accept prints nothing after the tag
// line.
func (a *App) writeResult(result coordinator.Result) int {
	if result.Aborted {
		return ExitAborted
	}
	if result.Tag != "" {
		fmt.Fprintln(a.out, result.Tag)
	}
	for _, it := range result.Selected {
		fmt.Fprintln(a.out, it.Text)
	}
	return ExitOK
}

// CaseModeFromString exposes fuzzy's string->CaseMode mapping for
// --print-config and tests that don't want to go through config.Config.
func CaseModeFromString(s string) fuzzy.CaseMode {
	return config.Config{Case: s}.CaseMode()
}
