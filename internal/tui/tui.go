// Package tui implements ui.UI with a gdamore/tcell/v2 terminal
// backend, grounded on the teacher's internal/renderer/backend.Terminal
// wrapper (Init/Fini/SetContent/Show/Suspend/Resume), but collapsed
// into a single concrete backend rather than the teacher's
// multi-backend core/Cell abstraction: gofind only ever draws one
// screen shape (prompt + match list + status line), so the extra
// indirection buys nothing here.
package tui

import (
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg"

	"github.com/dshills/gofind/internal/coordinator"
	"github.com/dshills/gofind/internal/input"
	"github.com/dshills/gofind/internal/keymap"
	"github.com/dshills/gofind/internal/ui"
)

// Terminal is a tcell-backed ui.UI.
type Terminal struct {
	screen     tcell.Screen
	translator *input.Translator

	incoming chan ui.Event
	quit     chan struct{}
	once     sync.Once
}

// New creates and initializes a tcell screen, enabling mouse reporting
// when mouse is true, and starts the background event pump.
func New(tbl *keymap.Table, mouse bool) (*Terminal, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}
	return newWithScreen(screen, tbl, mouse), nil
}

// newWithScreen builds a Terminal around an already-initialized screen,
// factored out so tests can supply a tcell.SimulationScreen instead of
// a real terminal.
func newWithScreen(screen tcell.Screen, tbl *keymap.Table, mouse bool) *Terminal {
	if mouse {
		screen.EnableMouse()
	}
	t := &Terminal{
		screen:     screen,
		translator: input.NewTranslator(tbl),
		incoming:   make(chan ui.Event, 64),
		quit:       make(chan struct{}),
	}
	go t.pump()
	return t
}

// Close tears down the terminal, restoring the prior screen state. No
// further PollEvent/Render calls are valid afterward.
func (t *Terminal) Close() {
	t.once.Do(func() {
		close(t.quit)
		t.screen.Fini()
	})
}

func (t *Terminal) pump() {
	for {
		ev := t.screen.PollEvent()
		if ev == nil {
			return // screen finalized
		}
		for _, translated := range t.translate(ev) {
			select {
			case t.incoming <- translated:
			case <-t.quit:
				return
			}
		}
	}
}

func (t *Terminal) translate(ev tcell.Event) []ui.Event {
	switch e := ev.(type) {
	case *tcell.EventKey:
		return t.translator.Translate(keyEventFrom(e))
	case *tcell.EventResize:
		w, h := e.Size()
		return []ui.Event{{Kind: coordinator.EventResize, Width: w, Height: h}}
	default:
		return nil
	}
}

// PollEvent implements ui.UI.
func (t *Terminal) PollEvent() ui.Event {
	select {
	case ev := <-t.incoming:
		return ev
	case <-t.quit:
		return ui.Event{Kind: coordinator.EventInterrupt}
	}
}

// SendEvent implements ui.UI.
func (t *Terminal) SendEvent(ev ui.Event) {
	select {
	case t.incoming <- ev:
	case <-t.quit:
	}
}

// Pause implements ui.UI: suspends the tcell screen so a preview
// command can use the terminal, returning a resume closure.
func (t *Terminal) Pause() (resume func()) {
	_ = t.screen.Suspend()
	var resumeOnce sync.Once
	return func() {
		resumeOnce.Do(func() {
			_ = t.screen.Resume()
		})
	}
}

// displayWidth returns the terminal column width of s using
// grapheme-cluster-aware measurement, so wide runes (CJK, emoji) don't
// throw off column math the way naive rune counting would.
func displayWidth(s string) int {
	return uniseg.StringWidth(s)
}
