package input

import (
	"testing"

	"github.com/dshills/gofind/internal/coordinator"
)

type fakeTable map[string][]coordinator.Action

func (f fakeTable) Lookup(key string) ([]coordinator.Action, bool) {
	a, ok := f[key]
	return a, ok
}

func TestTranslatePlainRune(t *testing.T) {
	tr := NewTranslator(fakeTable{})
	events := tr.Translate(KeyEvent{Rune: 'a'})
	if len(events) != 1 || events[0].Kind != coordinator.EventKeyPress || events[0].Rune != 'a' {
		t.Fatalf("events = %+v", events)
	}
}

func TestTranslateBoundKey(t *testing.T) {
	tr := NewTranslator(fakeTable{"enter": {coordinator.ActionAccept}})
	events := tr.Translate(KeyEvent{Name: "enter"})
	if len(events) != 1 || events[0].Kind != coordinator.EventAction || events[0].Action != coordinator.ActionAccept {
		t.Fatalf("events = %+v", events)
	}
}

func TestTranslateUnboundNamedKeyIsIgnored(t *testing.T) {
	tr := NewTranslator(fakeTable{})
	events := tr.Translate(KeyEvent{Name: "f13"})
	if events != nil {
		t.Fatalf("events = %+v, want nil", events)
	}
}

func TestTranslateMultiActionBinding(t *testing.T) {
	tr := NewTranslator(fakeTable{"ctrl-x": {coordinator.ActionToggleSelect, coordinator.ActionMoveDown}})
	events := tr.Translate(KeyEvent{Name: "ctrl-x"})
	if len(events) != 2 {
		t.Fatalf("events = %+v, want 2", events)
	}
}
