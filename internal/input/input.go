// Package input translates raw terminal key events into coordinator
// Events via a bound keymap.Table, replacing the teacher's much larger
// mode/vim/macro input stack (not applicable to a single-line prompt)
// with the minimal translator SPEC_FULL.md §6 actually calls for.
package input

import "github.com/dshills/gofind/internal/coordinator"

// KeyEvent is a backend-agnostic raw key press: Name is the canonical
// bound-key string ("ctrl-j", "enter", "tab", ...) if this key has one,
// or empty for a plain printable rune.
type KeyEvent struct {
	Name string
	Rune rune
}

// Translator turns KeyEvents into coordinator Events by consulting a
// keymap.Table for named keys and falling back to EventKeyPress for
// plain runes.
type Translator struct {
	Table Lookup
}

// Lookup is the minimal surface Translator needs from a keymap.Table.
type Lookup interface {
	Lookup(key string) ([]coordinator.Action, bool)
}

// NewTranslator builds a Translator bound to tbl.
func NewTranslator(tbl Lookup) *Translator {
	return &Translator{Table: tbl}
}

// Translate converts one KeyEvent to zero or more coordinator Events.
// A named key bound to multiple actions yields one Event per action, in
// binding order; an unbound named key yields no events (SPEC_FULL.md
// §6: "unknown keys ignored").
func (t *Translator) Translate(ev KeyEvent) []coordinator.Event {
	if ev.Name == "" {
		return []coordinator.Event{{Kind: coordinator.EventKeyPress, Rune: ev.Rune}}
	}
	actions, ok := t.Table.Lookup(ev.Name)
	if !ok {
		return nil
	}
	out := make([]coordinator.Event, 0, len(actions))
	for _, a := range actions {
		out = append(out, coordinator.Event{Kind: coordinator.EventAction, Action: a})
	}
	return out
}
