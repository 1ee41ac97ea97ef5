// Package keymap translates bound key names to coordinator actions,
// adapted from the teacher's internal/input/keymap package: a flat
// table of string keys to action identifiers, simplified from the
// teacher's mode/file-type/priority-layered Keymap since gofind has a
// single global binding context (SPEC_FULL.md §6).
package keymap

import (
	"fmt"
	"strings"

	"github.com/dshills/gofind/internal/coordinator"
	"github.com/tidwall/match"
)

var actionNames = map[string]coordinator.Action{
	"backspace":      coordinator.ActionBackspace,
	"up":             coordinator.ActionMoveUp,
	"down":           coordinator.ActionMoveDown,
	"page-up":        coordinator.ActionPageUp,
	"page-down":      coordinator.ActionPageDown,
	"toggle-select":  coordinator.ActionToggleSelect,
	"accept":         coordinator.ActionAccept,
	"abort":          coordinator.ActionAbort,
	"invoke-preview": coordinator.ActionInvokePreview,
	"restart":        coordinator.ActionRestart,
}

// Table maps a key name ("ctrl-j", "enter", "tab", ...) to the ordered
// list of actions it triggers. Unknown keys are simply absent from the
// table; looking one up yields (nil, false) and the input translator
// ignores it (SPEC_FULL.md §6).
type Table struct {
	bindings map[string][]coordinator.Action
}

// New builds an empty Table.
func New() *Table {
	return &Table{bindings: make(map[string][]coordinator.Action)}
}

// FromBindings builds a Table from a key->"action[,action...]" map, the
// shape gofind's Config.Bindings and --bind flag both produce.
func FromBindings(bindings map[string]string) (*Table, error) {
	t := New()
	for key, spec := range bindings {
		actions, err := parseActions(spec)
		if err != nil {
			return nil, fmt.Errorf("binding %q: %w", key, err)
		}
		t.bindings[key] = actions
	}
	return t, nil
}

func parseActions(spec string) ([]coordinator.Action, error) {
	parts := strings.Split(spec, ",")
	actions := make([]coordinator.Action, 0, len(parts))
	for _, p := range parts {
		name := strings.TrimSpace(p)
		action, ok := actionNames[name]
		if !ok {
			return nil, fmt.Errorf("unknown action %q", name)
		}
		actions = append(actions, action)
	}
	return actions, nil
}

// Bind sets (overwriting) the actions triggered by key.
func (t *Table) Bind(key string, actions ...coordinator.Action) {
	t.bindings[key] = actions
}

// Unbind removes every key matching pattern (a tidwall/match glob, e.g.
// "ctrl-*"), returning how many bindings were removed.
func (t *Table) Unbind(pattern string) int {
	removed := 0
	for key := range t.bindings {
		if match.Match(key, pattern) {
			delete(t.bindings, key)
			removed++
		}
	}
	return removed
}

// Lookup returns the actions bound to key, if any.
func (t *Table) Lookup(key string) ([]coordinator.Action, bool) {
	actions, ok := t.bindings[key]
	return actions, ok
}
