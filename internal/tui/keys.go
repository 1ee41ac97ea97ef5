package tui

import (
	"github.com/gdamore/tcell/v2"

	"github.com/dshills/gofind/internal/input"
)

// namedKeys maps tcell key codes without a dedicated rune to the
// canonical bound-key names keymap.Table expects, grounded on the
// teacher's internal/input/key package naming (lowercase, hyphenated).
var namedKeys = map[tcell.Key]string{
	tcell.KeyEnter:     "enter",
	tcell.KeyEscape:    "esc",
	tcell.KeyTab:       "tab",
	tcell.KeyBacktab:   "backtab",
	tcell.KeyBackspace: "backspace",
	tcell.KeyBackspace2: "backspace",
	tcell.KeyUp:        "up",
	tcell.KeyDown:      "down",
	tcell.KeyLeft:      "left",
	tcell.KeyRight:     "right",
	tcell.KeyPgUp:      "pgup",
	tcell.KeyPgDn:      "pgdn",
	tcell.KeyHome:      "home",
	tcell.KeyEnd:       "end",
	tcell.KeyDelete:    "delete",
	tcell.KeyCtrlA:     "ctrl-a",
	tcell.KeyCtrlB:     "ctrl-b",
	tcell.KeyCtrlC:     "ctrl-c",
	tcell.KeyCtrlD:     "ctrl-d",
	tcell.KeyCtrlE:     "ctrl-e",
	tcell.KeyCtrlF:     "ctrl-f",
	tcell.KeyCtrlG:     "ctrl-g",
	tcell.KeyCtrlJ:     "ctrl-j",
	tcell.KeyCtrlK:     "ctrl-k",
	tcell.KeyCtrlL:     "ctrl-l",
	tcell.KeyCtrlN:     "ctrl-n",
	tcell.KeyCtrlO:     "ctrl-o",
	tcell.KeyCtrlP:     "ctrl-p",
	tcell.KeyCtrlR:     "ctrl-r",
	tcell.KeyCtrlT:     "ctrl-t",
	tcell.KeyCtrlU:     "ctrl-u",
	tcell.KeyCtrlW:     "ctrl-w",
	tcell.KeyCtrlX:     "ctrl-x",
}

// keyEventFrom translates a tcell key event into the backend-agnostic
// input.KeyEvent the translator consumes: plain printable runes pass
// through as-is, everything else resolves via namedKeys (unrecognized
// keys yield an empty Name, which the translator treats as unbound).
func keyEventFrom(ev *tcell.EventKey) input.KeyEvent {
	if ev.Key() == tcell.KeyRune {
		return input.KeyEvent{Rune: ev.Rune()}
	}
	if name, ok := namedKeys[ev.Key()]; ok {
		return input.KeyEvent{Name: name}
	}
	return input.KeyEvent{}
}
