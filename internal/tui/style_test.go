package tui

import (
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/gofind/internal/item"
	"github.com/dshills/gofind/internal/renderer/core"
)

func TestConvertStyleBold(t *testing.T) {
	s := core.Style{
		Foreground: core.ColorFromRGB(255, 0, 0),
		Background: core.ColorDefault,
		Attributes: core.AttrBold,
	}
	ts := convertStyle(s)
	fg, _, attrs := ts.Decompose()
	if fg != tcell.NewRGBColor(255, 0, 0) {
		t.Errorf("foreground = %v, want red", fg)
	}
	if !attrs.Contains(tcell.AttrBold) {
		t.Errorf("expected bold attribute")
	}
}

func TestStyleAtFallsBackToBase(t *testing.T) {
	base := tcell.StyleDefault.Dim(true)
	got := styleAt(base, nil, 3)
	if got != base {
		t.Errorf("styleAt with no runs = %v, want base", got)
	}
}

func TestStyleAtUsesMatchingRun(t *testing.T) {
	base := tcell.StyleDefault
	runs := []item.Run{
		{Start: 2, End: 5, Style: core.Style{Foreground: core.ColorFromRGB(0, 255, 0), Background: core.ColorDefault}},
	}
	got := styleAt(base, runs, 3)
	fg, _, _ := got.Decompose()
	if fg != tcell.NewRGBColor(0, 255, 0) {
		t.Errorf("styleAt in-run = %v, want green foreground", fg)
	}

	got = styleAt(base, runs, 6)
	if got != base {
		t.Errorf("styleAt out-of-run = %v, want base", got)
	}
}
