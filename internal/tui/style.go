package tui

import (
	"github.com/gdamore/tcell/v2"

	"github.com/dshills/gofind/internal/item"
	"github.com/dshills/gofind/internal/renderer/core"
)

// convertStyle converts an item's parsed ANSI style to a tcell.Style,
// adapted from the teacher's internal/renderer/backend.convertStyle:
// the same core.Style type is the contract between item.ParseANSI and
// any terminal backend (item.Display is rendered verbatim and never
// reparsed by the matcher, spec.md §4.1).
func convertStyle(s core.Style) tcell.Style {
	style := tcell.StyleDefault

	if !s.Foreground.IsDefault() {
		if s.Foreground.Indexed {
			style = style.Foreground(tcell.PaletteColor(int(s.Foreground.R)))
		} else {
			style = style.Foreground(tcell.NewRGBColor(int32(s.Foreground.R), int32(s.Foreground.G), int32(s.Foreground.B)))
		}
	}
	if !s.Background.IsDefault() {
		if s.Background.Indexed {
			style = style.Background(tcell.PaletteColor(int(s.Background.R)))
		} else {
			style = style.Background(tcell.NewRGBColor(int32(s.Background.R), int32(s.Background.G), int32(s.Background.B)))
		}
	}

	if s.Attributes.Has(core.AttrBold) {
		style = style.Bold(true)
	}
	if s.Attributes.Has(core.AttrDim) {
		style = style.Dim(true)
	}
	if s.Attributes.Has(core.AttrItalic) {
		style = style.Italic(true)
	}
	if s.Attributes.Has(core.AttrUnderline) {
		style = style.Underline(true)
	}
	if s.Attributes.Has(core.AttrBlink) {
		style = style.Blink(true)
	}
	if s.Attributes.Has(core.AttrReverse) {
		style = style.Reverse(true)
	}
	if s.Attributes.Has(core.AttrStrikethrough) {
		style = style.StrikeThrough(true)
	}

	return style
}

// styleAt returns the style any of runs assigns to byte offset pos, or
// base if pos falls in no run. Runs are non-overlapping and ascending
// (item.Display's contract), so a linear scan suffices for the small
// run counts a single line produces.
func styleAt(base tcell.Style, runs []item.Run, pos int) tcell.Style {
	for _, r := range runs {
		if pos >= r.Start && pos < r.End {
			return convertStyle(r.Style)
		}
	}
	return base
}
