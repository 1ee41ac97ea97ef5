package tui

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/rivo/uniseg"

	"github.com/dshills/gofind/internal/item"
	"github.com/dshills/gofind/internal/ui"
)

var (
	dimMatchColor    = colorful.Color{R: 0.55, G: 0.55, B: 0.55}
	brightMatchColor = colorful.Color{R: 1.0, G: 0.85, B: 0.25}
)

// scoreColor blends from a dim gray to a warm highlight as score
// approaches best among the visible rows, so the eye is drawn to the
// strongest matches without a hard color cutoff.
func scoreColor(score, best int) tcell.Color {
	if best <= 0 {
		return tcell.ColorYellow
	}
	frac := float64(score) / float64(best)
	switch {
	case frac < 0:
		frac = 0
	case frac > 1:
		frac = 1
	}
	blended := dimMatchColor.BlendLab(brightMatchColor, frac)
	r, g, b := blended.RGB255()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}

// matchedColumns expands byte-offset match positions into a per-column
// highlight mask sized to the grapheme-cluster width of text, so
// multi-byte and wide runes don't desync the highlight from the glyph
// it belongs to.
func matchedColumns(text string, positions []int) []bool {
	marked := make(map[int]bool, len(positions))
	for _, p := range positions {
		marked[p] = true
	}
	cols := make([]bool, 0, len(text))
	gr := uniseg.NewGraphemes(text)
	for gr.Next() {
		start, _ := gr.Positions()
		w := uniseg.StringWidth(gr.Str())
		if w < 1 {
			w = 1
		}
		hl := marked[start]
		for i := 0; i < w; i++ {
			cols = append(cols, hl)
		}
	}
	return cols
}

// Render implements ui.UI. It draws a prompt line, a status line, and
// as many ranked rows as fit, highlighting matched byte positions and
// the currently highlighted/selected rows.
func (t *Terminal) Render(snap ui.Snapshot) {
	t.screen.Clear()
	width, height := t.screen.Size()

	listWidth := width
	if snap.PreviewText != "" {
		listWidth = width / 2
	}

	promptStyle := tcell.StyleDefault
	t.drawText(0, 0, listWidth, "> "+snap.Query, promptStyle)
	t.screen.ShowCursor(displayWidth("> "+snap.Query), 0)

	status := fmt.Sprintf("%d/%d", snap.MatchedCount, snap.TotalCount)
	if !snap.ReaderDone {
		status += " (reading)"
	}
	t.drawText(0, 1, listWidth, status, tcell.StyleDefault.Foreground(tcell.ColorGray))

	listTop := 2
	rows := height - listTop
	if rows < 0 {
		rows = 0
	}

	best := 0
	for _, s := range snap.Scores {
		if s > best {
			best = s
		}
	}

	for i := 0; i < rows && i < len(snap.Items); i++ {
		y := listTop + i
		it := snap.Items[i]

		marker := "  "
		if _, ok := snap.Selected[it.Ordinal]; ok {
			marker = "* "
		}
		rowStyle := tcell.StyleDefault
		if i == snap.Highlighted {
			rowStyle = rowStyle.Reverse(true)
		}

		var positions []int
		if i < len(snap.Positions) {
			positions = snap.Positions[i]
		}
		var score int
		if i < len(snap.Scores) {
			score = snap.Scores[i]
		}
		hlColor := scoreColor(score, best)
		text := it.MatchText()
		cols := matchedColumns(text, positions)

		x := t.drawText(0, y, listWidth, marker, rowStyle)
		t.drawRunes(x, y, listWidth-x, text, it.Display.Runs, cols, rowStyle, hlColor)
	}

	if snap.PreviewText != "" {
		t.drawPreview(listWidth, width, height, snap.PreviewText)
	}

	t.screen.Show()
}

// drawPreview fills the column range [left, right) with snap.PreviewText
// wrapped to one row per line, separated from the match list by a
// vertical bar; it never shells out itself, it only draws whatever the
// preview collaborator already rendered (SPEC_FULL.md §6).
func (t *Terminal) drawPreview(left, right, height int, text string) {
	for y := 0; y < height; y++ {
		t.screen.SetContent(left, y, tcell.RuneVLine, nil, tcell.StyleDefault.Foreground(tcell.ColorGray))
	}
	contentLeft := left + 1
	contentWidth := right - contentLeft
	if contentWidth <= 0 {
		return
	}
	lines := strings.Split(text, "\n")
	for y := 0; y < height && y < len(lines); y++ {
		t.drawText(contentLeft, y, right, lines[y], tcell.StyleDefault)
	}
}

// drawText writes s starting at (x, y) clipped to maxWidth columns and
// returns the column after the last cell written.
func (t *Terminal) drawText(x, y, maxWidth int, s string, style tcell.Style) int {
	col := x
	gr := uniseg.NewGraphemes(s)
	for gr.Next() {
		w := uniseg.StringWidth(gr.Str())
		if w < 1 {
			w = 1
		}
		if col+w > maxWidth {
			break
		}
		runes := gr.Runes()
		t.screen.SetContent(col, y, runes[0], runes[1:], style)
		col += w
	}
	return col
}

// drawRunes writes s starting at (x, y). Each grapheme's base style
// comes from runs (the item's own ANSI display overlay, rendered
// verbatim per spec.md §4.1) if any run covers its byte offset,
// otherwise from style; matched byte positions (cols) then override
// with hlColor, so a match highlight always wins over the item's own
// coloring.
func (t *Terminal) drawRunes(x, y, maxWidth int, s string, runs []item.Run, cols []bool, style tcell.Style, hlColor tcell.Color) {
	col := x
	i := 0
	gr := uniseg.NewGraphemes(s)
	for gr.Next() {
		start, _ := gr.Positions()
		w := uniseg.StringWidth(gr.Str())
		if w < 1 {
			w = 1
		}
		if col-x+w > maxWidth {
			break
		}
		cellStyle := styleAt(style, runs, start)
		if i < len(cols) && cols[i] {
			cellStyle = cellStyle.Foreground(hlColor).Bold(true)
		}
		runeSlice := gr.Runes()
		t.screen.SetContent(col, y, runeSlice[0], runeSlice[1:], cellStyle)
		col += w
		i += w
	}
}
