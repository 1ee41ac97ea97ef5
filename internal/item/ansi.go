package item

import (
	"strconv"
	"strings"

	"github.com/dshills/gofind/internal/renderer/core"
)

// Run is a non-overlapping, ascending-order styled byte range within a
// Display's Stripped text.
type Run struct {
	Start, End int
	Style      core.Style
}

// Display is a parsed ANSI-colorized overlay: the SGR-stripped text plus
// the style runs the escape sequences described. It is rendered
// verbatim by the UI and never reparsed by the matcher - the matcher
// only ever sees Stripped.
type Display struct {
	Stripped string
	Runs     []Run
}

// Len returns the byte length of the stripped text. A zero Display has
// Len() == 0, which Item.MatchText uses to detect "no overlay."
func (d Display) Len() int { return len(d.Stripped) }

// ParseANSI parses SGR (Select Graphic Rendition) escape sequences out
// of raw, producing the stripped text and the style runs they describe.
// Non-SGR CSI sequences and unsupported SGR parameters are dropped
// silently, and an ESC [ with no final byte is kept as literal text,
// matching the
// tolerant behavior expected of a line-oriented ANSI consumer: a finder
// reading from an arbitrary command must not abort on a stray escape.
func ParseANSI(raw string) Display {
	var stripped strings.Builder
	stripped.Grow(len(raw))

	var runs []Run
	style := core.DefaultStyle()
	runStart := 0

	flush := func(end int) {
		if end <= runStart || style.IsDefault() {
			runStart = end
			return
		}
		runs = append(runs, Run{Start: runStart, End: end, Style: style})
		runStart = end
	}

	i := 0
	for i < len(raw) {
		if raw[i] == 0x1b && i+1 < len(raw) && raw[i+1] == '[' {
			end := i + 2
			for end < len(raw) && !isSGRFinal(raw[end]) {
				end++
			}
			if end < len(raw) {
				if raw[end] == 'm' {
					flush(stripped.Len())
					style = applySGR(style, raw[i+2:end])
				}
				i = end + 1
				continue
			}
			// No final byte before the end of the line: treat the escape
			// byte as literal rather than silently eating the rest of it.
		}
		stripped.WriteByte(raw[i])
		i++
	}
	flush(stripped.Len())

	return Display{Stripped: stripped.String(), Runs: runs}
}

// isSGRFinal reports whether b is a CSI final byte; of these only 'm'
// ends an SGR sequence.
func isSGRFinal(b byte) bool {
	return b >= 0x40 && b <= 0x7e
}

// applySGR folds a ';'-separated list of SGR parameters into style.
func applySGR(style core.Style, params string) core.Style {
	if params == "" {
		return core.DefaultStyle()
	}

	fields := strings.Split(params, ";")
	for idx := 0; idx < len(fields); idx++ {
		code, err := strconv.Atoi(fields[idx])
		if err != nil {
			continue
		}
		switch {
		case code == 0:
			style = core.DefaultStyle()
		case code == 1:
			style = style.Bold()
		case code == 2:
			style = style.Dim()
		case code == 3:
			style = style.Italic()
		case code == 4:
			style = style.Underline()
		case code == 7:
			style = style.Reverse()
		case code == 9:
			style = style.Strikethrough()
		case code >= 30 && code <= 37:
			style = style.WithForeground(ansiPalette[code-30])
		case code == 38:
			c, consumed := parseExtendedColor(fields[idx+1:])
			if consumed > 0 {
				style = style.WithForeground(c)
				idx += consumed
			}
		case code == 39:
			style = style.WithForeground(core.ColorDefault)
		case code >= 40 && code <= 47:
			style = style.WithBackground(ansiPalette[code-40])
		case code == 48:
			c, consumed := parseExtendedColor(fields[idx+1:])
			if consumed > 0 {
				style = style.WithBackground(c)
				idx += consumed
			}
		case code == 49:
			style = style.WithBackground(core.ColorDefault)
		case code >= 90 && code <= 97:
			style = style.WithForeground(ansiPalette[code-90+8])
		case code >= 100 && code <= 107:
			style = style.WithBackground(ansiPalette[code-100+8])
		}
	}
	return style
}

// parseExtendedColor parses the remainder of a 38/48 extended-color SGR
// sequence ("5;N" indexed, or "2;R;G;B" true color) and returns how many
// additional fields it consumed.
func parseExtendedColor(rest []string) (core.Color, int) {
	if len(rest) == 0 {
		return core.Color{}, 0
	}
	mode, err := strconv.Atoi(rest[0])
	if err != nil {
		return core.Color{}, 0
	}
	switch mode {
	case 5:
		if len(rest) < 2 {
			return core.Color{}, 0
		}
		idx, err := strconv.Atoi(rest[1])
		if err != nil {
			return core.Color{}, 0
		}
		return core.ColorFromIndex(uint8(idx)), 2
	case 2:
		if len(rest) < 4 {
			return core.Color{}, 0
		}
		r, err1 := strconv.Atoi(rest[1])
		g, err2 := strconv.Atoi(rest[2])
		b, err3 := strconv.Atoi(rest[3])
		if err1 != nil || err2 != nil || err3 != nil {
			return core.Color{}, 0
		}
		return core.ColorFromRGB(uint8(r), uint8(g), uint8(b)), 4
	default:
		return core.Color{}, 0
	}
}

var ansiPalette = [16]core.Color{
	core.ColorBlack, core.ColorRed, core.ColorGreen, core.ColorYellow,
	core.ColorBlue, core.ColorMagenta, core.ColorCyan, core.ColorWhite,
	core.ColorGray, core.ColorRed, core.ColorGreen, core.ColorYellow,
	core.ColorBlue, core.ColorMagenta, core.ColorCyan, core.ColorWhite,
}
