// Package item defines the immutable item model the rest of gofind's
// pipeline matches, ranks, and renders.
package item

// PreviewKind distinguishes the three ways an item can supply preview
// content.
type PreviewKind int

const (
	// PreviewNone means the item has no preview hint of its own; the
	// global --preview command (if any) is used.
	PreviewNone PreviewKind = iota
	// PreviewInlineKind means Preview.Text is shown verbatim.
	PreviewInlineKind
	// PreviewCommandKind means Preview.Text is an argv template spawned
	// per-selection.
	PreviewCommandKind
)

// Preview describes how to render a preview panel for an item.
type Preview struct {
	Kind PreviewKind
	Text string
}

// PreviewInline builds an inline-text preview hint.
func PreviewInline(text string) Preview { return Preview{Kind: PreviewInlineKind, Text: text} }

// PreviewCommand builds a spawned-command preview hint. Text is an argv
// template; "{}" is replaced by the item's raw text at spawn time.
func PreviewCommand(cmdTemplate string) Preview {
	return Preview{Kind: PreviewCommandKind, Text: cmdTemplate}
}

// Range is a half-open byte range [Start, End) within an item's raw
// text that matching is restricted to.
type Range struct {
	Start, End int
}

// Item is an immutable, shareable record produced once by a Reader and
// thereafter referenced by matcher workers, the UI, and the output
// stage without mutation.
type Item struct {
	// Text is the raw UTF-8 text the item was built from.
	Text string

	// Display is the optional colorized overlay. Zero value means
	// "render Text with no styling."
	Display Display

	// PreviewHint is the optional preview hint. Zero value is PreviewNone.
	PreviewHint Preview

	// MatchRanges restricts scoring to these byte ranges of Text. A nil
	// slice means "match the whole of Text" (or Display.Stripped if a
	// display overlay is present - see MatchText).
	MatchRanges []Range

	// Ordinal is the insertion index assigned once by the reader. It is
	// the final tie-breaker in ranking (spec.md §4.2, §5).
	Ordinal int
}

// New builds a plain Item with no display overlay.
func New(text string, ordinal int) Item {
	return Item{Text: text, Ordinal: ordinal}
}

// MatchText returns the text that the scorer should run against: the
// stripped display text if a display overlay is present, else Text.
func (it Item) MatchText() string {
	if it.Display.Len() > 0 {
		return it.Display.Stripped
	}
	return it.Text
}

// MatchRangesOrFull returns MatchRanges, or a single range spanning the
// whole of MatchText() if none were set.
func (it Item) MatchRangesOrFull() []Range {
	if len(it.MatchRanges) > 0 {
		return it.MatchRanges
	}
	return []Range{{Start: 0, End: len(it.MatchText())}}
}
