// Package fuzzy implements the scoring algorithm at the heart of
// gofind's ranking: given a query and a text, it decides whether the
// query is a subsequence of the text and, if so, how good a match it
// is.
package fuzzy

import (
	"unicode"

	"github.com/dshills/gofind/internal/item"
)

// CaseMode controls how query characters are compared against text.
type CaseMode int

const (
	// CaseIgnore folds both query and text to lower case.
	CaseIgnore CaseMode = iota
	// CaseRespect always compares case-sensitively.
	CaseRespect
	// CaseSmart compares case-sensitively only if the query contains an
	// uppercase rune, otherwise case-insensitively.
	CaseSmart
)

// MatchResult carries a match's score and the information needed to
// break ties deterministically (spec.md §4.2, §5).
type MatchResult struct {
	// Score is the match score; higher is better.
	Score int
	// Positions are the byte offsets into the scored text, one per
	// matched query rune, in strictly increasing order.
	Positions []int
	// TextLen is the byte length of the scored text.
	TextLen int
	// FirstPos is Positions[0], or -1 if there were no matches (empty
	// query).
	FirstPos int
}

// Less implements the tie-break order from spec.md: higher score first,
// then earlier first match, then shorter text. The final tie-breaker
// (insertion index) is not known to the scorer and is applied by the
// caller (package ordered).
func Less(a, b MatchResult) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if a.FirstPos != b.FirstPos {
		return a.FirstPos < b.FirstPos
	}
	return a.TextLen < b.TextLen
}

const (
	baseReward        = 16
	consecutiveBonus  = 8
	consecutiveStep   = 4 // each further consecutive match adds more
	boundaryBonus     = 12
	gapPenalty        = 2
	leadingGapPenalty = 3
	leadingGapCapMult = 4 // leading penalty capped at leadingGapCapMult * len(query)
	exactMatchBonus   = 1000
)

func isSeparator(r rune) bool {
	switch r {
	case '/', '_', '-', '.', ' ':
		return true
	}
	return unicode.IsSpace(r)
}

// isBoundary reports whether the rune at index idx in runes begins a
// "word": the very first rune, one following a separator, or a
// lower-to-upper case transition.
func isBoundary(runes []rune, idx int) bool {
	if idx == 0 {
		return true
	}
	prev := runes[idx-1]
	if isSeparator(prev) {
		return true
	}
	cur := runes[idx]
	return unicode.IsLower(prev) && unicode.IsUpper(cur)
}

// foldRune folds r per mode. caseSensitive is the effective decision
// already resolved from CaseSmart so callers don't repeatedly inspect
// the query.
func foldRune(r rune, caseSensitive bool) rune {
	if caseSensitive {
		return r
	}
	return unicode.ToLower(r)
}

// queryHasUpper reports whether s contains any uppercase rune.
func queryHasUpper(s string) bool {
	for _, r := range s {
		if unicode.IsUpper(r) {
			return true
		}
	}
	return false
}

// effectiveCaseSensitive resolves CaseSmart against query.
func effectiveCaseSensitive(mode CaseMode, query string) bool {
	switch mode {
	case CaseRespect:
		return true
	case CaseSmart:
		return queryHasUpper(query)
	default:
		return false
	}
}

// Score matches query against text under the given case mode. It
// returns (result, true) if query is a subsequence of text (after the
// case fold decided by mode), or (MatchResult{}, false) otherwise.
//
// Score is re-entrant and holds no mutable state; it is safe to call
// concurrently from multiple matcher workers.
func Score(query, text string, mode CaseMode) (MatchResult, bool) {
	return NewFactory().Compile(query, mode).Score(text)
}

// CompiledScorer scores many texts against one pre-compiled query. Use
// Factory.Compile once per query (e.g. once per keystroke) and reuse
// the returned CompiledScorer for every item, so per-item work never
// re-derives query-dependent state.
type CompiledScorer interface {
	Score(text string) (MatchResult, bool)
}

// Factory constructs CompiledScorers. The zero value is ready to use.
type Factory struct{}

// NewFactory returns a ready-to-use Factory.
func NewFactory() Factory { return Factory{} }

// Compile pre-processes query so later Score calls are O(len(text))
// with no further query-side work. Compiling an empty query yields a
// CompiledScorer that matches every text with a constant score of 0
// and no positions.
func (Factory) Compile(query string, mode CaseMode) CompiledScorer {
	caseSensitive := effectiveCaseSensitive(mode, query)
	queryRunes := []rune(query)
	folded := make([]rune, len(queryRunes))
	for i, r := range queryRunes {
		folded[i] = foldRune(r, caseSensitive)
	}
	return &compiled{
		caseSensitive: caseSensitive,
		query:         folded,
		queryLen:      len(folded),
	}
}

type compiled struct {
	caseSensitive bool
	query         []rune
	queryLen      int
}

func (c *compiled) Score(text string) (MatchResult, bool) {
	if c.queryLen == 0 {
		return MatchResult{TextLen: len(text), FirstPos: -1}, true
	}
	if text == "" {
		return MatchResult{}, false
	}

	runes, byteOffsets := decodeWithOffsets(text)

	matches := make([]int, 0, c.queryLen)
	qi := 0
	for ri := 0; ri < len(runes) && qi < c.queryLen; ri++ {
		if foldRune(runes[ri], c.caseSensitive) == c.query[qi] {
			matches = append(matches, ri)
			qi++
		}
	}
	if qi != c.queryLen {
		return MatchResult{}, false
	}

	score := c.scoreMatches(runes, matches, text)

	positions := make([]int, len(matches))
	for i, ri := range matches {
		positions[i] = byteOffsets[ri]
	}

	return MatchResult{
		Score:     score,
		Positions: positions,
		TextLen:   len(text),
		FirstPos:  positions[0],
	}, true
}

func (c *compiled) scoreMatches(runes []rune, matches []int, text string) int {
	score := c.queryLen * baseReward

	run := 1
	for i := 1; i < len(matches); i++ {
		if matches[i] == matches[i-1]+1 {
			run++
			score += consecutiveBonus + (run-2)*consecutiveStep
		} else {
			run = 1
		}
	}

	for _, ri := range matches {
		if isBoundary(runes, ri) {
			score += boundaryBonus
		}
	}

	if len(matches) > 1 {
		span := matches[len(matches)-1] - matches[0] + 1
		gaps := span - len(matches)
		score -= gaps * gapPenalty
	}

	leading := matches[0]
	leadingCap := leadingGapCapMult * c.queryLen
	if leading > leadingCap {
		leading = leadingCap
	}
	score -= leading * leadingGapPenalty

	if c.isExactFullMatch(runes, text) {
		score += exactMatchBonus
	}

	return score
}

// isExactFullMatch reports whether the whole of text, case-folded per
// c.caseSensitive, equals the compiled query exactly.
func (c *compiled) isExactFullMatch(runes []rune, _ string) bool {
	if len(runes) != c.queryLen {
		return false
	}
	for i, r := range runes {
		if foldRune(r, c.caseSensitive) != c.query[i] {
			return false
		}
	}
	return true
}

// decodeWithOffsets decodes s into runes alongside each rune's starting
// byte offset in s.
func decodeWithOffsets(s string) ([]rune, []int) {
	runes := make([]rune, 0, len(s))
	offsets := make([]int, 0, len(s))
	for i, r := range s {
		runes = append(runes, r)
		offsets = append(offsets, i)
	}
	return runes, offsets
}

// ScoreItem scores an item's match text, honoring restricted match
// ranges: each range is scored independently against query and the
// best-scoring range wins, with its positions reported relative to the
// item's full MatchText (not the range-local text).
func ScoreItem(scorer CompiledScorer, it item.Item) (MatchResult, bool) {
	text := it.MatchText()
	ranges := it.MatchRangesOrFull()

	if len(ranges) == 1 && ranges[0].Start == 0 && ranges[0].End == len(text) {
		return scorer.Score(text)
	}

	var best MatchResult
	found := false
	for _, r := range ranges {
		if r.Start < 0 || r.End > len(text) || r.Start >= r.End {
			continue
		}
		sub := text[r.Start:r.End]
		res, ok := scorer.Score(sub)
		if !ok {
			continue
		}
		for i := range res.Positions {
			res.Positions[i] += r.Start
		}
		res.TextLen = len(text)
		res.FirstPos = res.Positions[0]
		if !found || Less(res, best) {
			best = res
			found = true
		}
	}
	return best, found
}
