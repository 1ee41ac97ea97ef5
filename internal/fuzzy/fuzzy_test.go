package fuzzy

import (
	"sort"
	"testing"
	"unicode"
)

func TestScoreNoMatchReturnsFalse(t *testing.T) {
	if _, ok := Score("xyz", "apple", CaseIgnore); ok {
		t.Fatal("expected no match")
	}
}

func TestScorePositionsAreSubsequence(t *testing.T) {
	res, ok := Score("ab", "xaxbx", CaseIgnore)
	if !ok {
		t.Fatal("expected a match")
	}
	if len(res.Positions) != 2 {
		t.Fatalf("got %d positions, want 2", len(res.Positions))
	}
	if !sort.IntsAreSorted(res.Positions) {
		t.Fatalf("positions not sorted: %v", res.Positions)
	}
	for i := 1; i < len(res.Positions); i++ {
		if res.Positions[i] <= res.Positions[i-1] {
			t.Fatalf("positions not strictly increasing: %v", res.Positions)
		}
	}
	want := []byte{'a', 'b'}
	for i, pos := range res.Positions {
		if "xaxbx"[pos] != want[i] {
			t.Errorf("position %d points at %q, want %q", i, "xaxbx"[pos], want[i])
		}
	}
}

// TestPropertyFuzzyCorrectness is property 1 from spec.md §8: if Score
// returns ok, positions are a strictly increasing subsequence matching
// query under the active case policy; if not ok, no such subsequence
// exists (checked via a reference subsequence check).
func TestPropertyFuzzyCorrectness(t *testing.T) {
	cases := []struct{ query, text string }{
		{"ace", "abcde"},
		{"aec", "abcde"},
		{"", "anything"},
		{"abc", ""},
		{"ABC", "xAxBxC"},
		{"日本語", "日本のことば語"},
		{"zzz", "abcde"},
	}

	for _, c := range cases {
		for _, mode := range []CaseMode{CaseRespect, CaseIgnore, CaseSmart} {
			res, ok := Score(c.query, c.text, mode)
			ref := isSubsequence(c.query, c.text, mode)
			if ok != ref {
				t.Errorf("Score(%q,%q,%v) ok=%v, reference subsequence check=%v", c.query, c.text, mode, ok, ref)
				continue
			}
			if !ok {
				continue
			}
			if !sort.IntsAreSorted(res.Positions) {
				t.Errorf("Score(%q,%q,%v) positions not sorted: %v", c.query, c.text, mode, res.Positions)
			}
		}
	}
}

// isSubsequence is a reference (non-scoring) implementation used only
// to check Score's existence decision independently of its scoring
// logic.
func isSubsequence(query, text string, mode CaseMode) bool {
	caseSensitive := effectiveCaseSensitive(mode, query)
	qi := 0
	qr := []rune(query)
	if len(qr) == 0 {
		return true
	}
	for _, r := range text {
		if qi >= len(qr) {
			break
		}
		if foldRune(r, caseSensitive) == foldRune(qr[qi], caseSensitive) {
			qi++
		}
	}
	return qi == len(qr)
}

func TestCasePolicyRespect(t *testing.T) {
	if _, ok := Score("Abc", "abc", CaseRespect); ok {
		t.Fatal("CaseRespect should not match differing case")
	}
	if _, ok := Score("abc", "abc", CaseRespect); !ok {
		t.Fatal("CaseRespect should match identical case")
	}
}

func TestCasePolicyIgnore(t *testing.T) {
	if _, ok := Score("ABC", "abc", CaseIgnore); !ok {
		t.Fatal("CaseIgnore should match regardless of case")
	}
}

func TestCasePolicySmart(t *testing.T) {
	if _, ok := Score("abc", "ABC", CaseSmart); !ok {
		t.Fatal("CaseSmart with all-lowercase query should match case-insensitively")
	}
	if _, ok := Score("Abc", "abc", CaseSmart); ok {
		t.Fatal("CaseSmart with an uppercase query character should match case-sensitively")
	}
	if _, ok := Score("Abc", "Abcdef", CaseSmart); !ok {
		t.Fatal("CaseSmart should still match an exact-case prefix")
	}
}

// TestScenarioS1 matches spec.md §8 scenario S1.
func TestScenarioS1(t *testing.T) {
	items := []string{"apple", "ape", "apricot"}
	type scored struct {
		text string
		res  MatchResult
	}
	var results []scored
	for _, text := range items {
		res, ok := Score("ap", text, CaseIgnore)
		if !ok {
			t.Fatalf("expected %q to match", text)
		}
		results = append(results, scored{text, res})
	}
	sort.Slice(results, func(i, j int) bool { return Less(results[i].res, results[j].res) })

	var order []string
	for _, r := range results {
		order = append(order, r.text)
	}
	want := []string{"ape", "apple", "apricot"}
	if !equalStrings(order, want) {
		t.Fatalf("ranking = %v, want %v", order, want)
	}
}

// TestScenarioS2 matches spec.md §8 scenario S2: boundary bonuses make
// "FooBar" win a case-smart "FB" query over non-boundary candidates,
// which shouldn't match at all.
func TestScenarioS2(t *testing.T) {
	if _, ok := Score("FB", "FooBar", CaseSmart); !ok {
		t.Fatal("expected FooBar to match FB under smart case")
	}
	if _, ok := Score("FB", "foobar", CaseSmart); ok {
		t.Fatal("foobar should not match FB under smart case (no uppercase F/B)")
	}
	if _, ok := Score("FB", "fobar", CaseSmart); ok {
		t.Fatal("fobar should not match FB under smart case")
	}
}

// TestScenarioS3 matches spec.md §8 scenario S3.
func TestScenarioS3(t *testing.T) {
	if _, ok := Score("lib", "README.md", CaseIgnore); ok {
		t.Fatal("README.md should not match query \"lib\"")
	}
	if _, ok := Score("lib", "src/lib.rs", CaseIgnore); !ok {
		t.Fatal("src/lib.rs should match query \"lib\"")
	}
}

func TestExactMatchOutranksPartial(t *testing.T) {
	exact, ok := Score("main", "main", CaseIgnore)
	if !ok {
		t.Fatal("expected exact match")
	}
	partial, ok := Score("main", "mainframe", CaseIgnore)
	if !ok {
		t.Fatal("expected partial match")
	}
	if !Less(exact, partial) {
		t.Fatalf("exact match score %d should outrank partial match score %d", exact.Score, partial.Score)
	}
}

func TestCompiledScorerMatchesScoreFunction(t *testing.T) {
	factory := NewFactory()
	scorer := factory.Compile("main", CaseIgnore)

	want, wantOK := Score("main", "main.go", CaseIgnore)
	got, gotOK := scorer.Score("main.go")
	if gotOK != wantOK || got.Score != want.Score {
		t.Fatalf("compiled scorer diverged from Score(): got %+v/%v want %+v/%v", got, gotOK, want, wantOK)
	}
}

func TestEmptyQueryMatchesEverythingWithZeroPositions(t *testing.T) {
	res, ok := Score("", "anything", CaseIgnore)
	if !ok {
		t.Fatal("empty query should match")
	}
	if len(res.Positions) != 0 {
		t.Fatalf("expected no positions, got %v", res.Positions)
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func FuzzScore(f *testing.F) {
	f.Add("abc", "xaxbxc")
	f.Add("", "")
	f.Add("ABC", "abcABC")
	f.Add("日本", "日本語のテスト")
	f.Fuzz(func(t *testing.T, query, text string) {
		for _, mode := range []CaseMode{CaseRespect, CaseIgnore, CaseSmart} {
			res, ok := Score(query, text, mode)
			if !ok {
				continue
			}
			if len(res.Positions) > 0 && !sort.IntsAreSorted(res.Positions) {
				t.Fatalf("positions not sorted for query=%q text=%q mode=%v: %v", query, text, mode, res.Positions)
			}
			for _, p := range res.Positions {
				if p < 0 || p >= len(text) {
					t.Fatalf("position %d out of range for text %q", p, text)
				}
			}
		}
	})
}

func TestIsBoundaryAndSeparatorHelpers(t *testing.T) {
	runes := []rune("foo_Bar")
	if !isBoundary(runes, 0) {
		t.Error("index 0 should always be a boundary")
	}
	if !isBoundary(runes, 4) { // 'B' after '_'
		t.Error("index after separator should be a boundary")
	}
	if isBoundary(runes, 1) { // 'o' after 'f'
		t.Error("index 1 should not be a boundary")
	}
	if !unicode.IsUpper('B') {
		t.Fatal("sanity check failed")
	}
}
