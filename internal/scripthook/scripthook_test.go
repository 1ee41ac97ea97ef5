package scripthook

import (
	"os"
	"path/filepath"
	"testing"
)

func writeScript(t *testing.T, src string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "score.lua")
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("writing script: %v", err)
	}
	return path
}

func TestLoadMissingScoreFunction(t *testing.T) {
	path := writeScript(t, `local x = 1`)
	if _, err := Load(path); err != ErrNoScoreFunction {
		t.Fatalf("Load() error = %v, want ErrNoScoreFunction", err)
	}
}

func TestScorerScoresMatch(t *testing.T) {
	path := writeScript(t, `
function score(query, text)
  if string.find(text, query, 1, true) then
    return #query * 10
  end
  return nil
end
`)
	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	defer s.Close()

	scorer := NewFactory(s).Compile("ab", 0)

	res, ok := scorer.Score("fabric")
	if !ok {
		t.Fatalf("Score() ok = false, want true")
	}
	if res.Score != 20 {
		t.Errorf("Score = %d, want 20", res.Score)
	}

	if _, ok := scorer.Score("xyz"); ok {
		t.Errorf("Score() ok = true for non-matching text, want false")
	}
}

func TestScorerConcurrentCallsSerialize(t *testing.T) {
	path := writeScript(t, `
function score(query, text)
  return 1
end
`)
	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	defer s.Close()

	scorer := NewFactory(s).Compile("q", 0)

	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			if _, ok := scorer.Score("text"); !ok {
				t.Error("Score() ok = false, want true")
			}
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}
}
