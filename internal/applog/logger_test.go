package applog

import (
	"bytes"
	"strings"
	"testing"
)

func TestLoggerLevelGating(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: LevelWarn, Output: &buf, Prefix: "test"})

	l.Debug("should not appear")
	l.Info("should not appear either")
	l.Warn("warn line")
	l.Error("error line")

	out := buf.String()
	if strings.Contains(out, "should not appear") {
		t.Fatalf("level gating failed, got: %s", out)
	}
	if !strings.Contains(out, "warn line") || !strings.Contains(out, "error line") {
		t.Fatalf("expected warn and error lines, got: %s", out)
	}
}

func TestLoggerWithFieldIsImmutable(t *testing.T) {
	var buf bytes.Buffer
	base := New(Config{Level: LevelInfo, Output: &buf, Prefix: "test"})
	derived := base.WithComponent("matcher")

	derived.Info("hello")
	base.Info("world")

	out := buf.String()
	if !strings.Contains(out, "component=matcher") {
		t.Fatalf("expected derived logger to carry component field, got: %s", out)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if strings.Contains(lines[len(lines)-1], "component=matcher") {
		t.Fatalf("base logger should not have picked up derived field, got: %s", out)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug": LevelDebug,
		"INFO":  LevelInfo,
		"warn":  LevelWarn,
		"ERROR": LevelError,
		"bogus": LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
