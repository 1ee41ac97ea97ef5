// Package preview renders the content shown in the preview panel for
// the highlighted item: either the item's own inline/command hint, or
// the program-wide --preview template. Subprocess spawning and output
// capture is grounded on the teacher's task executor
// (internal/integration/task.Executor.buildCommand/runExecution) and
// its result-capture convention (dispatcher/handler.Result), bounded to
// a fixed byte budget and timeout since a preview panel is too small to
// ever need the teacher's full output-processor/problem-matcher stack.
package preview

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/dshills/gofind/internal/errs"
	"github.com/dshills/gofind/internal/item"
)

// MaxOutputBytes bounds how much subprocess output a single preview
// render will capture; a preview panel has no use for megabytes of log.
const MaxOutputBytes = 64 * 1024

// DefaultTimeout bounds how long a spawned preview command may run
// before it is killed; Render then returns errs.ErrPreviewFailure, as
// for any other failed run.
const DefaultTimeout = 3 * time.Second

// Runner renders preview content for items, falling back to a
// program-wide command template when an item carries no preview hint
// of its own.
type Runner struct {
	// GlobalTemplate is the argv template used for items with
	// item.PreviewNone; "{}" is replaced by the item's raw text. Empty
	// means no preview is available for such items.
	GlobalTemplate string

	// Timeout bounds spawned preview commands. Zero means DefaultTimeout.
	Timeout time.Duration
}

// New builds a Runner using globalTemplate as the fallback preview
// command (may be empty).
func New(globalTemplate string) *Runner {
	return &Runner{GlobalTemplate: globalTemplate}
}

// Render produces the preview text for it. For PreviewInlineKind it
// returns the hint text verbatim. For PreviewCommandKind, or
// PreviewNone with a non-empty GlobalTemplate, it spawns the resolved
// command and returns its combined, size-bounded output. A spawn or
// non-zero exit wraps errs.ErrPreviewFailure; the caller (the UI's
// preview panel) is expected to show the error inline and keep running.
func (r *Runner) Render(ctx context.Context, it item.Item) (string, error) {
	switch it.PreviewHint.Kind {
	case item.PreviewInlineKind:
		return it.PreviewHint.Text, nil
	case item.PreviewCommandKind:
		return r.runCommand(ctx, it.PreviewHint.Text, it.Text)
	default:
		if r.GlobalTemplate == "" {
			return "", nil
		}
		return r.runCommand(ctx, r.GlobalTemplate, it.Text)
	}
}

func (r *Runner) runCommand(ctx context.Context, template, itemText string) (string, error) {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	shellCmd := interpolate(template, itemText)
	cmd := exec.CommandContext(ctx, "/bin/sh", "-c", shellCmd)

	var buf boundedBuffer
	buf.limit = MaxOutputBytes
	cmd.Stdout = &buf
	cmd.Stderr = &buf

	if err := cmd.Run(); err != nil {
		return buf.String(), fmt.Errorf("%w: %v", errs.ErrPreviewFailure, err)
	}
	return buf.String(), nil
}

// interpolate replaces every "{}" token in template with itemText,
// shell-quoted; a template with no "{}" is run as-is (itemText
// unused), matching the teacher's "%s"-substitution convention in
// internal/reader but using "{}" per the preview hint's own
// placeholder convention (item.PreviewCommand's doc comment).
func interpolate(template, itemText string) string {
	if !strings.Contains(template, "{}") {
		return template
	}
	return strings.ReplaceAll(template, "{}", shellQuote(itemText))
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// boundedBuffer is an io.Writer that silently drops writes past limit,
// so a runaway preview command can't blow up memory.
type boundedBuffer struct {
	buf   bytes.Buffer
	limit int
}

func (b *boundedBuffer) Write(p []byte) (int, error) {
	if b.buf.Len() >= b.limit {
		return len(p), nil
	}
	remaining := b.limit - b.buf.Len()
	if len(p) > remaining {
		b.buf.Write(p[:remaining])
	} else {
		b.buf.Write(p)
	}
	return len(p), nil
}

func (b *boundedBuffer) String() string { return b.buf.String() }
