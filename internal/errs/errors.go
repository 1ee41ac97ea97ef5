// Package errs defines the sentinel errors shared across gofind's
// subsystems, matching the way upstream callers distinguish recoverable
// conditions from fatal ones.
package errs

import "errors"

// Lifecycle and control-flow sentinels.
var (
	// ErrQuit signals a clean accept or abort; main checks this with
	// errors.Is and maps it to an exit code rather than printing it.
	ErrQuit = errors.New("quit requested")

	// ErrAlreadyRunning indicates the coordinator is already running.
	ErrAlreadyRunning = errors.New("coordinator already running")

	// ErrNotRunning indicates an operation required a running coordinator.
	ErrNotRunning = errors.New("coordinator not running")
)

// Error-kind sentinels from the error handling design (spec.md §7).
var (
	// ErrSourceFailure indicates the source command failed to spawn, or
	// exited non-zero before producing any output.
	ErrSourceFailure = errors.New("source command failed")

	// ErrTerminalUnavailable indicates the UI could not acquire a
	// terminal (stdout is not a TTY).
	ErrTerminalUnavailable = errors.New("terminal unavailable")

	// ErrQueryProgramming indicates a scorer factory was misused
	// (compiled with an invalid case mode, or Score called before
	// Compile). This is a programming error, not a runtime condition,
	// and is only ever reached via panic - it is never returned across
	// an API boundary.
	ErrQueryProgramming = errors.New("fuzzy: scorer factory misuse")

	// ErrPreviewFailure indicates the preview command failed or the
	// preview hint could not be resolved. It is isolated to the preview
	// panel and never aborts the main loop.
	ErrPreviewFailure = errors.New("preview failed")

	// ErrInterrupted indicates the user aborted the finder.
	ErrInterrupted = errors.New("interrupted")
)
