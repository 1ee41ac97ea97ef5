// Package ui declares the external collaborator interface the
// coordinator drives (SPEC_FULL.md §6): a terminal UI polls input,
// renders coordinator snapshots, and can step aside for a spawned
// preview command.
package ui

import "github.com/dshills/gofind/internal/coordinator"

// Event is the UI's input vocabulary; it is exactly the coordinator's
// own Event type; there is no separate UI-level event union to keep in
// sync; the input.Translator only has to build one of these.
type Event = coordinator.Event

// Snapshot is what Render draws: the coordinator's own Snapshot type.
type Snapshot = coordinator.Snapshot

// UI is the terminal collaborator the coordinator's Run loop drives.
// Implementations must be safe to call PollEvent and Render from the
// same goroutine that owns the coordinator's Run loop; SendEvent may be
// called from any goroutine (it mirrors Coordinator.Send).
type UI interface {
	// PollEvent blocks until the next input event and translates it to
	// a coordinator Event. Implementations return an Event whose Kind is
	// EventInterrupt, with no other field set, on shutdown.
	PollEvent() Event

	// Render draws one frame from a coordinator Snapshot.
	Render(Snapshot)

	// Pause suspends the UI (restoring the terminal to cooked mode) so
	// a spawned preview or external command can take over the screen,
	// and returns a function that resumes the UI. Calling the returned
	// function more than once is a no-op.
	Pause() (resume func())

	// SendEvent injects a synthetic event into the UI's event stream,
	// e.g. to unblock a pending PollEvent after an external signal.
	SendEvent(Event)
}
