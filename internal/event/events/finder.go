package events

import "github.com/dshills/gofind/internal/event/topic"

// Finder lifecycle event topics.
const (
	// TopicReaderTick is published each time the reader reports progress.
	TopicReaderTick topic.Topic = "reader.tick"

	// TopicReaderRestarted is published when the reader starts a new
	// generation (RestartWith or a watch-triggered reload).
	TopicReaderRestarted topic.Topic = "reader.restarted"

	// TopicMatcherTick is published each time the matcher pool reports
	// progress for the active generation.
	TopicMatcherTick topic.Topic = "matcher.tick"

	// TopicCoordinatorStateChanged is published on every coordinator
	// state transition.
	TopicCoordinatorStateChanged topic.Topic = "coordinator.state.changed"

	// TopicCoordinatorAccepted is published when the coordinator accepts
	// a final selection and is about to terminate.
	TopicCoordinatorAccepted topic.Topic = "coordinator.accepted"

	// TopicCoordinatorAborted is published when the coordinator aborts
	// without a selection.
	TopicCoordinatorAborted topic.Topic = "coordinator.aborted"
)

// ReaderTick reports reader progress.
type ReaderTick struct {
	// Generation is the reader generation this tick belongs to.
	Generation uint64

	// Count is the number of items read so far in this generation.
	Count int

	// Done indicates the reader has finished producing items.
	Done bool
}

// ReaderRestarted is published when a reader generation is retired in
// favor of a new one.
type ReaderRestarted struct {
	// Generation is the new reader generation.
	Generation uint64

	// Command is the source command for the new generation, if any.
	Command string
}

// MatcherTick reports matcher progress for one generation.
type MatcherTick struct {
	// Generation is the matcher generation this tick belongs to.
	Generation uint64

	// Matched is the number of items that matched so far.
	Matched int

	// Total is the number of items scanned so far.
	Total int

	// Done indicates the matching pass has finished (until the reader
	// appends more items).
	Done bool
}

// CoordinatorStateChanged reports a state machine transition.
type CoordinatorStateChanged struct {
	// From is the state being left.
	From string

	// To is the state being entered.
	To string
}

// CoordinatorAccepted reports the final selection.
type CoordinatorAccepted struct {
	// Selected is the set of item ordinals the user chose.
	Selected []int

	// Query is the query string in effect at acceptance.
	Query string
}

// CoordinatorAborted reports an abort with no selection.
type CoordinatorAborted struct {
	// Reason is a short human-readable reason, if any.
	Reason string
}
