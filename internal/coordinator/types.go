package coordinator

import "github.com/dshills/gofind/internal/item"

// State is a coordinator state, per spec.md §4.6.
type State int

const (
	// StateIdle is the initial state before Start is called.
	StateIdle State = iota
	// StateReading means a reader generation is active but the matcher
	// pool has not yet been started for it.
	StateReading
	// StateMatching means the matcher pool is running against the
	// current query.
	StateMatching
	// StateRestarting is a transient state while reader/matcher/buffers
	// are torn down and recreated for a new source or query.
	StateRestarting
	// StateAccepted is terminal: the user accepted a selection.
	StateAccepted
	// StateAborted is terminal: the user aborted with no selection.
	StateAborted
)

// String names a State for logging.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateReading:
		return "Reading"
	case StateMatching:
		return "Matching"
	case StateRestarting:
		return "Restarting"
	case StateAccepted:
		return "Accepted"
	case StateAborted:
		return "Aborted"
	default:
		return "Unknown"
	}
}

// EventKind tags an Event's active fields (spec.md §3: Event is a
// tagged union).
type EventKind int

const (
	// EventKeyPress carries a single typed rune appended to the search
	// query.
	EventKeyPress EventKind = iota
	// EventAction carries a bound Action identifier.
	EventAction
	// EventResize carries new terminal dimensions.
	EventResize
	// EventInterrupt is a user-injected wakeup carrying no data.
	EventInterrupt
	// EventPreviewReady carries a completed preview render, dispatched
	// back into the loop from the goroutine ActionInvokePreview spawns
	// so Run's collaborators stay single-threaded.
	EventPreviewReady
)

// Action identifies a high-level, key-bound operation (spec.md §6:
// input translator yields these from raw keys).
type Action int

const (
	// ActionNone is the zero value; never dispatched.
	ActionNone Action = iota
	// ActionBackspace removes the last rune of the search query.
	ActionBackspace
	// ActionMoveUp moves the highlighted row up one.
	ActionMoveUp
	// ActionMoveDown moves the highlighted row down one.
	ActionMoveDown
	// ActionPageUp moves the highlighted row up one page.
	ActionPageUp
	// ActionPageDown moves the highlighted row down one page.
	ActionPageDown
	// ActionToggleSelect toggles multi-select on the highlighted row.
	ActionToggleSelect
	// ActionAccept accepts the current selection (or the highlighted
	// row if none is multi-selected) and ends the loop.
	ActionAccept
	// ActionAbort aborts with no selection and ends the loop.
	ActionAbort
	// ActionInvokePreview asks the preview collaborator to render the
	// highlighted item.
	ActionInvokePreview
	// ActionRestart carries a new source command and/or query in the
	// Event's NewCommand/NewQuery fields.
	ActionRestart
)

// Event is the coordinator's single input type, multiplexing UI/input
// events with internal reader/matcher ticks (spec.md §3, §4.6).
type Event struct {
	Kind EventKind

	// EventKeyPress
	Rune rune

	// EventAction
	Action     Action
	AcceptTag  string
	NewCommand string
	NewQuery   string

	// EventResize
	Width, Height int

	// EventPreviewReady
	PreviewOrdinal int
	PreviewText    string
}

// Snapshot is what the UI collaborator renders: the current top of the
// ordered buffer plus enough state to draw a status line.
type Snapshot struct {
	State        State
	Query        string
	Items        []item.Item
	Scores       []int
	Positions    [][]int
	Selected     map[int]item.Item
	Highlighted  int
	MatchedCount int
	TotalCount   int
	ReaderDone   bool

	// PreviewOrdinal and PreviewText carry the most recently rendered
	// preview, if any; PreviewOrdinal is the item.Item.Ordinal it was
	// rendered for, so the UI can tell a preview is stale once the
	// highlighted row moves.
	PreviewOrdinal int
	PreviewText    string
}

// Result is the coordinator's terminal output contract (spec.md §6).
type Result struct {
	Query    string
	Tag      string
	Selected []item.Item
	Aborted  bool
}
