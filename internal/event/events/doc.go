// Package events defines strongly-typed event payloads for gofind's
// lifecycle bus.
//
// Each event type has a corresponding topic constant and payload struct.
// These are lifecycle/observability events published alongside, not
// instead of, the coordinator's own hot-path Event type: the bus carries
// notifications a UI or logger can subscribe to, while the coordinator
// loop itself reacts to events synchronously without going through it.
//
// # Usage
//
//	import (
//	    "github.com/dshills/gofind/internal/event"
//	    "github.com/dshills/gofind/internal/event/events"
//	)
//
//	evt := event.NewEvent(events.TopicReaderTick,
//	    events.ReaderTick{Count: 120, Done: false},
//	    "reader",
//	)
//	bus.PublishSync(ctx, evt)
//
// # Topic Naming Convention
//
// Topics follow a hierarchical dot-notation:
//
//	<module>.<entity>.<action>
//
// Examples:
//   - reader.tick
//   - matcher.tick
//   - coordinator.state.changed
//
// # Wildcard Subscriptions
//
// Subscribers can use wildcards to match multiple topics:
//   - "*" matches exactly one segment: "reader.*" matches "reader.tick"
//   - "**" matches zero or more segments: "coordinator.**" matches
//     "coordinator.state.changed"
package events
