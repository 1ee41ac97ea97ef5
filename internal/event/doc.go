// Package event provides the lifecycle event bus for gofind.
//
// The bus carries observability/lifecycle notifications (reader
// progress, matcher progress, coordinator state transitions) to any
// subscriber — a UI, a logger, a debug dump — decoupled from the
// coordinator's own synchronous hot-path Event handling, which never
// goes through the bus.
//
// # Architecture
//
// The event system consists of several interconnected components:
//
//	                    ┌──────────────────────────────────────────┐
//	                    │               Event Bus                   │
//	                    │  - Subscriber registry                    │
//	                    │  - Topic matching (trie-based)            │
//	                    │  - Sync/Async dispatch                    │
//	                    └──────────────────────────────────────────┘
//	                                      │
//	          ┌───────────────────────────┼───────────────────────────┐
//	          ▼                           ▼                           ▼
//	┌─────────────────┐         ┌─────────────────┐         ┌─────────────────┐
//	│    Registry     │         │     Filter      │         │   Publisher     │
//	│  - Subscription │         │  - Topic-based  │         │  - BusAdapter   │
//	│    management   │         │  - Source-based │         │  - CLI bridge   │
//	└─────────────────┘         │  - Payload      │         │                 │
//	                            └─────────────────┘         └─────────────────┘
//
// # Event Topics
//
// Events use hierarchical topics with dot notation:
//
//	reader.tick                   - The reader produced more items
//	matcher.tick                  - The matcher pool scored more items
//	coordinator.state.changed     - The state machine transitioned
//
// # Wildcard Patterns
//
// Subscriptions support wildcard patterns for flexible matching:
//
//	reader.*       - matches reader.tick, reader.restarted (single segment)
//	coordinator.** - matches coordinator.state.changed, coordinator.a.b.c
//	*.tick         - matches reader.tick, matcher.tick (prefix wildcard)
//
// # Delivery Modes
//
// Events can be delivered synchronously or asynchronously:
//
//   - Sync: Handler executes in publisher's goroutine (for critical paths)
//   - Async: Handler executes in worker pool (for non-blocking operations)
//
// Choose synchronous delivery for:
//   - UI updates that must complete before next frame
//   - State changes that other handlers depend on
//   - Low-latency requirements
//
// Choose asynchronous delivery for:
//   - Debug logging
//   - Metrics collection
//   - Non-critical diagnostics
//
// # Priority Ordering
//
// Handlers execute in priority order (lower values first) for
// deterministic behavior:
//
//   - Critical (0): UI rendering - executes first
//   - High (100): Coordinator-adjacent bookkeeping
//   - Normal (200): General subscribers - default priority
//   - Low (300): Metrics, logging - executes last
//
// # Basic Usage
//
//	// Create and start the bus
//	bus := event.NewBus()
//	if err := bus.Start(); err != nil {
//	    log.Fatal(err)
//	}
//	defer bus.Stop(context.Background())
//
//	// Subscribe to events with options
//	sub, err := bus.Subscribe(
//	    topic.Topic("reader.*"),
//	    handler,
//	    event.WithPriority(event.PriorityCritical),
//	    event.WithDeliveryMode(event.DeliverySync),
//	)
//
//	// Publish events
//	evt := event.NewEvent(topic.Topic("reader.tick"), payload, "reader")
//	bus.Publish(ctx, evt)
//
//	// Synchronous publish with error handling
//	if err := bus.PublishSync(ctx, evt); err != nil {
//	    log.Printf("publish failed: %v", err)
//	}
//
// # Type-Safe Events
//
// Use generics for compile-time type safety:
//
//	// Define strongly-typed event
//	type ReaderTick struct {
//	    Generation uint64
//	    Count      int
//	}
//
//	// Create typed event
//	evt := event.NewEvent(topic, ReaderTick{
//	    Generation: 1,
//	    Count:      120,
//	}, "reader")
//
//	// Type-safe handler with SubscribeTyped
//	subscriber := event.NewSubscriber(bus)
//	event.SubscribeTyped(subscriber, topic, func(ctx context.Context, evt event.Event[ReaderTick]) error {
//	    fmt.Printf("read %d items so far\n", evt.Payload.Count)
//	    return nil
//	})
//
// # Filtering
//
// Use filters to conditionally process events:
//
//	// Topic-based filter
//	filter := event.FilterByTopic("reader.**")
//
//	// Source-based filter
//	filter := event.FilterBySources("reader", "matcher")
//
//	// Composite filters
//	filter := event.FilterAnd(topicFilter, sourceFilter)
//	filter := event.FilterOr(filter1, filter2)
//
// # CLI Bridge
//
// The BusAdapter connects the typed event bus to code that only knows
// map[string]any payloads (e.g. the --print-config debug path):
//
//	adapter := event.NewBusAdapter(bus, "cli")
//
//	adapter.Publish("coordinator.state.changed", map[string]any{
//	    "from": "Idle",
//	    "to":   "Reading",
//	})
//
// # Performance Considerations
//
//   - Use async delivery for non-critical handlers to avoid blocking publishers
//   - Subscribe to specific topics rather than broad wildcards when possible
//   - Use filters to reduce unnecessary handler invocations
//   - The trie-based topic matcher provides O(k) matching where k is segments
//   - Sync dispatch adds ~500ns overhead; async adds ~2-5us for goroutine spawn
//
// # Thread Safety
//
// The Bus and all public types are safe for concurrent use. Subscriptions can
// be added/removed while events are being published. However, individual handlers
// must manage their own thread safety.
//
// # Subpackages
//
//   - events: Strongly-typed event payload definitions
//   - topic: Topic types and trie-based pattern matching
//   - dispatch: Synchronous and asynchronous dispatch implementations
package event
