// Package event provides a pub-sub event bus that lets the composition code,
// the configuration layer and the options monitor report what they did
// without depending on whoever is listening.
//
// # Main Types
//
//   - [Event]: Interface that all events must implement, providing EventType() and Timestamp()
//   - [Bus]: Synchronous pub-sub event dispatcher with thread-safe operations
//   - [Handler]: Function type for event handlers (func(Event))
//
// # Event Categories
//
//   - [RegistrationEvent]: emitted for every attach attempt with its outcome
//     (attached, duplicate, ineligible, failed)
//   - [ConfigReloadedEvent]: emitted when a configuration source reloads
//   - [OptionsChangedEvent]: emitted when materialized options are invalidated
//
// # Thread Safety
//
// The [Bus] type is safe for concurrent use. Handlers are called
// synchronously and a panicking handler does not prevent the remaining
// handlers from running.
//
// # Basic Usage
//
//	bus := event.NewBus()
//
//	bus.Subscribe(event.TypeRegistration, func(e event.Event) {
//	    reg := e.(event.RegistrationEvent)
//	    log.Printf("%s %s: %s", reg.Kind, reg.Key, reg.Outcome)
//	})
//
//	bus.SubscribeAll(func(e event.Event) {
//	    log.Printf("event: %s at %v", e.EventType(), e.Timestamp())
//	})
//
// Event types follow the pattern "category.action".
package event
