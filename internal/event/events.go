package event

import "time"

// Event type identifiers.
const (
	TypeRegistration   = "registration.attempted"
	TypeConfigReloaded = "config.reloaded"
	TypeOptionsChanged = "options.changed"
)

// Event is the interface that all events must implement.
type Event interface {
	// EventType returns a string identifier for this event type.
	EventType() string

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// baseEvent provides common fields for all events.
type baseEvent struct {
	eventType string
	timestamp time.Time
}

func (e baseEvent) EventType() string    { return e.eventType }
func (e baseEvent) Timestamp() time.Time { return e.timestamp }

func newBaseEvent(eventType string) baseEvent {
	return baseEvent{
		eventType: eventType,
		timestamp: time.Now(),
	}
}

// Outcome describes how an attach attempt ended.
type Outcome string

const (
	OutcomeAttached   Outcome = "attached"
	OutcomeDuplicate  Outcome = "duplicate"
	OutcomeIneligible Outcome = "ineligible"
	OutcomeFailed     Outcome = "failed"
)

// RegistrationEvent is emitted once per attach attempt.
type RegistrationEvent struct {
	baseEvent
	Kind    string  // Capability kind being registered
	Key     string  // Human-readable registration key ("<default>" for the absent key)
	Outcome Outcome // How the attempt ended
	Err     error   // Set when Outcome is OutcomeFailed
}

// NewRegistrationEvent creates a RegistrationEvent.
func NewRegistrationEvent(kind, key string, outcome Outcome, err error) RegistrationEvent {
	return RegistrationEvent{
		baseEvent: newBaseEvent(TypeRegistration),
		Kind:      kind,
		Key:       key,
		Outcome:   outcome,
		Err:       err,
	}
}

// ConfigReloadedEvent is emitted after a configuration source reloads.
type ConfigReloadedEvent struct {
	baseEvent
	Path string // Config file that changed, empty for in-memory sources
	Err  error  // Reload failure, if any
}

// NewConfigReloadedEvent creates a ConfigReloadedEvent.
func NewConfigReloadedEvent(path string, err error) ConfigReloadedEvent {
	return ConfigReloadedEvent{
		baseEvent: newBaseEvent(TypeConfigReloaded),
		Path:      path,
		Err:       err,
	}
}

// OptionsChangedEvent is emitted when a monitor drops its cached options
// because one of its change-token sources fired.
type OptionsChangedEvent struct {
	baseEvent
	Source string // Name of the change-token source that fired
}

// NewOptionsChangedEvent creates an OptionsChangedEvent.
func NewOptionsChangedEvent(source string) OptionsChangedEvent {
	return OptionsChangedEvent{
		baseEvent: newBaseEvent(TypeOptionsChanged),
		Source:    source,
	}
}
