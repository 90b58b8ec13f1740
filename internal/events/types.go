package events

import (
	"time"

	"encounter-tracker/internal/encounter"
)

// EventType represents the kinds of events the tracker emits.
type EventType string

const (
	// EventEncounterCounted fires on the cycle a new encounter was
	// tallied; the event carries a state snapshot.
	EventEncounterCounted EventType = "encounter.counted"

	// EventStateSaved fires after a successful save of the state file.
	EventStateSaved EventType = "state.saved"

	// EventRunStateChanged fires when the tracker's run state changes.
	EventRunStateChanged EventType = "runstate.changed"

	// EventCycleError fires when a detection cycle was skipped due to a
	// recoverable error (window gone, OCR failure).
	EventCycleError EventType = "cycle.error"
)

// Event is a tracker notification with an optional state snapshot.
type Event struct {
	Type      EventType
	Source    string
	Timestamp time.Time

	// Snapshot is a deep copy of the statistics at emission time, set
	// on EventEncounterCounted.
	Snapshot *encounter.State

	// RunState is set on EventRunStateChanged.
	RunState string

	// Err is set on EventCycleError.
	Err error
}

// EventHandler is a function that processes an event.
type EventHandler func(Event)

// SubscriptionID uniquely identifies a subscription.
type SubscriptionID int64
