package controller

import "time"

// EventType classifies controller events.
type EventType string

const (
	// EventModeChanged is emitted on every mode transition.
	EventModeChanged EventType = "mode_changed"

	// EventCredentialSetup is emitted after each setup round.
	EventCredentialSetup EventType = "credential_setup"

	// EventAccessAttempt is emitted after each verified request.
	EventAccessAttempt EventType = "access_attempt"

	// EventDoorPhase is emitted as the door timeline moves between phases.
	EventDoorPhase EventType = "door_phase"

	// EventLockout is emitted when the alarm is raised and when it clears.
	EventLockout EventType = "lockout"

	// EventDesync is emitted when a request carries an unknown option byte.
	EventDesync EventType = "desync"
)

// Request options as reported in events.
const (
	OptionOpen   = "open"
	OptionChange = "change"
)

// Event describes something the controller did.
type Event struct {
	Type     EventType `json:"type"`
	Mode     Mode      `json:"mode"`
	Option   string    `json:"option,omitempty"`
	Outcome  string    `json:"outcome,omitempty"`
	Reply    string    `json:"reply,omitempty"`
	Attempts int       `json:"attempts"`
	Phase    string    `json:"phase,omitempty"`
	Round    int       `json:"round,omitempty"`
	Error    string    `json:"error,omitempty"`
	Time     time.Time `json:"time"`
}

// Observer receives controller events. Observe is called synchronously on
// the protocol goroutine and must not block for long; failures are the
// observer's to log.
type Observer interface {
	Observe(ev Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ev Event)

// Observe implements Observer.
func (f ObserverFunc) Observe(ev Event) { f(ev) }

// Observers fans an event out to each non-nil observer in order.
type Observers []Observer

// Observe implements Observer.
func (o Observers) Observe(ev Event) {
	for _, obs := range o {
		if obs != nil {
			obs.Observe(ev)
		}
	}
}
