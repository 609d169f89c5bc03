package audit

import (
	"context"
	"time"

	"github.com/nerrad567/gray-logic-doorlock/internal/controller"
	"github.com/nerrad567/gray-logic-doorlock/internal/passcode"
	"github.com/nerrad567/gray-logic-doorlock/internal/sequencer"
)

// Audit actions.
const (
	ActionCredentialSet      = "credential_set"
	ActionCredentialRejected = "credential_rejected"
	ActionAccessGranted      = "access_granted"
	ActionAccessDenied       = "access_denied"
	ActionDoorOpened         = "door_opened"
	ActionLockoutRaised      = "lockout_raised"
	ActionLockoutCleared     = "lockout_cleared"
	ActionDesync             = "protocol_desync"
)

const (
	entityDoor   = "door"
	sourceKeypad = "keypad"

	// writeTimeout bounds one insert on the protocol goroutine.
	writeTimeout = 2 * time.Second
)

// Logger is the optional logging dependency.
type Logger interface {
	Warn(msg string, args ...any)
}

// Recorder writes controller events to the audit trail. Mode changes and
// intermediate door phases are not recorded.
type Recorder struct {
	repo   Repository
	nodeID string
	logger Logger
}

// NewRecorder creates a Recorder for one node. logger may be nil.
func NewRecorder(repo Repository, nodeID string, logger Logger) *Recorder {
	return &Recorder{repo: repo, nodeID: nodeID, logger: logger}
}

// Observe implements controller.Observer. Write failures are logged.
func (r *Recorder) Observe(ev controller.Event) {
	entry := r.entryFor(ev)
	if entry == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err := r.repo.Create(ctx, entry); err != nil && r.logger != nil {
		r.logger.Warn("audit write failed", "action", entry.Action, "error", err)
	}
}

func (r *Recorder) entryFor(ev controller.Event) *AuditLog {
	details := map[string]any{"attempts": ev.Attempts}
	var action string

	switch ev.Type {
	case controller.EventCredentialSetup:
		action = ActionCredentialRejected
		if ev.Outcome == passcode.Match.String() {
			action = ActionCredentialSet
		}
		details["round"] = ev.Round
	case controller.EventAccessAttempt:
		action = ActionAccessDenied
		if ev.Outcome == passcode.Match.String() {
			action = ActionAccessGranted
		}
		details["option"] = ev.Option
		details["reply"] = ev.Reply
	case controller.EventDoorPhase:
		if ev.Phase != sequencer.PhaseOpening {
			return nil
		}
		action = ActionDoorOpened
	case controller.EventLockout:
		action = ActionLockoutCleared
		if ev.Phase == sequencer.PhaseAlarm {
			action = ActionLockoutRaised
		}
	case controller.EventDesync:
		action = ActionDesync
	default:
		return nil
	}

	if ev.Error != "" {
		details["error"] = ev.Error
	}

	return &AuditLog{
		Action:     action,
		EntityType: entityDoor,
		EntityID:   r.nodeID,
		Source:     sourceKeypad,
		Details:    details,
		CreatedAt:  ev.Time,
	}
}
