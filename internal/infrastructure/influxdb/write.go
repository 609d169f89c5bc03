package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// Measurement names.
const (
	MeasurementAccessAttempts    = "access_attempts"
	MeasurementDoorCycles        = "door_cycles"
	MeasurementLockouts          = "lockouts"
	MeasurementCredentialChanges = "credential_changes"
)

// WriteAccessAttempt records one verified request.
//
// Parameters:
//   - option: "open" or "change"
//   - outcome: "match" or "unmatch"
//   - attempts: Consecutive failures after this attempt
func (c *Client) WriteAccessAttempt(option, outcome string, attempts int, at time.Time) {
	c.write(accessAttemptPoint(option, outcome, attempts, at))
}

// WriteDoorCycle records the door timeline entering a phase.
func (c *Client) WriteDoorCycle(phase string, at time.Time) {
	c.write(doorCyclePoint(phase, at))
}

// WriteLockout records the alarm being raised (active) or cleared.
func (c *Client) WriteLockout(active bool, attempts int, at time.Time) {
	c.write(lockoutPoint(active, attempts, at))
}

// WriteCredentialChange records one setup round.
func (c *Client) WriteCredentialChange(outcome string, round int, at time.Time) {
	c.write(credentialChangePoint(outcome, round, at))
}

func (c *Client) write(p *write.Point) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(p)
}

func accessAttemptPoint(option, outcome string, attempts int, at time.Time) *write.Point {
	granted := 0
	if outcome == "match" {
		granted = 1
	}
	return write.NewPoint(
		MeasurementAccessAttempts,
		map[string]string{"option": option, "outcome": outcome},
		map[string]interface{}{"granted": granted, "failures": attempts},
		at,
	)
}

func doorCyclePoint(phase string, at time.Time) *write.Point {
	return write.NewPoint(
		MeasurementDoorCycles,
		map[string]string{"phase": phase},
		map[string]interface{}{"count": 1},
		at,
	)
}

func lockoutPoint(active bool, attempts int, at time.Time) *write.Point {
	state := 0
	if active {
		state = 1
	}
	return write.NewPoint(
		MeasurementLockouts,
		nil,
		map[string]interface{}{"active": state, "failures": attempts},
		at,
	)
}

func credentialChangePoint(outcome string, round int, at time.Time) *write.Point {
	return write.NewPoint(
		MeasurementCredentialChanges,
		map[string]string{"outcome": outcome},
		map[string]interface{}{"round": round},
		at,
	)
}
