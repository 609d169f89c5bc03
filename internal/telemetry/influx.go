package telemetry

import (
	"time"

	"github.com/nerrad567/gray-logic-doorlock/internal/controller"
	"github.com/nerrad567/gray-logic-doorlock/internal/sequencer"
)

// MetricWriter is the part of influxdb.Client the observer needs.
type MetricWriter interface {
	WriteAccessAttempt(option, outcome string, attempts int, at time.Time)
	WriteDoorCycle(phase string, at time.Time)
	WriteLockout(active bool, attempts int, at time.Time)
	WriteCredentialChange(outcome string, round int, at time.Time)
}

// InfluxObserver turns controller events into metric points.
type InfluxObserver struct {
	w MetricWriter
}

// NewInfluxObserver creates an observer writing to w.
func NewInfluxObserver(w MetricWriter) *InfluxObserver {
	return &InfluxObserver{w: w}
}

// Observe implements controller.Observer.
func (o *InfluxObserver) Observe(ev controller.Event) {
	switch ev.Type {
	case controller.EventAccessAttempt:
		o.w.WriteAccessAttempt(ev.Option, ev.Outcome, ev.Attempts, ev.Time)
	case controller.EventDoorPhase:
		o.w.WriteDoorCycle(ev.Phase, ev.Time)
	case controller.EventLockout:
		o.w.WriteLockout(ev.Phase == sequencer.PhaseAlarm, ev.Attempts, ev.Time)
	case controller.EventCredentialSetup:
		o.w.WriteCredentialChange(ev.Outcome, ev.Round, ev.Time)
	}
}
