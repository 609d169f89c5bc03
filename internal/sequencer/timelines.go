package sequencer

// Phase names used by the built-in timelines.
const (
	PhaseOpening = "opening"
	PhaseOpen    = "open"
	PhaseClosing = "closing"
	PhaseAlarm   = "alarm"
)

// Timing holds the phase thresholds in ticks.
type Timing struct {
	DoorOpen  uint32
	DoorHold  uint32
	DoorClose uint32
	Lockout   uint32
}

// DoorHooks are the actions bound to the door timeline.
type DoorHooks struct {
	Opening func() // drive forward / show "opening"
	Hold    func() // halt / show "open"
	Closing func() // drive reverse / show "closing"
	Closed  func() // halt / clear
}

// Door returns the open → hold → close timeline.
func Door(clock Clock, t Timing, h DoorHooks) *Sequencer {
	return New(clock, h.Closed,
		Phase{Name: PhaseOpening, Ticks: t.DoorOpen, Enter: h.Opening},
		Phase{Name: PhaseOpen, Ticks: t.DoorHold, Enter: h.Hold},
		Phase{Name: PhaseClosing, Ticks: t.DoorClose, Enter: h.Closing},
	)
}

// LockoutHooks are the actions bound to the lockout timeline.
type LockoutHooks struct {
	Raise func() // alarm on / show warning
	Clear func() // alarm off / clear
}

// Lockout returns the alarm timeline.
func Lockout(clock Clock, t Timing, h LockoutHooks) *Sequencer {
	return New(clock, h.Clear,
		Phase{Name: PhaseAlarm, Ticks: t.Lockout, Enter: h.Raise},
	)
}
