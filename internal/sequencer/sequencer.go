package sequencer

import (
	"context"
	"time"
)

// Clock is the read side of a tick source.
type Clock interface {
	Now() uint32
}

// Phase is one timed step of a timeline.
type Phase struct {
	// Name identifies the phase in logs and events.
	Name string

	// Ticks is the minimum number of ticks the phase lasts.
	Ticks uint32

	// Enter runs once when the phase begins. May be nil.
	Enter func()
}

// Sequencer steps through phases against a Clock.
//
// Not safe for concurrent use; one driver loop owns it.
type Sequencer struct {
	clock  Clock
	phases []Phase
	finish func()

	index   int
	mark    uint32
	started bool
	done    bool

	onPhase func(name string)
}

// New builds a sequencer. finish runs once after the last phase completes and
// may be nil.
func New(clock Clock, finish func(), phases ...Phase) *Sequencer {
	return &Sequencer{
		clock:  clock,
		phases: phases,
		finish: finish,
	}
}

// OnPhase registers a callback invoked with each phase name as it is entered,
// and with PhaseDone when the timeline finishes.
func (s *Sequencer) OnPhase(fn func(name string)) {
	s.onPhase = fn
}

// PhaseDone is reported to OnPhase callbacks when a timeline completes.
const PhaseDone = "done"

// Start enters the first phase. Calling Start twice has no effect.
func (s *Sequencer) Start() {
	if s.started {
		return
	}
	s.started = true
	s.index = 0
	if len(s.phases) == 0 {
		s.complete()
		return
	}
	s.enter(0)
}

func (s *Sequencer) enter(i int) {
	s.index = i
	s.mark = s.clock.Now()
	p := s.phases[i]
	if p.Enter != nil {
		p.Enter()
	}
	if s.onPhase != nil {
		s.onPhase(p.Name)
	}
}

func (s *Sequencer) complete() {
	s.done = true
	if s.finish != nil {
		s.finish()
	}
	if s.onPhase != nil {
		s.onPhase(PhaseDone)
	}
}

// Step advances past the current phase if its threshold has been reached.
// It starts the sequencer if needed and reports whether the timeline is done.
func (s *Sequencer) Step() bool {
	if !s.started {
		s.Start()
	}
	if s.done {
		return true
	}

	if s.Elapsed() < s.phases[s.index].Ticks {
		return false
	}

	next := s.index + 1
	if next >= len(s.phases) {
		s.complete()
		return true
	}
	s.enter(next)
	return false
}

// Elapsed returns the ticks spent in the current phase.
func (s *Sequencer) Elapsed() uint32 {
	return s.clock.Now() - s.mark
}

// Phase returns the name of the current phase, PhaseDone when finished, or
// "" before Start.
func (s *Sequencer) Phase() string {
	switch {
	case s.done:
		return PhaseDone
	case !s.started:
		return ""
	default:
		return s.phases[s.index].Name
	}
}

// Done reports whether the timeline has completed.
func (s *Sequencer) Done() bool {
	return s.done
}

// Run busy-polls Step until the timeline completes. wait is called between
// polls and may be nil for a pure spin.
func (s *Sequencer) Run(wait func()) {
	for !s.Step() {
		if wait != nil {
			wait()
		}
	}
}

// RunContext is Run with an exit for process shutdown: it returns ctx.Err()
// if ctx is cancelled before the timeline completes, leaving the current
// phase in place for the caller to make safe.
func (s *Sequencer) RunContext(ctx context.Context, wait func()) error {
	for !s.Step() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if wait != nil {
			wait()
		}
	}
	return nil
}

// Poll returns a wait function for Run that sleeps for interval.
func Poll(interval time.Duration) func() {
	if interval <= 0 {
		return nil
	}
	return func() { time.Sleep(interval) }
}
