package controller

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/nerrad567/gray-logic-doorlock/internal/credential"
	"github.com/nerrad567/gray-logic-doorlock/internal/hal"
	"github.com/nerrad567/gray-logic-doorlock/internal/link"
	"github.com/nerrad567/gray-logic-doorlock/internal/passcode"
	"github.com/nerrad567/gray-logic-doorlock/internal/sequencer"
)

// DefaultMaxAttempts is the number of consecutive failed verifications that
// triggers a lockout.
const DefaultMaxAttempts = 3

// Options holds the dependencies and settings of a Controller.
type Options struct {
	// Channel is the link to the panel. Required.
	Channel link.Channel

	// Credentials holds the authoritative passcode. Required.
	Credentials *credential.Credentials

	// Motor drives the door. Required.
	Motor hal.Motor

	// Alarm is the intrusion buzzer. Required.
	Alarm hal.Alarm

	// Clock is the node-local tick source. Required.
	Clock sequencer.Clock

	// Timing holds the door and lockout thresholds in ticks.
	Timing sequencer.Timing

	// MaxAttempts is the lockout threshold. Zero means DefaultMaxAttempts.
	MaxAttempts int

	// Wait is called between sequencer polls. If nil, PollInterval is used.
	Wait func()

	// PollInterval is the sleep between sequencer polls when Wait is nil.
	// Zero spins.
	PollInterval time.Duration

	// Observer receives events. Optional.
	Observer Observer

	// Logger is optional.
	Logger Logger
}

// Controller is the back-end authentication state machine.
//
// Thread Safety:
//   - Run, SetupCredential and ServeRequest must be called from one goroutine.
//   - Mode and Attempts may be read from any goroutine.
type Controller struct {
	ch          link.Channel
	creds       *credential.Credentials
	motor       hal.Motor
	alarm       hal.Alarm
	clock       sequencer.Clock
	timing      sequencer.Timing
	maxAttempts int
	wait        func()
	observer    Observer
	logger      Logger

	mode     atomic.Int32
	attempts atomic.Int32
	rounds   int
}

// New creates a controller in AwaitingLink mode.
func New(opts Options) (*Controller, error) {
	switch {
	case opts.Channel == nil:
		return nil, fmt.Errorf("%w: channel", ErrMissingDependency)
	case opts.Credentials == nil:
		return nil, fmt.Errorf("%w: credentials", ErrMissingDependency)
	case opts.Motor == nil:
		return nil, fmt.Errorf("%w: motor", ErrMissingDependency)
	case opts.Alarm == nil:
		return nil, fmt.Errorf("%w: alarm", ErrMissingDependency)
	case opts.Clock == nil:
		return nil, fmt.Errorf("%w: clock", ErrMissingDependency)
	}

	c := &Controller{
		ch:          opts.Channel,
		creds:       opts.Credentials,
		motor:       opts.Motor,
		alarm:       opts.Alarm,
		clock:       opts.Clock,
		timing:      opts.Timing,
		maxAttempts: opts.MaxAttempts,
		wait:        opts.Wait,
		observer:    opts.Observer,
		logger:      opts.Logger,
	}
	if c.maxAttempts <= 0 {
		c.maxAttempts = DefaultMaxAttempts
	}
	if c.wait == nil {
		c.wait = sequencer.Poll(opts.PollInterval)
	}
	if c.observer == nil {
		c.observer = Observers(nil)
	}
	if c.logger == nil {
		c.logger = noopLogger{}
	}
	c.mode.Store(int32(AwaitingLink))
	return c, nil
}

// Mode returns the current system mode.
func (c *Controller) Mode() Mode {
	return Mode(c.mode.Load())
}

// Attempts returns the number of consecutive failed verifications.
func (c *Controller) Attempts() int {
	return int(c.attempts.Load())
}

// Run performs the boot setup exchange and then serves requests until the
// link is closed or ctx is cancelled during a sequence.
//
// Returns:
//   - error: nil when the link was closed, otherwise the failure
func (c *Controller) Run(ctx context.Context) error {
	defer c.Halt()

	if err := c.SetupCredential(ctx); err != nil {
		return c.exitErr(err)
	}
	for {
		if err := c.ServeRequest(ctx); err != nil {
			return c.exitErr(err)
		}
	}
}

func (c *Controller) exitErr(err error) error {
	if errors.Is(err, link.ErrClosed) || errors.Is(err, context.Canceled) {
		c.logger.Info("controller stopped", "mode", c.Mode().String())
		return nil
	}
	return err
}

// Halt forces the actuators into their safe state: motor stopped, alarm off.
func (c *Controller) Halt() {
	if err := c.motor.Rotate(hal.Stop); err != nil {
		c.logger.Error("stopping motor", "error", err)
	}
	if err := c.alarm.Off(); err != nil {
		c.logger.Error("silencing alarm", "error", err)
	}
}

// SetupCredential runs the setup exchange as responder until the panel
// sends two matching passcodes. On boot it waits for the first READY in
// AwaitingLink mode.
func (c *Controller) SetupCredential(ctx context.Context) error {
	if c.Mode() != AwaitingLink {
		c.setMode(SettingCredential)
	}

	for {
		candidate, err := c.receiveBlock()
		if err != nil {
			return fmt.Errorf("receiving candidate: %w", err)
		}
		confirmation, err := c.receiveBlock()
		if err != nil {
			return fmt.Errorf("receiving confirmation: %w", err)
		}

		c.rounds++
		ev := Event{Type: EventCredentialSetup, Round: c.rounds}

		outcome, err := c.creds.Setup(ctx, candidate, confirmation)
		if err != nil {
			c.logger.Error("credential write failed, reporting unmatch", "error", err)
			ev.Error = err.Error()
		}

		if err := c.ch.Send(link.Ready); err != nil {
			return fmt.Errorf("sending ready: %w", err)
		}
		if err := c.ch.Send(byte(outcome)); err != nil {
			return fmt.Errorf("sending setup outcome: %w", err)
		}

		ev.Outcome = outcome.String()
		c.emit(ev)
		c.logger.Info("credential setup round", "round", c.rounds, "outcome", outcome.String())

		if outcome == passcode.Match {
			c.rounds = 0
			c.setMode(Idle)
			return nil
		}
	}
}

// receiveBlock answers the panel's READY with READY and reads a passcode.
func (c *Controller) receiveBlock() (passcode.Passcode, error) {
	discarded, err := link.AwaitReady(c.ch)
	if err != nil {
		return passcode.Passcode{}, err
	}
	if discarded > 0 {
		c.logger.Warn("discarded bytes before ready", "count", discarded)
	}
	if c.Mode() == AwaitingLink {
		c.setMode(SettingCredential)
	}

	if err := c.ch.Send(link.Ready); err != nil {
		return passcode.Passcode{}, fmt.Errorf("sending ready: %w", err)
	}
	return link.ReceivePasscode(c.ch)
}

// ServeRequest handles one request from Idle and returns once the controller
// is back in Idle. A change-password request runs the setup exchange before
// returning.
func (c *Controller) ServeRequest(ctx context.Context) error {
	c.setMode(Idle)

	discarded, err := link.AwaitReady(c.ch)
	if err != nil {
		return fmt.Errorf("awaiting request: %w", err)
	}
	if discarded > 0 {
		c.logger.Warn("discarded bytes while idle", "count", discarded)
	}

	candidate, err := link.ReceivePasscode(c.ch)
	if err != nil {
		return fmt.Errorf("receiving candidate: %w", err)
	}
	option, err := c.ch.Receive()
	if err != nil {
		return fmt.Errorf("receiving option: %w", err)
	}

	var optionName string
	switch option {
	case link.OpenDoorOption:
		optionName = OptionOpen
		c.setMode(VerifyingForOpen)
	case link.ChangePasswordOption:
		optionName = OptionChange
		c.setMode(VerifyingForChange)
	default:
		// No reply: the request is dropped and the link is probably out of step.
		c.logger.Warn("unknown request option, no reply sent", "option", link.OpcodeName(option))
		c.emit(Event{Type: EventDesync, Error: "unknown option " + link.OpcodeName(option)})
		c.setMode(Idle)
		return nil
	}

	if c.creds.Verify(candidate) == passcode.Match {
		return c.grant(ctx, optionName)
	}
	return c.deny(ctx, optionName)
}

func (c *Controller) grant(ctx context.Context, option string) error {
	c.attempts.Store(0)

	reply := link.OpeningDoorAction
	if option == OptionChange {
		reply = link.ChangingPasswordAction
	}
	if err := c.ch.Send(reply); err != nil {
		return fmt.Errorf("sending %s: %w", link.OpcodeName(reply), err)
	}
	c.emit(Event{
		Type:    EventAccessAttempt,
		Option:  option,
		Outcome: passcode.Match.String(),
		Reply:   link.OpcodeName(reply),
	})
	c.logger.Info("access granted", "option", option)

	if option == OptionChange {
		return c.SetupCredential(ctx)
	}

	if err := c.runDoor(ctx); err != nil {
		return err
	}
	c.setMode(Idle)
	return nil
}

func (c *Controller) deny(ctx context.Context, option string) error {
	n := int(c.attempts.Add(1))

	reply := link.PasswordUnmatch
	if n >= c.maxAttempts {
		reply = link.Danger
	}
	if err := c.ch.Send(reply); err != nil {
		return fmt.Errorf("sending %s: %w", link.OpcodeName(reply), err)
	}
	c.emit(Event{
		Type:     EventAccessAttempt,
		Option:   option,
		Outcome:  passcode.Unmatch.String(),
		Reply:    link.OpcodeName(reply),
		Attempts: n,
	})
	c.logger.Warn("access denied", "option", option, "attempts", n, "max_attempts", c.maxAttempts)

	if reply == link.Danger {
		if err := c.runLockout(ctx); err != nil {
			return err
		}
		c.attempts.Store(0)
	}
	c.setMode(Idle)
	return nil
}

func (c *Controller) runDoor(ctx context.Context) error {
	c.setMode(RunningDoorSequence)

	seq := sequencer.Door(c.clock, c.timing, sequencer.DoorHooks{
		Opening: func() { c.rotate(hal.Forward) },
		Hold:    func() { c.rotate(hal.Stop) },
		Closing: func() { c.rotate(hal.Reverse) },
		Closed:  func() { c.rotate(hal.Stop) },
	})
	seq.OnPhase(func(phase string) {
		c.emit(Event{Type: EventDoorPhase, Phase: phase})
		c.logger.Debug("door phase", "phase", phase)
	})

	if err := seq.RunContext(ctx, c.wait); err != nil {
		return fmt.Errorf("door sequence: %w", err)
	}
	return nil
}

func (c *Controller) runLockout(ctx context.Context) error {
	c.setMode(RunningLockout)

	seq := sequencer.Lockout(c.clock, c.timing, sequencer.LockoutHooks{
		Raise: func() { c.setAlarm(true) },
		Clear: func() { c.setAlarm(false) },
	})
	seq.OnPhase(func(phase string) {
		c.emit(Event{Type: EventLockout, Phase: phase})
	})

	if err := seq.RunContext(ctx, c.wait); err != nil {
		return fmt.Errorf("lockout sequence: %w", err)
	}
	return nil
}

func (c *Controller) rotate(d hal.Direction) {
	if err := c.motor.Rotate(d); err != nil {
		c.logger.Error("motor command failed", "direction", d.String(), "error", err)
	}
}

func (c *Controller) setAlarm(on bool) {
	var err error
	if on {
		err = c.alarm.On()
	} else {
		err = c.alarm.Off()
	}
	if err != nil {
		c.logger.Error("alarm command failed", "on", on, "error", err)
	}
}

func (c *Controller) setMode(m Mode) {
	if Mode(c.mode.Swap(int32(m))) == m {
		return
	}
	c.logger.Debug("mode changed", "mode", m.String())
	c.emit(Event{Type: EventModeChanged})
}

func (c *Controller) emit(ev Event) {
	ev.Mode = c.Mode()
	if ev.Attempts == 0 {
		ev.Attempts = c.Attempts()
	}
	if ev.Time.IsZero() {
		ev.Time = time.Now().UTC()
	}
	c.observer.Observe(ev)
}
