package panel

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/nerrad567/gray-logic-doorlock/internal/hal"
	"github.com/nerrad567/gray-logic-doorlock/internal/link"
	"github.com/nerrad567/gray-logic-doorlock/internal/passcode"
	"github.com/nerrad567/gray-logic-doorlock/internal/sequencer"
)

// DefaultMessageTicks is how long status messages stay on screen
// (about half a second at the reference tick interval).
const DefaultMessageTicks = 60

// phaseMessage names the single phase of a status message timeline.
const phaseMessage = "message"

// Options holds the dependencies and settings of a Panel.
type Options struct {
	// Channel is the link to the controller. Required.
	Channel link.Channel

	// Keypad is the input device. Required.
	Keypad hal.Keypad

	// Display is the output device. Required.
	Display hal.Display

	// Clock is the node-local tick source. Required.
	Clock sequencer.Clock

	// Timing holds the door and lockout display thresholds in ticks.
	Timing sequencer.Timing

	// MessageTicks is how long status messages are held. Zero means
	// DefaultMessageTicks.
	MessageTicks uint32

	// Wait is called between sequencer polls. If nil, PollInterval is used.
	Wait func()

	// PollInterval is the sleep between sequencer polls when Wait is nil.
	PollInterval time.Duration

	// Logger is optional.
	Logger Logger
}

// Panel is the front-end interaction state machine.
//
// Thread Safety:
//   - Run and the exchange methods must be called from one goroutine.
//   - Mode may be read from any goroutine.
type Panel struct {
	ch           link.Channel
	keypad       hal.Keypad
	display      hal.Display
	clock        sequencer.Clock
	timing       sequencer.Timing
	messageTicks uint32
	wait         func()
	logger       Logger

	mode atomic.Int32
}

// New creates a panel in SettingCredential mode.
func New(opts Options) (*Panel, error) {
	switch {
	case opts.Channel == nil:
		return nil, fmt.Errorf("%w: channel", ErrMissingDependency)
	case opts.Keypad == nil:
		return nil, fmt.Errorf("%w: keypad", ErrMissingDependency)
	case opts.Display == nil:
		return nil, fmt.Errorf("%w: display", ErrMissingDependency)
	case opts.Clock == nil:
		return nil, fmt.Errorf("%w: clock", ErrMissingDependency)
	}

	p := &Panel{
		ch:           opts.Channel,
		keypad:       opts.Keypad,
		display:      opts.Display,
		clock:        opts.Clock,
		timing:       opts.Timing,
		messageTicks: opts.MessageTicks,
		wait:         opts.Wait,
		logger:       opts.Logger,
	}
	if p.messageTicks == 0 {
		p.messageTicks = DefaultMessageTicks
	}
	if p.wait == nil {
		p.wait = sequencer.Poll(opts.PollInterval)
	}
	if p.logger == nil {
		p.logger = noopLogger{}
	}
	p.mode.Store(int32(SettingCredential))
	return p, nil
}

// Mode returns the current front-end mode.
func (p *Panel) Mode() Mode {
	return Mode(p.mode.Load())
}

// Run performs the setup exchange and then serves the menu until the link
// closes, the keypad is interrupted or ctx is cancelled.
//
// Returns:
//   - error: nil for those shutdown causes, otherwise the failure
func (p *Panel) Run(ctx context.Context) error {
	if err := p.SetupCredential(ctx); err != nil {
		return p.exitErr(err)
	}
	for {
		if err := p.ServeMenu(ctx); err != nil {
			return p.exitErr(err)
		}
	}
}

func (p *Panel) exitErr(err error) error {
	switch {
	case errors.Is(err, link.ErrClosed),
		errors.Is(err, hal.ErrInterrupted),
		errors.Is(err, context.Canceled):
		p.logger.Info("panel stopped", "mode", p.Mode().String(), "reason", err.Error())
		return nil
	default:
		return err
	}
}

// SetupCredential runs the setup exchange as initiator, re-prompting until
// the controller reports a match.
func (p *Panel) SetupCredential(ctx context.Context) error {
	for {
		candidate, err := p.prompt(textNewPass)
		if err != nil {
			return err
		}
		if err := p.sendBlock(candidate); err != nil {
			return fmt.Errorf("sending candidate: %w", err)
		}

		confirmation, err := p.prompt(textConfirmPass)
		if err != nil {
			return err
		}
		if err := p.sendBlock(confirmation); err != nil {
			return fmt.Errorf("sending confirmation: %w", err)
		}

		if _, err := link.AwaitReady(p.ch); err != nil {
			return fmt.Errorf("awaiting setup outcome: %w", err)
		}
		outcome, err := p.ch.Receive()
		if err != nil {
			return fmt.Errorf("receiving setup outcome: %w", err)
		}
		p.logger.Info("credential setup", "outcome", passcode.Outcome(outcome).String())

		if passcode.Outcome(outcome) == passcode.Match {
			p.show(textPassMatch, textPassSaved)
			return p.hold(ctx)
		}
		p.show(textPassUnmatch, textTryAgain)
		if err := p.hold(ctx); err != nil {
			return err
		}
	}
}

// prompt shows a setup prompt and collects a passcode for it.
func (p *Panel) prompt(text string) (passcode.Passcode, error) {
	p.setMode(SettingCredential)
	p.show(text)
	code, err := p.CollectInput()
	p.setMode(SettingCredential)
	return code, err
}

// sendBlock performs the READY handshake and transmits a passcode.
func (p *Panel) sendBlock(code passcode.Passcode) error {
	if err := link.Handshake(p.ch); err != nil {
		return err
	}
	return link.SendPasscode(p.ch, code)
}

// ServeMenu shows the menu, waits for an option key, collects a passcode,
// sends the request and presents the controller's reply.
func (p *Panel) ServeMenu(ctx context.Context) error {
	p.setMode(ShowingMenu)
	p.show(textMenuOpen, textMenuChange)

	option, err := p.readOption()
	if err != nil {
		return err
	}

	p.show(textEnterPass)
	candidate, err := p.CollectInput()
	if err != nil {
		return err
	}

	if err := p.ch.Send(link.Ready); err != nil {
		return fmt.Errorf("sending ready: %w", err)
	}
	if err := link.SendPasscode(p.ch, candidate); err != nil {
		return fmt.Errorf("sending candidate: %w", err)
	}
	if err := p.ch.Send(option); err != nil {
		return fmt.Errorf("sending option: %w", err)
	}

	reply, err := p.ch.Receive()
	if err != nil {
		return fmt.Errorf("receiving reply: %w", err)
	}
	p.logger.Info("request answered", "option", link.OpcodeName(option), "reply", link.OpcodeName(reply))

	switch reply {
	case link.OpeningDoorAction:
		return p.showDoor(ctx)
	case link.ChangingPasswordAction:
		return p.SetupCredential(ctx)
	case link.Danger:
		return p.showLockout(ctx)
	default:
		p.setMode(DisplayingMismatch)
		p.show(textWrongPass, textTryAgainMore)
		return p.hold(ctx)
	}
}

// readOption blocks until '+' or '-' is pressed; every other key is ignored.
func (p *Panel) readOption() (byte, error) {
	for {
		key, err := p.keypad.ReadKey()
		if err != nil {
			return 0, err
		}
		if key == link.OpenDoorOption || key == link.ChangePasswordOption {
			return key, nil
		}
	}
}

// CollectInput reads a passcode from the keypad.
//
// Digit keys fill the next slot and echo a mask character. Any other key is
// discarded without using a slot. Once all slots are full, entry completes
// only when Enter is pressed; further digits are ignored.
func (p *Panel) CollectInput() (passcode.Passcode, error) {
	p.setMode(CollectingInput)

	var code passcode.Passcode
	for i := 0; i < passcode.Length; {
		key, err := p.keypad.ReadKey()
		if err != nil {
			return passcode.Passcode{}, err
		}
		if !hal.IsDigit(key) {
			continue
		}
		code[i] = key
		i++
		if err := p.display.Echo(maskChar); err != nil {
			p.logger.Warn("display echo failed", "error", err)
		}
	}

	for {
		key, err := p.keypad.ReadKey()
		if err != nil {
			return passcode.Passcode{}, err
		}
		if key == hal.KeyEnter {
			return code, nil
		}
	}
}

func (p *Panel) showDoor(ctx context.Context) error {
	p.setMode(DisplayingDoorSequence)
	seq := sequencer.Door(p.clock, p.timing, sequencer.DoorHooks{
		Opening: func() { p.show(textDoorOpening) },
		Hold:    func() { p.show(textDoorOpen) },
		Closing: func() { p.show(textDoorLocking) },
	})
	return seq.RunContext(ctx, p.wait)
}

func (p *Panel) showLockout(ctx context.Context) error {
	p.setMode(DisplayingLockout)
	seq := sequencer.Lockout(p.clock, p.timing, sequencer.LockoutHooks{
		Raise: func() { p.show(textDanger, textAlertOn) },
	})
	return seq.RunContext(ctx, p.wait)
}

// hold keeps the current screen up for the message duration.
func (p *Panel) hold(ctx context.Context) error {
	seq := sequencer.New(p.clock, nil, sequencer.Phase{Name: phaseMessage, Ticks: p.messageTicks})
	return seq.RunContext(ctx, p.wait)
}

func (p *Panel) show(lines ...string) {
	if err := p.display.Show(lines...); err != nil {
		p.logger.Warn("display update failed", "error", err)
	}
}

func (p *Panel) setMode(m Mode) {
	if Mode(p.mode.Swap(int32(m))) != m {
		p.logger.Debug("mode changed", "mode", m.String())
	}
}
