package hal

import "fmt"

// Alarm is the intrusion alarm output.
type Alarm interface {
	On() error
	Off() error
}

// Buzzer drives a buzzer on a single GPIO line (active high).
type Buzzer struct {
	pins PinWriter
	pin  int
}

var _ Alarm = (*Buzzer)(nil)

// NewBuzzer creates the buzzer driver and silences it.
func NewBuzzer(pins PinWriter, pin int) (*Buzzer, error) {
	if pin < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPin, pin)
	}
	b := &Buzzer{pins: pins, pin: pin}
	if err := b.Off(); err != nil {
		return nil, err
	}
	return b, nil
}

// On sounds the buzzer.
func (b *Buzzer) On() error {
	if err := b.pins.WritePin(b.pin, true); err != nil {
		return fmt.Errorf("buzzer on: %w", err)
	}
	return nil
}

// Off silences the buzzer.
func (b *Buzzer) Off() error {
	if err := b.pins.WritePin(b.pin, false); err != nil {
		return fmt.Errorf("buzzer off: %w", err)
	}
	return nil
}
