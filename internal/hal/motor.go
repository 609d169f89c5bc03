package hal

import "fmt"

// Direction is the commanded rotation of the door motor.
type Direction int

const (
	// Stop de-energises both driver lines.
	Stop Direction = iota
	// Forward opens the door (clockwise).
	Forward
	// Reverse closes the door (anti-clockwise).
	Reverse
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case Stop:
		return "stop"
	case Forward:
		return "forward"
	case Reverse:
		return "reverse"
	default:
		return fmt.Sprintf("direction(%d)", int(d))
	}
}

// Motor is the door actuator.
type Motor interface {
	Rotate(d Direction) error
}

// DCMotor drives a DC motor through a two-line H-bridge.
//
// Line levels per direction:
//
//	Stop:    IN1 low,  IN2 low
//	Forward: IN1 high, IN2 low
//	Reverse: IN1 low,  IN2 high
type DCMotor struct {
	pins PinWriter
	in1  int
	in2  int
}

var _ Motor = (*DCMotor)(nil)

// NewDCMotor creates the motor driver and stops the motor.
func NewDCMotor(pins PinWriter, in1, in2 int) (*DCMotor, error) {
	if in1 < 0 || in2 < 0 || in1 == in2 {
		return nil, fmt.Errorf("%w: in1=%d in2=%d", ErrInvalidPin, in1, in2)
	}
	m := &DCMotor{pins: pins, in1: in1, in2: in2}
	if err := m.Rotate(Stop); err != nil {
		return nil, fmt.Errorf("stopping motor: %w", err)
	}
	return m, nil
}

// Rotate sets the motor direction.
func (m *DCMotor) Rotate(d Direction) error {
	var l1, l2 bool
	switch d {
	case Stop:
	case Forward:
		l1 = true
	case Reverse:
		l2 = true
	default:
		return fmt.Errorf("%w: %d", ErrInvalidDirection, int(d))
	}

	if err := m.pins.WritePin(m.in1, l1); err != nil {
		return fmt.Errorf("motor %s: %w", d, err)
	}
	if err := m.pins.WritePin(m.in2, l2); err != nil {
		return fmt.Errorf("motor %s: %w", d, err)
	}
	return nil
}
