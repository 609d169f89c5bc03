package hal

import "errors"

var (
	// ErrInterrupted is returned by a keypad when the operator aborts input (Ctrl+C).
	ErrInterrupted = errors.New("hal: input interrupted")

	// ErrInvalidPin is returned when a pin number is negative or lines collide.
	ErrInvalidPin = errors.New("hal: invalid pin")

	// ErrInvalidDirection is returned for an unknown motor direction.
	ErrInvalidDirection = errors.New("hal: invalid motor direction")
)
