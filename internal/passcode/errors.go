package passcode

import "errors"

var (
	// ErrInvalidLength is returned when a passcode does not have exactly Length digits.
	ErrInvalidLength = errors.New("passcode: invalid length")

	// ErrInvalidDigit is returned when a passcode contains a value outside 0-9.
	ErrInvalidDigit = errors.New("passcode: invalid digit")
)
