package passcode

import (
	"fmt"
	"strings"
)

// Length is the number of digits in every passcode.
const Length = 5

// maxDigit is the largest value a single passcode digit may hold.
const maxDigit = 9

// Passcode is an ordered sequence of Length digit values.
//
// The zero value is the passcode 00000, which is a valid passcode; callers
// that need "no passcode yet" track that separately.
type Passcode [Length]byte

// Outcome is the result of comparing two passcodes.
type Outcome byte

// Outcome values double as the wire bytes sent after a setup exchange.
const (
	Unmatch Outcome = 0x00
	Match   Outcome = 0x01
)

// String returns "match" or "unmatch".
func (o Outcome) String() string {
	if o == Match {
		return "match"
	}
	return "unmatch"
}

// Compare returns Match when all digits of a and b are equal.
func Compare(a, b Passcode) Outcome {
	if a.Equal(b) {
		return Match
	}
	return Unmatch
}

// Equal reports whether p and other agree in every position.
//
// Every position is inspected regardless of earlier mismatches.
func (p Passcode) Equal(other Passcode) bool {
	var diff byte
	for i := range p {
		diff |= p[i] ^ other[i]
	}
	return diff == 0
}

// Valid reports whether every element is a digit value 0-9.
func (p Passcode) Valid() bool {
	for _, d := range p {
		if d > maxDigit {
			return false
		}
	}
	return true
}

// Digits returns the passcode as a byte slice suitable for transmission.
func (p Passcode) Digits() []byte {
	out := make([]byte, Length)
	copy(out, p[:])
	return out
}

// String renders the passcode masked, so it is safe to log.
func (p Passcode) String() string {
	return strings.Repeat("*", Length)
}

// Reveal renders the digits in clear text. Only tests and the setup prompt use it.
func (p Passcode) Reveal() string {
	var b strings.Builder
	for _, d := range p {
		b.WriteByte('0' + d)
	}
	return b.String()
}

// FromDigits builds a Passcode from raw digit values.
//
// Parameters:
//   - digits: exactly Length values, each 0-9
//
// Returns:
//   - Passcode: the assembled passcode
//   - error: ErrInvalidLength or ErrInvalidDigit
func FromDigits(digits []byte) (Passcode, error) {
	var p Passcode
	if len(digits) != Length {
		return p, fmt.Errorf("%w: got %d digits, want %d", ErrInvalidLength, len(digits), Length)
	}
	for i, d := range digits {
		if d > maxDigit {
			return Passcode{}, fmt.Errorf("%w: position %d holds %d", ErrInvalidDigit, i, d)
		}
		p[i] = d
	}
	return p, nil
}

// Parse converts a string of ASCII digits such as "12345" into a Passcode.
func Parse(s string) (Passcode, error) {
	if len(s) != Length {
		return Passcode{}, fmt.Errorf("%w: %q has %d characters, want %d", ErrInvalidLength, s, len(s), Length)
	}
	digits := make([]byte, Length)
	for i := 0; i < Length; i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return Passcode{}, fmt.Errorf("%w: %q at position %d", ErrInvalidDigit, c, i)
		}
		digits[i] = c - '0'
	}
	return FromDigits(digits)
}

// MustParse is like Parse but panics on error. Intended for tests and constants.
func MustParse(s string) Passcode {
	p, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return p
}
