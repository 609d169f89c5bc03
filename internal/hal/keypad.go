package hal

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// Special key values. Digit keys are reported as their numeric value 0-9.
const (
	KeyEnter byte = 13
	KeyPlus  byte = '+'
	KeyMinus byte = '-'

	// KeyNone is reported for control bytes that are not a keypad key.
	KeyNone byte = 0xFF
)

// ctrlC is the byte a raw-mode terminal delivers for Ctrl+C.
const ctrlC = 0x03

// Keypad delivers key presses, blocking until one is available.
type Keypad interface {
	ReadKey() (byte, error)
}

// IsDigit reports whether key is a digit key value.
func IsDigit(key byte) bool {
	return key <= 9
}

// MapKey converts a terminal byte to a keypad key value. Only '0'-'9'
// produce digit values; other control bytes become KeyNone.
func MapKey(b byte) byte {
	switch {
	case b >= '0' && b <= '9':
		return b - '0'
	case b == '\r' || b == '\n':
		return KeyEnter
	case b < ' ':
		return KeyNone
	default:
		return b
	}
}

// TerminalKeypad reads keys from a terminal in raw mode, so single key
// presses arrive without waiting for a newline.
type TerminalKeypad struct {
	in    *os.File
	r     *bufio.Reader
	state *term.State
}

var _ Keypad = (*TerminalKeypad)(nil)

// NewTerminalKeypad puts in into raw mode when it is a terminal. For
// non-terminals (pipes, files) input is read unchanged.
func NewTerminalKeypad(in *os.File) (*TerminalKeypad, error) {
	k := &TerminalKeypad{in: in, r: bufio.NewReader(in)}

	fd := int(in.Fd()) //nolint:gosec // file descriptors fit in int
	if term.IsTerminal(fd) {
		state, err := term.MakeRaw(fd)
		if err != nil {
			return nil, fmt.Errorf("entering raw mode: %w", err)
		}
		k.state = state
	}
	return k, nil
}

// ReadKey implements Keypad.
func (k *TerminalKeypad) ReadKey() (byte, error) {
	b, err := k.r.ReadByte()
	if err != nil {
		if err == io.EOF {
			return 0, fmt.Errorf("%w: %w", ErrInterrupted, err)
		}
		return 0, fmt.Errorf("reading key: %w", err)
	}
	if b == ctrlC {
		return 0, ErrInterrupted
	}
	return MapKey(b), nil
}

// Close restores the terminal state.
func (k *TerminalKeypad) Close() error {
	if k.state == nil {
		return nil
	}
	if err := term.Restore(int(k.in.Fd()), k.state); err != nil { //nolint:gosec // file descriptors fit in int
		return fmt.Errorf("restoring terminal: %w", err)
	}
	k.state = nil
	return nil
}
