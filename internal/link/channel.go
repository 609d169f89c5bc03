package link

import (
	"fmt"

	"github.com/nerrad567/gray-logic-doorlock/internal/passcode"
)

// Channel is a half-duplex byte transport between the two nodes.
//
// Implementations must block in Send until the byte is accepted and in
// Receive until a byte is available. Close unblocks both with ErrClosed.
type Channel interface {
	Send(b byte) error
	Receive() (byte, error)
	Close() error
}

// AwaitReady discards bytes until a Ready token arrives.
//
// Returns:
//   - int: number of non-Ready bytes discarded on the way
//   - error: transport failure or ErrClosed
func AwaitReady(ch Channel) (int, error) {
	discarded := 0
	for {
		b, err := ch.Receive()
		if err != nil {
			return discarded, err
		}
		if b == Ready {
			return discarded, nil
		}
		discarded++
	}
}

// Handshake sends Ready and waits for the peer to answer with Ready.
// The initiator of a block transfer calls this before sending the block.
func Handshake(ch Channel) error {
	if err := ch.Send(Ready); err != nil {
		return fmt.Errorf("sending ready: %w", err)
	}
	if _, err := AwaitReady(ch); err != nil {
		return fmt.Errorf("awaiting ready: %w", err)
	}
	return nil
}

// SendPasscode transmits the digits of p one byte at a time.
func SendPasscode(ch Channel, p passcode.Passcode) error {
	for i, d := range p {
		if err := ch.Send(d); err != nil {
			return fmt.Errorf("sending digit %d: %w", i, err)
		}
	}
	return nil
}

// ReceivePasscode reads passcode.Length raw bytes.
//
// Bytes are stored as received; a value outside 0-9 is not rejected here and
// simply never matches a stored passcode.
func ReceivePasscode(ch Channel) (passcode.Passcode, error) {
	var p passcode.Passcode
	for i := range p {
		b, err := ch.Receive()
		if err != nil {
			return passcode.Passcode{}, fmt.Errorf("receiving digit %d: %w", i, err)
		}
		p[i] = b
	}
	return p, nil
}
