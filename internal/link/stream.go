package link

import (
	"errors"
	"fmt"
	"io"
	"sync/atomic"
)

// Stream adapts an io.ReadWriteCloser (serial port, TCP connection) to Channel.
type Stream struct {
	rwc    io.ReadWriteCloser
	closed atomic.Bool
	rx     [1]byte
	tx     [1]byte
}

var _ Channel = (*Stream)(nil)

// NewStream wraps rwc. The Stream takes ownership and closes rwc on Close.
func NewStream(rwc io.ReadWriteCloser) *Stream {
	return &Stream{rwc: rwc}
}

// Send writes one byte, retrying while the transport accepts nothing.
func (s *Stream) Send(b byte) error {
	if s.closed.Load() {
		return ErrClosed
	}
	s.tx[0] = b
	for attempts := 0; ; attempts++ {
		n, err := s.rwc.Write(s.tx[:])
		if err != nil {
			return s.mapErr(err)
		}
		if n == 1 {
			return nil
		}
		if attempts > maxZeroWrites {
			return ErrShortWrite
		}
	}
}

// maxZeroWrites bounds how often a transport may report a zero-length write
// without an error before Send gives up.
const maxZeroWrites = 100

// Receive reads exactly one byte. Transports that return (0, nil) on an
// internal read timeout are polled again, so the call blocks until data.
func (s *Stream) Receive() (byte, error) {
	if s.closed.Load() {
		return 0, ErrClosed
	}
	for {
		n, err := s.rwc.Read(s.rx[:])
		if n == 1 {
			return s.rx[0], nil
		}
		if err != nil {
			return 0, s.mapErr(err)
		}
	}
}

// Close closes the underlying transport, unblocking a pending Receive.
func (s *Stream) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	if err := s.rwc.Close(); err != nil {
		return fmt.Errorf("closing link: %w", err)
	}
	return nil
}

func (s *Stream) mapErr(err error) error {
	if s.closed.Load() {
		return ErrClosed
	}
	if errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: peer closed: %w", ErrClosed, err)
	}
	return fmt.Errorf("link io: %w", err)
}
