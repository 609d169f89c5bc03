// Package linktest provides a scripted link.Channel for protocol tests.
//
// A Script plays back a fixed sequence of received bytes and records every
// byte sent. Once the script is exhausted, Receive blocks exactly like a real
// link whose peer has gone quiet, which lets tests observe the permanent
// stall caused by a lost byte.
package linktest

import (
	"sync"
	"time"

	"github.com/nerrad567/gray-logic-doorlock/internal/link"
	"github.com/nerrad567/gray-logic-doorlock/internal/passcode"
)

// Script is a link.Channel backed by a byte script.
//
// Thread Safety:
//   - Safe for use by the machine under test and the test goroutine at once.
type Script struct {
	mu      sync.Mutex
	rx      []byte
	sent    []byte
	closed  bool
	waiting int
	notify  chan struct{}
}

var _ link.Channel = (*Script)(nil)

// NewScript returns a Script that will deliver rx in order.
func NewScript(rx ...byte) *Script {
	return &Script{
		rx:     append([]byte(nil), rx...),
		notify: make(chan struct{}),
	}
}

// Feed appends bytes to the receive script and wakes a blocked Receive.
func (s *Script) Feed(rx ...byte) {
	s.mu.Lock()
	s.rx = append(s.rx, rx...)
	s.wakeLocked()
	s.mu.Unlock()
}

// Send records b. It never blocks.
func (s *Script) Send(b byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return link.ErrClosed
	}
	s.sent = append(s.sent, b)
	return nil
}

// Receive returns the next scripted byte, blocking while the script is empty.
func (s *Script) Receive() (byte, error) {
	s.mu.Lock()
	for {
		if s.closed {
			s.mu.Unlock()
			return 0, link.ErrClosed
		}
		if len(s.rx) > 0 {
			b := s.rx[0]
			s.rx = s.rx[1:]
			s.mu.Unlock()
			return b, nil
		}

		s.waiting++
		wake := s.notify
		s.mu.Unlock()
		<-wake
		s.mu.Lock()
		s.waiting--
	}
}

// Close unblocks any pending Receive with link.ErrClosed.
func (s *Script) Close() error {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		s.wakeLocked()
	}
	s.mu.Unlock()
	return nil
}

func (s *Script) wakeLocked() {
	close(s.notify)
	s.notify = make(chan struct{})
}

// Sent returns a copy of every byte sent so far.
func (s *Script) Sent() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]byte(nil), s.sent...)
}

// Remaining returns how many scripted bytes have not been consumed.
func (s *Script) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rx)
}

// Blocked reports whether a Receive is parked on an exhausted script.
func (s *Script) Blocked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.waiting > 0 && len(s.rx) == 0
}

// WaitBlocked polls until a Receive is parked on an exhausted script or the
// timeout elapses. It reports whether the block was observed.
func (s *Script) WaitBlocked(timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if s.Blocked() {
			return true
		}
		time.Sleep(time.Millisecond)
	}
	return s.Blocked()
}

// Digits returns the raw bytes of a passcode written as a string, for
// building scripts: Digits("12345") == []byte{1, 2, 3, 4, 5}.
func Digits(s string) []byte {
	return passcode.MustParse(s).Digits()
}

// Bytes concatenates byte fragments into one script.
func Bytes(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}
