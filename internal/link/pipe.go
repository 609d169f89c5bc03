package link

import "sync"

// pipeSlot is the capacity of each direction: one byte in flight, like a
// UART receive register.
const pipeSlot = 1

// PipeEnd is one side of an in-process link created by Pipe.
type PipeEnd struct {
	rx <-chan byte
	tx chan<- byte

	done      chan struct{}
	closeOnce *sync.Once
}

var _ Channel = (*PipeEnd)(nil)

// Pipe returns two connected channel ends. Bytes sent on one are received on
// the other. Closing either end closes both.
func Pipe() (*PipeEnd, *PipeEnd) {
	ab := make(chan byte, pipeSlot)
	ba := make(chan byte, pipeSlot)
	done := make(chan struct{})
	once := &sync.Once{}

	a := &PipeEnd{rx: ba, tx: ab, done: done, closeOnce: once}
	b := &PipeEnd{rx: ab, tx: ba, done: done, closeOnce: once}
	return a, b
}

// Send blocks until the peer's receive slot is free.
func (p *PipeEnd) Send(b byte) error {
	select {
	case <-p.done:
		return ErrClosed
	default:
	}
	select {
	case p.tx <- b:
		return nil
	case <-p.done:
		return ErrClosed
	}
}

// Receive blocks until a byte is available.
func (p *PipeEnd) Receive() (byte, error) {
	select {
	case <-p.done:
		return 0, ErrClosed
	default:
	}
	select {
	case b := <-p.rx:
		return b, nil
	case <-p.done:
		return 0, ErrClosed
	}
}

// Close closes both ends of the pipe.
func (p *PipeEnd) Close() error {
	p.closeOnce.Do(func() { close(p.done) })
	return nil
}
