package hal

import (
	"fmt"
	"sync"
)

// PinWriter drives GPIO output lines.
type PinWriter interface {
	WritePin(pin int, high bool) error
}

// Logger is the logging interface used by simulated peripherals.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
}

// PinWrite is one recorded level change.
type PinWrite struct {
	Pin  int
	High bool
}

// SimPins is an in-memory pin bank that records every write.
//
// Thread Safety:
//   - All methods are safe for concurrent use.
type SimPins struct {
	mu     sync.Mutex
	levels map[int]bool
	writes []PinWrite
	logger Logger
}

// NewSimPins creates an empty pin bank with every line low.
func NewSimPins() *SimPins {
	return &SimPins{levels: make(map[int]bool)}
}

// SetLogger enables debug logging of every pin write.
func (p *SimPins) SetLogger(logger Logger) {
	p.mu.Lock()
	p.logger = logger
	p.mu.Unlock()
}

// WritePin implements PinWriter.
func (p *SimPins) WritePin(pin int, high bool) error {
	if pin < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidPin, pin)
	}
	p.mu.Lock()
	p.levels[pin] = high
	p.writes = append(p.writes, PinWrite{Pin: pin, High: high})
	logger := p.logger
	p.mu.Unlock()

	if logger != nil {
		logger.Debug("pin write", "pin", pin, "high", high)
	}
	return nil
}

// Level returns the current level of pin (low if never written).
func (p *SimPins) Level(pin int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.levels[pin]
}

// Writes returns a copy of the write history.
func (p *SimPins) Writes() []PinWrite {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]PinWrite(nil), p.writes...)
}

// Reset clears the write history but keeps current levels.
func (p *SimPins) Reset() {
	p.mu.Lock()
	p.writes = nil
	p.mu.Unlock()
}
