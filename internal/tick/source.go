package tick

import "sync/atomic"

// Source is a monotonically incrementing tick counter.
//
// The zero value is ready to use and starts at 0.
//
// Thread Safety:
//   - Tick and Now may be called concurrently; both are atomic.
//   - Only one goroutine (the timer) is expected to call Tick.
type Source struct {
	ticks atomic.Uint32
}

// Tick advances the counter by one. It never blocks.
func (s *Source) Tick() {
	s.ticks.Add(1)
}

// Now returns the current tick count.
func (s *Source) Now() uint32 {
	return s.ticks.Load()
}

// Since returns the ticks elapsed since mark, handling counter wrap-around.
func (s *Source) Since(mark uint32) uint32 {
	return s.Now() - mark
}
