// Package tick provides the node-local free-running tick counter.
//
// Each node owns exactly one Source. The Timer goroutine plays the role of the
// periodic hardware timer interrupt: its only action is Source.Tick. All other
// code is a reader and observes the counter through Now.
//
// # Single writer
//
// Tick is the only mutating method. Timed phases never reset the counter;
// they capture a baseline with Now and measure Since(baseline), which is
// wrap-safe unsigned arithmetic. This keeps the interrupt handler the sole
// writer.
//
// # Usage
//
//	var src tick.Source
//	timer := tick.NewTimer(&src, 8389*time.Microsecond)
//	timer.Start(ctx)
//	defer timer.Stop()
//
//	mark := src.Now()
//	for src.Since(mark) < 1788 {
//	    // busy-poll
//	}
package tick
