// Package sequencer runs tick-gated phase timelines.
//
// A Sequencer is an ordered list of phases, each with a tick threshold and an
// entry action. It is stepped by an external driver: Step checks whether the
// current phase has lasted at least its threshold (a pure comparison against
// the node's tick count, using >=) and, if so, enters the next phase. At most
// one phase boundary is crossed per Step, so a large jump in the tick count
// can never skip a phase.
//
// Two timelines are provided:
//
//   - Door: opening (T_open) → open/hold (T_hold) → closing (T_close) → done
//   - Lockout: alarm (T_danger) → done
//
// The controller binds the hooks to the motor and buzzer; the panel binds
// them to display messages. Both nodes use their own tick source and are not
// synchronised beyond starting when the opcode is exchanged.
package sequencer
