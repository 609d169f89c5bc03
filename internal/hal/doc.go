// Package hal defines the peripheral interfaces the two nodes depend on and
// host-side implementations of them.
//
// The protocol code only sees these interfaces:
//
//   - PinWriter: GPIO level control (motor driver lines, buzzer line)
//   - Motor / Alarm: door actuator and intrusion buzzer built on PinWriter
//   - Keypad: blocking key reads for the panel
//   - Display: two-line text output for the panel
//
// Register-level drivers are not part of this repository. SimPins records and
// logs pin writes so the controller can run on a workstation; TerminalKeypad
// and TextDisplay turn a terminal into the panel's keypad and LCD.
package hal
