// Package panel implements the front-end node: the keypad and display state
// machine that collects passcodes and talks to the controller.
//
// The panel is the initiator of every exchange. It runs the setup protocol
// at boot and whenever the controller authorises a password change, and
// otherwise loops on a two-option menu:
//
//	+  open the door
//	-  change the password
//
// Each request sends READY, the five digits and the option byte, then waits
// for exactly one reply. Door and lockout replies are mirrored on the display
// with the same timelines the controller uses, measured on the panel's own
// tick source. The two clocks are not synchronised.
package panel
