package controller

import "fmt"

// Mode is the back-end system mode. Exactly one is active at any time.
type Mode int32

const (
	AwaitingLink Mode = iota
	SettingCredential
	Idle
	VerifyingForOpen
	VerifyingForChange
	RunningDoorSequence
	RunningLockout
)

var modeNames = map[Mode]string{
	AwaitingLink:        "awaiting_link",
	SettingCredential:   "setting_credential",
	Idle:                "idle",
	VerifyingForOpen:    "verifying_for_open",
	VerifyingForChange:  "verifying_for_change",
	RunningDoorSequence: "running_door_sequence",
	RunningLockout:      "running_lockout",
}

// String returns the snake_case mode name used in logs and events.
func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("mode(%d)", int32(m))
}

// MarshalText encodes the mode by name.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}
