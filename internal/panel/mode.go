package panel

import "fmt"

// Mode is the front-end system mode.
type Mode int32

const (
	SettingCredential Mode = iota
	ShowingMenu
	CollectingInput
	DisplayingDoorSequence
	DisplayingMismatch
	DisplayingLockout
)

var modeNames = map[Mode]string{
	SettingCredential:      "setting_credential",
	ShowingMenu:            "showing_menu",
	CollectingInput:        "collecting_input",
	DisplayingDoorSequence: "displaying_door_sequence",
	DisplayingMismatch:     "displaying_mismatch",
	DisplayingLockout:      "displaying_lockout",
}

func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("mode(%d)", int32(m))
}
