package link

import "fmt"

// Control bytes exchanged between the nodes. The values are fixed by the
// deployed firmware and must not change.
const (
	// Ready precedes every multi-byte block and marks the start of a request.
	Ready byte = 0x10

	// OpenDoorOption is sent after a candidate to request the door-open flow.
	OpenDoorOption byte = '+'

	// ChangePasswordOption is sent after a candidate to request re-keying.
	ChangePasswordOption byte = '-'

	// PasswordMatch and PasswordUnmatch carry a comparison outcome.
	PasswordMatch   byte = 0x01
	PasswordUnmatch byte = 0x00

	// OpeningDoorAction authorises the door-open flow.
	OpeningDoorAction byte = 0x88

	// ChangingPasswordAction authorises re-keying.
	ChangingPasswordAction byte = 0x44

	// Danger signals that the lockout alarm has been triggered.
	Danger byte = 0x33
)

// OpcodeName returns a readable name for a control byte, for logs.
// Bytes that are not control bytes are rendered in hex.
func OpcodeName(b byte) string {
	switch b {
	case Ready:
		return "READY"
	case OpenDoorOption:
		return "OPEN_DOOR_OPTION"
	case ChangePasswordOption:
		return "CHANGE_PASSWORD_OPTION"
	case OpeningDoorAction:
		return "OPENING_DOOR_ACTION"
	case ChangingPasswordAction:
		return "CHANGING_PASSWORD_ACTION"
	case Danger:
		return "DANGER"
	default:
		return fmt.Sprintf("0x%02x", b)
	}
}
