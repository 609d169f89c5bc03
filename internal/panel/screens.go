package panel

// Display texts. Each line fits a 20-column LCD row.
const (
	textNewPass      = "Enter New Pass"
	textConfirmPass  = "Confirm Password"
	textPassMatch    = "Password Match"
	textPassSaved    = "Password Saved!"
	textPassUnmatch  = "Password Un-match"
	textTryAgain     = "Try again!"
	textMenuOpen     = "+: Open Door"
	textMenuChange   = "-: Change Password"
	textEnterPass    = "Enter The Password"
	textDoorOpening  = "Door is opening..."
	textDoorOpen     = "Door is open"
	textDoorLocking  = "Door is locking.."
	textWrongPass    = "Un-matched Password!"
	textTryAgainMore = "Try again..."
	textDanger       = "DANGER !"
	textAlertOn      = "ALERT ON!"
)

// maskChar is echoed for every accepted digit.
const maskChar = '*'
