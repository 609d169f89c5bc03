package credential

import "errors"

var (
	// ErrNoCredential is returned by a Store when no record has been saved.
	ErrNoCredential = errors.New("credential: no record stored")

	// ErrInvalidRecord is returned when a stored record is not a valid passcode.
	ErrInvalidRecord = errors.New("credential: invalid stored record")
)
