package link

import "errors"

var (
	// ErrClosed is returned by Send and Receive once the channel has been closed.
	ErrClosed = errors.New("link: channel closed")

	// ErrOpenFailed is returned when a transport cannot be opened.
	ErrOpenFailed = errors.New("link: open failed")

	// ErrShortWrite is returned when the transport accepted no byte.
	ErrShortWrite = errors.New("link: short write")
)
