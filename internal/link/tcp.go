package link

import (
	"context"
	"fmt"
	"net"
)

// Listen waits for exactly one peer to connect on address and returns the
// connection as a Stream. The listener is closed once the peer is accepted.
//
// The controller listens; the panel dials.
func Listen(ctx context.Context, address string) (*Stream, error) {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", address)
	if err != nil {
		return nil, fmt.Errorf("%w: listen %s: %w", ErrOpenFailed, address, err)
	}
	defer ln.Close() //nolint:errcheck // single-accept listener

	// Unblock Accept when ctx ends.
	stop := context.AfterFunc(ctx, func() { ln.Close() }) //nolint:errcheck // best effort
	defer stop()

	conn, err := ln.Accept()
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: accept: %w", ErrOpenFailed, ctx.Err())
		}
		return nil, fmt.Errorf("%w: accept: %w", ErrOpenFailed, err)
	}
	return NewStream(conn), nil
}

// Dial connects to a listening peer at address.
func Dial(ctx context.Context, address string) (*Stream, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, fmt.Errorf("%w: dial %s: %w", ErrOpenFailed, address, err)
	}
	return NewStream(conn), nil
}
