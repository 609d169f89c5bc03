package credential

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/nerrad567/gray-logic-doorlock/internal/passcode"
)

// Credentials is the authoritative passcode: a persistent Store plus the
// in-memory mirror used for verification.
//
// Thread Safety:
//   - All methods are safe for concurrent use. The protocol itself only
//     calls them from the controller goroutine.
type Credentials struct {
	mu          sync.RWMutex
	store       Store
	mirror      passcode.Passcode
	provisioned bool
}

// New creates Credentials backed by store. Nothing is provisioned until
// Load finds a record or Setup succeeds.
func New(store Store) *Credentials {
	return &Credentials{store: store}
}

// Load copies a previously stored passcode into the mirror.
// An empty store is not an error; the credentials stay unprovisioned.
func (c *Credentials) Load(ctx context.Context) error {
	p, err := c.store.Load(ctx)
	if errors.Is(err, ErrNoCredential) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading credential: %w", err)
	}

	c.mu.Lock()
	c.mirror = p
	c.provisioned = true
	c.mu.Unlock()
	return nil
}

// Setup compares candidate and confirmation and, when every digit agrees,
// makes candidate the authoritative passcode.
//
// The store is written before the mirror. If the write fails the mirror is
// left untouched and Unmatch is returned along with the error, so the caller
// can report a failed setup to the peer.
//
// A candidate holding a value outside 0-9 never matches.
//
// Returns:
//   - passcode.Outcome: Match when the passcode was stored
//   - error: store write failure (outcome is then Unmatch)
func (c *Credentials) Setup(ctx context.Context, candidate, confirmation passcode.Passcode) (passcode.Outcome, error) {
	if passcode.Compare(candidate, confirmation) != passcode.Match || !candidate.Valid() {
		return passcode.Unmatch, nil
	}

	if err := c.store.Save(ctx, candidate); err != nil {
		return passcode.Unmatch, fmt.Errorf("persisting credential: %w", err)
	}

	c.mu.Lock()
	c.mirror = candidate
	c.provisioned = true
	c.mu.Unlock()
	return passcode.Match, nil
}

// Verify compares candidate with the authoritative passcode. It never
// changes state and returns Unmatch until a passcode has been provisioned.
func (c *Credentials) Verify(candidate passcode.Passcode) passcode.Outcome {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.provisioned {
		return passcode.Unmatch
	}
	return passcode.Compare(candidate, c.mirror)
}

// Provisioned reports whether an authoritative passcode exists.
func (c *Credentials) Provisioned() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.provisioned
}
