package credential

import (
	"context"
	"sync"

	"github.com/nerrad567/gray-logic-doorlock/internal/passcode"
)

// Store persists the authoritative passcode as a single record.
type Store interface {
	// Load returns the stored passcode, or ErrNoCredential.
	Load(ctx context.Context) (passcode.Passcode, error)
	// Save overwrites the stored passcode.
	Save(ctx context.Context, p passcode.Passcode) error
}

// MemoryStore is a Store that lives only as long as the process.
type MemoryStore struct {
	mu     sync.Mutex
	record passcode.Passcode
	saved  bool
	writes int
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load implements Store.
func (s *MemoryStore) Load(_ context.Context) (passcode.Passcode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.saved {
		return passcode.Passcode{}, ErrNoCredential
	}
	return s.record, nil
}

// Save implements Store.
func (s *MemoryStore) Save(_ context.Context, p passcode.Passcode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record = p
	s.saved = true
	s.writes++
	return nil
}

// Writes returns how many times Save has been called.
func (s *MemoryStore) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}
