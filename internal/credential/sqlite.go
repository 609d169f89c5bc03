package credential

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/nerrad567/gray-logic-doorlock/internal/passcode"
)

// SQLiteStore keeps the record in the credential_records table, keyed by
// its store address so a single database can hold several slots.
type SQLiteStore struct {
	db      *sql.DB
	address int
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates a store for the record at address.
// The credential_records table must exist (see migrations).
func NewSQLiteStore(db *sql.DB, address int) *SQLiteStore {
	return &SQLiteStore{db: db, address: address}
}

// Address returns the store address this record lives at.
func (s *SQLiteStore) Address() int {
	return s.address
}

// Load implements Store.
func (s *SQLiteStore) Load(ctx context.Context) (passcode.Passcode, error) {
	var record []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT record FROM credential_records WHERE address = ?",
		s.address,
	).Scan(&record)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return passcode.Passcode{}, ErrNoCredential
		}
		return passcode.Passcode{}, fmt.Errorf("querying credential record: %w", err)
	}

	p, err := passcode.FromDigits(record)
	if err != nil {
		return passcode.Passcode{}, fmt.Errorf("%w at address %d: %w", ErrInvalidRecord, s.address, err)
	}
	return p, nil
}

// Save implements Store. The record is replaced in place.
func (s *SQLiteStore) Save(ctx context.Context, p passcode.Passcode) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO credential_records (address, record, updated_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT(address) DO UPDATE SET
		     record = excluded.record,
		     updated_at = excluded.updated_at`,
		s.address, p.Digits(), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("saving credential record: %w", err)
	}
	return nil
}
