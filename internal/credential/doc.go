// Package credential holds the authoritative passcode of the back-end node.
//
// Credentials keeps a fast in-memory mirror of the passcode in front of a
// persistent Store. Setup writes the store first and the mirror second;
// Verify only ever reads the mirror.
//
// Two stores are provided:
//   - SQLiteStore: one row in credential_records per store address
//   - MemoryStore: volatile, for tests and bench runs without a database
//
// Usage:
//
//	store := credential.NewSQLiteStore(db.DB, cfg.Credential.Address)
//	creds := credential.New(store)
//	if err := creds.Load(ctx); err != nil {
//	    return err
//	}
//	outcome, err := creds.Setup(ctx, candidate, confirmation)
package credential
