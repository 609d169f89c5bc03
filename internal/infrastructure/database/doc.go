// Package database provides the SQLite handle that backs the credential
// store and the audit trail.
//
// This package manages:
//   - Connection setup with WAL mode and a busy timeout
//   - Schema migrations read from a registered filesystem
//   - Lifecycle and health checks
//
// Security Considerations:
//   - All queries use parameterised statements
//   - Database file permissions are set to 0600 (owner read/write only)
//   - The credential row holds raw digits; protect the file accordingly
//
// Usage:
//
//	import _ "github.com/nerrad567/gray-logic-doorlock/migrations"
//
//	db, err := database.Open(database.Config{Path: cfg.Database.Path, WALMode: true})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    return err
//	}
//
// Migration files are named YYYYMMDD_HHMMSS_description.up.sql with a
// matching .down.sql. Migrations are additive; new columns must be
// NULLABLE or have DEFAULT values.
package database
