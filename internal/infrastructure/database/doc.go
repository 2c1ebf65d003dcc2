// Package database provides SQLite connectivity for the Tickbridge message journal.
//
// This package manages:
//   - Database connection with optional WAL mode
//   - Versioned schema migrations read from an fs.FS
//   - Single-writer connection pooling
//
// Security Considerations:
//   - All queries use parameterised statements
//   - Database file permissions are set to 0600 (owner read/write only)
//
// Usage:
//
//	db, err := database.Open(cfg.Journal)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	if _, err := db.Migrate(ctx, migrations.FS); err != nil {
//	    log.Fatal(err)
//	}
package database
