package database

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"
)

// Migration is one versioned schema change.
//
// Files are named YYYYMMDD_HHMMSS_description.up.sql with an optional
// matching .down.sql.
type Migration struct {
	Version string
	Name    string
	UpSQL   string
	DownSQL string
}

// MigrationRecord represents a row in the schema_migrations table.
type MigrationRecord struct {
	Version   string
	AppliedAt time.Time
}

// ErrNoDownMigration is returned by MigrateDown when the latest applied
// migration has no .down.sql file.
var ErrNoDownMigration = errors.New("database: migration has no down SQL")

// Migrate applies every migration in src that is not yet recorded in
// schema_migrations, oldest first, each in its own transaction.
// A failed migration is rolled back and later ones are not attempted.
//
// Returns:
//   - int: Number of migrations applied
//   - error: If loading or applying fails
func (db *DB) Migrate(ctx context.Context, src fs.FS) (int, error) {
	if err := db.createMigrationsTable(ctx); err != nil {
		return 0, fmt.Errorf("creating migrations table: %w", err)
	}

	_, pending, err := db.MigrationStatus(ctx, src)
	if err != nil {
		return 0, err
	}

	for i, m := range pending {
		if err := db.applyMigration(ctx, m); err != nil {
			return i, fmt.Errorf("applying migration %s (%s): %w", m.Version, m.Name, err)
		}
	}
	return len(pending), nil
}

// MigrateDown rolls back the most recently applied migration.
// It does nothing when no migration has been applied.
func (db *DB) MigrateDown(ctx context.Context, src fs.FS) error {
	applied, err := db.appliedMigrations(ctx)
	if err != nil {
		return err
	}
	if len(applied) == 0 {
		return nil
	}
	latest := applied[len(applied)-1].Version

	migrations, err := loadMigrations(src)
	if err != nil {
		return err
	}
	idx := sort.Search(len(migrations), func(i int) bool { return migrations[i].Version >= latest })
	if idx == len(migrations) || migrations[idx].Version != latest {
		return fmt.Errorf("migration %s not found in source", latest)
	}
	m := migrations[idx]
	if m.DownSQL == "" {
		return fmt.Errorf("%w: %s", ErrNoDownMigration, m.Version)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // Rollback is no-op after commit

	if _, err := tx.ExecContext(ctx, m.DownSQL); err != nil {
		return fmt.Errorf("executing down SQL: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM schema_migrations WHERE version = ?", m.Version); err != nil {
		return fmt.Errorf("removing migration record: %w", err)
	}
	return tx.Commit()
}

// MigrationStatus returns applied records and the migrations in src still pending.
func (db *DB) MigrationStatus(ctx context.Context, src fs.FS) (applied []MigrationRecord, pending []Migration, err error) {
	if err := db.createMigrationsTable(ctx); err != nil {
		return nil, nil, fmt.Errorf("creating migrations table: %w", err)
	}

	applied, err = db.appliedMigrations(ctx)
	if err != nil {
		return nil, nil, err
	}
	migrations, err := loadMigrations(src)
	if err != nil {
		return nil, nil, err
	}

	done := make(map[string]bool, len(applied))
	for _, r := range applied {
		done[r.Version] = true
	}
	for _, m := range migrations {
		if !done[m.Version] {
			pending = append(pending, m)
		}
	}
	return applied, pending, nil
}

func (db *DB) createMigrationsTable(ctx context.Context) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at TEXT NOT NULL
		)
	`)
	return err
}

func (db *DB) appliedMigrations(ctx context.Context) ([]MigrationRecord, error) {
	rows, err := db.QueryContext(ctx, "SELECT version, applied_at FROM schema_migrations ORDER BY version")
	if err != nil {
		return nil, fmt.Errorf("querying migrations: %w", err)
	}
	defer rows.Close()

	var records []MigrationRecord
	for rows.Next() {
		var r MigrationRecord
		var appliedAt string
		if err := rows.Scan(&r.Version, &appliedAt); err != nil {
			return nil, fmt.Errorf("scanning migration row: %w", err)
		}
		r.AppliedAt, _ = time.Parse(time.RFC3339, appliedAt) //nolint:errcheck // Format is controlled
		records = append(records, r)
	}
	return records, rows.Err()
}

func (db *DB) applyMigration(ctx context.Context, m Migration) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // Rollback is no-op after commit

	if _, err := tx.ExecContext(ctx, m.UpSQL); err != nil {
		return fmt.Errorf("executing SQL: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)",
		m.Version,
		time.Now().UTC().Format(time.RFC3339),
	); err != nil {
		return fmt.Errorf("recording migration: %w", err)
	}
	return tx.Commit()
}

// loadMigrations reads *.sql files at the root of src, sorted by version.
// An up file is required for each version; a down file is optional.
func loadMigrations(src fs.FS) ([]Migration, error) {
	if src == nil {
		return nil, nil
	}

	names, err := fs.Glob(src, "*.sql")
	if err != nil {
		return nil, fmt.Errorf("listing migrations: %w", err)
	}

	byVersion := make(map[string]*Migration)
	for _, name := range names {
		version, desc, isUp, ok := parseMigrationFilename(name)
		if !ok {
			continue
		}
		body, err := fs.ReadFile(src, name)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", name, err)
		}

		m := byVersion[version]
		if m == nil {
			m = &Migration{Version: version}
			byVersion[version] = m
		}
		if isUp {
			m.Name = desc
			m.UpSQL = string(body)
		} else {
			m.DownSQL = string(body)
		}
	}

	migrations := make([]Migration, 0, len(byVersion))
	for _, m := range byVersion {
		if m.UpSQL == "" {
			return nil, fmt.Errorf("migration %s has a down file but no up file", m.Version)
		}
		migrations = append(migrations, *m)
	}
	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})
	return migrations, nil
}

// parseMigrationFilename splits "20260101_000000_message_journal.up.sql"
// into version "20260101_000000", description "message_journal" and direction.
func parseMigrationFilename(name string) (version, desc string, isUp, ok bool) {
	base := strings.TrimSuffix(path.Base(name), ".sql")
	switch {
	case strings.HasSuffix(base, ".up"):
		isUp = true
		base = strings.TrimSuffix(base, ".up")
	case strings.HasSuffix(base, ".down"):
		base = strings.TrimSuffix(base, ".down")
	default:
		return "", "", false, false
	}

	parts := strings.SplitN(base, "_", 3)
	if len(parts) < 2 || len(parts[0]) != 8 || len(parts[1]) != 6 {
		return "", "", false, false
	}
	if len(parts) == 3 {
		desc = parts[2]
	}
	return parts[0] + "_" + parts[1], desc, isUp, true
}
