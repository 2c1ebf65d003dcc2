package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

const (
	// DefaultLimit is used by Recent when limit is not positive.
	DefaultLimit = 50

	// MaxLimit caps the number of entries Recent returns.
	MaxLimit = 200
)

// timestampLayout keeps sub-second precision and sorts lexically.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Repository persists journal entries.
type Repository interface {
	// Insert stores entries atomically.
	Insert(ctx context.Context, entries []Entry) error

	// Recent returns up to limit entries, newest first.
	Recent(ctx context.Context, limit int) ([]Entry, error)
}

// SQLiteRepository implements Repository on the message_journal table.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a repository over an open, migrated database.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Insert writes entries in a single transaction.
func (r *SQLiteRepository) Insert(ctx context.Context, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // Rollback is no-op after commit

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO message_journal (topic, payload, received_at, delivered_at) VALUES (?, ?, ?, ?)",
	)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		if _, err := stmt.ExecContext(ctx,
			e.Topic,
			e.Payload,
			formatTimestamp(e.ReceivedAt),
			formatTimestamp(e.DeliveredAt),
		); err != nil {
			return fmt.Errorf("inserting journal entry: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing journal batch: %w", err)
	}
	return nil
}

// Recent returns the newest entries first.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - limit: Maximum entries to return (default 50, max 200)
func (r *SQLiteRepository) Recent(ctx context.Context, limit int) ([]Entry, error) {
	limit = clampLimit(limit)

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, topic, payload, received_at, delivered_at
		 FROM message_journal
		 ORDER BY id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying journal: %w", err)
	}
	defer rows.Close()

	entries := make([]Entry, 0, limit)
	for rows.Next() {
		var e Entry
		var receivedAt, deliveredAt string
		if err := rows.Scan(&e.ID, &e.Topic, &e.Payload, &receivedAt, &deliveredAt); err != nil {
			return nil, fmt.Errorf("scanning journal entry: %w", err)
		}
		if e.ReceivedAt, err = parseTimestamp(receivedAt); err != nil {
			return nil, err
		}
		if e.DeliveredAt, err = parseTimestamp(deliveredAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating journal: %w", err)
	}
	return entries, nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

func parseTimestamp(value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing journal timestamp %q: %w", value, err)
	}
	return t, nil
}
