package journal

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/nerrad567/mqtt-tickbridge/internal/infrastructure/config"
	"github.com/nerrad567/mqtt-tickbridge/internal/infrastructure/database"
	"github.com/nerrad567/mqtt-tickbridge/migrations"
)

func newSQLiteRepository(t *testing.T) *SQLiteRepository {
	t.Helper()
	db, err := database.Open(config.JournalConfig{
		Path:        filepath.Join(t.TempDir(), "journal.db"),
		WALMode:     true,
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() }) //nolint:errcheck // Test cleanup

	if _, err := db.Migrate(context.Background(), migrations.FS); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	return NewSQLiteRepository(db.DB)
}

func TestSQLiteRepository_InsertAndRecent(t *testing.T) {
	repo := newSQLiteRepository(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 123456789, time.UTC)
	var entries []Entry
	for i := 0; i < 5; i++ {
		entries = append(entries, Entry{
			Topic:       fmt.Sprintf("t%d", i),
			Payload:     fmt.Sprintf("p%d", i),
			ReceivedAt:  base.Add(time.Duration(i) * time.Millisecond),
			DeliveredAt: base.Add(time.Duration(i) * time.Second),
		})
	}
	if err := repo.Insert(ctx, entries); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	got, err := repo.Recent(ctx, 3)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("Recent(3) returned %d entries", len(got))
	}
	for i, want := range []string{"t4", "t3", "t2"} {
		if got[i].Topic != want {
			t.Errorf("Recent()[%d].Topic = %q, want %q", i, got[i].Topic, want)
		}
	}
	if !got[0].ReceivedAt.Equal(entries[4].ReceivedAt) {
		t.Errorf("ReceivedAt = %v, want %v", got[0].ReceivedAt, entries[4].ReceivedAt)
	}
	if !got[0].DeliveredAt.Equal(entries[4].DeliveredAt) {
		t.Errorf("DeliveredAt = %v, want %v", got[0].DeliveredAt, entries[4].DeliveredAt)
	}
	if got[0].ID <= got[1].ID {
		t.Errorf("IDs not descending: %d, %d", got[0].ID, got[1].ID)
	}
}

func TestSQLiteRepository_InsertEmpty(t *testing.T) {
	repo := newSQLiteRepository(t)
	if err := repo.Insert(context.Background(), nil); err != nil {
		t.Errorf("Insert(nil) error = %v", err)
	}
}

func TestSQLiteRepository_EmptyAndUnicodePayload(t *testing.T) {
	repo := newSQLiteRepository(t)
	ctx := context.Background()
	now := time.Now()

	if err := repo.Insert(ctx, []Entry{
		{Topic: "a", Payload: "", ReceivedAt: now, DeliveredAt: now},
		{Topic: "b", Payload: "température ✓", ReceivedAt: now, DeliveredAt: now},
	}); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	got, err := repo.Recent(ctx, 0)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(got) != 2 || got[0].Payload != "température ✓" || got[1].Payload != "" {
		t.Errorf("Recent() = %+v", got)
	}
}

func TestClampLimit(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{in: 0, want: DefaultLimit},
		{in: -5, want: DefaultLimit},
		{in: 10, want: 10},
		{in: MaxLimit, want: MaxLimit},
		{in: MaxLimit + 1, want: MaxLimit},
	}
	for _, tt := range tests {
		if got := clampLimit(tt.in); got != tt.want {
			t.Errorf("clampLimit(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
