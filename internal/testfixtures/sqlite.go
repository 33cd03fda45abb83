package testfixtures

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/example/room-reservations/internal/persistence/adapter"
	"github.com/example/room-reservations/internal/persistence/sqlite"
	"github.com/example/room-reservations/internal/persistence/sqlite/migration"
)

// SQLiteHarness provides a migrated temporary SQLite store together with the
// application-facing repository adapters.
type SQLiteHarness struct {
	Store    *sqlite.Store
	Rooms    *adapter.Rooms
	Bookings *adapter.Bookings

	cleanup func()
}

// Close releases resources associated with the harness.
func (h *SQLiteHarness) Close() {
	if h != nil && h.cleanup != nil {
		h.cleanup()
		h.cleanup = nil
	}
}

// NewSQLiteHarness opens and migrates a database in a temporary directory.
// Close is registered with tb.Cleanup.
func NewSQLiteHarness(tb testing.TB) *SQLiteHarness {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "reservations.db")
	ctx := context.Background()

	store, err := sqlite.Open(ctx, migration.TestSQLiteConfig(path))
	if err != nil {
		tb.Fatalf("failed to open storage: %v", err)
	}
	if err := store.Migrate(ctx, slog.New(slog.NewTextHandler(io.Discard, nil))); err != nil {
		_ = store.Close()
		tb.Fatalf("failed to migrate storage: %v", err)
	}

	harness := &SQLiteHarness{
		Store:    store,
		Rooms:    adapter.NewRooms(store.Rooms),
		Bookings: adapter.NewBookings(store.Bookings),
		cleanup: func() {
			_ = store.Close()
		},
	}

	tb.Cleanup(harness.Close)
	return harness
}

// SeedRooms stores the given rooms directly, bypassing the room service.
func (h *SQLiteHarness) SeedRooms(tb testing.TB, rooms ...RoomFixture) {
	tb.Helper()
	for _, room := range rooms {
		if err := h.Store.Rooms.CreateRoom(context.Background(), room.Persistence()); err != nil {
			tb.Fatalf("failed to seed room %s: %v", room.ID, err)
		}
	}
}
