package sqlite

import (
	"context"
	"embed"
	"fmt"
	"log/slog"

	"github.com/example/room-reservations/internal/persistence/sqlite/migration"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Store bundles the connection pool with the room and booking repositories.
type Store struct {
	pool     *ConnectionPool
	Rooms    *RoomRepository
	Bookings *BookingRepository
}

// Open opens the database at cfg.Path. Call Migrate before use.
func Open(ctx context.Context, cfg migration.SQLiteConfig) (*Store, error) {
	pool, err := NewConnectionPool(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Store{
		pool:     pool,
		Rooms:    NewRoomRepository(pool),
		Bookings: NewBookingRepository(pool),
	}, nil
}

// Migrate applies the embedded schema migrations.
func (s *Store) Migrate(ctx context.Context, logger *slog.Logger) error {
	manager := migration.NewManager(
		migration.NewFileScanner(migrationFiles, "migrations"),
		migration.NewSQLiteExecutor(s.pool.DB()),
		logger,
	)
	if err := manager.RunMigrations(ctx); err != nil {
		return fmt.Errorf("sqlite: migrate: %w", err)
	}
	return nil
}

// InTx runs fn in a single transaction shared by both repositories.
func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.pool.InTx(ctx, fn)
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the connection pool.
func (s *Store) Close() error {
	return s.pool.Close()
}
