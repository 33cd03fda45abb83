package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/example/room-reservations/internal/persistence"
)

// RoomRepository implements persistence.RoomRepository using SQLite.
type RoomRepository struct {
	helper *QueryHelper
}

// NewRoomRepository creates a new SQLite room repository.
func NewRoomRepository(pool *ConnectionPool) *RoomRepository {
	return &RoomRepository{helper: NewQueryHelper(pool)}
}

// CreateRoom inserts a new room.
func (r *RoomRepository) CreateRoom(ctx context.Context, room persistence.Room) error {
	if room.ID == "" {
		return persistence.ErrConstraintViolation
	}
	if room.CreatedAt.IsZero() {
		room.CreatedAt = time.Now()
	}

	const query = `
		INSERT INTO rooms (id, name, available, created_at)
		VALUES (?, ?, ?, ?)
	`
	_, err := r.helper.Exec(ctx, query,
		room.ID,
		room.Name,
		boolToInt(room.Available),
		formatTimestamp(room.CreatedAt),
	)
	return MapError(err)
}

// GetRoom retrieves a room by ID.
func (r *RoomRepository) GetRoom(ctx context.Context, id string) (persistence.Room, error) {
	if id == "" {
		return persistence.Room{}, persistence.ErrNotFound
	}

	const query = `
		SELECT id, name, available, created_at
		FROM rooms
		WHERE id = ?
	`
	room, err := scanRoom(r.helper.QueryRow(ctx, query, id))
	if err != nil {
		return persistence.Room{}, MapError(err)
	}
	return room, nil
}

// ListRooms returns all rooms ordered by creation time, then name.
func (r *RoomRepository) ListRooms(ctx context.Context) ([]persistence.Room, error) {
	const query = `
		SELECT id, name, available, created_at
		FROM rooms
		ORDER BY created_at ASC, name ASC, id ASC
	`
	rows, err := r.helper.Query(ctx, query)
	if err != nil {
		return nil, MapError(err)
	}
	defer rows.Close()

	var rooms []persistence.Room
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, MapError(err)
		}
		rooms = append(rooms, room)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return rooms, nil
}

// CountRooms returns the number of rooms.
func (r *RoomRepository) CountRooms(ctx context.Context) (int, error) {
	var count int
	if err := r.helper.QueryRow(ctx, `SELECT COUNT(*) FROM rooms`).Scan(&count); err != nil {
		return 0, MapError(err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRoom(row rowScanner) (persistence.Room, error) {
	var (
		room      persistence.Room
		available int
		createdAt string
	)
	if err := row.Scan(&room.ID, &room.Name, &available, &createdAt); err != nil {
		return persistence.Room{}, err
	}
	room.Available = available != 0

	var err error
	if room.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return persistence.Room{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	return room, nil
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

// timestampLayout is fixed width so stored timestamps sort lexicographically.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

func parseTimestamp(value string) (time.Time, error) {
	return time.Parse(timestampLayout, value)
}
