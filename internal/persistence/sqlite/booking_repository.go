package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/example/room-reservations/internal/persistence"
)

// BookingRepository implements persistence.BookingRepository using SQLite.
// Room membership lives in booking_rooms so scans can filter on it.
type BookingRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
}

// NewBookingRepository creates a new SQLite booking repository.
func NewBookingRepository(pool *ConnectionPool) *BookingRepository {
	return &BookingRepository{pool: pool, helper: NewQueryHelper(pool)}
}

const bookingColumns = `b.id, b.event_name, b.start_date, b.end_date, b.start_time, b.end_time,
	b.participants, b.department, b.notes, b.status, b.created_at, b.updated_at`

// CreateBooking inserts a booking and its room membership atomically.
func (r *BookingRepository) CreateBooking(ctx context.Context, booking persistence.Booking) error {
	if booking.ID == "" {
		return persistence.ErrConstraintViolation
	}
	if booking.UpdatedAt.IsZero() {
		booking.UpdatedAt = booking.CreatedAt
	}

	return r.pool.InTx(ctx, func(ctx context.Context) error {
		const insertBooking = `
			INSERT INTO bookings (id, event_name, start_date, end_date, start_time, end_time,
				participants, department, notes, status, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`
		_, err := r.helper.Exec(ctx, insertBooking,
			booking.ID,
			booking.EventName,
			booking.StartDate,
			booking.EndDate,
			booking.StartTime,
			booking.EndTime,
			booking.Participants,
			booking.Department,
			booking.Notes,
			booking.Status,
			formatTimestamp(booking.CreatedAt),
			formatTimestamp(booking.UpdatedAt),
		)
		if err != nil {
			return MapError(err)
		}

		const insertRoom = `INSERT INTO booking_rooms (booking_id, room_id, position) VALUES (?, ?, ?)`
		for i, roomID := range booking.RoomIDs {
			if _, err := r.helper.Exec(ctx, insertRoom, booking.ID, roomID, i); err != nil {
				return MapError(err)
			}
		}
		return nil
	})
}

// GetBooking retrieves a booking with its rooms.
func (r *BookingRepository) GetBooking(ctx context.Context, id string) (persistence.Booking, error) {
	if id == "" {
		return persistence.Booking{}, persistence.ErrNotFound
	}
	bookings, err := r.list(ctx, "b.id = ?", []any{id})
	if err != nil {
		return persistence.Booking{}, err
	}
	if len(bookings) == 0 {
		return persistence.Booking{}, persistence.ErrNotFound
	}
	return bookings[0], nil
}

// UpdateBookingStatus sets the status of an existing booking.
func (r *BookingRepository) UpdateBookingStatus(ctx context.Context, id, status string, updatedAt time.Time) error {
	const query = `UPDATE bookings SET status = ?, updated_at = ? WHERE id = ?`
	result, err := r.helper.Exec(ctx, query, status, formatTimestamp(updatedAt), id)
	if err != nil {
		return MapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// DeleteBooking removes a booking; its room membership cascades.
func (r *BookingRepository) DeleteBooking(ctx context.Context, id string) error {
	result, err := r.helper.Exec(ctx, `DELETE FROM bookings WHERE id = ?`, id)
	if err != nil {
		return MapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// ListBookings returns bookings matching filter ordered by start date, start
// time and id.
func (r *BookingRepository) ListBookings(ctx context.Context, filter persistence.BookingFilter) ([]persistence.Booking, error) {
	where, args := bookingWhere(filter)
	return r.list(ctx, where, args)
}

// CountBookingsByStatus counts bookings with status.
func (r *BookingRepository) CountBookingsByStatus(ctx context.Context, status string) (int, error) {
	var count int
	if err := r.helper.QueryRow(ctx, `SELECT COUNT(*) FROM bookings WHERE status = ?`, status).Scan(&count); err != nil {
		return 0, MapError(err)
	}
	return count, nil
}

func bookingWhere(filter persistence.BookingFilter) (string, []any) {
	clauses := []string{"1 = 1"}
	var args []any

	if filter.Status != "" {
		clauses = append(clauses, "b.status = ?")
		args = append(args, filter.Status)
	}
	if filter.DateTo != "" {
		clauses = append(clauses, "b.start_date <= ?")
		args = append(args, filter.DateTo)
	}
	if filter.DateFrom != "" {
		clauses = append(clauses, "b.end_date >= ?")
		args = append(args, filter.DateFrom)
	}
	if len(filter.RoomIDs) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(filter.RoomIDs)), ", ")
		clauses = append(clauses, "EXISTS (SELECT 1 FROM booking_rooms f WHERE f.booking_id = b.id AND f.room_id IN ("+placeholders+"))")
		for _, id := range filter.RoomIDs {
			args = append(args, id)
		}
	}
	return strings.Join(clauses, " AND "), args
}

func (r *BookingRepository) list(ctx context.Context, where string, args []any) ([]persistence.Booking, error) {
	query := "SELECT " + bookingColumns + " FROM bookings b WHERE " + where + " ORDER BY b.start_date ASC, b.start_time ASC, b.id ASC"
	rows, err := r.helper.Query(ctx, query, args...)
	if err != nil {
		return nil, MapError(err)
	}
	defer rows.Close()

	var bookings []persistence.Booking
	index := make(map[string]int)
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, MapError(err)
		}
		index[booking.ID] = len(bookings)
		bookings = append(bookings, booking)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	if len(bookings) == 0 {
		return nil, nil
	}

	roomsQuery := "SELECT br.booking_id, br.room_id FROM booking_rooms br JOIN bookings b ON b.id = br.booking_id WHERE " +
		where + " ORDER BY br.booking_id, br.position"
	roomRows, err := r.helper.Query(ctx, roomsQuery, args...)
	if err != nil {
		return nil, MapError(err)
	}
	defer roomRows.Close()

	for roomRows.Next() {
		var bookingID, roomID string
		if err := roomRows.Scan(&bookingID, &roomID); err != nil {
			return nil, MapError(err)
		}
		if i, ok := index[bookingID]; ok {
			bookings[i].RoomIDs = append(bookings[i].RoomIDs, roomID)
		}
	}
	if err := roomRows.Err(); err != nil {
		return nil, MapError(err)
	}
	return bookings, nil
}

func scanBooking(row rowScanner) (persistence.Booking, error) {
	var (
		b                    persistence.Booking
		createdAt, updatedAt string
	)
	err := row.Scan(
		&b.ID,
		&b.EventName,
		&b.StartDate,
		&b.EndDate,
		&b.StartTime,
		&b.EndTime,
		&b.Participants,
		&b.Department,
		&b.Notes,
		&b.Status,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return persistence.Booking{}, err
	}
	if b.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return persistence.Booking{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if b.UpdatedAt, err = parseTimestamp(updatedAt); err != nil {
		return persistence.Booking{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return b, nil
}
