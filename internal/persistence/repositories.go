package persistence

import (
	"context"
	"time"
)

// RoomRepository stores the room catalog.
type RoomRepository interface {
	CreateRoom(ctx context.Context, room Room) error
	GetRoom(ctx context.Context, id string) (Room, error)
	ListRooms(ctx context.Context) ([]Room, error)
	CountRooms(ctx context.Context) (int, error)
}

// BookingFilter narrows booking scans. Zero values disable a predicate.
//
// RoomIDs matches bookings holding at least one of the rooms. DateFrom and
// DateTo select bookings whose inclusive date range overlaps [DateFrom, DateTo].
type BookingFilter struct {
	Status   string
	RoomIDs  []string
	DateFrom string
	DateTo   string
}

// BookingRepository stores bookings and their room membership.
type BookingRepository interface {
	CreateBooking(ctx context.Context, booking Booking) error
	GetBooking(ctx context.Context, id string) (Booking, error)
	UpdateBookingStatus(ctx context.Context, id, status string, updatedAt time.Time) error
	DeleteBooking(ctx context.Context, id string) error
	ListBookings(ctx context.Context, filter BookingFilter) ([]Booking, error)
	CountBookingsByStatus(ctx context.Context, status string) (int, error)
}

// Transactor runs fn inside a single store transaction. Repository calls made
// with the context passed to fn join that transaction.
type Transactor interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}
