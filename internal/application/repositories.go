package application

import (
	"context"
	"time"
)

// RoomRepository captures the persistence operations needed for rooms.
type RoomRepository interface {
	CreateRoom(ctx context.Context, room Room) (Room, error)
	GetRoom(ctx context.Context, id string) (Room, error)
	ListRooms(ctx context.Context) ([]Room, error)
	CountRooms(ctx context.Context) (int, error)
}

// BookingRepository captures the persistence operations needed for bookings.
type BookingRepository interface {
	CreateBooking(ctx context.Context, booking Booking) (Booking, error)
	GetBooking(ctx context.Context, id string) (Booking, error)
	UpdateBookingStatus(ctx context.Context, id string, status BookingStatus, updatedAt time.Time) (Booking, error)
	DeleteBooking(ctx context.Context, id string) error
	ListBookings(ctx context.Context, query BookingQuery) ([]Booking, error)
	CountBookings(ctx context.Context, status BookingStatus) (int, error)
}

// TxRunner runs fn inside one store transaction. Repository calls made with
// the context passed to fn join that transaction.
type TxRunner interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type directTx struct{}

func (directTx) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
