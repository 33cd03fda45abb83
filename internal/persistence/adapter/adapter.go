// Package adapter exposes the persistence repositories through the
// interfaces the application services consume.
package adapter

import (
	"context"
	"time"

	"github.com/example/room-reservations/internal/application"
	"github.com/example/room-reservations/internal/persistence"
)

// Rooms adapts a persistence.RoomRepository to application.RoomRepository.
type Rooms struct {
	repo persistence.RoomRepository
}

// NewRooms wraps repo.
func NewRooms(repo persistence.RoomRepository) *Rooms {
	return &Rooms{repo: repo}
}

func (a *Rooms) CreateRoom(ctx context.Context, room application.Room) (application.Room, error) {
	if err := a.repo.CreateRoom(ctx, toPersistenceRoom(room)); err != nil {
		return application.Room{}, err
	}
	return room, nil
}

func (a *Rooms) GetRoom(ctx context.Context, id string) (application.Room, error) {
	stored, err := a.repo.GetRoom(ctx, id)
	if err != nil {
		return application.Room{}, err
	}
	return toApplicationRoom(stored), nil
}

func (a *Rooms) ListRooms(ctx context.Context) ([]application.Room, error) {
	stored, err := a.repo.ListRooms(ctx)
	if err != nil {
		return nil, err
	}
	rooms := make([]application.Room, 0, len(stored))
	for _, r := range stored {
		rooms = append(rooms, toApplicationRoom(r))
	}
	return rooms, nil
}

func (a *Rooms) CountRooms(ctx context.Context) (int, error) {
	return a.repo.CountRooms(ctx)
}

// Bookings adapts a persistence.BookingRepository to application.BookingRepository.
type Bookings struct {
	repo persistence.BookingRepository
}

// NewBookings wraps repo.
func NewBookings(repo persistence.BookingRepository) *Bookings {
	return &Bookings{repo: repo}
}

func (a *Bookings) CreateBooking(ctx context.Context, booking application.Booking) (application.Booking, error) {
	if err := a.repo.CreateBooking(ctx, toPersistenceBooking(booking)); err != nil {
		return application.Booking{}, err
	}
	return booking, nil
}

func (a *Bookings) GetBooking(ctx context.Context, id string) (application.Booking, error) {
	stored, err := a.repo.GetBooking(ctx, id)
	if err != nil {
		return application.Booking{}, err
	}
	return toApplicationBooking(stored), nil
}

func (a *Bookings) UpdateBookingStatus(ctx context.Context, id string, status application.BookingStatus, updatedAt time.Time) (application.Booking, error) {
	if err := a.repo.UpdateBookingStatus(ctx, id, string(status), updatedAt); err != nil {
		return application.Booking{}, err
	}
	return a.GetBooking(ctx, id)
}

func (a *Bookings) DeleteBooking(ctx context.Context, id string) error {
	return a.repo.DeleteBooking(ctx, id)
}

func (a *Bookings) ListBookings(ctx context.Context, query application.BookingQuery) ([]application.Booking, error) {
	stored, err := a.repo.ListBookings(ctx, persistence.BookingFilter{
		Status:   string(query.Status),
		RoomIDs:  query.RoomIDs,
		DateFrom: query.DateFrom,
		DateTo:   query.DateTo,
	})
	if err != nil {
		return nil, err
	}
	bookings := make([]application.Booking, 0, len(stored))
	for _, b := range stored {
		bookings = append(bookings, toApplicationBooking(b))
	}
	return bookings, nil
}

func (a *Bookings) CountBookings(ctx context.Context, status application.BookingStatus) (int, error) {
	return a.repo.CountBookingsByStatus(ctx, string(status))
}

func toPersistenceRoom(room application.Room) persistence.Room {
	return persistence.Room{
		ID:        room.ID,
		Name:      room.Name,
		Available: room.Available,
		CreatedAt: room.CreatedAt,
	}
}

func toApplicationRoom(room persistence.Room) application.Room {
	return application.Room{
		ID:        room.ID,
		Name:      room.Name,
		Available: room.Available,
		CreatedAt: room.CreatedAt,
	}
}

func toPersistenceBooking(b application.Booking) persistence.Booking {
	return persistence.Booking{
		ID:           b.ID,
		EventName:    b.EventName,
		RoomIDs:      append([]string(nil), b.RoomIDs...),
		StartDate:    b.StartDate,
		EndDate:      b.EndDate,
		StartTime:    b.StartTime,
		EndTime:      b.EndTime,
		Participants: b.Participants,
		Department:   b.Department,
		Notes:        b.Notes,
		Status:       string(b.Status),
		CreatedAt:    b.CreatedAt,
		UpdatedAt:    b.UpdatedAt,
	}
}

func toApplicationBooking(b persistence.Booking) application.Booking {
	return application.Booking{
		ID:           b.ID,
		EventName:    b.EventName,
		RoomIDs:      append([]string(nil), b.RoomIDs...),
		StartDate:    b.StartDate,
		EndDate:      b.EndDate,
		StartTime:    b.StartTime,
		EndTime:      b.EndTime,
		Participants: b.Participants,
		Department:   b.Department,
		Notes:        b.Notes,
		Status:       application.BookingStatus(b.Status),
		CreatedAt:    b.CreatedAt,
		UpdatedAt:    b.UpdatedAt,
	}
}
