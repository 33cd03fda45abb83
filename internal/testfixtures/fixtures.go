package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/room-reservations/internal/application"
	"github.com/example/room-reservations/internal/persistence"
)

var (
	roomCounter    uint64
	bookingCounter uint64
)

var referenceTime = time.Date(2024, time.January, 2, 15, 4, 5, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// ----------------------------- Room fixtures -----------------------------

// RoomFixture is a deterministic room record.
type RoomFixture struct {
	ID        string
	Name      string
	Available bool
	CreatedAt time.Time
}

// RoomOption configures the generated room fixture.
type RoomOption func(*RoomFixture)

// NewRoomFixture returns a deterministic room fixture with optional overrides.
func NewRoomFixture(opts ...RoomOption) RoomFixture {
	idx := atomic.AddUint64(&roomCounter, 1)
	fixture := RoomFixture{
		ID:        fmt.Sprintf("room-%03d", idx),
		Name:      fmt.Sprintf("Room %03d", idx),
		Available: true,
		CreatedAt: referenceTime.Add(time.Duration(idx) * time.Minute),
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithRoomID overrides the generated room ID.
func WithRoomID(id string) RoomOption {
	return func(f *RoomFixture) { f.ID = id }
}

// WithRoomName overrides the generated room name.
func WithRoomName(name string) RoomOption {
	return func(f *RoomFixture) { f.Name = name }
}

// WithRoomCreatedAt sets the created timestamp.
func WithRoomCreatedAt(t time.Time) RoomOption {
	return func(f *RoomFixture) { f.CreatedAt = t }
}

// Application converts the fixture to an application.Room.
func (f RoomFixture) Application() application.Room {
	return application.Room{ID: f.ID, Name: f.Name, Available: f.Available, CreatedAt: f.CreatedAt}
}

// Persistence converts the fixture to a persistence.Room.
func (f RoomFixture) Persistence() persistence.Room {
	return persistence.Room{ID: f.ID, Name: f.Name, Available: f.Available, CreatedAt: f.CreatedAt}
}

// --------------------------- Booking fixtures ----------------------------

// BookingFixture is a deterministic single-day, one-hour booking.
type BookingFixture struct {
	ID           string
	EventName    string
	RoomIDs      []string
	StartDate    string
	EndDate      string
	StartTime    string
	EndTime      string
	Participants int
	Department   string
	Notes        string
	Status       application.BookingStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// BookingOption configures the generated booking fixture.
type BookingOption func(*BookingFixture)

// NewBookingFixture returns a pending booking on 2024-01-01 09:00-10:00.
func NewBookingFixture(opts ...BookingOption) BookingFixture {
	idx := atomic.AddUint64(&bookingCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := BookingFixture{
		ID:           fmt.Sprintf("booking-%03d", idx),
		EventName:    fmt.Sprintf("Event %03d", idx),
		StartDate:    "2024-01-01",
		EndDate:      "2024-01-01",
		StartTime:    "09:00",
		EndTime:      "10:00",
		Participants: 1,
		Status:       application.BookingPending,
		CreatedAt:    created,
		UpdatedAt:    created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithBookingID overrides the generated booking ID.
func WithBookingID(id string) BookingOption {
	return func(f *BookingFixture) { f.ID = id }
}

// WithBookingRooms sets the booked room IDs.
func WithBookingRooms(ids ...string) BookingOption {
	return func(f *BookingFixture) { f.RoomIDs = append([]string(nil), ids...) }
}

// WithBookingDates sets the inclusive date range.
func WithBookingDates(start, end string) BookingOption {
	return func(f *BookingFixture) {
		f.StartDate = start
		f.EndDate = end
	}
}

// WithBookingTimes sets the half-open daily time range.
func WithBookingTimes(start, end string) BookingOption {
	return func(f *BookingFixture) {
		f.StartTime = start
		f.EndTime = end
	}
}

// WithBookingStatus sets the booking status.
func WithBookingStatus(status application.BookingStatus) BookingOption {
	return func(f *BookingFixture) { f.Status = status }
}

// WithBookingDetails sets the optional descriptive fields.
func WithBookingDetails(participants int, department, notes string) BookingOption {
	return func(f *BookingFixture) {
		f.Participants = participants
		f.Department = department
		f.Notes = notes
	}
}

// Input converts the fixture to the caller supplied fields of a booking.
func (f BookingFixture) Input() application.BookingInput {
	return application.BookingInput{
		EventName:    f.EventName,
		RoomIDs:      append([]string(nil), f.RoomIDs...),
		StartDate:    f.StartDate,
		EndDate:      f.EndDate,
		StartTime:    f.StartTime,
		EndTime:      f.EndTime,
		Participants: f.Participants,
		Department:   f.Department,
		Notes:        f.Notes,
	}
}

// Application converts the fixture to an application.Booking.
func (f BookingFixture) Application() application.Booking {
	return application.Booking{
		ID:           f.ID,
		EventName:    f.EventName,
		RoomIDs:      append([]string(nil), f.RoomIDs...),
		StartDate:    f.StartDate,
		EndDate:      f.EndDate,
		StartTime:    f.StartTime,
		EndTime:      f.EndTime,
		Participants: f.Participants,
		Department:   f.Department,
		Notes:        f.Notes,
		Status:       f.Status,
		CreatedAt:    f.CreatedAt,
		UpdatedAt:    f.UpdatedAt,
	}
}

// Persistence converts the fixture to a persistence.Booking.
func (f BookingFixture) Persistence() persistence.Booking {
	return persistence.Booking{
		ID:           f.ID,
		EventName:    f.EventName,
		RoomIDs:      append([]string(nil), f.RoomIDs...),
		StartDate:    f.StartDate,
		EndDate:      f.EndDate,
		StartTime:    f.StartTime,
		EndTime:      f.EndTime,
		Participants: f.Participants,
		Department:   f.Department,
		Notes:        f.Notes,
		Status:       string(f.Status),
		CreatedAt:    f.CreatedAt,
		UpdatedAt:    f.UpdatedAt,
	}
}
