package application

import (
	"time"

	"github.com/example/room-reservations/internal/scheduler"
)

// Principal represents the authenticated user invoking a service method.
type Principal struct {
	UserID  string
	IsAdmin bool
}

// Room is a bookable meeting room.
type Room struct {
	ID        string
	Name      string
	Available bool
	CreatedAt time.Time
}

// RoomAvailability pairs a room with its availability for a requested slot,
// or with its stored default flag when no slot was requested.
type RoomAvailability struct {
	Room      Room
	Available bool
	Reason    string
}

// BookingStatus is the approval state of a booking.
type BookingStatus string

const (
	BookingPending  BookingStatus = "pending"
	BookingApproved BookingStatus = "approved"
	BookingRejected BookingStatus = "rejected"
)

// Valid reports whether s is one of the known statuses.
func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingApproved, BookingRejected:
		return true
	}
	return false
}

// Booking is a reservation request for one or more rooms.
type Booking struct {
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
	Status       BookingStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Slot returns the booking's date and time ranges.
func (b Booking) Slot() scheduler.Slot {
	return scheduler.Slot{
		Dates: scheduler.DateRange{Start: b.StartDate, End: b.EndDate},
		Times: scheduler.TimeRange{Start: b.StartTime, End: b.EndTime},
	}
}

func (b Booking) occupancy() scheduler.Occupancy {
	return scheduler.Occupancy{BookingID: b.ID, RoomIDs: b.RoomIDs, Slot: b.Slot()}
}

// BookingInput captures caller provided booking fields.
type BookingInput struct {
	EventName    string   `validate:"required,max=200"`
	RoomIDs      []string `validate:"required,min=1,max=20,unique,dive,required"`
	StartDate    string   `validate:"required,datetime=2006-01-02"`
	EndDate      string   `validate:"required,datetime=2006-01-02"`
	StartTime    string   `validate:"required,datetime=15:04"`
	EndTime      string   `validate:"required,datetime=15:04"`
	Participants int      `validate:"gte=0,lte=10000"`
	Department   string   `validate:"max=200"`
	Notes        string   `validate:"max=2000"`
}

// BookingQuery narrows booking listings. Zero values disable a predicate.
type BookingQuery struct {
	Status   BookingStatus
	RoomIDs  []string
	DateFrom string
	DateTo   string
}

// ApprovedFilter narrows the approved booking listing to a day and a room.
type ApprovedFilter struct {
	Date   string
	RoomID string
}

// Stats summarizes the current reservation state.
type Stats struct {
	Pending    int
	Approved   int
	TotalRooms int
}

// Availability is the result of an availability check.
type Availability struct {
	Available bool
	Reason    string
}

// ChangeKind names the state change carried by a Change.
type ChangeKind string

const (
	ChangeRoomCreated     ChangeKind = "room.created"
	ChangeBookingCreated  ChangeKind = "booking.created"
	ChangeBookingApproved ChangeKind = "booking.approved"
	ChangeBookingRejected ChangeKind = "booking.rejected"
	ChangeBookingDeleted  ChangeKind = "booking.deleted"
)

// Change is published to subscribers after a committed state change.
type Change struct {
	Kind ChangeKind
	ID   string
}

// AdminSession is an issued admin token.
type AdminSession struct {
	Token     string
	ExpiresAt time.Time
	Principal Principal
}
