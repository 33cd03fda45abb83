package persistence

import "time"

// Booking status values as stored in the bookings table.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Room represents a bookable meeting room.
type Room struct {
	ID        string
	Name      string
	Available bool
	CreatedAt time.Time
}

// Booking represents a reservation request and its approval state.
//
// Dates are stored as YYYY-MM-DD and times as HH:MM so range predicates can
// be evaluated with plain string comparison.
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
	Status       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
