package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/example/room-reservations/internal/persistence"
	"github.com/example/room-reservations/internal/scheduler"
)

const availableReason = "Available"

// AvailabilityChecker decides whether a room set is free for a slot against
// the approved bookings. Only approved bookings occupy rooms.
type AvailabilityChecker struct {
	bookings BookingRepository
	rooms    RoomRepository
	logger   *slog.Logger
}

// NewAvailabilityChecker constructs a checker. rooms is only used to render
// room names in conflict reasons and may be nil.
func NewAvailabilityChecker(bookings BookingRepository, rooms RoomRepository) *AvailabilityChecker {
	return NewAvailabilityCheckerWithLogger(bookings, rooms, nil)
}

// NewAvailabilityCheckerWithLogger constructs a checker with a specified logger.
func NewAvailabilityCheckerWithLogger(bookings BookingRepository, rooms RoomRepository, logger *slog.Logger) *AvailabilityChecker {
	return &AvailabilityChecker{bookings: bookings, rooms: rooms, logger: defaultLogger(logger)}
}

// Check reports whether every room in roomIDs is free for slot. A store
// failure yields an unavailable result together with a *StoreError.
func (c *AvailabilityChecker) Check(ctx context.Context, roomIDs []string, slot scheduler.Slot) (Availability, error) {
	return c.check(ctx, scheduler.Occupancy{RoomIDs: roomIDs, Slot: slot})
}

// check evaluates candidate, ignoring any approved booking with the
// candidate's own id.
func (c *AvailabilityChecker) check(ctx context.Context, candidate scheduler.Occupancy) (result Availability, err error) {
	if len(candidate.RoomIDs) == 0 {
		return Availability{Available: true, Reason: availableReason}, nil
	}
	if c == nil || c.bookings == nil {
		err = storeError("list approved bookings", errors.New("booking repository not configured"))
		return unavailable(err), err
	}

	logger := serviceLogger(ctx, c.logger, "AvailabilityChecker", "Check",
		"room_count", len(candidate.RoomIDs),
		"slot", candidate.Slot.String(),
	)

	var approved []Booking
	approved, err = c.bookings.ListBookings(ctx, BookingQuery{
		Status:   BookingApproved,
		RoomIDs:  candidate.RoomIDs,
		DateFrom: candidate.Slot.Dates.Start,
		DateTo:   candidate.Slot.Dates.End,
	})
	if err != nil {
		err = storeError("list approved bookings", err)
		logger.ErrorContext(ctx, "availability could not be determined", "error", err, "error_kind", ErrorKind(err))
		return unavailable(err), err
	}

	existing := make([]scheduler.Occupancy, 0, len(approved))
	for _, b := range approved {
		existing = append(existing, b.occupancy())
	}

	conflicts := scheduler.DetectConflicts(existing, candidate)
	if len(conflicts) == 0 {
		return Availability{Available: true, Reason: availableReason}, nil
	}

	var shared []string
	seen := make(map[string]struct{})
	for _, conflict := range conflicts {
		for _, id := range conflict.RoomIDs {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			shared = append(shared, id)
		}
	}

	logger.DebugContext(ctx, "conflict detected",
		"conflicting_booking_id", conflicts[0].WithBookingID,
		"conflict_count", len(conflicts),
	)
	return Availability{
		Available: false,
		Reason:    fmt.Sprintf("room(s) %s already booked for overlapping time", strings.Join(c.roomNames(ctx, shared), ", ")),
	}, nil
}

// roomNames resolves ids to names, keeping the id when a lookup fails.
func (c *AvailabilityChecker) roomNames(ctx context.Context, ids []string) []string {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		name := id
		if c.rooms != nil {
			if room, err := c.rooms.GetRoom(ctx, id); err == nil && room.Name != "" {
				name = room.Name
			}
		}
		names = append(names, name)
	}
	return names
}

func unavailable(err error) Availability {
	return Availability{Available: false, Reason: "availability could not be determined: " + err.Error()}
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, persistence.ErrNotFound)
}
