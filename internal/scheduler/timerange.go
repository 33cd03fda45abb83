package scheduler

import (
	"errors"
	"fmt"
	"time"
)

const (
	// DateLayout is the fixed-width calendar date format used for bookings.
	DateLayout = "2006-01-02"
	// ClockLayout is the fixed-width 24h time-of-day format used for bookings.
	ClockLayout = "15:04"
)

var (
	// ErrInvalidDate is returned when a value is not a zero-padded YYYY-MM-DD date.
	ErrInvalidDate = errors.New("scheduler: invalid date")
	// ErrInvalidClock is returned when a value is not a zero-padded HH:MM time.
	ErrInvalidClock = errors.New("scheduler: invalid time of day")
)

// DateRange is an inclusive range of calendar days. Start and End are
// DateLayout strings, which order lexicographically.
type DateRange struct {
	Start string
	End   string
}

// Overlaps reports whether both ranges share at least one calendar day.
func (r DateRange) Overlaps(other DateRange) bool {
	return r.Start <= other.End && r.End >= other.Start
}

// Contains reports whether day falls within the range.
func (r DateRange) Contains(day string) bool {
	return r.Start <= day && day <= r.End
}

// TimeRange is a half-open time-of-day interval [Start, End). Values are
// ClockLayout strings.
type TimeRange struct {
	Start string
	End   string
}

// Overlaps reports whether the intervals intersect. Back-to-back ranges
// (one ending when the other starts) do not overlap.
func (r TimeRange) Overlaps(other TimeRange) bool {
	return r.Start < other.End && r.End > other.Start
}

// Slot combines the days and the daily time window a booking occupies.
type Slot struct {
	Dates DateRange
	Times TimeRange
}

// Overlaps requires both the date and the time component to overlap.
func (s Slot) Overlaps(other Slot) bool {
	return s.Dates.Overlaps(other.Dates) && s.Times.Overlaps(other.Times)
}

// String renders the slot for log output.
func (s Slot) String() string {
	return fmt.Sprintf("%s..%s %s-%s", s.Dates.Start, s.Dates.End, s.Times.Start, s.Times.End)
}

// ParseDate checks that value is a valid, zero-padded calendar date.
func ParseDate(value string) (time.Time, error) {
	if len(value) != len(DateLayout) {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, value)
	}
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, value)
	}
	return t, nil
}

// ParseClock checks that value is a valid, zero-padded HH:MM time of day.
func ParseClock(value string) (time.Time, error) {
	if len(value) != len(ClockLayout) {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidClock, value)
	}
	t, err := time.Parse(ClockLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidClock, value)
	}
	return t, nil
}
