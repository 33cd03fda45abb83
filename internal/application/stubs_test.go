package application

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
)

type roomRepoStub struct {
	mu      sync.Mutex
	rooms   []Room
	created []Room

	createErr error
	listErr   error
	countErr  error
}

func newRoomRepoStub(rooms ...Room) *roomRepoStub {
	return &roomRepoStub{rooms: append([]Room(nil), rooms...)}
}

func (r *roomRepoStub) CreateRoom(ctx context.Context, room Room) (Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return Room{}, r.createErr
	}
	r.rooms = append(r.rooms, room)
	r.created = append(r.created, room)
	return room, nil
}

func (r *roomRepoStub) GetRoom(ctx context.Context, id string) (Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, room := range r.rooms {
		if room.ID == id {
			return room, nil
		}
	}
	return Room{}, ErrNotFound
}

func (r *roomRepoStub) ListRooms(ctx context.Context) ([]Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	return append([]Room(nil), r.rooms...), nil
}

func (r *roomRepoStub) CountRooms(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.countErr != nil {
		return 0, r.countErr
	}
	return len(r.rooms), nil
}

type bookingRepoStub struct {
	mu       sync.Mutex
	bookings map[string]Booking
	queries  []BookingQuery

	createErr error
	listErr   error
	updateErr error
}

func newBookingRepoStub(bookings ...Booking) *bookingRepoStub {
	repo := &bookingRepoStub{bookings: make(map[string]Booking)}
	for _, b := range bookings {
		repo.bookings[b.ID] = b
	}
	return repo
}

func (r *bookingRepoStub) CreateBooking(ctx context.Context, booking Booking) (Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return Booking{}, r.createErr
	}
	r.bookings[booking.ID] = booking
	return booking, nil
}

func (r *bookingRepoStub) GetBooking(ctx context.Context, id string) (Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return Booking{}, ErrNotFound
	}
	return b, nil
}

func (r *bookingRepoStub) UpdateBookingStatus(ctx context.Context, id string, status BookingStatus, updatedAt time.Time) (Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return Booking{}, r.updateErr
	}
	b, ok := r.bookings[id]
	if !ok {
		return Booking{}, ErrNotFound
	}
	b.Status = status
	b.UpdatedAt = updatedAt
	r.bookings[id] = b
	return b, nil
}

func (r *bookingRepoStub) DeleteBooking(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.bookings[id]; !ok {
		return ErrNotFound
	}
	delete(r.bookings, id)
	return nil
}

func (r *bookingRepoStub) ListBookings(ctx context.Context, query BookingQuery) ([]Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queries = append(r.queries, query)
	if r.listErr != nil {
		return nil, r.listErr
	}

	var out []Booking
	for _, b := range r.bookings {
		if query.Status != "" && b.Status != query.Status {
			continue
		}
		if query.DateTo != "" && b.StartDate > query.DateTo {
			continue
		}
		if query.DateFrom != "" && b.EndDate < query.DateFrom {
			continue
		}
		if len(query.RoomIDs) > 0 && !sharesRoom(b.RoomIDs, query.RoomIDs) {
			continue
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartDate != out[j].StartDate {
			return out[i].StartDate < out[j].StartDate
		}
		if out[i].StartTime != out[j].StartTime {
			return out[i].StartTime < out[j].StartTime
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *bookingRepoStub) CountBookings(ctx context.Context, status BookingStatus) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, b := range r.bookings {
		if b.Status == status {
			n++
		}
	}
	return n, nil
}

func sharesRoom(a, b []string) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}

// txStub serializes InTx callers, standing in for the store's write lock.
type txStub struct {
	mu    sync.Mutex
	calls int
}

func (t *txStub) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.calls++
	return fn(ctx)
}

type notifierStub struct {
	mu      sync.Mutex
	changes []Change
	err     error
}

func (n *notifierStub) Publish(ctx context.Context, change Change) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.changes = append(n.changes, change)
	return n.err
}

func (n *notifierStub) kinds() []ChangeKind {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]ChangeKind, 0, len(n.changes))
	for _, c := range n.changes {
		out = append(out, c.Kind)
	}
	return out
}

var errStoreDown = errors.New("store unavailable")

func sequentialIDs(prefix string) func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("%s-%02d", prefix, n)
	}
}

func fixedNow() func() time.Time {
	ts := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time { return ts }
}

func approvedBooking(id string, rooms []string, startDate, endDate, startTime, endTime string) Booking {
	return Booking{
		ID:           id,
		EventName:    "event " + id,
		RoomIDs:      rooms,
		StartDate:    startDate,
		EndDate:      endDate,
		StartTime:    startTime,
		EndTime:      endTime,
		Participants: 1,
		Status:       BookingApproved,
	}
}
