package application

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"reflect"
	"strings"
	"sync"
	"testing"
)

type bookingHarness struct {
	rooms    *roomRepoStub
	bookings *bookingRepoStub
	tx       *txStub
	notifier *notifierStub
	service  *BookingService
}

func newBookingHarness(opts ...BookingServiceOption) *bookingHarness {
	h := &bookingHarness{
		rooms:    newRoomRepoStub(Room{ID: "ares", Name: "ARES"}, Room{ID: "osce", Name: "OSCE"}, Room{ID: "board", Name: "Board Room"}),
		bookings: newBookingRepoStub(),
		tx:       &txStub{},
		notifier: &notifierStub{},
	}
	checker := NewAvailabilityChecker(h.bookings, h.rooms)
	h.service = NewBookingService(h.bookings, h.rooms, h.tx, checker, h.notifier, sequentialIDs("bk"), fixedNow(), opts...)
	return h
}

func validInput() BookingInput {
	return BookingInput{
		EventName: "Weekly sync",
		RoomIDs:   []string{"ares"},
		StartDate: "2024-03-01",
		EndDate:   "2024-03-01",
		StartTime: "09:00",
		EndTime:   "10:00",
	}
}

func TestBookingService_CreateBooking(t *testing.T) {
	ctx := context.Background()

	t.Run("stores a pending booking with defaults", func(t *testing.T) {
		h := newBookingHarness()

		input := validInput()
		input.EventName = "  Weekly sync  "
		got, err := h.service.CreateBooking(ctx, input)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.ID != "bk-01" || got.Status != BookingPending || got.Participants != 1 {
			t.Fatalf("unexpected booking %+v", got)
		}
		if got.EventName != "Weekly sync" {
			t.Fatalf("expected trimmed event name, got %q", got.EventName)
		}
		if !got.CreatedAt.Equal(fixedNow()()) {
			t.Fatalf("expected CreatedAt from clock, got %v", got.CreatedAt)
		}
		if h.tx.calls != 1 {
			t.Fatalf("expected one transaction, got %d", h.tx.calls)
		}
		if kinds := h.notifier.kinds(); !reflect.DeepEqual(kinds, []ChangeKind{ChangeBookingCreated}) {
			t.Fatalf("unexpected notifications %v", kinds)
		}
	})

	t.Run("rejects overlap with approved booking", func(t *testing.T) {
		h := newBookingHarness()
		h.bookings.bookings["b1"] = approvedBooking("b1", []string{"ares"}, "2024-03-01", "2024-03-01", "09:00", "10:00")

		input := validInput()
		input.StartTime, input.EndTime = "09:30", "11:00"
		_, err := h.service.CreateBooking(ctx, input)
		if !errors.Is(err, ErrConflict) {
			t.Fatalf("expected ErrConflict, got %v", err)
		}
		var cErr *ConflictError
		if !errors.As(err, &cErr) || cErr.Reason != "room(s) ARES already booked for overlapping time" {
			t.Fatalf("unexpected conflict %v", err)
		}
		if len(h.bookings.bookings) != 1 {
			t.Fatalf("expected nothing stored")
		}
		if len(h.notifier.kinds()) != 0 {
			t.Fatalf("expected no notification on conflict")
		}
	})

	t.Run("back to back bookings are accepted", func(t *testing.T) {
		h := newBookingHarness()
		h.bookings.bookings["b1"] = approvedBooking("b1", []string{"ares"}, "2024-03-01", "2024-03-01", "09:00", "10:00")

		input := validInput()
		input.StartTime, input.EndTime = "10:00", "11:00"
		if _, err := h.service.CreateBooking(ctx, input); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("pending bookings do not block", func(t *testing.T) {
		h := newBookingHarness()
		if _, err := h.service.CreateBooking(ctx, validInput()); err != nil {
			t.Fatalf("first booking: %v", err)
		}
		if _, err := h.service.CreateBooking(ctx, validInput()); err != nil {
			t.Fatalf("second booking over a pending one: %v", err)
		}
	})

	t.Run("multi-day approved booking blocks a day inside it", func(t *testing.T) {
		h := newBookingHarness()
		h.bookings.bookings["b1"] = approvedBooking("b1", []string{"osce", "board"}, "2024-03-01", "2024-03-03", "13:00", "15:00")

		input := validInput()
		input.RoomIDs = []string{"board"}
		input.StartDate, input.EndDate = "2024-03-02", "2024-03-02"
		input.StartTime, input.EndTime = "14:00", "14:30"
		if _, err := h.service.CreateBooking(ctx, input); !errors.Is(err, ErrConflict) {
			t.Fatalf("expected conflict, got %v", err)
		}
	})

	t.Run("validation failures", func(t *testing.T) {
		cases := []struct {
			name  string
			edit  func(*BookingInput)
			field string
		}{
			{name: "empty rooms", edit: func(in *BookingInput) { in.RoomIDs = nil }, field: "rooms"},
			{name: "blank room id", edit: func(in *BookingInput) { in.RoomIDs = []string{" "} }, field: "rooms"},
			{name: "duplicate rooms", edit: func(in *BookingInput) { in.RoomIDs = []string{"ares", "ares"} }, field: "rooms"},
			{name: "unknown room", edit: func(in *BookingInput) { in.RoomIDs = []string{"nowhere"} }, field: "rooms"},
			{name: "missing event name", edit: func(in *BookingInput) { in.EventName = "" }, field: "eventName"},
			{name: "bad date", edit: func(in *BookingInput) { in.StartDate = "2024-3-1" }, field: "startDate"},
			{name: "single digit hour", edit: func(in *BookingInput) { in.StartTime = "9:00" }, field: "startTime"},
			{name: "end before start date", edit: func(in *BookingInput) { in.EndDate = "2024-02-28" }, field: "endDate"},
			{name: "empty time range", edit: func(in *BookingInput) { in.EndTime = "09:00" }, field: "endTime"},
			{name: "negative participants", edit: func(in *BookingInput) { in.Participants = -1 }, field: "participants"},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				h := newBookingHarness()
				input := validInput()
				tc.edit(&input)

				_, err := h.service.CreateBooking(ctx, input)
				var vErr *ValidationError
				if !errors.As(err, &vErr) {
					t.Fatalf("expected ValidationError, got %v", err)
				}
				if _, ok := vErr.FieldErrors[tc.field]; !ok {
					t.Fatalf("expected %s error, got %v", tc.field, vErr.FieldErrors)
				}
				if len(h.bookings.bookings) != 0 {
					t.Fatalf("expected nothing stored")
				}
			})
		}
	})

	t.Run("store failure fails closed", func(t *testing.T) {
		h := newBookingHarness()
		h.bookings.listErr = errStoreDown

		_, err := h.service.CreateBooking(ctx, validInput())
		if !errors.Is(err, ErrStore) {
			t.Fatalf("expected ErrStore, got %v", err)
		}
		if len(h.bookings.bookings) != 0 {
			t.Fatalf("expected nothing stored")
		}
	})

	t.Run("notifier failure does not fail the request", func(t *testing.T) {
		h := newBookingHarness()
		h.notifier.err = errors.New("hub closed")

		if _, err := h.service.CreateBooking(ctx, validInput()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

func TestBookingService_ConcurrentCreatesAdmitOneApproval(t *testing.T) {
	h := newBookingHarness(WithStrictApproval(true))
	ctx := context.Background()

	first, err := h.service.CreateBooking(ctx, validInput())
	if err != nil {
		t.Fatalf("create first: %v", err)
	}
	second, err := h.service.CreateBooking(ctx, validInput())
	if err != nil {
		t.Fatalf("create second: %v", err)
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		results []error
	)
	for _, id := range []string{first.ID, second.ID} {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, err := h.service.Approve(ctx, id)
			mu.Lock()
			results = append(results, err)
			mu.Unlock()
		}(id)
	}
	wg.Wait()

	var ok, conflicts int
	for _, err := range results {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrConflict):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 || conflicts != 1 {
		t.Fatalf("expected one approval and one conflict, got ok=%d conflicts=%d", ok, conflicts)
	}
}

func TestBookingService_ApproveReject(t *testing.T) {
	ctx := context.Background()

	t.Run("approve then reject then approve again", func(t *testing.T) {
		h := newBookingHarness()
		created, err := h.service.CreateBooking(ctx, validInput())
		if err != nil {
			t.Fatalf("create: %v", err)
		}

		approved, err := h.service.Approve(ctx, created.ID)
		if err != nil || approved.Status != BookingApproved {
			t.Fatalf("approve: %+v %v", approved, err)
		}
		rejected, err := h.service.Reject(ctx, created.ID)
		if err != nil || rejected.Status != BookingRejected {
			t.Fatalf("reject: %+v %v", rejected, err)
		}
		again, err := h.service.Approve(ctx, created.ID)
		if err != nil || again.Status != BookingApproved {
			t.Fatalf("re-approve: %+v %v", again, err)
		}

		want := []ChangeKind{ChangeBookingCreated, ChangeBookingApproved, ChangeBookingRejected, ChangeBookingApproved}
		if got := h.notifier.kinds(); !reflect.DeepEqual(got, want) {
			t.Fatalf("unexpected notifications %v", got)
		}
	})

	t.Run("default mode approves conflicting pendings", func(t *testing.T) {
		h := newBookingHarness()
		a, _ := h.service.CreateBooking(ctx, validInput())
		b, _ := h.service.CreateBooking(ctx, validInput())

		if _, err := h.service.Approve(ctx, a.ID); err != nil {
			t.Fatalf("approve a: %v", err)
		}
		if _, err := h.service.Approve(ctx, b.ID); err != nil {
			t.Fatalf("approve b without re-check: %v", err)
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		h := newBookingHarness()
		if _, err := h.service.Approve(ctx, "missing"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
		if _, err := h.service.Reject(ctx, "missing"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
		if len(h.notifier.kinds()) != 0 {
			t.Fatalf("expected no notification")
		}
	})

	t.Run("strict mode only moves pending bookings", func(t *testing.T) {
		h := newBookingHarness(WithStrictApproval(true))
		created, _ := h.service.CreateBooking(ctx, validInput())
		if _, err := h.service.Reject(ctx, created.ID); err != nil {
			t.Fatalf("reject: %v", err)
		}
		if _, err := h.service.Approve(ctx, created.ID); !errors.Is(err, ErrInvalidTransition) {
			t.Fatalf("expected ErrInvalidTransition, got %v", err)
		}
		if _, err := h.service.Approve(ctx, "missing"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("strict mode re-checks availability", func(t *testing.T) {
		h := newBookingHarness(WithStrictApproval(true))
		a, _ := h.service.CreateBooking(ctx, validInput())
		b, _ := h.service.CreateBooking(ctx, validInput())

		if _, err := h.service.Approve(ctx, a.ID); err != nil {
			t.Fatalf("approve a: %v", err)
		}
		if _, err := h.service.Approve(ctx, b.ID); !errors.Is(err, ErrConflict) {
			t.Fatalf("expected ErrConflict, got %v", err)
		}
		if got, _ := h.service.GetBooking(ctx, b.ID); got.Status != BookingPending {
			t.Fatalf("expected b to stay pending, got %s", got.Status)
		}
	})
}

func TestBookingService_DeleteBooking(t *testing.T) {
	ctx := context.Background()
	h := newBookingHarness()
	created, _ := h.service.CreateBooking(ctx, validInput())
	if _, err := h.service.Approve(ctx, created.ID); err != nil {
		t.Fatalf("approve: %v", err)
	}

	if err := h.service.DeleteBooking(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := h.service.GetBooking(ctx, created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := h.service.DeleteBooking(ctx, created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}

	kinds := h.notifier.kinds()
	if kinds[len(kinds)-1] != ChangeBookingDeleted {
		t.Fatalf("expected delete notification, got %v", kinds)
	}

	// The freed slot can be booked again.
	if _, err := h.service.CreateBooking(ctx, validInput()); err != nil {
		t.Fatalf("rebook: %v", err)
	}
}

func TestBookingService_Listings(t *testing.T) {
	ctx := context.Background()
	h := newBookingHarness()
	h.bookings.bookings["b1"] = approvedBooking("b1", []string{"osce", "board"}, "2024-03-01", "2024-03-03", "13:00", "15:00")
	h.bookings.bookings["b2"] = approvedBooking("b2", []string{"ares"}, "2024-03-02", "2024-03-02", "09:00", "10:00")
	h.bookings.bookings["p1"] = Booking{ID: "p1", RoomIDs: []string{"ares"}, StartDate: "2024-03-05", EndDate: "2024-03-05", StartTime: "09:00", EndTime: "10:00", Status: BookingPending}

	t.Run("by status", func(t *testing.T) {
		got, err := h.service.ListByStatus(ctx, BookingPending)
		if err != nil || len(got) != 1 || got[0].ID != "p1" {
			t.Fatalf("unexpected result %+v %v", got, err)
		}
	})

	t.Run("unknown status", func(t *testing.T) {
		_, err := h.service.ListByStatus(ctx, BookingStatus("archived"))
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
	})

	t.Run("approved on a date inside a range", func(t *testing.T) {
		got, err := h.service.ListApproved(ctx, ApprovedFilter{Date: "2024-03-03"})
		if err != nil || len(got) != 1 || got[0].ID != "b1" {
			t.Fatalf("unexpected result %+v %v", got, err)
		}
	})

	t.Run("approved by room", func(t *testing.T) {
		got, err := h.service.ListApproved(ctx, ApprovedFilter{Date: "2024-03-02", RoomID: "ares"})
		if err != nil || len(got) != 1 || got[0].ID != "b2" {
			t.Fatalf("unexpected result %+v %v", got, err)
		}
	})

	t.Run("approved with malformed date", func(t *testing.T) {
		_, err := h.service.ListApproved(ctx, ApprovedFilter{Date: "03/02/2024"})
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
	})

	t.Run("all bookings ordered by start", func(t *testing.T) {
		got, err := h.service.ListAll(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		var ids []string
		for _, b := range got {
			ids = append(ids, b.ID)
		}
		if !reflect.DeepEqual(ids, []string{"b1", "b2", "p1"}) {
			t.Fatalf("unexpected order %v", ids)
		}
	})

	t.Run("stats", func(t *testing.T) {
		stats, err := h.service.Stats(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if stats != (Stats{Pending: 1, Approved: 2, TotalRooms: 3}) {
			t.Fatalf("unexpected stats %+v", stats)
		}
	})

	t.Run("stats store failure", func(t *testing.T) {
		h.rooms.countErr = errStoreDown
		defer func() { h.rooms.countErr = nil }()
		if _, err := h.service.Stats(ctx); !errors.Is(err, ErrStore) {
			t.Fatalf("expected ErrStore, got %v", err)
		}
	})
}

func TestBookingService_DeleteBookingLogsOutcome(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	h := newBookingHarness()
	checker := NewAvailabilityChecker(h.bookings, h.rooms)
	service := NewBookingServiceWithLogger(h.bookings, h.rooms, h.tx, checker, h.notifier, sequentialIDs("bk"), fixedNow(), logger)

	created, err := service.CreateBooking(ctx, validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	buf.Reset()

	if err := service.DeleteBooking(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, `"msg":"booking deleted"`) || !strings.Contains(out, `"operation":"DeleteBooking"`) {
		t.Fatalf("expected success log, got %s", out)
	}
	buf.Reset()

	if err := service.DeleteBooking(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	out = buf.String()
	if !strings.Contains(out, `"msg":"failed to delete booking"`) || !strings.Contains(out, `"error_kind":"not_found"`) {
		t.Fatalf("expected failure log, got %s", out)
	}
	if strings.Contains(out, `"msg":"booking deleted"`) {
		t.Fatalf("failed delete must not log success: %s", out)
	}
}
