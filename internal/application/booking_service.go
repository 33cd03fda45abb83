package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/room-reservations/internal/persistence"
	"github.com/example/room-reservations/internal/scheduler"
)

// BookingServiceOption configures optional BookingService behavior.
type BookingServiceOption func(*BookingService)

// WithStrictApproval limits approve and reject to pending bookings and
// re-checks availability before approving.
func WithStrictApproval(enabled bool) BookingServiceOption {
	return func(s *BookingService) {
		s.strictApproval = enabled
	}
}

// BookingService drives the booking lifecycle: creation with conflict
// checking, approval, rejection and deletion.
type BookingService struct {
	bookings       BookingRepository
	rooms          RoomRepository
	tx             TxRunner
	checker        *AvailabilityChecker
	notifier       Notifier
	idGenerator    func() string
	now            func() time.Time
	strictApproval bool
	logger         *slog.Logger
}

// NewBookingService constructs a booking service with the provided dependencies.
func NewBookingService(bookings BookingRepository, rooms RoomRepository, tx TxRunner, checker *AvailabilityChecker, notifier Notifier, idGenerator func() string, now func() time.Time, opts ...BookingServiceOption) *BookingService {
	return NewBookingServiceWithLogger(bookings, rooms, tx, checker, notifier, idGenerator, now, nil, opts...)
}

// NewBookingServiceWithLogger constructs a booking service with a specified logger.
func NewBookingServiceWithLogger(bookings BookingRepository, rooms RoomRepository, tx TxRunner, checker *AvailabilityChecker, notifier Notifier, idGenerator func() string, now func() time.Time, logger *slog.Logger, opts ...BookingServiceOption) *BookingService {
	if tx == nil {
		tx = directTx{}
	}
	if checker == nil {
		checker = NewAvailabilityCheckerWithLogger(bookings, rooms, logger)
	}
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	s := &BookingService{
		bookings:    bookings,
		rooms:       rooms,
		tx:          tx,
		checker:     checker,
		notifier:    notifier,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *BookingService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "BookingService", operation, attrs...)
}

// CreateBooking validates input and, when every requested room is free,
// stores a pending booking. The availability check and the insert share one
// transaction.
func (s *BookingService) CreateBooking(ctx context.Context, input BookingInput) (booking Booking, err error) {
	if s == nil {
		err = fmt.Errorf("BookingService is nil")
		return
	}

	input = normalizeBookingInput(input)
	logger := s.loggerWith(ctx, "CreateBooking",
		"room_count", len(input.RoomIDs),
		"start_date", input.StartDate,
		"end_date", input.EndDate,
	)
	defer func() {
		if err != nil {
			level := slog.LevelError
			if errors.Is(err, ErrConflict) || isValidation(err) {
				level = slog.LevelInfo
			}
			logger.Log(ctx, level, "booking not created", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("booking_id", booking.ID).InfoContext(ctx, "booking created")
	}()

	if vErr := validateBookingInput(input); vErr.HasErrors() {
		err = vErr
		return
	}
	if s.bookings == nil {
		err = storeError("create booking", errors.New("booking repository not configured"))
		return
	}

	participants := input.Participants
	if participants == 0 {
		participants = 1
	}
	now := s.now()
	candidate := Booking{
		ID:           s.idGenerator(),
		EventName:    input.EventName,
		RoomIDs:      input.RoomIDs,
		StartDate:    input.StartDate,
		EndDate:      input.EndDate,
		StartTime:    input.StartTime,
		EndTime:      input.EndTime,
		Participants: participants,
		Department:   input.Department,
		Notes:        input.Notes,
		Status:       BookingPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		if vErr := s.verifyRooms(ctx, candidate.RoomIDs); vErr != nil {
			return vErr
		}
		availability, checkErr := s.checker.check(ctx, scheduler.Occupancy{RoomIDs: candidate.RoomIDs, Slot: candidate.Slot()})
		if checkErr != nil {
			return checkErr
		}
		if !availability.Available {
			return &ConflictError{Reason: availability.Reason}
		}
		persisted, createErr := s.bookings.CreateBooking(ctx, candidate)
		if createErr != nil {
			return mapBookingRepoError("create booking", createErr)
		}
		booking = persisted
		return nil
	})
	if err != nil {
		booking = Booking{}
		err = mapBookingRepoError("create booking", err)
		return
	}

	publish(ctx, s.notifier, logger, Change{Kind: ChangeBookingCreated, ID: booking.ID})
	return
}

// verifyRooms reports unknown room ids as a validation error.
func (s *BookingService) verifyRooms(ctx context.Context, roomIDs []string) error {
	if s.rooms == nil {
		return nil
	}
	for _, id := range roomIDs {
		if _, err := s.rooms.GetRoom(ctx, id); err != nil {
			if isNotFound(err) {
				vErr := &ValidationError{}
				vErr.add("rooms", fmt.Sprintf("unknown room %q", id))
				return vErr
			}
			return storeError("get room", err)
		}
	}
	return nil
}

// Approve marks a booking approved.
func (s *BookingService) Approve(ctx context.Context, id string) (Booking, error) {
	return s.transition(ctx, "Approve", id, BookingApproved, ChangeBookingApproved)
}

// Reject marks a booking rejected.
func (s *BookingService) Reject(ctx context.Context, id string) (Booking, error) {
	return s.transition(ctx, "Reject", id, BookingRejected, ChangeBookingRejected)
}

func (s *BookingService) transition(ctx context.Context, operation, id string, status BookingStatus, kind ChangeKind) (booking Booking, err error) {
	if s == nil {
		err = fmt.Errorf("BookingService is nil")
		return
	}

	logger := s.loggerWith(ctx, operation, "booking_id", id, "strict", s.strictApproval)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update booking status", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("status", string(booking.Status)).InfoContext(ctx, "booking status updated")
	}()

	if s.bookings == nil {
		err = storeError("update booking status", errors.New("booking repository not configured"))
		return
	}

	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		if s.strictApproval {
			current, getErr := s.bookings.GetBooking(ctx, id)
			if getErr != nil {
				return mapBookingRepoError("get booking", getErr)
			}
			if current.Status != BookingPending {
				return fmt.Errorf("%w: booking is %s", ErrInvalidTransition, current.Status)
			}
			if status == BookingApproved {
				availability, checkErr := s.checker.check(ctx, current.occupancy())
				if checkErr != nil {
					return checkErr
				}
				if !availability.Available {
					return &ConflictError{Reason: availability.Reason}
				}
			}
		}
		updated, updateErr := s.bookings.UpdateBookingStatus(ctx, id, status, s.now())
		if updateErr != nil {
			return mapBookingRepoError("update booking status", updateErr)
		}
		booking = updated
		return nil
	})
	if err != nil {
		booking = Booking{}
		err = mapBookingRepoError("update booking status", err)
		return
	}

	publish(ctx, s.notifier, logger, Change{Kind: kind, ID: booking.ID})
	return
}

// DeleteBooking removes a booking regardless of its status.
func (s *BookingService) DeleteBooking(ctx context.Context, id string) (err error) {
	if s == nil {
		err = fmt.Errorf("BookingService is nil")
		return
	}

	logger := s.loggerWith(ctx, "DeleteBooking", "booking_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to delete booking", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "booking deleted")
	}()

	if s.bookings == nil {
		err = storeError("delete booking", errors.New("booking repository not configured"))
		return
	}

	if err = s.bookings.DeleteBooking(ctx, id); err != nil {
		err = mapBookingRepoError("delete booking", err)
		return
	}

	publish(ctx, s.notifier, logger, Change{Kind: ChangeBookingDeleted, ID: id})
	return
}

// GetBooking returns a single booking.
func (s *BookingService) GetBooking(ctx context.Context, id string) (Booking, error) {
	if s == nil {
		return Booking{}, fmt.Errorf("BookingService is nil")
	}
	if s.bookings == nil {
		return Booking{}, ErrNotFound
	}
	booking, err := s.bookings.GetBooking(ctx, id)
	if err != nil {
		return Booking{}, mapBookingRepoError("get booking", err)
	}
	return booking, nil
}

// ListByStatus returns bookings in the given status ordered by start.
func (s *BookingService) ListByStatus(ctx context.Context, status BookingStatus) ([]Booking, error) {
	if !status.Valid() {
		vErr := &ValidationError{}
		vErr.add("status", fmt.Sprintf("unknown status %q", status))
		return nil, vErr
	}
	return s.list(ctx, "ListByStatus", BookingQuery{Status: status})
}

// ListApproved returns approved bookings, optionally limited to those whose
// date range contains filter.Date and whose rooms include filter.RoomID.
func (s *BookingService) ListApproved(ctx context.Context, filter ApprovedFilter) ([]Booking, error) {
	query := BookingQuery{Status: BookingApproved}
	if filter.Date != "" {
		if _, err := scheduler.ParseDate(filter.Date); err != nil {
			vErr := &ValidationError{}
			vErr.add("date", "date must use format YYYY-MM-DD")
			return nil, vErr
		}
		query.DateFrom = filter.Date
		query.DateTo = filter.Date
	}
	if filter.RoomID != "" {
		query.RoomIDs = []string{filter.RoomID}
	}
	return s.list(ctx, "ListApproved", query)
}

// ListAll returns every booking ordered by start.
func (s *BookingService) ListAll(ctx context.Context) ([]Booking, error) {
	return s.list(ctx, "ListAll", BookingQuery{})
}

func (s *BookingService) list(ctx context.Context, operation string, query BookingQuery) (bookings []Booking, err error) {
	if s == nil {
		err = fmt.Errorf("BookingService is nil")
		return
	}
	if s.bookings == nil {
		return nil, nil
	}

	logger := s.loggerWith(ctx, operation, "status", string(query.Status))
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list bookings", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("result_count", len(bookings)).DebugContext(ctx, "bookings listed")
	}()

	bookings, err = s.bookings.ListBookings(ctx, query)
	if err != nil {
		err = storeError("list bookings", err)
	}
	return
}

// Stats counts pending and approved bookings and rooms on demand.
func (s *BookingService) Stats(ctx context.Context) (stats Stats, err error) {
	if s == nil {
		err = fmt.Errorf("BookingService is nil")
		return
	}
	if s.bookings == nil || s.rooms == nil {
		err = storeError("stats", errors.New("repositories not configured"))
		return
	}

	if stats.Pending, err = s.bookings.CountBookings(ctx, BookingPending); err != nil {
		err = storeError("count pending bookings", err)
		return
	}
	if stats.Approved, err = s.bookings.CountBookings(ctx, BookingApproved); err != nil {
		err = storeError("count approved bookings", err)
		return
	}
	if stats.TotalRooms, err = s.rooms.CountRooms(ctx); err != nil {
		err = storeError("count rooms", err)
		return
	}
	return
}

func mapBookingRepoError(op string, err error) error {
	if err == nil {
		return nil
	}
	var (
		vErr  *ValidationError
		cErr  *ConflictError
		stErr *StoreError
	)
	switch {
	case errors.As(err, &vErr), errors.As(err, &cErr), errors.As(err, &stErr):
		return err
	case errors.Is(err, ErrInvalidTransition), errors.Is(err, ErrNotFound):
		return err
	case errors.Is(err, persistence.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, persistence.ErrForeignKeyViolation):
		v := &ValidationError{}
		v.add("rooms", "rooms must reference existing rooms")
		return v
	case errors.Is(err, persistence.ErrConstraintViolation):
		v := &ValidationError{}
		v.add("input", "booking violates a storage constraint")
		return v
	}
	return storeError(op, err)
}

func isValidation(err error) bool {
	var vErr *ValidationError
	return errors.As(err, &vErr)
}
