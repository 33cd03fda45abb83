package http

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/example/room-reservations/internal/application"
	"github.com/example/room-reservations/internal/scheduler"
)

const validToken = "valid-token"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type bookingServiceStub struct {
	created      application.BookingInput
	createResult application.Booking
	createErr    error

	transitioned string
	transitionFn func(id string, status application.BookingStatus) (application.Booking, error)

	deleted   string
	deleteErr error

	statusQueried application.BookingStatus
	approvedQuery application.ApprovedFilter
	listAllCalled bool
	listResult    []application.Booking
	listErr       error
}

func (s *bookingServiceStub) CreateBooking(_ context.Context, input application.BookingInput) (application.Booking, error) {
	s.created = input
	return s.createResult, s.createErr
}

func (s *bookingServiceStub) Approve(_ context.Context, id string) (application.Booking, error) {
	return s.transition(id, application.BookingApproved)
}

func (s *bookingServiceStub) Reject(_ context.Context, id string) (application.Booking, error) {
	return s.transition(id, application.BookingRejected)
}

func (s *bookingServiceStub) transition(id string, status application.BookingStatus) (application.Booking, error) {
	s.transitioned = id
	if s.transitionFn != nil {
		return s.transitionFn(id, status)
	}
	return application.Booking{ID: id, Status: status, RoomIDs: []string{"A"}}, nil
}

func (s *bookingServiceStub) DeleteBooking(_ context.Context, id string) error {
	s.deleted = id
	return s.deleteErr
}

func (s *bookingServiceStub) ListByStatus(_ context.Context, status application.BookingStatus) ([]application.Booking, error) {
	s.statusQueried = status
	return s.listResult, s.listErr
}

func (s *bookingServiceStub) ListApproved(_ context.Context, filter application.ApprovedFilter) ([]application.Booking, error) {
	s.approvedQuery = filter
	return s.listResult, s.listErr
}

func (s *bookingServiceStub) ListAll(context.Context) ([]application.Booking, error) {
	s.listAllCalled = true
	return s.listResult, s.listErr
}

type roomServiceStub struct {
	slot      *scheduler.Slot
	listCalls int
	rooms     []application.RoomAvailability
	listErr   error

	addedName string
	addResult application.Room
	addErr    error
}

func (s *roomServiceStub) ListRoomAvailability(_ context.Context, slot *scheduler.Slot) ([]application.RoomAvailability, error) {
	s.listCalls++
	s.slot = slot
	return s.rooms, s.listErr
}

func (s *roomServiceStub) AddRoom(_ context.Context, name string) (application.Room, error) {
	s.addedName = name
	return s.addResult, s.addErr
}

type authServiceStub struct {
	session application.AdminSession
	err     error
}

func (s authServiceStub) Login(_ context.Context, username, password string) (application.AdminSession, error) {
	if s.err != nil {
		return application.AdminSession{}, s.err
	}
	if username != "admin" || password != "secret" {
		return application.AdminSession{}, application.ErrInvalidCredentials
	}
	return s.session, nil
}

type sessionValidatorStub struct {
	err error
}

func (s sessionValidatorStub) ValidateSession(_ context.Context, token string) (application.Principal, error) {
	if s.err != nil {
		return application.Principal{}, s.err
	}
	if token != validToken {
		return application.Principal{}, application.ErrInvalidCredentials
	}
	return application.Principal{UserID: "admin", IsAdmin: true}, nil
}

type statsServiceStub struct {
	stats application.Stats
	err   error
}

func (s statsServiceStub) Stats(context.Context) (application.Stats, error) {
	return s.stats, s.err
}

type pingerStub struct {
	err error
}

func (p pingerStub) Ping(context.Context) error { return p.err }

var errStoreDown = errors.New("store down")

type testAPI struct {
	handler  http.Handler
	bookings *bookingServiceStub
	rooms    *roomServiceStub
}

func newTestAPI() *testAPI {
	bookings := &bookingServiceStub{}
	rooms := &roomServiceStub{}
	logger := discardLogger()
	expires := time.Date(2024, time.March, 1, 21, 0, 0, 0, time.UTC)

	handler := NewRouter(RouterConfig{
		Auth: NewAuthHandler(authServiceStub{session: application.AdminSession{
			Token:     validToken,
			ExpiresAt: expires,
			Principal: application.Principal{UserID: "admin", IsAdmin: true},
		}}, logger),
		Rooms:    NewRoomHandler(rooms, logger),
		Bookings: NewBookingHandler(bookings, logger),
		Stats: NewStatsHandler(statsServiceStub{stats: application.Stats{Pending: 2, Approved: 1, TotalRooms: 5}},
			pingerStub{}, logger),
		Sessions: sessionValidatorStub{},
		Logger:   logger,
	})
	return &testAPI{handler: handler, bookings: bookings, rooms: rooms}
}

func newRequest(method, target, body string) *http.Request {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

func asAdmin(req *http.Request) *http.Request {
	req.Header.Set("Authorization", "Bearer "+validToken)
	return req
}
