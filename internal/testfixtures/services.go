package testfixtures

import (
	"log/slog"
	"time"

	"github.com/example/room-reservations/internal/application"
)

// ServiceFactory assists tests with constructing application services using
// deterministic identifiers and clocks.
type ServiceFactory struct {
	Clock       *Clock
	IDGenerator *IDGenerator
}

// ServiceFactoryOption configures a ServiceFactory instance.
type ServiceFactoryOption func(*ServiceFactory)

// NewServiceFactory constructs a ServiceFactory with defaults.
func NewServiceFactory(opts ...ServiceFactoryOption) *ServiceFactory {
	factory := &ServiceFactory{
		Clock:       NewClock(time.Time{}),
		IDGenerator: NewIDGenerator("id"),
	}
	for _, opt := range opts {
		opt(factory)
	}
	if factory.Clock == nil {
		factory.Clock = NewClock(time.Time{})
	}
	if factory.IDGenerator == nil {
		factory.IDGenerator = NewIDGenerator("id")
	}
	return factory
}

// WithClock overrides the clock used by the factory.
func WithClock(clock *Clock) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Clock = clock
	}
}

// WithIDGenerator overrides the identifier generator used by the factory.
func WithIDGenerator(generator *IDGenerator) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.IDGenerator = generator
	}
}

// RoomServiceDeps captures dependencies for constructing a room service.
type RoomServiceDeps struct {
	Rooms    application.RoomRepository
	Checker  *application.AvailabilityChecker
	Notifier application.Notifier
	Logger   *slog.Logger
}

// NewRoomService builds a room service using the factory's ids and clock.
func (f *ServiceFactory) NewRoomService(deps RoomServiceDeps) *application.RoomService {
	return application.NewRoomServiceWithLogger(
		deps.Rooms,
		deps.Checker,
		deps.Notifier,
		f.IDGenerator.NextFunc(),
		f.Clock.NowFunc(),
		deps.Logger,
	)
}

// BookingServiceDeps captures dependencies for constructing a booking service.
type BookingServiceDeps struct {
	Bookings       application.BookingRepository
	Rooms          application.RoomRepository
	Tx             application.TxRunner
	Notifier       application.Notifier
	StrictApproval bool
	Logger         *slog.Logger
}

// NewBookingService builds a booking service using the factory's ids and clock.
func (f *ServiceFactory) NewBookingService(deps BookingServiceDeps) *application.BookingService {
	checker := application.NewAvailabilityCheckerWithLogger(deps.Bookings, deps.Rooms, deps.Logger)
	return application.NewBookingServiceWithLogger(
		deps.Bookings,
		deps.Rooms,
		deps.Tx,
		checker,
		deps.Notifier,
		f.IDGenerator.NextFunc(),
		f.Clock.NowFunc(),
		deps.Logger,
		application.WithStrictApproval(deps.StrictApproval),
	)
}

// Services bundles the services wired against one SQLite harness.
type Services struct {
	Rooms    *application.RoomService
	Bookings *application.BookingService
	Checker  *application.AvailabilityChecker
}

// NewSQLiteServices wires room and booking services to h.
func (f *ServiceFactory) NewSQLiteServices(h *SQLiteHarness, notifier application.Notifier, strict bool) Services {
	checker := application.NewAvailabilityChecker(h.Bookings, h.Rooms)
	return Services{
		Rooms: f.NewRoomService(RoomServiceDeps{Rooms: h.Rooms, Checker: checker, Notifier: notifier}),
		Bookings: f.NewBookingService(BookingServiceDeps{
			Bookings:       h.Bookings,
			Rooms:          h.Rooms,
			Tx:             h.Store,
			Notifier:       notifier,
			StrictApproval: strict,
		}),
		Checker: checker,
	}
}
