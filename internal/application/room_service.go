package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/room-reservations/internal/persistence"
	"github.com/example/room-reservations/internal/scheduler"
)

// DefaultRoomNames is the catalog seeded when no seed file is configured.
var DefaultRoomNames = []string{
	"CSSE Conference Hall 1",
	"CSSE Conference Hall 2",
	"ARES",
	"OSCE",
	"Board Room",
}

// RoomService manages the room catalog.
type RoomService struct {
	rooms       RoomRepository
	checker     *AvailabilityChecker
	notifier    Notifier
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewRoomService constructs a room service with the provided dependencies.
func NewRoomService(rooms RoomRepository, checker *AvailabilityChecker, notifier Notifier, idGenerator func() string, now func() time.Time) *RoomService {
	return NewRoomServiceWithLogger(rooms, checker, notifier, idGenerator, now, nil)
}

// NewRoomServiceWithLogger constructs a room service with a specified logger.
func NewRoomServiceWithLogger(rooms RoomRepository, checker *AvailabilityChecker, notifier Notifier, idGenerator func() string, now func() time.Time, logger *slog.Logger) *RoomService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &RoomService{
		rooms:       rooms,
		checker:     checker,
		notifier:    notifier,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *RoomService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "RoomService", operation, attrs...)
}

// ListRooms returns every room in creation order.
func (s *RoomService) ListRooms(ctx context.Context) (rooms []Room, err error) {
	if s == nil {
		err = fmt.Errorf("RoomService is nil")
		return
	}
	if s.rooms == nil {
		return nil, nil
	}

	logger := s.loggerWith(ctx, "ListRooms")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list rooms", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("result_count", len(rooms)).DebugContext(ctx, "rooms listed")
	}()

	rooms, err = s.rooms.ListRooms(ctx)
	if err != nil {
		err = storeError("list rooms", err)
	}
	return
}

// ListRoomAvailability lists every room. With a slot each room is checked
// individually and a failed check marks that room unavailable; without one
// the stored default flag is reported.
func (s *RoomService) ListRoomAvailability(ctx context.Context, slot *scheduler.Slot) ([]RoomAvailability, error) {
	rooms, err := s.ListRooms(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]RoomAvailability, 0, len(rooms))
	for _, room := range rooms {
		if slot == nil {
			out = append(out, RoomAvailability{Room: room, Available: room.Available})
			continue
		}
		result, checkErr := s.checker.Check(ctx, []string{room.ID}, *slot)
		if checkErr != nil {
			s.loggerWith(ctx, "ListRoomAvailability", "room_id", room.ID).
				WarnContext(ctx, "room availability check failed", "error", checkErr)
		}
		out = append(out, RoomAvailability{Room: room, Available: result.Available, Reason: result.Reason})
	}
	return out, nil
}

// AddRoom creates an available room with a new identifier.
func (s *RoomService) AddRoom(ctx context.Context, name string) (room Room, err error) {
	if s == nil {
		err = fmt.Errorf("RoomService is nil")
		return
	}

	logger := s.loggerWith(ctx, "AddRoom")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to add room", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("room_id", room.ID).InfoContext(ctx, "room created")
	}()

	if vErr := validateRoomName(name); vErr.HasErrors() {
		err = vErr
		return
	}

	room, err = s.create(ctx, strings.TrimSpace(name))
	if err != nil {
		return
	}
	publish(ctx, s.notifier, logger, Change{Kind: ChangeRoomCreated, ID: room.ID})
	return
}

// EnsureDefaults creates every named room that does not exist yet. Matching
// is by exact name, so repeated calls create nothing.
func (s *RoomService) EnsureDefaults(ctx context.Context, names []string) (created int, err error) {
	if s == nil {
		err = fmt.Errorf("RoomService is nil")
		return
	}
	if s.rooms == nil {
		err = storeError("ensure default rooms", errors.New("room repository not configured"))
		return
	}

	logger := s.loggerWith(ctx, "EnsureDefaults", "requested", len(names))
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to seed rooms", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("created", created).InfoContext(ctx, "default rooms ensured")
	}()

	var existing []Room
	existing, err = s.rooms.ListRooms(ctx)
	if err != nil {
		err = storeError("list rooms", err)
		return
	}
	known := make(map[string]struct{}, len(existing))
	for _, room := range existing {
		known[room.Name] = struct{}{}
	}

	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, ok := known[name]; ok {
			continue
		}
		if _, err = s.create(ctx, name); err != nil {
			return
		}
		known[name] = struct{}{}
		created++
	}
	return
}

func (s *RoomService) create(ctx context.Context, name string) (Room, error) {
	if s.rooms == nil {
		return Room{}, storeError("create room", errors.New("room repository not configured"))
	}
	room := Room{
		ID:        s.idGenerator(),
		Name:      name,
		Available: true,
		CreatedAt: s.now(),
	}
	persisted, err := s.rooms.CreateRoom(ctx, room)
	if err != nil {
		return Room{}, mapRoomRepoError(err)
	}
	return persisted, nil
}

func mapRoomRepoError(err error) error {
	if err == nil {
		return nil
	}
	if isNotFound(err) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrConstraintViolation) {
		vErr := &ValidationError{}
		vErr.add("name", "name is required")
		return vErr
	}
	return storeError("create room", err)
}
