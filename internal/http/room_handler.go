package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/example/room-reservations/internal/application"
	"github.com/example/room-reservations/internal/scheduler"
)

type roomService interface {
	ListRoomAvailability(ctx context.Context, slot *scheduler.Slot) ([]application.RoomAvailability, error)
	AddRoom(ctx context.Context, name string) (application.Room, error)
}

type RoomHandler struct {
	service   roomService
	responder responder
	logger    *slog.Logger
}

func NewRoomHandler(service roomService, logger *slog.Logger) *RoomHandler {
	base := defaultLogger(logger)
	return &RoomHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *RoomHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "RoomHandler", operation, attrs...)
}

// List returns every room. When startDate, endDate, startTime and endTime
// are all given, each room's availability is computed for that slot.
func (h *RoomHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	slot, fieldErrors := slotFromQuery(r.URL.Query())
	if len(fieldErrors) > 0 {
		h.log(r.Context(), "List", "error_kind", "validation").WarnContext(r.Context(), "invalid availability query", "errors", fieldErrors)
		h.responder.handleServiceError(r.Context(), w, &application.ValidationError{FieldErrors: fieldErrors})
		return
	}

	logger := h.log(r.Context(), "List")
	if slot != nil {
		logger = logger.With("slot", slot.String())
	}

	rooms, err := h.service.ListRoomAvailability(r.Context(), slot)
	if err != nil {
		logger.ErrorContext(r.Context(), "room listing failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	dtos := make([]roomDTO, 0, len(rooms))
	for _, ra := range rooms {
		dto := toRoomDTO(ra.Room)
		dto.Available = ra.Available
		dto.Reason = ra.Reason
		dtos = append(dtos, dto)
	}

	logger.With("result_count", len(dtos)).DebugContext(r.Context(), "rooms listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, dtos)
}

// Create adds a room to the catalog.
func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req roomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "principal_id", principal.UserID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode room request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create", "principal_id", principal.UserID)

	room, err := h.service.AddRoom(r.Context(), req.Name)
	if err != nil {
		logger.ErrorContext(r.Context(), "room creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("room_id", room.ID).InfoContext(r.Context(), "room created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, roomResponse{Room: toRoomDTO(room)})
}

type roomRequest struct {
	Name string `json:"name"`
}

type roomDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
}

type roomResponse struct {
	Room roomDTO `json:"room"`
}

func toRoomDTO(room application.Room) roomDTO {
	dto := roomDTO{ID: room.ID, Name: room.Name, Available: room.Available}
	if !room.CreatedAt.IsZero() {
		dto.CreatedAt = room.CreatedAt.UTC().Format(time.RFC3339)
	}
	return dto
}

// slotFromQuery returns nil when none of the slot parameters are present.
// A partial or malformed slot is reported per field.
func slotFromQuery(q url.Values) (*scheduler.Slot, map[string]string) {
	keys := []string{"startDate", "endDate", "startTime", "endTime"}
	values := make(map[string]string, len(keys))
	present := 0
	for _, key := range keys {
		values[key] = strings.TrimSpace(q.Get(key))
		if values[key] != "" {
			present++
		}
	}
	if present == 0 {
		return nil, nil
	}

	fieldErrors := make(map[string]string)
	for _, key := range keys {
		v := values[key]
		switch {
		case v == "":
			fieldErrors[key] = key + " is required when filtering by slot"
		case strings.HasSuffix(key, "Date"):
			if _, err := scheduler.ParseDate(v); err != nil {
				fieldErrors[key] = key + " must be a date in YYYY-MM-DD format"
			}
		default:
			if _, err := scheduler.ParseClock(v); err != nil {
				fieldErrors[key] = key + " must be a time in HH:MM format"
			}
		}
	}
	if len(fieldErrors) == 0 {
		if values["endDate"] < values["startDate"] {
			fieldErrors["endDate"] = "endDate must not be before startDate"
		}
		if values["endTime"] <= values["startTime"] {
			fieldErrors["endTime"] = "endTime must be after startTime"
		}
	}
	if len(fieldErrors) > 0 {
		return nil, fieldErrors
	}

	return &scheduler.Slot{
		Dates: scheduler.DateRange{Start: values["startDate"], End: values["endDate"]},
		Times: scheduler.TimeRange{Start: values["startTime"], End: values["endTime"]},
	}, nil
}
