package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/example/room-reservations/internal/application"
)

type bookingService interface {
	CreateBooking(ctx context.Context, input application.BookingInput) (application.Booking, error)
	Approve(ctx context.Context, id string) (application.Booking, error)
	Reject(ctx context.Context, id string) (application.Booking, error)
	DeleteBooking(ctx context.Context, id string) error
	ListByStatus(ctx context.Context, status application.BookingStatus) ([]application.Booking, error)
	ListApproved(ctx context.Context, filter application.ApprovedFilter) ([]application.Booking, error)
	ListAll(ctx context.Context) ([]application.Booking, error)
}

type BookingHandler struct {
	service   bookingService
	responder responder
	logger    *slog.Logger
}

func NewBookingHandler(service bookingService, logger *slog.Logger) *BookingHandler {
	base := defaultLogger(logger)
	return &BookingHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *BookingHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "BookingHandler", operation, attrs...)
}

func (h *BookingHandler) ready(w http.ResponseWriter) bool {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return false
	}
	return true
}

// Create submits a booking request. New bookings start pending.
func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}

	var req bookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode booking request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create", "room_count", len(req.Rooms))

	booking, err := h.service.CreateBooking(r.Context(), req.toInput())
	if err != nil {
		logger.WarnContext(r.Context(), "booking rejected", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("booking_id", booking.ID).InfoContext(r.Context(), "booking submitted")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, createBookingResponse{
		ID:      booking.ID,
		Booking: toBookingDTO(booking),
	})
}

// ListPending returns every pending booking.
func (h *BookingHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	bookings, err := h.service.ListByStatus(r.Context(), application.BookingPending)
	h.writeList(w, r, "ListPending", bookings, err)
}

// ListApproved returns approved bookings, optionally narrowed by the date
// and room query parameters.
func (h *BookingHandler) ListApproved(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	q := r.URL.Query()
	bookings, err := h.service.ListApproved(r.Context(), application.ApprovedFilter{
		Date:   strings.TrimSpace(q.Get("date")),
		RoomID: strings.TrimSpace(q.Get("room")),
	})
	h.writeList(w, r, "ListApproved", bookings, err)
}

// ListAdmin returns every booking, or those in the status query parameter.
func (h *BookingHandler) ListAdmin(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	var (
		bookings []application.Booking
		err      error
	)
	if status := strings.TrimSpace(r.URL.Query().Get("status")); status != "" {
		bookings, err = h.service.ListByStatus(r.Context(), application.BookingStatus(strings.ToLower(status)))
	} else {
		bookings, err = h.service.ListAll(r.Context())
	}
	h.writeList(w, r, "ListAdmin", bookings, err)
}

func (h *BookingHandler) writeList(w http.ResponseWriter, r *http.Request, operation string, bookings []application.Booking, err error) {
	logger := h.log(r.Context(), operation)
	if err != nil {
		logger.ErrorContext(r.Context(), "booking listing failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	dtos := make([]bookingDTO, 0, len(bookings))
	for _, b := range bookings {
		dtos = append(dtos, toBookingDTO(b))
	}
	logger.With("result_count", len(dtos)).DebugContext(r.Context(), "bookings listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, dtos)
}

// Approve marks the requested booking approved.
func (h *BookingHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "Approve", func(svc bookingService, ctx context.Context, id string) (application.Booking, error) {
		return svc.Approve(ctx, id)
	})
}

// Reject marks the requested booking rejected.
func (h *BookingHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "Reject", func(svc bookingService, ctx context.Context, id string) (application.Booking, error) {
		return svc.Reject(ctx, id)
	})
}

func (h *BookingHandler) transition(w http.ResponseWriter, r *http.Request, operation string, apply func(bookingService, context.Context, string) (application.Booking, error)) {
	if !h.ready(w) {
		return
	}

	id, ok := bookingIDFromRequest(r)
	if !ok {
		h.log(r.Context(), operation, "error_kind", "bad_request").ErrorContext(r.Context(), "missing booking id")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errMissingBookingID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), operation, "booking_id", id, "principal_id", principal.UserID)

	booking, err := apply(h.service, r.Context(), id)
	if err != nil {
		logger.ErrorContext(r.Context(), "booking status change failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("status", string(booking.Status)).InfoContext(r.Context(), "booking status changed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, bookingResponse{Booking: toBookingDTO(booking)})
}

// Delete removes the requested booking regardless of its status.
func (h *BookingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}

	id, ok := bookingIDFromRequest(r)
	if !ok {
		h.log(r.Context(), "Delete", "error_kind", "bad_request").ErrorContext(r.Context(), "missing booking id")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errMissingBookingID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Delete", "booking_id", id, "principal_id", principal.UserID)

	if err := h.service.DeleteBooking(r.Context(), id); err != nil {
		logger.ErrorContext(r.Context(), "booking deletion failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "booking deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

// bookingIDFromRequest reads the id from the path, or from a {"id": ...}
// body on the routes that carry it there.
func bookingIDFromRequest(r *http.Request) (string, bool) {
	if id := strings.TrimSpace(mux.Vars(r)["id"]); id != "" {
		return id, true
	}
	if r.Body == nil {
		return "", false
	}
	var body struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return "", false
	}
	id := strings.TrimSpace(body.ID)
	return id, id != ""
}

type bookingRequest struct {
	EventName    string   `json:"eventName"`
	Rooms        []string `json:"rooms"`
	StartDate    string   `json:"startDate"`
	EndDate      string   `json:"endDate"`
	StartTime    string   `json:"startTime"`
	EndTime      string   `json:"endTime"`
	Participants int      `json:"participants"`
	Department   string   `json:"department"`
	Notes        string   `json:"notes"`
}

func (r bookingRequest) toInput() application.BookingInput {
	return application.BookingInput{
		EventName:    r.EventName,
		RoomIDs:      r.Rooms,
		StartDate:    r.StartDate,
		EndDate:      r.EndDate,
		StartTime:    r.StartTime,
		EndTime:      r.EndTime,
		Participants: r.Participants,
		Department:   r.Department,
		Notes:        r.Notes,
	}
}

type bookingDTO struct {
	ID           string   `json:"id"`
	EventName    string   `json:"eventName"`
	Rooms        []string `json:"rooms"`
	StartDate    string   `json:"startDate"`
	EndDate      string   `json:"endDate"`
	StartTime    string   `json:"startTime"`
	EndTime      string   `json:"endTime"`
	Participants int      `json:"participants"`
	Department   string   `json:"department,omitempty"`
	Notes        string   `json:"notes,omitempty"`
	Status       string   `json:"status"`
	CreatedAt    string   `json:"createdAt"`
	UpdatedAt    string   `json:"updatedAt,omitempty"`
}

type bookingResponse struct {
	Booking bookingDTO `json:"booking"`
}

type createBookingResponse struct {
	ID      string     `json:"id"`
	Booking bookingDTO `json:"booking"`
}

func toBookingDTO(b application.Booking) bookingDTO {
	rooms := b.RoomIDs
	if rooms == nil {
		rooms = []string{}
	}
	dto := bookingDTO{
		ID:           b.ID,
		EventName:    b.EventName,
		Rooms:        rooms,
		StartDate:    b.StartDate,
		EndDate:      b.EndDate,
		StartTime:    b.StartTime,
		EndTime:      b.EndTime,
		Participants: b.Participants,
		Department:   b.Department,
		Notes:        b.Notes,
		Status:       string(b.Status),
		CreatedAt:    b.CreatedAt.UTC().Format(time.RFC3339),
	}
	if !b.UpdatedAt.IsZero() {
		dto.UpdatedAt = b.UpdatedAt.UTC().Format(time.RFC3339)
	}
	return dto
}
