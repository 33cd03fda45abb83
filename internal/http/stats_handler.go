package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/example/room-reservations/internal/application"
)

type statsService interface {
	Stats(ctx context.Context) (application.Stats, error)
}

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type StatsHandler struct {
	service   statsService
	store     Pinger
	responder responder
	logger    *slog.Logger
}

func NewStatsHandler(service statsService, store Pinger, logger *slog.Logger) *StatsHandler {
	base := defaultLogger(logger)
	return &StatsHandler{service: service, store: store, responder: newResponder(base), logger: base}
}

func (h *StatsHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "StatsHandler", operation, attrs...)
}

// Stats reports the pending and approved booking counts and the room total.
func (h *StatsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	stats, err := h.service.Stats(r.Context())
	if err != nil {
		h.log(r.Context(), "Stats").ErrorContext(r.Context(), "stats failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, statsResponse{
		Pending:    stats.Pending,
		Approved:   stats.Approved,
		TotalRooms: stats.TotalRooms,
	})
}

// Health pings the store with a short deadline.
func (h *StatsHandler) Health(w http.ResponseWriter, r *http.Request) {
	if h == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	if h.store == nil {
		h.responder.writeJSON(r.Context(), w, http.StatusOK, healthResponse{Status: "ok"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		h.log(r.Context(), "Health").ErrorContext(r.Context(), "store ping failed", "error", err)
		h.responder.writeJSON(r.Context(), w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable"})
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, healthResponse{Status: "ok"})
}

type statsResponse struct {
	Pending    int `json:"pending"`
	Approved   int `json:"approved"`
	TotalRooms int `json:"total_rooms"`
}

type healthResponse struct {
	Status string `json:"status"`
}
