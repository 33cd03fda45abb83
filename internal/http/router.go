package http

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
)

type RouterConfig struct {
	Auth     *AuthHandler
	Rooms    *RoomHandler
	Bookings *BookingHandler
	Stats    *StatsHandler
	// Events serves the websocket change feed.
	Events     http.Handler
	Sessions   SessionValidator
	Logger     *slog.Logger
	Middleware []func(http.Handler) http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()
	base := defaultLogger(cfg.Logger)
	notFound := newResponder(base)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		notFound.writeJSON(req.Context(), w, http.StatusNotFound, errorResponse{Message: statusMessage(http.StatusNotFound)})
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		notFound.writeJSON(req.Context(), w, http.StatusMethodNotAllowed, errorResponse{Message: http.StatusText(http.StatusMethodNotAllowed)})
	})

	requireAdmin := func(h http.Handler) http.Handler {
		if cfg.Sessions == nil {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				notFound.writeJSON(req.Context(), w, http.StatusForbidden, errorResponse{
					ErrorCode: "AUTH_FORBIDDEN",
					Message:   statusMessage(http.StatusForbidden),
				})
			})
		}
		return RequireSession(cfg.Sessions, base)(h)
	}

	if cfg.Rooms != nil {
		r.HandleFunc("/rooms", cfg.Rooms.List).Methods(http.MethodGet)
		r.Handle("/rooms", requireAdmin(http.HandlerFunc(cfg.Rooms.Create))).Methods(http.MethodPost)
		r.Handle("/rooms/add", requireAdmin(http.HandlerFunc(cfg.Rooms.Create))).Methods(http.MethodPost)
	}

	if cfg.Bookings != nil {
		r.HandleFunc("/bookings", cfg.Bookings.Create).Methods(http.MethodPost)
		r.HandleFunc("/bookings/pending", cfg.Bookings.ListPending).Methods(http.MethodGet)
		r.HandleFunc("/bookings/approved", cfg.Bookings.ListApproved).Methods(http.MethodGet)

		// Paths used by the original web client.
		r.HandleFunc("/book", cfg.Bookings.Create).Methods(http.MethodPost)
		r.HandleFunc("/pending", cfg.Bookings.ListPending).Methods(http.MethodGet)
		r.HandleFunc("/approved", cfg.Bookings.ListApproved).Methods(http.MethodGet)
	}

	if cfg.Stats != nil {
		r.HandleFunc("/stats", cfg.Stats.Stats).Methods(http.MethodGet)
		r.HandleFunc("/healthz", cfg.Stats.Health).Methods(http.MethodGet)
	}

	if cfg.Events != nil {
		r.Handle("/ws", cfg.Events).Methods(http.MethodGet)
	}

	if cfg.Auth != nil {
		r.HandleFunc("/admin/login", cfg.Auth.Login).Methods(http.MethodPost)
		r.HandleFunc("/admin/logout", cfg.Auth.Logout).Methods(http.MethodPost)
	}

	if cfg.Bookings != nil {
		admin := r.PathPrefix("/admin").Subrouter()
		admin.Use(requireAdmin)
		admin.HandleFunc("/bookings", cfg.Bookings.ListAdmin).Methods(http.MethodGet)
		admin.HandleFunc("/bookings/{id}/approve", cfg.Bookings.Approve).Methods(http.MethodPost)
		admin.HandleFunc("/bookings/{id}/reject", cfg.Bookings.Reject).Methods(http.MethodPost)
		admin.HandleFunc("/bookings/{id}", cfg.Bookings.Delete).Methods(http.MethodDelete)
		admin.HandleFunc("/approve", cfg.Bookings.Approve).Methods(http.MethodPost)
		admin.HandleFunc("/approve/{id}", cfg.Bookings.Approve).Methods(http.MethodPost)
		admin.HandleFunc("/reject", cfg.Bookings.Reject).Methods(http.MethodPost)
		admin.HandleFunc("/reject/{id}", cfg.Bookings.Reject).Methods(http.MethodPost)
		admin.HandleFunc("/delete", cfg.Bookings.Delete).Methods(http.MethodPost)
	}

	var handler http.Handler = r
	for i := len(cfg.Middleware) - 1; i >= 0; i-- {
		if cfg.Middleware[i] != nil {
			handler = cfg.Middleware[i](handler)
		}
	}

	return handler
}
