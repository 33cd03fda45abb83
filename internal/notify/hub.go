// Package notify delivers committed reservation changes to websocket
// subscribers, optionally fanning them out across instances through Redis.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"runtime"

	"github.com/olahol/melody"

	"github.com/example/room-reservations/internal/application"
)

// UpdateEvent is the event name carried by every frame.
const UpdateEvent = "update_events"

// Frame is the JSON message sent to subscribers.
type Frame struct {
	Event string `json:"event"`
	Kind  string `json:"kind"`
	ID    string `json:"id,omitempty"`
}

// EncodeChange renders change as a subscriber frame.
func EncodeChange(change application.Change) ([]byte, error) {
	data, err := json.Marshal(Frame{Event: UpdateEvent, Kind: string(change.Kind), ID: change.ID})
	if err != nil {
		return nil, fmt.Errorf("notify: encode change: %w", err)
	}
	return data, nil
}

// Hub broadcasts frames to every connected websocket session. Delivery is
// at-most-once and nothing is replayed to late subscribers.
type Hub struct {
	m      *melody.Melody
	logger *slog.Logger
}

// NewHub constructs a hub that accepts publishes as soon as it returns.
// Messages sent by clients are ignored.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "notify.Hub")

	m := melody.New()
	m.HandleConnect(func(s *melody.Session) {
		logger.Debug("subscriber connected", "remote_addr", s.Request.RemoteAddr)
	})
	m.HandleDisconnect(func(s *melody.Session) {
		logger.Debug("subscriber disconnected", "remote_addr", s.Request.RemoteAddr)
	})
	m.HandleError(func(s *melody.Session, err error) {
		logger.Debug("subscriber connection error", "remote_addr", s.Request.RemoteAddr, "error", err)
	})
	// melody opens its hub from a goroutine; broadcasts fail until it has.
	for m.IsClosed() {
		runtime.Gosched()
	}
	return &Hub{m: m, logger: logger}
}

// ServeHTTP upgrades the request and keeps the session open until the
// client goes away.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := h.m.HandleRequest(w, r); err != nil {
		h.logger.WarnContext(r.Context(), "websocket upgrade failed", "error", err)
	}
}

// Publish implements application.Notifier.
func (h *Hub) Publish(ctx context.Context, change application.Change) error {
	data, err := EncodeChange(change)
	if err != nil {
		return err
	}
	return h.Broadcast(data)
}

// Broadcast sends an encoded frame to every session.
func (h *Hub) Broadcast(data []byte) error {
	if err := h.m.Broadcast(data); err != nil {
		return fmt.Errorf("notify: broadcast: %w", err)
	}
	return nil
}

// Subscribers returns the number of connected sessions.
func (h *Hub) Subscribers() int {
	return h.m.Len()
}

// Close disconnects every session. Publishes after Close returns fail.
func (h *Hub) Close() error {
	if err := h.m.Close(); err != nil {
		return err
	}
	for !h.m.IsClosed() {
		runtime.Gosched()
	}
	return nil
}
