// Package httpapi is the thin HTTP transport over the Event and Show
// Coordinators: REST routes for events/shows/schedule plus an SSE stream of
// ChangeEvents (§6). Grounded on the teacher's internal/router package
// (ServeMux dispatch, statusRecorder, structured per-request logging)
// adapted from WebDAV method dispatch to a small REST+SSE surface.
package httpapi

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/radio-aktywne/showcaster/internal/coordinator"
	"github.com/radio-aktywne/showcaster/internal/eventbus"
)

type Handlers struct {
	events *coordinator.EventCoordinator
	shows  *coordinator.ShowCoordinator
	bus    *eventbus.Bus
	logger zerolog.Logger
}

// New builds the full HTTP handler tree described in §6.
func New(events *coordinator.EventCoordinator, shows *coordinator.ShowCoordinator, bus *eventbus.Bus, logger zerolog.Logger) http.Handler {
	h := &Handlers{events: events, shows: shows, bus: bus, logger: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", h.handleHealth)

	mux.HandleFunc("GET /events", h.handleListEvents)
	mux.HandleFunc("GET /events/{id}", h.handleGetEvent)
	mux.HandleFunc("POST /events", h.handleCreateEvent)
	mux.HandleFunc("PATCH /events/{id}", h.handleUpdateEvent)
	mux.HandleFunc("DELETE /events/{id}", h.handleDeleteEvent)

	mux.HandleFunc("GET /shows", h.handleListShows)
	mux.HandleFunc("GET /shows/{id}", h.handleGetShow)
	mux.HandleFunc("POST /shows", h.handleCreateShow)
	mux.HandleFunc("PATCH /shows/{id}", h.handleUpdateShow)
	mux.HandleFunc("DELETE /shows/{id}", h.handleDeleteShow)

	mux.HandleFunc("GET /schedule", h.handleSchedule)
	mux.HandleFunc("GET /sse", h.handleSSE)

	return withLogging(mux, logger)
}

func (h *Handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
