package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/teamlance/engine/internal/relay"
	"github.com/teamlance/engine/internal/services"
)

type EventsHandler struct {
	projects services.ProjectService
	hub      *relay.Hub
}

func NewEventsHandler(projects services.ProjectService, hub *relay.Hub) *EventsHandler {
	return &EventsHandler{projects: projects, hub: hub}
}

// Stream serves project state deltas over SSE. Delivery is best-effort; a
// client that misses events resyncs through the project snapshot endpoint.
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	projectID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeErrorStr(w, http.StatusBadRequest, "invalid project id")
		return
	}
	ownerID, ok := authedUserID(r)
	if !ok {
		writeErrorStr(w, http.StatusUnauthorized, "invalid user")
		return
	}
	if _, err := h.projects.GetProject(r.Context(), projectID, ownerID); err != nil {
		writeError(w, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeErrorStr(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	events, unsub := h.hub.Subscribe(projectID)
	defer unsub()

	keepalive := time.NewTicker(25 * time.Second)
	defer keepalive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-keepalive.C:
			fmt.Fprint(w, ": keepalive\n\n")
			flusher.Flush()
		case ev, open := <-events:
			if !open {
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, data)
			flusher.Flush()
		}
	}
}
