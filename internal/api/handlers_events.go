package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/iammorganparry/pof-dashboard/internal/dashboard"
)

// EventsHandler streams dashboard events to observers.
type EventsHandler struct {
	svc    *dashboard.Service
	logger *slog.Logger
}

func NewEventsHandler(svc *dashboard.Service, logger *slog.Logger) *EventsHandler {
	return &EventsHandler{svc: svc, logger: logger}
}

// Stream handles GET /api/events. The first frame is the init snapshot;
// the stream stays open until the client disconnects or the server stops.
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	rc := http.NewResponseController(w)
	// Streams are long-lived; lift any server-wide write deadline.
	if err := rc.SetWriteDeadline(time.Time{}); err != nil {
		h.logger.Debug("clear write deadline", "error", err)
	}

	sub, err := h.svc.Subscribe(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	for frame := range sub.Frames() {
		if _, err := w.Write(frame); err != nil {
			h.logger.Debug("event stream write failed", "error", err)
			return
		}
		if err := rc.Flush(); err != nil {
			h.logger.Debug("event stream flush failed", "error", err)
			return
		}
	}
}
