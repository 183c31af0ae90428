package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/iammorganparry/pof-dashboard/internal/dashboard"
	"github.com/iammorganparry/pof-dashboard/internal/models"
)

// shutdownDelay gives the shutdown response and event time to reach
// clients before the server stops.
const shutdownDelay = 100 * time.Millisecond

type AdminHandler struct {
	svc      *dashboard.Service
	shutdown func()
	logger   *slog.Logger
}

func NewAdminHandler(svc *dashboard.Service, shutdown func(), logger *slog.Logger) *AdminHandler {
	return &AdminHandler{svc: svc, shutdown: shutdown, logger: logger}
}

// Reset handles POST /api/reset. ?session= clears one session; without
// it every session is cleared.
func (h *AdminHandler) Reset(w http.ResponseWriter, r *http.Request) {
	h.svc.Reset(r.URL.Query().Get("session"))
	writeJSON(w, http.StatusOK, models.OKResponse{OK: true})
}

// Shutdown handles POST /api/shutdown
func (h *AdminHandler) Shutdown(w http.ResponseWriter, r *http.Request) {
	h.logger.Info("shutdown requested", "remote", r.RemoteAddr)
	h.svc.AnnounceShutdown()
	writeJSON(w, http.StatusOK, models.OKResponse{OK: true})

	if h.shutdown != nil {
		time.AfterFunc(shutdownDelay, h.shutdown)
	}
}
