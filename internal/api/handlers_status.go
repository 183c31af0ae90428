package api

import (
	"net/http"

	"github.com/iammorganparry/pof-dashboard/internal/dashboard"
	"github.com/iammorganparry/pof-dashboard/internal/models"
)

type StatusHandler struct {
	svc *dashboard.Service
}

func NewStatusHandler(svc *dashboard.Service) *StatusHandler {
	return &StatusHandler{svc: svc}
}

// Post handles POST /api/status
func (h *StatusHandler) Post(w http.ResponseWriter, r *http.Request) {
	var req models.StatusUpdate
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	if _, err := h.svc.PostStatus(req, r.URL.Query().Get("session")); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, models.OKResponse{OK: true})
}
