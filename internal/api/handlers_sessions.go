package api

import (
	"net/http"

	"github.com/iammorganparry/pof-dashboard/internal/dashboard"
)

// SessionHandler serves read-only session views.
type SessionHandler struct {
	svc *dashboard.Service
}

func NewSessionHandler(svc *dashboard.Service) *SessionHandler {
	return &SessionHandler{svc: svc}
}

// List handles GET /api/sessions
func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Sessions())
}

// State handles GET /api/state. With ?session= it returns that session
// or 404; without it, every session.
func (h *SessionHandler) State(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		writeJSON(w, http.StatusOK, h.svc.Snapshot())
		return
	}

	state, err := h.svc.State(sessionID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}
