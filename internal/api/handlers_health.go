package api

import (
	"math"
	"net/http"

	"github.com/iammorganparry/pof-dashboard/internal/dashboard"
	"github.com/iammorganparry/pof-dashboard/internal/models"
)

type HealthHandler struct {
	svc  *dashboard.Service
	page []byte
}

func NewHealthHandler(svc *dashboard.Service, page []byte) *HealthHandler {
	return &HealthHandler{svc: svc, page: page}
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.HealthResponse{
		OK:       true,
		Uptime:   int64(math.Round(h.svc.Uptime().Seconds())),
		Clients:  h.svc.Clients(),
		Sessions: h.svc.SessionCount(),
	})
}

// Index handles GET / and GET /index.html
func (h *HealthHandler) Index(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(h.page)
}
