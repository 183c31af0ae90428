package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iammorganparry/pof-dashboard/internal/dashboard"
)

// NewRouter creates the Chi router with all routes and middleware.
// shutdown is called shortly after POST /api/shutdown has been answered.
func NewRouter(svc *dashboard.Service, page []byte, shutdown func(), logger *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(CORS)
	r.Use(RequestID)
	r.Use(Logger(logger))
	r.Use(Recovery(logger))

	healthH := NewHealthHandler(svc, page)
	sessionH := NewSessionHandler(svc)
	statusH := NewStatusHandler(svc)
	questionH := NewQuestionHandler(svc)
	eventsH := NewEventsHandler(svc, logger)
	adminH := NewAdminHandler(svc, shutdown, logger)

	r.Get("/", healthH.Index)
	r.Get("/index.html", healthH.Index)
	r.Get("/health", healthH.Health)

	r.Route("/api", func(r chi.Router) {
		r.Get("/sessions", sessionH.List)
		r.Get("/state", sessionH.State)
		r.Get("/events", eventsH.Stream)

		r.Post("/status", statusH.Post)

		r.Post("/question", questionH.Ask)
		r.Post("/answer", questionH.Answer)
		r.Get("/answers", questionH.Answered)

		r.Post("/reset", adminH.Reset)
		r.Post("/shutdown", adminH.Shutdown)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Not Found", http.StatusNotFound)
	})

	return r
}
