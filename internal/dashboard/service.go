// Package dashboard validates agent and operator requests and applies them
// to the session registry.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iammorganparry/pof-dashboard/internal/clock"
	"github.com/iammorganparry/pof-dashboard/internal/events"
	"github.com/iammorganparry/pof-dashboard/internal/models"
	"github.com/iammorganparry/pof-dashboard/internal/sessions"
)

// Service implements status ingest and the question/answer channel.
type Service struct {
	store  *sessions.Store
	events *events.Broadcaster
	clock  clock.Clock
	suffix func() string
	logger *slog.Logger
}

func NewService(store *sessions.Store, b *events.Broadcaster, clk clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		store:  store,
		events: b,
		clock:  clk,
		suffix: randomSuffix,
		logger: logger,
	}
}

// Sessions lists session summaries.
func (s *Service) Sessions() []models.SessionSummary {
	return s.store.Summaries()
}

// State returns one session's projection, or ErrNotFound.
func (s *Service) State(sessionID string) (models.SessionState, error) {
	st, err := s.store.State(sessionID)
	return st, translate(err)
}

// Snapshot returns every session's projection.
func (s *Service) Snapshot() models.Snapshot {
	return s.store.Snapshot()
}

// Reset clears one session, or all of them when sessionID is empty.
func (s *Service) Reset(sessionID string) {
	if sessionID == "" {
		s.store.ResetAll()
		return
	}
	s.store.Reset(sessionID)
}

// Subscribe opens an observer stream starting with an init snapshot.
func (s *Service) Subscribe(ctx context.Context) (*events.Subscription, error) {
	return s.store.Subscribe(ctx)
}

// SessionCount returns the number of live sessions.
func (s *Service) SessionCount() int {
	return s.store.Len()
}

// StartedAt returns when the registry was created.
func (s *Service) StartedAt() time.Time {
	return s.store.StartedAt()
}

// Clients returns the number of connected observers.
func (s *Service) Clients() int {
	return s.events.Count()
}

// Uptime returns how long the registry has existed.
func (s *Service) Uptime() time.Duration {
	return s.clock.Now().Sub(s.store.StartedAt())
}

// CloseStreams ends every observer stream.
func (s *Service) CloseStreams() {
	s.events.Close()
}

// AnnounceShutdown tells every observer the dashboard is going away.
func (s *Service) AnnounceShutdown() {
	s.events.Publish(events.Shutdown, models.ShutdownNotice{Message: "Dashboard shutting down"})
}

// randomSuffix returns six lowercase hex characters from a random UUID.
func randomSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
}

// resolveSession picks the session named in the body, then the one in the
// query string, then the default.
func resolveSession(ids ...string) string {
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			return id
		}
	}
	return defaultSession
}

// translate maps registry errors onto the service taxonomy.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sessions.ErrSessionNotFound), errors.Is(err, sessions.ErrQuestionNotFound):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, sessions.ErrAlreadyAnswered):
		return fmt.Errorf("%w: %w", ErrConflict, err)
	default:
		return err
	}
}
