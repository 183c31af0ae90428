package sessions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/iammorganparry/pof-dashboard/internal/clock"
	"github.com/iammorganparry/pof-dashboard/internal/events"
	"github.com/iammorganparry/pof-dashboard/internal/models"
)

const (
	// MaxLogEntries caps each session's status log; the oldest entries go first.
	MaxLogEntries = 500
	// LogWindow is how many log entries a snapshot carries per session.
	LogWindow = 100
	// SessionTTL is how long a session may stay idle before the sweep evicts it.
	SessionTTL = 4 * time.Hour
	// SweepInterval is how often the sweeper looks for idle sessions.
	SweepInterval = time.Minute
)

var (
	ErrSessionNotFound     = errors.New("session not found")
	ErrQuestionNotFound    = errors.New("question not found")
	ErrAlreadyAnswered     = errors.New("question already answered")
	ErrDuplicateQuestionID = errors.New("duplicate question id")
)

// Broadcaster is the part of events.Broadcaster the store drives.
type Broadcaster interface {
	Publish(name string, payload any)
	Subscribe(ctx context.Context, init events.Frame) *events.Subscription
}

// Session is one workflow run. It is only touched with the store lock held.
type Session struct {
	ID           string
	Project      string
	Agents       map[string]models.AgentStatus
	Questions    []*models.Question
	Log          []models.StatusRecord
	StartedAt    time.Time
	LastActivity time.Time
}

// Store is the in-memory session registry. Every mutation publishes its
// event while the lock is held, so observers see events in the same order
// the registry changed.
type Store struct {
	mu        sync.Mutex
	sessions  map[string]*Session
	questions map[string]*models.Question // question id -> question, across all sessions
	events    Broadcaster
	clock     clock.Clock
	startedAt time.Time
	logger    *slog.Logger
}

// NewStore creates an empty registry.
func NewStore(b Broadcaster, clk clock.Clock, logger *slog.Logger) *Store {
	return &Store{
		sessions:  make(map[string]*Session),
		questions: make(map[string]*models.Question),
		events:    b,
		clock:     clk,
		startedAt: clk.Now(),
		logger:    logger,
	}
}

// StartedAt returns when the registry was created.
func (s *Store) StartedAt() time.Time { return s.startedAt }

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// GetOrCreate returns the session with the given id, creating and
// announcing it if it does not exist yet.
func (s *Store) GetOrCreate(id string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getOrCreateLocked(id)
}

func (s *Store) getOrCreateLocked(id string) *Session {
	if sess, ok := s.sessions[id]; ok {
		return sess
	}

	now := s.clock.Now()
	sess := &Session{
		ID:           id,
		Agents:       make(map[string]models.AgentStatus),
		StartedAt:    now,
		LastActivity: now,
	}
	s.sessions[id] = sess
	s.logger.Info("session created", "session", id)
	s.events.Publish(events.SessionNew, models.SessionRef{ID: id, StartedAt: &sess.StartedAt})
	return sess
}

// touchLocked records activity. LastActivity never moves backwards.
func (s *Store) touchLocked(sess *Session) {
	if now := s.clock.Now(); now.After(sess.LastActivity) {
		sess.LastActivity = now
	}
}

// RecordStatus stores rec as its agent's latest status, appends it to the
// session log and publishes the enriched record. A non-empty project
// replaces the session's project label.
func (s *Store) RecordStatus(rec models.StatusRecord, project string) models.AgentStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.getOrCreateLocked(rec.Session)
	s.touchLocked(sess)

	if project != "" {
		sess.Project = project
	}

	entry := models.AgentStatus{StatusRecord: rec, LastSeen: rec.Timestamp}
	sess.Agents[rec.Agent] = entry

	sess.Log = append(sess.Log, rec)
	if over := len(sess.Log) - MaxLogEntries; over > 0 {
		n := copy(sess.Log, sess.Log[over:])
		clear(sess.Log[n:])
		sess.Log = sess.Log[:n]
	}

	s.events.Publish(events.Status, entry)
	return entry
}

// AddQuestion appends q to its session and publishes it. It fails with
// ErrDuplicateQuestionID if any live session already holds that id.
func (s *Store) AddQuestion(q models.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.questions[q.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateQuestionID, q.ID)
	}

	sess := s.getOrCreateLocked(q.Session)
	s.touchLocked(sess)

	stored := q
	stored.Options = append([]string(nil), q.Options...)
	sess.Questions = append(sess.Questions, &stored)
	s.questions[stored.ID] = &stored

	s.events.Publish(events.Question, stored)
	return nil
}

// Answer records answer on question id. When sessionID is non-empty the
// question must belong to that session. A question is answered at most
// once; later attempts fail with ErrAlreadyAnswered and change nothing.
func (s *Store) Answer(id, sessionID, answer string) (models.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q, ok := s.questions[id]
	if !ok || (sessionID != "" && q.Session != sessionID) {
		return models.Question{}, fmt.Errorf("%w: %s", ErrQuestionNotFound, id)
	}
	if q.Answered {
		return *q, fmt.Errorf("%w: %s", ErrAlreadyAnswered, id)
	}

	now := s.clock.Now()
	q.Answered = true
	q.Answer = answer
	q.AnsweredAt = &now

	if sess, ok := s.sessions[q.Session]; ok {
		s.touchLocked(sess)
	}

	s.events.Publish(events.Answer, *q)
	return *q, nil
}

// Answered lists answered questions in session start order. A non-empty
// sessionID limits the result to that session and fails with
// ErrSessionNotFound if it does not exist.
func (s *Store) Answered(sessionID string) ([]models.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var scope []*Session
	if sessionID != "" {
		sess, ok := s.sessions[sessionID]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
		}
		scope = []*Session{sess}
	} else {
		scope = s.orderedLocked()
	}

	answered := []models.Question{}
	for _, sess := range scope {
		for _, q := range sess.Questions {
			if q.Answered {
				answered = append(answered, *q)
			}
		}
	}
	return answered, nil
}

// Reset removes one session unconditionally and announces the removal.
func (s *Store) Reset(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.removeLocked(id)
	s.events.Publish(events.SessionRemoved, models.SessionRef{ID: id})
}

// ResetAll clears the registry.
func (s *Store) ResetAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.sessions)
	clear(s.sessions)
	clear(s.questions)
	s.logger.Info("all sessions reset", "count", n)
	s.events.Publish(events.Reset, models.ResetNotice{ServerStartedAt: s.startedAt})
}

// Sweep evicts every session idle for longer than SessionTTL and returns
// the evicted ids.
func (s *Store) Sweep() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	var removed []string
	for _, sess := range s.orderedLocked() {
		if now.Sub(sess.LastActivity) > SessionTTL {
			s.removeLocked(sess.ID)
			s.events.Publish(events.SessionRemoved, models.SessionRef{ID: sess.ID})
			removed = append(removed, sess.ID)
		}
	}
	return removed
}

func (s *Store) removeLocked(id string) {
	sess, ok := s.sessions[id]
	if !ok {
		return
	}
	for _, q := range sess.Questions {
		delete(s.questions, q.ID)
	}
	delete(s.sessions, id)
	s.logger.Info("session removed", "session", id)
}

// orderedLocked returns sessions sorted by start time, then id.
func (s *Store) orderedLocked() []*Session {
	list := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		list = append(list, sess)
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].StartedAt.Equal(list[j].StartedAt) {
			return list[i].StartedAt.Before(list[j].StartedAt)
		}
		return list[i].ID < list[j].ID
	})
	return list
}
