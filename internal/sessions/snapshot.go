package sessions

import (
	"context"
	"fmt"
	"maps"
	"strconv"
	"strings"

	"github.com/iammorganparry/pof-dashboard/internal/events"
	"github.com/iammorganparry/pof-dashboard/internal/models"
)

// Summarize derives the read-only summary of sess. The current phase is
// the largest integer prefix (the part before the first ".") among the
// agents' phases, or "0" when none parses.
func Summarize(sess *Session) models.SessionSummary {
	summary := models.SessionSummary{
		ID:           sess.ID,
		Project:      sess.Project,
		StartedAt:    sess.StartedAt,
		LastActivity: sess.LastActivity,
		CurrentPhase: "0",
		TotalAgents:  len(sess.Agents),
	}

	best := 0
	for _, a := range sess.Agents {
		if a.Status.IsActive() {
			summary.ActiveAgents++
		}
		if a.Phase == "" {
			continue
		}
		prefix, _, _ := strings.Cut(a.Phase, ".")
		n, err := strconv.Atoi(prefix)
		if err != nil {
			continue
		}
		if n > best {
			best = n
			summary.CurrentPhase = prefix
		}
	}

	for _, q := range sess.Questions {
		if !q.Answered {
			summary.PendingQuestions++
		}
	}
	return summary
}

// stateOf copies sess into its public projection with the log tail.
func stateOf(sess *Session) models.SessionState {
	tail := sess.Log
	if len(tail) > LogWindow {
		tail = tail[len(tail)-LogWindow:]
	}

	questions := make([]models.Question, 0, len(sess.Questions))
	for _, q := range sess.Questions {
		questions = append(questions, *q)
	}

	return models.SessionState{
		SessionSummary: Summarize(sess),
		Agents:         maps.Clone(sess.Agents),
		Questions:      questions,
		Log:            append([]models.StatusRecord{}, tail...),
	}
}

// Summaries lists every session summary in start order.
func (s *Store) Summaries() []models.SessionSummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := make([]models.SessionSummary, 0, len(s.sessions))
	for _, sess := range s.orderedLocked() {
		list = append(list, Summarize(sess))
	}
	return list
}

// State returns the projection of one session.
func (s *Store) State(id string) (models.SessionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return models.SessionState{}, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return stateOf(sess), nil
}

// Snapshot returns every session's projection.
func (s *Store) Snapshot() models.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() models.Snapshot {
	snap := models.Snapshot{
		Sessions:        make(map[string]models.SessionState, len(s.sessions)),
		ServerStartedAt: s.startedAt,
	}
	for id, sess := range s.sessions {
		snap.Sessions[id] = stateOf(sess)
	}
	return snap
}

// Subscribe registers an observer whose first event is an init snapshot.
// Snapshot and registration happen under the registry lock, so the
// observer neither misses nor repeats a mutation.
func (s *Store) Subscribe(ctx context.Context) (*events.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	init, err := events.Encode(events.Init, s.snapshotLocked())
	if err != nil {
		return nil, err
	}
	return s.events.Subscribe(ctx, init), nil
}
