package dashboard

import (
	"errors"
	"fmt"

	"github.com/iammorganparry/pof-dashboard/internal/models"
	"github.com/iammorganparry/pof-dashboard/internal/sessions"
)

// maxIDAttempts bounds regeneration when a fresh question id collides.
const maxIDAttempts = 8

// PostQuestion raises a question on behalf of an agent and returns its id.
func (s *Service) PostQuestion(req models.QuestionRequest, querySession string) (string, error) {
	if req.Question == "" {
		return "", invalid("question required")
	}

	agent := req.Agent
	if agent == "" {
		agent = models.DefaultQuestionAgent
	}

	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		now := s.clock.Now()
		q := models.Question{
			ID:        fmt.Sprintf("q-%d-%s", now.UnixMilli(), s.suffix()),
			Session:   resolveSession(req.Session, querySession),
			Agent:     agent,
			Question:  req.Question,
			Options:   req.Options,
			Timestamp: now,
		}

		err := s.store.AddQuestion(q)
		if errors.Is(err, sessions.ErrDuplicateQuestionID) {
			s.logger.Debug("question id collision, regenerating", "id", q.ID)
			continue
		}
		if err != nil {
			return "", err
		}

		s.logger.Info("question raised", "id", q.ID, "session", q.Session, "agent", agent)
		return q.ID, nil
	}
	return "", fmt.Errorf("generate question id: %d collisions", maxIDAttempts)
}

// PostAnswer records the operator's answer. An already answered question
// is rejected with ErrConflict and keeps its first answer.
func (s *Service) PostAnswer(req models.AnswerRequest) (models.Question, error) {
	if req.ID == "" || req.Answer == "" {
		return models.Question{}, invalid("id and answer required")
	}

	q, err := s.store.Answer(req.ID, req.Session, req.Answer)
	if err != nil {
		return models.Question{}, translate(err)
	}

	s.logger.Info("question answered", "id", q.ID, "session", q.Session)
	return q, nil
}

// ListAnswered returns answered questions, optionally for one session.
// An unknown session is ErrNotFound.
func (s *Service) ListAnswered(sessionID string) ([]models.Question, error) {
	qs, err := s.store.Answered(sessionID)
	return qs, translate(err)
}
