package dashboard

import (
	"strings"

	"github.com/iammorganparry/pof-dashboard/internal/models"
)

const defaultSession = models.DefaultSessionID

// PostStatus validates an agent status report and records it. querySession
// is used when the body names no session.
func (s *Service) PostStatus(req models.StatusUpdate, querySession string) (models.AgentStatus, error) {
	if req.Agent == "" || req.Message == "" {
		return models.AgentStatus{}, invalid("agent and message required")
	}
	if req.Status != "" && !req.Status.IsValid() {
		return models.AgentStatus{}, invalid("invalid status %q", req.Status)
	}

	rec := models.StatusRecord{
		Agent:   req.Agent,
		Session: resolveSession(req.Session, querySession),
		Phase:   req.Phase,
		Status:  req.Status,
		Message: req.Message,
		Detail:  req.Detail,
	}
	if req.Timestamp != nil {
		rec.Timestamp = *req.Timestamp
	} else {
		rec.Timestamp = s.clock.Now()
	}

	entry := s.store.RecordStatus(rec, projectFromDetail(req.Detail))
	s.logger.Debug("status recorded",
		"session", rec.Session,
		"agent", rec.Agent,
		"status", rec.Status,
		"phase", rec.Phase,
	)
	return entry, nil
}

// projectFromDetail returns the project named by a "project:<name>" detail.
func projectFromDetail(detail string) string {
	name, ok := strings.CutPrefix(detail, models.ProjectDetailPrefix)
	if !ok {
		return ""
	}
	return strings.TrimSpace(name)
}
