package models

import "time"

// AgentState is the lifecycle state an agent reports.
type AgentState string

const (
	StateStarted  AgentState = "started"
	StateWorking  AgentState = "working"
	StateComplete AgentState = "complete"
	StateError    AgentState = "error"
	StateBlocked  AgentState = "blocked"
)

var ValidAgentStates = map[AgentState]bool{
	StateStarted:  true,
	StateWorking:  true,
	StateComplete: true,
	StateError:    true,
	StateBlocked:  true,
}

func (s AgentState) IsValid() bool {
	return ValidAgentStates[s]
}

// IsActive reports whether an agent in this state counts as running.
func (s AgentState) IsActive() bool {
	return s == StateStarted || s == StateWorking
}

// DefaultSessionID is used when a report names no session.
const DefaultSessionID = "default"

// DefaultQuestionAgent is recorded when a question names no agent.
const DefaultQuestionAgent = "orchestrator"

// ProjectDetailPrefix marks a status detail that names the session's project.
const ProjectDetailPrefix = "project:"

// StatusUpdate is the payload for POST /api/status.
type StatusUpdate struct {
	Agent     string     `json:"agent"`
	Session   string     `json:"session,omitempty"`
	Phase     string     `json:"phase,omitempty"`
	Status    AgentState `json:"status,omitempty"`
	Message   string     `json:"message"`
	Detail    string     `json:"detail,omitempty"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

// StatusRecord is a normalized status report as kept in a session log.
type StatusRecord struct {
	Agent     string     `json:"agent"`
	Session   string     `json:"session"`
	Phase     string     `json:"phase,omitempty"`
	Status    AgentState `json:"status,omitempty"`
	Message   string     `json:"message"`
	Detail    string     `json:"detail,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
}

// AgentStatus is an agent's latest record plus when it was last seen. It is
// also the payload of the status event.
type AgentStatus struct {
	StatusRecord
	LastSeen time.Time `json:"lastSeen"`
}

// Question is raised by an agent or orchestrator and answered by the
// operator.
type Question struct {
	ID         string     `json:"id"`
	Session    string     `json:"session"`
	Agent      string     `json:"agent"`
	Question   string     `json:"question"`
	Options    []string   `json:"options,omitempty"`
	Timestamp  time.Time  `json:"timestamp"`
	Answered   bool       `json:"answered"`
	Answer     string     `json:"answer,omitempty"`
	AnsweredAt *time.Time `json:"answeredAt,omitempty"`
}

// QuestionRequest is the payload for POST /api/question.
type QuestionRequest struct {
	Agent    string   `json:"agent,omitempty"`
	Session  string   `json:"session,omitempty"`
	Question string   `json:"question"`
	Options  []string `json:"options,omitempty"`
}

// QuestionResponse is returned from POST /api/question.
type QuestionResponse struct {
	OK bool   `json:"ok"`
	ID string `json:"id"`
}

// AnswerRequest is the payload for POST /api/answer.
type AnswerRequest struct {
	ID      string `json:"id"`
	Answer  string `json:"answer"`
	Session string `json:"session,omitempty"`
}

// OKResponse acknowledges a mutation.
type OKResponse struct {
	OK bool `json:"ok"`
}

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is returned from GET /health.
type HealthResponse struct {
	OK       bool  `json:"ok"`
	Uptime   int64 `json:"uptime"`
	Clients  int   `json:"clients"`
	Sessions int   `json:"sessions"`
}
