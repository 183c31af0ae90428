package models

import "time"

// SessionSummary is the read-only projection listed by GET /api/sessions.
type SessionSummary struct {
	ID               string    `json:"id"`
	Project          string    `json:"project,omitempty"`
	StartedAt        time.Time `json:"startedAt"`
	LastActivity     time.Time `json:"lastActivity"`
	CurrentPhase     string    `json:"currentPhase"`
	ActiveAgents     int       `json:"activeAgents"`
	TotalAgents      int       `json:"totalAgents"`
	PendingQuestions int       `json:"pendingQuestions"`
}

// SessionState is a summary plus the session's agents, questions and the
// tail of its log.
type SessionState struct {
	SessionSummary
	Agents    map[string]AgentStatus `json:"agents"`
	Questions []Question             `json:"questions"`
	Log       []StatusRecord         `json:"log"`
}

// Snapshot is every session at one instant. It is the payload of the init
// event and of an unscoped GET /api/state.
type Snapshot struct {
	Sessions        map[string]SessionState `json:"sessions"`
	ServerStartedAt time.Time               `json:"serverStartedAt"`
}

// SessionRef is the payload of session-new and session-removed.
type SessionRef struct {
	ID        string     `json:"id"`
	StartedAt *time.Time `json:"startedAt,omitempty"`
}

// ResetNotice is the payload of the reset event.
type ResetNotice struct {
	ServerStartedAt time.Time `json:"serverStartedAt"`
}

// ShutdownNotice is the payload of the shutdown event.
type ShutdownNotice struct {
	Message string `json:"message"`
}
