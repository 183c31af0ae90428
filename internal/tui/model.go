// Package tui renders a live terminal view of a dashboard's event stream.
package tui

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/iammorganparry/pof-dashboard/internal/events"
	"github.com/iammorganparry/pof-dashboard/internal/models"
)

// logWindow matches the number of log entries the server sends per session.
const logWindow = 100

// EventSource yields dashboard events. *client.Stream satisfies it.
type EventSource interface {
	Next() (events.Event, error)
}

type eventMsg struct {
	event events.Event
}

type streamClosedMsg struct {
	err error
}

// waitForEvent blocks on the next event from src.
func waitForEvent(src EventSource) tea.Cmd {
	return func() tea.Msg {
		if src == nil {
			return nil
		}
		ev, err := src.Next()
		if err != nil {
			if err == io.EOF {
				err = nil
			}
			return streamClosedMsg{err: err}
		}
		return eventMsg{event: ev}
	}
}

// Model is the watcher's bubbletea model.
type Model struct {
	source EventSource
	server string

	keys     KeyMap
	help     help.Model
	viewport viewport.Model

	sessions map[string]*models.SessionState
	selected string

	width  int
	height int
	ready  bool

	closed   bool
	shutdown bool
	err      error
}

// New creates a watcher reading from src. server is only displayed.
func New(src EventSource, server string) Model {
	return Model{
		source:   src,
		server:   server,
		keys:     DefaultKeyMap(),
		help:     help.New(),
		viewport: viewport.New(80, 20),
		sessions: make(map[string]*models.SessionState),
	}
}

func (m Model) Init() tea.Cmd {
	return waitForEvent(m.source)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-5, 1)
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keys.NextSession):
			m.cycle(1)
			return m, nil
		case key.Matches(msg, m.keys.PrevSession):
			m.cycle(-1)
			return m, nil
		case key.Matches(msg, m.keys.Home):
			m.viewport.GotoTop()
			return m, nil
		case key.Matches(msg, m.keys.End):
			m.viewport.GotoBottom()
			return m, nil
		}
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case eventMsg:
		if err := m.apply(msg.event); err != nil {
			m.err = err
		}
		m.refresh()
		if m.shutdown {
			return m, tea.Quit
		}
		return m, waitForEvent(m.source)

	case streamClosedMsg:
		m.closed = true
		if msg.err != nil {
			m.err = msg.err
		}
		return m, nil
	}

	return m, nil
}

// apply folds one event into the local copy of the registry.
func (m *Model) apply(ev events.Event) error {
	switch ev.Name {
	case events.Init:
		var snap models.Snapshot
		if err := ev.Decode(&snap); err != nil {
			return fmt.Errorf("decode %s: %w", ev.Name, err)
		}
		m.sessions = make(map[string]*models.SessionState, len(snap.Sessions))
		for id, st := range snap.Sessions {
			st := st
			if st.Agents == nil {
				st.Agents = make(map[string]models.AgentStatus)
			}
			m.sessions[id] = &st
		}

	case events.SessionNew:
		var ref models.SessionRef
		if err := ev.Decode(&ref); err != nil {
			return fmt.Errorf("decode %s: %w", ev.Name, err)
		}
		st := m.session(ref.ID)
		if ref.StartedAt != nil {
			st.StartedAt = *ref.StartedAt
			st.LastActivity = *ref.StartedAt
		}

	case events.SessionRemoved:
		var ref models.SessionRef
		if err := ev.Decode(&ref); err != nil {
			return fmt.Errorf("decode %s: %w", ev.Name, err)
		}
		delete(m.sessions, ref.ID)

	case events.Status:
		var entry models.AgentStatus
		if err := ev.Decode(&entry); err != nil {
			return fmt.Errorf("decode %s: %w", ev.Name, err)
		}
		st := m.session(entry.Session)
		st.Agents[entry.Agent] = entry
		st.Log = append(st.Log, entry.StatusRecord)
		if over := len(st.Log) - logWindow; over > 0 {
			st.Log = st.Log[over:]
		}
		if rest, ok := strings.CutPrefix(entry.Detail, models.ProjectDetailPrefix); ok {
			st.Project = strings.TrimSpace(rest)
		}
		if entry.Timestamp.After(st.LastActivity) {
			st.LastActivity = entry.Timestamp
		}

	case events.Question:
		var q models.Question
		if err := ev.Decode(&q); err != nil {
			return fmt.Errorf("decode %s: %w", ev.Name, err)
		}
		st := m.session(q.Session)
		st.Questions = append(st.Questions, q)

	case events.Answer:
		var q models.Question
		if err := ev.Decode(&q); err != nil {
			return fmt.Errorf("decode %s: %w", ev.Name, err)
		}
		st := m.session(q.Session)
		for i := range st.Questions {
			if st.Questions[i].ID == q.ID {
				st.Questions[i] = q
			}
		}

	case events.Reset:
		clear(m.sessions)

	case events.Shutdown:
		m.shutdown = true
	}

	m.recount()
	if _, ok := m.sessions[m.selected]; !ok {
		m.selected = ""
		if ids := m.order(); len(ids) > 0 {
			m.selected = ids[0]
		}
	}
	return nil
}

// session returns the local session, creating an empty one if needed.
func (m *Model) session(id string) *models.SessionState {
	st, ok := m.sessions[id]
	if !ok {
		st = &models.SessionState{
			SessionSummary: models.SessionSummary{ID: id, CurrentPhase: "0"},
			Agents:         make(map[string]models.AgentStatus),
		}
		m.sessions[id] = st
	}
	return st
}

// recount refreshes the derived counters of every session.
func (m *Model) recount() {
	for _, st := range m.sessions {
		st.TotalAgents = len(st.Agents)
		st.ActiveAgents = 0
		st.CurrentPhase = "0"
		best := 0
		for _, a := range st.Agents {
			if a.Status.IsActive() {
				st.ActiveAgents++
			}
			prefix, _, _ := strings.Cut(a.Phase, ".")
			if n, err := strconv.Atoi(prefix); err == nil && n > best {
				best = n
				st.CurrentPhase = prefix
			}
		}
		st.PendingQuestions = 0
		for _, q := range st.Questions {
			if !q.Answered {
				st.PendingQuestions++
			}
		}
	}
}

// order returns session ids by start time, then id.
func (m *Model) order() []string {
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := m.sessions[ids[i]], m.sessions[ids[j]]
		if !a.StartedAt.Equal(b.StartedAt) {
			return a.StartedAt.Before(b.StartedAt)
		}
		return a.ID < b.ID
	})
	return ids
}

func (m *Model) cycle(step int) {
	ids := m.order()
	if len(ids) == 0 {
		return
	}
	idx := 0
	for i, id := range ids {
		if id == m.selected {
			idx = i
		}
	}
	idx = (idx + step + len(ids)) % len(ids)
	m.selected = ids[idx]
	m.refresh()
	m.viewport.GotoTop()
}

func (m *Model) refresh() {
	st, ok := m.sessions[m.selected]
	if !ok {
		m.viewport.SetContent(DimStyle.Render("Waiting for agents to report..."))
		return
	}
	m.viewport.SetContent(renderSession(st))
}

func (m Model) View() string {
	if !m.ready {
		return DimStyle.Render("Connecting to " + m.server + "...")
	}

	var b strings.Builder

	header := HeaderStyle.Render("POF Dashboard")
	conn := SuccessStyle.Render("● live")
	switch {
	case m.shutdown:
		conn = ErrorStyle.Render("● server shut down")
	case m.closed:
		conn = ErrorStyle.Render("● disconnected")
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		header,
		StatusBarStyle.Render(m.server),
		StatusBarStyle.Render(fmt.Sprintf("%d sessions", len(m.sessions))),
		conn,
	))
	b.WriteString("\n")

	var tabs []string
	for _, id := range m.order() {
		st := m.sessions[id]
		label := id
		if st.Project != "" {
			label = id + " · " + st.Project
		}
		if st.PendingQuestions > 0 {
			label += fmt.Sprintf(" (%d?)", st.PendingQuestions)
		}
		if id == m.selected {
			tabs = append(tabs, ActiveTabStyle.Render(label))
		} else {
			tabs = append(tabs, TabStyle.Render(label))
		}
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
	b.WriteString("\n\n")

	b.WriteString(m.viewport.View())
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(ErrorStyle.Render("error: " + m.err.Error()))
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

// renderSession draws one session's agents, questions and log tail.
func renderSession(st *models.SessionState) string {
	var b strings.Builder

	b.WriteString(PanelTitleStyle.Render(fmt.Sprintf(
		"Phase %s · %d/%d agents active", st.CurrentPhase, st.ActiveAgents, st.TotalAgents)))
	b.WriteString("\n")

	names := make([]string, 0, len(st.Agents))
	for name := range st.Agents {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		a := st.Agents[name]
		line := AgentNameStyle.Render(name)
		if a.Status != "" {
			line += " " + StateStyle(a.Status).Render("["+string(a.Status)+"]")
		}
		if a.Phase != "" {
			line += DimStyle.Render(" phase " + a.Phase)
		}
		line += " " + a.Message
		b.WriteString(line + "\n")
	}

	if len(st.Questions) > 0 {
		b.WriteString("\n" + PanelTitleStyle.Render("Questions") + "\n")
		for _, q := range st.Questions {
			text := fmt.Sprintf("%s %s: %s", q.ID, q.Agent, q.Question)
			if len(q.Options) > 0 {
				text += DimStyle.Render(" [" + strings.Join(q.Options, " / ") + "]")
			}
			if q.Answered {
				b.WriteString(AnsweredStyle.Render(text+" → "+q.Answer) + "\n")
			} else {
				b.WriteString(QuestionStyle.Render(text) + "\n")
			}
		}
	}

	if len(st.Log) > 0 {
		b.WriteString("\n" + PanelTitleStyle.Render("Log") + "\n")
		for i := len(st.Log) - 1; i >= 0; i-- {
			rec := st.Log[i]
			b.WriteString(DimStyle.Render(rec.Timestamp.Local().Format("15:04:05")) + " " +
				AgentNameStyle.Render(rec.Agent) + " " + rec.Message + "\n")
		}
	}

	return PanelStyle.Render(strings.TrimRight(b.String(), "\n"))
}
