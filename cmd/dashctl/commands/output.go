package commands

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/iammorganparry/pof-dashboard/internal/models"
	"github.com/iammorganparry/pof-dashboard/internal/tui"
)

var (
	titleStyle = lipgloss.NewStyle().Foreground(tui.ColorMagenta).Bold(true)
	idStyle    = lipgloss.NewStyle().Foreground(tui.ColorBlue)
)

func printSessions(w io.Writer, list []models.SessionSummary) {
	if len(list) == 0 {
		fmt.Fprintln(w, tui.DimStyle.Render("No sessions"))
		return
	}
	for _, s := range list {
		line := idStyle.Render(s.ID)
		if s.Project != "" {
			line += " " + tui.DimStyle.Render("("+s.Project+")")
		}
		line += fmt.Sprintf("  phase %s  %d/%d agents active  %d pending questions  last activity %s",
			s.CurrentPhase, s.ActiveAgents, s.TotalAgents, s.PendingQuestions,
			s.LastActivity.Local().Format("15:04:05"))
		fmt.Fprintln(w, line)
	}
}

func printState(w io.Writer, st models.SessionState) {
	fmt.Fprintln(w, titleStyle.Render("Session "+st.ID))
	printSessions(w, []models.SessionSummary{st.SessionSummary})

	names := make([]string, 0, len(st.Agents))
	for name := range st.Agents {
		names = append(names, name)
	}
	sort.Strings(names)
	if len(names) > 0 {
		fmt.Fprintln(w, titleStyle.Render("Agents"))
	}
	for _, name := range names {
		a := st.Agents[name]
		state := string(a.Status)
		if state == "" {
			state = "-"
		}
		fmt.Fprintf(w, "  %s %s %s\n", tui.AgentNameStyle.Render(name), tui.StateStyle(a.Status).Render("["+state+"]"), a.Message)
	}

	if len(st.Questions) > 0 {
		fmt.Fprintln(w, titleStyle.Render("Questions"))
	}
	for _, q := range st.Questions {
		printQuestion(w, q)
	}
}

func printQuestion(w io.Writer, q models.Question) {
	line := fmt.Sprintf("  %s %s: %s", idStyle.Render(q.ID), q.Agent, q.Question)
	if len(q.Options) > 0 {
		line += tui.DimStyle.Render(" [" + strings.Join(q.Options, " / ") + "]")
	}
	if q.Answered {
		line += " → " + tui.SuccessStyle.Render(q.Answer)
	}
	fmt.Fprintln(w, line)
}

func printOK(w io.Writer, msg string) {
	fmt.Fprintln(w, tui.SuccessStyle.Render("✓ ")+msg)
}
