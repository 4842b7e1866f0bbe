// Package console implements the interactive voxide session: rendering
// and the read-plan-execute loop.
package console

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"

	"github.com/voxidehq/voxide/internal/orchestrator"
	"github.com/voxidehq/voxide/internal/planner"
	"github.com/voxidehq/voxide/pkg/models"
)

// queuedPreviewLimit bounds how many waiting tasks the status panel lists.
const queuedPreviewLimit = 5

var (
	bannerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#45B7D1")).
			Bold(true)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243")).
			Italic(true)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	panelTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFC857")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	okMark   = color.New(color.FgGreen).Sprint("✓")
	failMark = color.New(color.FgRed).Sprint("✗")
	busyMark = color.New(color.FgYellow).Sprint("▸")
	waitMark = color.New(color.FgBlue).Sprint("•")
)

// Banner renders the startup header.
func Banner(version string) string {
	logo := []string{
		"██╗   ██╗ ██████╗ ██╗  ██╗██╗██████╗ ███████╗",
		"██║   ██║██╔═══██╗╚██╗██╔╝██║██╔══██╗██╔════╝",
		"██║   ██║██║   ██║ ╚███╔╝ ██║██║  ██║█████╗  ",
		"╚██╗ ██╔╝██║   ██║ ██╔██╗ ██║██║  ██║██╔══╝  ",
		" ╚████╔╝ ╚██████╔╝██╔╝ ██╗██║██████╔╝███████╗",
		"  ╚═══╝   ╚═════╝ ╚═╝  ╚═╝╚═╝╚═════╝ ╚══════╝",
	}
	block := bannerStyle.Render(strings.Join(logo, "\n"))
	sub := subtitleStyle.Render(fmt.Sprintf("command-driven task runner %s · type 'help' for commands", version))
	return lipgloss.JoinVertical(lipgloss.Left, block, sub) + "\n"
}

// RenderHelp renders the command reference panel.
func RenderHelp() string {
	rows := []struct{ cmd, desc string }{
		{"<anything else>", "plan the command into tasks and run them"},
		{"status", "show the queue and task states"},
		{"history", "show recent session events"},
		{"clear", "drop completed tasks from the list"},
		{"exit / quit", "save state and leave"},
	}
	var b strings.Builder
	b.WriteString(panelTitleStyle.Render("Commands"))
	b.WriteString("\n")
	for _, r := range rows {
		b.WriteString(fmt.Sprintf("%-18s %s\n", r.cmd, dimStyle.Render(r.desc)))
	}
	return panelStyle.Render(strings.TrimRight(b.String(), "\n"))
}

// RenderStatus renders the activity line plus a task table: the running
// task first, then the first few waiting ones.
func RenderStatus(activity string, summary planner.Summary) string {
	var b strings.Builder
	b.WriteString(panelTitleStyle.Render("Status"))
	b.WriteString("\n")
	b.WriteString(activity)
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf(
		"%d total · %d completed · %d in progress · %d pending",
		summary.Total, summary.Completed, summary.InProgress, summary.Pending,
	)))

	var pending []models.Task
	for _, t := range summary.Tasks {
		switch t.Status {
		case models.TaskStatusInProgress:
			b.WriteString(fmt.Sprintf("\n%s %s  %s", busyMark, t.ID, t.Description))
		case models.TaskStatusPending:
			pending = append(pending, t)
		}
	}
	for i, t := range pending {
		if i == queuedPreviewLimit {
			b.WriteString(dimStyle.Render(fmt.Sprintf("\n  … and %d more", len(pending)-queuedPreviewLimit)))
			break
		}
		b.WriteString(fmt.Sprintf("\n%s %s  %s", waitMark, t.ID, t.Description))
	}

	return panelStyle.Render(b.String())
}

// RenderHistory renders the most recent events, oldest first.
func RenderHistory(events []models.HistoryEvent, limit int) string {
	if len(events) > limit {
		events = events[len(events)-limit:]
	}
	var b strings.Builder
	b.WriteString(panelTitleStyle.Render("History"))
	if len(events) == 0 {
		b.WriteString("\n")
		b.WriteString(dimStyle.Render("nothing yet"))
	}
	for _, ev := range events {
		ts := dimStyle.Render(ev.Timestamp.Format("15:04:05"))
		switch ev.Type {
		case models.EventUserInput:
			b.WriteString(fmt.Sprintf("\n%s › %s", ts, ev.Command))
		case models.EventTaskCompleted:
			b.WriteString(fmt.Sprintf("\n%s %s %s", ts, okMark, taskLabel(ev.Task)))
		case models.EventTaskFailed:
			b.WriteString(fmt.Sprintf("\n%s %s %s: %s", ts, failMark, taskLabel(ev.Task), ev.Error))
		}
	}
	return panelStyle.Render(b.String())
}

// taskLabel describes the task attached to a history event. The snapshot
// is optional in the persisted document, so a hand-edited history.json
// must render, not crash.
func taskLabel(t *models.Task) string {
	if t == nil {
		return "(unknown task)"
	}
	return t.Description
}

// RenderPlan echoes the freshly planned tasks.
func RenderPlan(tasks []*models.Task) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Planned %d task(s):\n", len(tasks)))
	for _, t := range tasks {
		b.WriteString(fmt.Sprintf("%s %s  %s\n", waitMark, t.ID, t.Description))
	}
	return strings.TrimRight(b.String(), "\n")
}

// RenderOutcome prints one line per finished task.
func RenderOutcome(ev orchestrator.Event) string {
	switch ev.Type {
	case orchestrator.EventTaskCompleted:
		return fmt.Sprintf("%s %s (%s)", okMark, ev.Description, ev.Duration.Round(time.Millisecond))
	case orchestrator.EventTaskFailed:
		return fmt.Sprintf("%s %s: %s", failMark, ev.Description, ev.Message)
	default:
		return ""
	}
}

// RenderSessionSummary renders the goodbye panel.
func RenderSessionSummary(stats orchestrator.SessionStats) string {
	dur := stats.EndedAt.Sub(stats.StartedAt).Round(time.Second)
	var b strings.Builder
	b.WriteString(panelTitleStyle.Render("Session summary"))
	b.WriteString(fmt.Sprintf("\ncommands  %d", stats.Commands))
	b.WriteString(fmt.Sprintf("\ncompleted %d", stats.Completed))
	b.WriteString(fmt.Sprintf("\nfailed    %d", stats.Failed))
	b.WriteString(fmt.Sprintf("\nduration  %s", dur))
	return panelStyle.Render(b.String())
}
