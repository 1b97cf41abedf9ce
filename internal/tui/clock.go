package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/kidclock/internal/timer"
)

// clockModel renders the child-facing face: the current activity, its
// countdown, and what comes next.
type clockModel struct {
	width  int
	height int

	// celebrating counts down the seconds left on the well-done screen for
	// the activity at celebratingIndex.
	celebrating      int
	celebratingIndex int
}

func (c *clockModel) setSize(w, h int) {
	c.width = w
	c.height = h
}

func (c clockModel) view(s timer.State) string {
	w := max(20, c.width-4)
	inner := w - 6

	cur, ok := timer.CurrentOf(s)
	if !ok {
		return panelStyle.Width(w).Render(c.renderDone(s, inner))
	}

	icon := lipgloss.NewStyle().Width(inner).Align(lipgloss.Center).Render(cur.Icon)
	name := activityStyle(cur.Color).Width(inner).Align(lipgloss.Center).Render(cur.Name)

	var countdown string
	switch {
	case c.celebrating > 0:
		countdown = successStyle.Bold(true).Width(inner).Align(lipgloss.Center).Render("🎉 Great job! 🎉")
	default:
		countdown = countdownStyle.Foreground(lipgloss.Color(cur.Color)).Width(inner).
			Render(formatCountdown(s.RemainingSeconds))
	}

	bar := progress.New(
		progress.WithGradient(cur.ColorLight, cur.Color),
		progress.WithoutPercentage(),
		progress.WithWidth(max(10, inner-4)),
	)
	barView := lipgloss.NewStyle().Width(inner).Align(lipgloss.Center).Render(bar.ViewAs(timer.ProgressOf(s)))

	status := mutedStyle.Render(fmt.Sprintf("%d of %d", cur.Index+1, len(s.Schedule)))
	if s.IsPaused && c.celebrating == 0 {
		status = pausedStyle.Render("⏸ paused") + mutedStyle.Render("  press space to start")
	}
	status = lipgloss.NewStyle().Width(inner).Align(lipgloss.Center).Render(status)

	rows := []string{icon, name, "", countdown, "", barView, "", status, ""}
	rows = append(rows, c.renderUpcoming(s, inner)...)

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (c clockModel) renderUpcoming(s timer.State, width int) []string {
	var rows []string
	if next, ok := timer.NextOf(s); ok {
		rows = append(rows, upcomingRow("Next", next, width))
	}
	if then, ok := timer.ThenOf(s); ok {
		rows = append(rows, upcomingRow("Then", then, width))
	}
	if len(rows) == 0 {
		rows = append(rows, mutedStyle.Width(width).Align(lipgloss.Center).Render("Last one for today!"))
	}
	return rows
}

func upcomingRow(label string, slot timer.Slot, width int) string {
	text := fmt.Sprintf("%s: %s %s", label, slot.Icon, activityStyle(slot.Color).Render(slot.Name)) +
		mutedStyle.Render(" ("+formatMinutes(slot.Item.Seconds())+")")
	return lipgloss.NewStyle().Width(width).Align(lipgloss.Center).Render(text)
}

func (c clockModel) renderDone(s timer.State, width int) string {
	center := lipgloss.NewStyle().Width(width).Align(lipgloss.Center)
	if len(s.Schedule) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left,
			center.Render(titleStyle.Render("Nothing scheduled")),
			"",
			center.Render(mutedStyle.Render("Press 2 to pick a routine or import a calendar")),
		)
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		center.Render("🌙"),
		center.Render(successStyle.Bold(true).Render("All done for today!")),
		"",
		center.Render(mutedStyle.Render("r: start the day again")),
	)
}
