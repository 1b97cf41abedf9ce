package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/kidclock/internal/activity"
	"github.com/sadopc/kidclock/internal/timer"
)

// overviewModel charts the day: one bar per scheduled activity, sized by its
// minutes and colored by the activity. Finished activities are dimmed.
type overviewModel struct {
	width  int
	height int
}

func (o *overviewModel) setSize(w, h int) {
	o.width = w
	o.height = h
}

func (o overviewModel) buildChart(s timer.State) barchart.Model {
	chartWidth := max(20, o.width-8)
	chartHeight := 12
	if o.height > 30 {
		chartHeight = 16
	}

	chart := barchart.New(chartWidth, chartHeight)

	var bars []barchart.BarData
	for i, item := range s.Schedule {
		a := activity.Resolve(item.Activity)
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(a.Color))
		if i < s.CurrentIndex {
			style = lipgloss.NewStyle().Foreground(colorSubtle)
		}
		minutes := float64(item.Seconds()) / 60
		if i == s.CurrentIndex {
			minutes = float64(max(0, s.RemainingSeconds)) / 60
		}
		bars = append(bars, barchart.BarData{
			Label: barLabel(a.Name),
			Values: []barchart.BarValue{{
				Name:  a.Name,
				Value: minutes,
				Style: style,
			}},
		})
	}

	chart.PushAll(bars)
	chart.Draw()
	return chart
}

func barLabel(name string) string {
	r := []rune(name)
	if len(r) > 5 {
		r = r[:5]
	}
	return string(r)
}

// remainingSeconds is the time left in the day: the current countdown plus
// every later activity at full length.
func remainingSeconds(s timer.State) int {
	if s.Done() {
		return 0
	}
	total := max(0, s.RemainingSeconds)
	for i, item := range s.Schedule {
		if i > s.CurrentIndex {
			total += max(0, item.Seconds())
		}
	}
	return total
}

func (o overviewModel) view(s timer.State, now time.Time) string {
	w := o.width - 4

	header := titleStyle.Render("Overview") + mutedStyle.Render("  "+routineName(s.CurrentRoutine))

	if len(s.Schedule) == 0 {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			header, "", mutedStyle.Render("  Nothing scheduled"),
		))
	}

	chart := o.buildChart(s)

	planned := 0
	for _, item := range s.Schedule {
		planned += max(0, item.Seconds())
	}
	left := remainingSeconds(s)

	summary := []string{
		fmt.Sprintf("  %-18s %s", "Planned", highlightStyle.Render(formatDuration(time.Duration(planned)*time.Second))),
		fmt.Sprintf("  %-18s %s", "Left today", highlightStyle.Render(formatDuration(time.Duration(left)*time.Second))),
	}
	if left > 0 {
		finish := now.Add(time.Duration(left) * time.Second).Format("15:04")
		note := ""
		if s.IsPaused {
			note = mutedStyle.Render(" (if started now)")
		}
		summary = append(summary, fmt.Sprintf("  %-18s %s%s", "Finishes at", highlightStyle.Render(finish), note))
	}

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", chart.View(), "", o.renderLegend(s), "", strings.Join(summary, "\n"),
		),
	)
}

func (o overviewModel) renderLegend(s timer.State) string {
	seen := make(map[string]bool)
	var items []string
	for _, item := range s.Schedule {
		if seen[item.Activity] {
			continue
		}
		seen[item.Activity] = true
		a := activity.Resolve(item.Activity)
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color(a.Color)).Render("●")
		items = append(items, fmt.Sprintf("%s %s %s", dot, a.Icon, a.Name))
	}
	return "  " + strings.Join(items, "  ")
}
