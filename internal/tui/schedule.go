package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/kidclock/internal/activity"
	"github.com/sadopc/kidclock/internal/timer"
)

// scheduleModel is the parent panel: the day's list plus routine loading and
// manual editing.
type scheduleModel struct {
	machine *timer.Machine
	width   int
	height  int

	cursor int

	formActive bool
	form       *huh.Form
	formType   string // "routine", "edit"

	// Form field pointers (survive value copies)
	formRoutine *string
	formItems   *string
}

func newScheduleModel(m *timer.Machine) scheduleModel {
	routine, items := "", ""
	return scheduleModel{
		machine:     m,
		formRoutine: &routine,
		formItems:   &items,
	}
}

func (p *scheduleModel) setSize(w, h int) {
	p.width = w
	p.height = h
}

func (p scheduleModel) update(msg tea.Msg) (scheduleModel, tea.Cmd) {
	if p.formActive && p.form != nil {
		return p.updateForm(msg)
	}

	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil
	}
	n := len(p.machine.State().Schedule)
	switch {
	case key.Matches(km, keys.Up):
		if p.cursor > 0 {
			p.cursor--
		}
	case key.Matches(km, keys.Down):
		if p.cursor < n-1 {
			p.cursor++
		}
	case key.Matches(km, keys.Routine):
		return p.showRoutineForm()
	case key.Matches(km, keys.Edit):
		return p.showEditForm()
	}
	return p, nil
}

func (p scheduleModel) showRoutineForm() (scheduleModel, tea.Cmd) {
	*p.formRoutine = p.machine.State().CurrentRoutine
	p.formType = "routine"

	var options []huh.Option[string]
	for _, k := range activity.RoutineKeys() {
		r, _ := activity.LookupRoutine(k)
		options = append(options, huh.NewOption(fmt.Sprintf("%s (%d activities)", r.Name, len(r.Steps)), k))
	}

	p.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().Title("Routine").Options(options...).Value(p.formRoutine),
		),
	).WithShowHelp(true).WithShowErrors(true)

	p.formActive = true
	return p, p.form.Init()
}

func (p scheduleModel) showEditForm() (scheduleModel, tea.Cmd) {
	*p.formItems = formatScheduleInput(p.machine.State().Schedule)
	p.formType = "edit"

	p.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Schedule").
				Description("activity:minutes, comma separated. e.g. play:30, dinner:20, bath:15").
				Value(p.formItems).
				Validate(func(s string) error {
					_, err := parseScheduleInput(s)
					return err
				}),
		),
	).WithShowHelp(true).WithShowErrors(true)

	p.formActive = true
	return p, p.form.Init()
}

func (p scheduleModel) updateForm(msg tea.Msg) (scheduleModel, tea.Cmd) {
	// Check for escape to cancel form
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			p.formActive = false
			p.form = nil
			return p, nil
		}
	}

	form, cmd := p.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		p.form = f
	}

	if p.form.State == huh.StateCompleted {
		p.formActive = false
		p.cursor = 0
		switch p.formType {
		case "routine":
			if p.machine.LoadRoutine(*p.formRoutine) {
				return p, statusCmd("Loaded routine: " + routineName(*p.formRoutine))
			}
		case "edit":
			items, err := parseScheduleInput(*p.formItems)
			if err != nil {
				return p, errorCmd(err)
			}
			p.machine.SetSchedule(items)
			return p, statusCmd(fmt.Sprintf("Schedule saved: %d activities", len(items)))
		}
	}

	return p, cmd
}

func (p scheduleModel) view() string {
	w := p.width - 4
	s := p.machine.State()

	if p.formActive && p.form != nil {
		title := titleStyle.Render("Load Routine")
		if p.formType == "edit" {
			title = titleStyle.Render("Edit Schedule")
		}
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, title, "", p.form.View()))
	}

	title := titleStyle.Render("Schedule") + mutedStyle.Render("  "+routineName(s.CurrentRoutine))

	if len(s.Schedule) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("Nothing scheduled. Press l to load a routine or e to write one."),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, title, "")
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-3s %-3s %-16s %10s", "", "", "Activity", "Time")))

	for i, item := range s.Schedule {
		a := activity.Resolve(item.Activity)
		cursor := "  "
		style := normalItemStyle
		if i == p.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		marker := mutedStyle.Render("○")
		switch {
		case i < s.CurrentIndex:
			marker = successStyle.Render("✓")
		case i == s.CurrentIndex:
			marker = activityStyle(a.Color).Render("●")
		}
		when := formatMinutes(item.Seconds())
		if i == s.CurrentIndex {
			when = formatCountdown(s.RemainingSeconds) + " / " + when
		}
		rows = append(rows, style.Render(cursor)+marker+" "+a.Icon+" "+
			style.Render(fmt.Sprintf("%-16s %10s", a.Name, when)))
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  l: load routine  e: edit  i: import calendar  x: export"))
	rows = append(rows, mutedStyle.Render("  space: pause  s: skip  +: 5 more min  r: restart"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func routineName(key string) string {
	if r, ok := activity.LookupRoutine(key); ok {
		return r.Name
	}
	if key == timer.CustomRoutine {
		return "Custom"
	}
	return key
}

// formatScheduleInput renders items in the syntax parseScheduleInput reads.
func formatScheduleInput(items []timer.ScheduleItem) string {
	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = fmt.Sprintf("%s:%d", it.Activity, it.Duration)
	}
	return strings.Join(parts, ", ")
}

// parseScheduleInput reads "activity:minutes" pairs separated by commas or
// newlines. Activity names that are not catalog ids are matched as free text
// and kept verbatim when nothing matches.
func parseScheduleInput(s string) ([]timer.ScheduleItem, error) {
	var items []timer.ScheduleItem
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == '\n' || r == ';' })
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		name, mins, ok := strings.Cut(f, ":")
		if !ok {
			return nil, fmt.Errorf("%q: expected activity:minutes", f)
		}
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("%q: missing activity", f)
		}
		n, err := strconv.Atoi(strings.TrimSpace(mins))
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("%q: minutes must be a positive number", f)
		}
		id, matched := activity.MatchFreeText(name)
		if !matched {
			id = strings.ToLower(name)
		}
		items = append(items, timer.ScheduleItem{Activity: id, Duration: n})
	}
	if len(items) == 0 {
		return nil, errors.New("schedule is empty")
	}
	return items, nil
}

func statusCmd(text string) tea.Cmd {
	return func() tea.Msg { return statusMsg{text: text} }
}

func errorCmd(err error) tea.Cmd {
	return func() tea.Msg { return statusMsg{text: "Error: " + err.Error(), isError: true} }
}
