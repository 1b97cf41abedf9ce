package tui

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/kidclock/internal/timer"
)

type settingsModel struct {
	machine *timer.Machine
	width   int
	height  int

	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	icalURL        *string
	refreshMinutes *string
}

func newSettingsModel(m *timer.Machine) settingsModel {
	u, r := "", ""
	return settingsModel{
		machine:        m,
		icalURL:        &u,
		refreshMinutes: &r,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, keys.Enter), key.Matches(msg, keys.Edit):
			return s.showForm()
		}
	}
	return s, nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	cur := s.machine.Settings()
	*s.icalURL = cur.IcalURL
	*s.refreshMinutes = strconv.Itoa(cur.IcalRefreshMinutes)

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Calendar URL (iCal)").
				Description("Leave empty to disable calendar import").
				Value(s.icalURL).
				Validate(validateFeedURL),
			huh.NewInput().
				Title("Refresh every (min)").
				Description("0 imports only on demand").
				Value(s.refreshMinutes).
				Validate(func(v string) error {
					_, err := parseRefreshMinutes(v)
					return err
				}),
		).Title("Calendar"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		return s, s.saveSettings()
	}

	return s, cmd
}

func (s settingsModel) saveSettings() tea.Cmd {
	u := strings.TrimSpace(*s.icalURL)
	mins, err := parseRefreshMinutes(*s.refreshMinutes)
	if err != nil {
		return errorCmd(err)
	}
	s.machine.UpdateSettings(timer.SettingsPatch{IcalURL: &u, IcalRefreshMinutes: &mins})
	return statusCmd("Settings saved")
}

func (s settingsModel) view() string {
	w := s.width - 4
	title := titleStyle.Render("Settings")

	if s.formActive && s.form != nil {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", s.form.View()),
		)
	}

	cur := s.machine.Settings()
	feed := cur.IcalURL
	if feed == "" {
		feed = mutedStyle.Render("not set")
	} else {
		feed = highlightStyle.Render(feed)
	}
	refresh := "on demand"
	if cur.IcalRefreshMinutes > 0 {
		refresh = fmt.Sprintf("every %d min", cur.IcalRefreshMinutes)
	}
	last := "never"
	if t, ok := timer.FromMillis(cur.LastIcalFetch); ok {
		last = t.Local().Format("Jan 02 15:04")
	}

	label := lipgloss.NewStyle().Width(24)
	rows := []string{
		title,
		"",
		fmt.Sprintf("  %s %s", label.Render("Calendar URL"), feed),
		fmt.Sprintf("  %s %s", label.Render("Refresh"), highlightStyle.Render(refresh)),
		fmt.Sprintf("  %s %s", label.Render("Last import"), highlightStyle.Render(last)),
		"",
		mutedStyle.Render("Press enter to edit settings"),
	}
	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

// refreshDue reports whether a periodic calendar import should start. lastTry
// is the last attempt, successful or not, so a failing feed is retried once
// per interval rather than every second.
func refreshDue(cur timer.Settings, lastTry, now time.Time) bool {
	if cur.IcalURL == "" || cur.IcalRefreshMinutes <= 0 {
		return false
	}
	return lastTry.IsZero() || now.Sub(lastTry) >= time.Duration(cur.IcalRefreshMinutes)*time.Minute
}

func validateFeedURL(v string) error {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	u, err := url.Parse(v)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https" && u.Scheme != "webcal") || u.Host == "" {
		return errors.New("enter an http(s) or webcal URL")
	}
	return nil
}

func parseRefreshMinutes(v string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 0 {
		return 0, errors.New("refresh must be a whole number of minutes, 0 or more")
	}
	return n, nil
}
