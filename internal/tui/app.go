package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jonboulle/clockwork"

	"github.com/sadopc/kidclock/internal/export"
	"github.com/sadopc/kidclock/internal/timer"
)

const syncTimeout = 30 * time.Second

// Importer replaces the schedule with today's calendar events.
// *calendar.Importer satisfies it.
type Importer interface {
	Sync(ctx context.Context, m *timer.Machine) (bool, error)
}

type Options struct {
	Importer  Importer        // nil disables calendar import
	Clock     clockwork.Clock // defaults to the real clock
	ExportDir string          // defaults to the home directory
}

// App is the root Bubble Tea model.
type App struct {
	machine   *timer.Machine
	importer  Importer
	clock     clockwork.Clock
	exportDir string

	width  int
	height int

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int

	face     clockModel
	schedule scheduleModel
	overview overviewModel
	settings settingsModel

	syncing  bool
	lastSync time.Time

	help      help.Model
	status    string
	statusErr bool
}

func NewApp(m *timer.Machine, opts Options) App {
	h := help.New()
	h.ShowAll = false

	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.ExportDir == "" {
		opts.ExportDir, _ = os.UserHomeDir()
	}

	return App{
		machine:    m,
		importer:   opts.Importer,
		clock:      opts.Clock,
		exportDir:  opts.ExportDir,
		activeView: viewClock,
		schedule:   newScheduleModel(m),
		settings:   newSettingsModel(m),
		help:       h,
	}
}

func (a App) Init() tea.Cmd {
	return tickCmd()
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.face.setSize(a.width, contentHeight)
		a.schedule.setSize(a.width, contentHeight)
		a.overview.setSize(a.width, contentHeight)
		a.settings.setSize(a.width, contentHeight)
		return a, nil

	case tea.KeyMsg:
		// Export picker
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// If a child view is capturing input (e.g. form), delegate first.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			a.activeView = viewClock
			return a, nil
		case key.Matches(msg, keys.Tab2):
			a.activeView = viewSchedule
			return a, nil
		case key.Matches(msg, keys.Tab3):
			a.activeView = viewOverview
			return a, nil
		case key.Matches(msg, keys.Tab4):
			a.activeView = viewSettings
			return a, nil
		case key.Matches(msg, keys.Tab):
			a.activeView = (a.activeView + 1) % viewState(len(viewNames))
			return a, nil
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Pause):
			a.machine.TogglePause()
			return a, nil
		case key.Matches(msg, keys.Skip):
			a.machine.Skip()
			return a, nil
		case key.Matches(msg, keys.AddTime):
			if _, ok := a.machine.Current(); ok {
				a.machine.AddTime(5)
				a.setStatus("Added 5 minutes", false)
			}
			return a, nil
		case key.Matches(msg, keys.Restart):
			a.face.celebrating = 0
			a.machine.Restart()
			a.setStatus("Back to the start", false)
			return a, nil
		case key.Matches(msg, keys.Import):
			return a.startSync()
		}

	case tickMsg:
		return a.tick(time.Time(msg))

	case statusMsg:
		a.setStatus(msg.text, msg.isError)
		return a, nil

	case syncDoneMsg:
		a.syncing = false
		switch {
		case msg.err != nil:
			a.setStatus(fmt.Sprintf("Calendar import failed: %v", msg.err), true)
		case msg.imported:
			a.face.celebrating = 0
			a.setStatus(fmt.Sprintf("Imported %d activities from the calendar", len(a.machine.State().Schedule)), false)
		default:
			a.setStatus("No matching calendar events today", false)
		}
		return a, nil

	case exportDoneMsg:
		a.setStatus("Exported to "+msg.path, false)
		a.exportPicking = false
		return a, nil
	}

	return a.updateActiveView(msg)
}

// tick drives the countdown once per second. When an activity runs out the
// face celebrates for a few seconds and then starts the next one.
func (a App) tick(_ time.Time) (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{tickCmd()}

	switch {
	case a.face.celebrating > 0:
		a.face.celebrating--
		if a.face.celebrating == 0 {
			s := a.machine.State()
			// A restart, import or edit during the celebration wins. A pause
			// holds the advance: the next tick after resuming reports the
			// transition again.
			if s.CurrentIndex == a.face.celebratingIndex && s.RemainingSeconds <= 0 && !s.IsPaused {
				a.machine.AdvanceToNext()
			}
		}
	case a.machine.Tick():
		if cur, ok := a.machine.Current(); ok {
			a.face.celebrating = celebrationTicks
			a.face.celebratingIndex = cur.Index
			a.setStatus(cur.Name+" is done!", false)
		} else {
			a.machine.AdvanceToNext()
		}
	}

	if !a.syncing && refreshDue(a.machine.Settings(), a.lastSync, a.clock.Now()) {
		var cmd tea.Cmd
		a, cmd = a.beginSync()
		cmds = append(cmds, cmd)
	}
	return a, tea.Batch(cmds...)
}

// startSync handles the import key.
func (a App) startSync() (tea.Model, tea.Cmd) {
	switch {
	case a.importer == nil:
		a.setStatus("Calendar import is not available", true)
		return a, nil
	case a.machine.Settings().IcalURL == "":
		a.setStatus("Set a calendar URL in Settings first", true)
		return a, nil
	case a.syncing:
		a.setStatus("Calendar import already running", false)
		return a, nil
	}
	return a.beginSync()
}

func (a *App) setStatus(text string, isErr bool) {
	a.status = text
	a.statusErr = isErr
}

func (a App) beginSync() (App, tea.Cmd) {
	if a.importer == nil {
		return a, nil
	}
	a.syncing = true
	a.lastSync = a.clock.Now()
	a.setStatus("Importing calendar...", false)

	importer, m := a.importer, a.machine
	return a, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), syncTimeout)
		defer cancel()
		ok, err := importer.Sync(ctx, m)
		return syncDoneMsg{imported: ok, err: err}
	}
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewSchedule:
		a.schedule, cmd = a.schedule.update(msg)
	case viewSettings:
		a.settings, cmd = a.settings.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	switch a.activeView {
	case viewSchedule:
		return a.schedule.formActive
	case viewSettings:
		return a.settings.formActive
	}
	return false
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	s := a.machine.State()
	var content string
	switch a.activeView {
	case viewClock:
		content = a.face.view(s)
	case viewSchedule:
		content = a.schedule.view()
	case viewOverview:
		content = a.overview.view(s, a.clock.Now())
	case viewSettings:
		content = a.settings.view()
	}

	// Calculate available height for content
	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := max(1, a.height-headerHeight-footerHeight)

	// Show export picker overlay
	if a.exportPicking {
		content = a.renderExportPicker(contentHeight)
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("kidclock")
	gap := max(1, a.width-lipgloss.Width(title)-lipgloss.Width(tabRow)-4)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		status = mutedStyle.Render(" " + a.status)
		if a.statusErr {
			status = errorStyle.Render(" " + a.status)
		}
	}
	if a.syncing {
		status = warningStyle.Render(" ⟳") + status
	}

	// Countdown indicator in footer
	timerInfo := ""
	if cur, ok := a.machine.Current(); ok && a.activeView != viewClock {
		s := a.machine.State()
		timerInfo = successStyle.Render(" ● " + cur.Name + " " + formatCountdown(s.RemainingSeconds))
		if s.IsPaused {
			timerInfo = warningStyle.Render(" ⏸ " + cur.Name + " " + formatCountdown(s.RemainingSeconds))
		}
	}

	left := footerStyle.Render(helpView)
	right := timerInfo + status

	gap := max(1, a.width-lipgloss.Width(left)-lipgloss.Width(right)-2)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

func (a App) renderExportPicker(_ int) string {
	title := titleStyle.Render("Export Today's Plan")
	formats := []string{"CSV", "JSON"}
	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	for i, f := range formats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+f))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: export  esc: cancel"))

	w := a.width - 4
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < 1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(a.exportCursor)
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

func (a App) doExport(format int) tea.Cmd {
	state, now, dir := a.machine.State(), a.clock.Now(), a.exportDir
	return func() tea.Msg {
		dateStr := now.Format("2006-01-02")

		var path string
		if format == 0 {
			path = filepath.Join(dir, fmt.Sprintf("kidclock-plan-%s.csv", dateStr))
			if err := export.ToCSV(state, now, path); err != nil {
				return statusMsg{text: fmt.Sprintf("CSV error: %v", err), isError: true}
			}
		} else {
			path = filepath.Join(dir, fmt.Sprintf("kidclock-plan-%s.json", dateStr))
			if err := export.ToJSON(state, now, path); err != nil {
				return statusMsg{text: fmt.Sprintf("JSON error: %v", err), isError: true}
			}
		}

		return exportDoneMsg{path: path}
	}
}
