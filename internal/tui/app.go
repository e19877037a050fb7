package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/dayplan/internal/app"
	"github.com/sadopc/dayplan/internal/export"
	"github.com/sadopc/dayplan/internal/logging"
	"github.com/sadopc/dayplan/internal/timer"
	"github.com/spf13/afero"
)

// App is the root Bubble Tea model.
type App struct {
	app    *app.App
	width  int
	height int

	// Live totals pushed by the engine's ticker goroutine.
	updates     chan timer.Update
	unsubscribe func()

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int
	exportFs      afero.Fs
	exportDir     string

	dashboard dashboardModel
	plans     plansModel
	projects  projectsModel
	sop       sopModel
	calendar  calendarModel

	help    help.Model
	status  string
	isError bool
}

// NewApp builds the root model and subscribes to timer updates. Call Close
// once the program has exited.
func NewApp(a *app.App) App {
	h := help.New()
	h.ShowAll = false

	updates := make(chan timer.Update, 8)
	unsubscribe := a.Timer.Subscribe(func(u timer.Update) {
		// Drop rather than block the ticker; the next tick carries a fresh total.
		select {
		case updates <- u:
		default:
		}
	})

	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}

	return App{
		app:         a,
		updates:     updates,
		unsubscribe: unsubscribe,
		activeView:  viewDashboard,
		exportFs:    afero.NewOsFs(),
		exportDir:   home,
		dashboard:   newDashboardModel(a),
		plans:       newPlansModel(a),
		projects:    newProjectsModel(a),
		sop:         newSOPModel(a),
		calendar:    newCalendarModel(a),
		help:        h,
	}
}

// Close detaches the model from the timer engine.
func (a App) Close() {
	if a.unsubscribe != nil {
		a.unsubscribe()
	}
}

// stopTimers credits any open run before the program exits.
func (a App) stopTimers() {
	stopped, err := a.app.StopTimers()
	if err != nil {
		logging.Warn().Err(err).Msg("stop timers on quit")
	}
	for k, secs := range stopped {
		logging.Info().Str("kind", string(k)).Int64("seconds", secs).Msg("stopped timer on quit")
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(
		a.dashboard.Init(),
		waitForTimer(a.updates),
		tickCmd(),
	)
}

func waitForTimer(ch <-chan timer.Update) tea.Cmd {
	return func() tea.Msg {
		return timerUpdateMsg(<-ch)
	}
}

// tickCmd refreshes day-bound views so "today" rolls over at midnight.
func tickCmd() tea.Cmd {
	return tea.Tick(time.Minute, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.dashboard.setSize(a.width, contentHeight)
		a.plans.setSize(a.width, contentHeight)
		a.projects.setSize(a.width, contentHeight)
		a.sop.setSize(a.width, contentHeight)
		a.calendar.setSize(a.width, contentHeight)
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
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Quit):
			a.stopTimers()
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			a.activeView = viewDashboard
			return a, a.dashboard.loadData()
		case key.Matches(msg, keys.Tab2):
			a.activeView = viewPlans
			return a, a.plans.refresh()
		case key.Matches(msg, keys.Tab3):
			a.activeView = viewProjects
			return a, a.projects.refresh()
		case key.Matches(msg, keys.Tab4):
			a.activeView = viewSOP
			return a, a.sop.refresh()
		case key.Matches(msg, keys.Tab5):
			a.activeView = viewCalendar
			return a, a.calendar.refresh()
		case key.Matches(msg, keys.Tab):
			a.activeView = (a.activeView + 1) % viewState(len(viewNames))
			return a, a.refreshCurrentView()
		case a.activeView != viewDashboard && (key.Matches(msg, keys.Work) || key.Matches(msg, keys.Study)):
			// Timers can be toggled from any view.
			var cmd tea.Cmd
			a.dashboard, cmd = a.dashboard.update(msg)
			return a, cmd
		}

	case timerUpdateMsg:
		var cmd tea.Cmd
		a.dashboard, cmd = a.dashboard.update(msg)
		return a, tea.Batch(cmd, waitForTimer(a.updates))

	case tickMsg:
		cmds = append(cmds, tickCmd())
		var cmd tea.Cmd
		a.dashboard, cmd = a.dashboard.update(msg)
		cmds = append(cmds, cmd)
		if a.activeView == viewPlans {
			cmds = append(cmds, a.plans.refresh())
		}
		return a, tea.Batch(cmds...)

	case statusMsg:
		a.status = msg.text
		a.isError = msg.isError
		return a, nil

	case timerStoppedMsg:
		a.status = fmt.Sprintf("%s timer stopped (+%s)", msg.kind.Label(), timer.FormatSeconds(msg.elapsed))
		a.isError = false
		return a, nil

	case timerStartedMsg:
		a.status = msg.kind.Label() + " timer started"
		a.isError = false
		return a, nil

	case exportDoneMsg:
		a.status = "Exported to " + msg.path
		a.isError = false
		a.exportPicking = false
		return a, nil
	}

	return a.updateActiveView(msg)
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewDashboard:
		a.dashboard, cmd = a.dashboard.update(msg)
	case viewPlans:
		a.plans, cmd = a.plans.update(msg)
	case viewProjects:
		a.projects, cmd = a.projects.update(msg)
	case viewSOP:
		a.sop, cmd = a.sop.update(msg)
	case viewCalendar:
		a.calendar, cmd = a.calendar.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	switch a.activeView {
	case viewPlans:
		return a.plans.formActive
	case viewProjects:
		return a.projects.formActive
	case viewSOP:
		return a.sop.formActive
	case viewCalendar:
		return a.calendar.formActive
	}
	return false
}

func (a App) refreshCurrentView() tea.Cmd {
	switch a.activeView {
	case viewDashboard:
		return a.dashboard.loadData()
	case viewPlans:
		return a.plans.refresh()
	case viewProjects:
		return a.projects.refresh()
	case viewSOP:
		return a.sop.refresh()
	case viewCalendar:
		return a.calendar.refresh()
	}
	return nil
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewDashboard:
		content = a.dashboard.view()
	case viewPlans:
		content = a.plans.view()
	case viewProjects:
		content = a.projects.view()
	case viewSOP:
		content = a.sop.view()
	case viewCalendar:
		content = a.calendar.view()
	}

	// Calculate available height for content
	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := max(a.height-headerHeight-footerHeight, 1)

	// Show export picker overlay
	if a.exportPicking {
		content = a.renderExportPicker()
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

	title := brandStyle.Render("dayplan")
	gap := max(a.width-lipgloss.Width(title)-lipgloss.Width(tabRow)-4, 1)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		style := mutedStyle
		if a.isError {
			style = errorStyle
		}
		status = style.Render(" " + a.status)
	}

	// Running timers in footer
	var running []string
	for _, k := range timer.Kinds {
		if a.dashboard.timer.isRunning(k) {
			running = append(running, successStyle.Render("● "+k.Label()+" "+formatSeconds(a.dashboard.timer.total(k))))
		}
	}
	timerInfo := ""
	if len(running) > 0 {
		timerInfo = " " + strings.Join(running, "  ")
	}

	left := footerStyle.Render(helpView)
	right := timerInfo + status

	gap := max(a.width-lipgloss.Width(left)-lipgloss.Width(right)-2, 1)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

func (a App) renderExportPicker() string {
	title := titleStyle.Render("Export Format")
	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	for i, f := range export.Formats {
		style := normalItemStyle
		if i == a.exportCursor {
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursorPrefix(i == a.exportCursor)+strings.ToUpper(string(f))))
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
		if a.exportCursor < len(export.Formats)-1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(export.Formats[a.exportCursor])
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

func (a App) doExport(f export.Format) tea.Cmd {
	return func() tea.Msg {
		dateStr := a.app.Now().Format("2006-01-02")
		path := filepath.Join(a.exportDir, fmt.Sprintf("dayplan-export-%s.%s", dateStr, f))
		if err := a.app.Export(a.exportFs, f, path); err != nil {
			return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
		}
		return exportDoneMsg{path: path}
	}
}
