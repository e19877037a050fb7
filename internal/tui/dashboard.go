package tui

import (
	"fmt"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/dayplan/internal/app"
	"github.com/sadopc/dayplan/internal/tasks"
	"github.com/sadopc/dayplan/internal/timer"
)

type dashboardModel struct {
	app    *app.App
	timer  timerModel
	width  int
	height int

	todayPlans []tasks.Plan
	projects   []tasks.Project
	recovered  []timer.Kind

	chart barchart.Model
}

func newDashboardModel(a *app.App) dashboardModel {
	return dashboardModel{
		app:       a,
		timer:     newTimerModel(a.Timer),
		recovered: a.Timer.Recovered(),
		chart:     barchart.New(40, 8),
	}
}

func (d dashboardModel) Init() tea.Cmd {
	return d.loadData()
}

func (d *dashboardModel) setSize(w, h int) {
	d.width = w
	d.height = h
	d.buildChart()
}

type dashboardDataMsg struct {
	todayPlans []tasks.Plan
	projects   []tasks.Project
}

func (d dashboardModel) loadData() tea.Cmd {
	return func() tea.Msg {
		return dashboardDataMsg{
			todayPlans: d.app.Plans.Today(),
			projects:   d.app.Projects.List(),
		}
	}
}

func (d dashboardModel) update(msg tea.Msg) (dashboardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardDataMsg:
		d.todayPlans = msg.todayPlans
		d.projects = msg.projects
		d.buildChart()
		return d, nil

	case timerUpdateMsg:
		d.timer.apply(timer.Update(msg))
		d.buildChart()
		return d, nil

	case tickMsg:
		return d, d.loadData()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Work):
			return d.toggleTimer(timer.Work)
		case key.Matches(msg, keys.Study):
			return d.toggleTimer(timer.Study)
		case key.Matches(msg, keys.Reset):
			return d.resetTimers()
		}
	}
	return d, nil
}

func (d dashboardModel) toggleTimer(kind timer.Kind) (dashboardModel, tea.Cmd) {
	d.recovered = nil
	started, elapsed, err := d.timer.toggle(kind)
	d.buildChart()
	if err != nil {
		return d, errorCmd("Save timer", err)
	}
	if started {
		return d, func() tea.Msg { return timerStartedMsg{kind: kind} }
	}
	return d, func() tea.Msg { return timerStoppedMsg{kind: kind, elapsed: elapsed} }
}

// resetTimers zeroes the counters that are not running.
func (d dashboardModel) resetTimers() (dashboardModel, tea.Cmd) {
	for _, k := range timer.Kinds {
		if d.timer.isRunning(k) {
			continue
		}
		if err := d.timer.reset(k); err != nil {
			return d, errorCmd("Reset timer", err)
		}
	}
	d.buildChart()
	return d, statusCmd("Stopped timers reset", false)
}

func (d *dashboardModel) buildChart() {
	chartWidth := max(d.width-8, 20)
	d.chart = barchart.New(chartWidth, 8)

	var bars []barchart.BarData
	for _, k := range timer.Kinds {
		tracked := float64(d.timer.total(k)) / 3600
		planned := float64(tasks.TotalMinutes(d.todayPlans, k)) / 60
		style := kindStyle(k)
		bars = append(bars,
			barchart.BarData{
				Label:  k.Label(),
				Values: []barchart.BarValue{{Name: "tracked", Value: tracked, Style: style}},
			},
			barchart.BarData{
				Label:  k.Label() + " plan",
				Values: []barchart.BarValue{{Name: "planned", Value: planned, Style: mutedStyle}},
			},
		)
	}
	d.chart.PushAll(bars)
	d.chart.Draw()
}

func (d dashboardModel) view() string {
	if d.width < 20 {
		return "Terminal too small"
	}
	contentWidth := d.width - 4

	return lipgloss.JoinVertical(lipgloss.Left,
		d.renderTimerPanel(contentWidth),
		d.renderChartPanel(contentWidth),
		d.renderTodayPanel(contentWidth),
	)
}

func (d dashboardModel) renderTimerPanel(w int) string {
	half := max((w-6)/2, 10)
	var cols []string
	for _, k := range timer.Kinds {
		total := d.timer.total(k)
		var timeDisplay, indicator string
		if d.timer.isRunning(k) {
			timeDisplay = timerRunningStyle.Width(half).Render(formatSeconds(total))
			indicator = successStyle.Render("●  " + strings.ToUpper(k.Label()))
		} else {
			timeDisplay = timerStyle.Width(half).Render(formatSeconds(total))
			indicator = mutedStyle.Render("■  " + strings.ToUpper(k.Label()))
		}
		cols = append(cols, lipgloss.JoinVertical(lipgloss.Center,
			timeDisplay,
			lipgloss.NewStyle().Width(half).Align(lipgloss.Center).Render(indicator),
			lipgloss.NewStyle().Width(half).Align(lipgloss.Center).Render(mutedStyle.Render(timer.FormatSeconds(total))),
		))
	}
	content := lipgloss.JoinHorizontal(lipgloss.Top, cols...)

	if len(d.recovered) > 0 {
		names := make([]string, len(d.recovered))
		for i, k := range d.recovered {
			names[i] = k.Label()
		}
		content = lipgloss.JoinVertical(lipgloss.Left, content, "",
			warningStyle.Render("Interrupted run dropped: "+strings.Join(names, ", ")))
	}

	if d.timer.anyRunning() {
		return activePanelStyle.Width(w).Render(content)
	}
	hint := mutedStyle.Render("Press w or s to start a timer")
	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Center, content, hint))
}

func (d dashboardModel) renderChartPanel(w int) string {
	title := titleStyle.Render("Tracked vs planned today (hours)")
	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, title, "", d.chart.View()))
}

func (d dashboardModel) renderTodayPanel(w int) string {
	title := titleStyle.Render("Today")
	var rows []string
	rows = append(rows, title)

	if len(d.todayPlans) == 0 {
		rows = append(rows, mutedStyle.Render("No time plans today. Press 2 to add one."))
	}
	for _, p := range d.todayPlans {
		dot := kindStyle(p.Kind).Render("●")
		rows = append(rows, fmt.Sprintf("  %s %-24s %s", dot, p.Title, mutedStyle.Render(p.Display())))
	}

	open := 0
	for _, p := range d.projects {
		if p.Status == tasks.StatusInProgress {
			open++
		}
	}
	if len(d.projects) > 0 {
		rows = append(rows, "", fmt.Sprintf("  %s  %d of %d projects in progress",
			highlightStyle.Render("Projects"), open, len(d.projects)))
	}
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
