package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sadopc/dayplan/internal/timer"
)

// viewState represents the currently active view.
type viewState int

const (
	viewDashboard viewState = iota
	viewPlans
	viewProjects
	viewSOP
	viewCalendar
)

var viewNames = []string{"Dashboard", "Plans", "Projects", "SOP", "Calendar"}

// --- Messages ---

// timerUpdateMsg carries a live total pushed by the timer engine.
type timerUpdateMsg timer.Update

type timerStartedMsg struct {
	kind timer.Kind
}

type timerStoppedMsg struct {
	kind    timer.Kind
	elapsed int64
}

type statusMsg struct {
	text    string
	isError bool
}

type tickMsg time.Time

type exportDoneMsg struct {
	path string
}

// --- Helpers ---

func statusCmd(text string, isError bool) tea.Cmd {
	return func() tea.Msg { return statusMsg{text: text, isError: isError} }
}

func errorCmd(action string, err error) tea.Cmd {
	return statusCmd(fmt.Sprintf("%s: %v", action, err), true)
}

func formatDuration(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func formatSeconds(secs int64) string {
	return formatDuration(time.Duration(secs) * time.Second)
}

func formatHours(secs int64) string {
	return timer.FormatHours(secs) + "h"
}

func clampCursor(cursor, n int) int {
	if cursor >= n {
		cursor = n - 1
	}
	return max(cursor, 0)
}

func cursorPrefix(selected bool) string {
	if selected {
		return "> "
	}
	return "  "
}
