package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/sadopc/dayplan/internal/app"
	"github.com/sadopc/dayplan/internal/calendar"
)

var eventTypes = []string{calendar.DefaultType, "work", "study", "personal"}

var weekdayHeader = []string{"Su", "Mo", "Tu", "We", "Th", "Fr", "Sa"}

type calendarModel struct {
	app    *app.App
	width  int
	height int

	cursor   calendar.Cursor
	selected time.Time
	cells    []calendar.Cell

	// focusEvents moves up/down/delete from the grid to the day's event list.
	focusEvents bool
	eventCursor int

	formActive bool
	form       *huh.Form
	formTitle  *string
	formType   *string
}

func newCalendarModel(a *app.App) calendarModel {
	now := a.Now().In(a.Location)
	title, typ := "", ""
	return calendarModel{
		app:       a,
		cursor:    calendar.CursorAt(now),
		selected:  time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, a.Location),
		formTitle: &title,
		formType:  &typ,
	}
}

func (c *calendarModel) setSize(w, h int) {
	c.width = w
	c.height = h
}

type calendarDataMsg struct {
	cells []calendar.Cell
}

func (c calendarModel) refresh() tea.Cmd {
	cursor := c.cursor
	return func() tea.Msg {
		return calendarDataMsg{cells: c.app.Events.Month(cursor)}
	}
}

// dayEvents returns the events of the selected day from the loaded grid.
func (c calendarModel) dayEvents() []calendar.Event {
	for _, cell := range c.cells {
		if calendar.SameDay(cell.Date, c.selected, c.app.Location) {
			return cell.Events
		}
	}
	return c.app.Events.OnDate(c.selected)
}

// moveTo selects day and follows it into another month when needed.
func (c calendarModel) moveTo(day time.Time) (calendarModel, tea.Cmd) {
	c.selected = day
	c.eventCursor = 0
	next := calendar.CursorAt(day)
	if next != c.cursor {
		c.cursor = next
		return c, c.refresh()
	}
	return c, nil
}

func (c calendarModel) shiftMonth(next calendar.Cursor) (calendarModel, tea.Cmd) {
	day := min(c.selected.Day(), daysIn(next))
	return c.moveTo(time.Date(next.Year, next.Month, day, 0, 0, 0, 0, c.app.Location))
}

func daysIn(c calendar.Cursor) int {
	return time.Date(c.Year, c.Month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func (c calendarModel) update(msg tea.Msg) (calendarModel, tea.Cmd) {
	if c.formActive && c.form != nil {
		return c.updateForm(msg)
	}

	switch msg := msg.(type) {
	case calendarDataMsg:
		c.cells = msg.cells
		c.eventCursor = clampCursor(c.eventCursor, len(c.dayEvents()))
		return c, nil

	case tea.KeyMsg:
		if c.focusEvents {
			return c.updateEventList(msg)
		}
		switch {
		case key.Matches(msg, keys.Left):
			return c.moveTo(c.selected.AddDate(0, 0, -1))
		case key.Matches(msg, keys.Right):
			return c.moveTo(c.selected.AddDate(0, 0, 1))
		case key.Matches(msg, keys.Up):
			return c.moveTo(c.selected.AddDate(0, 0, -7))
		case key.Matches(msg, keys.Down):
			return c.moveTo(c.selected.AddDate(0, 0, 7))
		case key.Matches(msg, keys.PrevMonth):
			return c.shiftMonth(c.cursor.Prev())
		case key.Matches(msg, keys.NextMonth):
			return c.shiftMonth(c.cursor.Next())
		case key.Matches(msg, keys.Enter):
			if len(c.dayEvents()) > 0 {
				c.focusEvents = true
				c.eventCursor = 0
			}
		case key.Matches(msg, keys.New):
			return c.showForm()
		}
	}
	return c, nil
}

func (c calendarModel) updateEventList(msg tea.KeyMsg) (calendarModel, tea.Cmd) {
	events := c.dayEvents()
	switch {
	case key.Matches(msg, keys.Back), key.Matches(msg, keys.Enter):
		c.focusEvents = false
	case key.Matches(msg, keys.Up):
		if c.eventCursor > 0 {
			c.eventCursor--
		}
	case key.Matches(msg, keys.Down):
		if c.eventCursor < len(events)-1 {
			c.eventCursor++
		}
	case key.Matches(msg, keys.Delete):
		if c.eventCursor < len(events) {
			if _, err := c.app.Events.Delete(events[c.eventCursor].ID); err != nil {
				return c, errorCmd("Delete event", err)
			}
			if len(events) == 1 {
				c.focusEvents = false
			}
			return c, c.refresh()
		}
	case key.Matches(msg, keys.New):
		return c.showForm()
	}
	return c, nil
}

func (c calendarModel) showForm() (calendarModel, tea.Cmd) {
	*c.formTitle = ""
	*c.formType = calendar.DefaultType

	typeOptions := make([]huh.Option[string], len(eventTypes))
	for i, t := range eventTypes {
		typeOptions[i] = huh.NewOption(t, t)
	}

	c.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Event on " + c.selected.Format("Mon Jan 2")).Value(c.formTitle),
			huh.NewSelect[string]().Title("Type").Options(typeOptions...).Value(c.formType),
		),
	).WithShowHelp(true).WithShowErrors(true)

	c.formActive = true
	return c, c.form.Init()
}

func (c calendarModel) updateForm(msg tea.Msg) (calendarModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			c.formActive = false
			c.form = nil
			return c, nil
		}
	}

	form, cmd := c.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		c.form = f
	}

	if c.form.State == huh.StateCompleted {
		c.formActive = false
		if err := c.submit(); err != nil {
			return c, tea.Batch(errorCmd("Save event", err), c.refresh())
		}
		return c, c.refresh()
	}
	return c, cmd
}

func (c calendarModel) submit() error {
	title := strings.TrimSpace(*c.formTitle)
	if title == "" {
		return nil
	}
	_, err := c.app.Events.Add(c.selected, title, *c.formType)
	return err
}

func (c calendarModel) view() string {
	w := c.width - 4

	if c.formActive && c.form != nil {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render("New Event"), "", c.form.View()),
		)
	}

	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Calendar"), "  ", highlightStyle.Render(c.cursor.Label()),
	)
	nav := mutedStyle.Render("  arrows: move  [/]: month  n: new event  enter: events")
	if c.focusEvents {
		nav = mutedStyle.Render("  ↑/↓: select  d: delete  n: new  esc: back to grid")
	}

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", c.renderGrid(), "", c.renderDayEvents(), "", nav,
		),
	)
}

func (c calendarModel) renderGrid() string {
	var head []string
	for _, d := range weekdayHeader {
		head = append(head, dayCellStyle.Render(mutedStyle.Render(d)))
	}
	rows := []string{lipgloss.JoinHorizontal(lipgloss.Top, head...)}

	for week := 0; week < calendar.GridCells/7; week++ {
		var line []string
		for _, cell := range c.cells[min(week*7, len(c.cells)):min(week*7+7, len(c.cells))] {
			label := fmt.Sprintf("%d", cell.Day)
			if len(cell.Events) > 0 {
				label += "•"
			}
			style := normalItemStyle
			switch {
			case calendar.SameDay(cell.Date, c.selected, c.app.Location):
				style = selectedDayStyle
			case cell.IsToday:
				style = todayStyle
			case !cell.IsCurrentMonth:
				style = otherMonthStyle
			}
			line = append(line, dayCellStyle.Render(style.Render(label)))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, line...))
	}
	return strings.Join(rows, "\n")
}

func (c calendarModel) renderDayEvents() string {
	now := c.app.Now()
	when := "today"
	if !calendar.SameDay(c.selected, now, c.app.Location) {
		when = humanize.RelTime(c.selected, now, "ago", "from now")
	}
	title := titleStyle.Render(c.selected.Format("Monday, January 2")) + "  " + mutedStyle.Render(when)

	events := c.dayEvents()
	if len(events) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, title, mutedStyle.Render("  No events"))
	}
	rows := []string{title}
	for i, ev := range events {
		style := normalItemStyle
		selected := c.focusEvents && i == c.eventCursor
		if selected {
			style = selectedItemStyle
		}
		rows = append(rows, cursorPrefix(selected)+style.Render(ev.Title)+"  "+mutedStyle.Render("["+ev.Type+"]"))
	}
	return strings.Join(rows, "\n")
}
