// Package calendar projects a month onto a fixed 6x7 grid and keeps the
// user's calendar events.
package calendar

import "time"

// GridCells is the size of every month grid: six Sunday-first weeks.
const GridCells = 42

// Cell is one day on the grid.
type Cell struct {
	Date           time.Time
	Day            int
	IsCurrentMonth bool
	IsToday        bool
	Events         []Event
}

// MonthGrid lays out month of year in the local zone.
func MonthGrid(year int, month time.Month) []Cell {
	return MonthGridIn(year, month, time.Local)
}

// MonthGridIn lays out month of year in loc. The grid opens with the tail
// of the previous month so the 1st lands on its weekday column, and is
// padded with the next month up to GridCells.
func MonthGridIn(year int, month time.Month, loc *time.Location) []Cell {
	if loc == nil {
		loc = time.Local
	}
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	// Normalise so month 13 or 0 behave like time.Date does.
	year, month = first.Year(), first.Month()
	lead := int(first.Weekday())

	cells := make([]Cell, GridCells)
	for i := range cells {
		d := time.Date(year, month, 1-lead+i, 0, 0, 0, 0, loc)
		cells[i] = Cell{
			Date:           d,
			Day:            d.Day(),
			IsCurrentMonth: d.Month() == month && d.Year() == year,
		}
	}
	return cells
}

// Annotate marks today's cell and attaches the events that fall on each
// cell's day. The cells are modified in place and returned.
func Annotate(cells []Cell, events []Event, now time.Time) []Cell {
	for i := range cells {
		loc := cells[i].Date.Location()
		cells[i].IsToday = SameDay(cells[i].Date, now, loc)
		cells[i].Events = nil
		for _, ev := range events {
			if SameDay(cells[i].Date, ev.Time(), loc) {
				cells[i].Events = append(cells[i].Events, ev)
			}
		}
	}
	return cells
}

// SameDay reports whether a and b share a calendar date in loc.
func SameDay(a, b time.Time, loc *time.Location) bool {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}
