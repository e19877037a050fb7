package calendar

import (
	"fmt"
	"time"
)

// Cursor is the month the calendar view is showing.
type Cursor struct {
	Year  int
	Month time.Month
}

// CursorAt returns the cursor for the month containing t.
func CursorAt(t time.Time) Cursor {
	return Cursor{Year: t.Year(), Month: t.Month()}
}

// Next moves one month forward.
func (c Cursor) Next() Cursor { return c.shift(1) }

// Prev moves one month back.
func (c Cursor) Prev() Cursor { return c.shift(-1) }

func (c Cursor) shift(n int) Cursor {
	t := time.Date(c.Year, c.Month+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	return Cursor{Year: t.Year(), Month: t.Month()}
}

// Label renders "October 2026".
func (c Cursor) Label() string {
	return fmt.Sprintf("%s %d", c.Month, c.Year)
}

// Grid lays out the cursor's month in loc.
func (c Cursor) Grid(loc *time.Location) []Cell {
	return MonthGridIn(c.Year, c.Month, loc)
}
