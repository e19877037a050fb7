package calendar

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/sadopc/dayplan/internal/ids"
	"github.com/sadopc/dayplan/internal/logging"
	"github.com/sadopc/dayplan/internal/store"
)

// DefaultType tags events added without a type.
const DefaultType = "default"

// Event is a dated entry on the calendar. Date keeps the full instant;
// it is reduced to a calendar day only when compared.
type Event struct {
	ID        string `json:"id"`
	Date      int64  `json:"date"` // epoch millis
	Title     string `json:"title"`
	Type      string `json:"type"`
	CreatedAt int64  `json:"createdAt"`
}

// Time returns Date as a time.Time.
func (e Event) Time() time.Time {
	return time.UnixMilli(e.Date)
}

// Option configures Events.
type Option func(*Events)

// WithClock replaces time.Now for creation stamps.
func WithClock(now func() time.Time) Option {
	return func(e *Events) { e.now = now }
}

// WithLocation sets the zone that decides calendar days.
func WithLocation(loc *time.Location) Option {
	return func(e *Events) {
		if loc != nil {
			e.loc = loc
		}
	}
}

// Events is the event collection stored under store.KeyCalendarEvents.
type Events struct {
	mu      sync.Mutex
	adapter store.Adapter
	gen     ids.Generator
	now     func() time.Time
	loc     *time.Location
	log     zerolog.Logger

	events []Event
}

// NewEvents loads the collection from a. An unreadable blob is logged and
// replaced on the next write.
func NewEvents(a store.Adapter, gen ids.Generator, opts ...Option) (*Events, error) {
	e := &Events{
		adapter: a,
		gen:     gen,
		now:     time.Now,
		loc:     time.Local,
		log:     logging.With("calendar"),
	}
	for _, opt := range opts {
		opt(e)
	}
	_, err := store.LoadJSON(a, store.KeyCalendarEvents, &e.events)
	if errors.Is(err, store.ErrCorrupt) {
		e.log.Warn().Err(err).Msg("ignoring unreadable events")
		e.events = nil
	} else if err != nil {
		return nil, fmt.Errorf("load %s: %w", store.KeyCalendarEvents, err)
	}
	return e, nil
}

// Location is the zone used for day matching.
func (e *Events) Location() *time.Location { return e.loc }

// Add records an event on date. An empty typ becomes DefaultType.
func (e *Events) Add(date time.Time, title, typ string) (Event, error) {
	if typ == "" {
		typ = DefaultType
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	ev := Event{
		ID:        e.gen.Next(),
		Date:      date.UnixMilli(),
		Title:     title,
		Type:      typ,
		CreatedAt: e.now().UnixMilli(),
	}
	e.events = append(e.events, ev)
	return ev, e.saveLocked()
}

// Delete removes the event with id.
func (e *Events) Delete(id string) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i := range e.events {
		if e.events[i].ID == id {
			e.events = append(e.events[:i], e.events[i+1:]...)
			return true, e.saveLocked()
		}
	}
	return false, nil
}

// OnDate returns the events whose date falls on the same calendar day as
// date, ignoring time of day.
func (e *Events) OnDate(date time.Time) []Event {
	e.mu.Lock()
	defer e.mu.Unlock()

	var out []Event
	for _, ev := range e.events {
		if SameDay(ev.Time(), date, e.loc) {
			out = append(out, ev)
		}
	}
	return out
}

// List returns every event in insertion order.
func (e *Events) List() []Event {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]Event(nil), e.events...)
}

// Month returns the annotated grid for c.
func (e *Events) Month(c Cursor) []Cell {
	return Annotate(c.Grid(e.loc), e.List(), e.now())
}

func (e *Events) saveLocked() error {
	if err := store.SaveJSON(e.adapter, store.KeyCalendarEvents, e.events); err != nil {
		e.log.Warn().Err(err).Msg("persist events")
		return err
	}
	return nil
}
