// Package tasks holds the three independently persisted task collections:
// time plans (flat), today's projects with their tasks (two levels) and the
// SOP tree of goals, sub-goals and steps (three levels).
//
// Every mutation rewrites the whole owning collection before returning.
// A missing id is reported through an ok result, never an error; the error
// result is reserved for persistence failures, which leave the in-memory
// collection authoritative until the next successful write.
package tasks

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/sadopc/dayplan/internal/store"
)

type options struct {
	now func() time.Time
	loc *time.Location
}

// Option configures a collection service.
type Option func(*options)

// WithClock replaces time.Now for creation stamps and the "today" view.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithLocation sets the zone that decides calendar days. Defaults to time.Local.
func WithLocation(loc *time.Location) Option {
	return func(o *options) {
		if loc != nil {
			o.loc = loc
		}
	}
}

func newOptions(opts []Option) options {
	o := options{now: time.Now, loc: time.Local}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o options) stamp() int64 {
	return o.now().UnixMilli()
}

// load decodes key into v. A corrupt blob is logged and treated as empty so
// the next write replaces it; read failures are returned.
func load(a store.Adapter, key string, v any, log zerolog.Logger) error {
	_, err := store.LoadJSON(a, key, v)
	if errors.Is(err, store.ErrCorrupt) {
		log.Warn().Err(err).Str("key", key).Msg("ignoring unreadable collection")
		return nil
	}
	if err != nil {
		return fmt.Errorf("load %s: %w", key, err)
	}
	return nil
}

func save(a store.Adapter, key string, v any, log zerolog.Logger) error {
	if err := store.SaveJSON(a, key, v); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("persist collection")
		return err
	}
	return nil
}

// sameDay compares calendar dates of two instants in loc.
func sameDay(a, b time.Time, loc *time.Location) bool {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}
