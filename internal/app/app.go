// Package app builds every dayplan service exactly once and hands them to
// the CLI and the TUI.
package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/sadopc/dayplan/internal/calendar"
	"github.com/sadopc/dayplan/internal/config"
	"github.com/sadopc/dayplan/internal/export"
	"github.com/sadopc/dayplan/internal/ids"
	"github.com/sadopc/dayplan/internal/logging"
	"github.com/sadopc/dayplan/internal/store"
	"github.com/sadopc/dayplan/internal/tasks"
	"github.com/sadopc/dayplan/internal/timer"
	"github.com/spf13/afero"
)

// App owns the services. Close it to stop tickers and release the database.
type App struct {
	Timer    *timer.Engine
	Plans    *tasks.Plans
	Projects *tasks.Projects
	Tree     *tasks.Tree
	Events   *calendar.Events

	Location *time.Location
	now      func() time.Time
	db       *store.Store
}

// Option adjusts construction.
type Option func(*builder)

type builder struct {
	now      func() time.Time
	gen      ids.Generator
	readOnly bool
}

// WithClock replaces time.Now in every service.
func WithClock(now func() time.Time) Option {
	return func(b *builder) { b.now = now }
}

// WithIDs replaces the ULID generator.
func WithIDs(gen ids.Generator) Option {
	return func(b *builder) { b.gen = gen }
}

// ReadOnly builds a viewing App for commands that only report. The timer
// record is neither recovered nor rewritten, so a run left open by the TUI
// still shows as running.
func ReadOnly() Option {
	return func(b *builder) { b.readOnly = true }
}

// Open opens the database at cfg.DBPath and builds the services on it.
func Open(cfg *config.Config, opts ...Option) (*App, error) {
	db, err := store.New(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	a, err := New(cfg, db, opts...)
	if err != nil {
		db.Close()
		return nil, err
	}
	a.db = db
	return a, nil
}

// New builds the services on an existing adapter.
func New(cfg *config.Config, adapter store.Adapter, opts ...Option) (*App, error) {
	b := builder{now: time.Now, gen: ids.NewULID()}
	for _, opt := range opts {
		opt(&b)
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	timerOpts := []timer.Option{timer.WithClock(b.now), timer.WithTickInterval(cfg.TickInterval)}
	if b.readOnly {
		timerOpts = append(timerOpts, timer.ReadOnly())
	}
	engine, err := timer.New(adapter, timerOpts...)
	if err != nil {
		// The engine still runs from defaults; the next transition rewrites the record.
		logging.Warn().Err(err).Msg("timer state not persisted at startup")
	}

	a := &App{Timer: engine, Location: loc, now: b.now}
	taskOpts := []tasks.Option{tasks.WithClock(b.now), tasks.WithLocation(loc)}
	if a.Plans, err = tasks.NewPlans(adapter, b.gen, taskOpts...); err != nil {
		engine.Close()
		return nil, err
	}
	if a.Projects, err = tasks.NewProjects(adapter, b.gen, taskOpts...); err != nil {
		engine.Close()
		return nil, err
	}
	if a.Tree, err = tasks.NewTree(adapter, b.gen, taskOpts...); err != nil {
		engine.Close()
		return nil, err
	}
	a.Events, err = calendar.NewEvents(adapter, b.gen,
		calendar.WithClock(b.now), calendar.WithLocation(loc))
	if err != nil {
		engine.Close()
		return nil, err
	}
	return a, nil
}

// Now is the clock the services share.
func (a *App) Now() time.Time { return a.now() }

// Snapshot captures every collection for export, rendered in a.Location.
func (a *App) Snapshot() export.Snapshot {
	return export.Take(a.now().In(a.Location), a.Timer, a.Plans, a.Projects, a.Tree, a.Events)
}

// Export writes a snapshot in format f to path on fs.
func (a *App) Export(fs afero.Fs, f export.Format, path string) error {
	if err := export.Write(fs, f, a.Snapshot(), path); err != nil {
		return fmt.Errorf("export %s: %w", f, err)
	}
	return nil
}

// StopTimers stops every running counter, crediting its run, and returns
// the seconds added per kind. The TUI calls it on a clean quit so only a
// crash leaves a run for startup recovery to drop.
func (a *App) StopTimers() (map[timer.Kind]int64, error) {
	stopped := make(map[timer.Kind]int64)
	var errs []error
	for _, k := range timer.Kinds {
		elapsed, ok, err := a.Timer.Stop(k)
		if err != nil {
			errs = append(errs, err)
		}
		if ok {
			stopped[k] = elapsed
		}
	}
	return stopped, errors.Join(errs...)
}

// StoredKeys lists the keys present in the database. It is empty for an App
// built by New on a caller's adapter.
func (a *App) StoredKeys() ([]string, error) {
	if a.db == nil {
		return nil, nil
	}
	return a.db.Keys()
}

// Close stops the timer tickers and closes the database if Open created it.
func (a *App) Close() error {
	a.Timer.Close()
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}
