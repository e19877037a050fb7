package tui

import (
	"github.com/sadopc/dayplan/internal/timer"
)

// timerModel mirrors the engine's counters for rendering. The engine stays
// the source of truth; the mirror is refreshed from its pushes and after
// every transition issued here.
type timerModel struct {
	engine *timer.Engine

	totals  map[timer.Kind]int64
	running map[timer.Kind]bool
}

func newTimerModel(e *timer.Engine) timerModel {
	t := timerModel{
		engine:  e,
		totals:  make(map[timer.Kind]int64, len(timer.Kinds)),
		running: make(map[timer.Kind]bool, len(timer.Kinds)),
	}
	t.sync()
	return t
}

// sync re-reads every counter from the engine.
func (t *timerModel) sync() {
	for _, k := range timer.Kinds {
		t.totals[k] = t.engine.CurrentTotalSeconds(k)
		t.running[k] = t.engine.Running(k)
	}
}

func (t *timerModel) apply(u timer.Update) {
	t.totals[u.Kind] = u.TotalSeconds
}

// toggle starts kind when stopped and stops it when running.
func (t *timerModel) toggle(kind timer.Kind) (started bool, elapsed int64, err error) {
	if t.engine.Running(kind) {
		elapsed, _, err = t.engine.Stop(kind)
		t.sync()
		return false, elapsed, err
	}
	_, err = t.engine.Start(kind)
	t.sync()
	return true, 0, err
}

func (t *timerModel) reset(kind timer.Kind) error {
	err := t.engine.Reset(kind)
	t.sync()
	return err
}

func (t timerModel) total(kind timer.Kind) int64 { return t.totals[kind] }

func (t timerModel) isRunning(kind timer.Kind) bool { return t.running[kind] }

func (t timerModel) anyRunning() bool {
	for _, k := range timer.Kinds {
		if t.running[k] {
			return true
		}
	}
	return false
}
