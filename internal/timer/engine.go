// Package timer accrues elapsed work and study time.
//
// Each counter is a small state machine: stopped → running on Start, running →
// stopped on Stop, with the elapsed whole seconds folded into an accumulated
// total. Totals are always derived from the wall clock and the start
// timestamp, never from counting ticks, so missed or late ticks cannot drift.
package timer

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/sadopc/dayplan/internal/logging"
	"github.com/sadopc/dayplan/internal/store"
)

// Update is pushed to listeners on every tick while a counter runs.
type Update struct {
	Kind         Kind
	TotalSeconds int64
}

// Listener receives live totals. Listeners run on the ticker goroutine and
// must not call Stop or Reset synchronously.
type Listener func(Update)

// Option configures an Engine.
type Option func(*Engine)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithTickInterval sets the live notification cadence (default one second).
func WithTickInterval(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.interval = d
		}
	}
}

// ReadOnly opens the record for viewing. New skips startup recovery and never
// writes, so a run left open shows as running with its live total. Start, Stop
// and Reset fail with ErrReadOnly.
func ReadOnly() Option {
	return func(e *Engine) { e.readOnly = true }
}

// Engine owns the work and study counters and persists them under
// store.KeyTimerState after every transition.
type Engine struct {
	mu       sync.Mutex
	adapter  store.Adapter
	now      func() time.Time
	interval time.Duration
	log      zerolog.Logger
	readOnly bool

	states    map[Kind]*State
	tickers   map[Kind]*ticker
	listeners map[uint64]Listener
	nextID    uint64
	recovered []Kind
}

// New loads the persisted counters, upgrading legacy records, and, unless
// opened ReadOnly, applies the startup recovery rule: a counter left running by a previous process is
// stopped without crediting the time since its start. The corrected state is
// written back immediately.
//
// A non-nil error reports a persistence failure; the returned Engine is still
// usable and the write is retried on the next transition.
func New(a store.Adapter, opts ...Option) (*Engine, error) {
	e := &Engine{
		adapter:   a,
		now:       time.Now,
		interval:  time.Second,
		log:       logging.With("timer"),
		states:    map[Kind]*State{Work: {}, Study: {}},
		tickers:   make(map[Kind]*ticker),
		listeners: make(map[uint64]Listener),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.load()
	if e.readOnly {
		return e, nil
	}

	for _, k := range Kinds {
		st := e.states[k]
		if st.Running || st.StartTimestamp != nil {
			st.Running = false
			st.StartTimestamp = nil
			e.recovered = append(e.recovered, k)
			e.log.Info().Str("kind", string(k)).Msg("dropped interrupted run")
		}
		if st.AccumulatedSeconds < 0 {
			st.AccumulatedSeconds = 0
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e, e.persistLocked()
}

func (e *Engine) load() {
	raw, ok, err := e.adapter.Get(store.KeyTimerState)
	if err != nil {
		e.log.Warn().Err(err).Msg("read timer state, starting from zero")
		return
	}
	if !ok {
		return
	}
	raw, upgraded, err := upgradeRecord(raw)
	if err != nil {
		e.log.Warn().Err(err).Msg("discarding unreadable timer state")
		return
	}
	if upgraded {
		e.log.Info().Int("schema", schemaVersion).Msg("upgraded timer state")
	}
	var rec record
	if err := json.Unmarshal(raw, &rec); err != nil {
		e.log.Warn().Err(err).Msg("discarding unreadable timer state")
		return
	}
	e.states[Work] = &rec.Work
	e.states[Study] = &rec.Study
}

// Recovered lists the counters that were found running at startup and stopped.
func (e *Engine) Recovered() []Kind {
	return append([]Kind(nil), e.recovered...)
}

// Start begins accruing time for kind. It reports false, changing nothing,
// when the counter is already running.
func (e *Engine) Start(kind Kind) (bool, error) {
	if !kind.Valid() {
		return false, fmt.Errorf("start %q: %w", kind, ErrUnknownKind)
	}
	if e.readOnly {
		return false, fmt.Errorf("start %s: %w", kind, ErrReadOnly)
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	st := e.states[kind]
	if st.Running {
		return false, nil
	}
	now := e.now().UnixMilli()
	st.Running = true
	st.StartTimestamp = &now
	err := e.persistLocked()

	e.tickers[kind] = e.arm(kind)
	return true, err
}

// Stop folds the elapsed whole seconds into the total and returns them. It
// reports false when the counter is not running. The live ticker is cancelled
// before Stop persists or returns, so no Update for this run arrives afterwards.
func (e *Engine) Stop(kind Kind) (int64, bool, error) {
	if !kind.Valid() {
		return 0, false, fmt.Errorf("stop %q: %w", kind, ErrUnknownKind)
	}
	if e.readOnly {
		return 0, false, fmt.Errorf("stop %s: %w", kind, ErrReadOnly)
	}
	e.mu.Lock()
	elapsed, t, ok := e.haltLocked(kind)
	e.mu.Unlock()
	if !ok {
		return 0, false, nil
	}
	if t != nil {
		t.cancel()
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return elapsed, true, e.persistLocked()
}

// Reset stops the counter if running and zeroes its total.
func (e *Engine) Reset(kind Kind) error {
	if !kind.Valid() {
		return fmt.Errorf("reset %q: %w", kind, ErrUnknownKind)
	}
	if e.readOnly {
		return fmt.Errorf("reset %s: %w", kind, ErrReadOnly)
	}
	e.mu.Lock()
	_, t, _ := e.haltLocked(kind)
	e.states[kind].AccumulatedSeconds = 0
	e.mu.Unlock()

	if t != nil {
		t.cancel()
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.persistLocked()
}

// haltLocked applies the running → stopped transition and detaches the ticker.
func (e *Engine) haltLocked(kind Kind) (int64, *ticker, bool) {
	st := e.states[kind]
	if !st.Running {
		return 0, nil, false
	}
	elapsed := e.elapsedLocked(st)
	st.AccumulatedSeconds += elapsed
	st.Running = false
	st.StartTimestamp = nil

	t := e.tickers[kind]
	delete(e.tickers, kind)
	return elapsed, t, true
}

func (e *Engine) elapsedLocked(st *State) int64 {
	if !st.Running || st.StartTimestamp == nil {
		return 0
	}
	ms := e.now().UnixMilli() - *st.StartTimestamp
	if ms < 0 {
		return 0
	}
	return ms / 1000
}

// CurrentTotalSeconds returns the accumulated total plus the live run, if any.
func (e *Engine) CurrentTotalSeconds(kind Kind) int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	st, ok := e.states[kind]
	if !ok {
		return 0
	}
	return st.AccumulatedSeconds + e.elapsedLocked(st)
}

// FormattedTotal renders CurrentTotalSeconds with FormatSeconds.
func (e *Engine) FormattedTotal(kind Kind) string {
	return FormatSeconds(e.CurrentTotalSeconds(kind))
}

// Running reports whether kind is accruing time.
func (e *Engine) Running(kind Kind) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	st, ok := e.states[kind]
	return ok && st.Running
}

// State returns a copy of the persisted state of kind.
func (e *Engine) State(kind Kind) State {
	e.mu.Lock()
	defer e.mu.Unlock()
	st, ok := e.states[kind]
	if !ok {
		return State{}
	}
	out := *st
	if st.StartTimestamp != nil {
		ts := *st.StartTimestamp
		out.StartTimestamp = &ts
	}
	return out
}

// Subscribe registers fn for live updates and returns its unsubscribe func.
func (e *Engine) Subscribe(fn Listener) func() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.nextID++
	id := e.nextID
	e.listeners[id] = fn
	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		delete(e.listeners, id)
	}
}

// Close cancels every ticker. Counter state is left as is, so a run still
// open at Close is dropped by the next process's startup recovery.
func (e *Engine) Close() {
	e.mu.Lock()
	tickers := make([]*ticker, 0, len(e.tickers))
	for k, t := range e.tickers {
		tickers = append(tickers, t)
		delete(e.tickers, k)
	}
	e.mu.Unlock()

	for _, t := range tickers {
		t.cancel()
	}
}

func (e *Engine) persistLocked() error {
	rec := record{
		SchemaVersion: schemaVersion,
		Work:          *e.states[Work],
		Study:         *e.states[Study],
	}
	if err := store.SaveJSON(e.adapter, store.KeyTimerState, rec); err != nil {
		e.log.Warn().Err(err).Msg("persist timer state")
		return err
	}
	return nil
}
