package timer

import "time"

// ticker is the per-run notification loop armed by Start.
type ticker struct {
	done   chan struct{}
	exited chan struct{}
}

// arm starts the loop for kind. Caller holds e.mu.
func (e *Engine) arm(kind Kind) *ticker {
	t := &ticker{
		done:   make(chan struct{}),
		exited: make(chan struct{}),
	}
	go e.tickLoop(kind, t, e.interval)
	return t
}

// cancel stops the loop and waits until it has returned.
func (t *ticker) cancel() {
	close(t.done)
	<-t.exited
}

func (e *Engine) tickLoop(kind Kind, t *ticker, interval time.Duration) {
	defer close(t.exited)

	// time.Ticker drops ticks for a slow receiver instead of queueing them.
	tk := time.NewTicker(interval)
	defer tk.Stop()

	for {
		select {
		case <-t.done:
			return
		case <-tk.C:
			update, listeners, ok := e.liveUpdate(kind, t)
			if !ok {
				return
			}
			for _, fn := range listeners {
				fn(update)
			}
		}
	}
}

// liveUpdate recomputes the total for a tick. ok is false once t is no longer
// the armed ticker for kind.
func (e *Engine) liveUpdate(kind Kind, t *ticker) (Update, []Listener, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.tickers[kind] != t {
		return Update{}, nil, false
	}
	st := e.states[kind]
	if !st.Running {
		return Update{}, nil, false
	}
	listeners := make([]Listener, 0, len(e.listeners))
	for _, fn := range e.listeners {
		listeners = append(listeners, fn)
	}
	return Update{Kind: kind, TotalSeconds: st.AccumulatedSeconds + e.elapsedLocked(st)}, listeners, true
}
