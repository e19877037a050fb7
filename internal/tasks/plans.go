package tasks

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/sadopc/dayplan/internal/ids"
	"github.com/sadopc/dayplan/internal/logging"
	"github.com/sadopc/dayplan/internal/store"
	"github.com/sadopc/dayplan/internal/timer"
)

// ErrInvalidPlan is returned for an unknown kind or a bad minute range.
var ErrInvalidPlan = errors.New("invalid time plan")

const minutesPerDay = 24 * 60

// Plan is a scheduled block of work or study on one day.
type Plan struct {
	ID          string     `json:"id"`
	Kind        timer.Kind `json:"type"`
	Title       string     `json:"title"`
	StartMinute int        `json:"startTime"` // minute of day, 0-1439
	EndMinute   int        `json:"endTime"`
	CreatedAt   int64      `json:"createdAt"` // epoch millis
}

// Display renders the block as "09:00 - 10:30 (1.5h)".
func (p Plan) Display() string {
	hours := float64(p.EndMinute-p.StartMinute) / 60
	return fmt.Sprintf("%s - %s (%.1fh)", FormatClock(p.StartMinute), FormatClock(p.EndMinute), hours)
}

// DurationMinutes is the length of the block.
func (p Plan) DurationMinutes() int {
	return p.EndMinute - p.StartMinute
}

// PlanUpdate carries the fields to merge; nil fields are left alone.
type PlanUpdate struct {
	Kind        *timer.Kind
	Title       *string
	StartMinute *int
	EndMinute   *int
}

// Plans is the flat time plan collection stored under store.KeyTimePlans.
type Plans struct {
	mu      sync.Mutex
	adapter store.Adapter
	gen     ids.Generator
	opts    options
	log     zerolog.Logger

	plans []Plan
}

// NewPlans loads the collection from a.
func NewPlans(a store.Adapter, gen ids.Generator, opts ...Option) (*Plans, error) {
	p := &Plans{
		adapter: a,
		gen:     gen,
		opts:    newOptions(opts),
		log:     logging.With("plans"),
	}
	if err := load(a, store.KeyTimePlans, &p.plans, p.log); err != nil {
		return nil, err
	}
	return p, nil
}

func validatePlan(kind timer.Kind, start, end int) error {
	if !kind.Valid() {
		return fmt.Errorf("%w: kind %q", ErrInvalidPlan, kind)
	}
	if start < 0 || start >= minutesPerDay || end < 0 || end >= minutesPerDay {
		return fmt.Errorf("%w: minutes %d-%d outside the day", ErrInvalidPlan, start, end)
	}
	if end <= start {
		return fmt.Errorf("%w: end %s is not after start %s", ErrInvalidPlan, FormatClock(end), FormatClock(start))
	}
	return nil
}

// Add appends a plan created now.
func (p *Plans) Add(kind timer.Kind, title string, startMinute, endMinute int) (Plan, error) {
	if err := validatePlan(kind, startMinute, endMinute); err != nil {
		return Plan{}, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	plan := Plan{
		ID:          p.gen.Next(),
		Kind:        kind,
		Title:       title,
		StartMinute: startMinute,
		EndMinute:   endMinute,
		CreatedAt:   p.opts.stamp(),
	}
	p.plans = append(p.plans, plan)
	return plan, p.saveLocked()
}

// Delete removes the plan with id.
func (p *Plans) Delete(id string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	i := p.indexLocked(id)
	if i < 0 {
		return false, nil
	}
	p.plans = append(p.plans[:i], p.plans[i+1:]...)
	return true, p.saveLocked()
}

// Update merges u into the plan with id. The merged plan must still be valid.
func (p *Plans) Update(id string, u PlanUpdate) (Plan, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	i := p.indexLocked(id)
	if i < 0 {
		return Plan{}, false, nil
	}
	merged := p.plans[i]
	if u.Kind != nil {
		merged.Kind = *u.Kind
	}
	if u.Title != nil {
		merged.Title = *u.Title
	}
	if u.StartMinute != nil {
		merged.StartMinute = *u.StartMinute
	}
	if u.EndMinute != nil {
		merged.EndMinute = *u.EndMinute
	}
	if err := validatePlan(merged.Kind, merged.StartMinute, merged.EndMinute); err != nil {
		return p.plans[i], true, err
	}
	p.plans[i] = merged
	return merged, true, p.saveLocked()
}

// Get returns the plan with id.
func (p *Plans) Get(id string) (Plan, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	i := p.indexLocked(id)
	if i < 0 {
		return Plan{}, false
	}
	return p.plans[i], true
}

// List returns every plan in insertion order.
func (p *Plans) List() []Plan {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Plan(nil), p.plans...)
}

// Today returns the plans created on the current calendar day. It is
// recomputed on every call.
func (p *Plans) Today() []Plan {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.opts.now()
	var out []Plan
	for _, plan := range p.plans {
		if sameDay(time.UnixMilli(plan.CreatedAt), now, p.opts.loc) {
			out = append(out, plan)
		}
	}
	return out
}

// TotalMinutes sums the planned minutes of kind across plans.
func TotalMinutes(plans []Plan, kind timer.Kind) int {
	total := 0
	for _, p := range plans {
		if p.Kind == kind {
			total += p.DurationMinutes()
		}
	}
	return total
}

func (p *Plans) indexLocked(id string) int {
	for i := range p.plans {
		if p.plans[i].ID == id {
			return i
		}
	}
	return -1
}

func (p *Plans) saveLocked() error {
	return save(p.adapter, store.KeyTimePlans, p.plans, p.log)
}

// FormatClock renders a minute of day as "HH:MM".
func FormatClock(minute int) string {
	return fmt.Sprintf("%02d:%02d", minute/60, minute%60)
}

// ParseClock parses "H:MM" or "HH:MM" into a minute of day.
func ParseClock(s string) (int, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, fmt.Errorf("parse clock %q: want HH:MM", s)
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("parse clock %q: bad hour", s)
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 || len(mm) != 2 {
		return 0, fmt.Errorf("parse clock %q: bad minute", s)
	}
	return h*60 + m, nil
}
