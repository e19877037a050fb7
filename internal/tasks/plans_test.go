package tasks

import (
	"errors"
	"testing"
	"time"

	"github.com/sadopc/dayplan/internal/store"
	"github.com/sadopc/dayplan/internal/timer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func newTestPlans(t *testing.T, a store.Adapter) (*Plans, *testClock) {
	t.Helper()
	clock := newTestClock()
	p, err := NewPlans(a, seqIDs(), testOptions(clock)...)
	require.NoError(t, err)
	return p, clock
}

// ============================================================
// CRUD
// ============================================================

func TestAddPlan(t *testing.T) {
	a := store.NewMemoryAdapter()
	p, clock := newTestPlans(t, a)

	plan, err := p.Add(timer.Work, "Deep work", 9*60, 10*60+30)
	require.NoError(t, err)
	assert.Equal(t, "id-1", plan.ID)
	assert.Equal(t, clock.Now().UnixMilli(), plan.CreatedAt)
	assert.Equal(t, 90, plan.DurationMinutes())
	assert.Equal(t, "09:00 - 10:30 (1.5h)", plan.Display())

	raw := blob(t, a, store.KeyTimePlans)
	assert.Equal(t, "work", gjson.GetBytes(raw, "0.type").String())
	assert.Equal(t, int64(540), gjson.GetBytes(raw, "0.startTime").Int())
	assert.Equal(t, int64(630), gjson.GetBytes(raw, "0.endTime").Int())
}

func TestAddPlanValidation(t *testing.T) {
	p, _ := newTestPlans(t, store.NewMemoryAdapter())

	cases := []struct {
		name       string
		kind       timer.Kind
		start, end int
	}{
		{"unknown kind", timer.Kind("nap"), 60, 120},
		{"end before start", timer.Study, 120, 60},
		{"empty range", timer.Study, 60, 60},
		{"negative", timer.Work, -1, 60},
		{"past midnight", timer.Work, 60, 24 * 60},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := p.Add(tc.kind, "x", tc.start, tc.end)
			assert.ErrorIs(t, err, ErrInvalidPlan)
		})
	}
	assert.Empty(t, p.List())
}

func TestDeletePlan(t *testing.T) {
	p, _ := newTestPlans(t, store.NewMemoryAdapter())
	a, _ := p.Add(timer.Work, "a", 60, 120)
	b, _ := p.Add(timer.Study, "b", 120, 180)

	ok, err := p.Delete(a.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = p.Delete("missing")
	require.NoError(t, err)
	assert.False(t, ok)

	list := p.List()
	require.Len(t, list, 1)
	assert.Equal(t, b.ID, list[0].ID)
}

func TestUpdatePlan(t *testing.T) {
	p, _ := newTestPlans(t, store.NewMemoryAdapter())
	plan, _ := p.Add(timer.Work, "a", 60, 120)

	got, ok, err := p.Update(plan.ID, PlanUpdate{Title: ptr("renamed"), EndMinute: ptr(150)})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "renamed", got.Title)
	assert.Equal(t, 150, got.EndMinute)
	assert.Equal(t, plan.CreatedAt, got.CreatedAt)

	_, ok, err = p.Update("missing", PlanUpdate{Title: ptr("x")})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUpdatePlanRejectsInvalidMerge(t *testing.T) {
	p, _ := newTestPlans(t, store.NewMemoryAdapter())
	plan, _ := p.Add(timer.Work, "a", 60, 120)

	_, ok, err := p.Update(plan.ID, PlanUpdate{EndMinute: ptr(30)})
	assert.True(t, ok)
	assert.ErrorIs(t, err, ErrInvalidPlan)

	stored, _ := p.Get(plan.ID)
	assert.Equal(t, 120, stored.EndMinute)
}

func TestListReturnsCopy(t *testing.T) {
	p, _ := newTestPlans(t, store.NewMemoryAdapter())
	_, _ = p.Add(timer.Work, "a", 60, 120)

	list := p.List()
	list[0].Title = "mutated"
	got, _ := p.Get(list[0].ID)
	assert.Equal(t, "a", got.Title)
}

// ============================================================
// Derived views
// ============================================================

func TestTodayFiltersByCreationDay(t *testing.T) {
	p, clock := newTestPlans(t, store.NewMemoryAdapter())

	clock.Set(time.Date(2024, 1, 31, 23, 59, 0, 0, time.UTC))
	_, _ = p.Add(timer.Work, "yesterday", 60, 120)
	clock.Set(time.Date(2024, 2, 1, 0, 1, 0, 0, time.UTC))
	today, _ := p.Add(timer.Study, "today", 60, 120)

	got := p.Today()
	require.Len(t, got, 1)
	assert.Equal(t, today.ID, got[0].ID)

	clock.Set(time.Date(2024, 2, 2, 8, 0, 0, 0, time.UTC))
	assert.Empty(t, p.Today())
}

func TestTotalMinutes(t *testing.T) {
	plans := []Plan{
		{Kind: timer.Work, StartMinute: 60, EndMinute: 120},
		{Kind: timer.Work, StartMinute: 600, EndMinute: 630},
		{Kind: timer.Study, StartMinute: 0, EndMinute: 45},
	}
	assert.Equal(t, 90, TotalMinutes(plans, timer.Work))
	assert.Equal(t, 45, TotalMinutes(plans, timer.Study))
	assert.Equal(t, 0, TotalMinutes(nil, timer.Work))
}

// ============================================================
// Persistence
// ============================================================

func TestPlansReload(t *testing.T) {
	a := store.NewMemoryAdapter()
	p, _ := newTestPlans(t, a)
	plan, _ := p.Add(timer.Study, "Go book", 20*60, 21*60)

	again, _ := newTestPlans(t, a)
	got, ok := again.Get(plan.ID)
	require.True(t, ok)
	assert.Equal(t, plan, got)
}

func TestPlansCorruptBlobStartsEmpty(t *testing.T) {
	a := store.NewMemoryAdapter()
	require.NoError(t, a.Set(store.KeyTimePlans, []byte("{not json")))

	p, _ := newTestPlans(t, a)
	assert.Empty(t, p.List())

	_, err := p.Add(timer.Work, "a", 60, 120)
	require.NoError(t, err)
	assert.True(t, gjson.ValidBytes(blob(t, a, store.KeyTimePlans)))
}

func TestPlansPersistenceFailureKeepsMemory(t *testing.T) {
	a := store.NewMemoryAdapter()
	p, _ := newTestPlans(t, a)

	boom := errors.New("disk full")
	a.FailWith(boom)
	plan, err := p.Add(timer.Work, "a", 60, 120)
	assert.ErrorIs(t, err, boom)

	_, ok := p.Get(plan.ID)
	assert.True(t, ok, "in-memory collection stays authoritative")

	a.FailWith(nil)
	_, err = p.Add(timer.Work, "b", 120, 180)
	require.NoError(t, err)
	assert.Equal(t, int64(2), gjson.GetBytes(blob(t, a, store.KeyTimePlans), "#").Int())
}

// ============================================================
// Clock parsing
// ============================================================

func TestParseClock(t *testing.T) {
	cases := map[string]int{"00:00": 0, "9:05": 545, "23:59": 1439, " 12:30 ": 750}
	for in, want := range cases {
		got, err := ParseClock(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	for _, bad := range []string{"", "12", "24:00", "12:60", "ab:cd", "12:5"} {
		_, err := ParseClock(bad)
		assert.Error(t, err, bad)
	}
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "00:00", FormatClock(0))
	assert.Equal(t, "09:05", FormatClock(545))
	assert.Equal(t, "23:59", FormatClock(1439))
}
