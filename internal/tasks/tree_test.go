package tasks

import (
	"errors"
	"testing"

	"github.com/sadopc/dayplan/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func newTestTree(t *testing.T, a store.Adapter) *Tree {
	t.Helper()
	tr, err := NewTree(a, seqIDs(), testOptions(newTestClock())...)
	require.NoError(t, err)
	return tr
}

// seedTree builds goal > sub-goal > step and returns their ids.
func seedTree(t *testing.T, tr *Tree) (l1, l2, l3 string) {
	t.Helper()
	g, err := tr.AddLevel1("Ship release")
	require.NoError(t, err)
	sg, ok, err := tr.AddLevel2(g.ID, "Prepare")
	require.NoError(t, err)
	require.True(t, ok)
	st, ok, err := tr.AddLevel3(g.ID, sg.ID, "Tag build")
	require.NoError(t, err)
	require.True(t, ok)
	return g.ID, sg.ID, st.ID
}

// ============================================================
// Building
// ============================================================

func TestAddNodes(t *testing.T) {
	a := store.NewMemoryAdapter()
	tr := newTestTree(t, a)
	l1, l2, l3 := seedTree(t, tr)

	got, ok := tr.Get(l1)
	require.True(t, ok)
	require.Len(t, got.Children, 1)
	assert.Equal(t, l2, got.Children[0].ID)
	require.Len(t, got.Children[0].Steps, 1)
	assert.Equal(t, l3, got.Children[0].Steps[0].ID)
	assert.False(t, got.Children[0].Steps[0].Completed)
	assert.Equal(t, 3, tr.Len())

	raw := blob(t, a, store.KeyLevelTasks)
	assert.Equal(t, l3, gjson.GetBytes(raw, "0.level2Tasks.0.level3Tasks.0.id").String())
}

func TestNewLevel1HasEmptyChildren(t *testing.T) {
	a := store.NewMemoryAdapter()
	tr := newTestTree(t, a)
	g, err := tr.AddLevel1("Goal")
	require.NoError(t, err)
	assert.NotNil(t, g.Children)
	assert.Equal(t, "[]", gjson.GetBytes(blob(t, a, store.KeyLevelTasks), "0.level2Tasks").Raw)
}

// ============================================================
// Path resolution
// ============================================================

func TestAddLevel3UnderMissingLevel2(t *testing.T) {
	tr := newTestTree(t, store.NewMemoryAdapter())
	g, _ := tr.AddLevel1("Goal")

	_, ok, err := tr.AddLevel3(g.ID, "missing", "step")
	require.NoError(t, err)
	assert.False(t, ok)

	got, _ := tr.Get(g.ID)
	assert.Empty(t, got.Children)
	assert.Equal(t, 1, tr.Len())
}

func TestPathMustMatchAncestors(t *testing.T) {
	tr := newTestTree(t, store.NewMemoryAdapter())
	l1, l2, l3 := seedTree(t, tr)
	other, _ := tr.AddLevel1("Other")

	_, ok, _ := tr.ToggleLevel3(other.ID, l2, l3)
	assert.False(t, ok, "sub-goal belongs to a different goal")
	_, ok, _ = tr.ToggleLevel3(l1, l3, l3)
	assert.False(t, ok, "step id in the sub-goal slot")
	_, ok, _ = tr.UpdateLevel2(l2, l2, NodeUpdate{Title: ptr("x")})
	assert.False(t, ok, "sub-goal id in the goal slot")
	ok, _ = tr.DeleteLevel2(other.ID, l2)
	assert.False(t, ok)
	_, ok = tr.Get(l2)
	assert.False(t, ok)

	got, _ := tr.Get(l1)
	assert.Equal(t, "Prepare", got.Children[0].Title)
	assert.False(t, got.Children[0].Steps[0].Completed)
}

// ============================================================
// Updates
// ============================================================

func TestToggleAndUpdateLevel3(t *testing.T) {
	tr := newTestTree(t, store.NewMemoryAdapter())
	l1, l2, l3 := seedTree(t, tr)

	st, ok, err := tr.ToggleLevel3(l1, l2, l3)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, st.Completed)

	st, ok, err = tr.UpdateLevel3(l1, l2, l3, StepUpdate{Title: ptr("Tag rc"), Completed: ptr(false)})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Tag rc", st.Title)
	assert.False(t, st.Completed)
}

func TestUpdateLevel1AndLevel2(t *testing.T) {
	tr := newTestTree(t, store.NewMemoryAdapter())
	l1, l2, _ := seedTree(t, tr)

	g, ok, err := tr.UpdateLevel1(l1, NodeUpdate{Title: ptr("Ship 2.0")})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Ship 2.0", g.Title)
	assert.Len(t, g.Children, 1)

	sg, ok, err := tr.UpdateLevel2(l1, l2, NodeUpdate{Title: ptr("Prep")})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Prep", sg.Title)
	assert.Len(t, sg.Steps, 1)

	_, ok, _ = tr.UpdateLevel1("missing", NodeUpdate{Title: ptr("x")})
	assert.False(t, ok)
}

func TestLevel2Progress(t *testing.T) {
	tr := newTestTree(t, store.NewMemoryAdapter())
	l1, l2, l3 := seedTree(t, tr)
	_, _, _ = tr.AddLevel3(l1, l2, "Publish notes")
	_, _, _ = tr.ToggleLevel3(l1, l2, l3)

	got, _ := tr.Get(l1)
	done, total := got.Children[0].Progress()
	assert.Equal(t, 1, done)
	assert.Equal(t, 2, total)
}

// ============================================================
// Deletion
// ============================================================

func TestDeleteLevel2RoundTrip(t *testing.T) {
	a := store.NewMemoryAdapter()
	tr := newTestTree(t, a)
	l1, l2, l3 := seedTree(t, tr)

	ok, err := tr.DeleteLevel2(l1, l2)
	require.NoError(t, err)
	require.True(t, ok)

	fresh := newTestTree(t, a)
	got, ok := fresh.Get(l1)
	require.True(t, ok)
	assert.Empty(t, got.Children)
	assert.Equal(t, 1, fresh.Len())

	_, ok, _ = fresh.ToggleLevel3(l1, l2, l3)
	assert.False(t, ok)
	assert.NotContains(t, string(blob(t, a, store.KeyLevelTasks)), l3)
}

func TestDeleteLevel1DropsSubtree(t *testing.T) {
	tr := newTestTree(t, store.NewMemoryAdapter())
	l1, _, _ := seedTree(t, tr)
	keep, _ := tr.AddLevel1("Keep")

	ok, err := tr.DeleteLevel1(l1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1, tr.Len())

	list := tr.List()
	require.Len(t, list, 1)
	assert.Equal(t, keep.ID, list[0].ID)

	ok, _ = tr.DeleteLevel1(l1)
	assert.False(t, ok)
}

func TestDeleteLevel3(t *testing.T) {
	tr := newTestTree(t, store.NewMemoryAdapter())
	l1, l2, l3 := seedTree(t, tr)

	ok, _ := tr.DeleteLevel3(l1, "missing", l3)
	assert.False(t, ok)

	ok, err := tr.DeleteLevel3(l1, l2, l3)
	require.NoError(t, err)
	assert.True(t, ok)

	got, _ := tr.Get(l1)
	assert.Empty(t, got.Children[0].Steps)
}

// ============================================================
// Persistence
// ============================================================

func TestTreeLoadsLegacyNestedBlob(t *testing.T) {
	a := store.NewMemoryAdapter()
	nested := `[{"id":"g","title":"Goal","createdAt":1,"level2Tasks":[
		{"id":"s","title":"Sub","createdAt":2,"level3Tasks":[
			{"id":"x","title":"Step","completed":true,"createdAt":3}]}]}]`
	require.NoError(t, a.Set(store.KeyLevelTasks, []byte(nested)))

	tr := newTestTree(t, a)
	st, ok, err := tr.ToggleLevel3("g", "s", "x")
	require.NoError(t, err)
	require.True(t, ok)
	assert.False(t, st.Completed)
	assert.Equal(t, int64(3), st.CreatedAt)
}

func TestTreePersistenceFailure(t *testing.T) {
	a := store.NewMemoryAdapter()
	tr := newTestTree(t, a)
	boom := errors.New("quota")
	a.FailWith(boom)

	g, err := tr.AddLevel1("Goal")
	assert.ErrorIs(t, err, boom)
	_, ok := tr.Get(g.ID)
	assert.True(t, ok)
}
