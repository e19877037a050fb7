package ids

import (
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestULIDUnique(t *testing.T) {
	g := NewULID()
	seen := make(map[string]bool)
	for i := 0; i < 5000; i++ {
		id := g.Next()
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestULIDConcurrent(t *testing.T) {
	g := NewULID()
	var mu sync.Mutex
	seen := make(map[string]bool)
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				id := g.Next()
				mu.Lock()
				seen[id] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Len(t, seen, 1600)
}

func TestULIDSortedWithinMillisecond(t *testing.T) {
	g := NewULID()
	fixed := time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)
	g.now = func() time.Time { return fixed }

	var got []string
	for i := 0; i < 50; i++ {
		got = append(got, g.Next())
	}
	assert.True(t, sort.StringsAreSorted(got), "monotonic ids should sort in mint order")
}

func TestFunc(t *testing.T) {
	n := 0
	g := Func(func() string {
		n++
		return "id-" + string(rune('a'+n-1))
	})
	assert.Equal(t, "id-a", g.Next())
	assert.Equal(t, "id-b", g.Next())
}
