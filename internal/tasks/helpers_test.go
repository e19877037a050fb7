package tasks

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/sadopc/dayplan/internal/ids"
	"github.com/sadopc/dayplan/internal/store"
	"github.com/stretchr/testify/require"
)

// seqIDs hands out id-1, id-2, ... so tests can predict ids.
func seqIDs() ids.Generator {
	var mu sync.Mutex
	n := 0
	return ids.Func(func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("id-%d", n)
	})
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func testOptions(c *testClock) []Option {
	return []Option{WithClock(c.Now), WithLocation(time.UTC)}
}

func blob(t *testing.T, a store.Adapter, key string) []byte {
	t.Helper()
	raw, ok, err := a.Get(key)
	require.NoError(t, err)
	require.True(t, ok, "%s should be persisted", key)
	return raw
}

func ptr[T any](v T) *T { return &v }
