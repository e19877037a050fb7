package main

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/sadopc/dayplan/internal/app"
	"github.com/sadopc/dayplan/internal/config"
	"github.com/sadopc/dayplan/internal/timer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteStatusWhileTimerRuns(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.DBPath = filepath.Join(t.TempDir(), "dayplan.db")
	cfg.Timezone = "UTC"
	now := time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	live, err := app.Open(cfg, app.WithClock(clock))
	require.NoError(t, err)
	defer live.Close()
	_, err = live.Timer.Start(timer.Work)
	require.NoError(t, err)
	g, err := live.Tree.AddLevel1("Release")
	require.NoError(t, err)
	_, _, err = live.Tree.AddLevel2(g.ID, "Prepare")
	require.NoError(t, err)
	_, err = live.Tree.AddLevel1("Hire")
	require.NoError(t, err)

	now = now.Add(90 * time.Second)
	view, err := app.Open(cfg, app.WithClock(clock), app.ReadOnly())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, writeStatus(&buf, view))
	require.NoError(t, view.Close())
	out := buf.String()

	assert.Contains(t, out, "1m30s running")
	assert.Contains(t, out, "SOP goals   2", "only top-level goals are counted")
	assert.Contains(t, out, "timer_state")

	// The run is still open for the TUI that started it.
	assert.True(t, live.Timer.Running(timer.Work))
	elapsed, ok, err := live.Timer.Stop(timer.Work)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(90), elapsed)
}
