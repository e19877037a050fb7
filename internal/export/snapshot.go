// Package export writes a point-in-time copy of everything dayplan tracks
// as JSON, CSV or YAML.
package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/sadopc/dayplan/internal/calendar"
	"github.com/sadopc/dayplan/internal/tasks"
	"github.com/sadopc/dayplan/internal/timer"
	"github.com/spf13/afero"
)

// TimerTotal is one counter as of the snapshot.
type TimerTotal struct {
	Kind         timer.Kind
	TotalSeconds int64
	Running      bool
}

// Snapshot is the data handed to the writers. Stamps and event dates are
// rendered in Location; nil means the machine zone.
type Snapshot struct {
	TakenAt  time.Time
	Location *time.Location
	Timers   []TimerTotal
	Plans    []tasks.Plan
	Projects []tasks.Project
	Goals    []tasks.Level1
	Events   []calendar.Event
}

// Take reads every collection once. Nil services contribute nothing. The
// snapshot renders in now's location.
func Take(now time.Time, e *timer.Engine, plans *tasks.Plans, projects *tasks.Projects, tree *tasks.Tree, events *calendar.Events) Snapshot {
	s := Snapshot{TakenAt: now, Location: now.Location()}
	if e != nil {
		for _, k := range timer.Kinds {
			s.Timers = append(s.Timers, TimerTotal{
				Kind:         k,
				TotalSeconds: e.CurrentTotalSeconds(k),
				Running:      e.Running(k),
			})
		}
	}
	if plans != nil {
		s.Plans = plans.List()
	}
	if projects != nil {
		s.Projects = projects.List()
	}
	if tree != nil {
		s.Goals = tree.List()
	}
	if events != nil {
		s.Events = events.List()
	}
	return s
}

// Format selects a writer.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatYAML Format = "yaml"
)

// Formats lists the supported formats.
var Formats = []Format{FormatJSON, FormatCSV, FormatYAML}

// ParseFormat accepts a format name or a file extension.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unknown export format %q", s)
}

// Write dispatches to the writer for f.
func Write(fs afero.Fs, f Format, snap Snapshot, path string) error {
	switch f {
	case FormatJSON:
		return ToJSON(fs, snap, path)
	case FormatCSV:
		return ToCSV(fs, snap, path)
	case FormatYAML:
		return ToYAML(fs, snap, path)
	}
	return fmt.Errorf("unknown export format %q", f)
}

func formatDuration(secs int64) string {
	h := secs / 3600
	m := (secs % 3600) / 60
	s := secs % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func (s Snapshot) loc() *time.Location {
	if s.Location == nil {
		return time.Local
	}
	return s.Location
}

func formatMillis(ms int64, loc *time.Location) string {
	if ms == 0 {
		return ""
	}
	return time.UnixMilli(ms).In(loc).Format(time.RFC3339)
}
