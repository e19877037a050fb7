package export

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/sadopc/dayplan/internal/calendar"
	"github.com/sadopc/dayplan/internal/tasks"
	"github.com/spf13/afero"
)

type jsonExport struct {
	ExportedAt string           `json:"exported_at"`
	Timers     []jsonTimer      `json:"timers"`
	Plans      []tasks.Plan     `json:"time_plans"`
	Projects   []tasks.Project  `json:"today_projects"`
	Goals      []tasks.Level1   `json:"level_tasks"`
	Events     []calendar.Event `json:"calendar_events"`
}

type jsonTimer struct {
	Kind        string `json:"kind"`
	DurationSec int64  `json:"total_seconds"`
	Duration    string `json:"duration"`
	Running     bool   `json:"running"`
}

// ToJSON writes the snapshot using the same record shapes the store keeps,
// so the file doubles as a readable backup.
func ToJSON(fs afero.Fs, snap Snapshot, path string) error {
	export := jsonExport{
		ExportedAt: snap.TakenAt.UTC().Format(time.RFC3339),
		Plans:      snap.Plans,
		Projects:   snap.Projects,
		Goals:      snap.Goals,
		Events:     snap.Events,
	}
	for _, t := range snap.Timers {
		export.Timers = append(export.Timers, jsonTimer{
			Kind:        string(t.Kind),
			DurationSec: t.TotalSeconds,
			Duration:    formatDuration(t.TotalSeconds),
			Running:     t.Running,
		})
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	if err := afero.WriteFile(fs, path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
