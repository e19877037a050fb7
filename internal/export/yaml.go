package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/sadopc/dayplan/internal/timer"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

type yamlExport struct {
	ExportedAt string            `yaml:"exported_at"`
	Timers     map[string]string `yaml:"timers,omitempty"`
	Plans      []yamlPlan        `yaml:"plans,omitempty"`
	Projects   []yamlProject     `yaml:"projects,omitempty"`
	SOP        []yamlGoal        `yaml:"sop,omitempty"`
	Events     []yamlEvent       `yaml:"events,omitempty"`
}

type yamlPlan struct {
	Kind  string `yaml:"kind"`
	Title string `yaml:"title"`
	When  string `yaml:"when"`
}

type yamlProject struct {
	Title  string     `yaml:"title"`
	Status string     `yaml:"status"`
	Tasks  []yamlItem `yaml:"tasks,omitempty"`
}

type yamlGoal struct {
	Title    string    `yaml:"title"`
	SubGoals []yamlSub `yaml:"sub_goals,omitempty"`
}

type yamlSub struct {
	Title string     `yaml:"title"`
	Steps []yamlItem `yaml:"steps,omitempty"`
}

type yamlItem struct {
	Title    string `yaml:"title"`
	Priority string `yaml:"priority,omitempty"`
	Done     bool   `yaml:"done"`
}

type yamlEvent struct {
	Date  string `yaml:"date"`
	Title string `yaml:"title"`
	Type  string `yaml:"type"`
}

// ToYAML writes a human-oriented outline: ids and stamps are left out.
func ToYAML(fs afero.Fs, snap Snapshot, path string) error {
	out := yamlExport{ExportedAt: snap.TakenAt.UTC().Format(time.RFC3339)}
	if len(snap.Timers) > 0 {
		out.Timers = make(map[string]string, len(snap.Timers))
		for _, t := range snap.Timers {
			out.Timers[string(t.Kind)] = timer.FormatSeconds(t.TotalSeconds)
		}
	}
	for _, p := range snap.Plans {
		out.Plans = append(out.Plans, yamlPlan{Kind: string(p.Kind), Title: p.Title, When: p.Display()})
	}
	for _, p := range snap.Projects {
		yp := yamlProject{Title: p.Title, Status: string(p.Status)}
		for _, t := range p.Tasks {
			yp.Tasks = append(yp.Tasks, yamlItem{Title: t.Title, Priority: string(t.Priority), Done: t.Completed})
		}
		out.Projects = append(out.Projects, yp)
	}
	for _, g := range snap.Goals {
		yg := yamlGoal{Title: g.Title}
		for _, sg := range g.Children {
			ys := yamlSub{Title: sg.Title}
			for _, st := range sg.Steps {
				ys.Steps = append(ys.Steps, yamlItem{Title: st.Title, Done: st.Completed})
			}
			yg.SubGoals = append(yg.SubGoals, ys)
		}
		out.SOP = append(out.SOP, yg)
	}
	for _, ev := range snap.Events {
		out.Events = append(out.Events, yamlEvent{
			Date:  ev.Time().In(snap.loc()).Format(time.DateOnly),
			Title: ev.Title,
			Type:  ev.Type,
		})
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := afero.WriteFile(fs, path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write yaml file: %w", err)
	}
	return nil
}
