package export

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/afero"
)

var csvHeader = []string{"Record", "ID", "Parent", "Title", "Detail", "Duration (s)", "Duration", "Completed", "Created"}

// ToCSV writes one row per timer, plan, task, step and event.
func ToCSV(fs afero.Fs, snap Snapshot, path string) error {
	f, err := fs.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return err
	}
	for _, row := range csvRows(snap) {
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func csvRows(snap Snapshot) [][]string {
	loc := snap.loc()
	var rows [][]string
	for _, t := range snap.Timers {
		detail := "stopped"
		if t.Running {
			detail = "running"
		}
		rows = append(rows, []string{
			"timer", string(t.Kind), "", t.Kind.Label(), detail,
			strconv.FormatInt(t.TotalSeconds, 10), formatDuration(t.TotalSeconds), "", "",
		})
	}
	for _, p := range snap.Plans {
		secs := int64(p.DurationMinutes()) * 60
		rows = append(rows, []string{
			"plan", p.ID, "", p.Title, string(p.Kind) + " " + p.Display(),
			strconv.FormatInt(secs, 10), formatDuration(secs), "", formatMillis(p.CreatedAt, loc),
		})
	}
	for _, p := range snap.Projects {
		for _, t := range p.Tasks {
			rows = append(rows, []string{
				"task", t.ID, p.Title, t.Title, string(t.Priority),
				"", "", strconv.FormatBool(t.Completed), formatMillis(t.CreatedAt, loc),
			})
		}
	}
	for _, g := range snap.Goals {
		for _, sg := range g.Children {
			for _, st := range sg.Steps {
				rows = append(rows, []string{
					"step", st.ID, g.Title + " / " + sg.Title, st.Title, "",
					"", "", strconv.FormatBool(st.Completed), formatMillis(st.CreatedAt, loc),
				})
			}
		}
	}
	for _, ev := range snap.Events {
		rows = append(rows, []string{
			"event", ev.ID, "", ev.Title, ev.Type + " " + ev.Time().In(loc).Format(time.DateOnly),
			"", "", "", formatMillis(ev.CreatedAt, loc),
		})
	}
	return rows
}
