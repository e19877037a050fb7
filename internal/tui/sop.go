package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/dayplan/internal/app"
	"github.com/sadopc/dayplan/internal/tasks"
)

// sopDepth is the tree level the view is listing.
type sopDepth int

const (
	depthGoals sopDepth = iota
	depthSubGoals
	depthSteps
)

var depthNames = []string{"Goals", "Sub-goals", "Steps"}

type sopModel struct {
	app    *app.App
	width  int
	height int

	goals  []tasks.Level1
	depth  sopDepth
	goalID string // set at depthSubGoals and below
	subID  string // set at depthSteps
	cursor int

	formActive bool
	form       *huh.Form
	editingID  string // empty when adding
	formTitle  *string
}

func newSOPModel(a *app.App) sopModel {
	title := ""
	return sopModel{app: a, formTitle: &title}
}

func (s *sopModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

type sopDataMsg struct {
	goals []tasks.Level1
}

func (s sopModel) refresh() tea.Cmd {
	return func() tea.Msg {
		return sopDataMsg{goals: s.app.Tree.List()}
	}
}

func (s sopModel) goal() (tasks.Level1, bool) {
	for _, g := range s.goals {
		if g.ID == s.goalID {
			return g, true
		}
	}
	return tasks.Level1{}, false
}

func (s sopModel) subGoal() (tasks.Level2, bool) {
	g, ok := s.goal()
	if !ok {
		return tasks.Level2{}, false
	}
	for _, sg := range g.Children {
		if sg.ID == s.subID {
			return sg, true
		}
	}
	return tasks.Level2{}, false
}

type sopItem struct {
	id        string
	title     string
	completed bool
	done      int
	total     int
}

// items lists the nodes at the current depth.
func (s sopModel) items() []sopItem {
	var out []sopItem
	switch s.depth {
	case depthGoals:
		for _, g := range s.goals {
			item := sopItem{id: g.ID, title: g.Title}
			for _, sg := range g.Children {
				d, t := sg.Progress()
				item.done += d
				item.total += t
			}
			out = append(out, item)
		}
	case depthSubGoals:
		g, _ := s.goal()
		for _, sg := range g.Children {
			d, t := sg.Progress()
			out = append(out, sopItem{id: sg.ID, title: sg.Title, done: d, total: t})
		}
	case depthSteps:
		sg, _ := s.subGoal()
		for _, st := range sg.Steps {
			out = append(out, sopItem{id: st.ID, title: st.Title, completed: st.Completed})
		}
	}
	return out
}

// climb moves up until the current path resolves again.
func (s *sopModel) climb() {
	if s.depth == depthSteps {
		if _, ok := s.subGoal(); !ok {
			s.depth = depthSubGoals
			s.subID = ""
		}
	}
	if s.depth == depthSubGoals {
		if _, ok := s.goal(); !ok {
			s.depth = depthGoals
			s.goalID = ""
		}
	}
}

func (s sopModel) update(msg tea.Msg) (sopModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	switch msg := msg.(type) {
	case sopDataMsg:
		s.goals = msg.goals
		s.climb()
		s.cursor = clampCursor(s.cursor, len(s.items()))
		return s, nil

	case tea.KeyMsg:
		items := s.items()
		switch {
		case key.Matches(msg, keys.Up):
			if s.cursor > 0 {
				s.cursor--
			}
		case key.Matches(msg, keys.Down):
			if s.cursor < len(items)-1 {
				s.cursor++
			}
		case key.Matches(msg, keys.Enter):
			if s.cursor < len(items) && s.depth < depthSteps {
				if s.depth == depthGoals {
					s.goalID = items[s.cursor].id
				} else {
					s.subID = items[s.cursor].id
				}
				s.depth++
				s.cursor = 0
			}
		case key.Matches(msg, keys.Back):
			if s.depth > depthGoals {
				s.depth--
				s.cursor = 0
			}
		case key.Matches(msg, keys.New):
			return s.showForm("", "")
		case key.Matches(msg, keys.Edit):
			if s.cursor < len(items) {
				return s.showForm(items[s.cursor].id, items[s.cursor].title)
			}
		case key.Matches(msg, keys.Toggle):
			if s.depth == depthSteps && s.cursor < len(items) {
				if _, _, err := s.app.Tree.ToggleLevel3(s.goalID, s.subID, items[s.cursor].id); err != nil {
					return s, errorCmd("Toggle step", err)
				}
				return s, s.refresh()
			}
		case key.Matches(msg, keys.Delete):
			if s.cursor < len(items) {
				if err := s.delete(items[s.cursor].id); err != nil {
					return s, errorCmd("Delete", err)
				}
				return s, s.refresh()
			}
		}
	}
	return s, nil
}

func (s sopModel) delete(id string) error {
	var err error
	switch s.depth {
	case depthGoals:
		_, err = s.app.Tree.DeleteLevel1(id)
	case depthSubGoals:
		_, err = s.app.Tree.DeleteLevel2(s.goalID, id)
	case depthSteps:
		_, err = s.app.Tree.DeleteLevel3(s.goalID, s.subID, id)
	}
	return err
}

func (s sopModel) showForm(id, title string) (sopModel, tea.Cmd) {
	s.editingID = id
	*s.formTitle = title
	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title(strings.TrimSuffix(depthNames[s.depth], "s") + " Title").Value(s.formTitle),
		),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func (s sopModel) updateForm(msg tea.Msg) (sopModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		if err := s.submit(); err != nil {
			return s, tea.Batch(errorCmd("Save", err), s.refresh())
		}
		return s, s.refresh()
	}
	return s, cmd
}

// submit adds or renames a node at the current depth.
func (s sopModel) submit() error {
	title := strings.TrimSpace(*s.formTitle)
	if title == "" {
		return nil
	}
	ok := true
	var err error
	if s.editingID == "" {
		switch s.depth {
		case depthGoals:
			_, err = s.app.Tree.AddLevel1(title)
		case depthSubGoals:
			_, ok, err = s.app.Tree.AddLevel2(s.goalID, title)
		case depthSteps:
			_, ok, err = s.app.Tree.AddLevel3(s.goalID, s.subID, title)
		}
	} else {
		switch s.depth {
		case depthGoals:
			_, ok, err = s.app.Tree.UpdateLevel1(s.editingID, tasks.NodeUpdate{Title: &title})
		case depthSubGoals:
			_, ok, err = s.app.Tree.UpdateLevel2(s.goalID, s.editingID, tasks.NodeUpdate{Title: &title})
		case depthSteps:
			_, ok, err = s.app.Tree.UpdateLevel3(s.goalID, s.subID, s.editingID, tasks.StepUpdate{Title: &title})
		}
	}
	if err == nil && !ok {
		err = errors.New("parent no longer exists")
	}
	return err
}

func (s sopModel) breadcrumb() string {
	parts := []string{"SOP"}
	if s.depth >= depthSubGoals {
		g, _ := s.goal()
		parts = append(parts, g.Title)
	}
	if s.depth == depthSteps {
		sg, _ := s.subGoal()
		parts = append(parts, sg.Title)
	}
	return strings.Join(parts, " / ")
}

func (s sopModel) view() string {
	w := s.width - 4

	if s.formActive && s.form != nil {
		verb := "New"
		if s.editingID != "" {
			verb = "Rename"
		}
		title := titleStyle.Render(fmt.Sprintf("%s %s", verb, strings.TrimSuffix(depthNames[s.depth], "s")))
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", s.form.View()),
		)
	}

	var rows []string
	rows = append(rows, titleStyle.Render(s.breadcrumb())+"  "+mutedStyle.Render(depthNames[s.depth]), "")

	items := s.items()
	if len(items) == 0 {
		rows = append(rows, mutedStyle.Render("Nothing here yet. Press n to add one."))
	}
	for i, it := range items {
		style := normalItemStyle
		if i == s.cursor {
			style = selectedItemStyle
		}
		line := cursorPrefix(i == s.cursor)
		if s.depth == depthSteps {
			check := "[ ]"
			if it.completed {
				check = successStyle.Render("[x]")
			}
			line += check + " " + style.Render(it.title)
		} else {
			line += style.Render(fmt.Sprintf("%-30s", it.title)) + " " +
				mutedStyle.Render(fmt.Sprintf("%d/%d steps", it.done, it.total))
		}
		rows = append(rows, line)
	}

	help := "  n: new  e: rename  d: delete  enter: open"
	switch s.depth {
	case depthSubGoals:
		help += "  esc: up"
	case depthSteps:
		help = "  n: new  e: rename  space: done  d: delete  esc: up"
	}
	rows = append(rows, "", mutedStyle.Render(help))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
