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
	"github.com/sadopc/dayplan/internal/timer"
)

type plansModel struct {
	app    *app.App
	width  int
	height int

	plans   []tasks.Plan
	cursor  int
	showAll bool

	formActive bool
	form       *huh.Form
	editingID  string // empty when adding

	// Form values as pointers (survive value copies)
	formKind  *string
	formTitle *string
	formStart *string
	formEnd   *string
}

func newPlansModel(a *app.App) plansModel {
	kind, title, start, end := "", "", "", ""
	return plansModel{
		app:       a,
		formKind:  &kind,
		formTitle: &title,
		formStart: &start,
		formEnd:   &end,
	}
}

func (p *plansModel) setSize(w, h int) {
	p.width = w
	p.height = h
}

type plansDataMsg struct {
	plans []tasks.Plan
}

func (p plansModel) refresh() tea.Cmd {
	showAll := p.showAll
	return func() tea.Msg {
		if showAll {
			return plansDataMsg{plans: p.app.Plans.List()}
		}
		return plansDataMsg{plans: p.app.Plans.Today()}
	}
}

func (p plansModel) update(msg tea.Msg) (plansModel, tea.Cmd) {
	if p.formActive && p.form != nil {
		return p.updateForm(msg)
	}

	switch msg := msg.(type) {
	case plansDataMsg:
		p.plans = msg.plans
		p.cursor = clampCursor(p.cursor, len(p.plans))
		return p, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if p.cursor > 0 {
				p.cursor--
			}
		case key.Matches(msg, keys.Down):
			if p.cursor < len(p.plans)-1 {
				p.cursor++
			}
		case key.Matches(msg, keys.All):
			p.showAll = !p.showAll
			return p, p.refresh()
		case key.Matches(msg, keys.New):
			return p.showForm(nil)
		case key.Matches(msg, keys.Edit):
			if len(p.plans) > 0 {
				plan := p.plans[p.cursor]
				return p.showForm(&plan)
			}
		case key.Matches(msg, keys.Delete):
			if len(p.plans) > 0 {
				if _, err := p.app.Plans.Delete(p.plans[p.cursor].ID); err != nil {
					return p, errorCmd("Delete plan", err)
				}
				return p, p.refresh()
			}
		}
	}
	return p, nil
}

func validateClock(s string) error {
	_, err := tasks.ParseClock(s)
	return err
}

func (p plansModel) showForm(plan *tasks.Plan) (plansModel, tea.Cmd) {
	if plan == nil {
		p.editingID = ""
		*p.formKind = string(timer.Work)
		*p.formTitle = ""
		*p.formStart = "09:00"
		*p.formEnd = "10:00"
	} else {
		p.editingID = plan.ID
		*p.formKind = string(plan.Kind)
		*p.formTitle = plan.Title
		*p.formStart = tasks.FormatClock(plan.StartMinute)
		*p.formEnd = tasks.FormatClock(plan.EndMinute)
	}

	kindOptions := make([]huh.Option[string], len(timer.Kinds))
	for i, k := range timer.Kinds {
		kindOptions[i] = huh.NewOption(k.Label(), string(k))
	}

	p.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().Title("Type").Options(kindOptions...).Value(p.formKind),
			huh.NewInput().Title("Title").Value(p.formTitle),
			huh.NewInput().Title("Start (HH:MM)").Value(p.formStart).Validate(validateClock),
			huh.NewInput().Title("End (HH:MM)").Value(p.formEnd).Validate(validateClock),
		),
	).WithShowHelp(true).WithShowErrors(true)

	p.formActive = true
	return p, p.form.Init()
}

func (p plansModel) updateForm(msg tea.Msg) (plansModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			p.formActive = false
			p.form = nil
			return p, nil
		}
	}

	form, cmd := p.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		p.form = f
	}

	if p.form.State == huh.StateCompleted {
		p.formActive = false
		if err := p.submit(); err != nil {
			return p, tea.Batch(errorCmd("Save plan", err), p.refresh())
		}
		return p, p.refresh()
	}
	return p, cmd
}

// submit writes the form values as a new plan or onto editingID.
func (p plansModel) submit() error {
	if strings.TrimSpace(*p.formTitle) == "" {
		return errors.New("title is empty")
	}
	kind, err := timer.ParseKind(*p.formKind)
	if err != nil {
		return err
	}
	start, err := tasks.ParseClock(*p.formStart)
	if err != nil {
		return err
	}
	end, err := tasks.ParseClock(*p.formEnd)
	if err != nil {
		return err
	}
	title := strings.TrimSpace(*p.formTitle)

	if p.editingID == "" {
		_, err = p.app.Plans.Add(kind, title, start, end)
		return err
	}
	_, ok, err := p.app.Plans.Update(p.editingID, tasks.PlanUpdate{
		Kind:        &kind,
		Title:       &title,
		StartMinute: &start,
		EndMinute:   &end,
	})
	if err == nil && !ok {
		err = errors.New("plan no longer exists")
	}
	return err
}

func (p plansModel) view() string {
	w := p.width - 4

	if p.formActive && p.form != nil {
		title := titleStyle.Render("New Time Plan")
		if p.editingID != "" {
			title = titleStyle.Render("Edit Time Plan")
		}
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", p.form.View()),
		)
	}

	scope := "Today"
	if p.showAll {
		scope = "All"
	}
	title := titleStyle.Render("Time Plans") + "  " + mutedStyle.Render(scope)

	var rows []string
	rows = append(rows, title, "")

	if len(p.plans) == 0 {
		rows = append(rows, mutedStyle.Render("No plans. Press n to add one."))
	} else {
		rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-3s %-24s %-22s %s", "", "Title", "When", "Type")))
		for i, plan := range p.plans {
			style := normalItemStyle
			if i == p.cursor {
				style = selectedItemStyle
			}
			dot := kindStyle(plan.Kind).Render("●")
			rows = append(rows, style.Render(fmt.Sprintf("%s%s %-24s %-22s %s",
				cursorPrefix(i == p.cursor), dot, plan.Title, plan.Display(), plan.Kind.Label())))
		}

		totals := make([]string, 0, len(timer.Kinds))
		for _, k := range timer.Kinds {
			mins := tasks.TotalMinutes(p.plans, k)
			totals = append(totals, fmt.Sprintf("%s %s", k.Label(), formatHours(int64(mins)*60)))
		}
		rows = append(rows, "", "  "+highlightStyle.Render(strings.Join(totals, "  ")))
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: new  e: edit  d: delete  a: today/all"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
