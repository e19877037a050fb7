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

var statusLabels = map[tasks.Status]string{
	tasks.StatusInProgress: "in progress",
	tasks.StatusCompleted:  "completed",
	tasks.StatusPaused:     "paused",
}

var statusStyles = map[tasks.Status]lipgloss.Style{
	tasks.StatusInProgress: highlightStyle,
	tasks.StatusCompleted:  successStyle,
	tasks.StatusPaused:     warningStyle,
}

var priorityStyles = map[tasks.Priority]lipgloss.Style{
	tasks.PriorityHigh:   errorStyle,
	tasks.PriorityMedium: warningStyle,
	tasks.PriorityLow:    successStyle,
}

type projectsModel struct {
	app    *app.App
	width  int
	height int

	projects     []tasks.Project
	cursor       int
	taskCursor   int
	viewingTasks bool // true = viewing tasks of selected project

	formActive bool
	form       *huh.Form
	formType   string // "project", "edit_project", "task", "edit_task"
	editingID  string

	// Form field pointers (survive value copies)
	formTitle    *string
	formStatus   *string
	formPriority *string
}

func newProjectsModel(a *app.App) projectsModel {
	title, status, priority := "", "", ""
	return projectsModel{
		app:          a,
		formTitle:    &title,
		formStatus:   &status,
		formPriority: &priority,
	}
}

func (p *projectsModel) setSize(w, h int) {
	p.width = w
	p.height = h
}

type projectsDataMsg struct {
	projects []tasks.Project
}

func (p projectsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		return projectsDataMsg{projects: p.app.Projects.List()}
	}
}

func (p projectsModel) selected() (tasks.Project, bool) {
	if p.cursor >= len(p.projects) {
		return tasks.Project{}, false
	}
	return p.projects[p.cursor], true
}

func (p projectsModel) update(msg tea.Msg) (projectsModel, tea.Cmd) {
	if p.formActive && p.form != nil {
		return p.updateForm(msg)
	}

	switch msg := msg.(type) {
	case projectsDataMsg:
		p.projects = msg.projects
		p.cursor = clampCursor(p.cursor, len(p.projects))
		if proj, ok := p.selected(); ok {
			p.taskCursor = clampCursor(p.taskCursor, len(proj.Tasks))
		} else {
			p.viewingTasks = false
		}
		return p, nil

	case tea.KeyMsg:
		if p.viewingTasks {
			return p.updateTaskView(msg)
		}
		return p.updateProjectList(msg)
	}
	return p, nil
}

func (p projectsModel) updateProjectList(msg tea.KeyMsg) (projectsModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if p.cursor > 0 {
			p.cursor--
		}
	case key.Matches(msg, keys.Down):
		if p.cursor < len(p.projects)-1 {
			p.cursor++
		}
	case key.Matches(msg, keys.Enter):
		if len(p.projects) > 0 {
			p.viewingTasks = true
			p.taskCursor = 0
		}
	case key.Matches(msg, keys.New):
		return p.showProjectForm(nil)
	case key.Matches(msg, keys.Edit):
		if proj, ok := p.selected(); ok {
			return p.showProjectForm(&proj)
		}
	case key.Matches(msg, keys.Delete):
		if proj, ok := p.selected(); ok {
			if _, err := p.app.Projects.Delete(proj.ID); err != nil {
				return p, errorCmd("Delete project", err)
			}
			return p, p.refresh()
		}
	}
	return p, nil
}

func (p projectsModel) updateTaskView(msg tea.KeyMsg) (projectsModel, tea.Cmd) {
	proj, ok := p.selected()
	if !ok {
		p.viewingTasks = false
		return p, nil
	}
	switch {
	case key.Matches(msg, keys.Back):
		p.viewingTasks = false
		return p, nil
	case key.Matches(msg, keys.Up):
		if p.taskCursor > 0 {
			p.taskCursor--
		}
	case key.Matches(msg, keys.Down):
		if p.taskCursor < len(proj.Tasks)-1 {
			p.taskCursor++
		}
	case key.Matches(msg, keys.New):
		return p.showTaskForm(nil)
	case key.Matches(msg, keys.Edit):
		if p.taskCursor < len(proj.Tasks) {
			task := proj.Tasks[p.taskCursor]
			return p.showTaskForm(&task)
		}
	case key.Matches(msg, keys.Toggle):
		if p.taskCursor < len(proj.Tasks) {
			if _, _, err := p.app.Projects.ToggleTask(proj.ID, proj.Tasks[p.taskCursor].ID); err != nil {
				return p, errorCmd("Toggle task", err)
			}
			return p, p.refresh()
		}
	case key.Matches(msg, keys.Delete):
		if p.taskCursor < len(proj.Tasks) {
			if _, err := p.app.Projects.DeleteTask(proj.ID, proj.Tasks[p.taskCursor].ID); err != nil {
				return p, errorCmd("Delete task", err)
			}
			return p, p.refresh()
		}
	}
	return p, nil
}

func (p projectsModel) showProjectForm(proj *tasks.Project) (projectsModel, tea.Cmd) {
	fields := []huh.Field{huh.NewInput().Title("Project Title").Value(p.formTitle)}
	if proj == nil {
		p.formType = "project"
		p.editingID = ""
		*p.formTitle = ""
	} else {
		p.formType = "edit_project"
		p.editingID = proj.ID
		*p.formTitle = proj.Title
		*p.formStatus = string(proj.Status)

		statusOptions := make([]huh.Option[string], len(tasks.Statuses))
		for i, s := range tasks.Statuses {
			statusOptions[i] = huh.NewOption(statusLabels[s], string(s))
		}
		fields = append(fields, huh.NewSelect[string]().Title("Status").Options(statusOptions...).Value(p.formStatus))
	}

	p.form = huh.NewForm(huh.NewGroup(fields...)).WithShowHelp(true).WithShowErrors(true)
	p.formActive = true
	return p, p.form.Init()
}

func (p projectsModel) showTaskForm(task *tasks.Task) (projectsModel, tea.Cmd) {
	if task == nil {
		p.formType = "task"
		p.editingID = ""
		*p.formTitle = ""
		*p.formPriority = string(tasks.PriorityHigh)
	} else {
		p.formType = "edit_task"
		p.editingID = task.ID
		*p.formTitle = task.Title
		*p.formPriority = string(task.Priority)
	}

	priorityOptions := make([]huh.Option[string], len(tasks.Priorities))
	for i, pr := range tasks.Priorities {
		priorityOptions[i] = huh.NewOption(string(pr), string(pr))
	}

	p.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Task Title").Value(p.formTitle),
			huh.NewSelect[string]().Title("Priority").Options(priorityOptions...).Value(p.formPriority),
		),
	).WithShowHelp(true).WithShowErrors(true)

	p.formActive = true
	return p, p.form.Init()
}

func (p projectsModel) updateForm(msg tea.Msg) (projectsModel, tea.Cmd) {
	// Check for escape to cancel form
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
			return p, tea.Batch(errorCmd("Save", err), p.refresh())
		}
		return p, p.refresh()
	}

	return p, cmd
}

// submit applies the form according to formType.
func (p projectsModel) submit() error {
	title := strings.TrimSpace(*p.formTitle)
	if title == "" {
		return nil
	}
	var (
		ok  = true
		err error
	)
	switch p.formType {
	case "project":
		_, err = p.app.Projects.Add(title)
	case "edit_project":
		status := tasks.Status(*p.formStatus)
		_, ok, err = p.app.Projects.Update(p.editingID, tasks.ProjectUpdate{Title: &title, Status: &status})
	case "task":
		proj, found := p.selected()
		if !found {
			return errors.New("no project selected")
		}
		_, ok, err = p.app.Projects.AddTask(proj.ID, title, tasks.Priority(*p.formPriority))
	case "edit_task":
		proj, found := p.selected()
		if !found {
			return errors.New("no project selected")
		}
		priority := tasks.Priority(*p.formPriority)
		_, ok, err = p.app.Projects.UpdateTask(proj.ID, p.editingID, tasks.TaskUpdate{Title: &title, Priority: &priority})
	}
	if err == nil && !ok {
		err = errors.New("item no longer exists")
	}
	return err
}

func (p projectsModel) view() string {
	if p.formActive && p.form != nil {
		title := titleStyle.Render("New Project")
		switch p.formType {
		case "edit_project":
			title = titleStyle.Render("Edit Project")
		case "task":
			title = titleStyle.Render("New Task")
		case "edit_task":
			title = titleStyle.Render("Edit Task")
		}
		formView := p.form.View()
		content := lipgloss.JoinVertical(lipgloss.Left, title, "", formView)
		return panelStyle.Width(p.width - 4).Render(content)
	}

	if p.viewingTasks {
		return p.renderTaskView()
	}
	return p.renderProjectList()
}

func (p projectsModel) renderProjectList() string {
	w := p.width - 4
	title := titleStyle.Render("Today's Projects")

	if len(p.projects) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No projects yet. Press n to create one."),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	// Table header
	header := mutedStyle.Render(fmt.Sprintf("  %-26s %-13s %s", "Title", "Status", "Tasks"))
	rows = append(rows, header)

	for i, proj := range p.projects {
		style := normalItemStyle
		if i == p.cursor {
			style = selectedItemStyle
		}
		done, total := proj.Progress()
		status := statusStyles[proj.Status].Render(fmt.Sprintf("%-13s", statusLabels[proj.Status]))
		row := style.Render(fmt.Sprintf("%s%-26s", cursorPrefix(i == p.cursor), proj.Title)) +
			" " + status + " " + mutedStyle.Render(fmt.Sprintf("%d/%d", done, total))
		rows = append(rows, row)
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: new  e: edit  d: delete  enter: tasks"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (p projectsModel) renderTaskView() string {
	w := p.width - 4
	proj, _ := p.selected()
	done, total := proj.Progress()
	title := titleStyle.Render(proj.Title+" / Tasks") + "  " + mutedStyle.Render(fmt.Sprintf("%d/%d done", done, total))

	if len(proj.Tasks) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No tasks. Press n to add one."),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	for i, task := range proj.Tasks {
		style := normalItemStyle
		if i == p.taskCursor {
			style = selectedItemStyle
		}
		check := "[ ]"
		if task.Completed {
			check = successStyle.Render("[x]")
		}
		pr := priorityStyles[task.Priority].Render(string(task.Priority))
		rows = append(rows, cursorPrefix(i == p.taskCursor)+check+" "+style.Render(task.Title)+"  "+pr)
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: new task  e: edit  space: done  d: delete  esc: back"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
