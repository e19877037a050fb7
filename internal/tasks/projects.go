package tasks

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/sadopc/dayplan/internal/ids"
	"github.com/sadopc/dayplan/internal/logging"
	"github.com/sadopc/dayplan/internal/store"
)

var (
	ErrInvalidStatus   = errors.New("invalid project status")
	ErrInvalidPriority = errors.New("invalid task priority")
)

// Status is the lifecycle state of a project.
type Status string

const (
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
	StatusPaused     Status = "paused"
)

// Statuses lists every status in display order.
var Statuses = []Status{StatusInProgress, StatusCompleted, StatusPaused}

// Labels written by earlier versions of the app.
var legacyStatuses = map[string]Status{
	"进行中": StatusInProgress,
	"已完成": StatusCompleted,
	"已暂停": StatusPaused,
}

// ParseStatus accepts current and legacy spellings.
func ParseStatus(s string) (Status, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	switch Status(v) {
	case StatusInProgress, StatusCompleted, StatusPaused:
		return Status(v), nil
	}
	if v == "in_progress" || v == "inprogress" {
		return StatusInProgress, nil
	}
	if st, ok := legacyStatuses[strings.TrimSpace(s)]; ok {
		return st, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

// UnmarshalText upgrades legacy values; anything unrecognised becomes in-progress.
func (s *Status) UnmarshalText(b []byte) error {
	st, err := ParseStatus(string(b))
	if err != nil {
		st = StatusInProgress
	}
	*s = st
	return nil
}

// Priority ranks a task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Priorities lists every priority from highest to lowest.
var Priorities = []Priority{PriorityHigh, PriorityMedium, PriorityLow}

// Earlier versions stored the colour tag of the priority badge.
var legacyPriorities = map[string]Priority{
	"success": PriorityLow,
	"warning": PriorityMedium,
	"danger":  PriorityHigh,
}

// ParsePriority accepts current and legacy spellings. Empty means high.
func ParsePriority(s string) (Priority, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	switch Priority(v) {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return Priority(v), nil
	case "":
		return PriorityHigh, nil
	}
	if p, ok := legacyPriorities[v]; ok {
		return p, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidPriority, s)
}

// UnmarshalText upgrades legacy values; anything unrecognised becomes high.
func (p *Priority) UnmarshalText(b []byte) error {
	v, err := ParsePriority(string(b))
	if err != nil {
		v = PriorityHigh
	}
	*p = v
	return nil
}

// Task belongs to exactly one project.
type Task struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Completed bool     `json:"completed"`
	Priority  Priority `json:"priority"`
	CreatedAt int64    `json:"createdAt"`
}

// Project is one of today's projects.
type Project struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Status    Status `json:"status"`
	Tasks     []Task `json:"tasks"`
	CreatedAt int64  `json:"createdAt"`
}

// Progress counts completed tasks.
func (p Project) Progress() (done, total int) {
	for _, t := range p.Tasks {
		if t.Completed {
			done++
		}
	}
	return done, len(p.Tasks)
}

func (p Project) clone() Project {
	p.Tasks = append([]Task{}, p.Tasks...)
	return p
}

// ProjectUpdate carries the fields to merge; nil fields are left alone.
type ProjectUpdate struct {
	Title  *string
	Status *Status
}

// TaskUpdate carries the fields to merge; nil fields are left alone.
type TaskUpdate struct {
	Title     *string
	Priority  *Priority
	Completed *bool
}

// Projects is the project collection stored under store.KeyTodayProjects.
type Projects struct {
	mu      sync.Mutex
	adapter store.Adapter
	gen     ids.Generator
	opts    options
	log     zerolog.Logger

	projects []Project
}

// NewProjects loads the collection from a.
func NewProjects(a store.Adapter, gen ids.Generator, opts ...Option) (*Projects, error) {
	p := &Projects{
		adapter: a,
		gen:     gen,
		opts:    newOptions(opts),
		log:     logging.With("projects"),
	}
	if err := load(a, store.KeyTodayProjects, &p.projects, p.log); err != nil {
		return nil, err
	}
	for i := range p.projects {
		if p.projects[i].Tasks == nil {
			p.projects[i].Tasks = []Task{}
		}
	}
	return p, nil
}

// Add appends an in-progress project with no tasks.
func (s *Projects) Add(title string) (Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := Project{
		ID:        s.gen.Next(),
		Title:     title,
		Status:    StatusInProgress,
		Tasks:     []Task{},
		CreatedAt: s.opts.stamp(),
	}
	s.projects = append(s.projects, p)
	return p.clone(), s.saveLocked()
}

// Delete removes the project and every task it owns.
func (s *Projects) Delete(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return false, nil
	}
	s.projects = append(s.projects[:i], s.projects[i+1:]...)
	return true, s.saveLocked()
}

// Update merges u into the project with id.
func (s *Projects) Update(id string, u ProjectUpdate) (Project, bool, error) {
	var status Status
	if u.Status != nil {
		st, err := ParseStatus(string(*u.Status))
		if err != nil {
			return Project{}, false, err
		}
		status = st
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return Project{}, false, nil
	}
	p := &s.projects[i]
	if u.Title != nil {
		p.Title = *u.Title
	}
	if u.Status != nil {
		p.Status = status
	}
	return p.clone(), true, s.saveLocked()
}

// Get returns a copy of the project with id.
func (s *Projects) Get(id string) (Project, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(id)
	if i < 0 {
		return Project{}, false
	}
	return s.projects[i].clone(), true
}

// List returns copies of every project in insertion order.
func (s *Projects) List() []Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Project, len(s.projects))
	for i := range s.projects {
		out[i] = s.projects[i].clone()
	}
	return out
}

// AddTask appends an open task to the project. An empty priority means high.
func (s *Projects) AddTask(projectID, title string, priority Priority) (Task, bool, error) {
	pr, err := ParsePriority(string(priority))
	if err != nil {
		return Task{}, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(projectID)
	if i < 0 {
		return Task{}, false, nil
	}
	t := Task{
		ID:        s.gen.Next(),
		Title:     title,
		Priority:  pr,
		CreatedAt: s.opts.stamp(),
	}
	s.projects[i].Tasks = append(s.projects[i].Tasks, t)
	return t, true, s.saveLocked()
}

// UpdateTask merges u into the task.
func (s *Projects) UpdateTask(projectID, taskID string, u TaskUpdate) (Task, bool, error) {
	var priority Priority
	if u.Priority != nil {
		pr, err := ParsePriority(string(*u.Priority))
		if err != nil {
			return Task{}, false, err
		}
		priority = pr
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.taskLocked(projectID, taskID)
	if !ok {
		return Task{}, false, nil
	}
	if u.Title != nil {
		t.Title = *u.Title
	}
	if u.Priority != nil {
		t.Priority = priority
	}
	if u.Completed != nil {
		t.Completed = *u.Completed
	}
	return *t, true, s.saveLocked()
}

// ToggleTask flips the completed flag of the task.
func (s *Projects) ToggleTask(projectID, taskID string) (Task, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.taskLocked(projectID, taskID)
	if !ok {
		return Task{}, false, nil
	}
	t.Completed = !t.Completed
	return *t, true, s.saveLocked()
}

// DeleteTask removes the task from its project.
func (s *Projects) DeleteTask(projectID, taskID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(projectID)
	if i < 0 {
		return false, nil
	}
	tasks := s.projects[i].Tasks
	for j := range tasks {
		if tasks[j].ID == taskID {
			s.projects[i].Tasks = append(tasks[:j], tasks[j+1:]...)
			return true, s.saveLocked()
		}
	}
	return false, nil
}

func (s *Projects) indexLocked(id string) int {
	for i := range s.projects {
		if s.projects[i].ID == id {
			return i
		}
	}
	return -1
}

// taskLocked resolves project then task; a missing project short-circuits.
func (s *Projects) taskLocked(projectID, taskID string) (*Task, bool) {
	i := s.indexLocked(projectID)
	if i < 0 {
		return nil, false
	}
	tasks := s.projects[i].Tasks
	for j := range tasks {
		if tasks[j].ID == taskID {
			return &tasks[j], true
		}
	}
	return nil, false
}

func (s *Projects) saveLocked() error {
	return save(s.adapter, store.KeyTodayProjects, s.projects, s.log)
}
