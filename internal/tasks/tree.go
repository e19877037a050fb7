package tasks

import (
	"sync"

	"github.com/rs/zerolog"
	"github.com/sadopc/dayplan/internal/ids"
	"github.com/sadopc/dayplan/internal/logging"
	"github.com/sadopc/dayplan/internal/store"
)

// Level1 is a goal in the SOP tree.
type Level1 struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Children  []Level2 `json:"level2Tasks"`
	CreatedAt int64    `json:"createdAt"`
}

// Level2 is a sub-goal owned by one Level1.
type Level2 struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Steps     []Level3 `json:"level3Tasks"`
	CreatedAt int64    `json:"createdAt"`
}

// Progress counts completed steps.
func (l Level2) Progress() (done, total int) {
	for _, s := range l.Steps {
		if s.Completed {
			done++
		}
	}
	return done, len(l.Steps)
}

// Level3 is an executable step owned by one Level2.
type Level3 struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
	CreatedAt int64  `json:"createdAt"`
}

// NodeUpdate carries the fields to merge into a goal or sub-goal.
type NodeUpdate struct {
	Title *string
}

// StepUpdate carries the fields to merge into a step.
type StepUpdate struct {
	Title     *string
	Completed *bool
}

type level int

const (
	level1 level = iota + 1
	level2
	level3
)

type node struct {
	id        string
	level     level
	parent    string
	title     string
	completed bool
	createdAt int64
	children  []string
}

// Tree is the three-level SOP tree stored under store.KeyLevelTasks.
//
// Nodes live in one map keyed by id and refer to their children by id.
// Every lookup below level one walks the given path top-down and checks
// each parent edge, so a path naming the wrong ancestor finds nothing.
type Tree struct {
	mu      sync.Mutex
	adapter store.Adapter
	gen     ids.Generator
	opts    options
	log     zerolog.Logger

	nodes map[string]*node
	roots []string
}

// NewTree loads the tree from a.
func NewTree(a store.Adapter, gen ids.Generator, opts ...Option) (*Tree, error) {
	t := &Tree{
		adapter: a,
		gen:     gen,
		opts:    newOptions(opts),
		log:     logging.With("tree"),
		nodes:   make(map[string]*node),
	}
	var nested []Level1
	if err := load(a, store.KeyLevelTasks, &nested, t.log); err != nil {
		return nil, err
	}
	t.index(nested)
	return t, nil
}

func (t *Tree) index(nested []Level1) {
	for _, l1 := range nested {
		if _, dup := t.nodes[l1.ID]; dup {
			continue
		}
		n1 := &node{id: l1.ID, level: level1, title: l1.Title, createdAt: l1.CreatedAt}
		t.nodes[n1.id] = n1
		t.roots = append(t.roots, n1.id)
		for _, l2 := range l1.Children {
			if _, dup := t.nodes[l2.ID]; dup {
				continue
			}
			n2 := &node{id: l2.ID, level: level2, parent: n1.id, title: l2.Title, createdAt: l2.CreatedAt}
			t.nodes[n2.id] = n2
			n1.children = append(n1.children, n2.id)
			for _, l3 := range l2.Steps {
				if _, dup := t.nodes[l3.ID]; dup {
					continue
				}
				t.nodes[l3.ID] = &node{
					id: l3.ID, level: level3, parent: n2.id,
					title: l3.Title, completed: l3.Completed, createdAt: l3.CreatedAt,
				}
				n2.children = append(n2.children, l3.ID)
			}
		}
	}
}

// resolve walks path top-down. It fails at the first id that is absent,
// sits at the wrong depth, or hangs off a different parent.
func (t *Tree) resolve(path ...string) (*node, bool) {
	var parent string
	var n *node
	for depth, id := range path {
		var ok bool
		n, ok = t.nodes[id]
		if !ok || n.level != level(depth+1) || n.parent != parent {
			return nil, false
		}
		parent = id
	}
	return n, n != nil
}

func (t *Tree) newNode(lvl level, parent, title string) *node {
	n := &node{
		id:        t.gen.Next(),
		level:     lvl,
		parent:    parent,
		title:     title,
		createdAt: t.opts.stamp(),
	}
	t.nodes[n.id] = n
	return n
}

// drop unlinks id from owner and forgets its whole subtree.
func (t *Tree) drop(owner *[]string, id string) {
	*owner = removeID(*owner, id)
	var forget func(string)
	forget = func(id string) {
		n := t.nodes[id]
		if n == nil {
			return
		}
		for _, c := range n.children {
			forget(c)
		}
		delete(t.nodes, id)
	}
	forget(id)
}

func removeID(ids []string, id string) []string {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}

// AddLevel1 appends a goal with no sub-goals.
func (t *Tree) AddLevel1(title string) (Level1, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := t.newNode(level1, "", title)
	t.roots = append(t.roots, n.id)
	return t.level1(n), t.saveLocked()
}

// UpdateLevel1 merges u into the goal.
func (t *Tree) UpdateLevel1(l1 string, u NodeUpdate) (Level1, bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	n, ok := t.resolve(l1)
	if !ok {
		return Level1{}, false, nil
	}
	if u.Title != nil {
		n.title = *u.Title
	}
	return t.level1(n), true, t.saveLocked()
}

// DeleteLevel1 removes the goal and everything under it.
func (t *Tree) DeleteLevel1(l1 string) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.resolve(l1); !ok {
		return false, nil
	}
	t.drop(&t.roots, l1)
	return true, t.saveLocked()
}

// AddLevel2 appends a sub-goal under l1.
func (t *Tree) AddLevel2(l1, title string) (Level2, bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	p, ok := t.resolve(l1)
	if !ok {
		return Level2{}, false, nil
	}
	n := t.newNode(level2, p.id, title)
	p.children = append(p.children, n.id)
	return t.level2(n), true, t.saveLocked()
}

// UpdateLevel2 merges u into the sub-goal at l1/l2.
func (t *Tree) UpdateLevel2(l1, l2 string, u NodeUpdate) (Level2, bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	n, ok := t.resolve(l1, l2)
	if !ok {
		return Level2{}, false, nil
	}
	if u.Title != nil {
		n.title = *u.Title
	}
	return t.level2(n), true, t.saveLocked()
}

// DeleteLevel2 removes the sub-goal at l1/l2 and its steps.
func (t *Tree) DeleteLevel2(l1, l2 string) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.resolve(l1, l2); !ok {
		return false, nil
	}
	t.drop(&t.nodes[l1].children, l2)
	return true, t.saveLocked()
}

// AddLevel3 appends an open step under l1/l2.
func (t *Tree) AddLevel3(l1, l2, title string) (Level3, bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	p, ok := t.resolve(l1, l2)
	if !ok {
		return Level3{}, false, nil
	}
	n := t.newNode(level3, p.id, title)
	p.children = append(p.children, n.id)
	return level3Of(n), true, t.saveLocked()
}

// UpdateLevel3 merges u into the step at l1/l2/l3.
func (t *Tree) UpdateLevel3(l1, l2, l3 string, u StepUpdate) (Level3, bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	n, ok := t.resolve(l1, l2, l3)
	if !ok {
		return Level3{}, false, nil
	}
	if u.Title != nil {
		n.title = *u.Title
	}
	if u.Completed != nil {
		n.completed = *u.Completed
	}
	return level3Of(n), true, t.saveLocked()
}

// ToggleLevel3 flips the completed flag of the step at l1/l2/l3.
func (t *Tree) ToggleLevel3(l1, l2, l3 string) (Level3, bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	n, ok := t.resolve(l1, l2, l3)
	if !ok {
		return Level3{}, false, nil
	}
	n.completed = !n.completed
	return level3Of(n), true, t.saveLocked()
}

// DeleteLevel3 removes the step at l1/l2/l3.
func (t *Tree) DeleteLevel3(l1, l2, l3 string) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.resolve(l1, l2, l3); !ok {
		return false, nil
	}
	t.drop(&t.nodes[l2].children, l3)
	return true, t.saveLocked()
}

// Get returns the goal with id and its subtree.
func (t *Tree) Get(l1 string) (Level1, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	n, ok := t.resolve(l1)
	if !ok {
		return Level1{}, false
	}
	return t.level1(n), true
}

// List materialises the whole tree in insertion order.
func (t *Tree) List() []Level1 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.nestedLocked()
}

// Len reports how many nodes of all levels the tree holds.
func (t *Tree) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.nodes)
}

func (t *Tree) nestedLocked() []Level1 {
	out := make([]Level1, 0, len(t.roots))
	for _, id := range t.roots {
		out = append(out, t.level1(t.nodes[id]))
	}
	return out
}

func (t *Tree) level1(n *node) Level1 {
	l := Level1{ID: n.id, Title: n.title, CreatedAt: n.createdAt, Children: make([]Level2, 0, len(n.children))}
	for _, c := range n.children {
		l.Children = append(l.Children, t.level2(t.nodes[c]))
	}
	return l
}

func (t *Tree) level2(n *node) Level2 {
	l := Level2{ID: n.id, Title: n.title, CreatedAt: n.createdAt, Steps: make([]Level3, 0, len(n.children))}
	for _, c := range n.children {
		l.Steps = append(l.Steps, level3Of(t.nodes[c]))
	}
	return l
}

func level3Of(n *node) Level3 {
	return Level3{ID: n.id, Title: n.title, Completed: n.completed, CreatedAt: n.createdAt}
}

func (t *Tree) saveLocked() error {
	return save(t.adapter, store.KeyLevelTasks, t.nestedLocked(), t.log)
}
