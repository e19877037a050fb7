package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
)

// ErrCorrupt marks a stored blob that no longer decodes.
var ErrCorrupt = errors.New("corrupt blob")

// Fixed top-level keys. Each holds the full collection or state as JSON.
const (
	KeyTimePlans      = "time_plans"
	KeyTodayProjects  = "today_projects"
	KeyLevelTasks     = "level_tasks"
	KeyCalendarEvents = "calendar_events"
	KeyTimerState     = "timer_state"
)

// Adapter is the key→blob persistence contract the domain services consume.
type Adapter interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, blob []byte) error
	Delete(key string) error
}

var _ Adapter = (*Store)(nil)
var _ Adapter = (*Memory)(nil)

// LoadJSON decodes the blob under key into v. ok is false when the key is absent.
func LoadJSON(a Adapter, key string, v any) (bool, error) {
	data, ok, err := a.Get(key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("decode %s: %w: %w", key, ErrCorrupt, err)
	}
	return true, nil
}

// SaveJSON encodes v and writes it under key.
func SaveJSON(a Adapter, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := a.Set(key, data); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Memory is a map-backed Adapter for tests and throwaway sessions.
type Memory struct {
	mu   sync.Mutex
	data map[string][]byte
	fail error
}

func NewMemoryAdapter() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

// FailWith makes every subsequent Set and Delete return err. nil clears it.
func (m *Memory) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail = err
}

func (m *Memory) Get(key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

func (m *Memory) Set(key string, blob []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	v := make([]byte, len(blob))
	copy(v, blob)
	m.data[key] = v
	return nil
}

func (m *Memory) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	delete(m.data, key)
	return nil
}
