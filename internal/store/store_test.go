package store

import (
	"errors"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// ============================================================
// Store initialization
// ============================================================

func TestNewMemory(t *testing.T) {
	s, err := NewMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	// Should have run migration v1
	var version int
	s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if version != 1 {
		t.Fatalf("expected user_version 1, got %d", version)
	}
}

func TestNewWithPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "dayplan.db")
	s, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Set(KeyTimerState, []byte(`{"a":1}`)); err != nil {
		t.Fatal(err)
	}
	s.Close()

	// Reopen: data survives and migration is not re-run destructively
	s2, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()
	got, ok, err := s2.Get(KeyTimerState)
	if err != nil || !ok {
		t.Fatalf("expected key after reopen, ok=%v err=%v", ok, err)
	}
	if string(got) != `{"a":1}` {
		t.Fatalf("unexpected blob %q", got)
	}
}

func TestMigrationIdempotent(t *testing.T) {
	s := newTestStore(t)
	// Running migrate again should be a no-op
	if err := s.migrate(); err != nil {
		t.Fatalf("second migration failed: %v", err)
	}
}

// ============================================================
// Key/value
// ============================================================

func TestGetMissingKey(t *testing.T) {
	s := newTestStore(t)
	blob, ok, err := s.Get("nope")
	if err != nil {
		t.Fatal(err)
	}
	if ok || blob != nil {
		t.Fatalf("expected absent key, got ok=%v blob=%q", ok, blob)
	}
}

func TestSetOverwrites(t *testing.T) {
	s := newTestStore(t)
	s.Set(KeyTimePlans, []byte(`[1]`))
	s.Set(KeyTimePlans, []byte(`[1,2]`))

	got, ok, _ := s.Get(KeyTimePlans)
	if !ok || string(got) != `[1,2]` {
		t.Fatalf("expected overwritten blob, got %q", got)
	}
}

func TestDeleteKey(t *testing.T) {
	s := newTestStore(t)
	s.Set(KeyCalendarEvents, []byte(`[]`))
	if err := s.Delete(KeyCalendarEvents); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := s.Get(KeyCalendarEvents); ok {
		t.Fatal("key should be gone")
	}
	// Deleting again is fine
	if err := s.Delete(KeyCalendarEvents); err != nil {
		t.Fatalf("second delete: %v", err)
	}
}

func TestKeysSorted(t *testing.T) {
	s := newTestStore(t)
	s.Set(KeyTimerState, []byte(`{}`))
	s.Set(KeyLevelTasks, []byte(`[]`))
	s.Set(KeyTodayProjects, []byte(`[]`))

	keys, err := s.Keys()
	if err != nil {
		t.Fatal(err)
	}
	want := []string{KeyLevelTasks, KeyTimerState, KeyTodayProjects}
	if len(keys) != len(want) {
		t.Fatalf("expected %d keys, got %v", len(want), keys)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("keys[%d] = %q, want %q", i, keys[i], want[i])
		}
	}
}

func TestKeysEmpty(t *testing.T) {
	s := newTestStore(t)
	keys, err := s.Keys()
	if err != nil {
		t.Fatal(err)
	}
	if keys != nil {
		t.Fatal("expected nil slice for empty store")
	}
}

// ============================================================
// JSON helpers
// ============================================================

type sample struct {
	ID    string `json:"id"`
	Count int    `json:"count"`
}

func TestSaveAndLoadJSON(t *testing.T) {
	s := newTestStore(t)
	in := []sample{{ID: "a", Count: 1}, {ID: "b", Count: 2}}
	if err := SaveJSON(s, KeyTimePlans, in); err != nil {
		t.Fatal(err)
	}

	var out []sample
	ok, err := LoadJSON(s, KeyTimePlans, &out)
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if len(out) != 2 || out[1].ID != "b" || out[1].Count != 2 {
		t.Fatalf("unexpected round trip: %+v", out)
	}
}

func TestLoadJSONMissing(t *testing.T) {
	s := newTestStore(t)
	var out []sample
	ok, err := LoadJSON(s, KeyTimePlans, &out)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("expected ok=false for missing key")
	}
}

func TestLoadJSONCorrupt(t *testing.T) {
	s := newTestStore(t)
	s.Set(KeyTimePlans, []byte(`{not json`))
	var out []sample
	ok, err := LoadJSON(s, KeyTimePlans, &out)
	if !errors.Is(err, ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt, got %v", err)
	}
	if ok {
		t.Fatal("corrupt blob should not report ok")
	}
}

// ============================================================
// Memory adapter
// ============================================================

func TestMemoryAdapterCopies(t *testing.T) {
	m := NewMemoryAdapter()
	blob := []byte(`[1]`)
	m.Set("k", blob)
	blob[1] = '9'

	got, ok, _ := m.Get("k")
	if !ok || string(got) != `[1]` {
		t.Fatalf("adapter should keep its own copy, got %q", got)
	}
}

func TestMemoryAdapterFailWith(t *testing.T) {
	m := NewMemoryAdapter()
	boom := errors.New("disk full")
	m.FailWith(boom)

	if err := SaveJSON(m, "k", []int{1}); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped failure, got %v", err)
	}
	if err := m.Delete("k"); !errors.Is(err, boom) {
		t.Fatalf("expected delete failure, got %v", err)
	}

	m.FailWith(nil)
	if err := SaveJSON(m, "k", []int{1}); err != nil {
		t.Fatalf("expected recovery, got %v", err)
	}
}
