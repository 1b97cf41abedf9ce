package store

import (
	"errors"
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
	path := dir + "/sub/kidclock.db"
	s, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Put(NamespaceState, []byte(`{"currentIndex":2}`)); err != nil {
		t.Fatal(err)
	}
	s.Close()

	// Reopen: should keep data and not re-migrate
	s2, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()
	body, err := s2.Get(NamespaceState)
	if err != nil {
		t.Fatal(err)
	}
	if string(body) != `{"currentIndex":2}` {
		t.Fatalf("unexpected body after reopen: %s", body)
	}
}

func TestDefaultDBPath(t *testing.T) {
	path, err := DefaultDBPath()
	if err != nil {
		t.Fatal(err)
	}
	if path == "" {
		t.Fatal("empty path")
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
// Documents
// ============================================================

func TestGetMissing(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Get(NamespaceSettings)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPutAndGet(t *testing.T) {
	s := newTestStore(t)
	if err := s.Put(NamespaceSettings, []byte(`{"icalUrl":"x"}`)); err != nil {
		t.Fatal(err)
	}
	d, err := s.GetDocument(NamespaceSettings)
	if err != nil {
		t.Fatal(err)
	}
	if string(d.Body) != `{"icalUrl":"x"}` {
		t.Fatalf("unexpected body: %s", d.Body)
	}
	if d.UpdatedAt.IsZero() {
		t.Fatal("UpdatedAt should be set")
	}
}

func TestPutReplaces(t *testing.T) {
	s := newTestStore(t)
	s.Put(NamespaceState, []byte(`{"a":1}`))
	s.Put(NamespaceState, []byte(`{"b":2}`))

	body, err := s.Get(NamespaceState)
	if err != nil {
		t.Fatal(err)
	}
	if string(body) != `{"b":2}` {
		t.Fatalf("expected last write to win, got %s", body)
	}
}

func TestNamespacesIsolated(t *testing.T) {
	s := newTestStore(t)
	s.Put(NamespaceState, []byte(`{"state":true}`))
	s.Put(NamespaceSettings, []byte(`{"settings":true}`))

	state, _ := s.Get(NamespaceState)
	settings, _ := s.Get(NamespaceSettings)
	if string(state) != `{"state":true}` || string(settings) != `{"settings":true}` {
		t.Fatalf("namespaces leaked: %s / %s", state, settings)
	}
}

func TestGetAfterClose(t *testing.T) {
	s, err := NewMemory()
	if err != nil {
		t.Fatal(err)
	}
	s.Close()
	if _, err := s.Get(NamespaceState); err == nil || errors.Is(err, ErrNotFound) {
		t.Fatalf("expected a database error, got %v", err)
	}
}
