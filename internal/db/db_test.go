package db

import (
	"path/filepath"
	"testing"
)

func TestNewAppliesMigrations(t *testing.T) {
	database, err := New(filepath.Join(t.TempDir(), "sessions.db"))
	if err != nil {
		t.Fatalf("new db: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })

	var name string
	err = database.QueryRow("SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'sessions'").Scan(&name)
	if err != nil {
		t.Fatalf("sessions table missing: %v", err)
	}
}

func TestNewIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.db")
	first, err := New(path)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	first.Close()

	second, err := New(path)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	second.Close()
}

func TestWithBusyTimeout(t *testing.T) {
	tests := map[string]string{
		"a.db":                   "a.db?_busy_timeout=5000",
		"a.db?_fk=1":             "a.db?_fk=1&_busy_timeout=5000",
		"a.db?_busy_timeout=100": "a.db?_busy_timeout=100",
	}
	for in, want := range tests {
		if got := withBusyTimeout(in); got != want {
			t.Fatalf("withBusyTimeout(%q) = %q, want %q", in, got, want)
		}
	}
}
