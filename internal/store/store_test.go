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

	var version int
	s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if version != 1 {
		t.Fatalf("expected user_version 1, got %d", version)
	}
}

func TestNewWithPath(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/sub/pathtrack.db"
	s, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.SetTheme(ThemeDark); err != nil {
		t.Fatal(err)
	}
	s.Close()

	// Reopen: data kept, no re-migration
	s2, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()
	if got := s2.GetTheme(); got != ThemeDark {
		t.Fatalf("theme after reopen = %q, want %q", got, ThemeDark)
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
	if err := s.migrate(); err != nil {
		t.Fatalf("second migration failed: %v", err)
	}
}

// ============================================================
// Theme
// ============================================================

func TestThemeDefaultsToLight(t *testing.T) {
	s := newTestStore(t)
	if got := s.GetTheme(); got != ThemeLight {
		t.Fatalf("default theme = %q, want %q", got, ThemeLight)
	}
}

func TestThemeMissingRowIsLight(t *testing.T) {
	s := newTestStore(t)
	if err := s.DeleteSetting(KeyTheme); err != nil {
		t.Fatal(err)
	}
	if got := s.GetTheme(); got != ThemeLight {
		t.Fatalf("theme = %q, want light", got)
	}
}

func TestSetTheme(t *testing.T) {
	s := newTestStore(t)
	if err := s.SetTheme(ThemeDark); err != nil {
		t.Fatal(err)
	}
	if got := s.GetTheme(); got != ThemeDark {
		t.Fatalf("theme = %q, want dark", got)
	}
	v, _ := s.GetSetting(KeyTheme)
	if v != "dark-mode" {
		t.Fatalf("stored value = %q, want dark-mode", v)
	}
}

func TestUnknownThemeValueIsLight(t *testing.T) {
	s := newTestStore(t)
	s.SetSetting(KeyTheme, "sepia")
	if got := s.GetTheme(); got != ThemeLight {
		t.Fatalf("theme = %q, want light", got)
	}
}

func TestThemeToggle(t *testing.T) {
	if ThemeLight.Toggle() != ThemeDark {
		t.Fatal("light should toggle to dark")
	}
	if ThemeDark.Toggle() != ThemeLight {
		t.Fatal("dark should toggle to light")
	}
}

// ============================================================
// Progress
// ============================================================

func TestProgressKey(t *testing.T) {
	if got := ProgressKey("linux_basics", 0); got != "linux_basics_0" {
		t.Fatalf("ProgressKey = %q", got)
	}
	if got := ProgressKey("git", 12); got != "git_12" {
		t.Fatalf("ProgressKey = %q", got)
	}
}

func TestGetProgressEmpty(t *testing.T) {
	s := newTestStore(t)
	p, err := s.GetProgress()
	if err != nil {
		t.Fatal(err)
	}
	if p == nil || p.Len() != 0 {
		t.Fatalf("expected empty non-nil progress, got %v", p)
	}
}

func TestSetAndGetProgress(t *testing.T) {
	s := newTestStore(t)
	p := Progress{}
	p.Set("linux_basics", 0)
	p.Set("git", 3)
	if err := s.SetProgress(p); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetProgress()
	if err != nil {
		t.Fatal(err)
	}
	if got.Len() != 2 || !got.Has("linux_basics", 0) || !got.Has("git", 3) {
		t.Fatalf("unexpected progress: %v", got)
	}

	raw, _ := s.GetSetting(KeyProgress)
	if raw != `{"git_3":true,"linux_basics_0":true}` {
		t.Fatalf("stored progress = %s", raw)
	}
}

func TestCorruptProgressFailsSoft(t *testing.T) {
	s := newTestStore(t)
	s.SetSetting(KeyProgress, "{not json")

	p, err := s.GetProgress()
	if err == nil {
		t.Fatal("expected decode error")
	}
	var decodeErr *StoreDecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("expected *StoreDecodeError, got %T", err)
	}
	if decodeErr.Key != KeyProgress {
		t.Fatalf("decode error key = %q", decodeErr.Key)
	}
	if p == nil || p.Len() != 0 {
		t.Fatalf("corrupt progress should default to empty, got %v", p)
	}
}

func TestProgressDropsFalseValues(t *testing.T) {
	s := newTestStore(t)
	s.SetSetting(KeyProgress, `{"a_0":true,"a_1":false,"a_2":"yes"}`)

	p, err := s.GetProgress()
	if err != nil {
		t.Fatal(err)
	}
	if p.Len() != 1 || !p.Has("a", 0) {
		t.Fatalf("expected only a_0, got %v", p)
	}
}

func TestProgressClear(t *testing.T) {
	p := Progress{}
	p.Set("a", 1)
	p.Clear("a", 1)
	if p.Len() != 0 {
		t.Fatalf("expected empty after clear, got %v", p)
	}
}

func TestProgressCloneIsIndependent(t *testing.T) {
	p := Progress{}
	p.Set("a", 0)
	c := p.Clone()
	c.Set("a", 1)
	if p.Len() != 1 {
		t.Fatal("clone should not share storage")
	}
}

// ============================================================
// Settings
// ============================================================

func TestSettingsDefaults(t *testing.T) {
	s := newTestStore(t)
	v, err := s.GetSetting(KeyTheme)
	if err != nil {
		t.Fatal(err)
	}
	if v != "light-mode" {
		t.Fatalf("theme default = %q", v)
	}
}

func TestGetSettingNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetSetting("nonexistent")
	if err == nil {
		t.Fatal("expected error for missing setting")
	}
}

func TestSetSettingOverwrite(t *testing.T) {
	s := newTestStore(t)
	s.SetSetting("k", "v1")
	s.SetSetting("k", "v2")
	v, _ := s.GetSetting("k")
	if v != "v2" {
		t.Fatalf("expected v2, got %q", v)
	}
}

func TestGetAllSettings(t *testing.T) {
	s := newTestStore(t)
	s.SetSetting("b_key", "1")
	s.SetSetting("a_key", "2")
	settings, err := s.GetAllSettings()
	if err != nil {
		t.Fatal(err)
	}
	if len(settings) != 3 {
		t.Fatalf("expected 3 settings, got %d", len(settings))
	}
	if settings[0].Key != "a_key" {
		t.Fatalf("expected sorted by key, got %s first", settings[0].Key)
	}
}

func TestDocumentSource(t *testing.T) {
	s := newTestStore(t)
	if got := s.GetDocumentSource(); got != "" {
		t.Fatalf("expected empty source, got %q", got)
	}
	if err := s.SetDocumentSource("paths/k8s.json"); err != nil {
		t.Fatal(err)
	}
	if got := s.GetDocumentSource(); got != "paths/k8s.json" {
		t.Fatalf("source = %q", got)
	}
	if err := s.SetDocumentSource(""); err != nil {
		t.Fatal(err)
	}
	if got := s.GetDocumentSource(); got != "" {
		t.Fatalf("source after clear = %q", got)
	}
}

func TestCloseStore(t *testing.T) {
	s, _ := NewMemory()
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if err := s.SetTheme(ThemeDark); err == nil {
		t.Fatal("expected error after close")
	}
}
