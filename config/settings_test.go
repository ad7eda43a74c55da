package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadCreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	m := NewManager(path)

	s, err := m.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if s.Server.Port != 8787 {
		t.Errorf("expected default port 8787, got %d", s.Server.Port)
	}
	if s.Cache.RecordTTLHours != 1 || s.Cache.GenreTTLHours != 24 {
		t.Errorf("unexpected default TTLs: %d/%d", s.Cache.RecordTTLHours, s.Cache.GenreTTLHours)
	}
	if s.Server.APIKey == "" {
		t.Error("expected API key to be generated on first load")
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected settings file to be written: %v", err)
	}
}

func TestLoadPreservesAPIKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	m := NewManager(path)

	first, err := m.Load()
	if err != nil {
		t.Fatalf("first Load failed: %v", err)
	}
	second, err := m.Load()
	if err != nil {
		t.Fatalf("second Load failed: %v", err)
	}
	if first.Server.APIKey != second.Server.APIKey {
		t.Errorf("API key changed across loads: %q vs %q", first.Server.APIKey, second.Server.APIKey)
	}
}

func TestLoadClampsTTLs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte(`{"cache":{"recordTtlHours":0,"genreTtlHours":-3}}`), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := NewManager(path).Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if s.Cache.RecordTTLHours != 1 {
		t.Errorf("expected record TTL clamped to 1, got %d", s.Cache.RecordTTLHours)
	}
	if s.Cache.GenreTTLHours != 24 {
		t.Errorf("expected genre TTL clamped to 24, got %d", s.Cache.GenreTTLHours)
	}
}
