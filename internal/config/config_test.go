package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile() = %v", err)
	}
	return path
}

func TestLoadValid(t *testing.T) {
	path := writeConfig(t, `
port = "8080"
database_path = "users.json"
edge_cost_tags = ["distance", "time", "elevation"]
initial_pref = [0.5, 0.3, 0.2]
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() = %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("Port = %s, want 8080", cfg.Port)
	}
	want := [3]float64{0.5, 0.3, 0.2}
	if cfg.Preference() != want {
		t.Errorf("Preference() = %v, want %v", cfg.Preference(), want)
	}
}

func TestLoadRejectsWrongDimension(t *testing.T) {
	path := writeConfig(t, `
port = "8080"
database_path = "users.json"
edge_cost_tags = ["distance", "time"]
initial_pref = [0.5, 0.5]
`)

	if _, err := Load(path); err == nil {
		t.Fatal("Load() = nil, want dimension mismatch error")
	}
}

func TestLoadRejectsNonSimplexPreference(t *testing.T) {
	path := writeConfig(t, `
port = "8080"
database_path = "users.json"
edge_cost_tags = ["distance", "time", "elevation"]
initial_pref = [0.5, 0.5, 0.5]
`)

	if _, err := Load(path); err == nil {
		t.Fatal("Load() = nil, want invalid preference error")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatal("Load() = nil, want error for missing file")
	}
}
