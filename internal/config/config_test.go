package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative workers", func(c *Config) { c.Carver.Workers = -1 }},
		{"negative grid budget", func(c *Config) { c.Carver.MaxGridCells = -5 }},
		{"unknown backend", func(c *Config) { c.Protect.Backend = "openai" }},
		{"negative weight", func(c *Config) { c.Protect.Weight = -1 }},
		{"confidence above 1", func(c *Config) { c.Protect.MinConfidence = 1.5 }},
		{"send quality 0", func(c *Config) { c.Protect.SendQuality = 0 }},
		{"quality 101", func(c *Config) { c.Output.Quality = 101 }},
		{"bad format", func(c *Config) { c.Output.DefaultFormat = "heic" }},
	}

	for _, tt := range tests {
		cfg := Default()
		tt.mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tt.name)
		}
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")

	cfg := Default()
	cfg.Carver.Workers = 8
	cfg.Protect.Enabled = true
	cfg.Output.Suffix = "_narrow"
	cfg.Output.Debug = true
	if err := cfg.SaveToFile(path); err != nil {
		t.Fatalf("SaveToFile failed: %v", err)
	}

	loaded, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}
	if loaded.Carver.Workers != 8 || !loaded.Protect.Enabled || loaded.Output.Suffix != "_narrow" || !loaded.Output.Debug {
		t.Errorf("loaded config differs: %+v", loaded)
	}
}

func TestLoadFromFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.json")
	if err := os.WriteFile(path, []byte(`{"carver":{"workers":3}}`), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}
	if cfg.Carver.Workers != 3 {
		t.Errorf("workers = %d, want 3", cfg.Carver.Workers)
	}
	if cfg.Output.Quality != 90 || cfg.Protect.Backend != "ollama" {
		t.Errorf("defaults lost: %+v", cfg)
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Output.Suffix != "_carved" {
		t.Errorf("expected defaults, got %+v", cfg.Output)
	}

	bad := filepath.Join(t.TempDir(), "bad.json")
	os.WriteFile(bad, []byte("{"), 0644)
	if _, err := Load(bad); err == nil {
		t.Error("expected parse error")
	}
}

func TestDefaultBackendURL(t *testing.T) {
	if got := DefaultBackendURL("llamacpp"); got != "http://localhost:8080" {
		t.Errorf("llamacpp url = %q", got)
	}
	if got := DefaultBackendURL("ollama"); got != Default().Protect.URL {
		t.Errorf("ollama url = %q", got)
	}
}

func TestDebugOutputFromFile(t *testing.T) {
	if Default().Output.Debug {
		t.Error("debug output should be off by default")
	}

	path := filepath.Join(t.TempDir(), "debug.json")
	if err := os.WriteFile(path, []byte(`{"output":{"debug":true}}`), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}
	if !cfg.Output.Debug || cfg.Output.Suffix != "_carved" {
		t.Errorf("output section = %+v", cfg.Output)
	}
}

func TestSaliencyBackend(t *testing.T) {
	cfg := Default()
	cfg.Protect.Backend = "saliency"
	cfg.Protect.URL = DefaultBackendURL("saliency")
	if err := cfg.Validate(); err != nil {
		t.Errorf("saliency backend rejected: %v", err)
	}
	if cfg.Protect.URL != "" {
		t.Errorf("saliency backend url = %q, want empty", cfg.Protect.URL)
	}
}
