// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestDefaultValues(t *testing.T) {
	cfg := Default()

	if cfg.API.Endpoint != "http://127.0.0.1:8000/generate" {
		t.Errorf("unexpected default endpoint %q", cfg.API.Endpoint)
	}
	if cfg.API.TimeoutSecs != 25 {
		t.Errorf("expected 25s timeout, got %d", cfg.API.TimeoutSecs)
	}
	if cfg.API.MaxNewTokens != 200 || cfg.API.Temperature != 0.7 || cfg.API.TopP != 0.9 {
		t.Errorf("unexpected sampling defaults: %+v", cfg.API)
	}
	if cfg.Export.DefaultFormat != "markdown" {
		t.Errorf("expected markdown default format, got %q", cfg.Export.DefaultFormat)
	}
}

func TestLoadFromPathTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
version = "1.0.0"

[api]
endpoint = "http://10.0.0.5:9000/generate"
timeout_secs = 60

[ui]
theme = "light"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.API.Endpoint != "http://10.0.0.5:9000/generate" {
		t.Errorf("endpoint not loaded: %q", cfg.API.Endpoint)
	}
	if cfg.API.TimeoutSecs != 60 {
		t.Errorf("timeout not loaded: %d", cfg.API.TimeoutSecs)
	}
	if cfg.UI.Theme != "light" {
		t.Errorf("theme not loaded: %q", cfg.UI.Theme)
	}
	// Unspecified fields fall back to defaults.
	if cfg.API.MaxNewTokens != 200 {
		t.Errorf("missing field should default, got %d", cfg.API.MaxNewTokens)
	}
}

func TestLoadFromPathJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	content := `{"api": {"endpoint": "http://localhost:7000/generate"}, "ui": {"theme": "auto"}}`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.API.Endpoint != "http://localhost:7000/generate" {
		t.Errorf("endpoint not loaded: %q", cfg.API.Endpoint)
	}
	if cfg.UI.Theme != "auto" {
		t.Errorf("theme not loaded: %q", cfg.UI.Theme)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"timeout too low", func(c *Config) { c.API.TimeoutSecs = 0 }, "api.timeout_secs"},
		{"timeout too high", func(c *Config) { c.API.TimeoutSecs = 301 }, "api.timeout_secs"},
		{"max tokens too high", func(c *Config) { c.API.MaxNewTokens = 10000 }, "api.max_new_tokens"},
		{"temperature out of range", func(c *Config) { c.API.Temperature = 3 }, "api.temperature"},
		{"top_p out of range", func(c *Config) { c.API.TopP = 1.5 }, "api.top_p"},
		{"bad theme", func(c *Config) { c.UI.Theme = "neon" }, "ui.theme"},
		{"sidebar too narrow", func(c *Config) { c.UI.SidebarWidth = 5 }, "ui.sidebar_width"},
		{"bad export format", func(c *Config) { c.Export.DefaultFormat = "pdf" }, "export.default_format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("error should name %s: %v", tt.field, err)
			}
		})
	}
}

func TestSetDefaultsFillsZeroValues(t *testing.T) {
	cfg := &Config{}
	cfg.SetDefaults()

	if cfg.API.Endpoint == "" || cfg.API.TimeoutSecs == 0 {
		t.Error("API defaults not applied")
	}
	if cfg.UI.Theme == "" || cfg.UI.SidebarWidth == 0 {
		t.Error("UI defaults not applied")
	}
	if cfg.Export.DefaultFormat == "" {
		t.Error("export defaults not applied")
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("SYNTX_ENDPOINT", "http://override:1234/generate")
	t.Setenv("SYNTX_TIMEOUT_SECS", "45")
	t.Setenv("SYNTX_THEME", "light")
	t.Setenv("SYNTX_VOICE", "true")
	t.Setenv("SYNTX_SLOT_PATH", "/tmp/custom.db")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.API.Endpoint != "http://override:1234/generate" {
		t.Errorf("endpoint override not applied: %q", cfg.API.Endpoint)
	}
	if cfg.API.TimeoutSecs != 45 {
		t.Errorf("timeout override not applied: %d", cfg.API.TimeoutSecs)
	}
	if cfg.UI.Theme != "light" {
		t.Errorf("theme override not applied: %q", cfg.UI.Theme)
	}
	if !cfg.Voice.Enabled {
		t.Error("voice override not applied")
	}
	if cfg.Storage.SlotPath != "/tmp/custom.db" {
		t.Errorf("slot path override not applied: %q", cfg.Storage.SlotPath)
	}
}

func TestApplyEnvOverridesIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("SYNTX_TIMEOUT_SECS", "not-a-number")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.API.TimeoutSecs != 25 {
		t.Errorf("malformed env value should be ignored, got %d", cfg.API.TimeoutSecs)
	}
}

func TestSaveAndReloadTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	cfg := Default()
	cfg.API.Endpoint = "http://saved:8000/generate"
	cfg.UI.CompactMode = true

	if err := SaveTOML(cfg, path); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded := Default()
	if err := LoadTOML(loaded, path); err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if loaded.API.Endpoint != "http://saved:8000/generate" {
		t.Errorf("endpoint did not round-trip: %q", loaded.API.Endpoint)
	}
	if !loaded.UI.CompactMode {
		t.Error("compact mode did not round-trip")
	}
}

func TestSaveAndReloadJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	cfg := Default()
	cfg.Export.DefaultFormat = "csv"

	if err := SaveJSON(cfg, path); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded := Default()
	if err := LoadJSON(loaded, path); err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if loaded.Export.DefaultFormat != "csv" {
		t.Errorf("format did not round-trip: %q", loaded.Export.DefaultFormat)
	}
}

func TestLoadFromPathRejectsInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := "[ui]\ntheme = \"neon\"\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	if _, err := LoadFromPath(path); err == nil {
		t.Error("invalid config should be rejected")
	}
}

func TestLoadInvalidFileFallsBackToDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := filepath.Join(home, ".syntx")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("failed to create config dir: %v", err)
	}
	content := "[api]\ntemperature = 5.0\n"
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load()
	if err == nil {
		t.Error("an out-of-range value should be reported")
	}
	if cfg == nil {
		t.Fatal("Load must return a usable config even when the file is invalid")
	}
	if cfg.API.Temperature != Default().API.Temperature {
		t.Errorf("expected default temperature, got %f", cfg.API.Temperature)
	}
	if verr := cfg.Validate(); verr != nil {
		t.Errorf("fallback config should be valid: %v", verr)
	}
}
