// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading and management for
// syntx-tui.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// environment variable overrides, and validation.
//
// Configuration file locations (in order of precedence):
//   - ~/.syntx/config.toml
//   - ~/.syntx/config.json
//   - Built-in defaults
package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/syntx-system/syntx-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete syntx-tui configuration.
type Config struct {
	Version string `toml:"version" json:"version"`

	// API configuration for the completion endpoint
	API APIConfig `toml:"api" json:"api"`

	// Storage configuration
	Storage StorageConfig `toml:"storage" json:"storage"`

	// UI configuration
	UI UIConfig `toml:"ui" json:"ui"`

	// Voice input configuration
	Voice VoiceConfig `toml:"voice" json:"voice"`

	// Export configuration
	Export ExportConfig `toml:"export" json:"export"`
}

// APIConfig contains completion endpoint configuration.
type APIConfig struct {
	// Endpoint is the completion URL
	Endpoint string `toml:"endpoint" json:"endpoint"`
	// TimeoutSecs bounds each completion request (default: 25)
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs"`
	// MaxNewTokens caps the generated reply length
	MaxNewTokens int `toml:"max_new_tokens" json:"max_new_tokens"`
	// Temperature for sampling (0.0-2.0)
	Temperature float64 `toml:"temperature" json:"temperature"`
	// TopP nucleus sampling cutoff (0.0-1.0)
	TopP float64 `toml:"top_p" json:"top_p"`
	// SubmitsPerSecond rate-limits outgoing completion requests
	SubmitsPerSecond float64 `toml:"submits_per_second" json:"submits_per_second"`
}

// StorageConfig contains durable slot configuration.
type StorageConfig struct {
	// SlotPath is the SQLite database holding persisted conversations
	// (empty = default ~/.syntx/syntx.db)
	SlotPath string `toml:"slot_path" json:"slot_path"`
}

// UIConfig contains UI configuration.
type UIConfig struct {
	// Theme is the UI theme: "dark", "light", "auto"
	Theme string `toml:"theme" json:"theme"`
	// RenderMarkdown renders assistant replies through glamour
	RenderMarkdown bool `toml:"render_markdown" json:"render_markdown"`
	// CompactMode uses a more compact layout
	CompactMode bool `toml:"compact_mode" json:"compact_mode"`
	// ShowTimestamps displays message timestamps in the transcript
	ShowTimestamps bool `toml:"show_timestamps" json:"show_timestamps"`
	// SidebarWidth is the conversation list width in columns
	SidebarWidth int `toml:"sidebar_width" json:"sidebar_width"`
}

// VoiceConfig contains voice input configuration.
type VoiceConfig struct {
	// Enabled turns the voice input key on when a recognizer is available
	Enabled bool `toml:"enabled" json:"enabled"`
}

// ExportConfig contains export configuration.
type ExportConfig struct {
	// Dir is where exported transcripts are written (empty = current dir)
	Dir string `toml:"dir" json:"dir"`
	// DefaultFormat is used when no format is given: "markdown", "json", "txt", "csv"
	DefaultFormat string `toml:"default_format" json:"default_format"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Version: "1.0.0",

		API: APIConfig{
			Endpoint:         "http://127.0.0.1:8000/generate",
			TimeoutSecs:      25,
			MaxNewTokens:     200,
			Temperature:      0.7,
			TopP:             0.9,
			SubmitsPerSecond: 2,
		},

		Storage: StorageConfig{
			SlotPath: "",
		},

		UI: UIConfig{
			Theme:          "dark",
			RenderMarkdown: true,
			CompactMode:    false,
			ShowTimestamps: true,
			SidebarWidth:   32,
		},

		Voice: VoiceConfig{
			Enabled: false,
		},

		Export: ExportConfig{
			Dir:           "",
			DefaultFormat: "markdown",
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the syntx configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".syntx"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config file(s).
// Tries TOML first, then JSON, and falls back to defaults.
// Environment overrides are applied last.
func Load() (*Config, error) {
	cfg := Default()
	var loadErr error

	// Try TOML first
	tomlPath, err := ConfigPathTOML()
	if err == nil {
		if _, statErr := os.Stat(tomlPath); statErr == nil {
			if err := LoadTOML(cfg, tomlPath); err != nil {
				loadErr = fmt.Errorf("failed to load TOML config: %w", err)
			} else {
				return finalizeOrDefault(cfg)
			}
		}
	}

	// Try JSON as fallback
	jsonPath, err := ConfigPathJSON()
	if err == nil {
		if _, statErr := os.Stat(jsonPath); statErr == nil {
			if err := LoadJSON(cfg, jsonPath); err != nil {
				loadErr = fmt.Errorf("failed to load JSON config: %w", err)
			} else {
				return finalizeOrDefault(cfg)
			}
		}
	}

	cfg, finErr := finalizeOrDefault(cfg)
	if finErr != nil {
		return cfg, finErr
	}

	// Return defaults (with any load error for informational purposes)
	return cfg, loadErr
}

// finalizeOrDefault finalizes cfg but never returns nil: when the loaded
// file fails validation the defaults come back alongside the error, so
// startup degrades to a usable session instead of crashing.
func finalizeOrDefault(cfg *Config) (*Config, error) {
	out, err := finalize(cfg)
	if err == nil {
		return out, nil
	}
	fallback, ferr := finalize(Default())
	if ferr != nil {
		fallback = Default()
	}
	return fallback, err
}

// LoadFromPath loads configuration from a specific file path with full
// validation.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if strings.HasSuffix(path, ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
	} else {
		// Default to TOML
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}

	return finalize(cfg)
}

// finalize applies env overrides, defaults and validation in order.
func finalize(cfg *Config) (*Config, error) {
	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML loads configuration from a TOML file.
func LoadTOML(cfg *Config, path string) error {
	_, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

// LoadJSON loads configuration from a JSON file.
func LoadJSON(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML saves the configuration to a TOML file.
func SaveTOML(cfg *Config, path string) error {
	if err := EnsureConfigDir(); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	fmt.Fprintln(file, "# syntx-tui configuration file")
	fmt.Fprintln(file, "# Generated by syntx-tui - edit with care")
	fmt.Fprintln(file, "")

	encoder := toml.NewEncoder(file)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}

// SaveJSON saves the configuration to a JSON file.
// RELIABILITY: Atomic write with fsync prevents data loss on crash
func SaveJSON(cfg *Config, path string) error {
	if err := EnsureConfigDir(); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := util.AtomicWriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	// Validate endpoint URL
	if c.API.Endpoint != "" {
		if _, err := url.Parse(c.API.Endpoint); err != nil {
			errs = append(errs, ValidationError{
				Field:   "api.endpoint",
				Message: fmt.Sprintf("invalid URL: %v", err),
			})
		}
	}

	if c.API.TimeoutSecs < 1 || c.API.TimeoutSecs > 300 {
		errs = append(errs, ValidationError{
			Field:   "api.timeout_secs",
			Message: fmt.Sprintf("must be 1-300 seconds, got %d", c.API.TimeoutSecs),
		})
	}

	if c.API.MaxNewTokens < 1 || c.API.MaxNewTokens > 8192 {
		errs = append(errs, ValidationError{
			Field:   "api.max_new_tokens",
			Message: fmt.Sprintf("must be 1-8192, got %d", c.API.MaxNewTokens),
		})
	}

	if c.API.Temperature < 0 || c.API.Temperature > 2 {
		errs = append(errs, ValidationError{
			Field:   "api.temperature",
			Message: "must be between 0.0 and 2.0",
		})
	}

	if c.API.TopP < 0 || c.API.TopP > 1 {
		errs = append(errs, ValidationError{
			Field:   "api.top_p",
			Message: "must be between 0.0 and 1.0",
		})
	}

	// Validate UI theme
	validThemes := map[string]bool{"dark": true, "light": true, "auto": true}
	if !validThemes[strings.ToLower(c.UI.Theme)] {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: dark, light, auto", c.UI.Theme),
		})
	}

	if c.UI.SidebarWidth < 16 || c.UI.SidebarWidth > 80 {
		errs = append(errs, ValidationError{
			Field:   "ui.sidebar_width",
			Message: fmt.Sprintf("must be 16-80 columns, got %d", c.UI.SidebarWidth),
		})
	}

	// Validate export format
	validFormats := map[string]bool{"markdown": true, "json": true, "txt": true, "csv": true}
	if !validFormats[strings.ToLower(c.Export.DefaultFormat)] {
		errs = append(errs, ValidationError{
			Field:   "export.default_format",
			Message: fmt.Sprintf("invalid format '%s', must be one of: markdown, json, txt, csv", c.Export.DefaultFormat),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SetDefaults sets default values for any missing or zero-value
// configuration fields.
func (c *Config) SetDefaults() {
	defaults := Default()

	if c.Version == "" {
		c.Version = defaults.Version
	}

	if c.API.Endpoint == "" {
		c.API.Endpoint = defaults.API.Endpoint
	}
	if c.API.TimeoutSecs == 0 {
		c.API.TimeoutSecs = defaults.API.TimeoutSecs
	}
	if c.API.MaxNewTokens == 0 {
		c.API.MaxNewTokens = defaults.API.MaxNewTokens
	}
	if c.API.Temperature == 0 {
		c.API.Temperature = defaults.API.Temperature
	}
	if c.API.TopP == 0 {
		c.API.TopP = defaults.API.TopP
	}
	if c.API.SubmitsPerSecond == 0 {
		c.API.SubmitsPerSecond = defaults.API.SubmitsPerSecond
	}

	if c.UI.Theme == "" {
		c.UI.Theme = defaults.UI.Theme
	}
	if c.UI.SidebarWidth == 0 {
		c.UI.SidebarWidth = defaults.UI.SidebarWidth
	}

	if c.Export.DefaultFormat == "" {
		c.Export.DefaultFormat = defaults.Export.DefaultFormat
	}
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - SYNTX_ENDPOINT: overrides api.endpoint
//   - SYNTX_TIMEOUT_SECS: overrides api.timeout_secs
//   - SYNTX_MAX_NEW_TOKENS: overrides api.max_new_tokens
//   - SYNTX_SLOT_PATH: overrides storage.slot_path
//   - SYNTX_THEME: overrides ui.theme
//   - SYNTX_VOICE: set to "1" or "true" to enable voice input
//   - SYNTX_EXPORT_DIR: overrides export.dir
func (c *Config) ApplyEnvOverrides() {
	if endpoint := os.Getenv("SYNTX_ENDPOINT"); endpoint != "" {
		c.API.Endpoint = endpoint
	}

	if timeout := os.Getenv("SYNTX_TIMEOUT_SECS"); timeout != "" {
		if secs, err := strconv.Atoi(timeout); err == nil {
			c.API.TimeoutSecs = secs
		}
	}

	if tokens := os.Getenv("SYNTX_MAX_NEW_TOKENS"); tokens != "" {
		if n, err := strconv.Atoi(tokens); err == nil {
			c.API.MaxNewTokens = n
		}
	}

	if slotPath := os.Getenv("SYNTX_SLOT_PATH"); slotPath != "" {
		c.Storage.SlotPath = slotPath
	}

	if theme := os.Getenv("SYNTX_THEME"); theme != "" {
		c.UI.Theme = theme
	}

	if voice := os.Getenv("SYNTX_VOICE"); voice != "" {
		c.Voice.Enabled = voice == "1" || strings.ToLower(voice) == "true"
	}

	if exportDir := os.Getenv("SYNTX_EXPORT_DIR"); exportDir != "" {
		c.Export.Dir = exportDir
	}
}

// =============================================================================
// HELPERS
// =============================================================================

// Clone creates a copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// String returns a string representation of the config for debugging.
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c, "", "  ")
	return string(data)
}
