// Copyright (C) 2025 Counsel AI (dev@counselai.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package config loads CounselDesk client configuration.
//
// Configuration sources, later sources override earlier ones:
//
//  1. Built-in defaults
//  2. YAML config file (~/.counsel/config.yaml)
//  3. A local .env file, when present
//  4. Process environment variables
//
// Only the three backend base URLs and local paths are configurable; all
// orchestration behavior (timeouts, reveal cadence, session rotation) is
// fixed.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variable names recognized by Load.
const (
	EnvChatURL     = "COUNSEL_CHAT_URL"
	EnvDraftURL    = "COUNSEL_DRAFT_URL"
	EnvAnalysisURL = "COUNSEL_ANALYSIS_URL"
	EnvConfigDir   = "COUNSEL_CONFIG_DIR"
)

// Config holds all client configuration.
type Config struct {
	// Services holds the base URLs of the three backend services.
	Services ServicesConfig `yaml:"services"`

	// Paths holds local filesystem locations for persisted client state.
	Paths PathsConfig `yaml:"paths"`
}

// ServicesConfig points at the three backend services.
type ServicesConfig struct {
	ChatURL     string `yaml:"chat_url"`     // e.g. http://localhost:9301
	DraftURL    string `yaml:"draft_url"`    // e.g. http://localhost:9302
	AnalysisURL string `yaml:"analysis_url"` // e.g. http://localhost:9303
}

// PathsConfig holds local state locations.
type PathsConfig struct {
	// SessionFile stores the active backend session token. This is the
	// only client state persisted across runs; conversations and messages
	// are always re-fetched from the backend.
	SessionFile string `yaml:"session_file"`

	// LogDir receives JSON log files when file logging is enabled.
	LogDir string `yaml:"log_dir"`
}

// DefaultConfig returns the built-in defaults.
//
// The default config dir is ~/.counsel, overridable via COUNSEL_CONFIG_DIR.
func DefaultConfig() Config {
	dir := configDir()
	return Config{
		Services: ServicesConfig{
			ChatURL:     "http://localhost:9301",
			DraftURL:    "http://localhost:9302",
			AnalysisURL: "http://localhost:9303",
		},
		Paths: PathsConfig{
			SessionFile: filepath.Join(dir, "session"),
			LogDir:      filepath.Join(dir, "logs"),
		},
	}
}

// Load resolves the effective configuration.
//
// # Description
//
// Starts from DefaultConfig, merges the YAML config file if one exists,
// loads a local .env file if present (missing .env is not an error), then
// applies environment variable overrides.
//
// # Outputs
//
//   - Config: Effective configuration.
//   - error: Non-nil only when an existing config file cannot be parsed.
func Load() (Config, error) {
	cfg := DefaultConfig()

	path := filepath.Join(configDir(), "config.yaml")
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	// .env is optional; ignore a missing file but keep other errors quiet
	// too - the process environment is authoritative either way.
	_ = godotenv.Load()

	if v := os.Getenv(EnvChatURL); v != "" {
		cfg.Services.ChatURL = v
	}
	if v := os.Getenv(EnvDraftURL); v != "" {
		cfg.Services.DraftURL = v
	}
	if v := os.Getenv(EnvAnalysisURL); v != "" {
		cfg.Services.AnalysisURL = v
	}

	return cfg, nil
}

// configDir returns the CounselDesk config directory.
func configDir() string {
	if dir := os.Getenv(EnvConfigDir); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".counsel"
	}
	return filepath.Join(home, ".counsel")
}
