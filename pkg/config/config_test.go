// Copyright (C) 2025 Counsel AI (dev@counselai.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	t.Setenv(EnvConfigDir, "/tmp/counsel-test")

	cfg := DefaultConfig()

	assert.Equal(t, "http://localhost:9301", cfg.Services.ChatURL)
	assert.Equal(t, "http://localhost:9302", cfg.Services.DraftURL)
	assert.Equal(t, "http://localhost:9303", cfg.Services.AnalysisURL)
	assert.Equal(t, "/tmp/counsel-test/session", cfg.Paths.SessionFile)
	assert.Equal(t, "/tmp/counsel-test/logs", cfg.Paths.LogDir)
}

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvConfigDir, dir)

	yamlBody := `
services:
  chat_url: http://chat.internal:8080
paths:
  log_dir: /var/log/counsel
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yamlBody), 0o600))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://chat.internal:8080", cfg.Services.ChatURL)
	// Fields absent from the file keep their defaults.
	assert.Equal(t, "http://localhost:9302", cfg.Services.DraftURL)
	assert.Equal(t, "/var/log/counsel", cfg.Paths.LogDir)
	assert.Equal(t, filepath.Join(dir, "session"), cfg.Paths.SessionFile)
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvConfigDir, dir)

	yamlBody := "services:\n  chat_url: http://from-yaml:1\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yamlBody), 0o600))

	t.Setenv(EnvChatURL, "http://from-env:2")
	t.Setenv(EnvAnalysisURL, "http://analysis-env:3")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://from-env:2", cfg.Services.ChatURL)
	assert.Equal(t, "http://analysis-env:3", cfg.Services.AnalysisURL)
	assert.Equal(t, "http://localhost:9302", cfg.Services.DraftURL)
}

func TestLoad_MalformedYAMLFails(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvConfigDir, dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("services: ["), 0o600))

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config.yaml")
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv(EnvConfigDir, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9301", cfg.Services.ChatURL)
}
