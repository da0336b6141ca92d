// Copyright 2024 PatternFS Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"patternfs/internal/artifacts"
)

// EnvConfigDir overrides the configuration directory (used for test isolation).
const EnvConfigDir = "PATTERNFS_CONFIG_DIR"

// Dir returns the config directory path.
// Uses PATTERNFS_CONFIG_DIR env var if set, otherwise defaults to ~/.patternfs.
// This is computed dynamically to support test isolation.
func Dir() string {
	if dir := os.Getenv(EnvConfigDir); dir != "" {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".patternfs")
}

// SettingsPath returns the global settings file path
func SettingsPath() string {
	return filepath.Join(Dir(), "settings.yaml")
}

// EnsureDir creates the config directory if it doesn't exist
func EnsureDir() error {
	return os.MkdirAll(Dir(), 0700)
}

// InitDir creates the config directory and writes the default settings file
// if none exists yet.
func InitDir() error {
	if err := EnsureDir(); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	settingsPath := SettingsPath()
	if _, err := os.Stat(settingsPath); os.IsNotExist(err) {
		if err := os.WriteFile(settingsPath, artifacts.GlobalSettings, 0600); err != nil {
			return fmt.Errorf("failed to create default settings: %w", err)
		}
	}
	return nil
}

// Settings is the content of settings.yaml.
type Settings struct {
	LogLevel string         `yaml:"log_level"` // trace, debug, info, warn, error, off
	Editor   EditorSettings `yaml:"editor"`
	Import   ImportSettings `yaml:"import"`
	Store    StoreSettings  `yaml:"store"`
	NFS      NFSSettings    `yaml:"nfs"`
}

// EditorSettings sizes the text editor grid.
type EditorSettings struct {
	Rows    int `yaml:"rows"`
	Columns int `yaml:"columns"`
}

// ImportSettings controls how directories are turned into trees.
type ImportSettings struct {
	Gitignore       *bool    `yaml:"gitignore"` // default: true (pointer to detect missing)
	Includes        []string `yaml:"includes"`
	Excludes        []string `yaml:"excludes"`
	MaxContentBytes int64    `yaml:"max_content_bytes"`
}

// GitignoreEnabled returns whether gitignore filtering is enabled (defaults to true).
func (s ImportSettings) GitignoreEnabled() bool {
	if s.Gitignore == nil {
		return true
	}
	return *s.Gitignore
}

// StoreSettings locates the snapshot database.
type StoreSettings struct {
	Path        string `yaml:"path"`
	BusyTimeout int    `yaml:"busy_timeout"` // milliseconds
}

// NFSSettings configures the tree export.
type NFSSettings struct {
	Listen string `yaml:"listen"`
}

// Defaults used by ApplyDefaults.
const (
	DefaultEditorRows      = 10
	DefaultEditorColumns   = 80
	DefaultMaxContentBytes = 64 * 1024
	DefaultStoreFile       = "snapshots.db"
	DefaultBusyTimeout     = 30000
	DefaultNFSListen       = "127.0.0.1:0"
)

// ApplyDefaults fills zero-value fields with their defaults.
func (s *Settings) ApplyDefaults() {
	if s.LogLevel == "" {
		s.LogLevel = "off"
	}
	if s.Editor.Rows <= 0 {
		s.Editor.Rows = DefaultEditorRows
	}
	if s.Editor.Columns <= 0 {
		s.Editor.Columns = DefaultEditorColumns
	}
	if s.Import.Gitignore == nil {
		t := true
		s.Import.Gitignore = &t
	}
	if s.Import.MaxContentBytes <= 0 {
		s.Import.MaxContentBytes = DefaultMaxContentBytes
	}
	if s.Store.Path == "" {
		s.Store.Path = DefaultStoreFile
	}
	if s.Store.BusyTimeout <= 0 {
		s.Store.BusyTimeout = DefaultBusyTimeout
	}
	if s.NFS.Listen == "" {
		s.NFS.Listen = DefaultNFSListen
	}
}

// StorePath returns the snapshot database path, resolved against Dir() when
// relative.
func (s *Settings) StorePath() string {
	if filepath.IsAbs(s.Store.Path) {
		return s.Store.Path
	}
	return filepath.Join(Dir(), s.Store.Path)
}

// Default parses the embedded default settings.
func Default() *Settings {
	var settings Settings
	if err := yaml.Unmarshal(artifacts.GlobalSettings, &settings); err != nil {
		panic("failed to parse embedded settings: " + err.Error())
	}
	settings.ApplyDefaults()
	return &settings
}

// Load reads settings.yaml from Dir(). Falls back to the embedded defaults if
// the file doesn't exist.
func Load() (*Settings, error) {
	return LoadFromPath(SettingsPath())
}

// LoadFromPath loads settings from a specific file path. A missing file yields
// the embedded defaults.
func LoadFromPath(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}
	var settings Settings
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	settings.ApplyDefaults()
	return &settings, nil
}

// Save writes settings to settings.yaml in Dir().
func Save(settings *Settings) error {
	if err := EnsureDir(); err != nil {
		return err
	}
	data, err := yaml.Marshal(settings)
	if err != nil {
		return err
	}
	return os.WriteFile(SettingsPath(), data, 0600)
}
