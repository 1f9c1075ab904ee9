// Package settings loads shiptrack configuration for a repository.
//
// Settings are read from .shiptrack/settings.json, then merged with
// .shiptrack/settings.local.json (untracked, per-developer), then with
// environment overrides. Both files accept JSON with comments and trailing
// commas. Missing files are not an error.
package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/tidwall/jsonc"
)

const (
	// Dir is the settings directory at the repository root.
	Dir = ".shiptrack"

	// File is the shared settings file.
	File = "settings.json"

	// LocalFile holds per-developer overrides and should not be committed.
	LocalFile = "settings.local.json"
)

// Environment variables that override file settings.
const (
	EnvLogLevel    = "SHIPTRACK_LOG_LEVEL"
	EnvLogFormat   = "SHIPTRACK_LOG_FORMAT"
	EnvOutput      = "SHIPTRACK_OUTPUT"
	EnvRecentCount = "SHIPTRACK_RECENT_COUNT"
)

// Defaults.
const (
	DefaultLogLevel    = "warn"
	DefaultLogFormat   = "text"
	DefaultOutput      = "text"
	DefaultRecentCount = 50
)

// Settings is the resolved configuration.
type Settings struct {
	LogLevel    string `json:"log_level"`
	LogFormat   string `json:"log_format"`
	Output      string `json:"output"`
	RecentCount int    `json:"recent_count"`
}

// fileSettings mirrors Settings with pointer fields so a later file only
// overrides the keys it actually sets.
type fileSettings struct {
	LogLevel    *string `json:"log_level"`
	LogFormat   *string `json:"log_format"`
	Output      *string `json:"output"`
	RecentCount *int    `json:"recent_count"`
}

// Default returns the settings used when nothing is configured.
func Default() Settings {
	return Settings{
		LogLevel:    DefaultLogLevel,
		LogFormat:   DefaultLogFormat,
		Output:      DefaultOutput,
		RecentCount: DefaultRecentCount,
	}
}

// Load resolves settings for the repository rooted at root. An empty root
// skips the files and applies only defaults and environment overrides.
func Load(root string) (Settings, error) {
	s := Default()

	if root != "" {
		for _, name := range []string{File, LocalFile} {
			path := filepath.Join(root, Dir, name)
			if err := mergeFile(&s, path); err != nil {
				return Settings{}, err
			}
		}
	}

	if err := applyEnv(&s, os.LookupEnv); err != nil {
		return Settings{}, err
	}
	return s, nil
}

func mergeFile(s *Settings, path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // path is built from the repository root and constants
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read settings file %s: %w", path, err)
	}

	var parsed fileSettings
	if err := json.Unmarshal(jsonc.ToJSON(data), &parsed); err != nil {
		return fmt.Errorf("failed to parse settings file %s: %w", path, err)
	}

	if parsed.LogLevel != nil {
		s.LogLevel = *parsed.LogLevel
	}
	if parsed.LogFormat != nil {
		s.LogFormat = *parsed.LogFormat
	}
	if parsed.Output != nil {
		s.Output = *parsed.Output
	}
	if parsed.RecentCount != nil {
		s.RecentCount = *parsed.RecentCount
	}
	return nil
}

func applyEnv(s *Settings, lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		s.LogLevel = v
	}
	if v, ok := lookup(EnvLogFormat); ok && v != "" {
		s.LogFormat = v
	}
	if v, ok := lookup(EnvOutput); ok && v != "" {
		s.Output = v
	}
	if v, ok := lookup(EnvRecentCount); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvRecentCount, v, err)
		}
		s.RecentCount = n
	}
	return nil
}
