// Package settings persists user preferences to a flat JSON file.
//
// The file is shared with the settings UI, which may write keys this
// process never reads. The store therefore keeps every key it does not
// understand verbatim: documents are loaded into raw JSON values and only
// the key being updated is replaced on write.
package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gemini-desktop/pkg/logger"
)

// Well-known settings keys.
const (
	KeyTheme       = "theme"
	KeyAlwaysOnTop = "alwaysOnTop"
	KeyZoomLevel   = "zoomLevel"
)

// Store is a file-backed key-value store. All mutating calls persist
// immediately; writes are atomic (temp file + rename).
type Store struct {
	mu     sync.Mutex
	path   string
	values map[string]json.RawMessage
	log    *logger.Logger
}

// Open loads the settings file at path, creating an empty store if the
// file does not exist yet.
func Open(path string, log *logger.Logger) (*Store, error) {
	s := &Store{
		path:   path,
		values: make(map[string]json.RawMessage),
		log:    log,
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		log.Debug("Settings file not found, starting empty", "path", path)
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}

	if err := json.Unmarshal(data, &s.values); err != nil {
		return nil, fmt.Errorf("failed to parse settings file: %w", err)
	}

	log.Debug("Settings loaded", "path", path, "keys", len(s.values))
	return s, nil
}

// DefaultPath returns the settings file location under the user config dir.
func DefaultPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(configDir, "gemini-desktop", "settings.json"), nil
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// GetBool returns the boolean stored under key, or def when the key is
// missing or not a boolean.
func (s *Store) GetBool(key string, def bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	var v bool
	if raw, ok := s.values[key]; ok {
		if err := json.Unmarshal(raw, &v); err == nil {
			return v
		}
	}
	return def
}

// GetString returns the string stored under key, or def.
func (s *Store) GetString(key string, def string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var v string
	if raw, ok := s.values[key]; ok {
		if err := json.Unmarshal(raw, &v); err == nil {
			return v
		}
	}
	return def
}

// GetInt returns the integer stored under key, or def.
func (s *Store) GetInt(key string, def int) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	var v int
	if raw, ok := s.values[key]; ok {
		if err := json.Unmarshal(raw, &v); err == nil {
			return v
		}
	}
	return def
}

// Has reports whether key is present in the file.
func (s *Store) Has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.values[key]
	return ok
}

// SetBool stores a boolean under key and persists the file.
func (s *Store) SetBool(key string, v bool) error {
	return s.set(key, v)
}

// SetString stores a string under key and persists the file.
func (s *Store) SetString(key string, v string) error {
	return s.set(key, v)
}

// SetInt stores an integer under key and persists the file.
func (s *Store) SetInt(key string, v int) error {
	return s.set(key, v)
}

func (s *Store) set(key string, v interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode setting %q: %w", key, err)
	}
	s.values[key] = raw

	if err := s.save(); err != nil {
		s.log.Error("Failed to persist settings", err, "key", key)
		return err
	}
	return nil
}

// save writes the full document atomically. Caller holds s.mu.
func (s *Store) save() error {
	data, err := json.MarshalIndent(s.values, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace settings file: %w", err)
	}
	return nil
}
