package settings

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"gemini-desktop/pkg/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.NewLogger(logger.WithWriter(os.Stderr))
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	return log
}

func TestOpenMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")

	s, err := Open(path, testLogger(t))
	if err != nil {
		t.Fatalf("Open() on missing file: %v", err)
	}
	if got := s.GetBool(KeyAlwaysOnTop, false); got {
		t.Errorf("GetBool on empty store = true, want default false")
	}
	if got := s.GetInt(KeyZoomLevel, 100); got != 100 {
		t.Errorf("GetInt default = %d, want 100", got)
	}
}

func TestSetGetRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	s, err := Open(path, testLogger(t))
	if err != nil {
		t.Fatalf("Open(): %v", err)
	}

	if err := s.SetBool(KeyAlwaysOnTop, true); err != nil {
		t.Fatalf("SetBool: %v", err)
	}
	if err := s.SetInt(KeyZoomLevel, 110); err != nil {
		t.Fatalf("SetInt: %v", err)
	}
	if err := s.SetString(KeyTheme, "dark"); err != nil {
		t.Fatalf("SetString: %v", err)
	}

	// Reload from disk and verify.
	s2, err := Open(path, testLogger(t))
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if !s2.GetBool(KeyAlwaysOnTop, false) {
		t.Error("alwaysOnTop not persisted")
	}
	if got := s2.GetInt(KeyZoomLevel, 0); got != 110 {
		t.Errorf("zoomLevel = %d, want 110", got)
	}
	if got := s2.GetString(KeyTheme, ""); got != "dark" {
		t.Errorf("theme = %q, want %q", got, "dark")
	}
}

func TestUnknownKeysPreserved(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")

	// A key written by the settings UI that this process knows nothing about.
	seed := `{"theme":"light","customCss":{"body":"font-size: 14px"},"recentPrompts":["a","b"]}`
	if err := os.WriteFile(path, []byte(seed), 0644); err != nil {
		t.Fatalf("seed write: %v", err)
	}

	s, err := Open(path, testLogger(t))
	if err != nil {
		t.Fatalf("Open(): %v", err)
	}
	if err := s.SetBool(KeyAlwaysOnTop, true); err != nil {
		t.Fatalf("SetBool: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("parse back: %v", err)
	}

	for _, key := range []string{"customCss", "recentPrompts", "theme"} {
		if _, ok := doc[key]; !ok {
			t.Errorf("key %q was dropped by an unrelated update", key)
		}
	}
	var css map[string]string
	if err := json.Unmarshal(doc["customCss"], &css); err != nil {
		t.Fatalf("customCss corrupted: %v", err)
	}
	if css["body"] != "font-size: 14px" {
		t.Errorf("customCss content changed: %v", css)
	}
}

func TestTypeMismatchFallsBackToDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte(`{"zoomLevel":"very big"}`), 0644); err != nil {
		t.Fatalf("seed write: %v", err)
	}

	s, err := Open(path, testLogger(t))
	if err != nil {
		t.Fatalf("Open(): %v", err)
	}
	if got := s.GetInt(KeyZoomLevel, 100); got != 100 {
		t.Errorf("GetInt with mismatched type = %d, want default 100", got)
	}
}
