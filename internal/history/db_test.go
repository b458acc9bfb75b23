package history

import (
	"os"
	"path/filepath"
	"testing"

	"gemini-desktop/pkg/logger"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	log, err := logger.NewLogger(logger.WithWriter(os.Stderr))
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	db, err := Open(filepath.Join(t.TempDir(), "exports.db"), log)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRecordAndRecent(t *testing.T) {
	db := newTestDB(t)

	paths := []string{"/tmp/a.pdf", "/tmp/b.pdf", "/tmp/c.pdf"}
	for i, p := range paths {
		if err := db.Record(p, i+1); err != nil {
			t.Fatalf("Record(%s): %v", p, err)
		}
	}

	got, err := db.Recent(2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Recent(2) returned %d entries", len(got))
	}
	// Newest first.
	if got[0].Path != "/tmp/c.pdf" || got[0].Pages != 3 {
		t.Errorf("first entry = %+v, want c.pdf with 3 pages", got[0])
	}
	if got[1].Path != "/tmp/b.pdf" {
		t.Errorf("second entry = %+v, want b.pdf", got[1])
	}
}

func TestRecentOnEmptyDB(t *testing.T) {
	db := newTestDB(t)

	got, err := db.Recent(10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Recent on empty db returned %d entries", len(got))
	}
}
