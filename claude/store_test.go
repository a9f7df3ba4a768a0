package claude

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeRecord(t *testing.T, dir, id, project, state string, ts int64) {
	t.Helper()
	body := fmt.Sprintf(`{"project_path":%q,"session_id":%q,"state":%q,"timestamp":%d}`,
		project, id, state, ts)
	if err := os.WriteFile(filepath.Join(dir, id+".json"), []byte(body), 0o644); err != nil {
		t.Fatalf("write record: %v", err)
	}
}

func TestStoreList_MissingDirIsEmpty(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "absent"), nil)
	sessions, err := s.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(sessions) != 0 {
		t.Fatalf("got %d sessions from missing dir", len(sessions))
	}
}

func TestStoreList_SkipsCorruptAndSortsNewestFirst(t *testing.T) {
	dir := t.TempDir()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC).Unix()

	writeRecord(t, dir, "old", "/repo/a", "working", base-100)
	writeRecord(t, dir, "new", "/repo/b", "idle", base)
	if err := os.WriteFile(filepath.Join(dir, "bad.json"), []byte("{nope"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	// Missing project path is skipped, not fatal.
	if err := os.WriteFile(filepath.Join(dir, "empty.json"),
		[]byte(`{"session_id":"empty","state":"idle","timestamp":1}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	// Non-json files are ignored outright.
	if err := os.WriteFile(filepath.Join(dir, "README.txt"), []byte("hi"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	sessions, err := NewStore(dir, nil).List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("got %d sessions, want 2", len(sessions))
	}
	if sessions[0].ID != "new" || sessions[1].ID != "old" {
		t.Fatalf("order = [%s %s], want newest first", sessions[0].ID, sessions[1].ID)
	}
	if sessions[0].State != StateIdle {
		t.Fatalf("state = %q, want idle", sessions[0].State)
	}
	if sessions[0].ProjectPath != "/repo/b" {
		t.Fatalf("project = %q", sessions[0].ProjectPath)
	}
}

func TestStoreList_RecordIDOverridesFilename(t *testing.T) {
	dir := t.TempDir()
	body := `{"project_path":"/repo","session_id":"canonical","state":"working","timestamp":10}`
	if err := os.WriteFile(filepath.Join(dir, "filename.json"), []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	sessions, err := NewStore(dir, nil).List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(sessions) != 1 || sessions[0].ID != "canonical" {
		t.Fatalf("sessions = %+v, want single id canonical", sessions)
	}
}

func TestStoreDelete(t *testing.T) {
	dir := t.TempDir()
	writeRecord(t, dir, "gone", "/repo", "idle", 1)
	s := NewStore(dir, nil)

	if err := s.Delete("gone"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "gone.json")); !os.IsNotExist(err) {
		t.Fatalf("record still present after delete")
	}

	// Absent records delete cleanly.
	if err := s.Delete("gone"); err != nil {
		t.Fatalf("delete absent: %v", err)
	}

	if err := s.Delete("../escape"); err == nil {
		t.Fatalf("path-like session id should be rejected")
	}
	if err := s.Delete(""); err == nil {
		t.Fatalf("empty session id should be rejected")
	}
}
