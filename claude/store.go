package claude

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// Store reads the status-record directory: one <session-id>.json per active
// session, written by the installed hooks.
type Store struct {
	dir string
	log *log.Logger
}

func NewStore(dir string, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.Default()
	}
	return &Store{dir: dir, log: logger}
}

func (s *Store) Dir() string { return s.dir }

// EnsureDir creates the status directory if missing.
func (s *Store) EnsureDir() error {
	return os.MkdirAll(s.dir, 0o755)
}

// statusRecord is the on-disk shape the hooks write.
type statusRecord struct {
	ProjectPath   string `json:"project_path"`
	SessionID     string `json:"session_id"`
	State         string `json:"state"`
	WaitingReason string `json:"waiting_reason,omitempty"`
	LastTool      string `json:"last_tool,omitempty"`
	Timestamp     int64  `json:"timestamp"`
}

// List reads every record, newest first. Corrupt or empty-project records
// are skipped with a log line, never fatal. A missing directory is an empty
// listing, not an error.
func (s *Store) List() ([]Session, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	sessions := make([]Session, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		path := filepath.Join(s.dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			s.log.Warn("unreadable status record", "path", path, "err", err)
			continue
		}
		var rec statusRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			s.log.Warn("corrupt status record", "path", path, "err", err)
			continue
		}
		if strings.TrimSpace(rec.ProjectPath) == "" {
			s.log.Warn("status record without project path", "path", path)
			continue
		}

		session := Session{
			ID:            strings.TrimSuffix(entry.Name(), ".json"),
			ProjectPath:   rec.ProjectPath,
			State:         ParseState(rec.State),
			WaitingReason: rec.WaitingReason,
			LastTool:      rec.LastTool,
			Raw:           data,
		}
		if rec.SessionID != "" {
			session.ID = rec.SessionID
		}
		if rec.Timestamp > 0 {
			session.UpdatedAt = timeFromUnix(rec.Timestamp)
		}
		sessions = append(sessions, session)
	}

	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].UpdatedAt.After(sessions[j].UpdatedAt)
	})
	return sessions, nil
}

func timeFromUnix(ts int64) time.Time {
	return time.Unix(ts, 0)
}

// Delete removes one session's record. Deleting an absent record is a no-op.
func (s *Store) Delete(sessionID string) error {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" || strings.ContainsAny(sessionID, "/\\") {
		return errors.New("invalid session id")
	}
	err := os.Remove(filepath.Join(s.dir, sessionID+".json"))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
