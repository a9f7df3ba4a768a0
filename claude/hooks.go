package claude

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
)

// HooksManager installs, inspects, and removes the hook entries in the agent's
// settings file that write status records into the store directory. Entries
// are recognized by the status directory appearing in their command, so
// install and remove never touch hooks owned by anything else.
type HooksManager struct {
	settingsPath string
	statusDir    string
	log          *log.Logger
}

func NewHooksManager(settingsPath, statusDir string, logger *log.Logger) *HooksManager {
	if logger == nil {
		logger = log.Default()
	}
	return &HooksManager{settingsPath: settingsPath, statusDir: statusDir, log: logger}
}

// HooksConfig summarizes the current installation state.
type HooksConfig struct {
	Configured      bool
	StatusDirExists bool
}

// hookEvent pairs a settings event name with the status record its command
// writes. Stop and SessionEnd remove the record instead.
type hookEvent struct {
	Event   string
	Matcher string
	Command string
}

// hookEvents builds the full set of entries for a status directory. Every
// command reads the hook payload once, pulls the session id with jq, and
// writes (or removes) <dir>/<session-id>.json.
func hookEvents(dir string) []hookEvent {
	record := func(state, extra string) string {
		fields := fmt.Sprintf(`"project_path":.cwd,"session_id":.session_id,"state":%q,"timestamp":(now|floor)`, state)
		if extra != "" {
			fields += "," + extra
		}
		return fmt.Sprintf(
			`input=$(cat); sid=$(printf '%%s' "$input" | jq -r .session_id); [ -n "$sid" ] && printf '%%s' "$input" | jq -c '{%s}' > %s/$sid.json`,
			fields, dir)
	}
	remove := fmt.Sprintf(
		`sid=$(jq -r .session_id); [ -n "$sid" ] && rm -f %s/$sid.json`, dir)

	return []hookEvent{
		{Event: "PreToolUse", Matcher: "*", Command: record("working", `"last_tool":.tool_name`)},
		{Event: "PostToolUse", Matcher: "*", Command: record("working", `"last_tool":.tool_name`)},
		{Event: "PermissionRequest", Command: record("waiting_for_approval", `"waiting_reason":"permission"`)},
		{Event: "Notification", Command: record("waiting_for_input", `"waiting_reason":.message`)},
		{Event: "SessionStart", Command: record("idle", "")},
		{Event: "Stop", Command: record("idle", "")},
		{Event: "SessionEnd", Command: remove},
	}
}

// Check reports whether the settings file carries the status hooks and whether
// the status directory exists. A missing or unreadable settings file simply
// reports unconfigured.
func (m *HooksManager) Check() HooksConfig {
	var cfg HooksConfig
	if info, err := os.Stat(m.statusDir); err == nil && info.IsDir() {
		cfg.StatusDirExists = true
	}
	data, err := os.ReadFile(m.settingsPath)
	if err != nil {
		return cfg
	}
	cfg.Configured = strings.Contains(string(data), m.statusDir)
	return cfg
}

// Apply merges the status hooks into the settings file, creating it when
// absent. Events that already carry an entry for this status directory are
// left untouched, so applying twice is byte-identical. An unparseable
// settings file is an error, never overwritten.
func (m *HooksManager) Apply() error {
	settings, err := m.readSettings()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(m.statusDir, 0o755); err != nil {
		return fmt.Errorf("create status dir: %w", err)
	}

	hooks := asMap(settings["hooks"])
	for _, ev := range hookEvents(m.statusDir) {
		entries := asSlice(hooks[ev.Event])
		if containsMarker(entries, m.statusDir) {
			continue
		}
		entry := map[string]any{
			"hooks": []any{map[string]any{"type": "command", "command": ev.Command}},
		}
		if ev.Matcher != "" {
			entry["matcher"] = ev.Matcher
		}
		hooks[ev.Event] = append(entries, entry)
	}
	settings["hooks"] = hooks

	return m.writeSettings(settings)
}

// Remove strips every hook entry whose command references the status
// directory, leaving all other hooks in place. A missing settings file is a
// no-op.
func (m *HooksManager) Remove() error {
	if _, err := os.Stat(m.settingsPath); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	settings, err := m.readSettings()
	if err != nil {
		return err
	}
	hooks := asMap(settings["hooks"])
	for event, raw := range hooks {
		entries := asSlice(raw)
		kept := make([]any, 0, len(entries))
		for _, entry := range entries {
			if !entryHasMarker(entry, m.statusDir) {
				kept = append(kept, entry)
			}
		}
		hooks[event] = kept
	}
	settings["hooks"] = hooks
	return m.writeSettings(settings)
}

func (m *HooksManager) readSettings() (map[string]any, error) {
	data, err := os.ReadFile(m.settingsPath)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]any{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}
	var settings map[string]any
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("settings file %s is not valid JSON: %w", m.settingsPath, err)
	}
	if settings == nil {
		settings = map[string]any{}
	}
	return settings, nil
}

func (m *HooksManager) writeSettings(settings map[string]any) error {
	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if err := os.MkdirAll(filepath.Dir(m.settingsPath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(m.settingsPath, data, 0o644)
}

func asMap(v any) map[string]any {
	if m, ok := v.(map[string]any); ok {
		return m
	}
	return map[string]any{}
}

func asSlice(v any) []any {
	if s, ok := v.([]any); ok {
		return s
	}
	return nil
}

func containsMarker(entries []any, marker string) bool {
	for _, entry := range entries {
		if entryHasMarker(entry, marker) {
			return true
		}
	}
	return false
}

// entryHasMarker reports whether any command inside the entry references the
// status directory.
func entryHasMarker(entry any, marker string) bool {
	em, ok := entry.(map[string]any)
	if !ok {
		return false
	}
	for _, h := range asSlice(em["hooks"]) {
		hm, ok := h.(map[string]any)
		if !ok {
			continue
		}
		if cmd, ok := hm["command"].(string); ok && strings.Contains(cmd, marker) {
			return true
		}
	}
	return false
}
