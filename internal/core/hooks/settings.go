// Package hooks registers the cpl session-end hook in Claude Code's
// settings.json without disturbing the rest of the file.
package hooks

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// SessionEndEvent is the Claude Code hook event cpl listens to
	SessionEndEvent = "SessionEnd"

	// SessionEndCommand is the command registered for SessionEndEvent
	SessionEndCommand = "cpl hook session-end"
)

// SettingsPath returns ~/.claude/settings.json
func SettingsPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to find home directory: %w", err)
	}
	return filepath.Join(home, ".claude", "settings.json"), nil
}

// Installer edits one settings file
type Installer struct {
	path string
}

// NewInstaller creates an installer for the settings file at path
func NewInstaller(path string) *Installer {
	return &Installer{path: path}
}

// Path is the settings file being edited
func (i *Installer) Path() string {
	return i.path
}

// Installed reports whether the session-end command is registered
func (i *Installer) Installed() (bool, error) {
	settings, err := i.read()
	if err != nil {
		return false, err
	}
	for _, group := range sessionEndGroups(settings) {
		for _, h := range groupHooks(group) {
			if isOurs(h) {
				return true, nil
			}
		}
	}
	return false, nil
}

// Install adds the session-end command. It reports false when the command
// was already present, in which case the file is not rewritten.
func (i *Installer) Install() (bool, error) {
	settings, err := i.read()
	if err != nil {
		return false, err
	}
	for _, group := range sessionEndGroups(settings) {
		for _, h := range groupHooks(group) {
			if isOurs(h) {
				return false, nil
			}
		}
	}

	hooks, ok := settings["hooks"].(map[string]any)
	if !ok {
		if _, exists := settings["hooks"]; exists {
			return false, fmt.Errorf("%s: \"hooks\" is not an object", i.path)
		}
		hooks = map[string]any{}
		settings["hooks"] = hooks
	}

	groups := sessionEndGroups(settings)
	if _, exists := hooks[SessionEndEvent]; exists && groups == nil {
		return false, fmt.Errorf("%s: hooks.%s is not a list", i.path, SessionEndEvent)
	}
	hooks[SessionEndEvent] = append(groups, map[string]any{
		"hooks": []any{
			map[string]any{"type": "command", "command": SessionEndCommand},
		},
	})

	return true, i.write(settings)
}

// Uninstall removes every cpl session-end command and prunes the groups and
// keys left empty. It reports whether anything was removed.
func (i *Installer) Uninstall() (bool, error) {
	settings, err := i.read()
	if err != nil {
		return false, err
	}

	removed := false
	var keptGroups []any
	for _, group := range sessionEndGroups(settings) {
		entries := groupHooks(group)
		kept := make([]any, 0, len(entries))
		for _, h := range entries {
			if isOurs(h) {
				removed = true
				continue
			}
			kept = append(kept, h)
		}
		if len(kept) == 0 && len(entries) > 0 {
			continue
		}
		if m, ok := group.(map[string]any); ok && len(entries) > 0 {
			m["hooks"] = kept
		}
		keptGroups = append(keptGroups, group)
	}
	if !removed {
		return false, nil
	}

	hooks := settings["hooks"].(map[string]any)
	if len(keptGroups) == 0 {
		delete(hooks, SessionEndEvent)
	} else {
		hooks[SessionEndEvent] = keptGroups
	}
	if len(hooks) == 0 {
		delete(settings, "hooks")
	}

	return true, i.write(settings)
}

// read loads the settings object. A missing file is an empty object; a file
// that is not a JSON object is an error so it is never overwritten.
func (i *Installer) read() (map[string]any, error) {
	data, err := os.ReadFile(i.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]any{}, nil
		}
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return map[string]any{}, nil
	}

	var settings map[string]any
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", i.path, err)
	}
	if settings == nil {
		return nil, fmt.Errorf("%s: settings must be a JSON object", i.path)
	}
	return settings, nil
}

func (i *Installer) write(settings map[string]any) error {
	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(i.path), 0755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}
	if err := os.WriteFile(i.path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	return nil
}

// sessionEndGroups returns hooks.SessionEnd when it is a list
func sessionEndGroups(settings map[string]any) []any {
	hooks, ok := settings["hooks"].(map[string]any)
	if !ok {
		return nil
	}
	groups, _ := hooks[SessionEndEvent].([]any)
	return groups
}

func groupHooks(group any) []any {
	m, ok := group.(map[string]any)
	if !ok {
		return nil
	}
	entries, _ := m["hooks"].([]any)
	return entries
}

func isOurs(h any) bool {
	m, ok := h.(map[string]any)
	if !ok {
		return false
	}
	cmd, _ := m["command"].(string)
	return strings.TrimSpace(cmd) == SessionEndCommand
}
