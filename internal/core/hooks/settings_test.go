package hooks

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readJSON(t *testing.T, path string) map[string]any {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	return m
}

func TestInstall_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".claude", "settings.json")
	inst := NewInstaller(path)

	installed, err := inst.Installed()
	require.NoError(t, err)
	assert.False(t, installed)

	changed, err := inst.Install()
	require.NoError(t, err)
	assert.True(t, changed)

	installed, err = inst.Installed()
	require.NoError(t, err)
	assert.True(t, installed)

	settings := readJSON(t, path)
	groups := settings["hooks"].(map[string]any)[SessionEndEvent].([]any)
	require.Len(t, groups, 1)
	entry := groups[0].(map[string]any)["hooks"].([]any)[0].(map[string]any)
	assert.Equal(t, "command", entry["type"])
	assert.Equal(t, SessionEndCommand, entry["command"])
}

func TestInstall_IdempotentAndPreservesSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	existing := `{
  "model": "opus",
  "permissions": {"allow": ["Bash(go test:*)"]},
  "hooks": {
    "PreToolUse": [{"matcher": "Bash", "hooks": [{"type": "command", "command": "audit"}]}],
    "SessionEnd": [{"hooks": [{"type": "command", "command": "notify-send done"}]}]
  }
}`
	require.NoError(t, os.WriteFile(path, []byte(existing), 0644))
	inst := NewInstaller(path)

	changed, err := inst.Install()
	require.NoError(t, err)
	assert.True(t, changed)

	first, err := os.ReadFile(path)
	require.NoError(t, err)

	changed, err = inst.Install()
	require.NoError(t, err)
	assert.False(t, changed)
	second, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))

	settings := readJSON(t, path)
	assert.Equal(t, "opus", settings["model"])
	assert.Contains(t, settings, "permissions")
	hooks := settings["hooks"].(map[string]any)
	assert.Len(t, hooks["PreToolUse"].([]any), 1)
	assert.Len(t, hooks[SessionEndEvent].([]any), 2)

	removed, err := inst.Uninstall()
	require.NoError(t, err)
	assert.True(t, removed)

	settings = readJSON(t, path)
	hooks = settings["hooks"].(map[string]any)
	groups := hooks[SessionEndEvent].([]any)
	require.Len(t, groups, 1)
	entry := groups[0].(map[string]any)["hooks"].([]any)[0].(map[string]any)
	assert.Equal(t, "notify-send done", entry["command"])
	assert.Contains(t, hooks, "PreToolUse")
	assert.Equal(t, "opus", settings["model"])
}

func TestUninstall_PrunesEmptyKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"theme":"dark"}`), 0644))
	inst := NewInstaller(path)

	_, err := inst.Install()
	require.NoError(t, err)

	removed, err := inst.Uninstall()
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Equal(t, map[string]any{"theme": "dark"}, readJSON(t, path))

	removed, err = inst.Uninstall()
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestUninstall_MissingFileWritesNothing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	removed, err := NewInstaller(path).Uninstall()
	require.NoError(t, err)
	assert.False(t, removed)
	assert.NoFileExists(t, path)
}

func TestInstall_RefusesUnparsableSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0644))

	_, err := NewInstaller(path).Install()
	assert.Error(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{broken", string(data))
}

func TestInstall_RejectsUnexpectedShape(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"hooks":{"SessionEnd":"other"}}`), 0644))

	_, err := NewInstaller(path).Install()
	assert.Error(t, err)
}

func TestSettingsPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	path, err := SettingsPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".claude", "settings.json"), path)
}
