package ccsessions

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// SessionInfo describes a session file on disk
type SessionInfo struct {
	ID      string    // file name without .jsonl
	Project string    // encoded project directory name, e.g. -Users-neil-app
	Path    string    // absolute path to the JSONL file
	ModTime time.Time // last write, used as the session timestamp
}

// ProjectsDir returns Claude Code's session root (~/.claude/projects)
func ProjectsDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join("~", ".claude", "projects")
	}
	return filepath.Join(home, ".claude", "projects")
}

// EncodeProjectPath converts /home/user/project to -home-user-project.
// Already-encoded values are returned unchanged.
func EncodeProjectPath(projectPath string) string {
	if strings.HasPrefix(projectPath, "-") {
		return projectPath
	}
	return strings.ReplaceAll(projectPath, string(filepath.Separator), "-")
}

// DecodeProjectPath reverses EncodeProjectPath. The mapping is lossy for
// paths that contained dashes; it is only used for display.
func DecodeProjectPath(encoded string) string {
	if !strings.HasPrefix(encoded, "-") {
		return encoded
	}
	return strings.ReplaceAll(encoded, "-", "/")
}

// SessionInfoFromPath derives the session ID and project from a file path
func SessionInfoFromPath(path string) SessionInfo {
	info := SessionInfo{
		ID:      strings.TrimSuffix(filepath.Base(path), ".jsonl"),
		Project: filepath.Base(filepath.Dir(path)),
		Path:    path,
	}
	if st, err := os.Stat(path); err == nil {
		info.ModTime = st.ModTime()
	}
	return info
}

// SessionPath returns where a session file lives for a given project
func SessionPath(projectsDir, sessionID, projectPath string) string {
	return filepath.Join(projectsDir, EncodeProjectPath(projectPath), sessionID+".jsonl")
}

// ListSessions finds session files under projectsDir, newest first.
// If project is non-empty only that project's directory is scanned.
// A missing projects directory yields an empty list.
func ListSessions(projectsDir, project string) ([]SessionInfo, error) {
	var projectDirs []string
	if project != "" {
		projectDirs = []string{EncodeProjectPath(project)}
	} else {
		dirEntries, err := os.ReadDir(projectsDir)
		if err != nil {
			if os.IsNotExist(err) {
				return []SessionInfo{}, nil
			}
			return nil, err
		}
		for _, de := range dirEntries {
			if de.IsDir() {
				projectDirs = append(projectDirs, de.Name())
			}
		}
	}

	sessions := make([]SessionInfo, 0)
	for _, dir := range projectDirs {
		full := filepath.Join(projectsDir, dir)
		files, err := os.ReadDir(full)
		if err != nil {
			// project directory vanished or is unreadable; skip it
			continue
		}
		for _, f := range files {
			if f.IsDir() || filepath.Ext(f.Name()) != ".jsonl" {
				continue
			}
			fi, err := f.Info()
			if err != nil {
				continue
			}
			sessions = append(sessions, SessionInfo{
				ID:      strings.TrimSuffix(f.Name(), ".jsonl"),
				Project: dir,
				Path:    filepath.Join(full, f.Name()),
				ModTime: fi.ModTime(),
			})
		}
	}

	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].ModTime.After(sessions[j].ModTime)
	})

	return sessions, nil
}

// FilterSince keeps sessions modified at or after since
func FilterSince(sessions []SessionInfo, since time.Time) []SessionInfo {
	out := make([]SessionInfo, 0, len(sessions))
	for _, s := range sessions {
		if !s.ModTime.Before(since) {
			out = append(out, s)
		}
	}
	return out
}

// FilterByProject keeps sessions belonging to projectPath (raw or encoded)
func FilterByProject(sessions []SessionInfo, projectPath string) []SessionInfo {
	encoded := EncodeProjectPath(projectPath)
	out := make([]SessionInfo, 0, len(sessions))
	for _, s := range sessions {
		if s.Project == encoded {
			out = append(out, s)
		}
	}
	return out
}
