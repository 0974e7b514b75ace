package db

import (
	"database/sql"
	"fmt"
	"time"
)

// Analysis statuses
const (
	StatusAnalyzed = "analyzed"
	StatusSkipped  = "skipped"
	StatusFailed   = "failed"
)

// AnalyzedSession records the outcome of analyzing one session file
type AnalyzedSession struct {
	SessionID       string
	Project         string
	FilePath        string
	FileHash        string // SHA256 for change detection
	FileSize        int64
	EntryCount      int
	PatternsFound   int
	PatternsCreated int
	Status          string
	ErrorMessage    string
	Provider        string
	AnalyzedAt      time.Time
}

// GetAnalyzedSession returns the stored record, or nil when the session was
// never analyzed
func (db *DB) GetAnalyzedSession(sessionID string) (*AnalyzedSession, error) {
	var a AnalyzedSession
	var fileSize sql.NullInt64
	var errMsg, provider, analyzedAt sql.NullString
	err := db.conn.QueryRow(`
		SELECT session_id, project, file_path, file_hash, file_size, entry_count,
			patterns_found, patterns_created, status, error_message, provider, analyzed_at
		FROM analyzed_sessions WHERE session_id = ?
	`, sessionID).Scan(&a.SessionID, &a.Project, &a.FilePath, &a.FileHash, &fileSize, &a.EntryCount,
		&a.PatternsFound, &a.PatternsCreated, &a.Status, &errMsg, &provider, &analyzedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load analyzed session: %w", err)
	}
	a.FileSize = fileSize.Int64
	a.ErrorMessage = errMsg.String
	a.Provider = provider.String
	a.AnalyzedAt = parseTime(analyzedAt)
	return &a, nil
}

// IsAnalyzed reports whether sessionID was successfully analyzed at exactly
// this content hash
func (db *DB) IsAnalyzed(sessionID, fileHash string) (bool, error) {
	a, err := db.GetAnalyzedSession(sessionID)
	if err != nil || a == nil {
		return false, err
	}
	return a.FileHash == fileHash && a.Status != StatusFailed, nil
}

// RecordAnalysis inserts or replaces the record for a session
func (db *DB) RecordAnalysis(a AnalyzedSession) error {
	if a.AnalyzedAt.IsZero() {
		a.AnalyzedAt = db.now()
	}
	_, err := db.conn.Exec(`
		INSERT INTO analyzed_sessions
		(session_id, project, file_path, file_hash, file_size, entry_count,
		 patterns_found, patterns_created, status, error_message, provider, analyzed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET
			project = excluded.project,
			file_path = excluded.file_path,
			file_hash = excluded.file_hash,
			file_size = excluded.file_size,
			entry_count = excluded.entry_count,
			patterns_found = excluded.patterns_found,
			patterns_created = excluded.patterns_created,
			status = excluded.status,
			error_message = excluded.error_message,
			provider = excluded.provider,
			analyzed_at = excluded.analyzed_at
	`, a.SessionID, a.Project, a.FilePath, a.FileHash, a.FileSize, a.EntryCount,
		a.PatternsFound, a.PatternsCreated, a.Status, a.ErrorMessage, a.Provider, formatTime(a.AnalyzedAt))
	if err != nil {
		return fmt.Errorf("failed to record analysis: %w", err)
	}
	return nil
}

// Stats summarizes analysis history
type Stats struct {
	AnalyzedSessions int
	FailedSessions   int
	PatternsCreated  int
	PendingQueue     int
	LastAnalyzed     time.Time
}

// GetStats returns analysis statistics
func (db *DB) GetStats() (*Stats, error) {
	stats := &Stats{}

	var created sql.NullInt64
	var last sql.NullString
	err := db.conn.QueryRow(`
		SELECT
			COUNT(CASE WHEN status != 'failed' THEN 1 END),
			COUNT(CASE WHEN status = 'failed' THEN 1 END),
			SUM(patterns_created),
			MAX(analyzed_at)
		FROM analyzed_sessions
	`).Scan(&stats.AnalyzedSessions, &stats.FailedSessions, &created, &last)
	if err != nil {
		return nil, fmt.Errorf("failed to load stats: %w", err)
	}
	stats.PatternsCreated = int(created.Int64)
	stats.LastAnalyzed = parseTime(last)

	err = db.conn.QueryRow(`SELECT COUNT(*) FROM analysis_queue WHERE status = 'pending'`).Scan(&stats.PendingQueue)
	if err != nil {
		return nil, fmt.Errorf("failed to count queue: %w", err)
	}
	return stats, nil
}
