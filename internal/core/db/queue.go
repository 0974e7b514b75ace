package db

import (
	"database/sql"
	"fmt"
	"time"
)

// Queue statuses
const (
	QueuePending = "pending"
	QueueDone    = "done"
	QueueFailed  = "failed"
)

// QueueItem is a session waiting for analysis
type QueueItem struct {
	ID             int64
	SessionID      string
	ProjectPath    string
	TranscriptPath string
	Status         string
	Attempts       int
	LastError      string
	QueuedAt       time.Time
	ProcessedAt    time.Time
}

// Enqueue adds a pending item. A session already pending is left alone and
// added is false.
func (db *DB) Enqueue(item QueueItem) (added bool, err error) {
	if item.SessionID == "" {
		return false, fmt.Errorf("session id is required")
	}
	res, err := db.conn.Exec(`
		INSERT INTO analysis_queue (session_id, project_path, transcript_path, status, queued_at)
		VALUES (?, ?, ?, 'pending', ?)
		ON CONFLICT DO NOTHING
	`, item.SessionID, item.ProjectPath, item.TranscriptPath, formatTime(db.now()))
	if err != nil {
		return false, fmt.Errorf("failed to enqueue session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// PendingQueue returns up to limit pending items, oldest first. A limit of
// zero or less returns all of them.
func (db *DB) PendingQueue(limit int) ([]QueueItem, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := db.conn.Query(`
		SELECT id, session_id, project_path, transcript_path, status, attempts, last_error, queued_at, processed_at
		FROM analysis_queue
		WHERE status = 'pending'
		ORDER BY queued_at, id
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list queue: %w", err)
	}
	defer func() { _ = rows.Close() }()

	items := make([]QueueItem, 0)
	for rows.Next() {
		var it QueueItem
		var project, transcript, lastErr, queuedAt, processedAt sql.NullString
		if err := rows.Scan(&it.ID, &it.SessionID, &project, &transcript, &it.Status, &it.Attempts,
			&lastErr, &queuedAt, &processedAt); err != nil {
			return nil, err
		}
		it.ProjectPath = project.String
		it.TranscriptPath = transcript.String
		it.LastError = lastErr.String
		it.QueuedAt = parseTime(queuedAt)
		it.ProcessedAt = parseTime(processedAt)
		items = append(items, it)
	}
	return items, rows.Err()
}

// MarkDone completes a queue item
func (db *DB) MarkDone(id int64) error {
	_, err := db.conn.Exec(`
		UPDATE analysis_queue
		SET status = 'done', attempts = attempts + 1, last_error = NULL, processed_at = ?
		WHERE id = ?
	`, formatTime(db.now()), id)
	if err != nil {
		return fmt.Errorf("failed to update queue item %d: %w", id, err)
	}
	return nil
}

// MarkFailed records a failed attempt. Items stay pending until maxAttempts
// is reached.
func (db *DB) MarkFailed(id int64, cause error, maxAttempts int) error {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	_, err := db.conn.Exec(`
		UPDATE analysis_queue
		SET attempts = attempts + 1,
			last_error = ?,
			processed_at = ?,
			status = CASE WHEN attempts + 1 >= ? THEN 'failed' ELSE 'pending' END
		WHERE id = ?
	`, msg, formatTime(db.now()), maxAttempts, id)
	if err != nil {
		return fmt.Errorf("failed to update queue item %d: %w", id, err)
	}
	return nil
}
