package db

func (db *DB) initSchema() error {
	schema := `
	-- One row per analyzed session file
	CREATE TABLE IF NOT EXISTS analyzed_sessions (
		session_id TEXT PRIMARY KEY,
		project TEXT NOT NULL,
		file_path TEXT NOT NULL,
		file_hash TEXT NOT NULL,
		file_size INTEGER,
		entry_count INTEGER DEFAULT 0,
		patterns_found INTEGER DEFAULT 0,
		patterns_created INTEGER DEFAULT 0,
		status TEXT NOT NULL CHECK(status IN ('analyzed', 'skipped', 'failed')),
		error_message TEXT,
		analyzed_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_analyzed_project ON analyzed_sessions(project);
	CREATE INDEX IF NOT EXISTS idx_analyzed_at ON analyzed_sessions(analyzed_at);

	-- Sessions handed over by the session-end hook or the watcher
	CREATE TABLE IF NOT EXISTS analysis_queue (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		project_path TEXT,
		transcript_path TEXT,
		status TEXT NOT NULL DEFAULT 'pending' CHECK(status IN ('pending', 'done', 'failed')),
		attempts INTEGER NOT NULL DEFAULT 0,
		last_error TEXT,
		queued_at TEXT NOT NULL,
		processed_at TEXT
	);

	-- at most one pending entry per session
	CREATE UNIQUE INDEX IF NOT EXISTS idx_queue_pending
		ON analysis_queue(session_id) WHERE status = 'pending';
	CREATE INDEX IF NOT EXISTS idx_queue_status ON analysis_queue(status, queued_at);

	CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		applied_at TEXT NOT NULL
	);
	`

	_, err := db.conn.Exec(schema)
	return err
}
