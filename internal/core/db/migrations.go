package db

import (
	"database/sql"
	"fmt"
)

type migration struct {
	version int
	name    string
	apply   func(db *DB) error
}

var migrations = []migration{
	{version: 1, name: "add provider to analyzed_sessions", apply: (*DB).migration001AddProvider},
}

// runMigrations applies every migration not yet recorded
func (db *DB) runMigrations() error {
	for _, m := range migrations {
		var applied int
		err := db.conn.QueryRow(`SELECT version FROM schema_migrations WHERE version = ?`, m.version).Scan(&applied)
		if err == nil {
			continue
		}
		if err != sql.ErrNoRows {
			return fmt.Errorf("check migration %03d: %w", m.version, err)
		}

		if err := m.apply(db); err != nil {
			return fmt.Errorf("migration %03d (%s): %w", m.version, m.name, err)
		}
		if _, err := db.conn.Exec(`INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)`,
			m.version, formatTime(db.now())); err != nil {
			return fmt.Errorf("record migration %03d: %w", m.version, err)
		}
	}
	return nil
}

// migration001AddProvider records which provider produced an analysis
func (db *DB) migration001AddProvider() error {
	has, err := db.hasColumn("analyzed_sessions", "provider")
	if err != nil {
		return err
	}
	if has {
		return nil
	}
	_, err = db.conn.Exec(`ALTER TABLE analyzed_sessions ADD COLUMN provider TEXT`)
	return err
}

func (db *DB) hasColumn(table, column string) (bool, error) {
	var count int
	err := db.conn.QueryRow(`
		SELECT COUNT(*) FROM pragma_table_info(?)
		WHERE name = ?
	`, table, column).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
