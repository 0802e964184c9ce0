package history

import "database/sql"

const currentSchemaVersion = 1

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);

		CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			url TEXT NOT NULL,
			format TEXT NOT NULL,
			target TEXT NOT NULL,
			files INTEGER NOT NULL,
			total_tracks INTEGER NOT NULL,
			failed TEXT NOT NULL DEFAULT '',
			exit_code INTEGER NOT NULL,
			success INTEGER NOT NULL,
			started_at INTEGER NOT NULL,
			finished_at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_sessions_finished_at ON sessions(finished_at);
	`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`INSERT OR IGNORE INTO schema_version (version) VALUES (?)`, currentSchemaVersion)
	return err
}
