package store

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

const schemaVersion = "1"

const createSchema = `
CREATE TABLE IF NOT EXISTS decrypt_log (
	id              TEXT PRIMARY KEY,
	action          TEXT NOT NULL,
	item_id         TEXT NOT NULL DEFAULT '',
	source          TEXT NOT NULL DEFAULT '',
	versions        TEXT NOT NULL DEFAULT '',
	key_fingerprint TEXT NOT NULL DEFAULT '',
	outcome         TEXT NOT NULL,
	created_at      TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS history_meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_decrypt_log_created ON decrypt_log(created_at);
CREATE INDEX IF NOT EXISTS idx_decrypt_log_item ON decrypt_log(item_id);
`

// DB wraps a *sql.DB holding the decrypt history.
type DB struct {
	conn *sql.DB
}

// Open opens or creates the history database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close()
			return nil, fmt.Errorf("setting %s: %w", pragma, err)
		}
	}

	if _, err := conn.Exec(createSchema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	d := &DB{conn: conn}
	if err := d.checkSchema(); err != nil {
		conn.Close()
		return nil, err
	}
	return d, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.conn.Close()
}
