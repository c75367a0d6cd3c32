package store

import (
	"database/sql"
	"errors"
	"fmt"
)

// ErrSchemaVersion is returned by Open for a history database written by an
// incompatible version of databag.
var ErrSchemaVersion = errors.New("unsupported history schema version")

// SetMeta upserts a key-value pair in history_meta.
func (d *DB) SetMeta(key, value string) error {
	_, err := d.conn.Exec(
		`INSERT INTO history_meta (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}

// GetMeta returns the value stored under key, or "" when it is unset.
func (d *DB) GetMeta(key string) (string, error) {
	var value string
	err := d.conn.QueryRow("SELECT value FROM history_meta WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return value, err
}

// checkSchema stamps a fresh database with schemaVersion and refuses one
// stamped with anything else.
func (d *DB) checkSchema() error {
	v, err := d.GetMeta("schema_version")
	if err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}
	switch v {
	case schemaVersion:
		return nil
	case "":
		if err := d.SetMeta("schema_version", schemaVersion); err != nil {
			return fmt.Errorf("recording schema version: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("%w: %q (want %q)", ErrSchemaVersion, v, schemaVersion)
	}
}
