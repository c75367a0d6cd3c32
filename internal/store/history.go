package store

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

const (
	ActionDecrypt = "decrypt"
	ActionEncrypt = "encrypt"

	OutcomeOK = "ok"

	// fixed width so created_at sorts and compares as text
	timeLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

// HistoryEntry is one row of decrypt_log. It never holds key bytes or
// plaintext; KeyFingerprint identifies the secret without revealing it.
type HistoryEntry struct {
	ID             string    `json:"id"`
	Action         string    `json:"action"`
	ItemID         string    `json:"item_id"`
	Source         string    `json:"source"`
	Versions       string    `json:"versions"`
	KeyFingerprint string    `json:"key_fingerprint"`
	Outcome        string    `json:"outcome"`
	CreatedAt      time.Time `json:"created_at"`
}

// LogDecrypt writes a history entry.
func (d *DB) LogDecrypt(entry HistoryEntry) error {
	if entry.ID == "" {
		b := make([]byte, 16)
		if _, err := rand.Read(b); err != nil {
			return fmt.Errorf("generating entry id: %w", err)
		}
		entry.ID = hex.EncodeToString(b)
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	if entry.Action == "" {
		entry.Action = ActionDecrypt
	}
	_, err := d.conn.Exec(
		`INSERT INTO decrypt_log (id, action, item_id, source, versions, key_fingerprint, outcome, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.Action, entry.ItemID, entry.Source, entry.Versions,
		entry.KeyFingerprint, entry.Outcome,
		entry.CreatedAt.UTC().Format(timeLayout),
	)
	return err
}

// History retrieves recent entries, newest first.
func (d *DB) History(limit int) ([]HistoryEntry, error) {
	rows, err := d.conn.Query(
		`SELECT id, action, item_id, source, versions, key_fingerprint, outcome, created_at
		 FROM decrypt_log ORDER BY created_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		var createdAt string
		if err := rows.Scan(&e.ID, &e.Action, &e.ItemID, &e.Source, &e.Versions,
			&e.KeyFingerprint, &e.Outcome, &createdAt); err != nil {
			return nil, err
		}
		e.CreatedAt, _ = time.Parse(timeLayout, createdAt)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// PruneHistory deletes entries created before cutoff and returns how many
// were removed.
func (d *DB) PruneHistory(cutoff time.Time) (int64, error) {
	res, err := d.conn.Exec(
		"DELETE FROM decrypt_log WHERE created_at < ?",
		cutoff.UTC().Format(timeLayout),
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
