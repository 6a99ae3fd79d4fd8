// Package logging persists per-sentence recognition outcomes to SQLite.
// Failed attempts land here rather than propagating to batch callers.
package logging

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS recognition_log (
	id          TEXT PRIMARY KEY,
	grammar     TEXT NOT NULL,
	sentence    TEXT NOT NULL,
	path_count  INTEGER NOT NULL DEFAULT 0,
	intent      TEXT,
	confidence  REAL NOT NULL DEFAULT 0,
	err_reason  TEXT,
	created_at  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_recognition_grammar ON recognition_log(grammar);
`

// #endregion schema

// #region log-struct
// RecognitionLog manages the recognition_log table.
type RecognitionLog struct {
	db *sql.DB
}

// NewRecognitionLog creates the table if needed and returns a log.
func NewRecognitionLog(db *sql.DB) (*RecognitionLog, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("recognition log schema: %w", err)
	}
	return &RecognitionLog{db: db}, nil
}

// #endregion log-struct

// #region record
// Record inserts one entry. Missing ID and CreatedAt are filled in.
func (l *RecognitionLog) Record(entry RecognitionEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := l.db.Exec(
		`INSERT INTO recognition_log (id, grammar, sentence, path_count, intent, confidence, err_reason, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.Grammar,
		entry.Sentence,
		entry.PathCount,
		nullIfEmpty(entry.Intent),
		entry.Confidence,
		nullIfEmpty(entry.ErrReason),
		entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("record recognition: %w", err)
	}
	return nil
}

// #endregion record

// #region recent
// Recent returns the most recent entries, newest first.
func (l *RecognitionLog) Recent(limit int) ([]RecognitionEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := l.db.Query(
		`SELECT id, grammar, sentence, path_count, COALESCE(intent, ''), confidence, COALESCE(err_reason, ''), created_at
		 FROM recognition_log
		 ORDER BY created_at DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query recognition log: %w", err)
	}
	defer rows.Close()

	var entries []RecognitionEntry
	for rows.Next() {
		var e RecognitionEntry
		var createdAt string
		if err := rows.Scan(&e.ID, &e.Grammar, &e.Sentence, &e.PathCount, &e.Intent, &e.Confidence, &e.ErrReason, &createdAt); err != nil {
			return nil, fmt.Errorf("scan recognition entry: %w", err)
		}
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// #endregion recent

// #region helpers
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// #endregion helpers
