// Package store persists compiled grammar transducers in SQLite, keyed by
// name, in their AT&T text serialization. It realizes the automaton provider
// contract's load-by-name for recognizers.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/openvoiceinfra/fstintent/internal/fst"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS grammars (
	name        TEXT PRIMARY KEY,
	fst_text    TEXT NOT NULL,
	isyms_text  TEXT NOT NULL,
	osyms_text  TEXT NOT NULL,
	num_states  INTEGER NOT NULL,
	num_arcs    INTEGER NOT NULL,
	created_at  TEXT NOT NULL,
	updated_at  TEXT NOT NULL
);
`

// #endregion schema

// #region errors
// ErrNotFound is returned by Get for names with no stored grammar.
var ErrNotFound = errors.New("grammar not found")

// #endregion errors

// #region types
// GrammarInfo summarizes one stored grammar without deserializing it.
type GrammarInfo struct {
	Name      string
	NumStates int
	NumArcs   int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// GrammarStore manages the grammars table.
type GrammarStore struct {
	db *sql.DB
}

// #endregion types

// #region constructor
// NewGrammarStore opens a SQLite database and runs migrations.
func NewGrammarStore(dbPath string) (*GrammarStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &GrammarStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *GrammarStore) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for use by other packages (e.g. logging).
func (s *GrammarStore) DB() *sql.DB {
	return s.db
}

// #endregion constructor

// #region put
// Put serializes f and upserts it under name.
func (s *GrammarStore) Put(name string, f *fst.Fst) error {
	if name == "" {
		return fmt.Errorf("grammar name must not be empty")
	}

	var fstText, isymsText, osymsText strings.Builder
	if err := fst.WriteText(&fstText, f); err != nil {
		return fmt.Errorf("serialize grammar %s: %w", name, err)
	}
	if err := fst.WriteSymbols(&isymsText, f.InputSymbols()); err != nil {
		return fmt.Errorf("serialize input symbols %s: %w", name, err)
	}
	if err := fst.WriteSymbols(&osymsText, f.OutputSymbols()); err != nil {
		return fmt.Errorf("serialize output symbols %s: %w", name, err)
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.Exec(
		`INSERT INTO grammars (name, fst_text, isyms_text, osyms_text, num_states, num_arcs, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET
		   fst_text = excluded.fst_text,
		   isyms_text = excluded.isyms_text,
		   osyms_text = excluded.osyms_text,
		   num_states = excluded.num_states,
		   num_arcs = excluded.num_arcs,
		   updated_at = excluded.updated_at`,
		name, fstText.String(), isymsText.String(), osymsText.String(),
		f.NumStates(), f.NumArcs(), now, now,
	)
	if err != nil {
		return fmt.Errorf("store grammar %s: %w", name, err)
	}
	return nil
}

// #endregion put

// #region get
// Get loads and deserializes the grammar stored under name.
func (s *GrammarStore) Get(name string) (*fst.Fst, error) {
	var fstText, isymsText, osymsText string
	err := s.db.QueryRow(
		`SELECT fst_text, isyms_text, osyms_text FROM grammars WHERE name = ?`,
		name,
	).Scan(&fstText, &isymsText, &osymsText)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("load grammar %s: %w", name, err)
	}

	isyms, err := fst.ReadSymbols(strings.NewReader(isymsText))
	if err != nil {
		return nil, fmt.Errorf("parse input symbols %s: %w", name, err)
	}
	osyms, err := fst.ReadSymbols(strings.NewReader(osymsText))
	if err != nil {
		return nil, fmt.Errorf("parse output symbols %s: %w", name, err)
	}
	f, err := fst.ReadText(strings.NewReader(fstText), isyms, osyms)
	if err != nil {
		return nil, fmt.Errorf("parse grammar %s: %w", name, err)
	}
	return f, nil
}

// #endregion get

// #region list
// List returns metadata for every stored grammar, ordered by name.
func (s *GrammarStore) List() ([]GrammarInfo, error) {
	rows, err := s.db.Query(
		`SELECT name, num_states, num_arcs, created_at, updated_at FROM grammars ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("list grammars: %w", err)
	}
	defer rows.Close()

	var infos []GrammarInfo
	for rows.Next() {
		var info GrammarInfo
		var createdAt, updatedAt string
		if err := rows.Scan(&info.Name, &info.NumStates, &info.NumArcs, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan grammar info: %w", err)
		}
		info.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		info.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
		infos = append(infos, info)
	}
	return infos, rows.Err()
}

// #endregion list

// #region delete
// Delete removes the grammar stored under name, if any.
func (s *GrammarStore) Delete(name string) error {
	_, err := s.db.Exec(`DELETE FROM grammars WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("delete grammar %s: %w", name, err)
	}
	return nil
}

// #endregion delete
