// Package store persists named dictionaries in a SQLite database.
// Imported word lists are recorded with their BLAKE3 fingerprint so the
// same word set is recognized regardless of source file order or casing.
package store

import (
	"database/sql"
	"time"

	"github.com/lexica-dev/wordbreak/core/errors"
	"github.com/lexica-dev/wordbreak/core/lexicon"
	"github.com/lexica-dev/wordbreak/core/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS dictionaries (
	id          INTEGER PRIMARY KEY,
	name        TEXT    NOT NULL UNIQUE,
	fingerprint TEXT    NOT NULL,
	description TEXT    NOT NULL DEFAULT '',
	source      TEXT    NOT NULL DEFAULT '',
	word_count  INTEGER NOT NULL,
	created_at  TEXT    NOT NULL
);

CREATE TABLE IF NOT EXISTS words (
	dict_id INTEGER NOT NULL REFERENCES dictionaries(id) ON DELETE CASCADE,
	word    TEXT    NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_words_dict ON words(dict_id);
`

// Store is a dictionary registry backed by SQLite. It is safe for use
// from multiple goroutines; database/sql serializes access.
type Store struct {
	db *sql.DB
}

// DictionaryInfo describes a stored dictionary.
type DictionaryInfo struct {
	Name        string    `json:"name"`
	Fingerprint string    `json:"fingerprint"`
	Description string    `json:"description,omitempty"`
	Source      string    `json:"source,omitempty"`
	WordCount   int       `json:"word_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// Open opens (creating if needed) the dictionary store at path.
func Open(path string) (*Store, error) {
	db, err := sqlite.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening dictionary store %s", path)
	}
	if _, err := db.Exec(`PRAGMA foreign_keys = ON`); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "enabling foreign keys")
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "creating store schema")
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Import stores a lexicon under its name. It fails with ErrAlreadyExists
// if a dictionary with the same name is present.
func (s *Store) Import(lex *lexicon.Lexicon) (*DictionaryInfo, error) {
	if lex.Name == "" {
		return nil, errors.NewValidation("name", "dictionary name must not be empty")
	}
	if len(lex.Words) == 0 {
		return nil, errors.NewValidation("words", "dictionary must contain at least one word")
	}

	var exists int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM dictionaries WHERE name = ?`, lex.Name).Scan(&exists)
	if err != nil {
		return nil, errors.Wrap(err, "checking dictionary name")
	}
	if exists > 0 {
		return nil, errors.Wrapf(errors.ErrAlreadyExists, "dictionary %s", lex.Name)
	}

	info := &DictionaryInfo{
		Name:        lex.Name,
		Fingerprint: lex.Fingerprint(),
		Description: lex.Description,
		Source:      lex.Source,
		WordCount:   len(lex.Words),
		CreatedAt:   time.Now().UTC(),
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, errors.Wrap(err, "starting import transaction")
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		`INSERT INTO dictionaries (name, fingerprint, description, source, word_count, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		info.Name, info.Fingerprint, info.Description, info.Source,
		info.WordCount, info.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return nil, errors.Wrap(err, "inserting dictionary record")
	}
	dictID, err := res.LastInsertId()
	if err != nil {
		return nil, errors.Wrap(err, "reading dictionary id")
	}

	stmt, err := tx.Prepare(`INSERT INTO words (dict_id, word) VALUES (?, ?)`)
	if err != nil {
		return nil, errors.Wrap(err, "preparing word insert")
	}
	defer stmt.Close()
	for _, w := range lex.Words {
		if _, err := stmt.Exec(dictID, w); err != nil {
			return nil, errors.Wrapf(err, "inserting word %q", w)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.Wrap(err, "committing import")
	}
	return info, nil
}

// Load retrieves a stored dictionary as a lexicon ready to compile.
func (s *Store) Load(name string) (*lexicon.Lexicon, error) {
	var dictID int64
	var description, source string
	err := s.db.QueryRow(
		`SELECT id, description, source FROM dictionaries WHERE name = ?`, name,
	).Scan(&dictID, &description, &source)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound("dictionary", name)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "loading dictionary %s", name)
	}

	rows, err := s.db.Query(`SELECT word FROM words WHERE dict_id = ? ORDER BY rowid`, dictID)
	if err != nil {
		return nil, errors.Wrapf(err, "loading words for %s", name)
	}
	defer rows.Close()

	var words []string
	for rows.Next() {
		var w string
		if err := rows.Scan(&w); err != nil {
			return nil, errors.Wrap(err, "scanning word")
		}
		words = append(words, w)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterating words")
	}

	return &lexicon.Lexicon{
		Name:        name,
		Description: description,
		Source:      source,
		Words:       words,
	}, nil
}

// Info returns the metadata for a stored dictionary.
func (s *Store) Info(name string) (*DictionaryInfo, error) {
	info := &DictionaryInfo{}
	var createdAt string
	err := s.db.QueryRow(
		`SELECT name, fingerprint, description, source, word_count, created_at
		 FROM dictionaries WHERE name = ?`, name,
	).Scan(&info.Name, &info.Fingerprint, &info.Description, &info.Source,
		&info.WordCount, &createdAt)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound("dictionary", name)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "reading dictionary %s", name)
	}
	info.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return info, nil
}

// List returns metadata for all stored dictionaries, ordered by name.
func (s *Store) List() ([]DictionaryInfo, error) {
	rows, err := s.db.Query(
		`SELECT name, fingerprint, description, source, word_count, created_at
		 FROM dictionaries ORDER BY name`)
	if err != nil {
		return nil, errors.Wrap(err, "listing dictionaries")
	}
	defer rows.Close()

	var out []DictionaryInfo
	for rows.Next() {
		var info DictionaryInfo
		var createdAt string
		if err := rows.Scan(&info.Name, &info.Fingerprint, &info.Description,
			&info.Source, &info.WordCount, &createdAt); err != nil {
			return nil, errors.Wrap(err, "scanning dictionary row")
		}
		info.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		out = append(out, info)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterating dictionaries")
	}
	return out, nil
}

// Delete removes a dictionary and its words.
func (s *Store) Delete(name string) error {
	res, err := s.db.Exec(`DELETE FROM dictionaries WHERE name = ?`, name)
	if err != nil {
		return errors.Wrapf(err, "deleting dictionary %s", name)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "reading delete result")
	}
	if n == 0 {
		return errors.NewNotFound("dictionary", name)
	}
	return nil
}
