// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dict

import (
	"bufio"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// Store is a SQLite-backed Dictionary. It suits the full 80k+ word
// frequency lists: one build with ImportFrequencyList, then indexed
// point lookups without holding the list in memory.
type Store struct {
	db     *sql.DB
	lookup *sql.Stmt
}

// OpenStore opens or creates the dictionary database at path and prepares
// the lookup statement. The schema is created if missing.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening dictionary store: %w", err)
	}

	if _, err := db.Exec(
		`CREATE TABLE IF NOT EXISTS words (
			word TEXT PRIMARY KEY,
			freq INTEGER NOT NULL
		)`,
	); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating words table: %w", err)
	}

	stmt, err := db.Prepare(`SELECT freq FROM words WHERE word = ?`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("preparing lookup: %w", err)
	}

	return &Store{db: db, lookup: stmt}, nil
}

// Close releases the prepared statement and the database connection.
func (s *Store) Close() error {
	s.lookup.Close()
	return s.db.Close()
}

// Lookup reports the frequency of word, case-insensitively. Database
// errors read as absent; the dictionary is advisory, not authoritative.
func (s *Store) Lookup(word string) (int64, bool) {
	var freq int64
	err := s.lookup.QueryRow(strings.ToLower(word)).Scan(&freq)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			fmt.Fprintf(os.Stderr, "warning: dictionary lookup %q: %v\n", word, err)
		}
		return 0, false
	}
	return freq, true
}

// Count returns the number of words in the store.
func (s *Store) Count() (int64, error) {
	var n int64
	if err := s.db.QueryRow(`SELECT count(*) FROM words`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting words: %w", err)
	}
	return n, nil
}

// Top returns the n highest-frequency entries, sorted descending.
func (s *Store) Top(n int) ([]Entry, error) {
	rows, err := s.db.Query(
		`SELECT word, freq FROM words ORDER BY freq DESC, word ASC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("querying top words: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Word, &e.Freq); err != nil {
			return nil, fmt.Errorf("scanning word row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ImportFrequencyList loads a "word frequency" list file into the store in
// one transaction, replacing existing entries. It returns the number of
// words imported.
func (s *Store) ImportFrequencyList(path string) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("opening frequency list %s: %w", path, err)
	}
	defer f.Close()

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("beginning import transaction: %w", err)
	}
	defer tx.Rollback()

	insert, err := tx.Prepare(`INSERT OR REPLACE INTO words (word, freq) VALUES (?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer insert.Close()

	var imported int64
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		word := strings.ToLower(fields[0])
		var freq int64 = 1
		if len(fields) > 1 {
			if n, err := strconv.ParseInt(fields[1], 10, 64); err == nil {
				freq = n
			}
		}
		if _, err := insert.Exec(word, freq); err != nil {
			return imported, fmt.Errorf("inserting %q: %w", word, err)
		}
		imported++
	}
	if err := scanner.Err(); err != nil {
		return imported, fmt.Errorf("reading frequency list: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return imported, fmt.Errorf("committing import: %w", err)
	}
	return imported, nil
}
