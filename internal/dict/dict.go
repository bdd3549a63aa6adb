// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dict supplies the read-only word-frequency capability the repair
// stage consults. Two implementations exist: an in-memory map loaded from a
// plain frequency list, and a SQLite store built once with
// `dataset-engine dict import`. Both are read-only for the lifetime of a run.
package dict

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Dictionary answers frequency lookups. Lookups are case-insensitive;
// absent words report ok == false.
type Dictionary interface {
	Lookup(word string) (freq int64, ok bool)
	Close() error
}

// Entry is one word with its corpus frequency.
type Entry struct {
	Word string
	Freq int64
}

// Map is an in-memory Dictionary backed by a frequency list.
type Map struct {
	words map[string]int64
}

// NewMap builds a Map from explicit entries. Intended for tests and small
// fixture dictionaries.
func NewMap(entries map[string]int64) *Map {
	words := make(map[string]int64, len(entries))
	for w, f := range entries {
		words[strings.ToLower(w)] = f
	}
	return &Map{words: words}
}

// Lookup reports the frequency of word, case-insensitively.
func (m *Map) Lookup(word string) (int64, bool) {
	f, ok := m.words[strings.ToLower(word)]
	return f, ok
}

// Len returns the number of distinct words.
func (m *Map) Len() int { return len(m.words) }

// Close is a no-op for the in-memory map.
func (m *Map) Close() error { return nil }

// LoadFrequencyFile reads a "word frequency" list (one pair per line, the
// SymSpell en_82_765 format) into a Map. Lines without a parseable
// frequency get frequency 1 so plain word lists still work.
func LoadFrequencyFile(path string) (*Map, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening dictionary %s: %w", path, err)
	}
	defer f.Close()

	words := make(map[string]int64)
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
		words[word] = freq
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading dictionary %s: %w", path, err)
	}
	return &Map{words: words}, nil
}

// Top returns the n highest-frequency entries, sorted descending.
func (m *Map) Top(n int) []Entry {
	entries := make([]Entry, 0, len(m.words))
	for w, f := range m.words {
		entries = append(entries, Entry{Word: w, Freq: f})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Freq != entries[j].Freq {
			return entries[i].Freq > entries[j].Freq
		}
		return entries[i].Word < entries[j].Word
	})
	if n < len(entries) {
		entries = entries[:n]
	}
	return entries
}

// Open selects the Dictionary implementation by file extension: .db and
// .sqlite open the SQLite store, anything else loads as a frequency list.
func Open(path string) (Dictionary, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite":
		return OpenStore(path)
	default:
		return LoadFrequencyFile(path)
	}
}
