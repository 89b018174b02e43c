// Package store owns the per-translation verse caches and their durable
// SQLite backing. Caches only grow: a key is never overwritten once
// written (first-writer-wins), and every successful mutation is written
// through to disk synchronously.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/FocuswithJustin/ChronoVerse/core/canon"
	"github.com/FocuswithJustin/ChronoVerse/core/errors"
	"github.com/FocuswithJustin/ChronoVerse/core/ref"
	"github.com/FocuswithJustin/ChronoVerse/core/sqlite"
	"github.com/FocuswithJustin/ChronoVerse/internal/logging"
)

const schema = `
CREATE TABLE IF NOT EXISTS verses (
	book    TEXT    NOT NULL,
	chapter INTEGER NOT NULL,
	verse   INTEGER NOT NULL,
	text    TEXT    NOT NULL,
	PRIMARY KEY (book, chapter, verse)
);
CREATE TABLE IF NOT EXISTS meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

// Store manages one Cache per translation code, all rooted in a single
// data directory (one database file per translation).
type Store struct {
	dir       string
	structure *canon.Structure

	mu     sync.RWMutex
	caches map[string]*Cache
}

// NewStore creates a Store rooted at dir. The directory is created if
// missing.
func NewStore(dir string, structure *canon.Structure) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrapf(err, "creating cache directory %s", dir)
	}
	return &Store{
		dir:       dir,
		structure: structure,
		caches:    make(map[string]*Cache),
	}, nil
}

// Open returns the cache for a translation, loading it from its
// database file on first use (and creating the file if absent).
func (s *Store) Open(code string) (*Cache, error) {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return nil, errors.NewValidation("translation", "empty translation code")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.caches[code]; ok {
		return c, nil
	}

	path := filepath.Join(s.dir, code+".db")
	db, err := sqlite.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening cache %s", path)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrapf(err, "initializing cache %s", path)
	}

	c := &Cache{
		code:      code,
		db:        db,
		structure: s.structure,
		verses:    make(map[canon.Book]map[int]map[int]string),
	}
	if err := c.load(); err != nil {
		db.Close()
		return nil, err
	}
	c.completion = c.recompute()
	s.caches[code] = c
	return c, nil
}

// Codes returns the translation codes currently open, sorted order not
// guaranteed.
func (s *Store) Codes() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	codes := make([]string, 0, len(s.caches))
	for code := range s.caches {
		codes = append(codes, code)
	}
	return codes
}

// Dir returns the data directory backing the store.
func (s *Store) Dir() string {
	return s.dir
}

// Close closes all open caches.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var first error
	for code, c := range s.caches {
		if err := c.db.Close(); err != nil && first == nil {
			first = errors.Wrapf(err, "closing cache %s", code)
		}
		delete(s.caches, code)
	}
	return first
}

// Cache is one translation's verse cache: a three-level book → chapter →
// verse → text mapping held fully in memory, written through to SQLite
// on every mutation.
type Cache struct {
	code      string
	db        *sql.DB
	structure *canon.Structure

	mu         sync.Mutex
	verses     map[canon.Book]map[int]map[int]string
	size       int
	completion float64
	pending    []pendingRow // rows whose durable write failed; retried on next mutation
}

type pendingRow struct {
	book    canon.Book
	chapter int
	verse   int
	text    string
}

// Code returns the translation code this cache serves.
func (c *Cache) Code() string {
	return c.code
}

func (c *Cache) load() error {
	rows, err := c.db.Query(`SELECT book, chapter, verse, text FROM verses`)
	if err != nil {
		return errors.Wrapf(err, "loading cache %s", c.code)
	}
	defer rows.Close()

	for rows.Next() {
		var book string
		var chapter, verse int
		var text string
		if err := rows.Scan(&book, &chapter, &verse, &text); err != nil {
			return errors.Wrapf(err, "scanning cache %s", c.code)
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		c.insert(canon.Book(book), chapter, verse, text)
	}
	return rows.Err()
}

// insert adds to the in-memory map only. Returns false when the key
// already existed (first-writer-wins).
func (c *Cache) insert(book canon.Book, chapter, verse int, text string) bool {
	chapters, ok := c.verses[book]
	if !ok {
		chapters = make(map[int]map[int]string)
		c.verses[book] = chapters
	}
	vs, ok := chapters[chapter]
	if !ok {
		vs = make(map[int]string)
		chapters[chapter] = vs
	}
	if _, exists := vs[verse]; exists {
		return false
	}
	vs[verse] = text
	c.size++
	return true
}

// Get returns the cached text for a reference.
func (c *Cache) Get(r ref.Reference) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	text, ok := c.verses[r.Book][r.Chapter][r.Verse]
	return text, ok
}

// Has reports whether a reference is cached.
func (c *Cache) Has(r ref.Reference) bool {
	_, ok := c.Get(r)
	return ok
}

// Put stores verse text under first-writer-wins semantics and writes it
// through to the database. A durable-write failure keeps the in-memory
// entry and returns a CacheWriteError; the row is retried on the next
// mutation. Empty or whitespace-only text is rejected.
func (c *Cache) Put(r ref.Reference, text string) error {
	if strings.TrimSpace(text) == "" {
		return errors.NewValidation("text", "empty verse text is not cached")
	}
	if r.Chapter < 1 || r.Verse < 1 {
		return errors.NewValidation("reference", fmt.Sprintf("invalid reference %s", r))
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.insert(r.Book, r.Chapter, r.Verse, text) {
		return nil // already present, nothing to persist
	}
	c.completion = c.recompute()

	row := pendingRow{book: r.Book, chapter: r.Chapter, verse: r.Verse, text: text}
	retry := c.pending
	c.pending = nil
	var firstErr error
	for _, p := range append(retry, row) {
		if err := c.persist(p); err != nil {
			c.pending = append(c.pending, p)
			if firstErr == nil {
				firstErr = errors.NewCacheWrite(c.code, r.Key(), err)
			}
		}
	}
	if firstErr != nil {
		return firstErr
	}

	c.persistCompletion()
	logging.CacheWrite(c.code, r.Key(), c.completion)
	return nil
}

func (c *Cache) persist(p pendingRow) error {
	_, err := c.db.Exec(
		`INSERT OR IGNORE INTO verses (book, chapter, verse, text) VALUES (?, ?, ?, ?)`,
		string(p.book), p.chapter, p.verse, p.text,
	)
	return err
}

// persistCompletion caches the completion percentage in the meta table.
// Best effort: the value is always regenerable from cache contents.
func (c *Cache) persistCompletion() {
	_, err := c.db.Exec(
		`INSERT INTO meta (key, value) VALUES ('completion_pct', ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		fmt.Sprintf("%.4f", c.completion),
	)
	if err != nil {
		logging.Debug("completion meta write failed", "translation", c.code, "error", err)
	}
}

// Len returns the number of cached verses.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.size
}

// Completion returns the percentage of the canonical Bible present in
// this cache, in [0, 100].
func (c *Cache) Completion() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.completion
}

// recompute walks every book/chapter pair in the structure table and
// counts cached verses against the canonical total. Callers hold c.mu.
func (c *Cache) recompute() float64 {
	total := c.structure.TotalVerses()
	if total == 0 {
		return 0
	}
	cached := 0
	for _, book := range canon.Books {
		chapters, ok := c.verses[book]
		if !ok {
			continue
		}
		for chapter, vs := range chapters {
			max, ok := c.structure.MaxVerse(book, chapter)
			if !ok {
				continue
			}
			for verse := range vs {
				if verse >= 1 && verse <= max {
					cached++
				}
			}
		}
	}
	return float64(cached) / float64(total) * 100
}
