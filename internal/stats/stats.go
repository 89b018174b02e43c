// Package stats collects resolution statistics as a side channel for
// external consumers: translation usage, per-book access, and which
// adapter served each verse.
package stats

import (
	"sync"

	"github.com/google/uuid"

	"github.com/FocuswithJustin/ChronoVerse/core/canon"
	"github.com/FocuswithJustin/ChronoVerse/internal/source"
)

// Collector accumulates counters. Safe for concurrent use.
type Collector struct {
	mu           sync.Mutex
	resolutions  int
	summaries    int
	translations map[string]int
	books        map[string]int
	sources      map[string]int
}

// NewCollector creates an empty Collector.
func NewCollector() *Collector {
	return &Collector{
		translations: make(map[string]int),
		books:        make(map[string]int),
		sources:      make(map[string]int),
	}
}

// NewResolutionID returns a unique ID for one resolution, carried
// through logs and API responses.
func NewResolutionID() string {
	return uuid.NewString()
}

// RecordVerse counts a completed verse resolution.
func (c *Collector) RecordVerse(rec source.Record) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resolutions++
	c.translations[rec.Translation]++
	c.books[string(rec.Reference.Book)]++
	c.sources[rec.Source]++
}

// RecordSummary counts a book-summary resolution.
func (c *Collector) RecordSummary(book canon.Book) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resolutions++
	c.summaries++
	c.books[string(book)]++
}

// Snapshot is a point-in-time copy of all counters.
type Snapshot struct {
	Resolutions  int            `json:"resolutions"`
	Summaries    int            `json:"summaries"`
	Translations map[string]int `json:"translations"`
	Books        map[string]int `json:"books"`
	Sources      map[string]int `json:"sources"`
}

// Snapshot returns a copy of the current counters.
func (c *Collector) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		Resolutions:  c.resolutions,
		Summaries:    c.summaries,
		Translations: copyMap(c.translations),
		Books:        copyMap(c.books),
		Sources:      copyMap(c.sources),
	}
}

func copyMap(m map[string]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
