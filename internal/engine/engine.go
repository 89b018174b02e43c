// Package engine is the resolution facade: it turns a point in time
// into the verse (or book summary) to display right now.
package engine

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/FocuswithJustin/ChronoVerse/core/canon"
	"github.com/FocuswithJustin/ChronoVerse/core/ref"
	"github.com/FocuswithJustin/ChronoVerse/core/timeslot"
	"github.com/FocuswithJustin/ChronoVerse/internal/logging"
	"github.com/FocuswithJustin/ChronoVerse/internal/source"
	"github.com/FocuswithJustin/ChronoVerse/internal/stats"
)

// RandomTranslation is the sentinel translation code resolved to a
// concrete translation once per call. It is never passed downstream.
const RandomTranslation = "random"

// Kind discriminates resolution outcomes.
type Kind int

const (
	// KindVerse is a resolved verse record.
	KindVerse Kind = iota
	// KindSummary is a book summary standing in for a verse.
	KindSummary
)

// BookSummary is the stand-in shown when no valid reference exists for
// the current time.
type BookSummary struct {
	Book canon.Book `json:"book"`
	Text string     `json:"text"`
}

// Outcome is the result of one resolution: exactly one of Verse or
// Summary is meaningful, selected by Kind.
type Outcome struct {
	Kind         Kind           `json:"kind"`
	Verse        source.Record  `json:"verse,omitempty"`
	Secondary    *source.Record `json:"secondary,omitempty"`
	Summary      BookSummary    `json:"summary,omitempty"`
	ResolutionID string         `json:"resolution_id"`
}

// Config wires the engine's collaborators. All state is owned by the
// caller and injected here; the engine keeps no hidden globals.
type Config struct {
	Structure *canon.Structure
	Validator *canon.Validator
	Executor  *source.Executor
	Stats     *stats.Collector

	// Translations lists the real translation codes the random sentinel
	// may resolve to.
	Translations []string
}

// Engine orchestrates time resolution, book selection, and the fallback
// chain into the public "verse for right now" operation.
type Engine struct {
	structure    *canon.Structure
	selector     *timeslot.Selector
	executor     *source.Executor
	stats        *stats.Collector
	translations []string

	mu          sync.Mutex
	summarySlot int64
	summaryBook canon.Book
}

// New creates an Engine from its injected collaborators.
func New(cfg Config) *Engine {
	validator := cfg.Validator
	if validator == nil {
		validator = canon.NewValidator(cfg.Structure)
	}
	return &Engine{
		structure:    cfg.Structure,
		selector:     timeslot.NewSelector(validator),
		executor:     cfg.Executor,
		stats:        cfg.Stats,
		translations: cfg.Translations,
		summarySlot:  -1,
	}
}

// Current resolves the verse to display at the given instant. The
// secondary translation, when non-empty, triggers an independent second
// fetch for parallel presentation. Current never fails: every path ends
// in either a verse record or a book summary.
func (e *Engine) Current(ctx context.Context, now time.Time, format timeslot.Format, translation, secondary string) Outcome {
	id := stats.NewResolutionID()
	ctx = logging.WithResolutionID(ctx, id)

	// The sentinel is resolved here, once per call; the caller's stored
	// preference is untouched.
	concrete := e.concreteTranslation(translation)

	cand, ok := timeslot.Resolve(now, format)
	if !ok {
		return e.summaryOutcome(id, now)
	}

	candidates := e.selector.SelectBooks(cand.Chapter, cand.Verse)
	picked, ok := timeslot.Pick(candidates, now)
	if !ok {
		return e.summaryOutcome(id, now)
	}
	if !picked.Exact {
		// The chapter exists somewhere but the verse does not; a summary
		// of the rotated book beats showing a wrong reference.
		return e.bookSummaryOutcome(id, picked.Book)
	}

	r := ref.Reference{Book: picked.Book, Chapter: cand.Chapter, Verse: picked.Verse}
	rec := e.executor.Fetch(ctx, r, concrete)
	e.stats.RecordVerse(rec)
	logging.Resolution(rec.Translation, r.Key(), rec.Source, "degraded", rec.Degraded)

	out := Outcome{Kind: KindVerse, Verse: rec, ResolutionID: id}
	if secondary != "" {
		sec := e.concreteTranslation(secondary)
		if sec != concrete {
			rec2 := e.executor.Fetch(ctx, r, sec)
			e.stats.RecordVerse(rec2)
			out.Secondary = &rec2
		}
	}
	return out
}

// Lookup fetches an explicit reference, bypassing time resolution.
func (e *Engine) Lookup(ctx context.Context, r ref.Reference, translation string) source.Record {
	id := stats.NewResolutionID()
	ctx = logging.WithResolutionID(ctx, id)

	rec := e.executor.Fetch(ctx, r, e.concreteTranslation(translation))
	e.stats.RecordVerse(rec)
	return rec
}

// Translations returns the real translation codes the engine serves.
func (e *Engine) Translations() []string {
	out := make([]string, len(e.translations))
	copy(out, e.translations)
	return out
}

func (e *Engine) concreteTranslation(translation string) string {
	if translation != RandomTranslation || len(e.translations) == 0 {
		return translation
	}
	return e.translations[rand.Intn(len(e.translations))]
}

// summaryBookFor returns the summary book for the instant, cached for
// the remainder of the current minute so repeated calls are stable.
func (e *Engine) summaryBookFor(now time.Time) canon.Book {
	slot := now.Unix() / 60

	e.mu.Lock()
	defer e.mu.Unlock()
	if slot != e.summarySlot {
		e.summarySlot = slot
		e.summaryBook = timeslot.SummaryBook(now)
	}
	return e.summaryBook
}

func (e *Engine) summaryOutcome(id string, now time.Time) Outcome {
	return e.bookSummaryOutcome(id, e.summaryBookFor(now))
}

func (e *Engine) bookSummaryOutcome(id string, book canon.Book) Outcome {
	e.stats.RecordSummary(book)
	logging.Resolution("", string(book), "summary")
	return Outcome{
		Kind:         KindSummary,
		Summary:      BookSummary{Book: book, Text: e.summaryText(book)},
		ResolutionID: id,
	}
}

// summaryText derives a short descriptive line from the structure
// table. Presentation layers decide how to render it.
func (e *Engine) summaryText(book canon.Book) string {
	chapters := e.structure.Chapters(book)
	if chapters == 0 {
		if est, ok := canon.EstimatedChapters(book); ok {
			chapters = est
		}
	}
	verses := e.structure.VerseCount(book)
	if verses > 0 {
		return fmt.Sprintf("%s: %d chapters, %d verses.", book, chapters, verses)
	}
	return fmt.Sprintf("%s: %d chapters.", book, chapters)
}
