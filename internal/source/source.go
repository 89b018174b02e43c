// Package source implements the verse source adapters and the fallback
// chain executor that tries them in order until one yields text.
package source

import (
	"context"

	"github.com/FocuswithJustin/ChronoVerse/core/ref"
)

// Result is verse text plus its provenance.
type Result struct {
	// Text is the verse text. Never empty on success.
	Text string

	// Translation is the translation that actually produced the text.
	// May differ from the requested one (cross-translation fallback).
	Translation string

	// Degraded marks terminal-fallback content.
	Degraded bool
}

// Source fetches verse text for a reference in one translation.
// Implementations return an error (or empty text) on any failure; the
// chain executor absorbs both and moves on to the next adapter.
type Source interface {
	// Name identifies the adapter in logs and source tags.
	Name() string

	// Fetch retrieves the verse text. The context carries the
	// per-attempt timeout.
	Fetch(ctx context.Context, r ref.Reference, translation string) (Result, error)
}

// Record is the outcome of a full chain fetch: the verse reference, its
// text, and tags describing where the text came from.
type Record struct {
	Reference ref.Reference `json:"reference"`

	Text string `json:"text"`

	// Translation is the translation that was requested.
	Translation string `json:"translation"`

	// Produced is the translation the text actually came from.
	Produced string `json:"produced"`

	// Source names the adapter that produced the text.
	Source string `json:"source"`

	// Degraded is true when the terminal fallback supplied the text.
	Degraded bool `json:"degraded,omitempty"`
}

// Substituted reports whether the text came from a different translation
// than the requested one.
func (r Record) Substituted() bool {
	return r.Produced != "" && r.Produced != r.Translation
}
