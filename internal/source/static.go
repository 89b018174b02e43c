package source

import (
	"context"

	"github.com/FocuswithJustin/ChronoVerse/core/ref"
)

// StaticName is the adapter name of the terminal fallback.
const StaticName = "static"

// fallbackText is the translation-agnostic promise verse shown when
// every other source fails. The display must always show something.
const fallbackText = "For God so loved the world, that he gave his only begotten Son, " +
	"that whosoever believeth in him should not perish, but have everlasting life."

const fallbackTranslation = "kjv"

// staticSource is the terminal fallback: it always succeeds and its
// content is marked degraded.
type staticSource struct{}

// NewStatic creates the terminal fallback adapter.
func NewStatic() Source {
	return staticSource{}
}

func (staticSource) Name() string { return StaticName }

func (staticSource) Fetch(ctx context.Context, r ref.Reference, translation string) (Result, error) {
	return Result{
		Text:        fallbackText,
		Translation: fallbackTranslation,
		Degraded:    true,
	}, nil
}
