package canon

import (
	"fmt"

	"github.com/FocuswithJustin/ChronoVerse/core/errors"
)

// Validator answers verse-existence questions against a Structure.
// It never clamps: an out-of-range verse yields ErrNotFound rather than
// a silently adjusted number, so callers can fall back to a book summary
// instead of showing a wrong reference.
type Validator struct {
	structure *Structure
}

// NewValidator creates a Validator backed by the given structure table.
func NewValidator(s *Structure) *Validator {
	return &Validator{structure: s}
}

// HasChapter reports whether a book contains a chapter. When the book is
// absent from the structure table, the static chapter-count estimate
// decides chapter existence (degraded mode).
func (v *Validator) HasChapter(b Book, chapter int) bool {
	if chapter < 1 {
		return false
	}
	if v.structure.HasBook(b) {
		return chapter <= v.structure.Chapters(b)
	}
	if est, ok := EstimatedChapters(b); ok {
		return chapter <= est
	}
	return false
}

// MaxVerse returns the maximum verse number of a chapter, or ErrNotFound
// when the chapter does not exist or the book has no structure data.
func (v *Validator) MaxVerse(b Book, chapter int) (int, error) {
	if max, ok := v.structure.MaxVerse(b, chapter); ok {
		return max, nil
	}
	return 0, errors.NewNotFound("chapter", fmt.Sprintf("%s %d", b, chapter))
}

// Validate returns verse unchanged if (book, chapter, verse) exists, and
// ErrNotFound otherwise. In degraded mode (book absent from the
// structure table) verse existence is unknown and treated as invalid.
func (v *Validator) Validate(b Book, chapter, verse int) (int, error) {
	if verse < 1 {
		return 0, errors.NewNotFound("verse", fmt.Sprintf("%s %d:%d", b, chapter, verse))
	}
	max, err := v.MaxVerse(b, chapter)
	if err != nil {
		return 0, err
	}
	if verse > max {
		return 0, errors.NewNotFound("verse", fmt.Sprintf("%s %d:%d", b, chapter, verse))
	}
	return verse, nil
}
