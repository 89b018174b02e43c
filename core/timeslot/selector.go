package timeslot

import (
	"encoding/binary"
	"time"

	"github.com/zeebo/blake3"

	"github.com/FocuswithJustin/ChronoVerse/core/canon"
)

// CandidateBook is one book that can host the requested chapter. Exact
// candidates contain the requested verse itself; non-exact candidates
// have the chapter but no valid verse for the request (Verse is 0;
// the validator never down-adjusts).
type CandidateBook struct {
	Book  canon.Book
	Verse int
	Exact bool
}

// Selector enumerates and ranks candidate books for a time-derived
// (chapter, verse) pair.
type Selector struct {
	validator *canon.Validator
}

// NewSelector creates a Selector backed by the given validator.
func NewSelector(v *canon.Validator) *Selector {
	return &Selector{validator: v}
}

// SelectBooks returns every book containing the requested chapter, exact
// matches first, canonical catalog order preserved within each group.
func (s *Selector) SelectBooks(chapter, verse int) []CandidateBook {
	var exact, rest []CandidateBook
	for _, b := range canon.Books {
		if !s.validator.HasChapter(b, chapter) {
			continue
		}
		if got, err := s.validator.Validate(b, chapter, verse); err == nil && got == verse {
			exact = append(exact, CandidateBook{Book: b, Verse: got, Exact: true})
			continue
		}
		rest = append(rest, CandidateBook{Book: b})
	}
	return append(exact, rest...)
}

// Pick chooses one candidate deterministically. Exact matches are
// preferred when any exist. The index couples the current minute to the
// calendar day, so the same minute-of-day favors a different book on
// different days while staying reproducible for a given instant.
func Pick(candidates []CandidateBook, now time.Time) (CandidateBook, bool) {
	if len(candidates) == 0 {
		return CandidateBook{}, false
	}
	pool := candidates
	if n := exactCount(candidates); n > 0 {
		pool = candidates[:n]
	}
	idx := (now.Hour() + now.Minute() + now.YearDay()) % len(pool)
	return pool[idx], true
}

func exactCount(candidates []CandidateBook) int {
	n := 0
	for _, c := range candidates {
		if !c.Exact {
			break
		}
		n++
	}
	return n
}

// SummaryBook picks the book whose summary stands in for a verse when
// the current minute has none. The choice is a BLAKE3 hash of the
// absolute minute slot, so it is stable within a minute, changes on
// rollover, and does not depend on any PRNG seeding contract.
func SummaryBook(now time.Time) canon.Book {
	slot := now.Unix() / 60

	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(slot))
	sum := blake3.Sum256(buf[:])

	idx := binary.BigEndian.Uint32(sum[:4]) % uint32(len(canon.Books))
	return canon.Books[idx]
}
