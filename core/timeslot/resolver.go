// Package timeslot maps wall-clock time to candidate scripture
// references and deterministically selects the book to display.
package timeslot

import (
	"time"

	"github.com/FocuswithJustin/ChronoVerse/core/errors"
)

// Format selects between 12-hour and 24-hour chapter derivation.
type Format string

const (
	// Format12 derives chapters on a 12-hour clock.
	Format12 Format = "12"
	// Format24 derives chapters on a 24-hour clock.
	Format24 Format = "24"
)

// ParseFormat validates a time format string.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case Format12, Format24:
		return Format(s), nil
	}
	return "", errors.NewValidation("timeFormat", "must be \"12\" or \"24\"")
}

// Candidate is a (chapter, verse) pair derived from wall-clock time,
// independent of any book.
type Candidate struct {
	Chapter int
	Verse   int
}

// Resolve maps the wall-clock hour and minute to a candidate reference.
// The verse is the minute. The second return is false when the minute
// calls for a book summary instead: minute 0 has no verse, and chapters
// rarely reach 50 verses, so minutes >= 50 skip validation entirely.
func Resolve(now time.Time, f Format) (Candidate, bool) {
	hour := now.Hour()
	minute := now.Minute()

	if minute == 0 || minute >= 50 {
		return Candidate{}, false
	}

	var chapter int
	switch f {
	case Format24:
		if hour == 0 {
			chapter = 24
		} else {
			chapter = hour
		}
	default: // 12-hour
		switch {
		case hour == 0:
			chapter = 12
		case hour <= 12:
			chapter = hour
		default:
			chapter = hour - 12
		}
	}

	return Candidate{Chapter: chapter, Verse: minute}, true
}
