package canon

import (
	"errors"
	"testing"

	cverrors "github.com/FocuswithJustin/ChronoVerse/core/errors"
)

func TestBooks_CatalogShape(t *testing.T) {
	if len(Books) != 66 {
		t.Fatalf("len(Books) = %d; want 66", len(Books))
	}
	if Books[0] != "Genesis" {
		t.Errorf("Books[0] = %q; want Genesis", Books[0])
	}
	if Books[65] != "Revelation" {
		t.Errorf("Books[65] = %q; want Revelation", Books[65])
	}

	seen := make(map[Book]bool)
	for _, b := range Books {
		if seen[b] {
			t.Errorf("duplicate book %q", b)
		}
		seen[b] = true
	}
}

func TestIndex(t *testing.T) {
	tests := []struct {
		book Book
		want int
	}{
		{"Genesis", 0},
		{"Psalms", 18},
		{"Matthew", 39},
		{"Revelation", 65},
	}
	for _, tt := range tests {
		got, ok := Index(tt.book)
		if !ok || got != tt.want {
			t.Errorf("Index(%q) = %d, %v; want %d, true", tt.book, got, ok, tt.want)
		}
	}
	if _, ok := Index("Gospel of Thomas"); ok {
		t.Error("Index should reject non-canonical books")
	}
}

func TestAt_Wraps(t *testing.T) {
	if At(0) != "Genesis" {
		t.Errorf("At(0) = %q", At(0))
	}
	if At(66) != "Genesis" {
		t.Errorf("At(66) = %q; want wrap to Genesis", At(66))
	}
}

func TestStructure_Coverage(t *testing.T) {
	s := NewStructure()
	for _, b := range Books {
		if !s.HasBook(b) {
			t.Errorf("structure missing book %q", b)
		}
		est, ok := EstimatedChapters(b)
		if !ok {
			t.Errorf("estimate table missing book %q", b)
			continue
		}
		if got := s.Chapters(b); got != est {
			t.Errorf("Chapters(%q) = %d; estimate table says %d", b, got, est)
		}
	}
}

func TestStructure_SpotChecks(t *testing.T) {
	s := NewStructure()
	tests := []struct {
		book    Book
		chapter int
		max     int
	}{
		{"Genesis", 1, 31},
		{"Psalms", 23, 6},
		{"Psalms", 119, 176},
		{"John", 3, 36},
		{"John", 11, 57},
		{"Obadiah", 1, 21},
		{"Esther", 10, 3},
		{"Revelation", 22, 21},
	}
	for _, tt := range tests {
		got, ok := s.MaxVerse(tt.book, tt.chapter)
		if !ok || got != tt.max {
			t.Errorf("MaxVerse(%q, %d) = %d, %v; want %d, true", tt.book, tt.chapter, got, ok, tt.max)
		}
	}
}

func TestStructure_Invariants(t *testing.T) {
	s := NewStructure()
	for _, b := range Books {
		for ch := 1; ch <= s.Chapters(b); ch++ {
			max, ok := s.MaxVerse(b, ch)
			if !ok || max < 1 {
				t.Fatalf("MaxVerse(%q, %d) = %d, %v; want >= 1", b, ch, max, ok)
			}
		}
	}
	// The canonical Bible has a little over 31,000 verses.
	if total := s.TotalVerses(); total < 31000 || total > 31200 {
		t.Errorf("TotalVerses() = %d; want ~31100", total)
	}
}

func TestStructureFrom_DropsInvalidEntries(t *testing.T) {
	s := NewStructureFrom(map[Book][]int{
		"Genesis": {31, 25},
		"Exodus":  {},
		"John":    {51, 0, 36},
	})
	if !s.HasBook("Genesis") {
		t.Error("Genesis should be kept")
	}
	if s.HasBook("Exodus") {
		t.Error("empty chapter list should be dropped")
	}
	if s.HasBook("John") {
		t.Error("non-positive verse count should drop the book")
	}
	if s.TotalVerses() != 56 {
		t.Errorf("TotalVerses() = %d; want 56", s.TotalVerses())
	}
}

func TestValidator_Validate(t *testing.T) {
	v := NewValidator(NewStructure())

	tests := []struct {
		book    Book
		chapter int
		verse   int
		wantOK  bool
	}{
		{"John", 3, 16, true},
		{"Psalms", 119, 176, true},
		{"Psalms", 119, 177, false},
		{"John", 3, 37, false},
		{"John", 22, 1, false},
		{"Genesis", 0, 1, false},
		{"Genesis", 1, 0, false},
		{"Gospel of Thomas", 1, 1, false},
	}
	for _, tt := range tests {
		got, err := v.Validate(tt.book, tt.chapter, tt.verse)
		if tt.wantOK {
			if err != nil {
				t.Errorf("Validate(%q, %d, %d) error: %v", tt.book, tt.chapter, tt.verse, err)
				continue
			}
			// Never adjusts: the returned verse is the requested one.
			if got != tt.verse {
				t.Errorf("Validate(%q, %d, %d) = %d; want %d", tt.book, tt.chapter, tt.verse, got, tt.verse)
			}
		} else if err == nil {
			t.Errorf("Validate(%q, %d, %d) = %d; want error", tt.book, tt.chapter, tt.verse, got)
		} else if !errors.Is(err, cverrors.ErrNotFound) {
			t.Errorf("Validate(%q, %d, %d) error = %v; want ErrNotFound", tt.book, tt.chapter, tt.verse, err)
		}
	}
}

func TestValidator_DegradedMode(t *testing.T) {
	// Structure table missing John entirely; the chapter estimate decides
	// chapter existence, verse existence is treated as unknown/invalid.
	v := NewValidator(NewStructureFrom(map[Book][]int{
		"Genesis": {31, 25},
	}))

	if !v.HasChapter("John", 21) {
		t.Error("HasChapter should fall back to the estimate table")
	}
	if v.HasChapter("John", 22) {
		t.Error("estimate table caps John at 21 chapters")
	}
	if _, err := v.Validate("John", 3, 16); err == nil {
		t.Error("verse existence is unknown in degraded mode; want NotFound")
	}
}

func TestValidator_MaxVerse(t *testing.T) {
	v := NewValidator(NewStructure())
	max, err := v.MaxVerse("Jude", 1)
	if err != nil || max != 25 {
		t.Errorf("MaxVerse(Jude, 1) = %d, %v; want 25, nil", max, err)
	}
	if _, err := v.MaxVerse("Jude", 2); !errors.Is(err, cverrors.ErrNotFound) {
		t.Errorf("MaxVerse(Jude, 2) error = %v; want ErrNotFound", err)
	}
}
