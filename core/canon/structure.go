package canon

// Structure is the read-only versification table: for every book, the
// per-chapter maximum verse number. Built once at startup and never
// mutated afterwards.
type Structure struct {
	counts map[Book][]int
	total  int
}

// NewStructure builds the Structure from the compiled-in versification
// table covering all 66 books.
func NewStructure() *Structure {
	return NewStructureFrom(verseCounts)
}

// NewStructureFrom builds a Structure from an arbitrary dataset. Entries
// with no chapters or with non-positive verse counts are dropped so the
// invariants (chapter >= 1, max verse >= 1) hold for everything kept.
func NewStructureFrom(data map[Book][]int) *Structure {
	s := &Structure{counts: make(map[Book][]int, len(data))}
	for book, chapters := range data {
		if len(chapters) == 0 {
			continue
		}
		kept := make([]int, 0, len(chapters))
		valid := true
		for _, max := range chapters {
			if max < 1 {
				valid = false
				break
			}
			kept = append(kept, max)
		}
		if !valid {
			continue
		}
		s.counts[book] = kept
		s.total += sum(kept)
	}
	return s
}

func sum(xs []int) int {
	n := 0
	for _, x := range xs {
		n += x
	}
	return n
}

// HasBook reports whether the structure table covers the book.
func (s *Structure) HasBook(b Book) bool {
	_, ok := s.counts[b]
	return ok
}

// Chapters returns the number of chapters in a book, or 0 if the book is
// absent from the structure table.
func (s *Structure) Chapters(b Book) int {
	return len(s.counts[b])
}

// MaxVerse returns the maximum verse number of a chapter. The second
// return is false when the book or chapter is absent.
func (s *Structure) MaxVerse(b Book, chapter int) (int, bool) {
	chapters, ok := s.counts[b]
	if !ok || chapter < 1 || chapter > len(chapters) {
		return 0, false
	}
	return chapters[chapter-1], true
}

// VerseCount returns the number of verses the table records for a book,
// or 0 if the book is absent.
func (s *Structure) VerseCount(b Book) int {
	return sum(s.counts[b])
}

// TotalVerses returns the total verse count implied by the table.
// This is the denominator for completion percentages.
func (s *Structure) TotalVerses() int {
	return s.total
}
