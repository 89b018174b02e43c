// Package canon provides the canonical book catalog, the Bible structure
// table (chapter and verse counts), and verse-existence validation.
package canon

// Book is one of the 66 canonical book names.
type Book string

// Books lists the 66 canonical books in canonical order. The order is
// load-bearing: deterministic book rotation indexes into this slice.
var Books = []Book{
	"Genesis", "Exodus", "Leviticus", "Numbers", "Deuteronomy",
	"Joshua", "Judges", "Ruth", "1 Samuel", "2 Samuel",
	"1 Kings", "2 Kings", "1 Chronicles", "2 Chronicles", "Ezra",
	"Nehemiah", "Esther", "Job", "Psalms", "Proverbs",
	"Ecclesiastes", "Song of Solomon", "Isaiah", "Jeremiah", "Lamentations",
	"Ezekiel", "Daniel", "Hosea", "Joel", "Amos",
	"Obadiah", "Jonah", "Micah", "Nahum", "Habakkuk",
	"Zephaniah", "Haggai", "Zechariah", "Malachi",
	"Matthew", "Mark", "Luke", "John", "Acts",
	"Romans", "1 Corinthians", "2 Corinthians", "Galatians", "Ephesians",
	"Philippians", "Colossians", "1 Thessalonians", "2 Thessalonians",
	"1 Timothy", "2 Timothy", "Titus", "Philemon", "Hebrews",
	"James", "1 Peter", "2 Peter", "1 John", "2 John", "3 John",
	"Jude", "Revelation",
}

var bookIndex = func() map[Book]int {
	m := make(map[Book]int, len(Books))
	for i, b := range Books {
		m[b] = i
	}
	return m
}()

// Index returns the canonical position of a book (0-based) and whether
// the name is a canonical book at all.
func Index(b Book) (int, bool) {
	i, ok := bookIndex[b]
	return i, ok
}

// IsBook reports whether name is a canonical book name.
func IsBook(name string) bool {
	_, ok := bookIndex[Book(name)]
	return ok
}

// At returns the book at canonical position i, wrapping around so any
// non-negative index is usable for rotation.
func At(i int) Book {
	return Books[i%len(Books)]
}
