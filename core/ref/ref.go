// Package ref parses and formats human-readable scripture references
// such as "John 3:16", "1 John 3:16", or "Song of Solomon 2".
package ref

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/FocuswithJustin/ChronoVerse/core/canon"
	"github.com/FocuswithJustin/ChronoVerse/core/errors"
)

// Reference identifies a single verse, or a whole chapter when Verse
// is 0.
type Reference struct {
	Book    canon.Book `json:"book"`
	Chapter int        `json:"chapter"`
	Verse   int        `json:"verse,omitempty"`
}

// String renders the reference in display form ("John 3:16").
func (r Reference) String() string {
	var sb strings.Builder
	sb.WriteString(string(r.Book))
	sb.WriteString(" ")
	sb.WriteString(strconv.Itoa(r.Chapter))
	if r.Verse > 0 {
		sb.WriteString(":")
		sb.WriteString(strconv.Itoa(r.Verse))
	}
	return sb.String()
}

// Key renders the reference in compact key form ("John.3.16"), used for
// log fields and statistics keys.
func (r Reference) Key() string {
	if r.Verse > 0 {
		return fmt.Sprintf("%s.%d.%d", condense(r.Book), r.Chapter, r.Verse)
	}
	return fmt.Sprintf("%s.%d", condense(r.Book), r.Chapter)
}

func condense(b canon.Book) string {
	return strings.ReplaceAll(string(b), " ", "")
}

// refGrammar is the participle grammar for human references.
// Examples: "John 3:16", "1 John 3:16", "Song of Solomon 2:1", "Psalm 23"
//
//nolint:govet // participle grammar tags are not standard struct tags
type refGrammar struct {
	Prefix  *int     `parser:"@Int?"`
	Words   []string `parser:"@Word+"`
	Chapter int      `parser:"@Int"`
	Verse   *int     `parser:"( \":\" @Int )?"`
}

var refLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Int", Pattern: `[0-9]+`},
	{Name: "Word", Pattern: `[A-Za-z]+`},
	{Name: "Punct", Pattern: `:`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var refParser = participle.MustBuild[refGrammar](
	participle.Lexer(refLexer),
	participle.Elide("Whitespace"),
)

// bookAliases maps lowercase display names and common variants to
// canonical books.
var bookAliases = func() map[string]canon.Book {
	m := make(map[string]canon.Book, len(canon.Books)+8)
	for _, b := range canon.Books {
		m[strings.ToLower(string(b))] = b
	}
	m["psalm"] = "Psalms"
	m["song of songs"] = "Song of Solomon"
	m["canticles"] = "Song of Solomon"
	m["revelations"] = "Revelation"
	return m
}()

// Parse parses a human-readable reference string. The verse part is
// optional; "Psalm 23" yields a whole-chapter reference.
func Parse(s string) (Reference, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Reference{}, errors.NewParse("reference", s, "empty reference string")
	}

	parsed, err := refParser.ParseString("", s)
	if err != nil {
		return Reference{}, &errors.ParseError{
			Format:  "reference",
			Input:   s,
			Message: "expected BOOK CHAPTER[:VERSE]",
			Err:     err,
		}
	}

	name := strings.Join(parsed.Words, " ")
	if parsed.Prefix != nil {
		name = fmt.Sprintf("%d %s", *parsed.Prefix, name)
	}
	book, ok := bookAliases[strings.ToLower(name)]
	if !ok {
		return Reference{}, errors.NewNotFound("book", name)
	}

	r := Reference{Book: book, Chapter: parsed.Chapter}
	if parsed.Verse != nil {
		r.Verse = *parsed.Verse
	}
	return r, nil
}
