// Package textutil provides the stateless text tools: upper-casing and
// word, character and sentence counting.
package textutil

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Unicode-aware stand-ins for \w and \s. Go's \w, \s and \b are ASCII-only.
const (
	wordClass  = `\p{L}\p{N}_`
	spaceClass = `\t\n\v\f\r \x{1c}-\x{1f}\x{85}\p{Z}`
)

var (
	// wordRegex matches a word character followed by word characters,
	// apostrophes or hyphens. Every maximal run of [\w'-] containing a word
	// character yields exactly one match, the same count as the
	// boundary-anchored form \b\w[\w'-]*\b.
	wordRegex = regexp.MustCompile(`[` + wordClass + `][` + wordClass + `'-]*`)

	// sentenceRegex is a naive segmentation: from a non-space character to
	// the nearest terminator that is followed by whitespace or the end.
	sentenceRegex = regexp.MustCompile(`[^` + spaceClass + `].*?[.!?](?:[` + spaceClass + `]|$)`)
)

// Counts holds the result of Count.
type Counts struct {
	Words     int
	Chars     int
	Sentences int
}

// Uppercase returns text with full Unicode upper-case mapping applied.
func Uppercase(text string) string {
	if text == "" {
		return ""
	}
	// Casers are stateful and must not be shared between goroutines.
	return cases.Upper(language.Und).String(text)
}

// Count returns word, character and sentence counts for text after
// stripping surrounding whitespace. Chars counts code points.
func Count(text string) Counts {
	stripped := strings.TrimFunc(text, IsSpace)
	if stripped == "" {
		return Counts{}
	}

	return Counts{
		Words:     len(wordRegex.FindAllStringIndex(stripped, -1)),
		Chars:     utf8.RuneCountInString(stripped),
		Sentences: len(sentenceRegex.FindAllStringIndex(stripped, -1)),
	}
}

// IsSpace reports whether r is whitespace: unicode.IsSpace plus the ASCII
// information separators U+001C to U+001F.
func IsSpace(r rune) bool {
	return unicode.IsSpace(r) || (r >= 0x1c && r <= 0x1f)
}
