package normalize

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// TransformKey returns the output name for a raw property name.
//
// Without camelcase the name is returned unchanged. With camelcase the name is
// split into words at every rune that is not a letter or digit, where a lower-case
// letter or digit is followed by an upper- or title-case one ("fooBar") and where
// an upper-case run meets a lower-case letter ("XMLHttp"). The first word is
// lower-cased, later words get a title-case first letter and lower-case rest, and
// the words are joined without separators.
func TransformKey(raw string, camelcase bool) string {
	if !camelcase {
		return raw
	}

	words := splitWords(raw)
	if len(words) == 0 {
		return ""
	}

	// Casers hold state and are not safe to share between goroutines.
	lower := cases.Lower(language.Und)
	title := cases.Title(language.Und, cases.NoLower)

	var b strings.Builder
	b.Grow(len(raw))
	b.WriteString(lower.String(words[0]))
	for _, w := range words[1:] {
		first, size := utf8.DecodeRuneInString(w)
		b.WriteString(title.String(string(first)))
		b.WriteString(lower.String(w[size:]))
	}
	return b.String()
}

func splitWords(s string) []string {
	runes := []rune(s)
	var (
		words []string
		cur   []rune
	)
	flush := func() {
		if len(cur) > 0 {
			words = append(words, string(cur))
			cur = cur[:0]
		}
	}

	for i, r := range runes {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			flush()
			continue
		}
		if len(cur) > 0 && (unicode.IsUpper(r) || unicode.IsTitle(r)) {
			prev := runes[i-1]
			switch {
			case unicode.IsLower(prev), unicode.IsDigit(prev):
				flush()
			case unicode.IsUpper(prev) && i+1 < len(runes) && unicode.IsLower(runes[i+1]):
				flush()
			}
		}
		cur = append(cur, r)
	}
	flush()

	return words
}
