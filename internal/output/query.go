package output

import "strings"

// NormalizeQuery removes a shell-escaped "\!" outside string literals, which
// interactive shells leave behind when users type "!=" inside double quotes.
// The returned bool reports whether anything changed.
func NormalizeQuery(query string) (string, bool) {
	if !strings.Contains(query, `\!`) {
		return query, false
	}

	var b strings.Builder
	b.Grow(len(query))

	inString := false
	escaped := false
	changed := false

	for i := 0; i < len(query); i++ {
		ch := query[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			b.WriteByte(ch)
			continue
		}

		if ch == '"' {
			inString = true
		} else if ch == '\\' && i+1 < len(query) && query[i+1] == '!' {
			changed = true
			b.WriteByte('!')
			i++
			continue
		}
		b.WriteByte(ch)
	}

	if !changed {
		return query, false
	}
	return b.String(), true
}
