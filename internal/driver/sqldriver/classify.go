package sqldriver

import (
	"strings"
	"unicode"
)

// rowKeywords lists the leading keywords of statements that can hand back
// cursors: queries and anonymous blocks that may return implicit results.
var rowKeywords = map[string]bool{
	"SELECT":  true,
	"WITH":    true,
	"DECLARE": true,
	"BEGIN":   true,
}

// returnsRows reports whether query starts with a keyword from rowKeywords.
// Only the first keyword is looked at; the text itself is sent unchanged.
func returnsRows(query string) bool {
	return rowKeywords[leadingKeyword(query)]
}

// leadingKeyword returns the first word of query in upper case, skipping
// whitespace, comments and opening parentheses.
func leadingKeyword(query string) string {
	s := query
	for {
		s = strings.TrimLeftFunc(s, func(r rune) bool {
			return unicode.IsSpace(r) || r == '('
		})
		switch {
		case strings.HasPrefix(s, "--"):
			i := strings.IndexByte(s, '\n')
			if i < 0 {
				return ""
			}
			s = s[i+1:]
		case strings.HasPrefix(s, "/*"):
			i := strings.Index(s[2:], "*/")
			if i < 0 {
				return ""
			}
			s = s[i+4:]
		default:
			end := strings.IndexFunc(s, func(r rune) bool {
				return !unicode.IsLetter(r) && r != '_'
			})
			if end < 0 {
				end = len(s)
			}
			return strings.ToUpper(s[:end])
		}
	}
}
