// Package slug builds URL-safe identifiers for posts, categories, and tags.
package slug

import (
	"strings"
	"unicode"
)

// Make lowercases s, transliterates a handful of common diacritics, and
// collapses everything else to single hyphens.
func Make(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))

	var b strings.Builder
	lastHyphen := true // suppress leading hyphen
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		case replacements[r] != "":
			b.WriteString(replacements[r])
			lastHyphen = false
		case unicode.IsSpace(r), r == '-', r == '_', r == '/':
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}

	return strings.TrimRight(b.String(), "-")
}

var replacements = map[rune]string{
	'ë': "e",
	'ç': "c",
	'ä': "a",
	'ö': "o",
	'ü': "u",
	'ß': "ss",
	'é': "e",
	'è': "e",
	'à': "a",
}
