package search

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// stopwords dropped from user queries. Keeping the list short on purpose:
// catalog names are terse and over-filtering hurts recall more than a
// stray "the" hurts precision.
var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "of": {}, "in": {}, "on": {},
	"for": {}, "and": {}, "or": {}, "to": {}, "is": {}, "me": {},
	"please": {}, "send": {}, "give": {}, "find": {}, "movie": {}, "file": {},
}

// Tokenize turns a free-form query into search keywords: NFKC folding,
// lowercase, split on anything that is not a letter or digit, stopwords
// and duplicates removed. Order of first appearance is preserved.
func Tokenize(query string) []string {
	folded := strings.ToLower(norm.NFKC.String(query))

	fields := strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	seen := make(map[string]struct{}, len(fields))
	keywords := make([]string, 0, len(fields))
	for _, field := range fields {
		if _, stop := stopwords[field]; stop {
			continue
		}
		if _, dup := seen[field]; dup {
			continue
		}
		seen[field] = struct{}{}
		keywords = append(keywords, field)
	}

	return keywords
}
