package lexical

import (
	"regexp"
	"strings"
)

var tokenRe = regexp.MustCompile(`\w+`)

// Tokenize lowercases text and splits it into alphanumeric terms, stripping
// punctuation. Query text and chunk text go through the same path so that
// ingest-time and query-time terms always align.
func Tokenize(text string) []string {
	return tokenRe.FindAllString(strings.ToLower(text), -1)
}
