// Package chunker splits normalized document text into overlapping word
// windows. Windows respect sentence boundaries where possible so that no
// semantic unit is fully severed at a chunk edge.
package chunker

import (
	"fmt"
	"regexp"
	"strings"
)

// Chunk is one window of a document's text. Index is the 0-based position
// within the document.
type Chunk struct {
	Text  string
	Index int
}

// Chunker produces deterministic overlapping windows of size words with
// overlap words shared between consecutive chunks.
type Chunker struct {
	size    int
	overlap int
}

// New validates the window parameters. overlap must be smaller than size.
func New(size, overlap int) (*Chunker, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("chunk overlap must be in [0, size), got %d for size %d", overlap, size)
	}
	return &Chunker{size: size, overlap: overlap}, nil
}

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	nonASCIIRe   = regexp.MustCompile(`[^\x00-\x7F]+`)
	paragraphRe  = regexp.MustCompile(`\n{2,}`)
)

// Normalize collapses whitespace and strips non-ASCII junk. The normalized
// form is the reference text for the coverage invariant: concatenating the
// non-overlapping portions of all chunks reconstructs it.
func Normalize(text string) string {
	text = nonASCIIRe.ReplaceAllString(text, " ")
	text = whitespaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// Split chunks already-normalized text. Returns no chunks for empty input and
// at least one chunk for any non-empty input. Every chunk holds at most size
// words; consecutive chunks share exactly overlap words.
func (c *Chunker) Split(text string) []Chunk {
	if text == "" {
		return nil
	}

	var chunks []Chunk
	var current []string

	for _, sentence := range splitSentences(text) {
		current = append(current, strings.Fields(sentence)...)

		for len(current) >= c.size {
			chunks = append(chunks, Chunk{
				Text:  strings.Join(current[:c.size], " "),
				Index: len(chunks),
			})
			current = current[c.size-c.overlap:]
		}
	}

	// Trailing words shorter than a full window. After an emit exactly overlap
	// words remain, so a tail of that length carries no new content.
	if len(current) > 0 && (len(chunks) == 0 || len(current) > c.overlap) {
		chunks = append(chunks, Chunk{Text: strings.Join(current, " "), Index: len(chunks)})
	}

	return chunks
}

// splitSentences breaks text into sentence units: paragraph breaks first, then
// sentence-ending punctuation followed by whitespace.
func splitSentences(text string) []string {
	var sentences []string
	for _, para := range paragraphRe.Split(text, -1) {
		sentences = append(sentences, splitOnTerminators(para)...)
	}
	return sentences
}

func splitOnTerminators(s string) []string {
	var out []string
	start := 0
	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if (r == '.' || r == '!' || r == '?') && i+1 < len(runes) && isSpace(runes[i+1]) {
			part := strings.TrimSpace(string(runes[start : i+1]))
			if part != "" {
				out = append(out, part)
			}
			start = i + 1
		}
	}
	if tail := strings.TrimSpace(string(runes[start:])); tail != "" {
		out = append(out, tail)
	}
	return out
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}
