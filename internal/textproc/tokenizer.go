package textproc

import (
	"regexp"
	"strings"
)

// minTokenLength is the shortest token kept; anything of length 2 or less is dropped
const minTokenLength = 3

// disallowedChars matches everything except lowercase letters, digits, whitespace, '+' and '#'.
// '+' and '#' survive so that names like "c++" keep their symbols.
var disallowedChars = regexp.MustCompile(`[^a-z0-9\s+#]`)

// Tokenizer normalizes raw text into keyword tokens
type Tokenizer struct {
	res *Resources
}

// NewTokenizer creates a Tokenizer backed by the given resources.
// A nil bundle falls back to DefaultResources.
func NewTokenizer(res *Resources) *Tokenizer {
	if res == nil {
		res = DefaultResources()
	}
	return &Tokenizer{res: res}
}

// Normalize lowercases the text, replaces disallowed characters with spaces,
// word-tokenizes the result and drops stopwords and short tokens.
// Occurrence order and duplicates are preserved.
func (t *Tokenizer) Normalize(text string) []string {
	tokens := []string{}
	if text == "" {
		return tokens
	}

	cleaned := disallowedChars.ReplaceAllString(strings.ToLower(text), " ")

	for _, tok := range t.res.words.Tokenize(cleaned) {
		if len(tok) < minTokenLength {
			continue
		}
		if t.res.IsStopword(tok) {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

// Frequencies normalizes text and counts the resulting tokens
func (t *Tokenizer) Frequencies(text string) *FrequencyTable {
	return NewFrequencyTable(t.Normalize(text))
}
