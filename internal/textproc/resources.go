// Package textproc turns raw text into normalized keyword tokens and frequency tables.
package textproc

import (
	"bufio"
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/jdkato/prose/tokenize"
)

//go:embed stopwords_english.txt
var englishStopwords string

// WordTokenizer splits text into word-level tokens
type WordTokenizer interface {
	Tokenize(text string) []string
}

// Resources is the linguistic resource bundle used by a Tokenizer.
// It is built once at startup and is read-only afterwards, so a single
// instance can be shared by any number of concurrent analyses.
type Resources struct {
	stopwords map[string]struct{}
	words     WordTokenizer
}

// NewResources builds a resource bundle from a stopword list and a word tokenizer.
// Stopwords are lowercased and trimmed; blank entries are skipped.
func NewResources(stopwords []string, words WordTokenizer) (*Resources, error) {
	if words == nil {
		return nil, &ResourceError{Message: "word tokenizer is required"}
	}

	set := make(map[string]struct{}, len(stopwords))
	for _, w := range stopwords {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" {
			continue
		}
		set[w] = struct{}{}
	}

	return &Resources{stopwords: set, words: words}, nil
}

// DefaultResources returns the English stopword list paired with the Penn Treebank word tokenizer
func DefaultResources() *Resources {
	res, err := NewResources(parseStopwords(englishStopwords), tokenize.NewTreebankWordTokenizer())
	if err != nil {
		// Both inputs are compiled in; this cannot fail.
		panic(err)
	}
	return res
}

// LoadResources reads a stopword file (one word per line, '#' starts a comment line)
// and pairs it with the default word tokenizer. An empty path yields DefaultResources.
func LoadResources(stopwordsPath string) (*Resources, error) {
	if stopwordsPath == "" {
		return DefaultResources(), nil
	}

	data, err := os.ReadFile(stopwordsPath)
	if err != nil {
		return nil, &ResourceError{
			Message: fmt.Sprintf("failed to read stopword file %s", stopwordsPath),
			Cause:   err,
		}
	}

	words := parseStopwords(string(data))
	if len(words) == 0 {
		return nil, &ResourceError{Message: fmt.Sprintf("stopword file %s contains no words", stopwordsPath)}
	}

	return NewResources(words, tokenize.NewTreebankWordTokenizer())
}

// IsStopword reports whether a lowercased token is in the stopword set
func (r *Resources) IsStopword(token string) bool {
	_, ok := r.stopwords[token]
	return ok
}

// StopwordCount returns the size of the stopword set
func (r *Resources) StopwordCount() int {
	return len(r.stopwords)
}

func parseStopwords(content string) []string {
	var words []string
	scanner := bufio.NewScanner(strings.NewReader(content))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words = append(words, line)
	}
	return words
}
