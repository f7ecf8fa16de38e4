// Package matching compares the keyword vocabulary of a resume against a job description.
package matching

import (
	"math"

	"github.com/jonathan/resume-analyzer/internal/textproc"
	"github.com/jonathan/resume-analyzer/internal/types"
)

const (
	// TopKeywords is how many of the most frequent job keywords are considered
	TopKeywords = 50
	// MaxMatched caps the matched keywords reported
	MaxMatched = 10
	// MaxMissing caps the missing keywords reported
	MaxMissing = 15
)

// Matcher scores keyword overlap between two texts
type Matcher struct {
	tokenizer *textproc.Tokenizer
}

// NewMatcher creates a Matcher. A nil tokenizer uses the default resources.
func NewMatcher(tokenizer *textproc.Tokenizer) *Matcher {
	if tokenizer == nil {
		tokenizer = textproc.NewTokenizer(nil)
	}
	return &Matcher{tokenizer: tokenizer}
}

// Compare ranks the job keywords by frequency, keeps the top TopKeywords and
// partitions them by presence in the resume.
func (m *Matcher) Compare(resumeText, jobText string) types.KeywordComparison {
	resumeFreq := m.tokenizer.Frequencies(resumeText)
	jobFreq := m.tokenizer.Frequencies(jobText)

	top := jobFreq.MostCommon(TopKeywords)

	matched := []string{}
	missing := []string{}
	for _, entry := range top {
		if resumeFreq.Contains(entry.Token) {
			matched = append(matched, entry.Token)
		} else {
			missing = append(missing, entry.Token)
		}
	}

	result := types.KeywordComparison{
		MatchPercentage: Percentage(len(matched), len(top)),
		Matched:         limit(matched, MaxMatched),
		Missing:         limit(missing, MaxMissing),
	}
	return result
}

// Percentage returns matched/total*100 clamped to [0, 100] and rounded to one decimal
// with halves going to the even digit (6.25 becomes 6.2).
// A zero total yields 0.
func Percentage(matched, total int) float64 {
	if total <= 0 {
		return 0
	}
	pct := float64(matched) / float64(total) * 100
	pct = math.Max(0, math.Min(pct, 100))
	return math.RoundToEven(pct*10) / 10
}

func limit(keywords []string, n int) []string {
	if len(keywords) > n {
		return keywords[:n]
	}
	return keywords
}
