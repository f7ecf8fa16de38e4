// Package analysis runs the full resume analysis: keyword comparison, section
// segmentation and recommendations.
package analysis

import (
	"github.com/jonathan/resume-analyzer/internal/matching"
	"github.com/jonathan/resume-analyzer/internal/recommend"
	"github.com/jonathan/resume-analyzer/internal/sections"
	"github.com/jonathan/resume-analyzer/internal/textproc"
	"github.com/jonathan/resume-analyzer/internal/types"
)

// Analyzer holds the immutable collaborators of an analysis. It is safe for
// concurrent use.
type Analyzer struct {
	matcher *matching.Matcher
	engine  *recommend.Engine
}

// Options configures an Analyzer
type Options struct {
	// Resources supplies stopwords and word tokenization. Nil uses the defaults.
	Resources *textproc.Resources
	// Thresholds for the recommendation rules. Nil uses the defaults.
	Thresholds *recommend.Thresholds
}

// New creates an Analyzer
func New(opts Options) *Analyzer {
	thresholds := recommend.DefaultThresholds()
	if opts.Thresholds != nil {
		thresholds = *opts.Thresholds
	}
	return &Analyzer{
		matcher: matching.NewMatcher(textproc.NewTokenizer(opts.Resources)),
		engine:  recommend.NewEngine(thresholds),
	}
}

// Default creates an Analyzer with the default resources and thresholds
func Default() *Analyzer {
	return New(Options{})
}

// Analyze compares a resume against a job description. It never fails: empty
// inputs produce a zero match and the recommendations that apply.
func (a *Analyzer) Analyze(resumeText, jobText string) *types.AnalysisResult {
	comparison := a.matcher.Compare(resumeText, jobText)
	resumeSections := sections.Segment(resumeText)

	recs := a.engine.Generate(recommend.Input{
		ResumeText: resumeText,
		JobText:    jobText,
		Sections:   resumeSections,
		Matched:    comparison.Matched,
		Missing:    comparison.Missing,
	})

	return &types.AnalysisResult{
		MatchPercentage: comparison.MatchPercentage,
		MatchedKeywords: comparison.Matched,
		MissingKeywords: comparison.Missing,
		Recommendations: recs,
		ResumeSections:  resumeSections,
	}
}
