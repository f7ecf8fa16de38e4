package recommend

import (
	"fmt"

	"github.com/jonathan/resume-analyzer/internal/types"
)

// Thresholds holds the minimum lengths and counts the rules compare against.
// Lengths are in characters.
type Thresholds struct {
	MinSummaryLength    int `json:"min_summary_length" yaml:"min_summary_length" validate:"gte=0"`
	MinExperienceLength int `json:"min_experience_length" yaml:"min_experience_length" validate:"gte=0"`
	MinSkillsLength     int `json:"min_skills_length" yaml:"min_skills_length" validate:"gte=0"`
	MinEducationLength  int `json:"min_education_length" yaml:"min_education_length" validate:"gte=0"`
	MinActionVerbs      int `json:"min_action_verbs" yaml:"min_action_verbs" validate:"gte=0"`
}

// DefaultThresholds returns the standard rule thresholds
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinSummaryLength:    50,
		MinExperienceLength: 50,
		MinSkillsLength:     30,
		MinEducationLength:  30,
		MinActionVerbs:      3,
	}
}

// Validate checks that no threshold is negative
func (t Thresholds) Validate() error {
	fields := []struct {
		name  string
		value int
	}{
		{"min_summary_length", t.MinSummaryLength},
		{"min_experience_length", t.MinExperienceLength},
		{"min_skills_length", t.MinSkillsLength},
		{"min_education_length", t.MinEducationLength},
		{"min_action_verbs", t.MinActionVerbs},
	}
	for _, f := range fields {
		if f.value < 0 {
			return fmt.Errorf("threshold %s must not be negative, got %d", f.name, f.value)
		}
	}
	return nil
}

// Engine evaluates the rule table
type Engine struct {
	thresholds Thresholds
}

// NewEngine creates an Engine with the given thresholds
func NewEngine(thresholds Thresholds) *Engine {
	return &Engine{thresholds: thresholds}
}

// Thresholds returns the thresholds the engine evaluates with
func (e *Engine) Thresholds() Thresholds {
	return e.thresholds
}

// Generate evaluates every rule independently and returns the recommendations
// that fired, in rule-table order.
func (e *Engine) Generate(in Input) []types.Recommendation {
	recs := []types.Recommendation{}
	for _, r := range rules {
		rec, fired := r.check(in, e.thresholds)
		if !fired {
			continue
		}
		rec.RuleID = r.id
		recs = append(recs, rec)
	}
	return recs
}
