// Package types provides type definitions for structured data used throughout the resume-analyzer system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// Priority is the urgency tier of a recommendation
type Priority string

// Priority tiers, highest first
const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Section keys of ResumeSections
const (
	SectionContact    = "contact"
	SectionSummary    = "summary"
	SectionExperience = "experience"
	SectionSkills     = "skills"
	SectionEducation  = "education"
	SectionProjects   = "projects"
)

// SectionKeys lists every section key in output order
var SectionKeys = []string{
	SectionContact,
	SectionSummary,
	SectionExperience,
	SectionSkills,
	SectionEducation,
	SectionProjects,
}

// ResumeSections holds the heuristically segmented regions of a resume.
// Every value is at most 500 characters; an empty string means the section was not found.
type ResumeSections struct {
	Contact    string `json:"contact"`
	Summary    string `json:"summary"`
	Experience string `json:"experience"`
	Skills     string `json:"skills"`
	Education  string `json:"education"`
	Projects   string `json:"projects"`
}

// Get returns the value stored under a section key, or "" for an unknown key
func (s ResumeSections) Get(key string) string {
	switch key {
	case SectionContact:
		return s.Contact
	case SectionSummary:
		return s.Summary
	case SectionExperience:
		return s.Experience
	case SectionSkills:
		return s.Skills
	case SectionEducation:
		return s.Education
	case SectionProjects:
		return s.Projects
	default:
		return ""
	}
}

// Set stores a value under a section key. Unknown keys are ignored.
func (s *ResumeSections) Set(key, value string) {
	switch key {
	case SectionContact:
		s.Contact = value
	case SectionSummary:
		s.Summary = value
	case SectionExperience:
		s.Experience = value
	case SectionSkills:
		s.Skills = value
	case SectionEducation:
		s.Education = value
	case SectionProjects:
		s.Projects = value
	}
}

// KeywordComparison is the result of comparing resume vocabulary against a job description.
// Matched and Missing are truncated views (at most 10 and 15 entries) in rank order.
type KeywordComparison struct {
	Matched         []string `json:"matched"`
	Missing         []string `json:"missing"`
	MatchPercentage float64  `json:"match_percentage"`
}

// Recommendation is a prioritized, rule-triggered suggestion
type Recommendation struct {
	Priority    Priority `json:"priority"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Action      string   `json:"action"`
	// RuleID identifies the rule that emitted the recommendation
	RuleID string `json:"rule_id,omitempty"`
}

// AnalysisResult is the complete output of one resume/job comparison
type AnalysisResult struct {
	MatchPercentage float64          `json:"match_percentage"`
	MatchedKeywords []string         `json:"matched_keywords"`
	MissingKeywords []string         `json:"missing_keywords"`
	Recommendations []Recommendation `json:"recommendations"`
	ResumeSections  ResumeSections   `json:"resume_sections"`
}

// CountByPriority returns how many recommendations fall into each priority tier
func (r *AnalysisResult) CountByPriority() map[Priority]int {
	counts := make(map[Priority]int, 3)
	for _, rec := range r.Recommendations {
		counts[rec.Priority]++
	}
	return counts
}
