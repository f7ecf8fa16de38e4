// Package recommend produces prioritized, rule-based improvement suggestions for a resume.
package recommend

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/resume-analyzer/internal/types"
)

// Rule identifiers, in evaluation order
const (
	RuleMissingKeywords  = "missing_keywords"
	RuleSummary          = "summary"
	RuleQuantifiable     = "quantifiable_achievements"
	RuleActionVerbs      = "action_verbs"
	RuleATSCompatibility = "ats_compatibility"
	RuleExperience       = "experience"
	RuleSkills           = "skills"
	RuleEducation        = "education"
)

// missingKeywordsListed is how many missing keywords the recommendation names
const missingKeywordsListed = 5

// actionVerbs are matched as case-insensitive substrings of the resume text
var actionVerbs = []string{"led", "managed", "developed", "created", "improved", "designed", "implemented", "increased"}

var quantifiablePattern = regexp.MustCompile(`(?i)\d+%|\$\d+|increased|improved|reduced`)

// Input is everything the rules look at
type Input struct {
	ResumeText string
	JobText    string
	Sections   types.ResumeSections
	Matched    []string
	Missing    []string
}

// rule is one entry of the ordered rule table. check returns the recommendation
// to emit, or false when the rule does not fire.
type rule struct {
	id    string
	check func(in Input, th Thresholds) (types.Recommendation, bool)
}

var rules = []rule{
	{id: RuleMissingKeywords, check: checkMissingKeywords},
	{id: RuleSummary, check: checkSummary},
	{id: RuleQuantifiable, check: checkQuantifiable},
	{id: RuleActionVerbs, check: checkActionVerbs},
	{id: RuleATSCompatibility, check: checkATS},
	{id: RuleExperience, check: checkExperience},
	{id: RuleSkills, check: checkSkills},
	{id: RuleEducation, check: checkEducation},
}

// RuleIDs returns the rule identifiers in evaluation order
func RuleIDs() []string {
	ids := make([]string, len(rules))
	for i, r := range rules {
		ids[i] = r.id
	}
	return ids
}

func checkMissingKeywords(in Input, _ Thresholds) (types.Recommendation, bool) {
	if len(in.Missing) == 0 {
		return types.Recommendation{}, false
	}
	listed := in.Missing
	if len(listed) > missingKeywordsListed {
		listed = listed[:missingKeywordsListed]
	}
	return types.Recommendation{
		Priority:    types.PriorityHigh,
		Title:       "Add Missing Keywords",
		Description: fmt.Sprintf("Include these key terms from the job description: %s", strings.Join(listed, ", ")),
		Action:      "Add these skills/technologies to your resume where relevant",
	}, true
}

func checkSummary(in Input, th Thresholds) (types.Recommendation, bool) {
	if !tooShort(in.Sections.Summary, th.MinSummaryLength) {
		return types.Recommendation{}, false
	}
	return types.Recommendation{
		Priority:    types.PriorityHigh,
		Title:       "Add/Improve Summary",
		Description: "Your resume lacks a professional summary or objective",
		Action:      "Add a brief professional summary highlighting key skills and achievements",
	}, true
}

func checkQuantifiable(in Input, _ Thresholds) (types.Recommendation, bool) {
	if quantifiablePattern.MatchString(in.ResumeText) {
		return types.Recommendation{}, false
	}
	return types.Recommendation{
		Priority:    types.PriorityHigh,
		Title:       "Add Quantifiable Achievements",
		Description: "Resumes with metrics/numbers are more impactful",
		Action:      "Add percentages, dollar amounts, or quantifiable results to your accomplishments",
	}, true
}

func checkActionVerbs(in Input, th Thresholds) (types.Recommendation, bool) {
	if CountActionVerbs(in.ResumeText) >= th.MinActionVerbs {
		return types.Recommendation{}, false
	}
	return types.Recommendation{
		Priority:    types.PriorityMedium,
		Title:       "Use Strong Action Verbs",
		Description: "Limited use of powerful action verbs detected",
		Action:      "Replace weak verbs with action words like: led, managed, developed, created",
	}, true
}

func checkATS(in Input, _ Thresholds) (types.Recommendation, bool) {
	if !HasNonASCII(in.ResumeText) {
		return types.Recommendation{}, false
	}
	return types.Recommendation{
		Priority:    types.PriorityMedium,
		Title:       "ATS Compatibility",
		Description: "Special characters detected that may confuse ATS systems",
		Action:      "Use standard characters and fonts for ATS compatibility",
	}, true
}

func checkExperience(in Input, th Thresholds) (types.Recommendation, bool) {
	if !tooShort(in.Sections.Experience, th.MinExperienceLength) {
		return types.Recommendation{}, false
	}
	return types.Recommendation{
		Priority:    types.PriorityHigh,
		Title:       "Highlight Relevant Experience",
		Description: "Experience section is missing or too brief",
		Action:      "Add detailed work experience with achievements and responsibilities",
	}, true
}

func checkSkills(in Input, th Thresholds) (types.Recommendation, bool) {
	if !tooShort(in.Sections.Skills, th.MinSkillsLength) {
		return types.Recommendation{}, false
	}
	return types.Recommendation{
		Priority:    types.PriorityMedium,
		Title:       "Expand Skills Section",
		Description: "Skills section is missing or too brief",
		Action:      "List relevant technical and soft skills",
	}, true
}

func checkEducation(in Input, th Thresholds) (types.Recommendation, bool) {
	if !tooShort(in.Sections.Education, th.MinEducationLength) {
		return types.Recommendation{}, false
	}
	return types.Recommendation{
		Priority:    types.PriorityLow,
		Title:       "Add Education Details",
		Description: "Education section is missing or incomplete",
		Action:      "Include degree, institution, and graduation date",
	}, true
}

// CountActionVerbs counts how many distinct action verbs occur in the text.
// Matching is by substring, so "led" also counts inside "skilled".
func CountActionVerbs(text string) int {
	lower := strings.ToLower(text)
	count := 0
	for _, verb := range actionVerbs {
		if strings.Contains(lower, verb) {
			count++
		}
	}
	return count
}

// HasNonASCII reports whether any character falls outside the ASCII range
func HasNonASCII(text string) bool {
	for i := 0; i < len(text); i++ {
		if text[i] >= utf8.RuneSelf {
			return true
		}
	}
	return false
}

// tooShort reports whether a section is empty or shorter than min characters
func tooShort(section string, min int) bool {
	return section == "" || utf8.RuneCountInString(section) < min
}
