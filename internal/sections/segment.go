// Package sections locates labeled regions (summary, experience, skills, ...) in raw resume text.
package sections

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/resume-analyzer/internal/types"
)

// MaxSectionLength is the maximum number of characters kept per section
const MaxSectionLength = 500

// headerRule maps a section key to the header keywords that open it. Only the
// boundary keyword ends other sections: "work" opens experience but a summary
// mentioning "network" runs on.
type headerRule struct {
	key      string
	keywords []string
	boundary string
}

// headerRules lists every header-detected section. Keywords match as plain
// substrings of the lowercased text, so "work" also matches inside "network".
var headerRules = []headerRule{
	{key: types.SectionSummary, keywords: []string{"summary", "profile", "objective"}, boundary: "summary"},
	{key: types.SectionExperience, keywords: []string{"experience", "work"}, boundary: "experience"},
	{key: types.SectionSkills, keywords: []string{"skills", "technical"}, boundary: "skills"},
	{key: types.SectionEducation, keywords: []string{"education", "degree"}, boundary: "education"},
	{key: types.SectionProjects, keywords: []string{"projects"}, boundary: "projects"},
}

var (
	headerPattern    *regexp.Regexp
	keywordToSection map[string]string
	boundaryKeywords map[string]bool
)

func init() {
	keywordToSection = make(map[string]string)
	boundaryKeywords = make(map[string]bool)
	var alternation []string
	for _, rule := range headerRules {
		boundaryKeywords[rule.boundary] = true
		for _, kw := range rule.keywords {
			keywordToSection[kw] = rule.key
			alternation = append(alternation, regexp.QuoteMeta(kw))
		}
	}
	headerPattern = regexp.MustCompile(strings.Join(alternation, "|"))
}

// boundary is one header keyword occurrence in the lowercased text
type boundary struct {
	start   int
	end     int
	section string
	closes  bool // the keyword is its section's boundary keyword
}

// Segment splits resume text into sections.
//
// Every header keyword occurrence is located in a single pass. A section opens at
// the first occurrence of one of its own keywords and runs until the next occurrence
// of another section's boundary keyword, or the end of the text. Captured text is
// lowercased, trimmed and capped at MaxSectionLength characters. Sections whose
// header never appears are left empty. The contact section is filled from contact
// details found anywhere in the text.
func Segment(resumeText string) types.ResumeSections {
	var result types.ResumeSections
	if resumeText == "" {
		return result
	}

	lower := strings.ToLower(resumeText)
	bounds := findBoundaries(lower)

	for _, rule := range headerRules {
		header := firstHeader(bounds, rule.key)
		if header < 0 {
			continue
		}
		start := bounds[header].end
		end := len(lower)
		for _, b := range bounds[header+1:] {
			if b.closes && b.start >= start && b.section != rule.key {
				end = b.start
				break
			}
		}
		result.Set(rule.key, truncate(strings.TrimSpace(lower[start:end]), MaxSectionLength))
	}

	result.Contact = truncate(ExtractContact(resumeText), MaxSectionLength)
	return result
}

// findBoundaries returns every header keyword occurrence ordered by offset
func findBoundaries(lower string) []boundary {
	matches := headerPattern.FindAllStringIndex(lower, -1)
	bounds := make([]boundary, 0, len(matches))
	for _, m := range matches {
		kw := lower[m[0]:m[1]]
		bounds = append(bounds, boundary{
			start:   m[0],
			end:     m[1],
			section: keywordToSection[kw],
			closes:  boundaryKeywords[kw],
		})
	}
	sort.SliceStable(bounds, func(i, j int) bool {
		return bounds[i].start < bounds[j].start
	})
	return bounds
}

// firstHeader returns the index of the first boundary belonging to the section, or -1
func firstHeader(bounds []boundary, section string) int {
	for i, b := range bounds {
		if b.section == section {
			return i
		}
	}
	return -1
}

// truncate caps s at max characters (runes, not bytes)
func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}
