package sections

import (
	"regexp"
	"sort"
	"strings"
)

// contactPatterns recognize contact details anywhere in a resume
var contactPatterns = map[string]*regexp.Regexp{
	"email":    regexp.MustCompile(`(?i)\b[a-z0-9._%+-]+@[a-z0-9.-]+\.[a-z]{2,}\b`),
	"phone":    regexp.MustCompile(`(\+?1[-.\s]?)?\(?\b[0-9]{3}\)?[-.\s]?[0-9]{3}[-.\s]?[0-9]{4}\b`),
	"linkedin": regexp.MustCompile(`(?i)(https?://)?(www\.)?linkedin\.com/in/[\w.-]+`),
	"github":   regexp.MustCompile(`(?i)(https?://)?(www\.)?github\.com/[\w.-]+`),
}

// ContactDetail is a single recognized contact item
type ContactDetail struct {
	Kind   string
	Value  string
	Offset int
}

// FindContactDetails returns every email, phone number, LinkedIn and GitHub URL
// in the text ordered by position. Repeated values are reported once.
func FindContactDetails(text string) []ContactDetail {
	var details []ContactDetail
	for kind, re := range contactPatterns {
		for _, m := range re.FindAllStringIndex(text, -1) {
			details = append(details, ContactDetail{
				Kind:   kind,
				Value:  strings.TrimSpace(text[m[0]:m[1]]),
				Offset: m[0],
			})
		}
	}

	sort.Slice(details, func(i, j int) bool {
		if details[i].Offset != details[j].Offset {
			return details[i].Offset < details[j].Offset
		}
		return details[i].Kind < details[j].Kind
	})

	seen := make(map[string]bool, len(details))
	unique := details[:0]
	for _, d := range details {
		key := strings.ToLower(d.Value)
		if seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, d)
	}
	return unique
}

// ExtractContact joins the contact details found in text, one per line
func ExtractContact(text string) string {
	details := FindContactDetails(text)
	values := make([]string, 0, len(details))
	for _, d := range details {
		values = append(values, d.Value)
	}
	return strings.Join(values, "\n")
}
