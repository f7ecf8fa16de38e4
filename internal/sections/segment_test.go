package sections

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/resume-analyzer/internal/types"
)

const sampleResume = `John Doe
john.doe@example.com | (555) 123-4567 | linkedin.com/in/johndoe

Summary
Backend engineer with eight years building distributed payment systems.

Experience
Acme Corp - Senior Engineer
Led migration of billing services to Go.

Skills
Python, Go, Rust, PostgreSQL, Kubernetes

Education
B.S. Computer Science, State University
`

func TestSegment_FullResume(t *testing.T) {
	got := Segment(sampleResume)

	assert.Equal(t, "backend engineer with eight years building distributed payment systems.", got.Summary)
	assert.Equal(t, "acme corp - senior engineer\nled migration of billing services to go.", got.Experience)
	assert.Equal(t, "python, go, rust, postgresql, kubernetes", got.Skills)
	assert.Equal(t, "b.s. computer science, state university", got.Education)
	assert.Empty(t, got.Projects)
	assert.Equal(t, "john.doe@example.com\n(555) 123-4567\nlinkedin.com/in/johndoe", got.Contact)
}

func TestSegment_Headers(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		key      string
		expected string
	}{
		{
			name:     "Skills heading with colon",
			input:    "Skills: Python, Go, Rust and a few others besides",
			key:      types.SectionSkills,
			expected: ": python, go, rust and a few others besides",
		},
		{
			name:     "Uppercase header",
			input:    "EDUCATION\nMIT, B.S. Physics",
			key:      types.SectionEducation,
			expected: "mit, b.s. physics",
		},
		{
			name:     "Alternative summary keyword",
			input:    "Professional Profile\nPragmatic engineer.",
			key:      types.SectionSummary,
			expected: "pragmatic engineer.",
		},
		{
			name:     "Same-section keyword does not end the section",
			input:    "Experience\nWork history at Initech\nEducation\nBSc",
			key:      types.SectionExperience,
			expected: "work history at initech",
		},
		{
			name:     "Technical skills heading keeps second word",
			input:    "Technical Skills\nGo, SQL",
			key:      types.SectionSkills,
			expected: "skills\ngo, sql",
		},
		{
			name:     "Opening-only keyword inside a word does not end the section",
			input:    "Summary\nBuilt a framework for payments",
			key:      types.SectionSummary,
			expected: "built a framework for payments",
		},
		{
			name:     "Network in summary",
			input:    "Summary: Senior network engineer with twelve years building reliable distributed systems",
			key:      types.SectionSummary,
			expected: ": senior network engineer with twelve years building reliable distributed systems",
		},
		{
			name:     "Profile header followed by technical",
			input:    "Profile\nTechnical lead who scales teams and ships resilient payment platforms daily",
			key:      types.SectionSummary,
			expected: "technical lead who scales teams and ships resilient payment platforms daily",
		},
		{
			name:     "Degree inside experience",
			input:    "Experience\nWorked at Initech on billing; earned a degree in the evenings while shipping\nSkills\nGo",
			key:      types.SectionExperience,
			expected: "worked at initech on billing; earned a degree in the evenings while shipping",
		},
		{
			name:     "Networking inside skills",
			input:    "Skills\nGo, Terraform, AWS networking",
			key:      types.SectionSkills,
			expected: "go, terraform, aws networking",
		},
		{
			name:     "Boundary keyword inside a word ends the section",
			input:    "Summary\nBuilt tools for experienced teams",
			key:      types.SectionSummary,
			expected: "built tools for",
		},
		{
			name:     "Projects section",
			input:    "Projects\nOpen source CLI for log search\nSkills\nGo",
			key:      types.SectionProjects,
			expected: "open source cli for log search",
		},
		{
			name:     "Section runs to end of text",
			input:    "Education\nState University",
			key:      types.SectionEducation,
			expected: "state university",
		},
		{
			name:     "Missing header",
			input:    "Just some free text about nothing in particular",
			key:      types.SectionExperience,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Segment(tt.input)
			assert.Equal(t, tt.expected, got.Get(tt.key))
		})
	}
}

func TestSegment_FirstHeaderWins(t *testing.T) {
	input := "Skills\nGo\nEducation\nBSc\nSkills\nRust"
	got := Segment(input)
	assert.Equal(t, "go", got.Skills)
	assert.Equal(t, "bsc", got.Education)
}

func TestSegment_EmptyInput(t *testing.T) {
	assert.Equal(t, types.ResumeSections{}, Segment(""))
}

func TestSegment_TruncatesLongSections(t *testing.T) {
	body := strings.Repeat("é", 800)
	got := Segment("Education\n" + body)

	assert.Equal(t, MaxSectionLength, utf8.RuneCountInString(got.Education))
	assert.True(t, utf8.ValidString(got.Education))
}

func TestSegment_AllSectionsBounded(t *testing.T) {
	long := strings.Repeat("lorem ipsum dolor sit amet ", 100)
	input := "Summary\n" + long + "\nExperience\n" + long + "\nSkills\n" + long +
		"\nEducation\n" + long + "\nProjects\n" + long
	got := Segment(input)

	for _, key := range types.SectionKeys {
		assert.LessOrEqual(t, utf8.RuneCountInString(got.Get(key)), MaxSectionLength, key)
	}
	assert.Len(t, []rune(got.Summary), MaxSectionLength)
}

func TestSegment_Deterministic(t *testing.T) {
	first := Segment(sampleResume)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Segment(sampleResume))
	}
}
