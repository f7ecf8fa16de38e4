// Package observability provides formatted output for the text report and verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/resume-analyzer/internal/ingestion"
	"github.com/jonathan/resume-analyzer/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// sectionPreview is how much of each section the report shows
	sectionPreview = 45
)

// Printer handles formatted output for the text report and verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// shorten cuts s to at most n runes, marking the cut with "..."
func shorten(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n-3]) + "..."
}

// wrap splits s into lines of at most width runes on word boundaries.
// A single word longer than width gets its own line.
func wrap(s string, width int) []string {
	var lines []string
	line := ""
	for _, word := range strings.Fields(s) {
		if line == "" {
			line = word
			continue
		}
		if utf8.RuneCountInString(line)+1+utf8.RuneCountInString(word) > width {
			lines = append(lines, line)
			line = word
			continue
		}
		line += " " + word
	}
	if line != "" {
		lines = append(lines, line)
	}
	return lines
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, shorten(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintJobSource outputs where the job description came from.
func (p *Printer) PrintJobSource(meta *ingestion.Metadata) {
	if meta == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Source:   %s\n", meta.Source))
	if meta.Origin != "" {
		sb.WriteString(fmt.Sprintf("Origin:   %s\n", meta.Origin))
	}
	if meta.Platform != "" {
		sb.WriteString(fmt.Sprintf("Platform: %s\n", meta.Platform))
	}
	if meta.Title != "" {
		sb.WriteString(fmt.Sprintf("Title:    %s\n", meta.Title))
	}
	if meta.Rendered {
		sb.WriteString("Rendered: headless browser\n")
	}
	sb.WriteString(fmt.Sprintf("Length:   %d chars", meta.Chars))

	p.printBox("JOB DESCRIPTION", sb.String())
}

// PrintMatch outputs the match percentage and keyword lists.
func (p *Printer) PrintMatch(result *types.AnalysisResult) {
	if result == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Match: %.1f%%\n\n", result.MatchPercentage))

	writeKeywords(&sb, "Matched", result.MatchedKeywords)
	sb.WriteString("\n")
	writeKeywords(&sb, "Missing", result.MissingKeywords)

	p.printBox("KEYWORD MATCH", strings.TrimSuffix(sb.String(), "\n"))
}

func writeKeywords(sb *strings.Builder, label string, keywords []string) {
	if len(keywords) == 0 {
		sb.WriteString(fmt.Sprintf("%s: none\n", label))
		return
	}
	sb.WriteString(fmt.Sprintf("%s (%d):\n", label, len(keywords)))
	// wrap into rows that fit the box
	row := ""
	for _, kw := range keywords {
		next := kw
		if row != "" {
			next = row + ", " + kw
		}
		if utf8.RuneCountInString(next)+3 > boxWidth-4 && row != "" {
			sb.WriteString("  " + row + ",\n")
			row = kw
			continue
		}
		row = next
	}
	sb.WriteString("  " + row + "\n")
}

// PrintSections outputs a preview of each segmented resume section.
func (p *Printer) PrintSections(sections types.ResumeSections) {
	var sb strings.Builder
	for _, key := range types.SectionKeys {
		value := strings.Join(strings.Fields(sections.Get(key)), " ")
		if value == "" {
			value = "(not found)"
		}
		sb.WriteString(fmt.Sprintf("%-10s %s\n", key+":", shorten(value, sectionPreview)))
	}
	p.printBox("RESUME SECTIONS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintRecommendations outputs the recommendations in rule order, each tagged with its priority.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintRecommendations(recs []types.Recommendation) {
	if len(recs) == 0 {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, "✅ NO RECOMMENDATIONS")
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d recommendations:\n\n", len(recs)))

	for i, rec := range recs {
		sb.WriteString(fmt.Sprintf("%s %s [%s]\n", priorityMarker(rec.Priority), rec.Title, rec.Priority))
		for _, line := range wrap(rec.Description, boxWidth-6) {
			sb.WriteString("  " + line + "\n")
		}
		for j, line := range wrap(rec.Action, boxWidth-8) {
			if j == 0 {
				sb.WriteString("  → " + line + "\n")
			} else {
				sb.WriteString("    " + line + "\n")
			}
		}
		if i < len(recs)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox("RECOMMENDATIONS", strings.TrimSuffix(sb.String(), "\n"))
}

func priorityMarker(priority types.Priority) string {
	switch priority {
	case types.PriorityHigh:
		return "⚠"
	case types.PriorityMedium:
		return "•"
	default:
		return "·"
	}
}

// PrintResult outputs the full text report of an analysis.
func (p *Printer) PrintResult(result *types.AnalysisResult) {
	if result == nil {
		return
	}
	p.PrintMatch(result)
	p.PrintSections(result.ResumeSections)
	p.PrintRecommendations(result.Recommendations)
}

// PrintSummary outputs a one-line overview, used after a run in verbose mode.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintSummary(result *types.AnalysisResult) {
	if result == nil {
		return
	}
	counts := result.CountByPriority()
	fmt.Fprintf(p.out, "Match %.1f%% | %d matched, %d missing | recommendations: %d high, %d medium, %d low\n",
		result.MatchPercentage,
		len(result.MatchedKeywords),
		len(result.MissingKeywords),
		counts[types.PriorityHigh],
		counts[types.PriorityMedium],
		counts[types.PriorityLow],
	)
}
