// Package ingestion loads job description text from files, readers and URLs.
package ingestion

import (
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
)

// ErrEmptyJobDescription is returned when a source yields no text after cleaning
var ErrEmptyJobDescription = errors.New("job description is empty")

// MaxJobDescriptionBytes caps how much text is read from a file or reader
const MaxJobDescriptionBytes = 1 << 20

var (
	inlineWhitespace = regexp.MustCompile(`[ \t\x{00A0}]+`)
	blankLineRun     = regexp.MustCompile(`\n\n\n+`)
	bulletPrefix     = regexp.MustCompile(`^[•·▪◦‣]\s*`)
)

// CleanText normalizes job description text while keeping its line structure:
// line endings become LF, runs of spaces collapse, bullet glyphs become "- ",
// and at most one blank line separates paragraphs.
func CleanText(content string) string {
	if content == "" {
		return ""
	}

	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = cleanLine(line)
	}

	result := blankLineRun.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")
	return strings.TrimSpace(result)
}

func cleanLine(line string) string {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return ""
	}

	// markdown headings lose their indentation
	if strings.HasPrefix(trimmed, "#") {
		return inlineWhitespace.ReplaceAllString(trimmed, " ")
	}

	trimmed = bulletPrefix.ReplaceAllString(trimmed, "- ")
	trimmed = inlineWhitespace.ReplaceAllString(trimmed, " ")

	indent := len(line) - len(strings.TrimLeft(line, " \t"))
	if indent > 0 && isBulletLine(trimmed) {
		return strings.Repeat(" ", indent) + trimmed
	}
	return trimmed
}

// isBulletLine checks if a line is a markdown bullet
func isBulletLine(line string) bool {
	return strings.HasPrefix(line, "- ") || strings.HasPrefix(line, "* ")
}

// FromReader reads, cleans and describes job text from r. source names the
// origin in the metadata ("stdin", a path, ...).
func FromReader(r io.Reader, source string) (string, *Metadata, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxJobDescriptionBytes))
	if err != nil {
		return "", nil, fmt.Errorf("failed to read job description: %w", err)
	}

	cleaned := CleanText(string(data))
	if cleaned == "" {
		return "", nil, ErrEmptyJobDescription
	}

	metadata := NewMetadata(cleaned, SourceText)
	metadata.Origin = source
	return cleaned, metadata, nil
}

// FromFile reads a job description from a text file
func FromFile(path string) (string, *Metadata, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil, fmt.Errorf("file not found: %w", err)
		}
		return "", nil, fmt.Errorf("failed to read file: %w", err)
	}
	defer func() { _ = f.Close() }()

	cleaned, metadata, err := FromReader(f, path)
	if err != nil {
		return "", nil, err
	}
	metadata.Source = SourceFile
	return cleaned, metadata, nil
}
