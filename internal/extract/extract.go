// Package extract reads plain text out of uploaded resume documents (PDF, DOCX, plain text).
package extract

import (
	"bytes"
	"fmt"
	"html"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
	"golang.org/x/text/unicode/norm"
)

// Supported MIME types
const (
	MIMEPlainText = "text/plain"
	MIMEMarkdown  = "text/markdown"
	MIMEPDF       = "application/pdf"
	MIMEDOCX      = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

var extensionMIME = map[string]string{
	".pdf":  MIMEPDF,
	".docx": MIMEDOCX,
	".txt":  MIMEPlainText,
	".text": MIMEPlainText,
	".md":   MIMEMarkdown,
}

var (
	xmlTagPattern    = regexp.MustCompile(`<[^>]+>`)
	inlineSpaceRun   = regexp.MustCompile(`[ \t\f\v\x{00A0}]+`)
	blankLinePattern = regexp.MustCompile(`\n{3,}`)
)

// MIMEForFilename returns the MIME type implied by the file extension, or "" if unknown
func MIMEForFilename(filename string) string {
	return extensionMIME[strings.ToLower(filepath.Ext(filename))]
}

// Text extracts text from a document, choosing the reader by file extension
func Text(filename string, data []byte) (string, error) {
	mime := MIMEForFilename(filename)
	if mime == "" {
		return "", &ExtractionError{
			Filename: filename,
			Message:  fmt.Sprintf("extension %q is not one of .pdf, .docx, .txt, .md", filepath.Ext(filename)),
			Cause:    ErrUnsupportedFormat,
		}
	}
	return extract(filename, mime, data)
}

// TextByMIME extracts text from a document, choosing the reader by MIME type
func TextByMIME(mime string, data []byte) (string, error) {
	// strip parameters such as "; charset=utf-8"
	base := strings.TrimSpace(strings.SplitN(mime, ";", 2)[0])
	return extract("", strings.ToLower(base), data)
}

func extract(filename, mime string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", &ExtractionError{Filename: filename, Message: "empty upload", Cause: ErrEmptyDocument}
	}

	var (
		text string
		err  error
	)
	switch mime {
	case MIMEPlainText, MIMEMarkdown:
		text, err = plainText(data)
	case MIMEPDF:
		text, err = pdfText(data)
	case MIMEDOCX:
		text, err = docxText(data)
	default:
		return "", &ExtractionError{
			Filename: filename,
			Message:  fmt.Sprintf("mime type %q", mime),
			Cause:    ErrUnsupportedFormat,
		}
	}
	if err != nil {
		return "", &ExtractionError{Filename: filename, Message: "could not read " + mime, Cause: err}
	}

	text = norm.NFC.String(text)
	if strings.TrimSpace(text) == "" {
		return "", &ExtractionError{Filename: filename, Message: "no text found", Cause: ErrEmptyDocument}
	}
	return text, nil
}

func plainText(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if !utf8.Valid(data) {
		return "", fmt.Errorf("text is not valid UTF-8")
	}
	return strings.ReplaceAll(string(data), "\r\n", "\n"), nil
}

// pdfText concatenates the plain text of every page, each followed by a newline.
// The PDF reader panics on some malformed inputs; those surface as errors.
func pdfText(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to read pdf: %w", err)
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("failed to read page %d: %w", i, err)
		}
		sb.WriteString(pageText)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

// docxText reads word/document.xml and flattens it, one paragraph per line
func docxText(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to parse docx: %w", err)
	}
	defer doc.Close()

	return flattenDocumentXML(doc.Editable().GetContent()), nil
}

func flattenDocumentXML(content string) string {
	content = strings.ReplaceAll(content, "</w:p>", "\n")
	content = strings.ReplaceAll(content, "<w:tab/>", "\t")
	content = strings.ReplaceAll(content, "<w:br/>", "\n")
	content = xmlTagPattern.ReplaceAllString(content, "")
	content = html.UnescapeString(content)
	content = inlineSpaceRun.ReplaceAllString(content, " ")
	content = blankLinePattern.ReplaceAllString(content, "\n\n")
	return strings.TrimSpace(content)
}
