package server

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/resume-analyzer/internal/db"
	"github.com/jonathan/resume-analyzer/internal/extract"
)

func TestErrValidation(t *testing.T) {
	err := &ErrValidation{Field: "job_posting_id", Message: "must be a UUID"}
	assert.Equal(t, "validation error: job_posting_id - must be a UUID", err.Error())
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(err))
}

func TestErrUploadTooLarge(t *testing.T) {
	err := &ErrUploadTooLarge{Limit: 16 << 20}
	assert.Equal(t, "upload exceeds 16 MB limit", err.Error())
	assert.Equal(t, http.StatusRequestEntityTooLarge, HTTPStatus(err))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{
			name:     "ErrInvalidInput",
			err:      &ErrInvalidInput{Message: "No resume file provided"},
			expected: http.StatusBadRequest,
		},
		{
			name:     "ErrValidation",
			err:      &ErrValidation{Field: "job_description", Message: "too long"},
			expected: http.StatusBadRequest,
		},
		{
			name:     "ExtractionError",
			err:      &extract.ExtractionError{Filename: "cv.pdf", Message: "could not read application/pdf"},
			expected: http.StatusBadRequest,
		},
		{
			name:     "Wrapped ExtractionError",
			err:      fmt.Errorf("resume: %w", &extract.ExtractionError{Filename: "cv.pdf"}),
			expected: http.StatusBadRequest,
		},
		{
			name:     "Job posting not found",
			err:      fmt.Errorf("%w: abc", db.ErrJobPostingNotFound),
			expected: http.StatusNotFound,
		},
		{
			name:     "Job posting empty",
			err:      fmt.Errorf("%w: abc", db.ErrJobPostingEmpty),
			expected: http.StatusUnprocessableEntity,
		},
		{
			name:     "Unknown error",
			err:      assert.AnError,
			expected: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, HTTPStatus(tt.err))
		})
	}
}

func TestPublicMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "invalid input passes through",
			err:      &ErrInvalidInput{Message: "No job description provided"},
			expected: "No job description provided",
		},
		{
			name:     "pdf failure",
			err:      &extract.ExtractionError{Filename: "resume.pdf", Message: "could not read application/pdf"},
			expected: "Failed to parse PDF: could not read application/pdf",
		},
		{
			name:     "docx failure",
			err:      &extract.ExtractionError{Filename: "Resume.DOCX", Message: "no text found", Cause: extract.ErrEmptyDocument},
			expected: "Failed to parse DOCX: no text found",
		},
		{
			name:     "unnamed document",
			err:      &extract.ExtractionError{Message: "empty upload"},
			expected: "Failed to parse file: empty upload",
		},
		{
			name:     "unsupported format",
			err:      &extract.ExtractionError{Filename: "cv.exe", Message: "bad", Cause: extract.ErrUnsupportedFormat},
			expected: "Unsupported file type: upload a .pdf, .docx, .txt or .md file",
		},
		{
			name:     "internal error hidden",
			err:      fmt.Errorf("failed to get job posting: connection refused"),
			expected: "Internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, PublicMessage(tt.err))
		})
	}
}
