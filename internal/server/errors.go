// Package server provides the HTTP API for resume analysis.
package server

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/jonathan/resume-analyzer/internal/db"
	"github.com/jonathan/resume-analyzer/internal/extract"
)

// ErrInvalidInput indicates a request that is missing a required part
type ErrInvalidInput struct {
	Message string
}

func (e *ErrInvalidInput) Error() string {
	return e.Message
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrUploadTooLarge indicates the request body exceeded the upload limit
type ErrUploadTooLarge struct {
	Limit int64
}

func (e *ErrUploadTooLarge) Error() string {
	return fmt.Sprintf("upload exceeds %d MB limit", e.Limit>>20)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		invalid    *ErrInvalidInput
		validation *ErrValidation
		tooLarge   *ErrUploadTooLarge
		extraction *extract.ExtractionError
	)
	switch {
	case errors.As(err, &invalid), errors.As(err, &validation), errors.As(err, &extraction):
		return http.StatusBadRequest
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, db.ErrJobPostingNotFound):
		return http.StatusNotFound
	case errors.Is(err, db.ErrJobPostingEmpty):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the message shown to API clients. Internal failures
// are reported generically; their details only go to the log.
func PublicMessage(err error) string {
	var extraction *extract.ExtractionError
	if errors.As(err, &extraction) {
		if errors.Is(err, extract.ErrUnsupportedFormat) {
			return "Unsupported file type: upload a .pdf, .docx, .txt or .md file"
		}
		format := strings.ToUpper(strings.TrimPrefix(filepath.Ext(extraction.Filename), "."))
		if format == "" {
			format = "file"
		}
		return fmt.Sprintf("Failed to parse %s: %s", format, extraction.Message)
	}

	if HTTPStatus(err) == http.StatusInternalServerError {
		return "Internal server error"
	}
	return err.Error()
}
