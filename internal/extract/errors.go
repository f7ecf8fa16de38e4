package extract

import (
	"errors"
	"fmt"
)

// ErrUnsupportedFormat is returned for file types that cannot be read
var ErrUnsupportedFormat = errors.New("unsupported file format")

// ErrEmptyDocument is returned when a document yields no text at all
var ErrEmptyDocument = errors.New("document contains no extractable text")

// ExtractionError represents a failure to read text out of a document
type ExtractionError struct {
	Filename string
	Message  string
	Cause    error
}

func (e *ExtractionError) Error() string {
	name := e.Filename
	if name == "" {
		name = "document"
	}
	if e.Cause != nil {
		return fmt.Sprintf("failed to extract text from %s: %s: %v", name, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to extract text from %s: %s", name, e.Message)
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}
