package ingestion

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
	"unicode/utf8"
)

// Job description sources
const (
	SourceText     = "text"
	SourceFile     = "file"
	SourceURL      = "url"
	SourceDatabase = "database"
)

// Metadata describes where a job description came from
type Metadata struct {
	Source    string `json:"source"`
	Origin    string `json:"origin,omitempty"`   // path, URL or posting id
	Platform  string `json:"platform,omitempty"` // detected job board
	Title     string `json:"title,omitempty"`
	Rendered  bool   `json:"rendered,omitempty"` // text came from a headless browser
	Timestamp string `json:"timestamp"`          // RFC3339
	Hash      string `json:"hash"`               // SHA256 hex digest of the cleaned text
	Chars     int    `json:"chars"`
}

// NewMetadata creates Metadata for cleaned content with the current timestamp
func NewMetadata(content, source string) *Metadata {
	return &Metadata{
		Source:    source,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Hash:      computeHash(content),
		Chars:     utf8.RuneCountInString(content),
	}
}

func computeHash(content string) string {
	hash := sha256.Sum256([]byte(content))
	return hex.EncodeToString(hash[:])
}

// ToJSON marshals Metadata to indented JSON
func (m *Metadata) ToJSON() ([]byte, error) {
	jsonBytes, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal metadata to JSON: %w", err)
	}
	return jsonBytes, nil
}
