package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ErrJobPostingNotFound is returned when no posting matches the lookup
var ErrJobPostingNotFound = errors.New("job posting not found")

// ErrJobPostingEmpty is returned when a posting exists but has no cleaned text
var ErrJobPostingEmpty = errors.New("job posting has no cleaned text")

// JobPosting is a job posting row written by the ingestion pipeline
type JobPosting struct {
	ID          uuid.UUID `json:"id"`
	URL         string    `json:"url"`
	RoleTitle   *string   `json:"role_title,omitempty"`
	Platform    *string   `json:"platform,omitempty"`
	CleanedText *string   `json:"cleaned_text,omitempty"`
	ContentHash *string   `json:"content_hash,omitempty"`
	FetchStatus string    `json:"fetch_status"`
	FetchedAt   time.Time `json:"fetched_at"`
}

// Text returns the cleaned posting text, or "" when there is none
func (p *JobPosting) Text() string {
	if p.CleanedText == nil {
		return ""
	}
	return strings.TrimSpace(*p.CleanedText)
}

// Title returns the role title, or "" when unknown
func (p *JobPosting) Title() string {
	if p.RoleTitle == nil {
		return ""
	}
	return *p.RoleTitle
}

const jobPostingColumns = `id, url, role_title, platform, cleaned_text, content_hash, fetch_status, fetched_at`

func scanJobPosting(row pgx.Row) (*JobPosting, error) {
	var p JobPosting
	err := row.Scan(&p.ID, &p.URL, &p.RoleTitle, &p.Platform, &p.CleanedText,
		&p.ContentHash, &p.FetchStatus, &p.FetchedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetJobPostingByID retrieves a job posting by its ID. Returns nil, nil when absent.
func (db *DB) GetJobPostingByID(ctx context.Context, id uuid.UUID) (*JobPosting, error) {
	p, err := scanJobPosting(db.q.QueryRow(ctx,
		`SELECT `+jobPostingColumns+` FROM job_postings WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get job posting: %w", err)
	}
	return p, nil
}

// GetJobPostingByURL retrieves a job posting by its URL. Returns nil, nil when absent.
func (db *DB) GetJobPostingByURL(ctx context.Context, url string) (*JobPosting, error) {
	p, err := scanJobPosting(db.q.QueryRow(ctx,
		`SELECT `+jobPostingColumns+` FROM job_postings WHERE url = $1`, url))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get job posting: %w", err)
	}
	return p, nil
}

// ListRecentJobPostings returns the most recently fetched successful postings
func (db *DB) ListRecentJobPostings(ctx context.Context, limit int) ([]JobPosting, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.q.Query(ctx,
		`SELECT `+jobPostingColumns+`
		 FROM job_postings
		 WHERE fetch_status = 'success'
		 ORDER BY fetched_at DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list job postings: %w", err)
	}
	defer rows.Close()

	var postings []JobPosting
	for rows.Next() {
		p, err := scanJobPosting(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job posting: %w", err)
		}
		postings = append(postings, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list job postings: %w", err)
	}
	return postings, nil
}

// GetJobPostingText returns the cleaned text of a posting by ID.
// Missing postings yield ErrJobPostingNotFound and empty ones ErrJobPostingEmpty.
func (db *DB) GetJobPostingText(ctx context.Context, id uuid.UUID) (string, *JobPosting, error) {
	p, err := db.GetJobPostingByID(ctx, id)
	if err != nil {
		return "", nil, err
	}
	if p == nil {
		return "", nil, fmt.Errorf("%w: %s", ErrJobPostingNotFound, id)
	}
	text := p.Text()
	if text == "" {
		return "", p, fmt.Errorf("%w: %s", ErrJobPostingEmpty, id)
	}
	return text, p, nil
}
