// Package worker consumes analysis requests from a message queue, analyzes
// resumes stored in an S3-compatible bucket and publishes the results.
package worker

import (
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/resume-analyzer/internal/types"
)

// Response statuses
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// AnalysisRequest asks for one resume to be analyzed against a job description.
// Either JobDescription or JobPostingID must be set; the posting wins when both are.
type AnalysisRequest struct {
	ID             uuid.UUID `json:"id" validate:"required"`
	ResumeKey      string    `json:"resume_key" validate:"required"`
	ResumeMIME     string    `json:"resume_mime,omitempty"` // inferred from the key's extension when empty
	JobDescription string    `json:"job_description,omitempty" validate:"required_without=JobPostingID,max=1048576"`
	JobPostingID   string    `json:"job_posting_id,omitempty" validate:"omitempty,uuid"`
}

// AnalysisResponse is published once per request
type AnalysisResponse struct {
	ID        uuid.UUID             `json:"id"`
	Status    string                `json:"status"`
	Result    *types.AnalysisResult `json:"result,omitempty"`
	Error     string                `json:"error,omitempty"`
	Timestamp time.Time             `json:"timestamp"`
}
