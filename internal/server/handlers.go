package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/jonathan/resume-analyzer/internal/extract"
	"github.com/jonathan/resume-analyzer/internal/ingestion"
)

// multipartMemory is how much of an upload is held in memory before spilling to disk
const multipartMemory = 8 << 20

// AnalyzeRequest holds the text fields of a POST /analyze form
type AnalyzeRequest struct {
	JobDescription string `validate:"max=1048576"`
	JobPostingID   string `validate:"omitempty,uuid"`
}

// handleAnalyze compares an uploaded resume against a job description.
// Form fields: resume (file, required), job_description or job_posting_id.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		s.writeError(w, r, s.formError(err))
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	filename, data, err := s.readResume(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	req := AnalyzeRequest{
		JobDescription: r.FormValue("job_description"),
		JobPostingID:   strings.TrimSpace(r.FormValue("job_posting_id")),
	}
	if err := s.validateRequest(req); err != nil {
		s.writeError(w, r, err)
		return
	}

	jobText, err := s.jobText(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resumeText, err := extract.Text(filename, data)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, s.analyzer.Analyze(resumeText, jobText))
}

func (s *Server) formError(err error) error {
	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxErr), strings.Contains(err.Error(), "request body too large"):
		return &ErrUploadTooLarge{Limit: s.maxUploadBytes}
	case errors.Is(err, http.ErrNotMultipart):
		return &ErrInvalidInput{Message: "No resume file provided"}
	default:
		return &ErrInvalidInput{Message: "Invalid multipart form: " + err.Error()}
	}
}

// readResume returns the uploaded resume's name and content
func (s *Server) readResume(r *http.Request) (string, []byte, error) {
	file, header, err := r.FormFile("resume")
	if errors.Is(err, http.ErrMissingFile) {
		// a file input submitted without a selection arrives as a plain field
		if _, ok := r.MultipartForm.Value["resume"]; ok {
			return "", nil, &ErrInvalidInput{Message: "No file selected"}
		}
		return "", nil, &ErrInvalidInput{Message: "No resume file provided"}
	}
	if err != nil {
		return "", nil, &ErrInvalidInput{Message: "Invalid resume upload: " + err.Error()}
	}
	defer func() { _ = file.Close() }()

	if header.Filename == "" {
		return "", nil, &ErrInvalidInput{Message: "No file selected"}
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read upload: %w", err)
	}
	return header.Filename, data, nil
}

func (s *Server) validateRequest(req AnalyzeRequest) error {
	err := s.validate.Struct(req)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		switch fe.Field() {
		case "JobPostingID":
			return &ErrValidation{Field: "job_posting_id", Message: "must be a UUID"}
		case "JobDescription":
			return &ErrValidation{Field: "job_description", Message: fmt.Sprintf("must be at most %s bytes", fe.Param())}
		}
		return &ErrValidation{Field: fe.Field(), Message: fe.Tag()}
	}
	return fmt.Errorf("failed to validate request: %w", err)
}

// jobText resolves the job description from the stored posting or the form text
func (s *Server) jobText(ctx context.Context, req AnalyzeRequest) (string, error) {
	if req.JobPostingID != "" {
		if s.jobs == nil {
			return "", &ErrInvalidInput{Message: "Job posting lookup is not configured"}
		}
		text, _, err := s.jobs.GetJobPostingText(ctx, uuid.MustParse(req.JobPostingID))
		return text, err
	}

	text := ingestion.CleanText(req.JobDescription)
	if text == "" {
		return "", &ErrInvalidInput{Message: "No job description provided"}
	}
	return text, nil
}
