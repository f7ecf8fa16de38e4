package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-analyzer/internal/db"
	"github.com/jonathan/resume-analyzer/internal/server/middleware"
	"github.com/jonathan/resume-analyzer/internal/types"
)

const testResume = `Jane Doe
jane.doe@example.com | (555) 123-4567

Summary
Backend engineer with eight years building Python and Go services for payments.

Experience
Led the migration of twelve Python services to Kubernetes and increased deployment frequency by 40%.
Developed internal tooling in Go and managed a team of five engineers.

Skills
Python, Go, Kubernetes, PostgreSQL, Docker

Education
BSc Computer Science, State University`

const testJob = "We are hiring a backend engineer with Python, Kubernetes, AWS and Terraform experience."

// fakeJobs serves job postings from memory
type fakeJobs struct {
	texts map[uuid.UUID]string
	err   error
}

func (f *fakeJobs) GetJobPostingText(_ context.Context, id uuid.UUID) (string, *db.JobPosting, error) {
	if f.err != nil {
		return "", nil, f.err
	}
	text, ok := f.texts[id]
	if !ok {
		return "", nil, db.ErrJobPostingNotFound
	}
	return text, &db.JobPosting{ID: id}, nil
}

type formFile struct {
	field, name string
	content     []byte
}

func multipartBody(t *testing.T, fields map[string]string, files ...formFile) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, f := range files {
		part, err := mw.CreateFormFile(f.field, f.name)
		require.NoError(t, err)
		_, err = part.Write(f.content)
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func newTestServer(cfg Config, jobs JobPostingSource) http.Handler {
	s := New(cfg, nil, jobs)
	return s.Handler()
}

func doRequest(handler http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func postAnalyze(t *testing.T, handler http.Handler, fields map[string]string, files ...formFile) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := multipartBody(t, fields, files...)
	req := httptest.NewRequest(http.MethodPost, "/analyze", body)
	req.Header.Set("Content-Type", contentType)
	return doRequest(handler, req)
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	msg, _ := body["error"].(string)
	return msg
}

func TestHealth(t *testing.T) {
	handler := newTestServer(Config{}, nil)

	rr := doRequest(handler, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"status":"healthy"}`, rr.Body.String())
	assert.NotEmpty(t, rr.Header().Get(middleware.RequestIDHeader))
}

func TestAnalyze_Success(t *testing.T) {
	handler := newTestServer(Config{}, nil)

	rr := postAnalyze(t, handler,
		map[string]string{"job_description": testJob},
		formFile{field: "resume", name: "resume.txt", content: []byte(testResume)},
	)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var result types.AnalysisResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result))

	assert.Contains(t, result.MatchedKeywords, "python")
	assert.Contains(t, result.MatchedKeywords, "kubernetes")
	assert.Contains(t, result.MissingKeywords, "aws")
	assert.Contains(t, result.MissingKeywords, "terraform")
	assert.Greater(t, result.MatchPercentage, 0.0)
	assert.LessOrEqual(t, result.MatchPercentage, 100.0)
	assert.Contains(t, result.ResumeSections.Contact, "jane.doe@example.com")
	assert.NotEmpty(t, result.Recommendations)
	assert.Equal(t, types.PriorityHigh, result.Recommendations[0].Priority)
}

func TestAnalyze_ResponseShape(t *testing.T) {
	handler := newTestServer(Config{}, nil)

	rr := postAnalyze(t, handler,
		map[string]string{"job_description": "zzz qqq"},
		formFile{field: "resume", name: "resume.md", content: []byte("plain words only")},
	)
	require.Equal(t, http.StatusOK, rr.Code)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &raw))
	for _, key := range []string{"match_percentage", "matched_keywords", "missing_keywords", "recommendations", "resume_sections"} {
		assert.Contains(t, raw, key)
	}
	// empty lists are arrays, never null
	assert.Equal(t, "[]", string(raw["matched_keywords"]))
}

func TestAnalyze_InputErrors(t *testing.T) {
	resume := formFile{field: "resume", name: "resume.txt", content: []byte(testResume)}

	tests := []struct {
		name    string
		fields  map[string]string
		files   []formFile
		status  int
		message string
	}{
		{
			name:    "no resume",
			fields:  map[string]string{"job_description": testJob},
			status:  http.StatusBadRequest,
			message: "No resume file provided",
		},
		{
			name:    "empty filename",
			fields:  map[string]string{"job_description": testJob},
			files:   []formFile{{field: "resume", name: ""}},
			status:  http.StatusBadRequest,
			message: "No file selected",
		},
		{
			name:    "no job description",
			files:   []formFile{resume},
			status:  http.StatusBadRequest,
			message: "No job description provided",
		},
		{
			name:    "blank job description",
			fields:  map[string]string{"job_description": "  \n\t "},
			files:   []formFile{resume},
			status:  http.StatusBadRequest,
			message: "No job description provided",
		},
		{
			name:    "unsupported file type",
			fields:  map[string]string{"job_description": testJob},
			files:   []formFile{{field: "resume", name: "resume.exe", content: []byte("MZ")}},
			status:  http.StatusBadRequest,
			message: "Unsupported file type: upload a .pdf, .docx, .txt or .md file",
		},
		{
			name:    "corrupt pdf",
			fields:  map[string]string{"job_description": testJob},
			files:   []formFile{{field: "resume", name: "resume.pdf", content: []byte("definitely not a pdf")}},
			status:  http.StatusBadRequest,
			message: "Failed to parse PDF",
		},
		{
			name:    "empty file",
			fields:  map[string]string{"job_description": testJob},
			files:   []formFile{{field: "resume", name: "resume.txt", content: nil}},
			status:  http.StatusBadRequest,
			message: "Failed to parse TXT",
		},
		{
			name:    "invalid posting id",
			fields:  map[string]string{"job_posting_id": "12345"},
			files:   []formFile{resume},
			status:  http.StatusBadRequest,
			message: "validation error: job_posting_id - must be a UUID",
		},
		{
			name:    "posting lookup not configured",
			fields:  map[string]string{"job_posting_id": uuid.NewString()},
			files:   []formFile{resume},
			status:  http.StatusBadRequest,
			message: "Job posting lookup is not configured",
		},
	}

	handler := newTestServer(Config{}, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := postAnalyze(t, handler, tt.fields, tt.files...)
			assert.Equal(t, tt.status, rr.Code)
			assert.Contains(t, decodeError(t, rr), tt.message)
		})
	}
}

func TestAnalyze_NotMultipart(t *testing.T) {
	handler := newTestServer(Config{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/analyze", strings.NewReader(`{"job_description":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	rr := doRequest(handler, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "No resume file provided", decodeError(t, rr))
}

func TestAnalyze_UploadTooLarge(t *testing.T) {
	handler := newTestServer(Config{MaxUploadBytes: 1024}, nil)

	rr := postAnalyze(t, handler,
		map[string]string{"job_description": testJob},
		formFile{field: "resume", name: "resume.txt", content: bytes.Repeat([]byte("python "), 1000)},
	)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
	assert.Contains(t, decodeError(t, rr), "upload exceeds")
}

func TestAnalyze_JobPosting(t *testing.T) {
	id := uuid.New()
	jobs := &fakeJobs{texts: map[uuid.UUID]string{id: testJob}}
	handler := newTestServer(Config{}, jobs)
	resume := formFile{field: "resume", name: "resume.txt", content: []byte(testResume)}

	t.Run("found", func(t *testing.T) {
		rr := postAnalyze(t, handler, map[string]string{"job_posting_id": id.String()}, resume)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

		var result types.AnalysisResult
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result))
		assert.Contains(t, result.MissingKeywords, "terraform")
	})

	t.Run("posting wins over text", func(t *testing.T) {
		rr := postAnalyze(t, handler, map[string]string{
			"job_posting_id":  id.String(),
			"job_description": "rust haskell erlang",
		}, resume)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "terraform")
		assert.NotContains(t, rr.Body.String(), "haskell")
	})

	t.Run("not found", func(t *testing.T) {
		rr := postAnalyze(t, handler, map[string]string{"job_posting_id": uuid.NewString()}, resume)
		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Contains(t, decodeError(t, rr), "job posting not found")
	})

	t.Run("database failure", func(t *testing.T) {
		failing := newTestServer(Config{}, &fakeJobs{err: errors.New("connection refused")})
		rr := postAnalyze(t, failing, map[string]string{"job_posting_id": id.String()}, resume)
		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.Equal(t, "Internal server error", decodeError(t, rr))
	})
}

func TestAnalyze_MethodNotAllowed(t *testing.T) {
	handler := newTestServer(Config{}, nil)

	rr := doRequest(handler, httptest.NewRequest(http.MethodGet, "/analyze", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestCORS(t *testing.T) {
	t.Run("wildcard", func(t *testing.T) {
		handler := newTestServer(Config{}, nil)
		req := httptest.NewRequest(http.MethodOptions, "/analyze", nil)
		req.Header.Set("Origin", "https://anywhere.example")
		rr := doRequest(handler, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, rr.Header().Get("Access-Control-Allow-Methods"), "POST")
	})

	t.Run("allow list", func(t *testing.T) {
		handler := newTestServer(Config{AllowedOrigins: []string{"https://app.example"}}, nil)

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("Origin", "https://app.example")
		rr := doRequest(handler, req)
		assert.Equal(t, "https://app.example", rr.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "Origin", rr.Header().Get("Vary"))

		req = httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("Origin", "https://evil.example")
		rr = doRequest(handler, req)
		assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestRateLimit(t *testing.T) {
	t.Setenv("RATE_LIMIT_ENABLED", "true")
	handler := newTestServer(Config{RateLimitRPS: 0.01, RateLimitBurst: 1}, nil)
	resume := formFile{field: "resume", name: "resume.txt", content: []byte(testResume)}
	fields := map[string]string{"job_description": testJob}

	first := postAnalyze(t, handler, fields, resume)
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Limit"))

	second := postAnalyze(t, handler, fields, resume)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.NotEmpty(t, second.Header().Get("Retry-After"))
	assert.Contains(t, decodeError(t, second), "Rate limit exceeded")
	// CORS headers survive rejection
	assert.Equal(t, "*", second.Header().Get("Access-Control-Allow-Origin"))

	// health is never limited
	for i := 0; i < 5; i++ {
		rr := doRequest(handler, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, rr.Code)
	}
}

func TestRun_ShutsDownOnCancel(t *testing.T) {
	s := New(Config{Port: 0}, nil, nil)
	s.httpServer.Addr = "127.0.0.1:0"

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
