package worker

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-analyzer/internal/db"
	"github.com/jonathan/resume-analyzer/internal/extract"
)

const testResume = `Jane Doe
jane.doe@example.com

Experience
Led a team building Python services on Kubernetes and improved latency by 30%.

Skills
Python, Kubernetes, Docker`

const testJob = "Backend engineer with Python, Kubernetes and Terraform experience."

type fakeStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	errs    []error // returned in order before falling back to objects
	calls   int
}

func (f *fakeStore) Get(_ context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		return nil, err
	}
	data, ok := f.objects[key]
	if !ok {
		return nil, errors.New("no such key")
	}
	return data, nil
}

type fakePublisher struct {
	mu        sync.Mutex
	responses []AnalysisResponse
	err       error
}

func (f *fakePublisher) Publish(_ context.Context, resp AnalysisResponse) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.responses = append(f.responses, resp)
	return nil
}

type fakeJobs struct {
	texts map[uuid.UUID]string
}

func (f *fakeJobs) GetJobPostingText(_ context.Context, id uuid.UUID) (string, *db.JobPosting, error) {
	text, ok := f.texts[id]
	if !ok {
		return "", nil, db.ErrJobPostingNotFound
	}
	return text, &db.JobPosting{ID: id}, nil
}

// fakeAcknowledger records how a delivery was settled
type fakeAcknowledger struct {
	mu      sync.Mutex
	acks    int
	nacks   int
	requeue bool
}

func (a *fakeAcknowledger) Ack(uint64, bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.acks++
	return nil
}

func (a *fakeAcknowledger) Nack(_ uint64, _ bool, requeue bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.nacks++
	a.requeue = requeue
	return nil
}

func (a *fakeAcknowledger) Reject(_ uint64, requeue bool) error {
	return a.Nack(0, false, requeue)
}

func newTestProcessor(store ObjectStore, jobs JobPostingSource) *Processor {
	p := NewProcessor(nil, store, jobs)
	p.backoff = time.Millisecond
	p.now = func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }
	return p
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}

func TestProcessor_Handle(t *testing.T) {
	id := uuid.New()
	postingID := uuid.New()
	store := &fakeStore{objects: map[string][]byte{
		"resumes/jane.txt": []byte(testResume),
		"resumes/blob":     []byte(testResume),
		"resumes/cv.xls":   []byte("cells"),
	}}
	jobs := &fakeJobs{texts: map[uuid.UUID]string{postingID: testJob}}

	tests := []struct {
		name       string
		body       []byte
		jobs       JobPostingSource
		wantStatus string
		wantID     uuid.UUID
		wantErr    string
	}{
		{
			name:       "job description",
			body:       mustJSON(t, AnalysisRequest{ID: id, ResumeKey: "resumes/jane.txt", JobDescription: testJob}),
			wantStatus: StatusCompleted,
			wantID:     id,
		},
		{
			name:       "mime overrides key extension",
			body:       mustJSON(t, AnalysisRequest{ID: id, ResumeKey: "resumes/blob", ResumeMIME: extract.MIMEPlainText, JobDescription: testJob}),
			wantStatus: StatusCompleted,
			wantID:     id,
		},
		{
			name:       "stored posting",
			body:       mustJSON(t, AnalysisRequest{ID: id, ResumeKey: "resumes/jane.txt", JobPostingID: postingID.String()}),
			jobs:       jobs,
			wantStatus: StatusCompleted,
			wantID:     id,
		},
		{
			name:       "malformed json",
			body:       []byte("{not json"),
			wantStatus: StatusFailed,
			wantID:     uuid.Nil,
			wantErr:    "malformed request",
		},
		{
			name:       "missing resume key",
			body:       mustJSON(t, AnalysisRequest{ID: id, JobDescription: testJob}),
			wantStatus: StatusFailed,
			wantID:     id,
			wantErr:    "invalid request",
		},
		{
			name:       "no job source",
			body:       mustJSON(t, AnalysisRequest{ID: id, ResumeKey: "resumes/jane.txt"}),
			wantStatus: StatusFailed,
			wantID:     id,
			wantErr:    "invalid request",
		},
		{
			name:       "whitespace job description",
			body:       mustJSON(t, AnalysisRequest{ID: id, ResumeKey: "resumes/jane.txt", JobDescription: "  \n\t "}),
			wantStatus: StatusFailed,
			wantID:     id,
			wantErr:    "no job description provided",
		},
		{
			name:       "posting lookup not configured",
			body:       mustJSON(t, AnalysisRequest{ID: id, ResumeKey: "resumes/jane.txt", JobPostingID: postingID.String()}),
			wantStatus: StatusFailed,
			wantID:     id,
			wantErr:    "not configured",
		},
		{
			name:       "unknown posting",
			body:       mustJSON(t, AnalysisRequest{ID: id, ResumeKey: "resumes/jane.txt", JobPostingID: uuid.NewString()}),
			jobs:       jobs,
			wantStatus: StatusFailed,
			wantID:     id,
			wantErr:    db.ErrJobPostingNotFound.Error(),
		},
		{
			name:       "unsupported format",
			body:       mustJSON(t, AnalysisRequest{ID: id, ResumeKey: "resumes/cv.xls", JobDescription: testJob}),
			wantStatus: StatusFailed,
			wantID:     id,
			wantErr:    "unsupported file format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestProcessor(store, tt.jobs)
			resp := p.Handle(context.Background(), tt.body)

			assert.Equal(t, tt.wantStatus, resp.Status)
			assert.Equal(t, tt.wantID, resp.ID)
			assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), resp.Timestamp)
			if tt.wantErr != "" {
				assert.Contains(t, resp.Error, tt.wantErr)
				assert.Nil(t, resp.Result)
				return
			}
			require.NotNil(t, resp.Result)
			assert.Empty(t, resp.Error)
			assert.Contains(t, resp.Result.MatchedKeywords, "python")
			assert.Contains(t, resp.Result.MissingKeywords, "terraform")
		})
	}
}

func TestProcessor_HandleRetriesFetch(t *testing.T) {
	store := &fakeStore{
		objects: map[string][]byte{"r.txt": []byte(testResume)},
		errs:    []error{errors.New("timeout"), errors.New("timeout")},
	}
	p := newTestProcessor(store, nil)

	resp := p.Handle(context.Background(), mustJSON(t, AnalysisRequest{ID: uuid.New(), ResumeKey: "r.txt", JobDescription: testJob}))

	assert.Equal(t, StatusCompleted, resp.Status)
	assert.Equal(t, 3, store.calls)
}

func TestProcessor_HandleFetchExhausted(t *testing.T) {
	store := &fakeStore{errs: []error{errors.New("a"), errors.New("b"), errors.New("c"), errors.New("d")}}
	p := newTestProcessor(store, nil)

	resp := p.Handle(context.Background(), mustJSON(t, AnalysisRequest{ID: uuid.New(), ResumeKey: "r.txt", JobDescription: testJob}))

	assert.Equal(t, StatusFailed, resp.Status)
	assert.Contains(t, resp.Error, "after 3 attempts")
	assert.Equal(t, 3, store.calls)
}

func TestRetry(t *testing.T) {
	t.Run("too large is not retried", func(t *testing.T) {
		calls := 0
		_, err := retry(context.Background(), 5, time.Millisecond, func() (int, error) {
			calls++
			return 0, ErrObjectTooLarge
		})
		require.ErrorIs(t, err, ErrObjectTooLarge)
		assert.Equal(t, 1, calls)
	})

	t.Run("cancelled context stops waiting", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := retry(ctx, 3, time.Hour, func() (int, error) {
			return 0, errors.New("boom")
		})
		require.ErrorIs(t, err, context.Canceled)
	})

	t.Run("zero attempts runs once", func(t *testing.T) {
		got, err := retry(context.Background(), 0, time.Millisecond, func() (string, error) {
			return "ok", nil
		})
		require.NoError(t, err)
		assert.Equal(t, "ok", got)
	})
}

func TestReadLimited(t *testing.T) {
	data, err := readLimited(strings.NewReader("hello"), 5)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	_, err = readLimited(strings.NewReader("hello!"), 5)
	require.ErrorIs(t, err, ErrObjectTooLarge)

	data, err = readLimited(strings.NewReader("unbounded"), 0)
	require.NoError(t, err)
	assert.Equal(t, "unbounded", string(data))
}

func TestPool_Run(t *testing.T) {
	store := &fakeStore{objects: map[string][]byte{"r.txt": []byte(testResume)}}
	pub := &fakePublisher{}
	pool := &Pool{Processor: newTestProcessor(store, nil), Publisher: pub, Workers: 3}

	const n = 10
	deliveries := make(chan amqp.Delivery, n+1)
	ack := &fakeAcknowledger{}
	for i := 0; i < n; i++ {
		deliveries <- amqp.Delivery{
			Acknowledger: ack,
			DeliveryTag:  uint64(i + 1),
			Body:         mustJSON(t, AnalysisRequest{ID: uuid.New(), ResumeKey: "r.txt", JobDescription: testJob}),
		}
	}
	deliveries <- amqp.Delivery{Acknowledger: ack, DeliveryTag: n + 1, Body: []byte("garbage")}
	close(deliveries)

	require.NoError(t, pool.Run(context.Background(), deliveries))

	assert.Len(t, pub.responses, n+1)
	assert.Equal(t, n+1, ack.acks)
	assert.Zero(t, ack.nacks)

	failed := 0
	for _, resp := range pub.responses {
		if resp.Status == StatusFailed {
			failed++
		}
	}
	assert.Equal(t, 1, failed)
}

func TestPool_RunRequeuesOnPublishFailure(t *testing.T) {
	store := &fakeStore{objects: map[string][]byte{"r.txt": []byte(testResume)}}
	pool := &Pool{
		Processor: newTestProcessor(store, nil),
		Publisher: &fakePublisher{err: errors.New("broker down")},
	}

	deliveries := make(chan amqp.Delivery, 1)
	ack := &fakeAcknowledger{}
	deliveries <- amqp.Delivery{
		Acknowledger: ack,
		Body:         mustJSON(t, AnalysisRequest{ID: uuid.New(), ResumeKey: "r.txt", JobDescription: testJob}),
	}
	close(deliveries)

	require.NoError(t, pool.Run(context.Background(), deliveries))

	assert.Zero(t, ack.acks)
	assert.Equal(t, 1, ack.nacks)
	assert.True(t, ack.requeue)
}

func TestPool_RunStopsOnCancel(t *testing.T) {
	pool := &Pool{Processor: newTestProcessor(&fakeStore{}, nil), Publisher: &fakePublisher{}, Workers: 2}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- pool.Run(ctx, make(chan amqp.Delivery)) }()
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("pool did not stop after cancel")
	}
}

func TestRoutingKey(t *testing.T) {
	id := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	assert.Equal(t, "analysis.6ba7b810-9dad-11d1-80b4-00c04fd430c8", RoutingKey(AnalysisResponse{ID: id}))
}

func TestAnalysisResponse_JSON(t *testing.T) {
	resp := AnalysisResponse{ID: uuid.New(), Status: StatusFailed, Error: "boom"}
	data, err := json.Marshal(resp)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	assert.NotContains(t, m, "result")
	assert.Equal(t, "boom", m["error"])
	assert.Equal(t, "failed", m["status"])
}
