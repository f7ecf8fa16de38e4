package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/streadway/amqp"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/resume-analyzer/internal/analysis"
	"github.com/jonathan/resume-analyzer/internal/db"
	"github.com/jonathan/resume-analyzer/internal/extract"
	"github.com/jonathan/resume-analyzer/internal/ingestion"
)

const (
	fetchAttempts = 3
	fetchBackoff  = 500 * time.Millisecond
)

// JobPostingSource looks up stored job descriptions by ID
type JobPostingSource interface {
	GetJobPostingText(ctx context.Context, id uuid.UUID) (string, *db.JobPosting, error)
}

// Processor turns one queued request into a response
type Processor struct {
	Analyzer *analysis.Analyzer
	Store    ObjectStore
	Jobs     JobPostingSource // optional
	// FetchAttempts bounds resume downloads; values below 1 mean one attempt
	FetchAttempts int

	validate *validator.Validate
	now      func() time.Time
	backoff  time.Duration
}

// NewProcessor creates a Processor. jobs may be nil.
func NewProcessor(analyzer *analysis.Analyzer, store ObjectStore, jobs JobPostingSource) *Processor {
	if analyzer == nil {
		analyzer = analysis.Default()
	}
	return &Processor{
		Analyzer:      analyzer,
		Store:         store,
		Jobs:          jobs,
		FetchAttempts: fetchAttempts,
		validate:      validator.New(),
		now:           time.Now,
		backoff:       fetchBackoff,
	}
}

// Handle decodes and processes body. It always returns a response; failures are
// reported with StatusFailed and keep the request ID when one could be parsed.
func (p *Processor) Handle(ctx context.Context, body []byte) AnalysisResponse {
	var req AnalysisRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return p.failed(req.ID, fmt.Errorf("malformed request: %w", err))
	}
	if err := p.validate.Struct(req); err != nil {
		return p.failed(req.ID, fmt.Errorf("invalid request: %w", err))
	}

	jobText, err := p.jobText(ctx, req)
	if err != nil {
		return p.failed(req.ID, err)
	}

	data, err := retry(ctx, p.FetchAttempts, p.backoff, func() ([]byte, error) {
		return p.Store.Get(ctx, req.ResumeKey)
	})
	if err != nil {
		return p.failed(req.ID, fmt.Errorf("failed to fetch resume: %w", err))
	}

	var resumeText string
	if req.ResumeMIME != "" {
		resumeText, err = extract.TextByMIME(req.ResumeMIME, data)
	} else {
		resumeText, err = extract.Text(req.ResumeKey, data)
	}
	if err != nil {
		return p.failed(req.ID, err)
	}

	return AnalysisResponse{
		ID:        req.ID,
		Status:    StatusCompleted,
		Result:    p.Analyzer.Analyze(resumeText, jobText),
		Timestamp: p.now().UTC(),
	}
}

func (p *Processor) jobText(ctx context.Context, req AnalysisRequest) (string, error) {
	if req.JobPostingID != "" {
		if p.Jobs == nil {
			return "", errors.New("job posting lookup is not configured")
		}
		text, _, err := p.Jobs.GetJobPostingText(ctx, uuid.MustParse(req.JobPostingID))
		return text, err
	}

	text := ingestion.CleanText(req.JobDescription)
	if text == "" {
		return "", errors.New("no job description provided")
	}
	return text, nil
}

func (p *Processor) failed(id uuid.UUID, err error) AnalysisResponse {
	return AnalysisResponse{
		ID:        id,
		Status:    StatusFailed,
		Error:     err.Error(),
		Timestamp: p.now().UTC(),
	}
}

// Pool runs a fixed number of workers over a delivery channel
type Pool struct {
	Processor *Processor
	Publisher Publisher
	Workers   int
}

// Run processes deliveries until ctx is cancelled or the channel closes.
// A delivery is acked once its response is published and requeued otherwise.
func (p *Pool) Run(ctx context.Context, deliveries <-chan amqp.Delivery) error {
	workers := p.Workers
	if workers < 1 {
		workers = 1
	}

	g, ctx := errgroup.WithContext(ctx)
	for i := 1; i <= workers; i++ {
		id := i
		g.Go(func() error {
			log.Printf("[worker %d] started", id)
			defer log.Printf("[worker %d] stopped", id)
			for {
				select {
				case <-ctx.Done():
					return nil
				case d, ok := <-deliveries:
					if !ok {
						return nil
					}
					p.handleDelivery(ctx, id, d)
				}
			}
		})
	}
	return g.Wait()
}

func (p *Pool) handleDelivery(ctx context.Context, workerID int, d amqp.Delivery) {
	start := time.Now()
	resp := p.Processor.Handle(ctx, d.Body)

	if err := p.Publisher.Publish(ctx, resp); err != nil {
		log.Printf("[worker %d] %v", workerID, err)
		if nackErr := d.Nack(false, true); nackErr != nil {
			log.Printf("[worker %d] failed to nack %s: %v", workerID, resp.ID, nackErr)
		}
		return
	}

	if resp.Status == StatusFailed {
		log.Printf("[worker %d] request %s failed: %s", workerID, resp.ID, resp.Error)
	} else {
		log.Printf("[worker %d] request %s completed in %v (%.1f%% match)",
			workerID, resp.ID, time.Since(start), resp.Result.MatchPercentage)
	}

	if err := d.Ack(false); err != nil {
		log.Printf("[worker %d] failed to ack %s: %v", workerID, resp.ID, err)
	}
}

// QueueConfig names the broker topology the worker uses
type QueueConfig struct {
	URL           string
	RequestQueue  string
	ReplyExchange string
	Prefetch      int
}

// Connection bundles the broker connection, channel and request deliveries
type Connection struct {
	Conn       *amqp.Connection
	Channel    *amqp.Channel
	Deliveries <-chan amqp.Delivery
}

// Close closes the channel and the connection
func (c *Connection) Close() error {
	chErr := c.Channel.Close()
	connErr := c.Conn.Close()
	return errors.Join(chErr, connErr)
}

// Dial connects to the broker, declares the request queue and reply exchange
// and starts consuming with manual acknowledgements.
func Dial(cfg QueueConfig) (*Connection, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to broker: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	fail := func(format string, err error) (*Connection, error) {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf(format, err)
	}

	prefetch := cfg.Prefetch
	if prefetch < 1 {
		prefetch = 1
	}
	if err := ch.Qos(prefetch, 0, false); err != nil {
		return fail("failed to set qos: %w", err)
	}
	if _, err := ch.QueueDeclare(cfg.RequestQueue, true, false, false, false, nil); err != nil {
		return fail("failed to declare queue: %w", err)
	}
	if err := ch.ExchangeDeclare(cfg.ReplyExchange, "topic", true, false, false, false, nil); err != nil {
		return fail("failed to declare exchange: %w", err)
	}

	deliveries, err := ch.Consume(cfg.RequestQueue, "", false, false, false, false, nil)
	if err != nil {
		return fail("failed to consume: %w", err)
	}

	return &Connection{Conn: conn, Channel: ch, Deliveries: deliveries}, nil
}
