package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/resume-analyzer/internal/config"
	"github.com/jonathan/resume-analyzer/internal/db"
	"github.com/jonathan/resume-analyzer/internal/extract"
	"github.com/jonathan/resume-analyzer/internal/fetch"
	"github.com/jonathan/resume-analyzer/internal/ingestion"
	"github.com/jonathan/resume-analyzer/internal/observability"
	"github.com/jonathan/resume-analyzer/internal/schemas"
	"github.com/jonathan/resume-analyzer/internal/types"
)

// Output formats
const (
	formatJSON = "json"
	formatText = "text"
)

// analyzeOptions holds the analyze command's flags
type analyzeOptions struct {
	ResumePath   string
	JobPath      string
	JobText      string
	JobURL       string
	JobPostingID string
	OutPath      string
	Format       string
	ConfigPath   string
	Verbose      bool
	UseBrowser   bool
}

var analyzeOpts analyzeOptions

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Compare a resume against a job description",
	Long: `Extract text from a resume (.pdf, .docx, .txt, .md), load a job description from a file,
a string, a URL or the job posting database, and print the keyword match, resume sections
and recommendations.`,
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeOpts.ResumePath, "resume", "r", "", "Path to the resume file (required)")
	analyzeCmd.Flags().StringVarP(&analyzeOpts.JobPath, "job", "j", "", "Path to a job description text file (- for stdin)")
	analyzeCmd.Flags().StringVar(&analyzeOpts.JobText, "job-text", "", "Job description text")
	analyzeCmd.Flags().StringVarP(&analyzeOpts.JobURL, "job-url", "u", "", "URL of a job posting to fetch")
	analyzeCmd.Flags().StringVar(&analyzeOpts.JobPostingID, "job-posting-id", "", "ID of a stored job posting (needs DATABASE_URL)")
	analyzeCmd.Flags().StringVarP(&analyzeOpts.OutPath, "out", "o", "", "Write the result to this file instead of stdout")
	analyzeCmd.Flags().StringVarP(&analyzeOpts.Format, "format", "f", formatJSON, "Output format: json or text")
	analyzeCmd.Flags().StringVarP(&analyzeOpts.ConfigPath, "config", "c", "", "Path to a JSON or YAML config file")
	analyzeCmd.Flags().BoolVarP(&analyzeOpts.Verbose, "verbose", "v", false, "Print progress details to stderr")
	analyzeCmd.Flags().BoolVar(&analyzeOpts.UseBrowser, "use-browser", false, "Render job pages in headless Chrome when the plain fetch finds too little text")

	_ = analyzeCmd.MarkFlagRequired("resume")
	analyzeCmd.MarkFlagsMutuallyExclusive("job", "job-text", "job-url", "job-posting-id")
	analyzeCmd.MarkFlagsOneRequired("job", "job-text", "job-url", "job-posting-id")

	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	opts := analyzeOpts
	if err := opts.validate(); err != nil {
		return err
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if opts.Verbose {
		cfg.Verbose = true
	}
	if opts.UseBrowser {
		cfg.UseBrowser = true
	}

	var jobs jobPostingSource
	if opts.JobPostingID != "" {
		if cfg.DatabaseURL == "" {
			return fmt.Errorf("--job-posting-id requires DATABASE_URL")
		}
		database, err := db.Connect(cmd.Context(), cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer database.Close()
		jobs = database
	}

	out := cmd.OutOrStdout()
	if opts.OutPath != "" {
		f, err := os.Create(opts.OutPath)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer func() { _ = f.Close() }()
		out = f
	}

	return analyze(cmd.Context(), opts, cfg, jobs, cmd.InOrStdin(), out)
}

func (o analyzeOptions) validate() error {
	if o.ResumePath == "" {
		return fmt.Errorf("--resume is required")
	}
	sources := 0
	for _, s := range []string{o.JobPath, o.JobText, o.JobURL, o.JobPostingID} {
		if s != "" {
			sources++
		}
	}
	if sources != 1 {
		return fmt.Errorf("exactly one of --job, --job-text, --job-url or --job-posting-id must be provided")
	}
	if o.JobPostingID != "" {
		if _, err := uuid.Parse(o.JobPostingID); err != nil {
			return fmt.Errorf("--job-posting-id must be a UUID: %w", err)
		}
	}
	switch o.Format {
	case "", formatJSON, formatText:
	default:
		return fmt.Errorf("unknown --format %q (want json or text)", o.Format)
	}
	return nil
}

// jobPostingSource looks up stored job descriptions
type jobPostingSource interface {
	GetJobPostingText(ctx context.Context, id uuid.UUID) (string, *db.JobPosting, error)
}

// analyze loads both inputs concurrently, runs the analysis and writes the result to out
func analyze(ctx context.Context, opts analyzeOptions, cfg *config.Config, jobs jobPostingSource, stdin io.Reader, out io.Writer) error {
	analyzer, err := newAnalyzer(cfg)
	if err != nil {
		return err
	}

	var (
		resumeText string
		jobText    string
		jobMeta    *ingestion.Metadata
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		data, err := os.ReadFile(opts.ResumePath)
		if err != nil {
			return fmt.Errorf("failed to read resume: %w", err)
		}
		resumeText, err = extract.Text(filepath.Base(opts.ResumePath), data)
		return err
	})
	g.Go(func() error {
		var err error
		jobText, jobMeta, err = loadJob(gctx, opts, cfg, jobs, stdin)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	if cfg.Verbose {
		log.Printf("[VERBOSE] Resume: %d characters, job description: %d characters", len([]rune(resumeText)), len([]rune(jobText)))
		observability.NewPrinter(os.Stderr).PrintJobSource(jobMeta)
	}

	result := analyzer.Analyze(resumeText, jobText)
	if cfg.Verbose {
		observability.NewPrinter(os.Stderr).PrintSummary(result)
	}

	if opts.Format == formatText {
		observability.NewPrinter(out).PrintResult(result)
		return nil
	}
	return writeJSON(out, result, cfg.Verbose)
}

// loadJob resolves the job description from whichever source was given
func loadJob(ctx context.Context, opts analyzeOptions, cfg *config.Config, jobs jobPostingSource, stdin io.Reader) (string, *ingestion.Metadata, error) {
	switch {
	case opts.JobText != "":
		text := ingestion.CleanText(opts.JobText)
		if text == "" {
			return "", nil, errors.New("job description is empty")
		}
		return text, ingestion.NewMetadata(text, ingestion.SourceText), nil

	case opts.JobPath == "-":
		text, meta, err := ingestion.FromReader(stdin, "stdin")
		if err != nil {
			return "", nil, fmt.Errorf("failed to read job description from stdin: %w", err)
		}
		return text, meta, nil

	case opts.JobPath != "":
		text, meta, err := ingestion.FromFile(opts.JobPath)
		if err != nil {
			return "", nil, fmt.Errorf("failed to read job description: %w", err)
		}
		return text, meta, nil

	case opts.JobURL != "":
		fetchOpts := fetch.DefaultOptions()
		if cfg.FetchTimeoutSec > 0 {
			fetchOpts.Timeout = time.Duration(cfg.FetchTimeoutSec) * time.Second
		}
		text, meta, err := ingestion.FromURL(ctx, opts.JobURL, ingestion.URLOptions{
			UseBrowser: cfg.UseBrowser,
			Verbose:    cfg.Verbose,
			Fetch:      fetchOpts,
			Browser:    fetch.DefaultBrowserOptions(),
		})
		if err != nil {
			return "", nil, fmt.Errorf("failed to fetch job description: %w", err)
		}
		return text, meta, nil

	default:
		if jobs == nil {
			return "", nil, errors.New("job posting lookup is not configured")
		}
		id := uuid.MustParse(opts.JobPostingID)
		text, posting, err := jobs.GetJobPostingText(ctx, id)
		if err != nil {
			return "", nil, err
		}
		meta := ingestion.NewMetadata(text, ingestion.SourceDatabase)
		meta.Origin = id.String()
		if posting != nil {
			meta.Title = posting.Title()
		}
		return text, meta, nil
	}
}

// writeJSON encodes result and checks it against the result schema when the schema file can be found
func writeJSON(out io.Writer, result *types.AnalysisResult, verbose bool) error {
	if schemaPath := schemas.ResolveSchemaPath(schemas.AnalysisResultSchema); schemaPath != "" {
		if err := schemas.ValidateValue(schemaPath, result); err != nil {
			return fmt.Errorf("result failed schema validation: %w", err)
		}
		if verbose {
			log.Printf("[VERBOSE] Result validated against %s", schemaPath)
		}
	} else if verbose {
		log.Printf("[VERBOSE] Schema %s not found, skipping validation", schemas.AnalysisResultSchema)
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}
	return nil
}
