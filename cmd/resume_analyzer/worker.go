package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-analyzer/internal/config"
	"github.com/jonathan/resume-analyzer/internal/db"
	"github.com/jonathan/resume-analyzer/internal/worker"
)

var (
	workerCount      int
	workerConfigPath string
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Consume analysis requests from a message queue",
	Long: `Consume analysis requests from an AMQP queue, download each resume from an
S3-compatible bucket, analyze it and publish the result to the reply exchange.

Requires AMQP_URL and S3_BUCKET. S3_ENDPOINT, S3_REGION, S3_ACCESS_KEY and
S3_SECRET_KEY configure non-AWS storage.`,
	RunE: runWorker,
}

func init() {
	workerCmd.Flags().IntVarP(&workerCount, "workers", "w", config.DefaultWorkers, "Number of concurrent workers")
	workerCmd.Flags().StringVarP(&workerConfigPath, "config", "c", "", "Path to a JSON or YAML config file")
	rootCmd.AddCommand(workerCmd)
}

func runWorker(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(workerConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cmd.Flags().Changed("workers") {
		cfg.Workers = workerCount
	}
	if cfg.AMQPURL == "" {
		return fmt.Errorf("AMQP_URL environment variable is required")
	}
	if cfg.Bucket == "" {
		return fmt.Errorf("S3_BUCKET environment variable is required")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	analyzer, err := newAnalyzer(cfg)
	if err != nil {
		return err
	}

	store, err := worker.NewS3Store(ctx, worker.S3Options{
		Bucket:    cfg.Bucket,
		Endpoint:  cfg.S3Endpoint,
		Region:    cfg.S3Region,
		AccessKey: os.Getenv("S3_ACCESS_KEY"),
		SecretKey: os.Getenv("S3_SECRET_KEY"),
		MaxBytes:  cfg.MaxUploadBytes(),
	})
	if err != nil {
		return err
	}

	processor := worker.NewProcessor(analyzer, store, nil)
	processor.FetchAttempts = cfg.DownloadRetries
	if cfg.DatabaseURL != "" {
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer database.Close()
		processor.Jobs = database
	}

	conn, err := worker.Dial(worker.QueueConfig{
		URL:           cfg.AMQPURL,
		RequestQueue:  cfg.Queue,
		ReplyExchange: cfg.ReplyExchange,
		Prefetch:      cfg.Workers,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := conn.Close(); err != nil {
			log.Printf("failed to close broker connection: %v", err)
		}
	}()

	log.Printf("Worker consuming %s with %d workers", cfg.Queue, cfg.Workers)
	pool := &worker.Pool{
		Processor: processor,
		Publisher: worker.NewAMQPPublisher(conn.Channel, cfg.ReplyExchange),
		Workers:   cfg.Workers,
	}
	if err := pool.Run(ctx, conn.Deliveries); err != nil {
		return err
	}
	log.Println("Worker stopped")
	return nil
}
