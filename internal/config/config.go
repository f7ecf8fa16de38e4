// Package config provides configuration loading and validation for the analyzer CLI, server and worker.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/jonathan/resume-analyzer/internal/recommend"
)

// Defaults for server and worker settings
const (
	DefaultPort            = 8080
	DefaultRateLimitRPS    = 2.0
	DefaultRateLimitBurst  = 10
	DefaultMaxUploadMB     = 16
	DefaultQueue           = "resume.analysis.requests"
	DefaultReplyExchange   = "resume.analysis.results"
	DefaultWorkers         = 4
	DefaultDownloadRetries = 3
	DefaultFetchTimeoutSec = 30
)

// Config is the analyzer configuration, loadable from a JSON or YAML file.
// All fields are optional; missing values fall back to Defaults.
type Config struct {
	// Linguistic resources
	StopwordsFile string `json:"stopwords_file,omitempty" yaml:"stopwords_file,omitempty"`

	// Recommendation thresholds; unset fields keep the built-in values
	Thresholds ThresholdOverrides `json:"thresholds,omitempty" yaml:"thresholds,omitempty"`

	// Job description sources
	UseBrowser      bool   `json:"use_browser,omitempty" yaml:"use_browser,omitempty"`
	FetchTimeoutSec int    `json:"fetch_timeout_sec,omitempty" yaml:"fetch_timeout_sec,omitempty" validate:"gte=0,lte=600"`
	DatabaseURL     string `json:"database_url,omitempty" yaml:"database_url,omitempty"`

	// HTTP server
	Port           int      `json:"port,omitempty" yaml:"port,omitempty" validate:"gte=0,lte=65535"`
	RateLimitRPS   float64  `json:"rate_limit_rps,omitempty" yaml:"rate_limit_rps,omitempty" validate:"gte=0"`
	RateLimitBurst int      `json:"rate_limit_burst,omitempty" yaml:"rate_limit_burst,omitempty" validate:"gte=0"`
	MaxUploadMB    int      `json:"max_upload_mb,omitempty" yaml:"max_upload_mb,omitempty" validate:"gte=0,lte=256"`
	AllowedOrigins []string `json:"allowed_origins,omitempty" yaml:"allowed_origins,omitempty"`

	// Queue worker
	AMQPURL         string `json:"amqp_url,omitempty" yaml:"amqp_url,omitempty"`
	Queue           string `json:"queue,omitempty" yaml:"queue,omitempty"`
	ReplyExchange   string `json:"reply_exchange,omitempty" yaml:"reply_exchange,omitempty"`
	Workers         int    `json:"workers,omitempty" yaml:"workers,omitempty" validate:"gte=0,lte=256"`
	DownloadRetries int    `json:"download_retries,omitempty" yaml:"download_retries,omitempty" validate:"gte=0,lte=20"`
	Bucket          string `json:"bucket,omitempty" yaml:"bucket,omitempty"`
	S3Endpoint      string `json:"s3_endpoint,omitempty" yaml:"s3_endpoint,omitempty" validate:"omitempty,url"`
	S3Region        string `json:"s3_region,omitempty" yaml:"s3_region,omitempty"`

	Verbose bool `json:"verbose,omitempty" yaml:"verbose,omitempty"`
}

// ThresholdOverrides holds optional replacements for recommend.Thresholds
type ThresholdOverrides struct {
	MinSummaryLength    *int `json:"min_summary_length,omitempty" yaml:"min_summary_length,omitempty" validate:"omitempty,gte=0"`
	MinExperienceLength *int `json:"min_experience_length,omitempty" yaml:"min_experience_length,omitempty" validate:"omitempty,gte=0"`
	MinSkillsLength     *int `json:"min_skills_length,omitempty" yaml:"min_skills_length,omitempty" validate:"omitempty,gte=0"`
	MinEducationLength  *int `json:"min_education_length,omitempty" yaml:"min_education_length,omitempty" validate:"omitempty,gte=0"`
	MinActionVerbs      *int `json:"min_action_verbs,omitempty" yaml:"min_action_verbs,omitempty" validate:"omitempty,gte=0"`
}

// Apply returns base with every set override applied
func (o ThresholdOverrides) Apply(base recommend.Thresholds) recommend.Thresholds {
	if o.MinSummaryLength != nil {
		base.MinSummaryLength = *o.MinSummaryLength
	}
	if o.MinExperienceLength != nil {
		base.MinExperienceLength = *o.MinExperienceLength
	}
	if o.MinSkillsLength != nil {
		base.MinSkillsLength = *o.MinSkillsLength
	}
	if o.MinEducationLength != nil {
		base.MinEducationLength = *o.MinEducationLength
	}
	if o.MinActionVerbs != nil {
		base.MinActionVerbs = *o.MinActionVerbs
	}
	return base
}

// Defaults returns the built-in configuration
func Defaults() Config {
	return Config{
		FetchTimeoutSec: DefaultFetchTimeoutSec,
		Port:            DefaultPort,
		RateLimitRPS:    DefaultRateLimitRPS,
		RateLimitBurst:  DefaultRateLimitBurst,
		MaxUploadMB:     DefaultMaxUploadMB,
		AllowedOrigins:  []string{"*"},
		Queue:           DefaultQueue,
		ReplyExchange:   DefaultReplyExchange,
		Workers:         DefaultWorkers,
		DownloadRetries: DefaultDownloadRetries,
	}
}

// LoadConfig loads configuration from a JSON or YAML file, chosen by extension
// (.yaml/.yml for YAML, anything else for JSON).
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
// Required settings (a queue URL for the worker, ...) are checked by the command that needs them.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	if err := c.Thresholds.Apply(recommend.DefaultThresholds()).Validate(); err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	if c.StopwordsFile != "" {
		if _, err := os.Stat(c.StopwordsFile); os.IsNotExist(err) {
			return fmt.Errorf("config error: stopwords file not found: %s", c.StopwordsFile)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// Booleans are not merged since unset and false cannot be told apart.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.StopwordsFile == "" {
		result.StopwordsFile = defaults.StopwordsFile
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.AMQPURL == "" {
		result.AMQPURL = defaults.AMQPURL
	}
	if result.Queue == "" {
		result.Queue = defaults.Queue
	}
	if result.ReplyExchange == "" {
		result.ReplyExchange = defaults.ReplyExchange
	}
	if result.Bucket == "" {
		result.Bucket = defaults.Bucket
	}
	if result.S3Endpoint == "" {
		result.S3Endpoint = defaults.S3Endpoint
	}
	if result.S3Region == "" {
		result.S3Region = defaults.S3Region
	}
	if len(result.AllowedOrigins) == 0 {
		result.AllowedOrigins = defaults.AllowedOrigins
	}

	if result.FetchTimeoutSec == 0 {
		result.FetchTimeoutSec = defaults.FetchTimeoutSec
	}
	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.RateLimitRPS == 0 {
		result.RateLimitRPS = defaults.RateLimitRPS
	}
	if result.RateLimitBurst == 0 {
		result.RateLimitBurst = defaults.RateLimitBurst
	}
	if result.MaxUploadMB == 0 {
		result.MaxUploadMB = defaults.MaxUploadMB
	}
	if result.Workers == 0 {
		result.Workers = defaults.Workers
	}
	if result.DownloadRetries == 0 {
		result.DownloadRetries = defaults.DownloadRetries
	}

	return result
}

// ApplyEnv overrides connection settings from the environment:
// DATABASE_URL, AMQP_URL, S3_BUCKET, S3_ENDPOINT, S3_REGION and PORT.
func (c *Config) ApplyEnv() error {
	setFromEnv(&c.DatabaseURL, "DATABASE_URL")
	setFromEnv(&c.AMQPURL, "AMQP_URL")
	setFromEnv(&c.Bucket, "S3_BUCKET")
	setFromEnv(&c.S3Endpoint, "S3_ENDPOINT")
	setFromEnv(&c.S3Region, "S3_REGION")

	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config error: PORT must be an integer, got %q", v)
		}
		c.Port = port
	}
	return nil
}

func setFromEnv(field *string, key string) {
	if v := os.Getenv(key); v != "" {
		*field = v
	}
}

// RecommendThresholds returns the effective recommendation thresholds
func (c *Config) RecommendThresholds() recommend.Thresholds {
	return c.Thresholds.Apply(recommend.DefaultThresholds())
}

// MaxUploadBytes returns the upload limit in bytes
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

// Load reads an optional config file, applies the environment and fills defaults.
// An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		loaded, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	merged := cfg.MergeWithDefaults(Defaults())
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return &merged, nil
}
