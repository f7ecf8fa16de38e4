package main

import (
	"fmt"
	"log"

	"github.com/jonathan/resume-analyzer/internal/analysis"
	"github.com/jonathan/resume-analyzer/internal/config"
	"github.com/jonathan/resume-analyzer/internal/textproc"
)

// newAnalyzer builds an Analyzer from the stopwords file and thresholds in cfg
func newAnalyzer(cfg *config.Config) (*analysis.Analyzer, error) {
	opts := analysis.Options{}
	if cfg.StopwordsFile != "" {
		res, err := textproc.LoadResources(cfg.StopwordsFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load stopwords: %w", err)
		}
		if cfg.Verbose {
			log.Printf("[VERBOSE] Loaded %d stopwords from %s", res.StopwordCount(), cfg.StopwordsFile)
		}
		opts.Resources = res
	}
	thresholds := cfg.RecommendThresholds()
	opts.Thresholds = &thresholds
	return analysis.New(opts), nil
}
