package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/jonathan/resume-analyzer/internal/fetch"
)

var (
	// ErrInvalidURL is returned when URL is malformed
	ErrInvalidURL = errors.New("invalid URL")
	// ErrHTTPRequestFailed is returned when HTTP request fails
	ErrHTTPRequestFailed = errors.New("HTTP request failed")
	// ErrContentExtractionFailed is returned when content extraction fails
	ErrContentExtractionFailed = errors.New("content extraction failed")
)

// URLOptions configures FromURL
type URLOptions struct {
	// UseBrowser re-renders pages whose extracted text is too short in headless Chrome
	UseBrowser bool
	Verbose    bool
	Fetch      *fetch.Options
	Browser    fetch.BrowserOptions
	// Render overrides the headless renderer; nil uses fetch.WithBrowser
	Render fetch.Renderer
}

// FromURL fetches a job posting page, extracts the description with
// platform-specific selectors and cleans it.
func FromURL(ctx context.Context, urlStr string, opts URLOptions) (string, *Metadata, error) {
	if err := fetch.ValidateURL(urlStr); err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}

	platform := fetch.DetectPlatform(urlStr)
	contentSelectors := fetch.ContentSelectors(urlStr)
	noiseSelectors := fetch.NoiseSelectors(urlStr)
	if opts.Verbose {
		log.Printf("[VERBOSE] URL: %s", urlStr)
		log.Printf("[VERBOSE] Detected platform: %s", platform)
	}

	result, err := fetch.URL(ctx, urlStr, opts.Fetch)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrHTTPRequestFailed, err)
	}
	if opts.Verbose {
		log.Printf("[VERBOSE] Fetched HTML: %d bytes", len(result.HTML))
	}

	html := result.HTML
	text, err := fetch.ExtractMainText(html, contentSelectors, noiseSelectors...)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrContentExtractionFailed, err)
	}

	rendered := false
	if opts.UseBrowser && fetch.ShouldUseBrowser(text) {
		if opts.Verbose {
			log.Printf("[VERBOSE] Content too short (%d chars < %d), rendering in browser", len(text), fetch.MinContentLength)
		}
		render := opts.Render
		if render == nil {
			render = fetch.WithBrowser
		}
		browserOpts := opts.Browser
		browserOpts.Verbose = opts.Verbose

		browserHTML, browserErr := render(ctx, urlStr, browserOpts)
		if browserErr != nil {
			// keep the HTTP text
			log.Printf("[WARN] Browser rendering failed for %s: %v", urlStr, browserErr)
		} else if browserText, extractErr := fetch.ExtractMainText(browserHTML, contentSelectors, noiseSelectors...); extractErr == nil && len(browserText) > len(text) {
			text = browserText
			html = browserHTML
			rendered = true
		}
	}

	cleaned := CleanText(text)
	if cleaned == "" {
		return "", nil, fmt.Errorf("%w: %w", ErrContentExtractionFailed, ErrEmptyJobDescription)
	}
	if opts.Verbose {
		log.Printf("[VERBOSE] Cleaned text: %d chars", len(cleaned))
	}

	metadata := NewMetadata(cleaned, SourceURL)
	metadata.Origin = urlStr
	metadata.Platform = string(platform)
	metadata.Title = fetch.PageTitle(html)
	metadata.Rendered = rendered
	return cleaned, metadata, nil
}
