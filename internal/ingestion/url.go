package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/jonathan/smart-resume/internal/fetch"
)

// URLIngester downloads job postings and extracts their text.
type URLIngester struct {
	Fetcher *fetch.Fetcher
	// Renderer is used when the plain fetch yields too little text. Nil disables the fallback.
	Renderer fetch.Renderer
	Verbose  bool
}

// Ingest fetches rawURL and returns the cleaned posting text.
func (u *URLIngester) Ingest(ctx context.Context, rawURL string) (string, *Source, error) {
	fetcher := u.Fetcher
	if fetcher == nil {
		fetcher = fetch.New()
	}

	platform := fetch.DetectPlatform(rawURL)
	if u.Verbose {
		log.Printf("[VERBOSE] Job URL: %s (platform: %s)", rawURL, platform)
	}

	page, err := fetcher.Get(ctx, rawURL)
	if err != nil {
		var fe *fetch.Error
		if errors.As(err, &fe) && fe.Message == "invalid URL" {
			return "", nil, fmt.Errorf("%w: %w", ErrInvalidURL, err)
		}
		return "", nil, fmt.Errorf("%w: %w", ErrHTTPRequestFailed, err)
	}

	content := fetch.ContentSelectors(rawURL)
	noise := fetch.NoiseSelectors(rawURL)

	text, err := fetch.ExtractMainText(page.HTML, content, noise...)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrContentExtractionFailed, err)
	}
	if u.Verbose {
		log.Printf("[VERBOSE] Extracted text: %d chars", len(text))
	}

	rendered := false
	if u.Renderer != nil && fetch.ShouldUseBrowser(text) {
		if u.Verbose {
			log.Printf("[VERBOSE] Content too short (%d chars < %d), rendering in browser", len(text), fetch.MinContentLength)
		}
		html, rerr := u.Renderer.Render(ctx, rawURL)
		switch {
		case rerr != nil:
			log.Printf("[ingestion] browser rendering failed, keeping HTTP content: %v", rerr)
		default:
			if browserText, xerr := fetch.ExtractMainText(html, content, noise...); xerr == nil && len(browserText) > len(text) {
				text = browserText
				rendered = true
			}
		}
	}

	cleaned := CleanText(text)
	if cleaned == "" {
		return "", nil, fmt.Errorf("%w: %s", ErrEmptyContent, rawURL)
	}

	src := newSource(SourceURL, cleaned)
	src.URL = rawURL
	src.Platform = string(platform)
	src.Rendered = rendered
	return cleaned, src, nil
}
