package ingestion

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"
)

var (
	// ErrInvalidURL is returned when a job URL is malformed
	ErrInvalidURL = errors.New("invalid URL")
	// ErrHTTPRequestFailed is returned when the posting could not be downloaded
	ErrHTTPRequestFailed = errors.New("HTTP request failed")
	// ErrContentExtractionFailed is returned when no text could be extracted
	ErrContentExtractionFailed = errors.New("content extraction failed")
	// ErrUnsupportedFormat is returned for uploads that are not text, PDF or DOCX
	ErrUnsupportedFormat = errors.New("unsupported file format")
	// ErrEmptyContent is returned when a source yields no text
	ErrEmptyContent = errors.New("no text content")
)

// SourceKind records where a job description came from.
type SourceKind string

// Source kinds.
const (
	SourceText SourceKind = "text"
	SourceURL  SourceKind = "url"
	SourceFile SourceKind = "file"
)

// Source describes an ingested job description.
type Source struct {
	Kind      SourceKind `json:"kind"`
	URL       string     `json:"url,omitempty"`
	Platform  string     `json:"platform,omitempty"`
	Filename  string     `json:"filename,omitempty"`
	MIMEType  string     `json:"mime_type,omitempty"`
	Rendered  bool       `json:"rendered,omitempty"` // fetched through a headless browser
	Chars     int        `json:"chars"`
	Hash      string     `json:"hash"`      // SHA256 hex digest of the cleaned text
	Timestamp string     `json:"timestamp"` // RFC3339
}

func newSource(kind SourceKind, cleaned string) *Source {
	sum := sha256.Sum256([]byte(cleaned))
	return &Source{
		Kind:      kind,
		Chars:     len(cleaned),
		Hash:      hex.EncodeToString(sum[:]),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// FromText cleans pasted job description text.
func FromText(text string) (string, *Source) {
	cleaned := CleanText(text)
	return cleaned, newSource(SourceText, cleaned)
}
