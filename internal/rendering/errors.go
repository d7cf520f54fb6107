// Package rendering serializes resume documents to DOCX, packages them for
// download and renders QR images.
package rendering

import "fmt"

// RenderError represents a failure to serialize a document
type RenderError struct {
	Message string
	Cause   error
}

func (e *RenderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("render error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("render error: %s", e.Message)
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}

// QRError represents a failure to encode a QR image
type QRError struct {
	Data  string
	Cause error
}

func (e *QRError) Error() string {
	return fmt.Sprintf("qr error: cannot encode %d bytes: %v", len(e.Data), e.Cause)
}

func (e *QRError) Unwrap() error {
	return e.Cause
}
