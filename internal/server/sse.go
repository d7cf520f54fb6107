package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
)

// SSE event names.
const (
	eventStep     = "step"
	eventResult   = "result"
	eventError    = "error"
	eventComplete = "complete"
)

// SSEWriter writes Server-Sent Events. Progress callbacks fire from
// concurrent analysis goroutines, so writes are serialized.
type SSEWriter struct {
	mu      sync.Mutex
	w       http.ResponseWriter
	flusher http.Flusher
}

// NewSSEWriter sets the stream headers and returns a writer.
func NewSSEWriter(w http.ResponseWriter) (*SSEWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("streaming not supported")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	return &SSEWriter{w: w, flusher: flusher}, nil
}

// WriteEvent sends one named event with a JSON payload.
func (s *SSEWriter) WriteEvent(event string, data any) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event, jsonData); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// WriteError sends an error event
func (s *SSEWriter) WriteError(message string) {
	s.WriteEvent(eventError, map[string]string{"error": message}) //nolint:errcheck
}

// WriteComplete sends the final event of a stream
func (s *SSEWriter) WriteComplete(runID, status string) {
	s.WriteEvent(eventComplete, map[string]string{ //nolint:errcheck
		"run_id": runID,
		"status": status,
	})
}
