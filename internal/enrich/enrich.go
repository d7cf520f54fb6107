package enrich

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/jonathan/smart-resume/internal/llm"
)

// Result is the outcome of one enrichment call. Exactly one of Text or Err is meaningful.
type Result struct {
	Task Task
	Text string
	Err  error
}

// OK reports whether the call produced text.
func (r Result) OK() bool {
	return r.Err == nil
}

// Reason returns the failure classification, or "" on success.
func (r Result) Reason() Reason {
	var e *Error
	if errors.As(r.Err, &e) {
		return e.Reason
	}
	if r.Err != nil {
		return ReasonTransport
	}
	return ""
}

// Display returns the text shown to the user: the generated text on success,
// or a readable "Error <action>: <cause>" line on failure.
func (r Result) Display() string {
	if r.OK() {
		return r.Text
	}
	cause := r.Err
	var e *Error
	if errors.As(r.Err, &e) && e.Cause != nil {
		cause = e.Cause
	}
	action := "running " + string(r.Task)
	if info, ok := tasks[r.Task]; ok {
		action = info.action
	}
	return fmt.Sprintf("Error %s: %v", action, cause)
}

// MarshalJSON exposes the result with its display text and failure details.
func (r Result) MarshalJSON() ([]byte, error) {
	out := struct {
		Task    Task   `json:"task"`
		Title   string `json:"title"`
		OK      bool   `json:"ok"`
		Text    string `json:"text,omitempty"`
		Display string `json:"display"`
		Error   string `json:"error,omitempty"`
		Reason  Reason `json:"reason,omitempty"`
	}{
		Task:    r.Task,
		Title:   r.Task.Title(),
		OK:      r.OK(),
		Text:    r.Text,
		Display: r.Display(),
		Reason:  r.Reason(),
	}
	if r.Err != nil {
		out.Error = r.Err.Error()
	}
	return json.Marshal(out)
}

// Enricher performs a single enrichment. Implementations never panic on
// service failures; they report them in the Result.
type Enricher interface {
	Enrich(ctx context.Context, task Task, in Input) Result
}

// Func adapts a plain function to the Enricher interface.
type Func func(ctx context.Context, task Task, in Input) Result

// Enrich calls f.
func (f Func) Enrich(ctx context.Context, task Task, in Input) Result {
	return f(ctx, task, in)
}

// Client is the Enricher backed by a generative-text service.
// It keeps no state between calls and may be shared across requests.
type Client struct {
	llm     llm.Client
	timeout time.Duration
	verbose bool
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout bounds each call. Zero leaves the call bounded only by the caller's context.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithVerbose logs every call.
func WithVerbose(v bool) Option {
	return func(c *Client) { c.verbose = v }
}

// NewClient wraps an llm.Client.
func NewClient(client llm.Client, opts ...Option) *Client {
	c := &Client{llm: client}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Enrich builds the task's prompt and sends it once. There are no retries.
func (c *Client) Enrich(ctx context.Context, task Task, in Input) Result {
	prompt, err := BuildPrompt(task, in)
	if err != nil {
		reason := ReasonPrompt
		var ite *InvalidTaskError
		if errors.As(err, &ite) {
			reason = ReasonInvalidTask
		}
		return Result{Task: task, Err: &Error{Task: task, Reason: reason, Cause: err}}
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	text, err := c.llm.GenerateContent(ctx, prompt, task.Tier())
	if err != nil {
		reason := classify(ctx, err)
		if c.verbose {
			log.Printf("[enrich] %s failed after %v (%s): %v", task, time.Since(start), reason, err)
		}
		return Result{Task: task, Err: &Error{Task: task, Reason: reason, Cause: err}}
	}

	if c.verbose {
		log.Printf("[enrich] %s: %d chars in %v", task, len(text), time.Since(start))
	}
	return Result{Task: task, Text: text}
}

func classify(ctx context.Context, err error) Reason {
	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		return ReasonTimeout
	case errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled):
		return ReasonCanceled
	case errors.Is(err, llm.ErrEmptyResponse):
		return ReasonEmptyResponse
	default:
		return ReasonTransport
	}
}
