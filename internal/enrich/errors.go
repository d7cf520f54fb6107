package enrich

import "fmt"

// Reason classifies why an enrichment failed.
type Reason string

// Failure reasons.
const (
	ReasonTransport     Reason = "transport"
	ReasonTimeout       Reason = "timeout"
	ReasonCanceled      Reason = "canceled"
	ReasonEmptyResponse Reason = "empty_response"
	ReasonInvalidTask   Reason = "invalid_task"
	ReasonPrompt        Reason = "prompt"
)

// InvalidTaskError is returned for task names that are not recognized.
type InvalidTaskError struct {
	Task string
}

func (e *InvalidTaskError) Error() string {
	return fmt.Sprintf("unknown enrichment task %q", e.Task)
}

// Error wraps a failed enrichment call.
type Error struct {
	Task   Task
	Reason Reason
	Cause  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("enrichment %s failed (%s): %v", e.Task, e.Reason, e.Cause)
}

func (e *Error) Unwrap() error {
	return e.Cause
}
