package pixellab

import (
	"fmt"
	"time"
)

// RequestError reports input the service rejected (bad parameters,
// unsupported sizes, authentication problems). Never retried by the engine.
type RequestError struct {
	Endpoint string
	Status   int
	Message  string
}

func (e *RequestError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("generation request rejected (%s, HTTP %d): %s", e.Endpoint, e.Status, e.Message)
	}
	return fmt.Sprintf("generation request rejected (%s): %s", e.Endpoint, e.Message)
}

// FailedError reports a job the service itself marked as failed.
// Surfaced to the caller with the service diagnostic; never auto-retried.
type FailedError struct {
	JobID   string
	Message string
}

func (e *FailedError) Error() string {
	return fmt.Sprintf("generation job %s failed: %s", e.JobID, e.Message)
}

// TimeoutError reports a job that did not complete within the caller's
// wait ceiling. The job handle stays valid; waiting can be resumed.
type TimeoutError struct {
	JobID  string
	Waited time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("generation job %s did not complete within %s", e.JobID, e.Waited)
}
