package api

import (
	"fmt"
	"time"
)

// TimeoutError is returned in strict mode when a request exceeds the client
// timeout.
type TimeoutError struct {
	Endpoint string
	Timeout  time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("request to [%s] timed out after %v", e.Endpoint, e.Timeout)
}

// BackendError is returned in strict mode for non-2xx responses, transport
// failures and undecodable bodies. Status is zero when no response arrived.
type BackendError struct {
	Endpoint string
	Status   int
	Err      error
}

func (e *BackendError) Error() string {
	if e.Status != 0 && e.Err != nil {
		return fmt.Sprintf("backend error for [%s]: status %d: %v", e.Endpoint, e.Status, e.Err)
	}
	if e.Status != 0 {
		return fmt.Sprintf("backend error for [%s]: status %d", e.Endpoint, e.Status)
	}
	return fmt.Sprintf("backend error for [%s]: %v", e.Endpoint, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

func (e *BackendError) Cause() error {
	return e.Err
}
