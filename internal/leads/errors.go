package leads

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrLeadNotFound is returned when a lead is not found
	ErrLeadNotFound = errors.New("lead not found")

	// ErrInvalidBody is returned when the request body is not a JSON object
	ErrInvalidBody = errors.New("invalid request body")
)

// ValidationError lists the required fields absent from a submission.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return "Missing required fields: " + strings.Join(e.Missing, ", ")
}

// GatewayError is a non-2xx answer from the CRM. Body is the raw response text.
type GatewayError struct {
	StatusCode int
	Body       string
}

func (e *GatewayError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("crm responded %d", e.StatusCode)
	}
	return fmt.Sprintf("crm responded %d: %s", e.StatusCode, e.Body)
}

// NetworkError wraps a transport failure talking to the CRM.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return "crm request failed: " + e.Err.Error()
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}
