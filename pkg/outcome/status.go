package outcome

import (
	"fmt"
	"strings"
)

// Status is the runner's raw result tag.
type Status string

const (
	StatusPassed    Status = "passed"
	StatusFailed    Status = "failed"
	StatusUndefined Status = "undefined"
	StatusPending   Status = "pending"
	StatusSkipped   Status = "skipped"
	StatusAmbiguous Status = "ambiguous"
)

// ParseStatus decodes a wire status tag. Matching is case-insensitive.
func ParseStatus(s string) (Status, error) {
	switch st := Status(strings.ToLower(strings.TrimSpace(s))); st {
	case StatusPassed, StatusFailed, StatusUndefined, StatusPending, StatusSkipped, StatusAmbiguous:
		return st, nil
	default:
		return "", fmt.Errorf("unknown status %q", s)
	}
}

// PendingError marks a step or hook as not yet implemented.
type PendingError struct {
	Message string
}

func (e *PendingError) Error() string {
	if e.Message == "" {
		return defaultPendingMessage
	}
	return e.Message
}

const defaultPendingMessage = "TODO: implement me"

// NewPending returns the cause synthesised for outcomes that are pending or
// undefined without a cause of their own.
func NewPending() *PendingError {
	return &PendingError{Message: defaultPendingMessage}
}

// AssumptionError marks a step or hook whose precondition did not hold.
type AssumptionError struct {
	Message string
}

func (e *AssumptionError) Error() string {
	return "assumption violated: " + e.Message
}
