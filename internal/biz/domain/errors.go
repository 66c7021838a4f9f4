package domain

import (
	"fmt"
	"time"
)

// ExternalServiceError is a non-2xx, non-429 answer from an external API
type ExternalServiceError struct {
	Service string
	Status  int
	Body    string
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d: %s", e.Service, e.Status, truncateBody(e.Body))
}

// RateLimitedError is an HTTP 429 answer. HasRetryAfter is false when no delay could be parsed.
type RateLimitedError struct {
	Service       string
	RetryAfter    time.Duration
	HasRetryAfter bool
	Body          string
}

func (e *RateLimitedError) Error() string {
	if e.HasRetryAfter {
		return fmt.Sprintf("%s: rate limited, retry after %s", e.Service, e.RetryAfter)
	}
	return fmt.Sprintf("%s: rate limited", e.Service)
}

// DeliveryError is a failed send to one delivery target
type DeliveryError struct {
	Target string
	Part   int
	Err    error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("deliver to %s (part %d): %v", e.Target, e.Part, e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

func truncateBody(s string) string {
	const max = 500
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
