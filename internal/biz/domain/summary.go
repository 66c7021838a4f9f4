package domain

import (
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"
)

// DefaultRateLimitCooldown applies when a 429 carries no parseable delay
const DefaultRateLimitCooldown = 15 * time.Minute

// SummaryKind tags the variant of a SummaryOutcome
type SummaryKind int

const (
	SummarySkipped SummaryKind = iota
	SummarySucceeded
	SummaryFailed
)

func (k SummaryKind) String() string {
	switch k {
	case SummarySucceeded:
		return "succeeded"
	case SummaryFailed:
		return "failed"
	default:
		return "skipped"
	}
}

// SummaryOutcome is the result of one summarization attempt.
// Exactly one of Reason, Text, Err is meaningful depending on Kind.
type SummaryOutcome struct {
	Kind   SummaryKind
	Reason string // Skipped
	Text   string // Succeeded
	Err    error  // Failed
	Usage  *TokenUsage
}

// Skipped builds a skipped outcome
func Skipped(reason string) SummaryOutcome {
	return SummaryOutcome{Kind: SummarySkipped, Reason: reason}
}

// Succeeded builds a successful outcome
func Succeeded(text string, usage *TokenUsage) SummaryOutcome {
	return SummaryOutcome{Kind: SummarySucceeded, Text: text, Usage: usage}
}

// Failed builds a failed outcome
func Failed(err error) SummaryOutcome {
	return SummaryOutcome{Kind: SummaryFailed, Err: err}
}

// Brief returns the summary text when the attempt succeeded
func (o SummaryOutcome) Brief() (string, bool) {
	if o.Kind != SummarySucceeded {
		return "", false
	}
	return o.Text, true
}

// TokenUsage carries the model's usage counters when reported
type TokenUsage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// RateLimitState is shared by every summarizer attempt in the process
type RateLimitState struct {
	mu            sync.Mutex
	cooldownUntil time.Time
	requests      int64
}

// NewRateLimitState creates an empty state
func NewRateLimitState() *RateLimitState {
	return &RateLimitState{}
}

// CoolingDown reports whether now is before the cooldown deadline
func (s *RateLimitState) CoolingDown(now time.Time) (bool, time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Before(s.cooldownUntil), s.cooldownUntil
}

// StartCooldown pushes the deadline to until; an earlier deadline never shortens it
func (s *RateLimitState) StartCooldown(until time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if until.After(s.cooldownUntil) {
		s.cooldownUntil = until
	}
}

// NextRequestID increments and returns the request counter
func (s *RateLimitState) NextRequestID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests++
	return s.requests
}

// Requests returns how many attempts were issued
func (s *RateLimitState) Requests() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests
}

var retryInPattern = regexp.MustCompile(`(?i)retry in\s+([0-9]+(?:\.[0-9]+)?)\s*s`)

// ParseRetryDelay reads a retry delay from a Retry-After header (seconds)
// or a "retry in Ns" phrase in the error body
func ParseRetryDelay(header, body string) (time.Duration, bool) {
	if h := strings.TrimSpace(header); h != "" {
		if sec, err := strconv.ParseFloat(h, 64); err == nil && sec >= 0 {
			return time.Duration(sec * float64(time.Second)), true
		}
	}
	if m := retryInPattern.FindStringSubmatch(body); m != nil {
		if sec, err := strconv.ParseFloat(m[1], 64); err == nil {
			return time.Duration(sec * float64(time.Second)), true
		}
	}
	return 0, false
}
