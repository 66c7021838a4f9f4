package repo

import (
	"context"

	"github.com/DevRickLin/daily-digest/internal/biz/domain"
)

// BriefItem is one message as sent to the model
type BriefItem struct {
	Sender string `json:"sender"`
	Time   string `json:"time"`
	Text   string `json:"text"`
}

// BriefRequest is one summarization call
type BriefRequest struct {
	RequestID         int64
	SystemInstruction string
	Prompt            string // user prompt with the embedded message array
}

// BriefResponse carries the concatenated model text and optional usage counters
type BriefResponse struct {
	Text  string
	Usage *domain.TokenUsage
}

// SummarizerRepo issues text-generation calls.
// A 429 must surface as *domain.RateLimitedError; other non-2xx as *domain.ExternalServiceError.
type SummarizerRepo interface {
	Name() string
	GenerateBrief(ctx context.Context, req BriefRequest) (*BriefResponse, error)
}
