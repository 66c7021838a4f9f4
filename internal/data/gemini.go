package data

import (
	"context"
	"net/http"

	"github.com/pkg/errors"

	"github.com/DevRickLin/daily-digest/internal/biz/domain"
	"github.com/DevRickLin/daily-digest/internal/biz/repo"
	"github.com/DevRickLin/daily-digest/internal/infra/gemini"
)

// geminiRepo implements the summarizer over Gemini generateContent
type geminiRepo struct {
	client *gemini.Client
}

// NewGeminiRepo creates a Gemini summarizer; nil client disables AI
func NewGeminiRepo(client *gemini.Client) repo.SummarizerRepo {
	if client == nil {
		return nil
	}
	return &geminiRepo{client: client}
}

func (r *geminiRepo) Name() string {
	return "gemini"
}

func (r *geminiRepo) GenerateBrief(ctx context.Context, req repo.BriefRequest) (*repo.BriefResponse, error) {
	resp, err := r.client.GenerateContent(ctx, &gemini.GenerateRequest{
		SystemInstruction: &gemini.Content{Parts: []gemini.Part{{Text: req.SystemInstruction}}},
		Contents: []gemini.Content{
			{Role: "user", Parts: []gemini.Part{{Text: req.Prompt}}},
		},
	})
	if err != nil {
		var httpErr *gemini.HTTPError
		if errors.As(err, &httpErr) {
			return nil, mapStatusError(r.Name(), httpErr.StatusCode, httpErr.RetryAfter, httpErr.Body)
		}
		return nil, err
	}

	out := &repo.BriefResponse{Text: resp.Text()}
	if u := resp.UsageMetadata; u != nil {
		out.Usage = &domain.TokenUsage{
			PromptTokens:     u.PromptTokenCount,
			CompletionTokens: u.CandidatesTokenCount,
			TotalTokens:      u.TotalTokenCount,
		}
	}
	return out, nil
}

// mapStatusError turns an HTTP failure into the summarizer error contract
func mapStatusError(service string, status int, retryAfter, body string) error {
	if status == http.StatusTooManyRequests {
		delay, ok := domain.ParseRetryDelay(retryAfter, body)
		return &domain.RateLimitedError{Service: service, RetryAfter: delay, HasRetryAfter: ok, Body: body}
	}
	return &domain.ExternalServiceError{Service: service, Status: status, Body: body}
}
