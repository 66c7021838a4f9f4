package data

import (
	"context"

	"github.com/pkg/errors"
	goopenai "github.com/sashabaranov/go-openai"

	"github.com/DevRickLin/daily-digest/internal/biz/domain"
	"github.com/DevRickLin/daily-digest/internal/biz/repo"
	"github.com/DevRickLin/daily-digest/internal/infra/openai"
)

// openaiRepo implements the summarizer over an OpenAI-compatible chat endpoint
type openaiRepo struct {
	client *openai.Client
}

// NewOpenAIRepo creates a chat-completion summarizer; nil client disables AI
func NewOpenAIRepo(client *openai.Client) repo.SummarizerRepo {
	if client == nil {
		return nil
	}
	return &openaiRepo{client: client}
}

func (r *openaiRepo) Name() string {
	return "openai"
}

func (r *openaiRepo) GenerateBrief(ctx context.Context, req repo.BriefRequest) (*repo.BriefResponse, error) {
	resp, err := r.client.Chat(ctx, req.SystemInstruction, req.Prompt)
	if err != nil {
		var apiErr *goopenai.APIError
		if errors.As(err, &apiErr) && apiErr.HTTPStatusCode != 0 {
			return nil, mapStatusError(r.Name(), apiErr.HTTPStatusCode, "", apiErr.Message)
		}
		var reqErr *goopenai.RequestError
		if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
			body := ""
			if reqErr.Err != nil {
				body = reqErr.Err.Error()
			}
			return nil, mapStatusError(r.Name(), reqErr.HTTPStatusCode, "", body)
		}
		return nil, err
	}

	return &repo.BriefResponse{
		Text: resp.Text,
		Usage: &domain.TokenUsage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}, nil
}
