package data

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DevRickLin/daily-digest/internal/biz/domain"
	"github.com/DevRickLin/daily-digest/internal/biz/repo"
	"github.com/DevRickLin/daily-digest/internal/infra/gemini"
	"github.com/DevRickLin/daily-digest/internal/infra/openai"
)

func briefRequest() repo.BriefRequest {
	return repo.BriefRequest{RequestID: 1, SystemInstruction: "sys", Prompt: "Summarize these 1 group messages:\n[]"}
}

func TestGeminiRepo_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"brief"}]}}],
			"usageMetadata":{"promptTokenCount":4,"candidatesTokenCount":2,"totalTokenCount":6}}`))
	}))
	defer server.Close()

	r := NewGeminiRepo(gemini.NewClient("k", "m", server.URL))
	resp, err := r.GenerateBrief(context.Background(), briefRequest())
	require.NoError(t, err)

	assert.Equal(t, "brief", resp.Text)
	assert.Equal(t, &domain.TokenUsage{PromptTokens: 4, CompletionTokens: 2, TotalTokens: 6}, resp.Usage)
}

func TestGeminiRepo_RateLimited(t *testing.T) {
	tests := []struct {
		name   string
		header string
		body   string
		want   time.Duration
		parsed bool
	}{
		{"retry-after header", "5", `{}`, 5 * time.Second, true},
		{"retry-after zero", "0", `{}`, 0, true},
		{"retry phrase in body", "", `{"error":{"message":"Please retry in 12.5s."}}`, 12500 * time.Millisecond, true},
		{"no delay", "", `{"error":{"message":"quota"}}`, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if tt.header != "" {
					w.Header().Set("Retry-After", tt.header)
				}
				w.WriteHeader(http.StatusTooManyRequests)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := NewGeminiRepo(gemini.NewClient("k", "m", server.URL)).GenerateBrief(context.Background(), briefRequest())

			var rl *domain.RateLimitedError
			require.True(t, errors.As(err, &rl), "got %v", err)
			assert.Equal(t, tt.want, rl.RetryAfter)
			assert.Equal(t, tt.parsed, rl.HasRetryAfter)
			assert.Equal(t, "gemini", rl.Service)
		})
	}
}

func TestGeminiRepo_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`internal`))
	}))
	defer server.Close()

	_, err := NewGeminiRepo(gemini.NewClient("k", "m", server.URL)).GenerateBrief(context.Background(), briefRequest())

	var svcErr *domain.ExternalServiceError
	require.True(t, errors.As(err, &svcErr))
	assert.Equal(t, 500, svcErr.Status)
	assert.Equal(t, "internal", svcErr.Body)
}

func TestOpenAIRepo_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"x","object":"chat.completion","model":"m",
			"choices":[{"index":0,"message":{"role":"assistant","content":"brief"},"finish_reason":"stop"}],
			"usage":{"prompt_tokens":7,"completion_tokens":3,"total_tokens":10}}`))
	}))
	defer server.Close()

	r := NewOpenAIRepo(openai.NewClient("k", "m", server.URL))
	resp, err := r.GenerateBrief(context.Background(), briefRequest())
	require.NoError(t, err)

	assert.Equal(t, "brief", resp.Text)
	assert.Equal(t, 10, resp.Usage.TotalTokens)
}

func TestOpenAIRepo_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"rate limit reached, please retry in 20s","type":"rate_limit_reached_error"}}`))
	}))
	defer server.Close()

	_, err := NewOpenAIRepo(openai.NewClient("k", "m", server.URL)).GenerateBrief(context.Background(), briefRequest())

	var rl *domain.RateLimitedError
	require.True(t, errors.As(err, &rl), "got %v", err)
	assert.Equal(t, 20*time.Second, rl.RetryAfter)
	assert.True(t, rl.HasRetryAfter)
	assert.Equal(t, "openai", rl.Service)
}

func TestNewSummarizerRepos_NilClient(t *testing.T) {
	assert.Nil(t, NewGeminiRepo(nil))
	assert.Nil(t, NewOpenAIRepo(nil))
}
