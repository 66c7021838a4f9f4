// Package openai is a chat-completion client for OpenAI-compatible endpoints (Moonshot by default).
package openai

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const (
	DefaultBaseURL = "https://api.moonshot.cn/v1"
	DefaultModel   = "moonshot-v1-8k"
)

// Usage holds token counters of one completion
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Completion is the text and usage of one call
type Completion struct {
	Text  string
	Usage Usage
}

// Client wraps go-openai for one model
type Client struct {
	client *openai.Client
	model  string
}

// NewClient creates a client; empty baseURL and model use Moonshot defaults
func NewClient(apiKey, model, baseURL string) *Client {
	if model == "" {
		model = DefaultModel
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	config := openai.DefaultConfig(apiKey)
	config.BaseURL = baseURL

	return &Client{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}
}

// Model returns the configured model name
func (c *Client) Model() string {
	return c.model
}

// Chat sends a system prompt and one user message, returning every choice's text concatenated
func (c *Client) Chat(ctx context.Context, systemPrompt, userMessage string) (*Completion, error) {
	ctx, cancel := context.WithTimeout(ctx, 90*time.Second)
	defer cancel()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userMessage},
		},
		Temperature: 0.3,
		MaxTokens:   600,
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}

	out := &Completion{
		Usage: Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}
	if len(resp.Choices) > 0 {
		out.Text = resp.Choices[0].Message.Content
	}
	return out, nil
}
