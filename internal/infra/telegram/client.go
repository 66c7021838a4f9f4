// Package telegram is a minimal Telegram Bot API client for sending reports.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf16"
)

const defaultBaseURL = "https://api.telegram.org"

// MaxMessageLength is the Bot API limit for one text message, in UTF-16 code units
const MaxMessageLength = 4096

// SplitMessage cuts text so every piece fits MaxMessageLength.
// Text within the limit comes back as a single piece.
func SplitMessage(text string) []string {
	return splitUTF16(text, MaxMessageLength)
}

// splitUTF16 cuts at a line break when one keeps at least half the piece,
// otherwise at the last rune boundary that fits
func splitUTF16(text string, max int) []string {
	if utf16Len(text) <= max {
		return []string{text}
	}

	var pieces []string
	runes := []rune(text)
	for len(runes) > 0 {
		units, end, lastBreak := 0, 0, -1
		for end < len(runes) {
			n := runeUnits(runes[end])
			if units+n > max {
				break
			}
			units += n
			if runes[end] == '\n' {
				lastBreak = end
			}
			end++
		}
		if end == 0 {
			end = 1
		}
		if end < len(runes) && lastBreak > 0 && 2*lastBreak >= end {
			pieces = append(pieces, string(runes[:lastBreak]))
			runes = runes[lastBreak+1:]
			continue
		}
		pieces = append(pieces, string(runes[:end]))
		runes = runes[end:]
	}
	return pieces
}

func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		n += runeUnits(r)
	}
	return n
}

// runeUnits counts invalid runes as the single unit of U+FFFD
func runeUnits(r rune) int {
	if n := utf16.RuneLen(r); n > 0 {
		return n
	}
	return 1
}

// Client calls the Bot API with one bot token
type Client struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewClient creates a Bot API client; an empty baseURL uses api.telegram.org
func NewClient(token, baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// APIError is a Bot API answer with ok=false
type APIError struct {
	Method      string
	StatusCode  int
	ErrorCode   int
	Description string
	RetryAfter  int // seconds, from parameters.retry_after
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telegram: %s: %d %s", e.Method, e.ErrorCode, e.Description)
}

// SendMessage posts plain text to a chat id (numeric) or @channel username
func (c *Client) SendMessage(ctx context.Context, chatID, text string) error {
	payload := map[string]any{
		"chat_id":                  chatRef(chatID),
		"text":                     text,
		"disable_web_page_preview": true,
	}
	_, err := c.call(ctx, "sendMessage", payload)
	return err
}

func (c *Client) call(ctx context.Context, method string, payload map[string]any) (json.RawMessage, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("telegram: marshal %s: %w", method, err)
	}

	url := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("telegram: creating request for %s: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("telegram: %s request failed: %w", method, err)
	}
	defer resp.Body.Close()

	var result struct {
		OK          bool            `json:"ok"`
		ErrorCode   int             `json:"error_code"`
		Description string          `json:"description"`
		Result      json.RawMessage `json:"result"`
		Parameters  *struct {
			RetryAfter int `json:"retry_after"`
		} `json:"parameters"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("telegram: decoding %s response (status %d): %w", method, resp.StatusCode, err)
	}
	if !result.OK {
		apiErr := &APIError{
			Method:      method,
			StatusCode:  resp.StatusCode,
			ErrorCode:   result.ErrorCode,
			Description: result.Description,
		}
		if result.Parameters != nil {
			apiErr.RetryAfter = result.Parameters.RetryAfter
		}
		return nil, apiErr
	}
	return result.Result, nil
}

// chatRef sends numeric ids as numbers and usernames as strings
func chatRef(chatID string) any {
	if id, err := strconv.ParseInt(chatID, 10, 64); err == nil {
		return id
	}
	return chatID
}
