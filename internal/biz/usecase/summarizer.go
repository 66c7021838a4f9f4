package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/DevRickLin/daily-digest/internal/biz/domain"
	"github.com/DevRickLin/daily-digest/internal/biz/repo"
)

// DefaultSystemInstruction asks the model for a short team-chat brief
const DefaultSystemInstruction = `You summarize one day of a team group chat.

You receive a JSON array of messages with sender, local time and text.
Write a short brief in plain text covering:
1. Main topics discussed
2. Decisions that were made
3. Open asks and who they are addressed to
4. Blockers or risks mentioned

Keep it under 200 words, use short bullet lines, and do not invent facts that are not in the messages.`

// SummarizerConfig tunes what is sent to the model
type SummarizerConfig struct {
	SystemInstruction  string
	MaxMessages        int // most recent N messages sent
	MaxCharsPerMessage int // per-message truncation
	Offset             int // civil timezone, minutes east of UTC, for time labels
}

// DefaultSummarizerConfig is used for zero fields
var DefaultSummarizerConfig = SummarizerConfig{
	SystemInstruction:  DefaultSystemInstruction,
	MaxMessages:        300,
	MaxCharsPerMessage: 400,
	Offset:             330,
}

// SummarizerUsecase turns accepted messages into a brief, honoring a shared cooldown
type SummarizerUsecase struct {
	summarizer repo.SummarizerRepo // nil when no API key is configured
	state      *domain.RateLimitState
	cfg        SummarizerConfig
	now        func() time.Time
	logger     *log.Logger
}

// NewSummarizerUsecase creates a summarizer usecase; a nil repo disables AI briefs
func NewSummarizerUsecase(summarizer repo.SummarizerRepo, state *domain.RateLimitState, cfg SummarizerConfig, logger *log.Logger) *SummarizerUsecase {
	if state == nil {
		state = domain.NewRateLimitState()
	}
	if cfg.SystemInstruction == "" {
		cfg.SystemInstruction = DefaultSummarizerConfig.SystemInstruction
	}
	if cfg.MaxMessages <= 0 {
		cfg.MaxMessages = DefaultSummarizerConfig.MaxMessages
	}
	if cfg.MaxCharsPerMessage <= 0 {
		cfg.MaxCharsPerMessage = DefaultSummarizerConfig.MaxCharsPerMessage
	}
	return &SummarizerUsecase{
		summarizer: summarizer,
		state:      state,
		cfg:        cfg,
		now:        time.Now,
		logger:     logger.WithPrefix("summarizer"),
	}
}

// IsEnabled reports whether a backend is configured
func (uc *SummarizerUsecase) IsEnabled() bool {
	return uc.summarizer != nil
}

// Summarize produces a brief. Rate limits are absorbed into the cooldown and reported as Skipped.
func (uc *SummarizerUsecase) Summarize(ctx context.Context, messages []domain.AcceptedMessage) domain.SummaryOutcome {
	if uc.summarizer == nil {
		return domain.Skipped("no API key configured")
	}
	if len(messages) == 0 {
		return domain.Skipped("no messages")
	}
	if cooling, until := uc.state.CoolingDown(uc.now()); cooling {
		uc.logger.Info("skipping AI brief, cooling down", "until", until.Format(time.RFC3339))
		return domain.Skipped("rate limited until " + until.Format(time.RFC3339))
	}

	prompt, err := uc.buildPrompt(messages)
	if err != nil {
		return domain.Failed(err)
	}

	reqID := uc.state.NextRequestID()
	uc.logger.Info("requesting AI brief", "req", reqID, "backend", uc.summarizer.Name(),
		"messages", lo.Min([]int{len(messages), uc.cfg.MaxMessages}))

	resp, err := uc.summarizer.GenerateBrief(ctx, repo.BriefRequest{
		RequestID:         reqID,
		SystemInstruction: uc.cfg.SystemInstruction,
		Prompt:            prompt,
	})
	if err != nil {
		var rl *domain.RateLimitedError
		if errors.As(err, &rl) {
			delay := rl.RetryAfter
			if !rl.HasRetryAfter {
				delay = domain.DefaultRateLimitCooldown
			}
			until := uc.now().Add(delay)
			uc.state.StartCooldown(until)
			uc.logger.Warn("AI backend rate limited", "req", reqID, "cooldown", delay, "until", until.Format(time.RFC3339))
			return domain.Skipped("rate limited")
		}
		uc.logger.Warn("AI brief failed", "req", reqID, "err", err)
		return domain.Failed(err)
	}

	if resp.Usage != nil {
		uc.logger.Info("AI usage", "req", reqID,
			"prompt_tokens", resp.Usage.PromptTokens,
			"completion_tokens", resp.Usage.CompletionTokens,
			"total_tokens", resp.Usage.TotalTokens)
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		uc.logger.Info("AI returned no text", "req", reqID)
		return domain.Skipped("empty response")
	}
	uc.logger.Info("AI brief received", "req", reqID, "chars", len(text))
	return domain.Succeeded(text, resp.Usage)
}

// buildPrompt embeds the most recent messages as a JSON array
func (uc *SummarizerUsecase) buildPrompt(messages []domain.AcceptedMessage) (string, error) {
	recent := messages
	if len(recent) > uc.cfg.MaxMessages {
		recent = recent[len(recent)-uc.cfg.MaxMessages:]
	}

	loc := domain.FixedZone(uc.cfg.Offset)
	items := lo.Map(recent, func(m domain.AcceptedMessage, _ int) repo.BriefItem {
		return repo.BriefItem{
			Sender: m.SenderDisplay,
			Time:   m.Timestamp.In(loc).Format("15:04"),
			Text:   truncateRunes(m.Text, uc.cfg.MaxCharsPerMessage),
		}
	})

	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "marshal brief items")
	}
	return fmt.Sprintf("Summarize these %d group messages:\n%s", len(items), data), nil
}

// truncateRunes cuts s to at most n runes, marking the cut with an ellipsis
func truncateRunes(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n == 1 {
		return string(r[:1])
	}
	return string(r[:n-1]) + "…"
}
