package data

import (
	"github.com/charmbracelet/log"

	"github.com/DevRickLin/daily-digest/internal/biz/repo"
	"github.com/DevRickLin/daily-digest/internal/conf"
	"github.com/DevRickLin/daily-digest/internal/infra/feishu"
	"github.com/DevRickLin/daily-digest/internal/infra/gemini"
	"github.com/DevRickLin/daily-digest/internal/infra/openai"
	"github.com/DevRickLin/daily-digest/internal/infra/telegram"
)

// Repositories contains all repositories
type Repositories struct {
	Feed       repo.FeedRepo
	Summarizer repo.SummarizerRepo // nil when AI is not configured
	Deliveries []repo.DeliveryRepo
	Artifacts  repo.ArtifactRepo
}

// NewRepositories creates all repositories from a validated configuration
func NewRepositories(cfg *conf.Config, logger *log.Logger) (*Repositories, error) {
	var larkClient *feishu.Client
	if cfg.Lark.AppID != "" && cfg.Lark.AppSecret != "" {
		larkClient = feishu.NewClient(cfg.Lark.AppID, cfg.Lark.AppSecret)
	}

	repos := &Repositories{
		Artifacts: NewFileArtifactRepo(cfg.Report.OutputDir),
	}

	switch cfg.Feed.Source {
	case conf.FeedLark:
		if larkClient == nil {
			return nil, &conf.ConfigError{Field: "LARK_APP_ID/LARK_APP_SECRET", Message: "required"}
		}
		repos.Feed = NewFeishuFeedRepo(larkClient, cfg.Lark.ChatID, logger)
	default:
		repos.Feed = NewTelegramExportRepo(cfg.Feed.ExportPath, cfg.Group.Title)
	}

	if cfg.AIEnabled() {
		switch cfg.AI.Provider {
		case conf.ProviderOpenAI:
			repos.Summarizer = NewOpenAIRepo(openai.NewClient(cfg.AI.OpenAIAPIKey, cfg.AI.OpenAIModel, cfg.AI.OpenAIBaseURL))
		default:
			repos.Summarizer = NewGeminiRepo(gemini.NewClient(cfg.AI.GeminiAPIKey, cfg.AI.GeminiModel, cfg.AI.GeminiBaseURL))
		}
	}

	if cfg.Telegram.BotToken != "" {
		repos.Deliveries = append(repos.Deliveries,
			NewTelegramDeliveryRepo(telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.BaseURL)))
	}
	if larkClient != nil {
		repos.Deliveries = append(repos.Deliveries, NewFeishuDeliveryRepo(larkClient))
	}

	return repos, nil
}
