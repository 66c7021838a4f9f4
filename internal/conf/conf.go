package conf

import (
	"os"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/DevRickLin/daily-digest/internal/biz/domain"
	"github.com/DevRickLin/daily-digest/internal/biz/usecase"
)

// Feed sources
const (
	FeedTelegramExport = "telegram_export"
	FeedLark           = "lark"
)

// DefaultTimezoneOffset is +05:30 in minutes
const DefaultTimezoneOffset = 330

// AI providers
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// Config represents application configuration
type Config struct {
	// Feed configuration
	Feed FeedConfig

	// Group overrides for title and deep links
	Group domain.GroupRef

	// Lark configuration (feed and/or delivery)
	Lark LarkConfig

	// Telegram bot configuration (delivery)
	Telegram TelegramConfig

	// AI configuration (optional)
	AI AIConfig

	// Report configuration
	Report ReportConfig

	// Schedule configuration
	Schedule ScheduleConfig

	// Prompts configuration (loaded from YAML)
	Prompts *PromptsConfig

	// Log level: debug, info, warn, error
	LogLevel string

	// Debug mode
	Debug bool
}

// FeedConfig selects where messages come from
type FeedConfig struct {
	Source     string // telegram_export or lark
	ExportPath string
	ScanLimit  int
}

// LarkConfig contains Lark configuration
type LarkConfig struct {
	AppID     string
	AppSecret string
	ChatID    string
}

// TelegramConfig contains Telegram bot configuration
type TelegramConfig struct {
	BotToken string
	BaseURL  string
}

// AIConfig contains summarizer configuration
type AIConfig struct {
	Provider           string
	GeminiAPIKey       string
	GeminiModel        string
	GeminiBaseURL      string
	OpenAIAPIKey       string
	OpenAIModel        string
	OpenAIBaseURL      string
	MinMessages        int
	MaxMessages        int
	MaxCharsPerMessage int
}

// ReportConfig contains report and delivery configuration
type ReportConfig struct {
	TimezoneOffset    int // minutes east of UTC
	SenderFilter      []string
	IncludeHighlights bool
	TransportMaxChars int
	OutputDir         string
	Targets           []string // raw channel:id entries
}

// ScheduleConfig contains the two recurring triggers
type ScheduleConfig struct {
	Primary     string
	PrimaryAI   bool
	Secondary   string
	SecondaryAI bool
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() *Config {
	// Load prompts from YAML
	promptsConfig, _ := LoadPromptsConfig(os.Getenv("PROMPTS_CONFIG_PATH"))

	return &Config{
		Feed: FeedConfig{
			Source:     strings.ToLower(getEnv("FEED_SOURCE", FeedTelegramExport)),
			ExportPath: os.Getenv("TELEGRAM_EXPORT_PATH"),
			ScanLimit:  getEnvInt("SCAN_LIMIT", usecase.DefaultScanLimit),
		},
		Group: domain.GroupRef{
			Title:       os.Getenv("GROUP_TITLE"),
			PublicAlias: strings.TrimPrefix(os.Getenv("GROUP_PUBLIC_ALIAS"), "@"),
			NumericID:   os.Getenv("GROUP_NUMERIC_ID"),
		},
		Lark: LarkConfig{
			AppID:     getEnv("LARK_APP_ID", os.Getenv("FEISHU_APP_ID")),
			AppSecret: getEnv("LARK_APP_SECRET", os.Getenv("FEISHU_APP_SECRET")),
			ChatID:    os.Getenv("LARK_CHAT_ID"),
		},
		Telegram: TelegramConfig{
			BotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
			BaseURL:  os.Getenv("TELEGRAM_API_BASE_URL"),
		},
		AI: AIConfig{
			Provider:           strings.ToLower(getEnv("AI_PROVIDER", ProviderGemini)),
			GeminiAPIKey:       os.Getenv("GEMINI_API_KEY"),
			GeminiModel:        getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
			GeminiBaseURL:      os.Getenv("GEMINI_BASE_URL"),
			OpenAIAPIKey:       getEnv("OPENAI_API_KEY", os.Getenv("MOONSHOT_API_KEY")),
			OpenAIModel:        getEnv("OPENAI_MODEL", "moonshot-v1-8k"),
			OpenAIBaseURL:      getEnv("OPENAI_BASE_URL", "https://api.moonshot.cn/v1"),
			MinMessages:        getEnvInt("AI_MIN_MESSAGES", 5),
			MaxMessages:        getEnvInt("AI_MAX_MESSAGES", usecase.DefaultSummarizerConfig.MaxMessages),
			MaxCharsPerMessage: getEnvInt("AI_MAX_CHARS_PER_MESSAGE", usecase.DefaultSummarizerConfig.MaxCharsPerMessage),
		},
		Report: ReportConfig{
			TimezoneOffset:    timezoneOffset(),
			SenderFilter:      getEnvList("SENDER_FILTER"),
			IncludeHighlights: getEnvBool("INCLUDE_HIGHLIGHTS", false),
			TransportMaxChars: transportMaxChars(),
			OutputDir:         getEnv("OUTPUT_DIR", "./reports"),
			Targets:           getEnvList("DELIVERY_TARGETS"),
		},
		Schedule: ScheduleConfig{
			Primary:     getEnv("SCHEDULE_PRIMARY", "0 21 * * *"),
			PrimaryAI:   getEnvBool("SCHEDULE_PRIMARY_AI", true),
			Secondary:   os.Getenv("SCHEDULE_SECONDARY"),
			SecondaryAI: getEnvBool("SCHEDULE_SECONDARY_AI", false),
		},
		Prompts:  promptsConfig,
		LogLevel: strings.ToLower(getEnv("LOG_LEVEL", "info")),
		Debug:    getEnvBool("DEBUG", false),
	}
}

// ParsedTargets parses the raw delivery targets
func (c *Config) ParsedTargets() ([]domain.Target, error) {
	targets := make([]domain.Target, 0, len(c.Report.Targets))
	for _, raw := range c.Report.Targets {
		t, err := domain.ParseTarget(raw)
		if err != nil {
			return nil, &ConfigError{Field: "DELIVERY_TARGETS", Message: err.Error()}
		}
		targets = append(targets, t)
	}
	return targets, nil
}

// HasChannel reports whether any delivery target uses channel
func (c *Config) HasChannel(channel string) bool {
	targets, _ := c.ParsedTargets()
	return lo.ContainsBy(targets, func(t domain.Target) bool { return t.Channel == channel })
}

// AIEnabled reports whether the selected provider has an API key
func (c *Config) AIEnabled() bool {
	switch c.AI.Provider {
	case ProviderOpenAI:
		return c.AI.OpenAIAPIKey != ""
	default:
		return c.AI.GeminiAPIKey != ""
	}
}

// ToSummarizerConfig converts to summarizer usecase configuration
func (c *Config) ToSummarizerConfig() usecase.SummarizerConfig {
	cfg := usecase.SummarizerConfig{
		MaxMessages:        c.AI.MaxMessages,
		MaxCharsPerMessage: c.AI.MaxCharsPerMessage,
		Offset:             c.Report.TimezoneOffset,
	}
	if c.Prompts != nil {
		cfg.SystemInstruction = c.Prompts.Summarizer.SystemInstruction
	}
	return cfg
}

// ToDigestConfig converts to digest usecase configuration. Call Validate first.
func (c *Config) ToDigestConfig() usecase.DigestConfig {
	targets, _ := c.ParsedTargets()
	return usecase.DigestConfig{
		Offset:            c.Report.TimezoneOffset,
		Filter:            domain.NewSenderFilter(c.Report.SenderFilter),
		IncludeHighlights: c.Report.IncludeHighlights,
		MinMessagesForAI:  c.AI.MinMessages,
		TransportLimit:    c.Report.TransportMaxChars,
		Targets:           targets,
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Feed.Source {
	case FeedTelegramExport:
		if c.Feed.ExportPath == "" {
			return &ConfigError{Field: "TELEGRAM_EXPORT_PATH", Message: "required for the telegram_export feed"}
		}
	case FeedLark:
		if c.Lark.ChatID == "" {
			return &ConfigError{Field: "LARK_CHAT_ID", Message: "required for the lark feed"}
		}
	default:
		return &ConfigError{Field: "FEED_SOURCE", Message: "unknown source " + strconv.Quote(c.Feed.Source)}
	}

	switch c.AI.Provider {
	case ProviderGemini, ProviderOpenAI:
	default:
		return &ConfigError{Field: "AI_PROVIDER", Message: "unknown provider " + strconv.Quote(c.AI.Provider)}
	}

	targets, err := c.ParsedTargets()
	if err != nil {
		return err
	}
	for _, t := range targets {
		switch t.Channel {
		case "telegram":
			if c.Telegram.BotToken == "" {
				return &ConfigError{Field: "TELEGRAM_BOT_TOKEN", Message: "required for telegram delivery targets"}
			}
		case "lark":
		default:
			return &ConfigError{Field: "DELIVERY_TARGETS", Message: "unknown channel " + strconv.Quote(t.Channel)}
		}
	}

	if c.Feed.Source == FeedLark || c.HasChannel("lark") {
		if c.Lark.AppID == "" || c.Lark.AppSecret == "" {
			return &ConfigError{Field: "LARK_APP_ID/LARK_APP_SECRET", Message: "required"}
		}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// getEnvInt returns def when the key is absent or not an integer
func getEnvInt(key string, def int) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

// timezoneOffset falls back to +05:30 when the offset is not within one day
func timezoneOffset() int {
	offset := getEnvInt("TIMEZONE_OFFSET_MINUTES", DefaultTimezoneOffset)
	if offset <= -24*60 || offset >= 24*60 {
		return DefaultTimezoneOffset
	}
	return offset
}

// transportMaxChars falls back to the default when no room is left after the part marker
func transportMaxChars() int {
	limit := getEnvInt("TRANSPORT_MAX_CHARS", usecase.DefaultTransportLimit)
	if limit <= usecase.PartMarkerReserve {
		return usecase.DefaultTransportLimit
	}
	return limit
}

func getEnvBool(key string, def bool) bool {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return def
}

// getEnvList splits a comma list, dropping blanks
func getEnvList(key string) []string {
	parts := strings.Split(os.Getenv(key), ",")
	return lo.FilterMap(parts, func(p string, _ int) (string, bool) {
		p = strings.TrimSpace(p)
		return p, p != ""
	})
}
