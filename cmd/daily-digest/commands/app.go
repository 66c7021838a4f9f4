package commands

import (
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/DevRickLin/daily-digest/internal/biz"
	"github.com/DevRickLin/daily-digest/internal/biz/domain"
	"github.com/DevRickLin/daily-digest/internal/biz/usecase"
	"github.com/DevRickLin/daily-digest/internal/conf"
	"github.com/DevRickLin/daily-digest/internal/data"
)

// app holds everything a command needs
type app struct {
	cfg      *conf.Config
	logger   *log.Logger
	usecases *biz.Usecases
}

// newApp loads configuration and wires the layers. Config errors are returned unwrapped.
func newApp(cmd *cobra.Command) (*app, error) {
	envFile, _ := cmd.Flags().GetString("env-file")
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, errors.Wrapf(err, "load %s", envFile)
		}
	} else {
		_ = godotenv.Load()
	}

	cfg := conf.LoadFromEnv()
	verbose, _ := cmd.Flags().GetBool("verbose")
	logger := newLogger(cfg, verbose)

	if cfg.Prompts != nil && cfg.Prompts.Source != "" {
		logger.Debug("prompts loaded", "path", cfg.Prompts.Source)
	}

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config", "err", err)
		return nil, err
	}

	repos, err := data.NewRepositories(cfg, logger)
	if err != nil {
		logger.Error("failed to create repositories", "err", err)
		return nil, err
	}
	if repos.Summarizer == nil {
		logger.Info("AI brief disabled, no API key for provider", "provider", cfg.AI.Provider)
	}

	state := domain.NewRateLimitState()
	scannerUC := usecase.NewScannerUsecase(repos.Feed, cfg.Feed.ScanLimit, cfg.Group, logger)
	summarizerUC := usecase.NewSummarizerUsecase(repos.Summarizer, state, cfg.ToSummarizerConfig(), logger)
	digestUC := usecase.NewDigestUsecase(scannerUC, summarizerUC, repos.Artifacts, repos.Deliveries, cfg.ToDigestConfig(), logger)

	return &app{
		cfg:    cfg,
		logger: logger,
		usecases: &biz.Usecases{
			Scanner:    scannerUC,
			Summarizer: summarizerUC,
			Digest:     digestUC,
		},
	}, nil
}

func newLogger(cfg *conf.Config, verbose bool) *log.Logger {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	if cfg.Debug || verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
		Level:           level,
	})
}
