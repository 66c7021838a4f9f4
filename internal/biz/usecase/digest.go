package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/DevRickLin/daily-digest/internal/biz/domain"
	"github.com/DevRickLin/daily-digest/internal/biz/repo"
)

// DefaultTransportLimit is the delivery size limit before the part-marker reserve
const DefaultTransportLimit = 3900

// DigestConfig holds per-process pipeline settings
type DigestConfig struct {
	Offset            int // civil timezone, minutes east of UTC
	Filter            domain.SenderFilter
	IncludeHighlights bool
	MinMessagesForAI  int
	TransportLimit    int
	Targets           []domain.Target
}

// RunOptions vary per trigger
type RunOptions struct {
	EnableAI bool
	Deliver  bool
	Save     bool
	Date     string // civil YYYY-MM-DD; empty means today
}

// RunResult describes one pipeline run
type RunResult struct {
	RunID        string
	StartedAt    time.Time
	Window       domain.TimeWindow
	Group        domain.GroupRef
	Accepted     []domain.AcceptedMessage
	Diagnostics  domain.ScanDiagnostics
	Summary      domain.SummaryOutcome
	Report       string
	ArtifactPath string
	Deliveries   []domain.DeliveryResult
}

// Delivered counts targets that received every part
func (r *RunResult) Delivered() int {
	n := 0
	for _, d := range r.Deliveries {
		if d.OK() {
			n++
		}
	}
	return n
}

// DigestUsecase runs the daily pipeline: window, scan, brief, report, save, deliver
type DigestUsecase struct {
	scanner    *ScannerUsecase
	summarizer *SummarizerUsecase
	artifacts  repo.ArtifactRepo
	channels   map[string]repo.DeliveryRepo
	cfg        DigestConfig
	now        func() time.Time
	logger     *log.Logger
}

// NewDigestUsecase creates the pipeline
func NewDigestUsecase(
	scanner *ScannerUsecase,
	summarizer *SummarizerUsecase,
	artifacts repo.ArtifactRepo,
	deliveries []repo.DeliveryRepo,
	cfg DigestConfig,
	logger *log.Logger,
) *DigestUsecase {
	// the limit must leave room for content after the part marker
	if cfg.TransportLimit <= PartMarkerReserve {
		cfg.TransportLimit = DefaultTransportLimit
	}
	channels := make(map[string]repo.DeliveryRepo, len(deliveries))
	for _, d := range deliveries {
		channels[d.Channel()] = d
	}
	return &DigestUsecase{
		scanner:    scanner,
		summarizer: summarizer,
		artifacts:  artifacts,
		channels:   channels,
		cfg:        cfg,
		now:        time.Now,
		logger:     logger.WithPrefix("digest"),
	}
}

// Run executes the pipeline once. Only a feed failure aborts it; AI and delivery
// failures are recorded on the result.
func (uc *DigestUsecase) Run(ctx context.Context, opts RunOptions) (*RunResult, error) {
	res := &RunResult{
		RunID:     uuid.NewString(),
		StartedAt: uc.now(),
	}
	logger := uc.logger.With("run", res.RunID[:8])

	window := domain.ResolveWindow(res.StartedAt, uc.cfg.Offset)
	if opts.Date != "" {
		w, err := domain.ResolveWindowForDate(opts.Date, uc.cfg.Offset)
		if err != nil {
			return nil, err
		}
		window = w
	}
	res.Window = window
	logger.Info("run started", "date", window.Label, "zone", window.ZoneLabel(),
		"ai", opts.EnableAI, "deliver", opts.Deliver)

	scan, err := uc.scanner.Scan(ctx, window, uc.cfg.Filter)
	if err != nil {
		return nil, errors.Wrap(err, "scan")
	}
	res.Group = scan.Group
	res.Accepted = scan.Accepted
	res.Diagnostics = scan.Diagnostics

	res.Summary = uc.summarize(ctx, opts, scan.Accepted)
	switch res.Summary.Kind {
	case domain.SummaryFailed:
		logger.Warn("continuing without AI brief", "err", res.Summary.Err)
	case domain.SummarySkipped:
		logger.Info("AI brief skipped", "reason", res.Summary.Reason)
	}

	res.Report = BuildReport(ReportInput{
		Window:            window,
		Group:             scan.Group,
		Filter:            uc.cfg.Filter,
		Accepted:          scan.Accepted,
		Summary:           res.Summary,
		IncludeHighlights: uc.cfg.IncludeHighlights,
	})

	if opts.Save && uc.artifacts != nil {
		path, err := uc.artifacts.Save(ctx, ArtifactName(window.Label, res.StartedAt), res.Report)
		if err != nil {
			logger.Error("saving report failed", "err", err)
		} else {
			res.ArtifactPath = path
			logger.Info("report saved", "path", path)
		}
	}

	if opts.Deliver {
		res.Deliveries = uc.deliver(ctx, logger, res.Report)
		if len(res.Deliveries) > 0 && res.Delivered() == 0 {
			logger.Warn("report reached nobody, every delivery target failed", "targets", len(res.Deliveries))
		}
	}

	logger.Info("run finished", "accepted", len(res.Accepted), "summary", res.Summary.Kind,
		"delivered", res.Delivered(), "targets", len(res.Deliveries))
	return res, nil
}

func (uc *DigestUsecase) summarize(ctx context.Context, opts RunOptions, accepted []domain.AcceptedMessage) domain.SummaryOutcome {
	if !opts.EnableAI {
		return domain.Skipped("AI disabled for this trigger")
	}
	if uc.summarizer == nil {
		return domain.Skipped("no summarizer")
	}
	if len(accepted) < uc.cfg.MinMessagesForAI {
		return domain.Skipped(fmt.Sprintf("below threshold (%d < %d)", len(accepted), uc.cfg.MinMessagesForAI))
	}
	return uc.summarizer.Summarize(ctx, accepted)
}

// deliver sends the report to every target in order; one failure never stops the rest
func (uc *DigestUsecase) deliver(ctx context.Context, logger *log.Logger, report string) []domain.DeliveryResult {
	segments := WithPartMarkers(SplitForTransport(report, uc.cfg.TransportLimit-PartMarkerReserve))

	results := make([]domain.DeliveryResult, 0, len(uc.cfg.Targets))
	for _, target := range uc.cfg.Targets {
		result := domain.DeliveryResult{Target: target, Parts: len(segments)}

		ch, ok := uc.channels[target.Channel]
		if !ok {
			result.Err = &domain.DeliveryError{Target: target.String(), Err: fmt.Errorf("no %s channel configured", target.Channel)}
		} else {
			for i, seg := range segments {
				if err := ch.SendText(ctx, target.ID, seg); err != nil {
					result.Err = &domain.DeliveryError{Target: target.String(), Part: i + 1, Err: err}
					break
				}
				result.PartsSent++
			}
		}

		if result.Err != nil {
			logger.Warn("delivery failed", "target", target.String(), "sent", result.PartsSent, "parts", result.Parts, "err", result.Err)
		} else {
			logger.Info("delivered", "target", target.String(), "parts", result.Parts)
		}
		results = append(results, result)
	}
	return results
}

// ArtifactName builds the per-run file name from the civil label and the run instant
func ArtifactName(label string, runAt time.Time) string {
	stamp := runAt.UTC().Format("2006-01-02T15:04:05.000Z")
	stamp = strings.NewReplacer(":", "-", ".", "-").Replace(stamp)
	return fmt.Sprintf("report_%s_%s.txt", label, stamp)
}
