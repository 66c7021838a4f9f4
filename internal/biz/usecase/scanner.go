package usecase

import (
	"context"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"

	"github.com/DevRickLin/daily-digest/internal/biz/domain"
	"github.com/DevRickLin/daily-digest/internal/biz/repo"
)

// DefaultScanLimit caps how many feed items one scan may consult
const DefaultScanLimit = 5000

// ScanResult is the outcome of one scan
type ScanResult struct {
	Accepted    []domain.AcceptedMessage // ascending by timestamp
	Diagnostics domain.ScanDiagnostics
	Group       domain.GroupRef
}

// ScannerUsecase walks a newest-first feed for one civil day
type ScannerUsecase struct {
	feed   repo.FeedRepo
	limit  int
	group  domain.GroupRef // overrides for the feed-reported group
	logger *log.Logger
}

// NewScannerUsecase creates a scanner
func NewScannerUsecase(feed repo.FeedRepo, limit int, groupOverride domain.GroupRef, logger *log.Logger) *ScannerUsecase {
	if limit <= 0 {
		limit = DefaultScanLimit
	}
	return &ScannerUsecase{
		feed:   feed,
		limit:  limit,
		group:  groupOverride,
		logger: logger.WithPrefix("scanner"),
	}
}

// Scan collects the accepted messages of window.
// The feed must be newest-first: the first message older than the window ends the scan.
func (uc *ScannerUsecase) Scan(ctx context.Context, window domain.TimeWindow, filter domain.SenderFilter) (*ScanResult, error) {
	group, err := uc.feed.Group(ctx)
	if err != nil {
		uc.logger.Warn("group lookup failed, links may be missing", "err", err)
	}
	group = group.Merge(uc.group)

	it, err := uc.feed.Open(ctx, uc.limit)
	if err != nil {
		return nil, errors.Wrap(err, "open feed")
	}
	defer it.Close()

	result := &ScanResult{Group: group}
	diag := &result.Diagnostics

	for {
		msg, err := it.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "read feed after %d messages", diag.Scanned)
		}
		// the cap only counts as hit when the feed still had more to give
		if diag.Scanned >= uc.limit {
			diag.HitScanLimit = true
			break
		}
		diag.Scanned++

		ts, ok := domain.CoerceTimestamp(msg.Date)
		if !ok {
			diag.SkippedMissingDate++
			continue
		}
		if ts.After(window.End) {
			diag.SkippedAfterWindow++
			continue
		}
		if ts.Before(window.Start) {
			diag.StoppedBeforeWindow = true
			break
		}

		text := strings.TrimSpace(msg.Text)
		if text == "" {
			diag.SkippedEmptyText++
			continue
		}

		sender := uc.resolveSender(ctx, msg)
		if !filter.Allows(sender) {
			diag.SkippedSenderFilter++
			continue
		}

		result.Accepted = append(result.Accepted, domain.AcceptedMessage{
			ID:            msg.ID,
			Timestamp:     ts,
			Text:          text,
			SenderDisplay: sender.Display,
			Link:          group.MessageLink(msg.ID),
		})
	}

	sort.SliceStable(result.Accepted, func(i, j int) bool {
		return result.Accepted[i].Timestamp.Before(result.Accepted[j].Timestamp)
	})

	uc.logger.Info("scan finished",
		"window", window.Label,
		"scanned", diag.Scanned,
		"accepted", len(result.Accepted),
		"missing_date", diag.SkippedMissingDate,
		"after_window", diag.SkippedAfterWindow,
		"empty_text", diag.SkippedEmptyText,
		"sender_filter", diag.SkippedSenderFilter,
		"stop", diag.StopReason(),
	)
	if diag.HitScanLimit {
		uc.logger.Warn("scan limit reached before the window start, the day may be incomplete", "limit", uc.limit)
	}
	return result, nil
}

func (uc *ScannerUsecase) resolveSender(ctx context.Context, msg *domain.FeedMessage) domain.NormalizedSender {
	if msg.Sender == nil {
		return domain.NormalizeSender(nil)
	}
	raw, err := msg.Sender(ctx)
	if err != nil {
		uc.logger.Debug("sender lookup failed", "msg", msg.ID, "err", err)
		return domain.NormalizeSender(nil)
	}
	return domain.NormalizeSender(raw)
}
