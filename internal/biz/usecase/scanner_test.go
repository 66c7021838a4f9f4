package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DevRickLin/daily-digest/internal/biz/domain"
)

// civil builds an instant from a civil +05:30 wall clock
func civil(day, hour, min int) time.Time {
	return time.Date(2024, 3, day, hour, min, 0, 0, domain.FixedZone(330))
}

func TestScan_StopsAtFirstMessageBeforeWindow(t *testing.T) {
	window := domain.ResolveWindow(civil(10, 12, 0), 330)
	feed := &fakeFeed{
		group: domain.GroupRef{Title: "Team", PublicAlias: "team"},
		messages: []*domain.FeedMessage{
			feedMsg("5", civil(10, 11, 0).Unix(), "eleven", "alice"),
			feedMsg("4", civil(10, 10, 0).Unix(), "ten", "bob"),
			feedMsg("3", civil(10, 9, 0).Unix(), "nine", "alice"),
			feedMsg("2", civil(9, 23, 0).Unix(), "yesterday", "alice"),
			feedMsg("1", civil(10, 8, 0).Unix(), "out of order", "alice"),
		},
	}

	uc := NewScannerUsecase(feed, 100, domain.GroupRef{}, discardLogger())
	res, err := uc.Scan(context.Background(), window, domain.NewSenderFilter(nil))
	require.NoError(t, err)

	require.Len(t, res.Accepted, 3)
	assert.Equal(t, []string{"nine", "ten", "eleven"}, []string{res.Accepted[0].Text, res.Accepted[1].Text, res.Accepted[2].Text})
	assert.Equal(t, 4, res.Diagnostics.Scanned)
	assert.True(t, res.Diagnostics.StoppedBeforeWindow)
	assert.False(t, res.Diagnostics.HitScanLimit)
	assert.Equal(t, "https://t.me/team/5", res.Accepted[2].Link)
	assert.Equal(t, "@alice", res.Accepted[2].SenderDisplay)
	assert.True(t, feed.closed)
}

func TestScan_CountersAddUp(t *testing.T) {
	window := domain.ResolveWindow(civil(10, 12, 0), 330)
	feed := &fakeFeed{
		messages: []*domain.FeedMessage{
			feedMsg("9", civil(11, 1, 0).UnixMilli(), "tomorrow", "alice"),
			feedMsg("8", nil, "no date", "alice"),
			feedMsg("7", civil(10, 20, 0).Unix(), "   ", "alice"),
			feedMsg("6", civil(10, 19, 0).Unix(), "from bob", "bob"),
			feedMsg("5", civil(10, 18, 0).Format(time.RFC3339), "from alice", "alice"),
			feedMsg("4", civil(10, 17, 0).Unix(), "anonymous", ""),
		},
	}

	uc := NewScannerUsecase(feed, 100, domain.GroupRef{}, discardLogger())
	res, err := uc.Scan(context.Background(), window, domain.NewSenderFilter([]string{"@alice"}))
	require.NoError(t, err)

	d := res.Diagnostics
	assert.Equal(t, 6, d.Scanned)
	assert.Equal(t, 1, d.SkippedAfterWindow)
	assert.Equal(t, 1, d.SkippedMissingDate)
	assert.Equal(t, 1, d.SkippedEmptyText)
	assert.Equal(t, 2, d.SkippedSenderFilter)
	assert.False(t, d.StoppedBeforeWindow)
	assert.Equal(t, d.Scanned, len(res.Accepted)+d.Skipped())

	require.Len(t, res.Accepted, 1)
	assert.Equal(t, "from alice", res.Accepted[0].Text)
}

func TestScan_ScanLimit(t *testing.T) {
	window := domain.ResolveWindow(civil(10, 12, 0), 330)
	feed := &fakeFeed{}
	for i := 0; i < 10; i++ {
		feed.messages = append(feed.messages, feedMsg("x", civil(10, 11, 0).Unix(), "hi", "alice"))
	}

	uc := NewScannerUsecase(feed, 4, domain.GroupRef{}, discardLogger())
	res, err := uc.Scan(context.Background(), window, domain.NewSenderFilter(nil))
	require.NoError(t, err)

	assert.Equal(t, 4, res.Diagnostics.Scanned)
	assert.Len(t, res.Accepted, 4)
	assert.True(t, res.Diagnostics.HitScanLimit)
	assert.Equal(t, "scan limit reached", res.Diagnostics.StopReason())
}

func TestScan_FeedEndingAtLimitIsExhausted(t *testing.T) {
	window := domain.ResolveWindow(civil(10, 12, 0), 330)
	feed := &fakeFeed{}
	for i := 0; i < 4; i++ {
		feed.messages = append(feed.messages, feedMsg("x", civil(10, 11, 0).Unix(), "hi", "alice"))
	}

	uc := NewScannerUsecase(feed, 4, domain.GroupRef{}, discardLogger())
	res, err := uc.Scan(context.Background(), window, domain.NewSenderFilter(nil))
	require.NoError(t, err)

	assert.Equal(t, 4, res.Diagnostics.Scanned)
	assert.False(t, res.Diagnostics.HitScanLimit)
	assert.Equal(t, "feed exhausted", res.Diagnostics.StopReason())
}

func TestScan_EmptyFeed(t *testing.T) {
	window := domain.ResolveWindow(civil(10, 12, 0), 330)
	uc := NewScannerUsecase(&fakeFeed{}, 10, domain.GroupRef{}, discardLogger())

	res, err := uc.Scan(context.Background(), window, domain.NewSenderFilter(nil))
	require.NoError(t, err)
	assert.Empty(t, res.Accepted)
	assert.Equal(t, "feed exhausted", res.Diagnostics.StopReason())
}

func TestScan_GroupOverrideAndLookupFailure(t *testing.T) {
	window := domain.ResolveWindow(civil(10, 12, 0), 330)
	feed := &fakeFeed{
		groupErr: errors.New("boom"),
		messages: []*domain.FeedMessage{feedMsg("77", civil(10, 11, 0).Unix(), "hi", "alice")},
	}

	uc := NewScannerUsecase(feed, 10, domain.GroupRef{NumericID: "-1001234"}, discardLogger())
	res, err := uc.Scan(context.Background(), window, domain.NewSenderFilter(nil))
	require.NoError(t, err)
	require.Len(t, res.Accepted, 1)
	assert.Equal(t, "https://t.me/c/1234/77", res.Accepted[0].Link)
}

func TestScan_FeedErrors(t *testing.T) {
	window := domain.ResolveWindow(civil(10, 12, 0), 330)

	uc := NewScannerUsecase(&fakeFeed{openErr: errors.New("no file")}, 10, domain.GroupRef{}, discardLogger())
	_, err := uc.Scan(context.Background(), window, domain.NewSenderFilter(nil))
	assert.Error(t, err)

	feed := &fakeFeed{
		failAt:   1,
		messages: []*domain.FeedMessage{feedMsg("1", civil(10, 11, 0).Unix(), "hi", "a"), feedMsg("2", civil(10, 10, 0).Unix(), "hi", "a")},
	}
	uc = NewScannerUsecase(feed, 10, domain.GroupRef{}, discardLogger())
	_, err = uc.Scan(context.Background(), window, domain.NewSenderFilter(nil))
	assert.Error(t, err)
}
