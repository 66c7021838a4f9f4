package domain

import (
	"context"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// millisThreshold separates epoch seconds from epoch milliseconds
const millisThreshold = 1e12

// SenderLookup resolves a message author; it may hit the network
type SenderLookup func(ctx context.Context) (*RawSender, error)

// FeedMessage is one item of a newest-first message feed
type FeedMessage struct {
	ID     string
	Date   any // epoch seconds, epoch millis, numeric string or ISO-like string
	Text   string
	Sender SenderLookup
}

// AcceptedMessage is a feed message that survived every scan filter
type AcceptedMessage struct {
	ID            string
	Timestamp     time.Time
	Text          string
	SenderDisplay string
	Link          string // empty when unresolvable
}

// ScanDiagnostics counts what happened to each scanned feed item
type ScanDiagnostics struct {
	Scanned             int
	SkippedMissingDate  int
	SkippedAfterWindow  int
	SkippedEmptyText    int
	SkippedSenderFilter int
	StoppedBeforeWindow bool
	HitScanLimit        bool // cap reached while the feed still had messages
}

// Skipped returns the sum of all skip counters
func (d ScanDiagnostics) Skipped() int {
	return d.SkippedMissingDate + d.SkippedAfterWindow + d.SkippedEmptyText + d.SkippedSenderFilter
}

// StopReason names why the scan ended
func (d ScanDiagnostics) StopReason() string {
	switch {
	case d.StoppedBeforeWindow:
		return "reached messages before window"
	case d.HitScanLimit:
		return "scan limit reached"
	default:
		return "feed exhausted"
	}
}

var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	time.RFC1123Z,
	time.RFC1123,
}

// CoerceTimestamp converts a feed date into an instant.
// Numbers below 1e12 are epoch seconds, larger ones epoch milliseconds.
// Zone-less ISO strings are read as UTC.
func CoerceTimestamp(v any) (time.Time, bool) {
	switch x := v.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		return x, !x.IsZero()
	case *time.Time:
		if x == nil || x.IsZero() {
			return time.Time{}, false
		}
		return *x, true
	case int:
		return fromEpoch(float64(x))
	case int32:
		return fromEpoch(float64(x))
	case int64:
		return fromEpoch(float64(x))
	case uint32:
		return fromEpoch(float64(x))
	case uint64:
		return fromEpoch(float64(x))
	case float64:
		return fromEpoch(x)
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return time.Time{}, false
		}
		return fromEpoch(f)
	case string:
		return parseDateString(x)
	default:
		return time.Time{}, false
	}
}

func fromEpoch(v float64) (time.Time, bool) {
	if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return time.Time{}, false
	}
	if v < millisThreshold {
		sec, frac := math.Modf(v)
		return time.Unix(int64(sec), int64(frac*1e9)).UTC(), true
	}
	return time.UnixMilli(int64(v)).UTC(), true
}

func parseDateString(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return fromEpoch(f)
	}
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
