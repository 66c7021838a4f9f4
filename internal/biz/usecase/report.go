package usecase

import (
	"fmt"
	"sort"
	"strings"

	"github.com/DevRickLin/daily-digest/internal/biz/domain"
)

const (
	// MaxHighlights caps the highlight section
	MaxHighlights = 50
	// HighlightTextLimit is the per-highlight truncation, independent of the AI cap
	HighlightTextLimit = 180
)

// ReportInput is everything the report renders
type ReportInput struct {
	Window            domain.TimeWindow
	Group             domain.GroupRef
	Filter            domain.SenderFilter
	Accepted          []domain.AcceptedMessage // ascending
	Summary           domain.SummaryOutcome
	IncludeHighlights bool
}

// SenderCount is one row of the per-sender tally
type SenderCount struct {
	Sender string
	Count  int
}

// CountBySender tallies messages per sender, descending by count.
// Ties keep first-encounter order.
func CountBySender(messages []domain.AcceptedMessage) []SenderCount {
	index := make(map[string]int)
	var counts []SenderCount
	for _, m := range messages {
		i, ok := index[m.SenderDisplay]
		if !ok {
			i = len(counts)
			index[m.SenderDisplay] = i
			counts = append(counts, SenderCount{Sender: m.SenderDisplay})
		}
		counts[i].Count++
	}
	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})
	return counts
}

// BuildReport renders the daily report
func BuildReport(in ReportInput) string {
	var sb strings.Builder

	group := in.Group.Title
	if group == "" {
		group = "group chat"
	}
	sb.WriteString(fmt.Sprintf("Daily report · %s (%s) · %s\n", in.Window.Label, in.Window.ZoneLabel(), group))
	sb.WriteString(fmt.Sprintf("Senders: %s\n", in.Filter.Describe()))
	sb.WriteString(fmt.Sprintf("Total messages: %d\n", len(in.Accepted)))

	counts := CountBySender(in.Accepted)
	if len(counts) > 0 {
		sb.WriteString("\nMessages by sender:\n")
		for _, c := range counts {
			sb.WriteString(fmt.Sprintf("%s: %d\n", c.Sender, c.Count))
		}
	}

	if brief, ok := in.Summary.Brief(); ok {
		sb.WriteString("\nAI brief:\n")
		sb.WriteString(brief)
		sb.WriteString("\n")
	}

	if in.IncludeHighlights && len(in.Accepted) > 0 {
		highlights := in.Accepted
		if len(highlights) > MaxHighlights {
			highlights = highlights[:MaxHighlights]
		}
		loc := in.Window.Location()

		sb.WriteString(fmt.Sprintf("\nHighlights (first %d):\n", len(highlights)))
		for _, m := range highlights {
			text := strings.Join(strings.Fields(m.Text), " ")
			sb.WriteString(fmt.Sprintf("- [%s] %s: %s\n",
				m.Timestamp.In(loc).Format("15:04"), m.SenderDisplay, truncateRunes(text, HighlightTextLimit)))
			if m.Link != "" {
				sb.WriteString("  " + m.Link + "\n")
			}
		}
	}

	return strings.TrimRight(sb.String(), "\n")
}
