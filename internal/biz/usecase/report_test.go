package usecase

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/DevRickLin/daily-digest/internal/biz/domain"
)

func msgFrom(sender string, at time.Time, text string) domain.AcceptedMessage {
	return domain.AcceptedMessage{SenderDisplay: sender, Timestamp: at, Text: text}
}

func TestCountBySender_OrderByCountThenFirstSeen(t *testing.T) {
	var msgs []domain.AcceptedMessage
	for i := 0; i < 3; i++ {
		msgs = append(msgs, msgFrom("A", civil(10, 9, i), "a"))
	}
	for i := 0; i < 5; i++ {
		msgs = append(msgs, msgFrom("B", civil(10, 10, i), "b"))
	}
	msgs = append(msgs, msgFrom("C", civil(10, 11, 0), "c"), msgFrom("D", civil(10, 11, 1), "d"))

	got := CountBySender(msgs)
	assert.Equal(t, []SenderCount{{"B", 5}, {"A", 3}, {"C", 1}, {"D", 1}}, got)
}

func TestBuildReport_Layout(t *testing.T) {
	window := domain.ResolveWindow(civil(10, 12, 0), 330)
	msgs := []domain.AcceptedMessage{
		msgFrom("A", civil(10, 9, 0), "one"),
		msgFrom("B", civil(10, 9, 5), "two"),
		msgFrom("B", civil(10, 9, 10), "three"),
	}

	report := BuildReport(ReportInput{
		Window:   window,
		Group:    domain.GroupRef{Title: "Gophers"},
		Filter:   domain.NewSenderFilter(nil),
		Accepted: msgs,
		Summary:  domain.Succeeded("Shipped v2.", nil),
	})

	want := strings.Join([]string{
		"Daily report · 2024-03-10 (UTC+05:30) · Gophers",
		"Senders: all senders",
		"Total messages: 3",
		"",
		"Messages by sender:",
		"B: 2",
		"A: 1",
		"",
		"AI brief:",
		"Shipped v2.",
	}, "\n")
	assert.Equal(t, want, report)
}

func TestBuildReport_NoMessagesNoBrief(t *testing.T) {
	window := domain.ResolveWindow(civil(10, 12, 0), 330)
	report := BuildReport(ReportInput{
		Window:  window,
		Filter:  domain.NewSenderFilter([]string{"@alice"}),
		Summary: domain.Skipped("no messages"),
	})

	assert.Equal(t, "Daily report · 2024-03-10 (UTC+05:30) · group chat\nSenders: only @alice\nTotal messages: 0", report)
}

func TestBuildReport_Highlights(t *testing.T) {
	window := domain.ResolveWindow(civil(10, 12, 0), 330)
	var msgs []domain.AcceptedMessage
	for i := 0; i < MaxHighlights+5; i++ {
		m := msgFrom("A", civil(10, 8, 0).Add(time.Duration(i)*time.Minute), "line one\nline   two")
		msgs = append(msgs, m)
	}
	msgs[0].Link = "https://t.me/team/1"
	msgs[1].Text = strings.Repeat("x", HighlightTextLimit+20)

	report := BuildReport(ReportInput{
		Window:            window,
		Filter:            domain.NewSenderFilter(nil),
		Accepted:          msgs,
		Summary:           domain.Skipped("AI disabled"),
		IncludeHighlights: true,
	})

	assert.Contains(t, report, "\nHighlights (first 50):\n")
	assert.Contains(t, report, "- [08:00] A: line one line two\n  https://t.me/team/1\n")
	assert.Contains(t, report, "- [08:01] A: "+strings.Repeat("x", HighlightTextLimit-1)+"…")
	assert.Equal(t, MaxHighlights, strings.Count(report, "\n- ["))
	assert.NotContains(t, report, "AI brief:")
}
