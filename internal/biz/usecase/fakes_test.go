package usecase

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/DevRickLin/daily-digest/internal/biz/domain"
	"github.com/DevRickLin/daily-digest/internal/biz/repo"
)

func discardLogger() *log.Logger {
	return log.New(io.Discard)
}

// fakeFeed serves messages in the given (newest-first) order
type fakeFeed struct {
	group    domain.GroupRef
	groupErr error
	openErr  error
	messages []*domain.FeedMessage
	failAt   int // Next fails at this index when > 0
	served   int
	closed   bool
}

func (f *fakeFeed) Group(ctx context.Context) (domain.GroupRef, error) {
	return f.group, f.groupErr
}

func (f *fakeFeed) Open(ctx context.Context, limit int) (repo.MessageIterator, error) {
	if f.openErr != nil {
		return nil, f.openErr
	}
	f.served = 0
	return f, nil
}

func (f *fakeFeed) Next(ctx context.Context) (*domain.FeedMessage, error) {
	if f.failAt > 0 && f.served == f.failAt {
		return nil, io.ErrUnexpectedEOF
	}
	if f.served >= len(f.messages) {
		return nil, io.EOF
	}
	m := f.messages[f.served]
	f.served++
	return m, nil
}

func (f *fakeFeed) Close() error {
	f.closed = true
	return nil
}

func feedMsg(id string, date any, text, username string) *domain.FeedMessage {
	return &domain.FeedMessage{
		ID:   id,
		Date: date,
		Text: text,
		Sender: func(context.Context) (*domain.RawSender, error) {
			if username == "" {
				return nil, nil
			}
			return &domain.RawSender{Username: username}, nil
		},
	}
}

// fakeSummarizer returns queued responses and records requests
type fakeSummarizer struct {
	mu       sync.Mutex
	resp     *repo.BriefResponse
	err      error
	requests []repo.BriefRequest
}

func (f *fakeSummarizer) Name() string { return "fake" }

func (f *fakeSummarizer) GenerateBrief(ctx context.Context, req repo.BriefRequest) (*repo.BriefResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func (f *fakeSummarizer) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

// fakeChannel records sent segments; failOn makes sends to that target fail
type fakeChannel struct {
	name   string
	failOn map[string]error
	sent   map[string][]string
}

func newFakeChannel(name string) *fakeChannel {
	return &fakeChannel{name: name, failOn: map[string]error{}, sent: map[string][]string{}}
}

func (c *fakeChannel) Channel() string { return c.name }

func (c *fakeChannel) SendText(ctx context.Context, targetID, text string) error {
	if err, ok := c.failOn[targetID]; ok {
		return err
	}
	c.sent[targetID] = append(c.sent[targetID], text)
	return nil
}

// memArtifacts keeps saved reports in memory
type memArtifacts struct {
	saved map[string]string
	err   error
}

func (m *memArtifacts) Save(ctx context.Context, name, text string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	if m.saved == nil {
		m.saved = map[string]string{}
	}
	m.saved[name] = text
	return "mem/" + name, nil
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
