package repo

import (
	"context"

	"github.com/DevRickLin/daily-digest/internal/biz/domain"
)

// MessageIterator walks a feed newest-first.
// Next returns io.EOF once the feed is exhausted.
type MessageIterator interface {
	Next(ctx context.Context) (*domain.FeedMessage, error)
	Close() error
}

// FeedRepo opens message feeds of a single group
type FeedRepo interface {
	// Open starts a newest-first walk; limit hints page sizing and never needs to be exceeded
	Open(ctx context.Context, limit int) (MessageIterator, error)

	// Group describes the group for titles and deep links
	Group(ctx context.Context) (domain.GroupRef, error)
}
