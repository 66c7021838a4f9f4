package repo

import "context"

// DeliveryRepo sends text segments to targets of one channel
type DeliveryRepo interface {
	// Channel is the target prefix this repo serves (telegram, lark)
	Channel() string

	// SendText sends one segment; segments already respect the size limit
	SendText(ctx context.Context, targetID, text string) error
}

// ArtifactRepo stores the full report of a run
type ArtifactRepo interface {
	Save(ctx context.Context, name, text string) (string, error)
}
