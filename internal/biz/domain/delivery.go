package domain

import (
	"fmt"
	"strings"
)

// Target is one delivery destination, written as channel:id in configuration
type Target struct {
	Channel string // telegram, lark
	ID      string
}

// ParseTarget parses a channel:id pair
func ParseTarget(s string) (Target, error) {
	channel, id, ok := strings.Cut(strings.TrimSpace(s), ":")
	channel = strings.ToLower(strings.TrimSpace(channel))
	id = strings.TrimSpace(id)
	if !ok || channel == "" || id == "" {
		return Target{}, fmt.Errorf("invalid delivery target %q, want channel:id", s)
	}
	return Target{Channel: channel, ID: id}, nil
}

func (t Target) String() string {
	return t.Channel + ":" + t.ID
}

// DeliveryResult records what happened to one target
type DeliveryResult struct {
	Target    Target
	PartsSent int
	Parts     int
	Err       error
}

// OK reports whether every part reached the target
func (r DeliveryResult) OK() bool {
	return r.Err == nil && r.PartsSent == r.Parts
}
