package domain

import (
	"fmt"
	"strings"
)

const linkBase = "https://t.me"

// GroupRef identifies the scanned group for titles and deep links
type GroupRef struct {
	Title       string
	PublicAlias string // username of a public group, without @
	NumericID   string // e.g. -1001234567890
}

// Merge returns g with every non-empty field of override applied
func (g GroupRef) Merge(override GroupRef) GroupRef {
	if override.Title != "" {
		g.Title = override.Title
	}
	if override.PublicAlias != "" {
		g.PublicAlias = override.PublicAlias
	}
	if override.NumericID != "" {
		g.NumericID = override.NumericID
	}
	return g
}

// MessageLink builds a deep link to a message, or "" when the group cannot be addressed
func (g GroupRef) MessageLink(messageID string) string {
	if messageID == "" {
		return ""
	}
	if alias := strings.TrimPrefix(strings.TrimSpace(g.PublicAlias), "@"); alias != "" {
		return fmt.Sprintf("%s/%s/%s", linkBase, alias, messageID)
	}

	id := strings.TrimSpace(g.NumericID)
	id = strings.TrimPrefix(id, "-100")
	id = strings.TrimLeft(id, "-")
	if id == "" {
		return ""
	}
	return fmt.Sprintf("%s/c/%s/%s", linkBase, id, messageID)
}
