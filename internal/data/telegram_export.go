package data

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/DevRickLin/daily-digest/internal/biz/domain"
	"github.com/DevRickLin/daily-digest/internal/biz/repo"
)

// exportTextEntity is one fragment of a formatted export text
type exportTextEntity struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// exportMessage is one entry of a Telegram Desktop JSON export
type exportMessage struct {
	ID           int64              `json:"id"`
	Type         string             `json:"type"`
	Date         string             `json:"date"`
	DateUnixtime string             `json:"date_unixtime"`
	From         string             `json:"from"`
	FromID       string             `json:"from_id"`
	Text         any                `json:"text"`
	TextEntities []exportTextEntity `json:"text_entities"`
}

// exportChat is a single exported chat
type exportChat struct {
	Type     string          `json:"type"`
	ID       int64           `json:"id"`
	Name     string          `json:"name"`
	Messages []exportMessage `json:"messages"`
}

// exportFile covers both single-chat exports and full account exports
type exportFile struct {
	exportChat
	Chats struct {
		List []exportChat `json:"list"`
	} `json:"chats"`
}

// telegramExportRepo reads a group's history from a Telegram Desktop export
type telegramExportRepo struct {
	path      string
	chatTitle string // selects a chat in full exports; empty picks the first group
}

// NewTelegramExportRepo creates a feed over a result.json export
func NewTelegramExportRepo(path, chatTitle string) repo.FeedRepo {
	return &telegramExportRepo{path: path, chatTitle: chatTitle}
}

func (r *telegramExportRepo) load() (*exportChat, error) {
	path := r.path
	if fi, err := os.Stat(path); err == nil && fi.IsDir() {
		path = filepath.Join(path, "result.json")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read export %s", path)
	}

	var file exportFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, errors.Wrapf(err, "parse export %s", path)
	}

	if len(file.Chats.List) == 0 {
		return &file.exportChat, nil
	}

	var fallback *exportChat
	for i := range file.Chats.List {
		chat := &file.Chats.List[i]
		if r.chatTitle != "" && strings.EqualFold(chat.Name, r.chatTitle) {
			return chat, nil
		}
		if fallback == nil && strings.Contains(chat.Type, "group") {
			fallback = chat
		}
	}
	if fallback == nil {
		return nil, errors.Errorf("export %s has no group chat", path)
	}
	return fallback, nil
}

// Group returns the chat title and id. Exports never carry a public alias.
func (r *telegramExportRepo) Group(ctx context.Context) (domain.GroupRef, error) {
	chat, err := r.load()
	if err != nil {
		return domain.GroupRef{}, err
	}
	ref := domain.GroupRef{Title: chat.Name}
	if chat.ID != 0 {
		ref.NumericID = strconv.FormatInt(chat.ID, 10)
	}
	return ref, nil
}

// Open loads the export and walks it newest first
func (r *telegramExportRepo) Open(ctx context.Context, limit int) (repo.MessageIterator, error) {
	chat, err := r.load()
	if err != nil {
		return nil, err
	}
	return &exportIterator{messages: chat.Messages, pos: len(chat.Messages) - 1}, nil
}

// exportIterator walks export messages from the end, which is newest first
type exportIterator struct {
	messages []exportMessage
	pos      int
}

func (it *exportIterator) Next(ctx context.Context) (*domain.FeedMessage, error) {
	for it.pos >= 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		m := it.messages[it.pos]
		it.pos--

		// service entries (joins, pins) are not chat messages
		if m.Type != "" && m.Type != "message" {
			continue
		}
		return toFeedMessage(m), nil
	}
	return nil, io.EOF
}

func (it *exportIterator) Close() error {
	return nil
}

func toFeedMessage(m exportMessage) *domain.FeedMessage {
	var date any
	switch {
	case m.DateUnixtime != "":
		date = m.DateUnixtime
	case m.Date != "":
		date = m.Date
	}

	sender := &domain.RawSender{FullName: m.From, ID: exportUserID(m.FromID)}
	return &domain.FeedMessage{
		ID:   strconv.FormatInt(m.ID, 10),
		Date: date,
		Text: flattenExportText(m),
		Sender: func(context.Context) (*domain.RawSender, error) {
			return sender, nil
		},
	}
}

// exportUserID strips the "user"/"channel" prefix of from_id
func exportUserID(fromID string) string {
	return strings.TrimLeft(fromID, "abcdefghijklmnopqrstuvwxyz")
}

// flattenExportText joins a text that may be a string or a mixed entity array
func flattenExportText(m exportMessage) string {
	if len(m.TextEntities) > 0 {
		var sb strings.Builder
		for _, e := range m.TextEntities {
			sb.WriteString(e.Text)
		}
		return sb.String()
	}

	switch v := m.Text.(type) {
	case string:
		return v
	case []any:
		var sb strings.Builder
		for _, item := range v {
			switch part := item.(type) {
			case string:
				sb.WriteString(part)
			case map[string]any:
				if s, ok := part["text"].(string); ok {
					sb.WriteString(s)
				}
			}
		}
		return sb.String()
	}
	return ""
}
