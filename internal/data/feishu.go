package data

import (
	"context"
	"io"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/samber/lo"

	"github.com/DevRickLin/daily-digest/internal/biz/domain"
	"github.com/DevRickLin/daily-digest/internal/biz/repo"
	"github.com/DevRickLin/daily-digest/internal/infra/feishu"
)

// larkChatClient is the subset of the Lark client the repos need
type larkChatClient interface {
	ListHistoryPage(ctx context.Context, chatID string, pageSize int, pageToken string) (*feishu.HistoryPage, error)
	GetChatMembers(ctx context.Context, chatID string) ([]*feishu.ChatMember, error)
	GetChatInfo(ctx context.Context, chatID string) (*feishu.ChatInfo, error)
	SendText(ctx context.Context, chatID, text string) error
}

// feishuFeedRepo reads a Lark group's history newest first
type feishuFeedRepo struct {
	client larkChatClient
	chatID string
	logger *log.Logger
}

// NewFeishuFeedRepo creates a feed over one Lark chat
func NewFeishuFeedRepo(client larkChatClient, chatID string, logger *log.Logger) repo.FeedRepo {
	return &feishuFeedRepo{client: client, chatID: chatID, logger: logger.WithPrefix("lark-feed")}
}

// Group returns the chat name. Lark chats have no t.me links.
func (r *feishuFeedRepo) Group(ctx context.Context) (domain.GroupRef, error) {
	info, err := r.client.GetChatInfo(ctx, r.chatID)
	if err != nil {
		return domain.GroupRef{}, err
	}
	return domain.GroupRef{Title: info.Name}, nil
}

// Open starts paging the history
func (r *feishuFeedRepo) Open(ctx context.Context, limit int) (repo.MessageIterator, error) {
	pageSize := feishu.MaxPageSize
	if limit > 0 && limit < pageSize {
		pageSize = limit
	}
	return &feishuIterator{repo: r, pageSize: pageSize, hasMore: true}, nil
}

// memberNames loads the member directory once per walk
type memberNames struct {
	once  sync.Once
	names map[string]string
}

func (r *feishuFeedRepo) loadMembers(ctx context.Context, m *memberNames) map[string]string {
	m.once.Do(func() {
		members, err := r.client.GetChatMembers(ctx, r.chatID)
		if err != nil {
			r.logger.Warn("member lookup failed, senders will show as ids", "chat", r.chatID, "err", err)
			m.names = map[string]string{}
			return
		}
		m.names = lo.SliceToMap(members, func(cm *feishu.ChatMember) (string, string) {
			return cm.MemberID, cm.Name
		})
	})
	return m.names
}

type feishuIterator struct {
	repo      *feishuFeedRepo
	pageSize  int
	buf       []*feishu.HistoryMessage
	pageToken string
	hasMore   bool
	members   memberNames
}

func (it *feishuIterator) Next(ctx context.Context) (*domain.FeedMessage, error) {
	m, err := it.nextUserMessage(ctx)
	if err != nil {
		return nil, err
	}

	msg := &domain.FeedMessage{ID: m.MsgID, Text: m.Content}
	if m.CreateTime != "" {
		msg.Date = m.CreateTime
	}
	senderID := m.SenderID
	msg.Sender = func(ctx context.Context) (*domain.RawSender, error) {
		if senderID == "" {
			return nil, nil
		}
		names := it.repo.loadMembers(ctx, &it.members)
		return &domain.RawSender{FullName: names[senderID], ID: senderID}, nil
	}
	return msg, nil
}

// nextUserMessage pops the next message, skipping bot posts such as earlier digests
func (it *feishuIterator) nextUserMessage(ctx context.Context) (*feishu.HistoryMessage, error) {
	for {
		for len(it.buf) == 0 {
			if !it.hasMore {
				return nil, io.EOF
			}
			page, err := it.repo.client.ListHistoryPage(ctx, it.repo.chatID, it.pageSize, it.pageToken)
			if err != nil {
				return nil, err
			}
			it.buf = page.Messages
			it.pageToken = page.PageToken
			it.hasMore = page.HasMore && page.PageToken != ""
		}

		m := it.buf[0]
		it.buf = it.buf[1:]
		if m.SenderType == feishu.SenderTypeApp {
			continue
		}
		return m, nil
	}
}

func (it *feishuIterator) Close() error {
	it.buf = nil
	return nil
}

// feishuDeliveryRepo posts report segments to Lark chats
type feishuDeliveryRepo struct {
	client larkChatClient
}

// NewFeishuDeliveryRepo creates the lark delivery channel
func NewFeishuDeliveryRepo(client larkChatClient) repo.DeliveryRepo {
	return &feishuDeliveryRepo{client: client}
}

func (r *feishuDeliveryRepo) Channel() string {
	return "lark"
}

func (r *feishuDeliveryRepo) SendText(ctx context.Context, targetID, text string) error {
	return r.client.SendText(ctx, targetID, text)
}
