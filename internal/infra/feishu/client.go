package feishu

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	lark "github.com/larksuite/oapi-sdk-go/v3"
	larkcore "github.com/larksuite/oapi-sdk-go/v3/core"
	larkim "github.com/larksuite/oapi-sdk-go/v3/service/im/v1"
	"github.com/samber/lo"
)

// MaxPageSize is the largest page Im.Message.List accepts
const MaxPageSize = 50

// Sender types reported on history messages
const (
	SenderTypeUser = "user"
	SenderTypeApp  = "app"
)

// HistoryMessage is one message from a chat history page
type HistoryMessage struct {
	MsgID      string
	MsgType    string
	Content    string // plain text, mention placeholders resolved
	CreateTime string // milliseconds since epoch, as returned by the API
	SenderID   string
	SenderType string // SenderTypeUser or SenderTypeApp
	Deleted    bool
}

// HistoryPage is one page of a newest-first history listing
type HistoryPage struct {
	Messages  []*HistoryMessage
	PageToken string
	HasMore   bool
}

// ChatMember is a member of a chat
type ChatMember struct {
	MemberID string
	Name     string
}

// ChatInfo describes a chat
type ChatInfo struct {
	ChatID string
	Name   string
}

// Client wraps the Lark open platform SDK for the calls the digest needs
type Client struct {
	larkCli *lark.Client
}

// NewClient creates a new Lark client
func NewClient(appID, appSecret string) *Client {
	return &Client{
		larkCli: lark.NewClient(appID, appSecret, lark.WithLogLevel(larkcore.LogLevelError)),
	}
}

// ListHistoryPage fetches one page of chat history, newest first
func (c *Client) ListHistoryPage(ctx context.Context, chatID string, pageSize int, pageToken string) (*HistoryPage, error) {
	if pageSize > MaxPageSize || pageSize <= 0 {
		pageSize = MaxPageSize
	}

	builder := larkim.NewListMessageReqBuilder().
		ContainerIdType("chat").
		ContainerId(chatID).
		SortType("ByCreateTimeDesc").
		PageSize(pageSize)
	if pageToken != "" {
		builder = builder.PageToken(pageToken)
	}

	resp, err := c.larkCli.Im.Message.List(ctx, builder.Build())
	if err != nil {
		return nil, fmt.Errorf("list messages failed: %w", err)
	}
	if !resp.Success() {
		return nil, fmt.Errorf("list messages error: code=%d msg=%s", resp.Code, resp.Msg)
	}

	page := &HistoryPage{}
	if resp.Data == nil {
		return page, nil
	}
	if resp.Data.HasMore != nil {
		page.HasMore = *resp.Data.HasMore
	}
	if resp.Data.PageToken != nil {
		page.PageToken = *resp.Data.PageToken
	}

	for _, item := range resp.Data.Items {
		msg := &HistoryMessage{
			MsgID:      deref(item.MessageId),
			MsgType:    deref(item.MsgType),
			CreateTime: deref(item.CreateTime),
		}
		if item.Deleted != nil {
			msg.Deleted = *item.Deleted
		}

		mentionMap := make(map[string]string)
		for _, m := range item.Mentions {
			if m.Key != nil && m.Name != nil {
				mentionMap[*m.Key] = *m.Name
			}
		}
		if item.Body != nil && item.Body.Content != nil && !msg.Deleted {
			msg.Content = ParseContent(msg.MsgType, *item.Body.Content, mentionMap)
		}

		if item.Sender != nil {
			msg.SenderID = deref(item.Sender.Id)
			msg.SenderType = deref(item.Sender.SenderType)
		}
		page.Messages = append(page.Messages, msg)
	}
	return page, nil
}

// GetChatMembers retrieves every member of a chat, following pagination
func (c *Client) GetChatMembers(ctx context.Context, chatID string) ([]*ChatMember, error) {
	var members []*ChatMember
	var pageToken string

	for {
		builder := larkim.NewGetChatMembersReqBuilder().
			MemberIdType("open_id").
			ChatId(chatID).
			PageSize(100)
		if pageToken != "" {
			builder = builder.PageToken(pageToken)
		}

		resp, err := c.larkCli.Im.ChatMembers.Get(ctx, builder.Build())
		if err != nil {
			return nil, fmt.Errorf("get chat members failed: %w", err)
		}
		if !resp.Success() {
			return nil, fmt.Errorf("get chat members error: %s", resp.Msg)
		}

		for _, item := range resp.Data.Items {
			members = append(members, &ChatMember{
				MemberID: deref(item.MemberId),
				Name:     deref(item.Name),
			})
		}

		if resp.Data.PageToken == nil || *resp.Data.PageToken == "" {
			break
		}
		pageToken = *resp.Data.PageToken
	}
	return members, nil
}

// GetChatInfo retrieves the name of a chat
func (c *Client) GetChatInfo(ctx context.Context, chatID string) (*ChatInfo, error) {
	req := larkim.NewGetChatReqBuilder().
		ChatId(chatID).
		Build()

	resp, err := c.larkCli.Im.Chat.Get(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("get chat info failed: %w", err)
	}
	if !resp.Success() {
		return nil, fmt.Errorf("get chat info error: %s", resp.Msg)
	}

	return &ChatInfo{ChatID: chatID, Name: deref(resp.Data.Name)}, nil
}

// SendText sends a plain text message to a chat
func (c *Client) SendText(ctx context.Context, chatID, text string) error {
	contentJSON, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return fmt.Errorf("encode text: %w", err)
	}

	req := larkim.NewCreateMessageReqBuilder().
		ReceiveIdType(larkim.ReceiveIdTypeChatId).
		Body(larkim.NewCreateMessageReqBodyBuilder().
			ReceiveId(chatID).
			MsgType(larkim.MsgTypeText).
			Content(string(contentJSON)).
			Build()).
		Build()

	resp, err := c.larkCli.Im.Message.Create(ctx, req)
	if err != nil {
		return fmt.Errorf("send message failed: %w", err)
	}
	if !resp.Success() {
		return fmt.Errorf("send message error: code=%d msg=%s", resp.Code, resp.Msg)
	}
	return nil
}

// ParseContent extracts plain text from a message body.
// Media and card messages carry no text and yield "".
func ParseContent(msgType, raw string, mentionMap map[string]string) string {
	switch msgType {
	case "text":
		var parsed struct {
			Text string `json:"text"`
		}
		if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
			return ""
		}
		return replaceMentions(parsed.Text, mentionMap)
	case "post":
		return parsePost(raw, mentionMap)
	default:
		return ""
	}
}

// parsePost flattens a rich text message into lines
func parsePost(raw string, mentionMap map[string]string) string {
	var parsed struct {
		Title   string `json:"title"`
		Content [][]struct {
			Tag      string `json:"tag"`
			Text     string `json:"text,omitempty"`
			UserID   string `json:"user_id,omitempty"`
			UserName string `json:"user_name,omitempty"`
			Href     string `json:"href,omitempty"`
		} `json:"content"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return ""
	}

	var lines []string
	if parsed.Title != "" {
		lines = append(lines, parsed.Title)
	}
	for _, line := range parsed.Content {
		var sb strings.Builder
		for _, elem := range line {
			switch elem.Tag {
			case "text", "a":
				sb.WriteString(elem.Text)
			case "at":
				name := elem.UserName
				if name == "" {
					name = mentionMap[elem.UserID]
				}
				if name == "" {
					name = elem.UserID
				}
				sb.WriteString("@" + name)
			}
		}
		if sb.Len() > 0 {
			lines = append(lines, sb.String())
		}
	}
	return replaceMentions(strings.Join(lines, "\n"), mentionMap)
}

// replaceMentions swaps @_user_N placeholders for real names.
// Longer keys go first so @_user_10 is never read as @_user_1 followed by "0".
func replaceMentions(text string, mentionMap map[string]string) string {
	keys := lo.Keys(mentionMap)
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	for _, key := range keys {
		text = strings.ReplaceAll(text, key, "@"+mentionMap[key])
	}
	return text
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
