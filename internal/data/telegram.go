package data

import (
	"context"

	"github.com/DevRickLin/daily-digest/internal/biz/repo"
	"github.com/DevRickLin/daily-digest/internal/infra/telegram"
)

// botSender is the subset of the Bot API client used for delivery
type botSender interface {
	SendMessage(ctx context.Context, chatID, text string) error
}

// telegramDeliveryRepo posts report segments through a Telegram bot
type telegramDeliveryRepo struct {
	client botSender
}

// NewTelegramDeliveryRepo creates the telegram delivery channel
func NewTelegramDeliveryRepo(client botSender) repo.DeliveryRepo {
	return &telegramDeliveryRepo{client: client}
}

func (r *telegramDeliveryRepo) Channel() string {
	return "telegram"
}

// SendText posts one segment. The Bot API counts UTF-16 units, so a segment
// heavy in emoji may still need more than one message.
func (r *telegramDeliveryRepo) SendText(ctx context.Context, targetID, text string) error {
	for _, piece := range telegram.SplitMessage(text) {
		if err := r.client.SendMessage(ctx, targetID, piece); err != nil {
			return err
		}
	}
	return nil
}
