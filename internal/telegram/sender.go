package telegram

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// Notifier delivers engine notifications over the Telegram Bot API. It sends
// with Markdown and falls back to plain text when Telegram rejects the markup,
// so a winner's name can never break delivery.
type Notifier struct {
	bot    *bot.Bot
	chatID int64 // community chat for announcements
}

func NewNotifier(b *bot.Bot, communityChatID int64) *Notifier {
	return &Notifier{bot: b, chatID: communityChatID}
}

// SendDirect sends a private message to the user.
func (n *Notifier) SendDirect(ctx context.Context, userID int64, text string) error {
	_, err := n.send(ctx, userID, text)
	return err
}

// Announce posts into the community chat and returns the message id so the
// caller can pin it.
func (n *Notifier) Announce(ctx context.Context, text string) (int, error) {
	msg, err := n.send(ctx, n.chatID, text)
	if err != nil {
		return 0, err
	}
	return msg.ID, nil
}

// Pin pins a previously sent community message.
func (n *Notifier) Pin(ctx context.Context, messageID int) error {
	_, err := n.bot.PinChatMessage(ctx, &bot.PinChatMessageParams{
		ChatID:    n.chatID,
		MessageID: messageID,
	})
	if err != nil {
		return fmt.Errorf("pin message: %w", err)
	}
	return nil
}

func (n *Notifier) send(ctx context.Context, chatID int64, text string) (*models.Message, error) {
	params := &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      text,
		ParseMode: models.ParseModeMarkdownV1,
	}
	msg, err := n.bot.SendMessage(ctx, params)
	if err != nil {
		// Fallback to plain text
		params.ParseMode = ""
		msg, err = n.bot.SendMessage(ctx, params)
		if err != nil {
			return nil, fmt.Errorf("send message: %w", err)
		}
	}
	return msg, nil
}
