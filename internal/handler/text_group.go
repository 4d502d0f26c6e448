package handler

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/randy-tg/randybot/internal/middleware"
)

// HandleTextGroup records group messages as message events. The counters feed
// the campaign eligibility rules (minimum activity within a period).
func (h *Handler) HandleTextGroup(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	msg := update.Message
	chatType := msg.Chat.Type

	if chatType != "supergroup" && chatType != "group" {
		return
	}

	// Skip commands
	if strings.HasPrefix(msg.Text, "/") {
		return
	}

	user := middleware.GetUser(ctx)
	if user == nil {
		return
	}

	sentAt := time.Unix(int64(msg.Date), 0)
	if err := h.users.RecordMessage(ctx, user.ID, msg.Chat.ID, sentAt); err != nil {
		slog.Error("record message event", "error", err, "user_id", user.ID)
	}
}
