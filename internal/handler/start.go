package handler

import (
	"context"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/randy-tg/randybot/internal/middleware"
)

func (h *Handler) handleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.Chat.Type != "private" {
		return
	}

	user := middleware.GetUser(ctx)
	if user == nil {
		return
	}

	// Opening a private chat is what makes winner DMs deliverable; remember it.
	if !user.StartedChat {
		if err := h.users.SetStartedChat(ctx, user.ID); err != nil {
			slog.Error("set started chat", "error", err, "user_id", user.ID)
		}
	}

	text := "👋 Привет, *" + user.FirstName + "*!\n\n" +
		"Я — Рэнди, бот розыгрышей нашего сообщества.\n" +
		"Теперь, если вы выиграете приз, я смогу написать вам в личку.\n\n" +
		"Участвовать просто: общайтесь в чате сообщества — победители выбираются случайно среди активных участников."

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    update.Message.Chat.ID,
		Text:      text,
		ParseMode: models.ParseModeMarkdownV1,
	})
}
