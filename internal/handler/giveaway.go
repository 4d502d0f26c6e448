package handler

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/randy-tg/randybot/internal/config"
	"github.com/randy-tg/randybot/internal/domain"
	"github.com/randy-tg/randybot/internal/giveaway"
	"github.com/randy-tg/randybot/internal/middleware"
)

// handleCampaignCreate starts a new campaign:
//
//	/randy <winners> <hours> [min=N] [period=today|week|all] [value=X] [multi] [noannounce] [pin] <prize...>
//
// Slots are generated once here, atomically with the campaign row; the tick
// loop takes over from there.
func (h *Handler) handleCampaignCreate(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	parts := strings.Fields(update.Message.Text)

	user := middleware.GetUser(ctx)
	if user == nil || !h.cfg.IsAdmin(user.ID) {
		return
	}

	chatID := update.Message.Chat.ID

	if len(parts) < 4 {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text: "Использование: /randy <победителей> <часов> [min=N] [period=today|week|all] " +
				"[value=X] [multi] [noannounce] [pin] <приз>",
		})
		return
	}

	winners, err := strconv.Atoi(parts[1])
	if err != nil || winners < 1 || winners > config.MaxWinnerCount {
		b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: "❌ Некорректное число победителей."})
		return
	}

	hours, err := strconv.Atoi(parts[2])
	if err != nil || hours < 1 || hours > config.MaxDistributionHours {
		b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: "❌ Некорректная длительность."})
		return
	}

	c := domain.Campaign{
		ID:                uuid.New(),
		WinnerCount:       winners,
		DistributionHours: hours,
		MessagePeriod:     domain.PeriodNone,
		OnePerUser:        true,
		SendAnnouncement:  true,
		Status:            domain.CampaignActive,
		StartTime:         time.Now(),
		CreatedBy:         user.ID,
	}

	// Option tokens; the first unrecognized token starts the prize text.
	rest := parts[3:]
	for len(rest) > 0 {
		token := rest[0]
		switch {
		case strings.HasPrefix(token, "min="):
			n, err := strconv.Atoi(strings.TrimPrefix(token, "min="))
			if err != nil || n < 0 {
				b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: "❌ Некорректный min="})
				return
			}
			c.MinMessages = n
		case strings.HasPrefix(token, "period="):
			p, ok := domain.ParseMessagePeriod(strings.TrimPrefix(token, "period="))
			if !ok {
				b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: "❌ Некорректный period="})
				return
			}
			c.MessagePeriod = p
		case strings.HasPrefix(token, "value="):
			v, err := decimal.NewFromString(strings.TrimPrefix(token, "value="))
			if err != nil || v.IsNegative() {
				b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: "❌ Некорректный value="})
				return
			}
			c.PrizeValue = v
		case token == "multi":
			c.OnePerUser = false
		case token == "noannounce":
			c.SendAnnouncement = false
		case token == "pin":
			c.PinMessage = true
		default:
			c.PrizeText = strings.Join(rest, " ")
			rest = nil
			continue
		}
		rest = rest[1:]
	}

	if c.PrizeText == "" {
		b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: "❌ Укажите приз."})
		return
	}

	// One campaign at a time; the engine tolerates more, but creation refuses.
	active, err := h.campaigns.ListByStatus(ctx, domain.CampaignActive)
	if err != nil {
		slog.Error("list active campaigns", "error", err)
		return
	}
	if len(active) > 0 {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "❌ Уже идёт розыгрыш. Завершите его: /randycancel",
		})
		return
	}

	schedTimes := giveaway.GenerateSlots(h.rng, c.StartTime, c.Window(), c.WinnerCount)
	if err := h.campaigns.Create(ctx, c, schedTimes); err != nil {
		slog.Error("create campaign", "error", err)
		h.tgLogger.LogError(err, "campaign create")
		b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: "❌ Ошибка при создании розыгрыша."})
		return
	}

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text: fmt.Sprintf("✅ Розыгрыш запущен!\n\n🎁 Приз: %s\n🏆 Победителей: %d\n⏳ В течение: %d ч.",
			c.PrizeText, c.WinnerCount, c.DistributionHours),
	})
}

func (h *Handler) handleCampaignStatus(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	user := middleware.GetUser(ctx)
	if user == nil || !h.cfg.IsAdmin(user.ID) {
		return
	}

	chatID := update.Message.Chat.ID

	active, err := h.campaigns.ListByStatus(ctx, domain.CampaignActive)
	if err != nil {
		slog.Error("list active campaigns", "error", err)
		return
	}
	if len(active) == 0 {
		b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: "Сейчас нет активных розыгрышей."})
		return
	}

	var sb strings.Builder
	for _, c := range active {
		total, assigned, err := h.slots.Counts(ctx, c.ID)
		if err != nil {
			slog.Error("count slots", "error", err, "campaign_id", c.ID)
			continue
		}
		endsAt := c.StartTime.Add(c.Window())
		sb.WriteString(fmt.Sprintf("🎁 *%s*\n🏆 Разыграно: %d/%d\n⏳ До: %s\n",
			c.PrizeText, assigned, total, endsAt.In(h.cfg.Location()).Format("02.01.2006 15:04")))
		if !c.PrizeValue.IsZero() {
			pool := c.PrizeValue.Mul(decimal.NewFromInt(int64(c.WinnerCount)))
			sb.WriteString(fmt.Sprintf("💰 Призовой фонд: %s\n", pool.StringFixed(2)))
		}
		if assigned > 0 {
			sb.WriteString(h.winnersLine(ctx, c.ID))
		}
		sb.WriteString("\n")
	}

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      sb.String(),
		ParseMode: models.ParseModeMarkdownV1,
	})
}

const statusWinnerLimit = 10

// winnersLine formats the most recent winners of a campaign, newest last.
func (h *Handler) winnersLine(ctx context.Context, campaignID uuid.UUID) string {
	slots, err := h.slots.ListByCampaign(ctx, campaignID)
	if err != nil {
		slog.Error("list slots", "error", err, "campaign_id", campaignID)
		return ""
	}

	var names []string
	for _, s := range slots {
		if !s.Assigned || s.Winner == nil {
			continue
		}
		switch {
		case s.Winner.Username != "":
			names = append(names, "@"+s.Winner.Username)
		case s.Winner.FirstName != "":
			names = append(names, s.Winner.FirstName)
		default:
			names = append(names, strconv.FormatInt(s.Winner.UserID, 10))
		}
	}
	if len(names) == 0 {
		return ""
	}
	if len(names) > statusWinnerLimit {
		names = names[len(names)-statusWinnerLimit:]
	}
	return "🥇 Победители: " + strings.Join(names, ", ") + "\n"
}

// handleCampaignCancel cancels every active campaign. Remaining unassigned
// slots are permanently skipped: the tick loop only looks at active campaigns.
func (h *Handler) handleCampaignCancel(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	user := middleware.GetUser(ctx)
	if user == nil || !h.cfg.IsAdmin(user.ID) {
		return
	}

	chatID := update.Message.Chat.ID

	active, err := h.campaigns.ListByStatus(ctx, domain.CampaignActive)
	if err != nil {
		slog.Error("list active campaigns", "error", err)
		return
	}
	if len(active) == 0 {
		b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: "Нет активного розыгрыша."})
		return
	}

	cancelled := 0
	for _, c := range active {
		changed, err := h.campaigns.UpdateStatusFrom(ctx, c.ID, domain.CampaignActive, domain.CampaignCancelled)
		if err != nil {
			slog.Error("cancel campaign", "error", err, "campaign_id", c.ID)
			continue
		}
		if changed {
			cancelled++
		}
	}

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   fmt.Sprintf("✅ Отменено розыгрышей: %d", cancelled),
	})
}

func (h *Handler) handlePause(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.setCommunityActive(ctx, b, update, false, "⏸ Розыгрыши приостановлены.")
}

func (h *Handler) handleResume(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.setCommunityActive(ctx, b, update, true, "▶️ Розыгрыши возобновлены.")
}

func (h *Handler) setCommunityActive(ctx context.Context, b *bot.Bot, update *models.Update, active bool, reply string) {
	if update.Message == nil {
		return
	}

	user := middleware.GetUser(ctx)
	if user == nil || !h.cfg.IsAdmin(user.ID) {
		return
	}

	if err := h.settings.SetCommunityActive(ctx, active); err != nil {
		slog.Error("set community active", "error", err, "active", active)
		return
	}

	b.SendMessage(ctx, &bot.SendMessageParams{ChatID: update.Message.Chat.ID, Text: reply})
}

func (h *Handler) handleBan(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.setBanned(ctx, b, update, true, "🚫 Пользователь исключён из розыгрышей.")
}

func (h *Handler) handleUnban(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.setBanned(ctx, b, update, false, "✅ Пользователь снова участвует в розыгрышах.")
}

func (h *Handler) setBanned(ctx context.Context, b *bot.Bot, update *models.Update, banned bool, reply string) {
	if update.Message == nil {
		return
	}

	user := middleware.GetUser(ctx)
	if user == nil || !h.cfg.IsAdmin(user.ID) {
		return
	}

	chatID := update.Message.Chat.ID

	// Target either by reply or by explicit id argument.
	var targetID int64
	if update.Message.ReplyToMessage != nil && update.Message.ReplyToMessage.From != nil {
		targetID = update.Message.ReplyToMessage.From.ID
	} else {
		parts := strings.Fields(update.Message.Text)
		if len(parts) < 2 {
			b.SendMessage(ctx, &bot.SendMessageParams{
				ChatID: chatID,
				Text:   "Использование: ответьте на сообщение пользователя или укажите его id.",
			})
			return
		}
		id, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: "❌ Некорректный id."})
			return
		}
		targetID = id
	}

	if err := h.users.SetBanned(ctx, targetID, banned); err != nil {
		if err == domain.ErrUserNotFound {
			b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: "❌ Пользователь не найден."})
			return
		}
		slog.Error("set banned", "error", err, "user_id", targetID)
		return
	}

	b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: reply})
}

func (h *Handler) handleSetDMTemplate(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.setTemplate(ctx, b, update, giveaway.DMTemplateKey)
}

func (h *Handler) handleSetAnnounceTemplate(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.setTemplate(ctx, b, update, giveaway.AnnounceTemplateKey)
}

// setTemplate stores a message template override. Calling the command with no
// text clears the override back to the built-in default.
func (h *Handler) setTemplate(ctx context.Context, b *bot.Bot, update *models.Update, key string) {
	if update.Message == nil {
		return
	}

	user := middleware.GetUser(ctx)
	if user == nil || !h.cfg.IsAdmin(user.ID) {
		return
	}

	chatID := update.Message.Chat.ID

	// Everything after the command word is the template body.
	_, tpl, _ := strings.Cut(update.Message.Text, " ")
	tpl = strings.TrimSpace(tpl)
	if err := h.settings.Set(ctx, key, tpl); err != nil {
		slog.Error("set template", "error", err, "key", key)
		return
	}

	reply := "✅ Шаблон сохранён. Плейсхолдеры: {mention}, {username}, {firstname}, {prize}, {userId}"
	if tpl == "" {
		reply = "✅ Шаблон сброшен на стандартный."
	}
	b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: reply})
}
