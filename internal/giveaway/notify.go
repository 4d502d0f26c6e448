package giveaway

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/randy-tg/randybot/internal/domain"
)

// Template settings keys and their built-in fallbacks.
const (
	DMTemplateKey       = "randy_dm_template"
	AnnounceTemplateKey = "randy_announce_template"

	defaultDMTemplate       = "🎉 Поздравляем, {firstname}! Вы выиграли: {prize}"
	defaultAnnounceTemplate = "🎉 {mention} выигрывает: {prize}!"
)

// notify delivers the winner DM and the public announcement for one
// assignment. Every delivery is independently best-effort: a failure is
// logged and the others still run. The assignment itself is already durable
// by the time notify is called.
func (e *Engine) notify(ctx context.Context, c domain.Campaign, s domain.Slot, winner domain.User) {
	// A DM is only deliverable when the user opened a private chat with the
	// bot at some point; otherwise skip silently.
	if winner.StartedChat {
		text := RenderTemplate(e.template(ctx, DMTemplateKey, defaultDMTemplate), c, s)
		if err := e.notifier.SendDirect(ctx, winner.ID, text); err != nil {
			slog.Warn("winner dm failed", "user_id", winner.ID, "campaign_id", c.ID, "error", err)
		}
	}

	if !c.SendAnnouncement {
		return
	}
	text := RenderTemplate(e.template(ctx, AnnounceTemplateKey, defaultAnnounceTemplate), c, s)
	messageID, err := e.notifier.Announce(ctx, text)
	if err != nil {
		slog.Warn("announcement failed", "campaign_id", c.ID, "error", err)
		return
	}
	if c.PinMessage {
		if err := e.notifier.Pin(ctx, messageID); err != nil {
			slog.Warn("pin failed", "campaign_id", c.ID, "message_id", messageID, "error", err)
		}
	}
}

func (e *Engine) template(ctx context.Context, key, fallback string) string {
	tpl, err := e.settings.Template(ctx, key)
	if err != nil {
		slog.Warn("read template", "key", key, "error", err)
		return fallback
	}
	if tpl == "" {
		return fallback
	}
	return tpl
}

// RenderTemplate substitutes the recognized placeholders with values from the
// slot's winner snapshot. Substitution is purely textual; unrecognized
// placeholders are left verbatim.
func RenderTemplate(tpl string, c domain.Campaign, s domain.Slot) string {
	w := s.Winner
	if w == nil {
		return tpl
	}
	return strings.NewReplacer(
		"{mention}", mention(w),
		"{username}", w.Username,
		"{firstname}", w.FirstName,
		"{prize}", c.PrizeText,
		"{userId}", strconv.FormatInt(w.UserID, 10),
	).Replace(tpl)
}

// mention builds an at-reference for the winner, falling back from username
// to a tg:// name link to the bare id.
func mention(w *domain.Winner) string {
	switch {
	case w.Username != "":
		return "@" + w.Username
	case w.FirstName != "":
		return fmt.Sprintf("[%s](tg://user?id=%d)", w.FirstName, w.UserID)
	default:
		return strconv.FormatInt(w.UserID, 10)
	}
}
