package handler

import (
	"context"
	"math/rand"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/randy-tg/randybot/internal/config"
	"github.com/randy-tg/randybot/internal/repository"
	"github.com/randy-tg/randybot/internal/telegram"
)

// Handler holds all dependencies needed by command handlers.
type Handler struct {
	bot       *bot.Bot
	cfg       *config.Config
	users     *repository.UserRepo
	campaigns *repository.CampaignRepo
	slots     *repository.SlotRepo
	settings  *repository.SettingsRepo
	tgLogger  *telegram.TelegramLogger
	rng       *rand.Rand
}

// Deps contains all dependencies required to construct a Handler.
type Deps struct {
	Bot       *bot.Bot
	Cfg       *config.Config
	Users     *repository.UserRepo
	Campaigns *repository.CampaignRepo
	Slots     *repository.SlotRepo
	Settings  *repository.SettingsRepo
	TgLogger  *telegram.TelegramLogger
}

// New creates a new Handler from the provided dependencies.
func New(deps Deps) *Handler {
	return &Handler{
		bot:       deps.Bot,
		cfg:       deps.Cfg,
		users:     deps.Users,
		campaigns: deps.Campaigns,
		slots:     deps.Slots,
		settings:  deps.Settings,
		tgLogger:  deps.TgLogger,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Register registers all command handlers on the bot instance.
// All /randy* commands share one prefix registration and are dispatched on
// the exact command word, so overlapping prefixes cannot shadow each other.
func (h *Handler) Register() {
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypePrefix, h.handleStart)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/randy", bot.MatchTypePrefix, h.handleRandy)

	// Note: free-form group text is routed from the default handler in main.go.
}

func (h *Handler) handleRandy(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	parts := strings.Fields(update.Message.Text)
	if len(parts) == 0 {
		return
	}
	cmd := strings.SplitN(parts[0], "@", 2)[0]

	switch cmd {
	case "/randy":
		h.handleCampaignCreate(ctx, b, update)
	case "/randystatus":
		h.handleCampaignStatus(ctx, b, update)
	case "/randycancel":
		h.handleCampaignCancel(ctx, b, update)
	case "/randypause":
		h.handlePause(ctx, b, update)
	case "/randyresume":
		h.handleResume(ctx, b, update)
	case "/randyban":
		h.handleBan(ctx, b, update)
	case "/randyunban":
		h.handleUnban(ctx, b, update)
	case "/randydm":
		h.handleSetDMTemplate(ctx, b, update)
	case "/randyannounce":
		h.handleSetAnnounceTemplate(ctx, b, update)
	}
}
