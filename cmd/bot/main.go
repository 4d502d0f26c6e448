package main

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	randybotroot "github.com/randy-tg/randybot"
	"github.com/randy-tg/randybot/internal/config"
	"github.com/randy-tg/randybot/internal/giveaway"
	"github.com/randy-tg/randybot/internal/handler"
	"github.com/randy-tg/randybot/internal/middleware"
	"github.com/randy-tg/randybot/internal/repository"
	"github.com/randy-tg/randybot/internal/telegram"
)

func main() {
	// Setup structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Setup context with graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to database
	pool, err := repository.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Run migrations
	migrationsFS, err := fs.Sub(randybotroot.MigrationsFS, "migrations")
	if err != nil {
		slog.Error("failed to load embedded migrations", "error", err)
		os.Exit(1)
	}
	if err := repository.RunMigrations(cfg.DatabaseURL, migrationsFS); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Initialize repositories
	users := repository.NewUserRepo(pool)
	campaigns := repository.NewCampaignRepo(pool)
	slots := repository.NewSlotRepo(pool)
	settings := repository.NewSettingsRepo(pool)

	// Handler pointer for use in default handler closure
	var h *handler.Handler

	// Create bot
	opts := []bot.Option{
		bot.WithMiddlewares(
			middleware.Recover(),
			middleware.Logging(),
			middleware.UserLoader(users),
		),
		bot.WithDefaultHandler(func(ctx context.Context, b *bot.Bot, update *models.Update) {
			if h == nil || update.Message == nil {
				return
			}
			h.HandleTextGroup(ctx, b, update)
		}),
	}

	b, err := bot.New(cfg.BotToken, opts...)
	if err != nil {
		slog.Error("failed to create bot", "error", err)
		os.Exit(1)
	}

	// Get bot info
	me, err := b.GetMe(ctx)
	if err != nil {
		slog.Error("failed to get bot info", "error", err)
		os.Exit(1)
	}

	slog.Info("bot info retrieved", "id", me.ID, "username", me.Username)

	// Initialize telegram logger and notifier
	tgLogger := telegram.NewTelegramLogger(b, cfg)
	notifier := telegram.NewNotifier(b, cfg.CommunityChatID)

	// Initialize the campaign engine
	engine := giveaway.New(giveaway.Deps{
		Campaigns: campaigns,
		Slots:     slots,
		Directory: users,
		Settings:  settings,
		Notifier:  notifier,
		Location:  cfg.Location(),
	})

	// Initialize handler
	h = handler.New(handler.Deps{
		Bot:       b,
		Cfg:       cfg,
		Users:     users,
		Campaigns: campaigns,
		Slots:     slots,
		Settings:  settings,
		TgLogger:  tgLogger,
	})

	// Register all handlers
	h.Register()

	// Start the scheduler loop: each tick hands out all currently-due slots.
	go func() {
		ticker := time.NewTicker(cfg.TickInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				tickCtx, cancel := context.WithTimeout(context.Background(), config.TickTimeout)
				made, err := engine.Tick(tickCtx, time.Now())
				cancel()
				if err != nil {
					slog.Error("tick failed", "error", err)
					tgLogger.LogError(err, "scheduler tick")
				}
				for _, a := range made {
					w := a.Slot.Winner
					slog.Info("slot assigned",
						"campaign_id", a.Campaign.ID,
						"slot_id", a.Slot.ID,
						"user_id", w.UserID,
					)
					tgLogger.LogWin(a.Campaign.ID.String(), w.UserID, w.Username, a.Campaign.PrizeText)
				}
			}
		}
	}()

	// Start bot
	slog.Info("starting bot", "username", me.Username, "id", me.ID)
	b.Start(ctx)

	// Graceful shutdown
	slog.Info("bot stopped gracefully")
}
