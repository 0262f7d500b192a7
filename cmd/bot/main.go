package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/homebird-app/homebird/internal/api"
	"github.com/homebird-app/homebird/internal/auth"
	"github.com/homebird-app/homebird/internal/catalog"
	"github.com/homebird-app/homebird/internal/chat"
	"github.com/homebird-app/homebird/internal/config"
	"github.com/homebird-app/homebird/internal/handler"
	"github.com/homebird-app/homebird/internal/middleware"
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

	// Open the durable client state (tokens, profiles, rating drafts)
	store, err := auth.Open(cfg.StateFile)
	if err != nil {
		slog.Error("failed to open state file", "error", err, "path", cfg.StateFile)
		os.Exit(1)
	}

	// Backend client and per-user state
	apiClient := api.New(cfg.BackendBaseURL, store)
	registry := chat.NewRegistry(apiClient, cfg.DemoMode)
	registry.Prefs = store
	registry.RefreshInterval = time.Duration(cfg.AutoRefreshSeconds) * time.Second
	catalogService := catalog.NewService(cfg.CatalogURL)

	h := handler.New(handler.Deps{
		Cfg:      cfg,
		Store:    store,
		Registry: registry,
		Catalog:  catalogService,
	})

	opts := []bot.Option{
		bot.WithMiddlewares(
			middleware.Recover(),
			middleware.Logging(),
			middleware.ClientLoader(registry),
		),
		bot.WithDefaultHandler(func(ctx context.Context, b *bot.Bot, update *models.Update) {
			h.HandleTextPrivate(ctx, b, update)
		}),
	}

	b, err := bot.New(cfg.BotToken, opts...)
	if err != nil {
		slog.Error("failed to create bot", "error", err)
		os.Exit(1)
	}

	me, err := b.GetMe(ctx)
	if err != nil {
		slog.Error("failed to get bot info", "error", err)
		os.Exit(1)
	}

	h.Register(b)

	slog.Info("starting bot",
		"username", me.Username,
		"backend", cfg.BackendBaseURL,
		"demo_mode", cfg.DemoMode,
	)
	b.Start(ctx)
	slog.Info("bot stopped")
}
