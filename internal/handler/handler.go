package handler

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/homebird-app/homebird/internal/auth"
	"github.com/homebird-app/homebird/internal/catalog"
	"github.com/homebird-app/homebird/internal/chat"
	"github.com/homebird-app/homebird/internal/config"
)

// Handler holds all dependencies needed by command and callback handlers.
type Handler struct {
	cfg      *config.Config
	store    *auth.Store
	registry *chat.Registry
	catalog  *catalog.Service
}

// Deps contains all dependencies required to construct a Handler.
type Deps struct {
	Cfg      *config.Config
	Store    *auth.Store
	Registry *chat.Registry
	Catalog  *catalog.Service
}

// New creates a new Handler from the provided dependencies.
func New(deps Deps) *Handler {
	return &Handler{
		cfg:      deps.Cfg,
		store:    deps.Store,
		registry: deps.Registry,
		catalog:  deps.Catalog,
	}
}

// Register wires commands and callback prefixes into the bot.
func (h *Handler) Register(b *bot.Bot) {
	b.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypePrefix, h.handleStart)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/chats", bot.MatchTypeExact, h.handleChats)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/history", bot.MatchTypeExact, h.handleHistory)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/services", bot.MatchTypeExact, h.handleServices)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/settings", bot.MatchTypeExact, h.handleSettings)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/login", bot.MatchTypePrefix, h.handleLogin)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/logout", bot.MatchTypeExact, h.handleLogout)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/new", bot.MatchTypePrefix, h.handleNewChat)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/ask", bot.MatchTypePrefix, h.handleAsk)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/stats", bot.MatchTypeExact, h.handleStats)

	b.RegisterHandler(bot.HandlerTypeCallbackQueryData, "nav_", bot.MatchTypePrefix, h.handleNavCallback)
	b.RegisterHandler(bot.HandlerTypeCallbackQueryData, "chats_page_", bot.MatchTypePrefix, h.handleChatsPage)
	b.RegisterHandler(bot.HandlerTypeCallbackQueryData, "chats_more", bot.MatchTypeExact, h.handleChatsMore)
	b.RegisterHandler(bot.HandlerTypeCallbackQueryData, "resume_", bot.MatchTypePrefix, h.handleResume)
	b.RegisterHandler(bot.HandlerTypeCallbackQueryData, "archive_", bot.MatchTypePrefix, h.handleArchive)
	b.RegisterHandler(bot.HandlerTypeCallbackQueryData, "suggest_", bot.MatchTypePrefix, h.handleSuggestedAction)
	b.RegisterHandler(bot.HandlerTypeCallbackQueryData, "set_service_", bot.MatchTypePrefix, h.handleSetService)
	b.RegisterHandler(bot.HandlerTypeCallbackQueryData, "toggle_refresh", bot.MatchTypeExact, h.handleToggleRefresh)
	b.RegisterHandler(bot.HandlerTypeCallbackQueryData, "rate_", bot.MatchTypePrefix, h.handleRate)
	b.RegisterHandler(bot.HandlerTypeCallbackQueryData, "retry_reload", bot.MatchTypeExact, h.handleRetryReload)
	b.RegisterHandler(bot.HandlerTypeCallbackQueryData, "noop", bot.MatchTypeExact, h.handleNoop)
}

func (h *Handler) handleNoop(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.CallbackQuery == nil {
		return
	}
	b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{CallbackQueryID: update.CallbackQuery.ID})
}
