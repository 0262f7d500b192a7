package handler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/homebird-app/homebird/internal/middleware"
	tg "github.com/homebird-app/homebird/internal/telegram"
)

func (h *Handler) handleSettings(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.Chat.Type != "private" {
		return
	}
	h.sendSettings(ctx, b, update.Message.Chat.ID)
}

func (h *Handler) sendSettings(ctx context.Context, b *bot.Bot, chatID int64) {
	userID := middleware.GetUserID(ctx)
	profile := h.store.Profile(userID)

	loginStatus := "❌ not logged in (anonymous mode)"
	if h.store.Token(userID) != "" {
		loginStatus = "✅ logged in"
	}
	refreshStatus := "❌ off"
	switch {
	case h.cfg.AutoRefreshSeconds <= 0:
		refreshStatus = "🚫 not available"
	case profile.AutoRefresh:
		refreshStatus = "✅ on"
	}
	serviceType := profile.DefaultServiceType
	if serviceType == "" {
		serviceType = "not set"
	}

	text := fmt.Sprintf(
		"⚙️ *Settings*\n\n"+
			"Account: %s\n"+
			"Default service: %s\n"+
			"Auto-refresh: %s\n\n"+
			"Use /login <token> to connect your account, /logout to disconnect.",
		loginStatus, serviceType, refreshStatus,
	)

	var serviceRow []models.InlineKeyboardButton
	for _, slug := range h.catalog.Slugs(ctx) {
		if len(serviceRow) == 3 {
			break
		}
		serviceRow = append(serviceRow, tg.InlineButton(slug, "set_service_"+slug))
	}

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      text,
		ParseMode: models.ParseModeMarkdownV1,
		ReplyMarkup: tg.InlineKeyboard(
			serviceRow,
			tg.ButtonRow(tg.InlineButton("🔄 Toggle auto-refresh", "toggle_refresh")),
		),
	})
}

func (h *Handler) handleSetService(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.CallbackQuery == nil {
		return
	}
	b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{CallbackQueryID: update.CallbackQuery.ID})

	userID := middleware.GetUserID(ctx)
	profile := h.store.Profile(userID)
	profile.DefaultServiceType = strings.TrimPrefix(update.CallbackQuery.Data, "set_service_")
	if err := h.store.SaveProfile(userID, profile); err != nil {
		slog.Error("save profile", "error", err, "user_id", userID)
		return
	}

	if update.CallbackQuery.Message.Message != nil {
		h.sendSettings(ctx, b, update.CallbackQuery.Message.Message.Chat.ID)
	}
}

// handleToggleRefresh flips the periodic silent refresh of the thread list.
func (h *Handler) handleToggleRefresh(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.CallbackQuery == nil {
		return
	}

	userID := middleware.GetUserID(ctx)
	client := middleware.GetClient(ctx)
	if client == nil {
		return
	}

	// Without a configured interval there is no ticker to start.
	if h.cfg.AutoRefreshSeconds <= 0 {
		b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
			CallbackQueryID: update.CallbackQuery.ID,
			Text:            "Auto-refresh is not available on this bot.",
			ShowAlert:       true,
		})
		return
	}
	b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{CallbackQueryID: update.CallbackQuery.ID})

	profile := h.store.Profile(userID)
	profile.AutoRefresh = !profile.AutoRefresh
	if err := h.store.SaveProfile(userID, profile); err != nil {
		slog.Error("save profile", "error", err, "user_id", userID)
		return
	}

	if profile.AutoRefresh {
		client.Threads.StartAutoRefresh(context.WithoutCancel(ctx),
			time.Duration(h.cfg.AutoRefreshSeconds)*time.Second)
	} else {
		client.Threads.StopAutoRefresh()
	}

	if update.CallbackQuery.Message.Message != nil {
		h.sendSettings(ctx, b, update.CallbackQuery.Message.Message.Chat.ID)
	}
}

// handleLogin stores the backend bearer token: /login <token>
func (h *Handler) handleLogin(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.Chat.Type != "private" {
		return
	}

	chatID := update.Message.Chat.ID
	parts := strings.SplitN(update.Message.Text, " ", 2)
	if len(parts) < 2 || strings.TrimSpace(parts[1]) == "" {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "Usage: /login <token>",
		})
		return
	}

	userID := middleware.GetUserID(ctx)
	if err := h.store.SetToken(userID, strings.TrimSpace(parts[1])); err != nil {
		slog.Error("persist token", "error", err, "user_id", userID)
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "❌ Could not save your login. Try again.",
		})
		return
	}

	// Delete the message carrying the token so it does not stay in the chat.
	b.DeleteMessage(ctx, &bot.DeleteMessageParams{
		ChatID:    chatID,
		MessageID: update.Message.ID,
	})

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   "✅ Logged in. Your chats are now linked to your account.",
	})
}

func (h *Handler) handleLogout(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.Chat.Type != "private" {
		return
	}

	userID := middleware.GetUserID(ctx)
	client := middleware.GetClient(ctx)
	if err := h.store.ClearToken(userID); err != nil {
		slog.Error("clear token", "error", err, "user_id", userID)
	}
	if client != nil {
		// Switching accounts means the cached conversation no longer applies.
		client.Session.Clear()
		client.Threads.StopAutoRefresh()
	}

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: update.Message.Chat.ID,
		Text:   "👋 Logged out. You are back in anonymous mode.",
	})
}
