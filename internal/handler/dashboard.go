package handler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/homebird-app/homebird/internal/chat"
	"github.com/homebird-app/homebird/internal/config"
	"github.com/homebird-app/homebird/internal/middleware"
	tg "github.com/homebird-app/homebird/internal/telegram"
)

var stateLabels = map[chat.ConnectionState]string{
	chat.StateConnecting:   "🟡 connecting",
	chat.StateConnected:    "🟢 connected",
	chat.StateDisconnected: "⚪️ disconnected",
	chat.StateError:        "🔴 error",
}

func (h *Handler) handleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.Chat.Type != "private" {
		return
	}
	h.sendDashboard(ctx, b, update.Message.Chat.ID)
}

func (h *Handler) sendDashboard(ctx context.Context, b *bot.Bot, chatID int64) {
	client := middleware.GetClient(ctx)
	if client == nil {
		return
	}

	// The session only turns connected once a conversation op ran; until
	// then the thread list is the best signal for backend reachability.
	state := client.Session.State()
	if state == chat.StateDisconnected {
		switch {
		case client.Threads.LastError() != nil:
			state = chat.StateError
		case !client.Threads.LastUpdated().IsZero():
			state = chat.StateConnected
		}
	}

	var sb strings.Builder
	sb.WriteString("🏠 *Homebird*\nYour home services, one chat away.\n\n")
	sb.WriteString(fmt.Sprintf("Status: %s\n", stateLabels[state]))
	if h.registry.DemoMode() {
		sb.WriteString("Mode: 🧪 demo (sample data)\n")
	}

	recent := client.Threads.Recent(config.RecentThreads)
	if len(recent) > 0 {
		sb.WriteString("\n*Recent chats*\n")
		for _, t := range recent {
			sb.WriteString(fmt.Sprintf("• %s — %s\n", tg.Truncate(t.Title, 40), t.Status))
		}
	}

	rows := [][]models.InlineKeyboardButton{
		tg.ButtonRow(tg.InlineButton("💬 New booking chat", "nav_new")),
		tg.ButtonRow(
			tg.InlineButton("📂 My chats", "nav_chats"),
			tg.InlineButton("📖 History", "nav_history"),
		),
		tg.ButtonRow(
			tg.InlineButton("🧰 Services", "nav_services"),
			tg.InlineButton("⚙️ Settings", "nav_settings"),
		),
	}
	if state == chat.StateError {
		rows = append(rows, tg.ButtonRow(tg.InlineButton("🔄 Retry", "retry_reload")))
	}

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        sb.String(),
		ParseMode:   models.ParseModeMarkdownV1,
		ReplyMarkup: tg.InlineKeyboard(rows...),
	})
}

func (h *Handler) handleNavCallback(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.CallbackQuery == nil || update.CallbackQuery.Message.Message == nil {
		return
	}
	b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{CallbackQueryID: update.CallbackQuery.ID})

	chatID := update.CallbackQuery.Message.Message.Chat.ID
	switch update.CallbackQuery.Data {
	case "nav_new":
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "💬 Tell me what you need — for example: \"Book a cleaning for Friday morning\".",
		})
	case "nav_chats":
		h.sendThreadsView(ctx, b, chatID, 0, false, 0)
	case "nav_history":
		h.sendHistory(ctx, b, chatID)
	case "nav_services":
		h.sendServices(ctx, b, chatID)
	case "nav_settings":
		h.sendSettings(ctx, b, chatID)
	}
}

// handleRetryReload is the dashboard's retry affordance: a full reload of the
// thread list followed by a fresh dashboard.
func (h *Handler) handleRetryReload(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.CallbackQuery == nil || update.CallbackQuery.Message.Message == nil {
		return
	}
	b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{CallbackQueryID: update.CallbackQuery.ID})

	client := middleware.GetClient(ctx)
	if client == nil {
		return
	}

	chatID := update.CallbackQuery.Message.Message.Chat.ID
	if err := client.Threads.Load(ctx, 1, false, true); err != nil {
		slog.Error("reload threads", "error", err)
	}
	client.Session.Clear()
	h.sendDashboard(ctx, b, chatID)
}
