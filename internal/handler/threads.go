package handler

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/homebird-app/homebird/internal/config"
	"github.com/homebird-app/homebird/internal/domain"
	"github.com/homebird-app/homebird/internal/middleware"
	"github.com/homebird-app/homebird/internal/notice"
	tg "github.com/homebird-app/homebird/internal/telegram"
)

var statusBadges = map[domain.ChatStatus]string{
	domain.StatusDraft:               "✏️",
	domain.StatusActive:              "💬",
	domain.StatusPendingConfirmation: "⏳",
	domain.StatusConfirmed:           "✅",
	domain.StatusCompleted:           "🏁",
	domain.StatusArchived:            "📦",
}

func (h *Handler) handleChats(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.Chat.Type != "private" {
		return
	}

	client := middleware.GetClient(ctx)
	if client == nil {
		return
	}

	chatID := update.Message.Chat.ID
	if len(client.Threads.Threads()) == 0 && !h.registry.DemoMode() {
		if err := client.Threads.Load(ctx, 1, false, true); err != nil {
			slog.Error("load threads", "error", err)
			n := notice.Translate(err, "Could not load your chats.")
			b.SendMessage(ctx, &bot.SendMessageParams{
				ChatID:    chatID,
				Text:      fmt.Sprintf("❌ *%s*\n%s", n.Title, n.Message),
				ParseMode: models.ParseModeMarkdownV1,
			})
			return
		}
	}

	h.sendThreadsView(ctx, b, chatID, 0, false, 0)
}

// sendThreadsView renders one screen of the cached thread list. view is the
// zero-based Telegram page over the cache; fetching more from the backend
// happens through the explicit load-more button.
func (h *Handler) sendThreadsView(ctx context.Context, b *bot.Bot, chatID int64, view int, edit bool, messageID int) {
	client := middleware.GetClient(ctx)
	if client == nil {
		return
	}

	threads := client.Threads.Active()
	total := len(threads)

	totalViews := int(math.Ceil(float64(total) / float64(config.ThreadsPerView)))
	if totalViews == 0 {
		totalViews = 1
	}
	if view >= totalViews {
		view = totalViews - 1
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📂 *Your chats* (%d)\n", total))
	if updated := client.Threads.LastUpdated(); !updated.IsZero() {
		sb.WriteString(fmt.Sprintf("_updated %s_\n", updated.Format("15:04:05")))
	}

	var rows [][]models.InlineKeyboardButton

	start := view * config.ThreadsPerView
	end := start + config.ThreadsPerView
	if end > total {
		end = total
	}
	for _, t := range threads[start:end] {
		label := fmt.Sprintf("%s %s", statusBadges[t.Status], tg.Truncate(t.Title, 30))
		row := tg.ButtonRow(tg.InlineButton(label, "resume_"+t.ID))
		if t.Status.CanArchive() {
			row = append(row, tg.InlineButton("📦", "archive_"+t.ID))
		}
		rows = append(rows, row)
	}

	if totalViews > 1 {
		rows = append(rows, tg.PaginationRow(view, totalViews, "chats_page"))
	}
	if client.Threads.HasMore() {
		rows = append(rows, tg.ButtonRow(tg.InlineButton("⬇️ Load more", "chats_more")))
	}

	keyboard := tg.InlineKeyboard(rows...)
	if edit && messageID != 0 {
		b.EditMessageText(ctx, &bot.EditMessageTextParams{
			ChatID:      chatID,
			MessageID:   messageID,
			Text:        sb.String(),
			ParseMode:   models.ParseModeMarkdownV1,
			ReplyMarkup: keyboard,
		})
	} else {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID:      chatID,
			Text:        sb.String(),
			ParseMode:   models.ParseModeMarkdownV1,
			ReplyMarkup: keyboard,
		})
	}
}

func (h *Handler) handleChatsPage(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.CallbackQuery == nil || update.CallbackQuery.Message.Message == nil {
		return
	}
	b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{CallbackQueryID: update.CallbackQuery.ID})

	view, err := strconv.Atoi(strings.TrimPrefix(update.CallbackQuery.Data, "chats_page_"))
	if err != nil {
		return
	}
	msg := update.CallbackQuery.Message.Message
	h.sendThreadsView(ctx, b, msg.Chat.ID, view, true, msg.ID)
}

func (h *Handler) handleChatsMore(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.CallbackQuery == nil || update.CallbackQuery.Message.Message == nil {
		return
	}
	b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{CallbackQueryID: update.CallbackQuery.ID})

	client := middleware.GetClient(ctx)
	if client == nil {
		return
	}

	msg := update.CallbackQuery.Message.Message
	if err := client.Threads.LoadMore(ctx); err != nil {
		slog.Error("load more threads", "error", err)
	}
	h.sendThreadsView(ctx, b, msg.Chat.ID, 0, true, msg.ID)
}

func (h *Handler) handleResume(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.CallbackQuery == nil || update.CallbackQuery.Message.Message == nil {
		return
	}
	b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{CallbackQueryID: update.CallbackQuery.ID})

	client := middleware.GetClient(ctx)
	if client == nil {
		return
	}

	chatID := update.CallbackQuery.Message.Message.Chat.ID
	threadID := strings.TrimPrefix(update.CallbackQuery.Data, "resume_")

	thread, err := client.Session.ResumeChat(ctx, threadID)
	if err != nil {
		slog.Error("resume chat", "error", err, "thread_id", threadID)
		n := notice.Translate(err, "Could not resume the chat.")
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   fmt.Sprintf("❌ %s %s", n.Title, n.Message),
		})
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("💬 *%s* (%s)\n\n", thread.Title, thread.Status))
	messages := client.Session.Messages()
	from := 0
	if len(messages) > 6 {
		from = len(messages) - 6
		sb.WriteString("_…earlier messages omitted_\n\n")
	}
	for _, m := range messages[from:] {
		prefix := "👤"
		if m.Sender == domain.SenderAI {
			prefix = "🤖"
		}
		sb.WriteString(fmt.Sprintf("%s %s\n\n", prefix, m.Content))
	}
	sb.WriteString("Reply here to continue the conversation.")

	tg.SendLongMessage(ctx, b, chatID, sb.String(), nil)
}

func (h *Handler) handleArchive(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.CallbackQuery == nil || update.CallbackQuery.Message.Message == nil {
		return
	}

	client := middleware.GetClient(ctx)
	if client == nil {
		return
	}

	msg := update.CallbackQuery.Message.Message
	threadID := strings.TrimPrefix(update.CallbackQuery.Data, "archive_")

	if err := client.Threads.Archive(ctx, threadID); err != nil {
		slog.Error("archive thread", "error", err, "thread_id", threadID)
		n := notice.Translate(err, "Could not archive the chat.")
		b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
			CallbackQueryID: update.CallbackQuery.ID,
			Text:            fmt.Sprintf("%s: %s", n.Title, n.Message),
			ShowAlert:       true,
		})
		return
	}

	b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: update.CallbackQuery.ID,
		Text:            "Archived",
	})
	h.sendThreadsView(ctx, b, msg.Chat.ID, 0, true, msg.ID)
}
