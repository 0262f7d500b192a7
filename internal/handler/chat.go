package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/homebird-app/homebird/internal/chat"
	"github.com/homebird-app/homebird/internal/domain"
	"github.com/homebird-app/homebird/internal/middleware"
	"github.com/homebird-app/homebird/internal/notice"
	tg "github.com/homebird-app/homebird/internal/telegram"
)

// HandleTextPrivate is the default handler for private text messages: every
// non-command message goes to the booking assistant.
func (h *Handler) HandleTextPrivate(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.Chat.Type != "private" {
		return
	}

	msg := update.Message
	if strings.HasPrefix(msg.Text, "/") {
		return
	}

	client := middleware.GetClient(ctx)
	if client == nil {
		return
	}

	h.sendToAssistant(ctx, b, msg.Chat.ID, client, msg.Text, domain.MessageText, &msg.ID)
}

func (h *Handler) sendToAssistant(ctx context.Context, b *bot.Bot, chatID int64, client *chat.Client, content string, messageType domain.MessageType, replyToID *int) {
	tg.SendTyping(ctx, b, chatID)

	result, err := client.Session.SendMessage(ctx, content, messageType)
	if err != nil {
		if errors.Is(err, domain.ErrSendInFlight) {
			b.SendMessage(ctx, &bot.SendMessageParams{
				ChatID: chatID,
				Text:   "⏳ Please wait for the previous reply.",
			})
			return
		}
		slog.Error("send message", "error", err, "chat_id", chatID)
		h.sendFailedNotice(ctx, b, chatID, err, content)
		return
	}

	if result.Reply == nil {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "✅ Message delivered.",
		})
		return
	}

	text := result.Reply.Content
	if booking := bookingFromMessage(result.Reply); booking != nil {
		text += "\n\n" + formatBooking(booking)
	}

	if len(result.Actions) == 0 {
		tg.SendLongMessage(ctx, b, chatID, text, replyToID)
		return
	}

	var row []models.InlineKeyboardButton
	for _, action := range result.Actions {
		row = append(row, tg.InlineButton(action.Label, "suggest_"+action.Action))
	}
	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        text,
		ReplyMarkup: tg.InlineKeyboard(row),
	})
}

// sendFailedNotice surfaces the translated error and quotes the unsent text
// so the user's input is not lost.
func (h *Handler) sendFailedNotice(ctx context.Context, b *bot.Bot, chatID int64, err error, unsent string) {
	n := notice.Translate(err, "The message could not be sent.")
	text := fmt.Sprintf("❌ *%s*\n%s", n.Title, n.Message)
	if unsent != "" {
		text += fmt.Sprintf("\n\nYour message was not sent:\n`%s`", tg.Truncate(unsent, 500))
	}
	tg.SendLongMessage(ctx, b, chatID, text, nil)
}

func (h *Handler) handleSuggestedAction(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.CallbackQuery == nil {
		return
	}
	b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{CallbackQueryID: update.CallbackQuery.ID})

	client := middleware.GetClient(ctx)
	if client == nil || update.CallbackQuery.Message.Message == nil {
		return
	}

	action := strings.TrimPrefix(update.CallbackQuery.Data, "suggest_")
	chatID := update.CallbackQuery.Message.Message.Chat.ID
	h.sendToAssistant(ctx, b, chatID, client, action, domain.MessageBookingRequest, nil)
}

// handleNewChat starts a fresh conversation, optionally with a service type:
// /new [service-type]
func (h *Handler) handleNewChat(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	client := middleware.GetClient(ctx)
	if client == nil {
		return
	}

	chatID := update.Message.Chat.ID
	serviceType := ""
	if parts := strings.SplitN(update.Message.Text, " ", 2); len(parts) > 1 {
		serviceType = strings.TrimSpace(parts[1])
	}
	if serviceType == "" {
		serviceType = h.store.Profile(middleware.GetUserID(ctx)).DefaultServiceType
	}

	client.Session.Clear()
	thread, err := client.Session.CreateNewChat(ctx, "", serviceType)
	if err != nil {
		slog.Error("create chat", "error", err, "chat_id", chatID)
		n := notice.Translate(err, "Could not start a new chat.")
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   fmt.Sprintf("❌ %s %s", n.Title, n.Message),
		})
		return
	}

	greeting := "🧹 New chat started. What do you need help with?"
	for _, m := range client.Session.Messages() {
		if m.Sender == domain.SenderAI {
			greeting = m.Content
			break
		}
	}
	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   greeting,
	})
	slog.Info("chat created", "thread_id", thread.ID, "service_type", serviceType)
}
