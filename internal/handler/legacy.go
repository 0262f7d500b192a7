package handler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/homebird-app/homebird/internal/middleware"
	"github.com/homebird-app/homebird/internal/notice"
	tg "github.com/homebird-app/homebird/internal/telegram"
)

// handleAsk is the pre-threads compatibility path:
// /ask <tracking-code> <question>
// It bypasses session state entirely and returns a one-off answer.
func (h *Handler) handleAsk(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.Chat.Type != "private" {
		return
	}

	chatID := update.Message.Chat.ID
	parts := strings.SplitN(update.Message.Text, " ", 3)
	if len(parts) < 3 {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "Usage: /ask <tracking-code> <question>",
		})
		return
	}

	client := middleware.GetClient(ctx)
	if client == nil {
		return
	}

	tg.SendTyping(ctx, b, chatID)
	answer, err := client.Session.AskLegacy(ctx, parts[1], parts[2])
	if err != nil {
		slog.Error("legacy ask", "error", err, "tracking_code", parts[1])
		n := notice.Translate(err, "The assistant could not answer.")
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   fmt.Sprintf("❌ %s %s", n.Title, n.Message),
		})
		return
	}

	tg.SendLongMessage(ctx, b, chatID, answer, &update.Message.ID)
}
