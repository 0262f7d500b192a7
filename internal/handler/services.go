package handler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/homebird-app/homebird/internal/middleware"
)

func (h *Handler) handleServices(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.Chat.Type != "private" {
		return
	}
	h.sendServices(ctx, b, update.Message.Chat.ID)
}

// sendServices renders the provider directory's categories.
func (h *Handler) sendServices(ctx context.Context, b *bot.Bot, chatID int64) {
	if middleware.GetClient(ctx) == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString("🧰 *Services*\n\n")

	categories, err := h.catalog.Categories(ctx)
	if err != nil {
		slog.Warn("catalog unavailable, using built-in list", "error", err)
		for _, slug := range h.catalog.Slugs(ctx) {
			sb.WriteString(fmt.Sprintf("• %s\n", slug))
		}
	} else {
		for _, c := range categories {
			sb.WriteString(fmt.Sprintf("*%s*", c.Name))
			if c.StartingPrice != "" {
				sb.WriteString(fmt.Sprintf(" — from %s", c.StartingPrice))
			}
			sb.WriteString("\n")
			if c.Blurb != "" {
				sb.WriteString(fmt.Sprintf("_%s_\n", c.Blurb))
			}
			sb.WriteString("\n")
		}
	}
	sb.WriteString("Start a booking with /new <service> or just describe what you need.")

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      sb.String(),
		ParseMode: models.ParseModeMarkdownV1,
	})
}
