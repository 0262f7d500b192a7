package handler

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// handleStats answers a short runtime summary. Admin-only; anyone else gets
// silence, same as an unknown command.
func (h *Handler) handleStats(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil || update.Message.Chat.Type != "private" {
		return
	}
	if !h.cfg.IsAdmin(update.Message.From.ID) {
		return
	}

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: update.Message.Chat.ID,
		Text: fmt.Sprintf(
			"📊 *Runtime*\nActive users: %d\nDemo mode: %v\nBackend: %s",
			h.registry.Size(), h.registry.DemoMode(), h.cfg.BackendBaseURL,
		),
		ParseMode: models.ParseModeMarkdownV1,
	})
}
