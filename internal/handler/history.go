package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/homebird-app/homebird/internal/domain"
	"github.com/homebird-app/homebird/internal/middleware"
	tg "github.com/homebird-app/homebird/internal/telegram"
)

func (h *Handler) handleHistory(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.Chat.Type != "private" {
		return
	}
	h.sendHistory(ctx, b, update.Message.Chat.ID)
}

// sendHistory shows finished and confirmed work: threads past the active
// stage, with their booking details where the assistant produced any.
func (h *Handler) sendHistory(ctx context.Context, b *bot.Bot, chatID int64) {
	client := middleware.GetClient(ctx)
	if client == nil {
		return
	}

	if len(client.Threads.Threads()) == 0 && !h.registry.DemoMode() {
		if err := client.Threads.Load(ctx, 1, false, true); err != nil {
			slog.Error("load threads for history", "error", err)
		}
	}

	done := append(client.Threads.ByStatus(domain.StatusConfirmed),
		client.Threads.ByStatus(domain.StatusCompleted)...)

	var sb strings.Builder
	sb.WriteString("📖 *Service history*\n\n")

	if len(done) == 0 {
		sb.WriteString("Nothing here yet. Book your first service with /new.")
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID:    chatID,
			Text:      sb.String(),
			ParseMode: models.ParseModeMarkdownV1,
		})
		return
	}

	for _, t := range done {
		sb.WriteString(fmt.Sprintf("%s *%s*\n", statusBadges[t.Status], t.Title))
		if st := t.ServiceType(); st != "" {
			sb.WriteString(fmt.Sprintf("  service: %s\n", st))
		}
		sb.WriteString(fmt.Sprintf("  updated: %s\n\n", t.UpdatedAt.Format("02.01.2006 15:04")))
	}

	var rows [][]models.InlineKeyboardButton
	userID := middleware.GetUserID(ctx)
	for _, booking := range client.DemoBookings() {
		sb.WriteString(formatBooking(&booking) + "\n\n")
		if booking.Status == domain.BookingCompleted {
			rows = append(rows, ratingRow(booking.ID, h.store.RatingDraft(userID, booking.ID)))
		}
	}

	params := &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      sb.String(),
		ParseMode: models.ParseModeMarkdownV1,
	}
	if len(rows) > 0 {
		params.ReplyMarkup = tg.InlineKeyboard(rows...)
	}
	b.SendMessage(ctx, params)
}

func formatBooking(booking *domain.Booking) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🧾 *Booking* — %s (%s)\n", booking.ServiceType, booking.Status))
	if booking.Details.Description != "" {
		sb.WriteString(fmt.Sprintf("  %s\n", booking.Details.Description))
	}
	if booking.Details.Address != "" {
		sb.WriteString(fmt.Sprintf("  📍 %s\n", booking.Details.Address))
	}
	if booking.ScheduledDate != nil {
		sb.WriteString(fmt.Sprintf("  🗓 %s\n", booking.ScheduledDate.Format("02.01.2006 15:04")))
	}
	if booking.Details.DurationMinutes > 0 {
		sb.WriteString(fmt.Sprintf("  ⏱ ~%d min\n", booking.Details.DurationMinutes))
	}
	if !booking.Details.Price.IsZero() {
		sb.WriteString(fmt.Sprintf("  💵 $%s", booking.Details.Price.StringFixed(2)))
	}
	return strings.TrimRight(sb.String(), "\n")
}

// bookingFromMessage pulls booking details out of assistant message metadata.
func bookingFromMessage(m *domain.Message) *domain.Booking {
	if m == nil || m.Metadata == nil {
		return nil
	}
	return m.Metadata.Booking
}

// ratingRow renders the 1..5 rating picker, marking the saved draft.
func ratingRow(bookingID string, draft int) []models.InlineKeyboardButton {
	var row []models.InlineKeyboardButton
	for i := domain.MinRating; i <= domain.MaxRating; i++ {
		label := "☆"
		if i <= draft {
			label = "⭐️"
		}
		row = append(row, tg.InlineButton(label, fmt.Sprintf("rate_%s_%d", bookingID, i)))
	}
	return row
}

// handleRate stores a rating draft locally. Ratings never leave the device;
// they are a demo-grade feature kept out of the backend contract.
func (h *Handler) handleRate(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.CallbackQuery == nil {
		return
	}

	data := strings.TrimPrefix(update.CallbackQuery.Data, "rate_")
	sep := strings.LastIndex(data, "_")
	if sep < 0 {
		return
	}
	bookingID := data[:sep]
	rating, err := strconv.Atoi(data[sep+1:])
	if err != nil {
		b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{CallbackQueryID: update.CallbackQuery.ID})
		return
	}

	userID := middleware.GetUserID(ctx)
	if err := h.store.SaveRatingDraft(userID, bookingID, rating); err != nil {
		if errors.Is(err, domain.ErrInvalidRating) {
			b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
				CallbackQueryID: update.CallbackQuery.ID,
				Text:            fmt.Sprintf("Ratings go from %d to %d.", domain.MinRating, domain.MaxRating),
			})
			return
		}
		slog.Error("save rating draft", "error", err, "booking_id", bookingID)
	}

	b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: update.CallbackQuery.ID,
		Text:            fmt.Sprintf("Saved: %d/5", rating),
	})
}
