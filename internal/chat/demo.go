package chat

import (
	"time"

	"github.com/homebird-app/homebird/internal/domain"
	"github.com/shopspring/decimal"
)

// seedDemo installs static sample threads so the bot is browsable without a
// real backend session. Demo mode is an explicit config flag, never a silent
// fallback on load failure.
func seedDemo(c *Client, userID string) {
	now := time.Now()
	scheduled := now.Add(48 * time.Hour)

	threads := []domain.ChatThread{
		{
			ID:           "demo-1",
			UserID:       userID,
			Title:        "Deep clean before move-out",
			Status:       domain.StatusConfirmed,
			CreatedAt:    now.Add(-72 * time.Hour),
			UpdatedAt:    now.Add(-2 * time.Hour),
			LastMessage:  "Your cleaner is booked for Thursday at 9:00.",
			MessageCount: 8,
			Metadata:     &domain.ThreadMetadata{ServiceType: "cleaning", Priority: "normal"},
		},
		{
			ID:           "demo-2",
			UserID:       userID,
			Title:        "Leaking kitchen tap",
			Status:       domain.StatusPendingConfirmation,
			CreatedAt:    now.Add(-24 * time.Hour),
			UpdatedAt:    now.Add(-30 * time.Minute),
			LastMessage:  "A plumber can come tomorrow between 14:00 and 16:00.",
			MessageCount: 5,
			Metadata:     &domain.ThreadMetadata{ServiceType: "plumbing", Priority: "high"},
		},
		{
			ID:           "demo-3",
			UserID:       userID,
			Title:        "Garden tidy-up",
			Status:       domain.StatusCompleted,
			CreatedAt:    now.Add(-240 * time.Hour),
			UpdatedAt:    now.Add(-168 * time.Hour),
			LastMessage:  "Thanks for using Homebird! How did it go?",
			MessageCount: 12,
			Metadata:     &domain.ThreadMetadata{ServiceType: "gardening"},
		},
	}

	for i := len(threads) - 1; i >= 0; i-- {
		c.Threads.Add(threads[i])
	}

	c.demoBookings = []domain.Booking{
		{
			ID:            "demo-booking-1",
			ChatID:        "demo-1",
			UserID:        userID,
			ServiceType:   "cleaning",
			ScheduledDate: &scheduled,
			Status:        domain.BookingConfirmed,
			Details: domain.BookingDetails{
				Description:     "3-bedroom apartment, move-out deep clean",
				Address:         "12 Alder Row",
				DurationMinutes: 240,
				Price:           decimal.NewFromFloat(145.00),
			},
		},
		{
			ID:          "demo-booking-2",
			ChatID:      "demo-3",
			UserID:      userID,
			ServiceType: "gardening",
			Status:      domain.BookingCompleted,
			Details: domain.BookingDetails{
				Description:     "Hedge trimming and lawn mowing",
				Address:         "12 Alder Row",
				DurationMinutes: 120,
				Price:           decimal.NewFromFloat(80.00),
			},
		},
	}
}
