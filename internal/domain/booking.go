package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Rating bounds for completed bookings.
const (
	MinRating = 1
	MaxRating = 5
)

// ValidateRating rejects star counts outside the accepted range.
func ValidateRating(stars int) error {
	if stars < MinRating || stars > MaxRating {
		return ErrInvalidRating
	}
	return nil
}

type BookingStatus string

const (
	BookingDraft      BookingStatus = "draft"
	BookingConfirmed  BookingStatus = "confirmed"
	BookingInProgress BookingStatus = "in_progress"
	BookingCompleted  BookingStatus = "completed"
	BookingCancelled  BookingStatus = "cancelled"
)

type BookingDetails struct {
	Description     string          `json:"description,omitempty"`
	Address         string          `json:"address,omitempty"`
	Requirements    []string        `json:"requirements,omitempty"`
	DurationMinutes int             `json:"durationEstimate,omitempty"`
	Price           decimal.Decimal `json:"price"`
}

// Booking is backend-owned; the client only reads and displays it.
type Booking struct {
	ID            string         `json:"id"`
	ChatID        string         `json:"chatId"`
	UserID        string         `json:"userId"`
	ServiceType   string         `json:"serviceType"`
	ScheduledDate *time.Time     `json:"scheduledDate,omitempty"`
	Status        BookingStatus  `json:"status"`
	Details       BookingDetails `json:"details"`
}
