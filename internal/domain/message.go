package domain

import "time"

type Sender string

const (
	SenderUser Sender = "user"
	SenderAI   Sender = "ai"
)

type MessageType string

const (
	MessageText           MessageType = "text"
	MessageBookingRequest MessageType = "booking_request"
)

type MessageMetadata struct {
	Type    MessageType `json:"type,omitempty"`
	Booking *Booking    `json:"bookingDetails,omitempty"`
}

// Message is a single conversation entry. Persisted messages are immutable;
// a message the backend has not confirmed yet carries Pending plus a LocalID
// and is reconciled (or rolled back) by that tag.
type Message struct {
	ID        string           `json:"id"`
	ChatID    string           `json:"chatId"`
	Content   string           `json:"content"`
	Sender    Sender           `json:"sender"`
	Timestamp time.Time        `json:"timestamp"`
	Metadata  *MessageMetadata `json:"metadata,omitempty"`

	// Client-side only, never serialized to the backend.
	LocalID string `json:"-"`
	Pending bool   `json:"-"`
}

// SuggestedAction is a follow-up the assistant offers after a reply.
type SuggestedAction struct {
	Label  string `json:"label"`
	Action string `json:"action"`
}
