package domain

import "time"

type ChatStatus string

const (
	StatusDraft               ChatStatus = "draft"
	StatusActive              ChatStatus = "active"
	StatusPendingConfirmation ChatStatus = "pending_confirmation"
	StatusConfirmed           ChatStatus = "confirmed"
	StatusCompleted           ChatStatus = "completed"
	StatusArchived            ChatStatus = "archived"
)

// Valid reports whether s is one of the known statuses.
func (s ChatStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusActive, StatusPendingConfirmation,
		StatusConfirmed, StatusCompleted, StatusArchived:
		return true
	}
	return false
}

// Terminal statuses cannot transition anywhere, including to archived.
func (s ChatStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusArchived
}

// CanArchive reports whether a thread in status s may take the archived side exit.
func (s ChatStatus) CanArchive() bool {
	return s.Valid() && !s.Terminal()
}

type ThreadMetadata struct {
	ServiceType string   `json:"serviceType,omitempty"`
	Priority    string   `json:"priority,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// ChatThread is a conversation summary. The backend owns it; copies held by
// the client are caches that reconcile on the next fetch.
type ChatThread struct {
	ID           string          `json:"id"`
	UserID       string          `json:"userId"`
	Title        string          `json:"title"`
	Status       ChatStatus      `json:"status"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
	LastMessage  string          `json:"lastMessage,omitempty"`
	MessageCount int             `json:"messageCount"`
	Metadata     *ThreadMetadata `json:"metadata,omitempty"`
}

func (t *ChatThread) ServiceType() string {
	if t.Metadata == nil {
		return ""
	}
	return t.Metadata.ServiceType
}
