// Package chat holds the client-side state for conversations with the
// booking assistant: the single active session and the paginated thread
// list. All entities are backend-owned; what lives here is a cache plus the
// optimistic-update bookkeeping around it.
package chat

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/homebird-app/homebird/internal/api"
	"github.com/homebird-app/homebird/internal/domain"
)

type ConnectionState string

const (
	StateConnecting   ConnectionState = "connecting"
	StateConnected    ConnectionState = "connected"
	StateDisconnected ConnectionState = "disconnected"
	StateError        ConnectionState = "error"
)

// SendResult is what a successful send hands back to the view.
type SendResult struct {
	Reply   *domain.Message
	Actions []domain.SuggestedAction
	Thread  domain.ChatThread
}

// Session manages exactly one active conversation. Handlers run on
// concurrent goroutines, so all state is mutex-guarded; the lock is released
// while a backend call is in flight and every completion re-checks the
// generation counter so a Clear that happened meanwhile wins.
type Session struct {
	client *api.Client
	userID string

	mu         sync.Mutex
	thread     *domain.ChatThread
	messages   []domain.Message
	connecting bool
	sending    bool
	lastErr    error
	gen        uint64

	// OnChatCreated is invoked after a chat is successfully provisioned,
	// outside the session lock. Set before first use.
	OnChatCreated func(domain.ChatThread)
}

func NewSession(client *api.Client, userID string) *Session {
	return &Session{client: client, userID: userID}
}

// CreateNewChat provisions a conversation and installs it as the current
// thread, seeding the message list with the backend's greeting if present.
func (s *Session) CreateNewChat(ctx context.Context, initialMessage, serviceType string) (*domain.ChatThread, error) {
	s.mu.Lock()
	s.connecting = true
	gen := s.gen
	s.mu.Unlock()

	result, err := s.client.CreateChat(ctx, s.userID, initialMessage, serviceType)

	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		return nil, domain.ErrStaleState
	}
	s.connecting = false
	if err != nil {
		s.lastErr = err
		s.mu.Unlock()
		return nil, err
	}

	thread := result.Chat
	s.thread = &thread
	s.messages = nil
	if result.Message != nil {
		s.messages = append(s.messages, *result.Message)
	}
	s.lastErr = nil
	s.mu.Unlock()

	if s.OnChatCreated != nil {
		s.OnChatCreated(thread)
	}
	return &thread, nil
}

// SendMessage sends content on the current thread, provisioning a chat first
// when none exists. The user's message is inserted optimistically and either
// finalized from the backend response or rolled back; on failure the caller
// still holds the unsent content and should restore it to the user.
func (s *Session) SendMessage(ctx context.Context, content string, messageType domain.MessageType) (*SendResult, error) {
	s.mu.Lock()
	if s.sending {
		s.mu.Unlock()
		return nil, domain.ErrSendInFlight
	}
	s.sending = true
	gen := s.gen
	provisioning := s.thread == nil
	var chatID string
	if !provisioning {
		chatID = s.thread.ID
	}

	optimistic := domain.Message{
		LocalID:   uuid.NewString(),
		ChatID:    chatID,
		Content:   content,
		Sender:    domain.SenderUser,
		Timestamp: time.Now(),
		Pending:   true,
	}
	s.messages = append(s.messages, optimistic)
	s.mu.Unlock()

	if provisioning {
		return s.sendViaCreate(ctx, gen, optimistic.LocalID, content)
	}
	return s.sendExisting(ctx, gen, optimistic.LocalID, chatID, content, messageType)
}

// sendViaCreate covers the first message of a session: one CreateChat call
// carries the message, and the backend's reply comes back with the chat.
func (s *Session) sendViaCreate(ctx context.Context, gen uint64, localID, content string) (*SendResult, error) {
	serviceType := ""
	result, err := s.client.CreateChat(ctx, s.userID, content, serviceType)

	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		return nil, domain.ErrStaleState
	}
	s.sending = false
	s.removeByLocalID(localID)
	if err != nil {
		s.lastErr = err
		s.mu.Unlock()
		return nil, err
	}

	thread := result.Chat
	s.thread = &thread
	s.messages = append(s.messages, domain.Message{
		ID:        uuid.NewString(),
		ChatID:    thread.ID,
		Content:   content,
		Sender:    domain.SenderUser,
		Timestamp: time.Now(),
	})
	var reply *domain.Message
	if result.Message != nil {
		s.messages = append(s.messages, *result.Message)
		reply = result.Message
	}
	s.lastErr = nil
	s.mu.Unlock()

	if s.OnChatCreated != nil {
		s.OnChatCreated(thread)
	}
	return &SendResult{Reply: reply, Thread: thread}, nil
}

func (s *Session) sendExisting(ctx context.Context, gen uint64, localID, chatID, content string, messageType domain.MessageType) (*SendResult, error) {
	result, err := s.client.SendMessage(ctx, s.userID, chatID, content, messageType)

	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		return nil, domain.ErrStaleState
	}
	s.sending = false
	s.removeByLocalID(localID)
	if err != nil {
		// Roll back completely; no partial state leaks.
		s.lastErr = err
		s.mu.Unlock()
		return nil, err
	}

	s.messages = append(s.messages, domain.Message{
		ID:        uuid.NewString(),
		ChatID:    chatID,
		Content:   content,
		Sender:    domain.SenderUser,
		Timestamp: time.Now(),
		Metadata:  &domain.MessageMetadata{Type: messageType},
	})
	s.messages = append(s.messages, result.Message)
	var thread domain.ChatThread
	if s.thread != nil {
		s.thread.Status = result.ChatStatus
		s.thread.UpdatedAt = time.Now()
		s.thread.LastMessage = result.Message.Content
		s.thread.MessageCount = len(s.messages)
		thread = *s.thread
	}
	s.lastErr = nil
	s.mu.Unlock()

	reply := result.Message
	return &SendResult{Reply: &reply, Actions: result.SuggestedActions, Thread: thread}, nil
}

// ResumeChat replaces the session state with a thread and its full history.
func (s *Session) ResumeChat(ctx context.Context, chatID string) (*domain.ChatThread, error) {
	s.mu.Lock()
	s.connecting = true
	gen := s.gen
	s.mu.Unlock()

	result, err := s.client.ResumeChat(ctx, s.userID, chatID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		return nil, domain.ErrStaleState
	}
	s.connecting = false
	if err != nil {
		s.lastErr = err
		return nil, err
	}

	thread := result.Chat
	s.thread = &thread
	s.messages = append([]domain.Message(nil), result.Messages...)
	s.lastErr = nil
	return &thread, nil
}

// UpdateStatus sets the current thread's status and replaces the cached
// thread with the backend's authoritative copy.
func (s *Session) UpdateStatus(ctx context.Context, status domain.ChatStatus, metadata *domain.ThreadMetadata) (*domain.ChatThread, error) {
	s.mu.Lock()
	if s.thread == nil {
		s.mu.Unlock()
		return nil, domain.ErrNoActiveChat
	}
	chatID := s.thread.ID
	gen := s.gen
	s.mu.Unlock()

	updated, err := s.client.UpdateChatStatus(ctx, s.userID, chatID, status, metadata)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		return nil, domain.ErrStaleState
	}
	if err != nil {
		s.lastErr = err
		return nil, err
	}
	s.thread = updated
	s.lastErr = nil
	return updated, nil
}

// AskLegacy bypasses thread state entirely (pre-threads compatibility path).
func (s *Session) AskLegacy(ctx context.Context, trackingCode, question string) (string, error) {
	return s.client.AskLegacy(ctx, s.userID, trackingCode, question)
}

// Clear resets the session to empty. In-flight completions from before the
// call are dropped by the generation bump.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.thread = nil
	s.messages = nil
	s.connecting = false
	s.sending = false
	s.lastErr = nil
}

func (s *Session) HasActiveChat() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.thread != nil
}

func (s *Session) CanSend() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.connecting && !s.sending
}

func (s *Session) CurrentThread() *domain.ChatThread {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.thread == nil {
		return nil
	}
	t := *s.thread
	return &t
}

// Messages returns a copy of the message list in insertion order.
func (s *Session) Messages() []domain.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Message(nil), s.messages...)
}

func (s *Session) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// State derives the connection indicator shown on the dashboard.
func (s *Session) State() ConnectionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.connecting || s.sending:
		return StateConnecting
	case s.lastErr != nil:
		return StateError
	case s.thread != nil:
		return StateConnected
	default:
		return StateDisconnected
	}
}

// removeByLocalID drops the optimistic entry with the given tag. Caller holds
// the lock.
func (s *Session) removeByLocalID(localID string) {
	for i, m := range s.messages {
		if m.Pending && m.LocalID == localID {
			s.messages = append(s.messages[:i], s.messages[i+1:]...)
			return
		}
	}
}
