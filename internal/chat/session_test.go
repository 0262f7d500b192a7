package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/homebird-app/homebird/internal/api"
	"github.com/homebird-app/homebird/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nullTokens struct{}

func (nullTokens) Token(string) string { return "" }

func newSessionBackend(t *testing.T, handler http.HandlerFunc) *Session {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := api.New(srv.URL, nullTokens{}, api.WithRetryPolicy(1, time.Millisecond))
	return NewSession(client, "u1")
}

func envelope(w http.ResponseWriter, data any) {
	raw, _ := json.Marshal(data)
	json.NewEncoder(w).Encode(map[string]any{"success": true, "data": json.RawMessage(raw)})
}

func TestFirstSendProvisionsChatWithoutSendCall(t *testing.T) {
	var createCalls, sendCalls atomic.Int32
	session := newSessionBackend(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/chats/new":
			createCalls.Add(1)
			envelope(w, map[string]any{
				"chat": map[string]any{"id": "c1", "status": "active", "title": "Cleaning"},
				"message": map[string]any{
					"id": "m1", "chatId": "c1", "content": "Sure, when?", "sender": "ai",
				},
			})
		default:
			sendCalls.Add(1)
			w.WriteHeader(http.StatusTeapot)
		}
	})

	result, err := session.SendMessage(context.Background(), "Book a cleaning", domain.MessageText)
	require.NoError(t, err)

	assert.Equal(t, int32(1), createCalls.Load(), "exactly one chat creation")
	assert.Equal(t, int32(0), sendCalls.Load(), "no send call for the provisioning message")

	messages := session.Messages()
	require.Len(t, messages, 2)
	assert.Equal(t, "Book a cleaning", messages[0].Content)
	assert.Equal(t, domain.SenderUser, messages[0].Sender)
	assert.Equal(t, "Sure, when?", messages[1].Content)
	assert.Equal(t, domain.SenderAI, messages[1].Sender)

	thread := session.CurrentThread()
	require.NotNil(t, thread)
	assert.Equal(t, "c1", thread.ID)
	require.NotNil(t, result.Reply)
	assert.Equal(t, "Sure, when?", result.Reply.Content)
}

func TestOptimisticMessageLifecycle(t *testing.T) {
	release := make(chan struct{})
	session := newSessionBackend(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/chats/new" {
			envelope(w, map[string]any{"chat": map[string]any{"id": "c1", "status": "active"}})
			return
		}
		<-release
		envelope(w, map[string]any{
			"message":    map[string]any{"id": "m2", "chatId": "c1", "content": "On it.", "sender": "ai"},
			"chatStatus": "pending_confirmation",
		})
	})

	_, err := session.CreateNewChat(context.Background(), "", "")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := session.SendMessage(context.Background(), "Fix my tap", domain.MessageText)
		done <- err
	}()

	// While the call is in flight the optimistic entry is visible.
	require.Eventually(t, func() bool {
		for _, m := range session.Messages() {
			if m.Pending && m.Content == "Fix my tap" {
				return true
			}
		}
		return false
	}, time.Second, 5*time.Millisecond)

	close(release)
	require.NoError(t, <-done)

	// After settling, no pending entry remains; the finalized user message
	// and the AI reply do.
	messages := session.Messages()
	require.Len(t, messages, 2)
	for _, m := range messages {
		assert.False(t, m.Pending)
	}
	assert.Equal(t, "Fix my tap", messages[0].Content)
	assert.Equal(t, "On it.", messages[1].Content)

	thread := session.CurrentThread()
	require.NotNil(t, thread)
	assert.Equal(t, domain.StatusPendingConfirmation, thread.Status)
}

func TestFailedSendRollsBackOptimisticEntry(t *testing.T) {
	session := newSessionBackend(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/chats/new" {
			envelope(w, map[string]any{"chat": map[string]any{"id": "c1", "status": "active"}})
			return
		}
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]any{"success": false, "error": "chat not found"})
	})

	_, err := session.CreateNewChat(context.Background(), "", "")
	require.NoError(t, err)

	_, err = session.SendMessage(context.Background(), "hello?", domain.MessageText)
	require.Error(t, err)

	assert.Empty(t, session.Messages(), "a failed send leaves no partial state")
	assert.Error(t, session.LastError())
	assert.Equal(t, StateError, session.State())
}

func TestConcurrentSendFailsFast(t *testing.T) {
	release := make(chan struct{})
	session := newSessionBackend(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/chats/new" {
			envelope(w, map[string]any{"chat": map[string]any{"id": "c1", "status": "active"}})
			return
		}
		<-release
		envelope(w, map[string]any{
			"message":    map[string]any{"id": "m2", "chatId": "c1", "content": "ok", "sender": "ai"},
			"chatStatus": "active",
		})
	})

	_, err := session.CreateNewChat(context.Background(), "", "")
	require.NoError(t, err)
	assert.True(t, session.CanSend())

	done := make(chan error, 1)
	go func() {
		_, err := session.SendMessage(context.Background(), "first", domain.MessageText)
		done <- err
	}()

	require.Eventually(t, func() bool { return !session.CanSend() }, time.Second, 5*time.Millisecond)

	_, err = session.SendMessage(context.Background(), "second", domain.MessageText)
	assert.ErrorIs(t, err, domain.ErrSendInFlight)

	close(release)
	require.NoError(t, <-done)
	assert.True(t, session.CanSend())
}

func TestClearDropsInFlightCompletion(t *testing.T) {
	release := make(chan struct{})
	session := newSessionBackend(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/chats/new" {
			envelope(w, map[string]any{"chat": map[string]any{"id": "c1", "status": "active"}})
			return
		}
		<-release
		envelope(w, map[string]any{
			"message":    map[string]any{"id": "m2", "chatId": "c1", "content": "late", "sender": "ai"},
			"chatStatus": "active",
		})
	})

	_, err := session.CreateNewChat(context.Background(), "", "")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := session.SendMessage(context.Background(), "about to be orphaned", domain.MessageText)
		done <- err
	}()

	require.Eventually(t, func() bool { return len(session.Messages()) == 1 }, time.Second, 5*time.Millisecond)

	session.Clear()
	close(release)

	assert.ErrorIs(t, <-done, domain.ErrStaleState)
	assert.Empty(t, session.Messages(), "a late completion must not repopulate cleared state")
	assert.Nil(t, session.CurrentThread())
	assert.Equal(t, StateDisconnected, session.State())
}

func TestUpdateStatusWithoutThread(t *testing.T) {
	session := newSessionBackend(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no backend call expected")
	})

	_, err := session.UpdateStatus(context.Background(), domain.StatusArchived, nil)
	assert.ErrorIs(t, err, domain.ErrNoActiveChat)
}

func TestResumeChatReplacesState(t *testing.T) {
	session := newSessionBackend(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/chats/c7/resume", r.URL.Path)
		envelope(w, map[string]any{
			"chat": map[string]any{"id": "c7", "status": "confirmed", "title": "Tap repair"},
			"messages": []map[string]any{
				{"id": "m1", "chatId": "c7", "content": "My tap leaks", "sender": "user"},
				{"id": "m2", "chatId": "c7", "content": "Booked for Tuesday.", "sender": "ai"},
			},
		})
	})

	thread, err := session.ResumeChat(context.Background(), "c7")
	require.NoError(t, err)
	assert.Equal(t, "c7", thread.ID)
	assert.True(t, session.HasActiveChat())
	assert.Len(t, session.Messages(), 2)
	assert.Equal(t, StateConnected, session.State())
}

func TestOnChatCreatedCallback(t *testing.T) {
	session := newSessionBackend(t, func(w http.ResponseWriter, r *http.Request) {
		envelope(w, map[string]any{"chat": map[string]any{"id": "c3", "status": "draft"}})
	})

	var created []string
	session.OnChatCreated = func(thread domain.ChatThread) {
		created = append(created, thread.ID)
	}

	_, err := session.CreateNewChat(context.Background(), "", "cleaning")
	require.NoError(t, err)
	assert.Equal(t, []string{"c3"}, created)
}
