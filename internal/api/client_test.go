package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/homebird-app/homebird/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticTokens string

func (s staticTokens) Token(string) string { return string(s) }

func newTestClient(t *testing.T, handler http.HandlerFunc, token string) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := New(srv.URL, staticTokens(token), WithRetryPolicy(3, time.Millisecond))
	return client, srv
}

func okEnvelope(t *testing.T, w http.ResponseWriter, data any) {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	json.NewEncoder(w).Encode(map[string]any{"success": true, "data": json.RawMessage(raw)})
}

func TestSendMessageSuccess(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/chats/c1/message", r.URL.Path)
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Book a cleaning", body["content"])
		assert.Equal(t, "text", body["messageType"])

		okEnvelope(t, w, map[string]any{
			"message": map[string]any{
				"id": "m2", "chatId": "c1", "content": "Sure, when?", "sender": "ai",
			},
			"chatStatus": "active",
			"suggestedActions": []map[string]string{
				{"label": "Tomorrow", "action": "book tomorrow"},
			},
		})
	}, "tok-1")

	result, err := client.SendMessage(context.Background(), "u1", "c1", "Book a cleaning", domain.MessageText)
	require.NoError(t, err)
	assert.Equal(t, "Sure, when?", result.Message.Content)
	assert.Equal(t, domain.SenderAI, result.Message.Sender)
	assert.Equal(t, domain.StatusActive, result.ChatStatus)
	require.Len(t, result.SuggestedActions, 1)
	assert.Equal(t, "Tomorrow", result.SuggestedActions[0].Label)
}

func TestAnonymousRequestHasNoAuthHeader(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		okEnvelope(t, w, map[string]any{"chats": []any{}, "totalCount": 0, "page": 1, "limit": 20})
	}, "")

	_, err := client.ListChats(context.Background(), "u1", 1, 20, "")
	require.NoError(t, err)
}

func TestRetryBoundOnServerError(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}, "")

	_, err := client.ResumeChat(context.Background(), "u1", "c1")
	require.Error(t, err)
	assert.Equal(t, int32(3), calls.Load(), "a persistent 503 is attempted exactly maxAttempts times")

	apiErr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, KindServerError, apiErr.Kind)
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)
	assert.True(t, apiErr.Retryable())
}

func TestNotFoundIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]any{"success": false, "error": "chat not found"})
	}, "")

	_, err := client.ResumeChat(context.Background(), "u1", "missing")
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load(), "4xx other than 429 must not be retried")

	apiErr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, KindNotFound, apiErr.Kind)
	assert.Equal(t, "chat not found", apiErr.Message)
}

func TestRateLimitIsRetriedThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		okEnvelope(t, w, map[string]any{"chat": map[string]any{"id": "c9", "status": "draft"}})
	}, "")

	result, err := client.CreateChat(context.Background(), "u1", "", "")
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, "c9", result.Chat.ID)
}

func TestEnvelopeFailureBeatsHTTPStatus(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		// HTTP 200, but the backend reports failure in the envelope.
		json.NewEncoder(w).Encode(map[string]any{"success": false, "error": "service area not covered"})
	}, "")

	_, err := client.CreateChat(context.Background(), "u1", "hello", "cleaning")
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())

	apiErr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, KindRequestFailed, apiErr.Kind)
	assert.Equal(t, "service area not covered", apiErr.Message)
	assert.False(t, apiErr.Retryable())
}

func TestNetworkErrorIsRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing listening anymore

	client := New(srv.URL, staticTokens(""), WithRetryPolicy(2, time.Millisecond))
	_, err := client.ResumeChat(context.Background(), "u1", "c1")
	require.Error(t, err)

	apiErr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, KindNetworkError, apiErr.Kind)
	assert.Zero(t, apiErr.StatusCode)
	assert.True(t, IsRetryable(err))
}

func TestAskLegacyPlainResponse(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ask-llm", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "TC-42", body["tracking_code"])

		json.NewEncoder(w).Encode(map[string]string{"response": "Your cleaner arrives at 9:00."})
	}, "")

	answer, err := client.AskLegacy(context.Background(), "u1", "TC-42", "When is my booking?")
	require.NoError(t, err)
	assert.Equal(t, "Your cleaner arrives at 9:00.", answer)
}

func TestUpdateChatStatusReturnsAuthoritativeChat(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chats/c1/status", r.URL.Path)
		okEnvelope(t, w, map[string]any{"id": "c1", "status": "archived", "title": "Deep clean"})
	}, "")

	chat, err := client.UpdateChatStatus(context.Background(), "u1", "c1", domain.StatusArchived, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusArchived, chat.Status)
	assert.Equal(t, "Deep clean", chat.Title)
}

func TestListChatsQueryParameters(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chats/u1", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "20", r.URL.Query().Get("limit"))
		assert.Equal(t, "active", r.URL.Query().Get("status"))
		okEnvelope(t, w, map[string]any{"chats": []any{}, "totalCount": 0, "page": 2, "limit": 20})
	}, "")

	_, err := client.ListChats(context.Background(), "u1", 2, 20, domain.StatusActive)
	require.NoError(t, err)
}
