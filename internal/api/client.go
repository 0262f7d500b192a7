package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/homebird-app/homebird/internal/config"
	"github.com/homebird-app/homebird/internal/domain"
)

// TokenSource yields the bearer token for a request, or "" for anonymous
// mode. Anonymous requests are permitted; the backend decides what they may do.
type TokenSource interface {
	Token(userID string) string
}

// Client talks to the booking backend. It is constructed explicitly and
// carries its own configuration; there is no process-wide instance.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	tokens      TokenSource
	maxAttempts int
	baseDelay   time.Duration
}

type Option func(*Client)

// WithHTTPClient replaces the underlying transport (used by tests).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRetryPolicy overrides the attempt ceiling and base delay.
func WithRetryPolicy(attempts int, baseDelay time.Duration) Option {
	return func(c *Client) {
		c.maxAttempts = attempts
		c.baseDelay = baseDelay
	}
}

func New(baseURL string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL:     baseURL,
		httpClient:  &http.Client{Timeout: config.RequestTimeout},
		tokens:      tokens,
		maxAttempts: config.MaxRequestAttempts,
		baseDelay:   config.RetryBaseDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// envelope wraps every non-legacy backend response. A response with
// success=false is a failure regardless of HTTP status.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message,omitempty"`
	Error   string          `json:"error,omitempty"`
}

type CreateChatResult struct {
	Chat    domain.ChatThread `json:"chat"`
	Message *domain.Message   `json:"message,omitempty"`
}

type SendMessageResult struct {
	Message          domain.Message           `json:"message"`
	ChatStatus       domain.ChatStatus        `json:"chatStatus"`
	SuggestedActions []domain.SuggestedAction `json:"suggestedActions,omitempty"`
}

type ListChatsResult struct {
	Chats      []domain.ChatThread `json:"chats"`
	TotalCount int                 `json:"totalCount"`
	Page       int                 `json:"page"`
	Limit      int                 `json:"limit"`
}

type ResumeChatResult struct {
	Chat     domain.ChatThread `json:"chat"`
	Messages []domain.Message  `json:"messages"`
}

// CreateChat provisions a new conversation, optionally seeding it with an
// initial message.
func (c *Client) CreateChat(ctx context.Context, userID, initialMessage, serviceType string) (*CreateChatResult, error) {
	body := map[string]any{
		"userId":   userID,
		"metadata": map[string]any{},
	}
	if initialMessage != "" {
		body["initialMessage"] = initialMessage
	}
	if serviceType != "" {
		body["serviceType"] = serviceType
		body["metadata"] = map[string]any{"serviceType": serviceType}
	}

	var result CreateChatResult
	if err := c.doJSON(ctx, http.MethodPost, "/api/chats/new", userID, body, &result, "could not start a new chat"); err != nil {
		return nil, err
	}
	return &result, nil
}

// SendMessage appends a user message to a chat and returns the assistant's
// reply together with the chat's new status.
func (c *Client) SendMessage(ctx context.Context, userID, chatID, content string, messageType domain.MessageType) (*SendMessageResult, error) {
	if messageType == "" {
		messageType = domain.MessageText
	}
	body := map[string]any{
		"content":     content,
		"messageType": messageType,
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
	}

	var result SendMessageResult
	path := "/api/chats/" + url.PathEscape(chatID) + "/message"
	if err := c.doJSON(ctx, http.MethodPut, path, userID, body, &result, "could not send the message"); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListChats returns one page of a user's conversation summaries, optionally
// filtered by status.
func (c *Client) ListChats(ctx context.Context, userID string, page, limit int, status domain.ChatStatus) (*ListChatsResult, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))
	if status != "" {
		q.Set("status", string(status))
	}

	var result ListChatsResult
	path := "/api/chats/" + url.PathEscape(userID) + "?" + q.Encode()
	if err := c.doJSON(ctx, http.MethodGet, path, userID, nil, &result, "could not load chats"); err != nil {
		return nil, err
	}
	return &result, nil
}

// UpdateChatStatus sets a chat's status and returns the authoritative copy.
func (c *Client) UpdateChatStatus(ctx context.Context, userID, chatID string, status domain.ChatStatus, metadata *domain.ThreadMetadata) (*domain.ChatThread, error) {
	body := map[string]any{
		"status":    status,
		"updatedAt": time.Now().UTC().Format(time.RFC3339),
	}
	if metadata != nil {
		body["metadata"] = metadata
	}

	var chat domain.ChatThread
	path := "/api/chats/" + url.PathEscape(chatID) + "/status"
	if err := c.doJSON(ctx, http.MethodPut, path, userID, body, &chat, "could not update the chat"); err != nil {
		return nil, err
	}
	return &chat, nil
}

// ResumeChat loads a chat together with its full message history.
func (c *Client) ResumeChat(ctx context.Context, userID, chatID string) (*ResumeChatResult, error) {
	var result ResumeChatResult
	path := "/api/chats/" + url.PathEscape(chatID) + "/resume"
	if err := c.doJSON(ctx, http.MethodGet, path, userID, nil, &result, "could not resume the chat"); err != nil {
		return nil, err
	}
	return &result, nil
}

// AskLegacy is the pre-threads question path. Its response is a bare
// {response} object, not the standard envelope.
func (c *Client) AskLegacy(ctx context.Context, userID, trackingCode, question string) (string, error) {
	body := map[string]any{
		"tracking_code": trackingCode,
		"question":      question,
	}

	raw, err := c.doRaw(ctx, http.MethodPost, "/ask-llm", userID, body, "could not reach the assistant")
	if err != nil {
		return "", err
	}

	var result struct {
		Response string `json:"response"`
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return "", &Error{Kind: KindRequestFailed, Message: fmt.Sprintf("parse legacy response: %v", err)}
	}
	return result.Response, nil
}

// doJSON performs a request whose response uses the standard envelope and
// decodes envelope.data into out.
func (c *Client) doJSON(ctx context.Context, method, path, userID string, body any, out any, fallback string) error {
	raw, err := c.doRaw(ctx, method, path, userID, body, fallback)
	if err != nil {
		return err
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return &Error{Kind: KindRequestFailed, Message: fmt.Sprintf("parse response: %v", err)}
	}
	if !env.Success {
		msg := env.Error
		if msg == "" {
			msg = fallback
		}
		return &Error{Kind: KindRequestFailed, Message: msg}
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return &Error{Kind: KindRequestFailed, Message: fmt.Sprintf("parse response data: %v", err)}
		}
	}
	return nil
}

// doRaw performs the request with the retry policy and returns the response
// body of the first 2xx attempt. Retryable failures (no status, 5xx, 429) are
// retried with linearly increasing delay; anything else propagates at once.
func (c *Client) doRaw(ctx context.Context, method, path, userID string, body any, fallback string) ([]byte, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, &Error{Kind: KindRequestFailed, Message: fmt.Sprintf("marshal request: %v", err)}
		}
	}

	requestID := uuid.NewString()
	var lastErr *Error

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		raw, err := c.attempt(ctx, method, path, userID, payload, requestID, fallback)
		if err == nil {
			return raw, nil
		}

		lastErr = err
		slog.Debug("backend request failed",
			"method", method,
			"path", path,
			"request_id", requestID,
			"attempt", attempt,
			"status", err.StatusCode,
			"retryable", err.Retryable(),
		)

		if !err.Retryable() || attempt == c.maxAttempts {
			break
		}
		if sleepErr := sleepCtx(ctx, time.Duration(attempt)*c.baseDelay); sleepErr != nil {
			break
		}
	}
	return nil, lastErr
}

func (c *Client) attempt(ctx context.Context, method, path, userID string, payload []byte, requestID, fallback string) ([]byte, *Error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, &Error{Kind: KindRequestFailed, Message: fmt.Sprintf("create request: %v", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if token := c.tokens.Token(userID); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, networkError(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, networkError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError(resp.StatusCode, backendMessage(raw), fallback)
	}
	return raw, nil
}

// backendMessage pulls a human-readable message out of an error body.
func backendMessage(raw []byte) string {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return ""
	}
	if env.Error != "" {
		return env.Error
	}
	return env.Message
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
