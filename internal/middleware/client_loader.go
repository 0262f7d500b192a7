package middleware

import (
	"context"
	"strconv"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/homebird-app/homebird/internal/chat"
)

type ctxKey string

const (
	ClientKey ctxKey = "client"
	UserIDKey ctxKey = "user_id"
)

// GetClient extracts the per-user chat client from context.
func GetClient(ctx context.Context) *chat.Client {
	c, ok := ctx.Value(ClientKey).(*chat.Client)
	if !ok {
		return nil
	}
	return c
}

// GetUserID extracts the backend user identifier from context.
func GetUserID(ctx context.Context) string {
	id, ok := ctx.Value(UserIDKey).(string)
	if !ok {
		return ""
	}
	return id
}

// ClientLoader resolves the sender of each update to a per-user chat client
// and puts it into context. The backend user ID is the Telegram ID; the
// bearer token (when logged in) reaches the API client via its TokenSource.
func ClientLoader(registry *chat.Registry) bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			var from *models.User
			if update.Message != nil {
				from = update.Message.From
			} else if update.CallbackQuery != nil {
				from = &update.CallbackQuery.From
			}

			if from == nil {
				next(ctx, b, update)
				return
			}

			userID := strconv.FormatInt(from.ID, 10)
			ctx = context.WithValue(ctx, UserIDKey, userID)
			ctx = context.WithValue(ctx, ClientKey, registry.Get(ctx, userID))
			next(ctx, b, update)
		}
	}
}
