package chat

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/homebird-app/homebird/internal/api"
	"github.com/homebird-app/homebird/internal/domain"
)

// Client bundles the per-user session and thread-list state.
type Client struct {
	Session *Session
	Threads *ThreadList

	demoBookings []domain.Booking
}

// DemoBookings returns the sample bookings seeded in demo mode.
func (c *Client) DemoBookings() []domain.Booking {
	return append([]domain.Booking(nil), c.demoBookings...)
}

// Prefs exposes the stored per-user preferences the registry consults when it
// creates a client.
type Prefs interface {
	AutoRefresh(userID string) bool
}

// Registry hands out one Client per Telegram user, created lazily on first
// update. A new client gets its thread cache warmed in the background, so the
// dashboard has data before the user opens the chat list. In demo mode new
// clients are seeded with static sample data instead.
type Registry struct {
	apiClient *api.Client
	demoMode  bool

	// Optional wiring, set before the first Get. When Prefs reports
	// auto-refresh on for a user and RefreshInterval is positive, the new
	// client's thread list starts its refresh loop immediately.
	Prefs           Prefs
	RefreshInterval time.Duration

	mu      sync.RWMutex
	clients map[string]*Client
}

func NewRegistry(apiClient *api.Client, demoMode bool) *Registry {
	return &Registry{
		apiClient: apiClient,
		demoMode:  demoMode,
		clients:   make(map[string]*Client),
	}
}

func (r *Registry) Get(ctx context.Context, userID string) *Client {
	r.mu.RLock()
	c, ok := r.clients[userID]
	r.mu.RUnlock()
	if ok {
		return c
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.clients[userID]; ok {
		return c
	}

	c = &Client{
		Session: NewSession(r.apiClient, userID),
		Threads: NewThreadList(r.apiClient, userID),
	}
	// A thread created in the session shows up in the list without a refetch.
	c.Session.OnChatCreated = c.Threads.Add

	if r.demoMode {
		seedDemo(c, userID)
	} else {
		// Detached from the update's lifetime: the warm load should not die
		// with the handler that happened to create the client.
		bg := context.WithoutCancel(ctx)
		go func() {
			if err := c.Threads.Load(bg, 1, false, true); err != nil {
				slog.Warn("initial thread load", "error", err, "user_id", userID)
			}
		}()

		if r.Prefs != nil && r.RefreshInterval > 0 && r.Prefs.AutoRefresh(userID) {
			c.Threads.StartAutoRefresh(bg, r.RefreshInterval)
		}
	}

	r.clients[userID] = c
	return c
}

// DemoMode reports whether clients are seeded with sample data.
func (r *Registry) DemoMode() bool {
	return r.demoMode
}

// Size returns the number of per-user clients created so far.
func (r *Registry) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}
