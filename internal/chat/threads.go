package chat

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/homebird-app/homebird/internal/api"
	"github.com/homebird-app/homebird/internal/config"
	"github.com/homebird-app/homebird/internal/domain"
)

// ThreadList manages a paginated, refreshable list of conversation
// summaries. Threads keep server order; derived queries copy before sorting.
type ThreadList struct {
	client *api.Client
	userID string

	mu          sync.Mutex
	threads     []domain.ChatThread
	loading     bool
	refreshing  bool
	lastUpdated time.Time
	totalCount  int
	page        int
	hasMore     bool
	lastErr     error

	stopRefresh chan struct{}
}

func NewThreadList(client *api.Client, userID string) *ThreadList {
	return &ThreadList{client: client, userID: userID, page: 1}
}

// Load fetches one page of summaries. With appendPage the result is
// concatenated onto the list (pagination); otherwise it replaces it. Existing
// items stay visible until the new page resolves. hasMore is a page-size
// heuristic: a full page means there is probably another one.
func (l *ThreadList) Load(ctx context.Context, page int, appendPage, showLoading bool) error {
	l.mu.Lock()
	if showLoading {
		l.loading = true
	} else {
		l.refreshing = true
	}
	l.mu.Unlock()

	return l.load(ctx, page, appendPage, showLoading)
}

// load runs the fetch. The caller has already claimed the matching flag under
// the lock; load clears only that flag, so an overlapping load and silent
// refresh cannot release each other's guard.
func (l *ThreadList) load(ctx context.Context, page int, appendPage, showLoading bool) error {
	result, err := l.client.ListChats(ctx, l.userID, page, config.ThreadsPerPage, "")

	l.mu.Lock()
	defer l.mu.Unlock()
	if showLoading {
		l.loading = false
	} else {
		l.refreshing = false
	}
	if err != nil {
		l.lastErr = err
		return err
	}

	if appendPage {
		l.threads = append(l.threads, result.Chats...)
	} else {
		l.threads = append([]domain.ChatThread(nil), result.Chats...)
	}
	l.totalCount = result.TotalCount
	l.page = page
	l.hasMore = len(result.Chats) == config.ThreadsPerPage
	l.lastUpdated = time.Now()
	l.lastErr = nil
	return nil
}

// LoadMore fetches the next page. It is a no-op while a load or refresh is
// running, or when the last page was short. The loading flag is claimed under
// the same lock as the guard check, so concurrent calls fetch the page once.
func (l *ThreadList) LoadMore(ctx context.Context) error {
	l.mu.Lock()
	if l.loading || l.refreshing || !l.hasMore {
		l.mu.Unlock()
		return nil
	}
	l.loading = true
	next := l.page + 1
	l.mu.Unlock()

	return l.load(ctx, next, true, true)
}

// Refresh silently reloads page 1: no blocking loading flag, and the current
// items stay in place until the fresh page arrives.
func (l *ThreadList) Refresh(ctx context.Context) error {
	return l.Load(ctx, 1, false, false)
}

// SetStatus mutates the cached copy only, reflecting a change made elsewhere.
func (l *ThreadList) SetStatus(threadID string, status domain.ChatStatus) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.threads {
		if l.threads[i].ID == threadID {
			l.threads[i].Status = status
			l.threads[i].UpdatedAt = time.Now()
			return
		}
	}
}

// Add puts a thread at the front of the cache (newest first in server order).
func (l *ThreadList) Add(thread domain.ChatThread) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.threads = append([]domain.ChatThread{thread}, l.threads...)
	l.totalCount++
}

func (l *ThreadList) Remove(threadID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.threads {
		if l.threads[i].ID == threadID {
			l.threads = append(l.threads[:i], l.threads[i+1:]...)
			l.totalCount--
			return
		}
	}
}

// Archive asks the backend to archive the thread and mirrors the result
// locally. Threads not in the cache or already in a terminal status are
// rejected before any network call. On failure the cache is left untouched.
func (l *ThreadList) Archive(ctx context.Context, threadID string) error {
	l.mu.Lock()
	var current *domain.ChatThread
	for i := range l.threads {
		if l.threads[i].ID == threadID {
			current = &l.threads[i]
			break
		}
	}
	if current == nil {
		l.mu.Unlock()
		return domain.ErrThreadNotFound
	}
	if !current.Status.CanArchive() {
		l.mu.Unlock()
		return domain.ErrNotArchivable
	}
	l.mu.Unlock()

	updated, err := l.client.UpdateChatStatus(ctx, l.userID, threadID, domain.StatusArchived, nil)
	if err != nil {
		l.mu.Lock()
		l.lastErr = err
		l.mu.Unlock()
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.threads {
		if l.threads[i].ID == threadID {
			l.threads[i] = *updated
			break
		}
	}
	l.lastErr = nil
	return nil
}

// ByStatus returns the cached threads whose status equals status.
func (l *ThreadList) ByStatus(status domain.ChatStatus) []domain.ChatThread {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []domain.ChatThread
	for _, t := range l.threads {
		if t.Status == status {
			out = append(out, t)
		}
	}
	return out
}

// Active returns every cached thread that is not archived.
func (l *ThreadList) Active() []domain.ChatThread {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []domain.ChatThread
	for _, t := range l.threads {
		if t.Status != domain.StatusArchived {
			out = append(out, t)
		}
	}
	return out
}

// Recent returns up to n threads sorted by UpdatedAt descending, without
// disturbing the cached order.
func (l *ThreadList) Recent(n int) []domain.ChatThread {
	l.mu.Lock()
	out := append([]domain.ChatThread(nil), l.threads...)
	l.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func (l *ThreadList) Threads() []domain.ChatThread {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]domain.ChatThread(nil), l.threads...)
}

func (l *ThreadList) TotalCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.totalCount
}

func (l *ThreadList) HasMore() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.hasMore
}

func (l *ThreadList) Page() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.page
}

func (l *ThreadList) LastUpdated() time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastUpdated
}

func (l *ThreadList) LastError() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastErr
}

// StartAutoRefresh runs Refresh on a fixed interval until StopAutoRefresh is
// called. Starting twice replaces the previous loop.
func (l *ThreadList) StartAutoRefresh(ctx context.Context, interval time.Duration) {
	l.StopAutoRefresh()

	l.mu.Lock()
	stop := make(chan struct{})
	l.stopRefresh = stop
	l.mu.Unlock()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				l.Refresh(ctx)
			}
		}
	}()
}

func (l *ThreadList) StopAutoRefresh() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.stopRefresh != nil {
		close(l.stopRefresh)
		l.stopRefresh = nil
	}
}
