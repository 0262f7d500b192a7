package config

import "time"

const (
	// Backend request retry policy
	MaxRequestAttempts = 3
	RetryBaseDelay     = 1 * time.Second

	// Backend request timeout
	RequestTimeout = 30 * time.Second

	// Thread list pagination
	ThreadsPerPage = 20

	// Threads shown per Telegram page (inline keyboard rows)
	ThreadsPerView = 5

	// Recent threads shown on the dashboard
	RecentThreads = 3

	// Catalog cache duration
	CatalogCacheDuration = 1 * time.Hour

	// Catalog fetch timeout
	CatalogTimeout = 15 * time.Second
)

// DefaultServiceTypes backs the service picker when the catalog is unreachable.
var DefaultServiceTypes = []string{
	"cleaning",
	"plumbing",
	"electrical",
	"gardening",
	"handyman",
	"moving",
}
