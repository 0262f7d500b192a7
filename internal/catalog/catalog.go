// Package catalog loads the public provider-directory page and extracts the
// service categories shown in the services view and the service-type picker.
package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/homebird-app/homebird/internal/config"
)

type ServiceCategory struct {
	Slug          string
	Name          string
	Blurb         string
	StartingPrice string
}

type Service struct {
	httpClient *http.Client
	pageURL    string
	cache      *Cache
}

func NewService(pageURL string) *Service {
	return &Service{
		httpClient: &http.Client{Timeout: config.CatalogTimeout},
		pageURL:    pageURL,
		cache:      NewCache(config.CatalogCacheDuration),
	}
}

// Categories returns the directory's service categories, cached for an hour.
func (s *Service) Categories(ctx context.Context) ([]ServiceCategory, error) {
	if cached := s.cache.Get(); cached != nil {
		return cached, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch catalog: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch catalog: status %d", resp.StatusCode)
	}

	categories, err := Parse(resp.Body)
	if err != nil {
		return nil, err
	}

	s.cache.Set(categories)
	return categories, nil
}

// Parse extracts service categories from the directory page markup. Each
// category is a .service-card with name, blurb, and an optional price tag.
func Parse(r io.Reader) ([]ServiceCategory, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse catalog page: %w", err)
	}

	var categories []ServiceCategory
	doc.Find(".service-card").Each(func(_ int, sel *goquery.Selection) {
		name := strings.TrimSpace(sel.Find(".service-name").First().Text())
		if name == "" {
			return
		}

		slug, _ := sel.Attr("data-service")
		if slug == "" {
			slug = strings.ToLower(strings.ReplaceAll(name, " ", "-"))
		}

		categories = append(categories, ServiceCategory{
			Slug:          slug,
			Name:          name,
			Blurb:         strings.TrimSpace(sel.Find(".service-blurb").First().Text()),
			StartingPrice: strings.TrimSpace(sel.Find(".service-price").First().Text()),
		})
	})

	if len(categories) == 0 {
		return nil, fmt.Errorf("no service categories found on page")
	}
	return categories, nil
}

// Slugs returns category slugs, falling back to the built-in list when the
// page is unreachable.
func (s *Service) Slugs(ctx context.Context) []string {
	categories, err := s.Categories(ctx)
	if err != nil {
		return config.DefaultServiceTypes
	}
	slugs := make([]string, len(categories))
	for i, c := range categories {
		slugs[i] = c.Slug
	}
	return slugs
}
