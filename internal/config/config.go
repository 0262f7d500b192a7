package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	// Core
	BotToken       string `env:"BOT_TOKEN,required"`
	BackendBaseURL string `env:"BACKEND_BASE_URL" envDefault:"https://api.homebird.app"`

	// Client behavior
	DemoMode           bool   `env:"DEMO_MODE" envDefault:"false"`
	AutoRefreshSeconds int    `env:"AUTO_REFRESH_SECONDS" envDefault:"0"`
	StateFile          string `env:"STATE_FILE" envDefault:"homebird-state.json"`

	// Provider catalog (public directory page, scraped for the services view)
	CatalogURL string `env:"CATALOG_URL" envDefault:"https://homebird.app/services"`

	// Admin
	AdminIDs []int64 `env:"ADMIN_IDS" envSeparator:","`

	// Bot behavior
	DropPendingUpdates bool `env:"BOT_DROP_PENDING_UPDATES" envDefault:"false"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

func (c *Config) IsAdmin(telegramID int64) bool {
	for _, id := range c.AdminIDs {
		if id == telegramID {
			return true
		}
	}
	return false
}
