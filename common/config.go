package common

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Base hosts. The payments host serves order completion; everything else
// goes to the main API host.
const (
	DefaultHubBaseURL      = "https://api.parcelroblox.com"
	DefaultPaymentsBaseURL = "https://papi.parcelroblox.com"
)

// Config carries everything needed to construct a client. Populated from the
// environment; a .env file is honored when present.
type Config struct {
	HubBaseURL      string        `env:"HUB_API_BASE_URL"`
	PaymentsBaseURL string        `env:"HUB_PAYMENTS_BASE_URL"`
	SecretKey       string        `env:"HUB_SECRET_KEY"`
	Environment     string        `env:"HUB_ENVIRONMENT" envDefault:"server"`
	Timeout         time.Duration `env:"HUB_HTTP_TIMEOUT" envDefault:"10s"`

	// Per-category cache TTLs in seconds; -1 caches forever.
	HubTTLSeconds      int `env:"HUB_CACHE_TTL_HUB" envDefault:"-1"`
	ProductsTTLSeconds int `env:"HUB_CACHE_TTL_PRODUCTS" envDefault:"300"`
	PlayersTTLSeconds  int `env:"HUB_CACHE_TTL_PLAYERS" envDefault:"60"`
}

// LoadConfig reads the environment (and .env, if one exists) into a Config.
func LoadConfig() (*Config, error) {
	// missing .env is fine; real env vars still apply
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config from environment: %w", err)
	}
	if cfg.HubBaseURL == "" {
		cfg.HubBaseURL = DefaultHubBaseURL
	}
	if cfg.PaymentsBaseURL == "" {
		cfg.PaymentsBaseURL = DefaultPaymentsBaseURL
	}
	return cfg, nil
}

// CacheDurations converts the configured TTL seconds into the store's table.
func (c *Config) CacheDurations() CacheDurations {
	return CacheDurations{
		Hub:      secondsToTTL(c.HubTTLSeconds),
		Products: secondsToTTL(c.ProductsTTLSeconds),
		Players:  secondsToTTL(c.PlayersTTLSeconds),
	}
}

func secondsToTTL(s int) time.Duration {
	if s < 0 {
		return NeverExpires
	}
	return time.Duration(s) * time.Second
}
