package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	coreconfig "github.com/xiniluca/skillswap/core/config"
	coredatabase "github.com/xiniluca/skillswap/core/database"
)

// MarketplaceConfig holds the marketplace-specific knobs.
type MarketplaceConfig struct {
	// PaymentLinkURL is the external checkout base URL; amount and ref are
	// appended as query parameters.
	PaymentLinkURL string `yaml:"payment_link_url" envconfig:"PAYMENT_LINK"`
	SupportHandle  string `yaml:"support_handle" envconfig:"SUPPORT_HANDLE"`

	BrowseLimit     int `yaml:"browse_limit"`
	TopSellersLimit int `yaml:"top_sellers_limit"`

	PromotionPriceUSD float64 `yaml:"promotion_price_usd"`
	PromotionDays     int     `yaml:"promotion_days"`

	// Delays for the simulated payment-confirmation callbacks. There is no
	// real webhook; see the scheduler for the cancellation semantics.
	RatingPromptDelaySeconds      int `yaml:"rating_prompt_delay_seconds" envconfig:"RATING_PROMPT_DELAY_SECONDS"`
	PromotionActivateDelaySeconds int `yaml:"promotion_activate_delay_seconds" envconfig:"PROMOTION_ACTIVATE_DELAY_SECONDS"`
}

// RatingPromptDelay returns the configured delay as a duration.
func (m MarketplaceConfig) RatingPromptDelay() time.Duration {
	return time.Duration(m.RatingPromptDelaySeconds) * time.Second
}

// PromotionActivateDelay returns the configured delay as a duration.
func (m MarketplaceConfig) PromotionActivateDelay() time.Duration {
	return time.Duration(m.PromotionActivateDelaySeconds) * time.Second
}

// PromotionDuration returns the promotion validity window.
func (m MarketplaceConfig) PromotionDuration() time.Duration {
	return time.Duration(m.PromotionDays) * 24 * time.Hour
}

// SessionConfig controls the conversation state store.
type SessionConfig struct {
	// TTLMinutes bounds how long an abandoned mid-flow conversation survives.
	TTLMinutes   int `yaml:"ttl_minutes" envconfig:"SESSION_TTL_MINUTES"`
	SweepMinutes int `yaml:"sweep_minutes"`
	// RedisAddr switches the store to Redis when non-empty.
	RedisAddr     string `yaml:"redis_addr" envconfig:"SESSION_REDIS_ADDR"`
	RedisPassword string `yaml:"redis_password" envconfig:"SESSION_REDIS_PASSWORD"`
	RedisDB       int    `yaml:"redis_db" envconfig:"SESSION_REDIS_DB"`
}

// TTL returns the session time-to-live as a duration.
func (s SessionConfig) TTL() time.Duration {
	return time.Duration(s.TTLMinutes) * time.Minute
}

// SweepInterval returns how often stale sessions are swept.
func (s SessionConfig) SweepInterval() time.Duration {
	return time.Duration(s.SweepMinutes) * time.Minute
}

// HealthConfig controls the HTTP health endpoint.
type HealthConfig struct {
	Listen string `yaml:"listen" envconfig:"HEALTH_LISTEN"`
}

// Config aggregates core bot settings with the marketplace application config.
type Config struct {
	Core        coreconfig.Config   `yaml:",inline"`
	Database    coredatabase.Config `yaml:"database"`
	Marketplace MarketplaceConfig   `yaml:"marketplace"`
	Session     SessionConfig       `yaml:"session"`
	Health      HealthConfig        `yaml:"health"`
}

// CoreConfig exposes the embedded core configuration for the runner.
func (c *Config) CoreConfig() *coreconfig.Config { return &c.Core }

// Load reads configuration from a YAML file and environment variables.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	if err := coreconfig.Normalize(&cfg.Core); err != nil {
		return nil, err
	}
	if err := normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func normalize(cfg *Config) error {
	if strings.TrimSpace(cfg.Marketplace.PaymentLinkURL) == "" {
		return fmt.Errorf("marketplace.payment_link_url is required")
	}
	if cfg.Marketplace.SupportHandle == "" {
		cfg.Marketplace.SupportHandle = "@xiniluca"
	}
	if cfg.Marketplace.BrowseLimit <= 0 {
		cfg.Marketplace.BrowseLimit = 5
	}
	if cfg.Marketplace.TopSellersLimit <= 0 {
		cfg.Marketplace.TopSellersLimit = 10
	}
	if cfg.Marketplace.PromotionPriceUSD <= 0 {
		cfg.Marketplace.PromotionPriceUSD = 1.99
	}
	if cfg.Marketplace.PromotionDays <= 0 {
		cfg.Marketplace.PromotionDays = 30
	}
	if cfg.Marketplace.RatingPromptDelaySeconds <= 0 {
		cfg.Marketplace.RatingPromptDelaySeconds = 30
	}
	if cfg.Marketplace.PromotionActivateDelaySeconds <= 0 {
		cfg.Marketplace.PromotionActivateDelaySeconds = 10
	}
	if cfg.Session.TTLMinutes <= 0 {
		cfg.Session.TTLMinutes = 30
	}
	if cfg.Session.SweepMinutes <= 0 {
		cfg.Session.SweepMinutes = 5
	}
	if cfg.Health.Listen == "" {
		cfg.Health.Listen = ":3000"
	}
	return nil
}
