package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalYAML = `
telegram:
  token: "test-token"
marketplace:
  payment_link_url: "https://pay.example.com/checkout"
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, "@xiniluca", cfg.Marketplace.SupportHandle)
	assert.Equal(t, 5, cfg.Marketplace.BrowseLimit)
	assert.Equal(t, 10, cfg.Marketplace.TopSellersLimit)
	assert.Equal(t, 1.99, cfg.Marketplace.PromotionPriceUSD)
	assert.Equal(t, 30, cfg.Marketplace.PromotionDays)
	assert.Equal(t, 30*time.Second, cfg.Marketplace.RatingPromptDelay())
	assert.Equal(t, 10*time.Second, cfg.Marketplace.PromotionActivateDelay())
	assert.Equal(t, 30*time.Minute, cfg.Session.TTL())
	assert.Equal(t, 5*time.Minute, cfg.Session.SweepInterval())
	assert.Equal(t, ":3000", cfg.Health.Listen)
}

func TestLoadRequiresPaymentLink(t *testing.T) {
	_, err := Load(writeConfig(t, `
telegram:
  token: "test-token"
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "payment_link_url")
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
telegram:
  token: "test-token"
marketplace:
  payment_link_url: "https://pay.example.com/checkout"
  browse_limit: 20
  promotion_price_usd: 4.99
session:
  ttl_minutes: 60
  redis_addr: "localhost:6379"
`))
	require.NoError(t, err)

	assert.Equal(t, 20, cfg.Marketplace.BrowseLimit)
	assert.Equal(t, 4.99, cfg.Marketplace.PromotionPriceUSD)
	assert.Equal(t, time.Hour, cfg.Session.TTL())
	assert.Equal(t, "localhost:6379", cfg.Session.RedisAddr)
}

func TestPromotionDuration(t *testing.T) {
	m := MarketplaceConfig{PromotionDays: 30}
	assert.Equal(t, 30*24*time.Hour, m.PromotionDuration())
}
