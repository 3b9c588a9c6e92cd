package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/xiniluca/skillswap/internal/config"
	"github.com/xiniluca/skillswap/internal/models"
	"github.com/xiniluca/skillswap/internal/repository"
)

func testConfig() config.MarketplaceConfig {
	return config.MarketplaceConfig{
		PaymentLinkURL:    "https://pay.example.com/checkout",
		BrowseLimit:       5,
		TopSellersLimit:   10,
		PromotionPriceUSD: 1.99,
		PromotionDays:     30,
	}
}

type testStores struct {
	users   *mockUserStore
	catalog *mockCatalogStore
	orders  *mockOrderStore
	reviews *mockReviewStore
	stats   *mockStatsStore
}

func newTestMarketplace(t *testing.T, cfg config.MarketplaceConfig) (*Marketplace, *testStores) {
	t.Helper()
	s := &testStores{
		users:   &mockUserStore{},
		catalog: &mockCatalogStore{},
		orders:  &mockOrderStore{},
		reviews: &mockReviewStore{},
		stats:   &mockStatsStore{},
	}
	m := NewMarketplace(cfg, s.users, s.catalog, s.orders, s.reviews, s.stats)
	t.Cleanup(m.Close)
	return m, s
}

func TestRegisterRejectsInvalidRole(t *testing.T) {
	m, _ := newTestMarketplace(t, testConfig())

	_, err := m.Register(context.Background(), 100, "Alice", "alice", models.Role("admin"))
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestRegisterStoresAndReturnsUser(t *testing.T) {
	m, s := newTestMarketplace(t, testConfig())

	want := &models.User{ID: 1, TelegramID: 100, Name: "Alice", Username: "alice", Role: models.RoleBoth}
	s.users.On("Create", mock.Anything, int64(100), "Alice", "alice", models.RoleBoth).Return(int64(1), nil)
	s.users.On("GetByTelegramID", mock.Anything, int64(100)).Return(want, nil)

	got, err := m.Register(context.Background(), 100, "Alice", "alice", models.RoleBoth)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	s.users.AssertExpectations(t)
}

func TestCreateServiceRejectsLongDescription(t *testing.T) {
	m, _ := newTestMarketplace(t, testConfig())

	long := strings.Repeat("x", models.MaxServiceDescriptionLen+1)
	_, err := m.CreateService(context.Background(), 1, "Logo design", long, 10, "2 days", "PayPal")
	assert.ErrorIs(t, err, ErrDescriptionTooLong)
}

func TestCreateServiceRejectsNonPositivePrice(t *testing.T) {
	m, _ := newTestMarketplace(t, testConfig())

	_, err := m.CreateService(context.Background(), 1, "Logo design", "Clean vector logos", 0, "2 days", "PayPal")
	assert.ErrorIs(t, err, ErrInvalidPrice)
}

func TestCreateService(t *testing.T) {
	m, s := newTestMarketplace(t, testConfig())

	s.catalog.On("Create", mock.Anything, int64(1), "Logo design", "Clean vector logos", 10.0, "2 days", "PayPal").
		Return(int64(7), nil)

	id, err := m.CreateService(context.Background(), 1, "Logo design", "Clean vector logos", 10, "2 days", "PayPal")
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)
	s.catalog.AssertExpectations(t)
}

func TestParsePrice(t *testing.T) {
	price, err := ParsePrice(" 19.99 ")
	require.NoError(t, err)
	assert.Equal(t, 19.99, price)

	_, err = ParsePrice("free")
	assert.ErrorIs(t, err, ErrInvalidPrice)

	_, err = ParsePrice("-5")
	assert.ErrorIs(t, err, ErrInvalidPrice)
}

func TestOfferPromotionRequiresOwnership(t *testing.T) {
	m, s := newTestMarketplace(t, testConfig())

	s.catalog.On("ListBySeller", mock.Anything, int64(1)).
		Return([]models.Service{{ID: 5, SellerID: 1}}, nil)

	_, err := m.OfferPromotion(context.Background(), 1, 99)
	assert.ErrorIs(t, err, repository.ErrServiceNotFound)
}

func TestOfferPromotionBuildsPaymentLink(t *testing.T) {
	m, s := newTestMarketplace(t, testConfig())

	s.catalog.On("ListBySeller", mock.Anything, int64(1)).
		Return([]models.Service{{ID: 5, SellerID: 1, Title: "Logo design"}}, nil)

	offer, err := m.OfferPromotion(context.Background(), 1, 5)
	require.NoError(t, err)
	assert.Equal(t, 1.99, offer.PriceUSD)
	assert.True(t, strings.HasPrefix(offer.Ref, "PROMO_"))
	assert.Contains(t, offer.PaymentURL, "amount=1.99")
	assert.Contains(t, offer.PaymentURL, "ref="+offer.Ref)
}
