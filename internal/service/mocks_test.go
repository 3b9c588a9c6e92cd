package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/xiniluca/skillswap/internal/models"
	"github.com/xiniluca/skillswap/internal/repository"
)

type mockUserStore struct {
	mock.Mock
}

func (m *mockUserStore) Create(ctx context.Context, telegramID int64, name, username string, role models.Role) (int64, error) {
	args := m.Called(ctx, telegramID, name, username, role)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockUserStore) GetByID(ctx context.Context, userID int64) (*models.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockUserStore) GetByTelegramID(ctx context.Context, telegramID int64) (*models.User, error) {
	args := m.Called(ctx, telegramID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type mockCatalogStore struct {
	mock.Mock
}

func (m *mockCatalogStore) Create(ctx context.Context, sellerID int64, title, description string, netPrice float64, deliveryTime, paymentMethod string) (int64, error) {
	args := m.Called(ctx, sellerID, title, description, netPrice, deliveryTime, paymentMethod)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockCatalogStore) Search(ctx context.Context, keyword string, limit int) ([]models.ServiceListing, error) {
	args := m.Called(ctx, keyword, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ServiceListing), args.Error(1)
}

func (m *mockCatalogStore) Browse(ctx context.Context, limit int) ([]models.ServiceListing, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ServiceListing), args.Error(1)
}

func (m *mockCatalogStore) GetListing(ctx context.Context, serviceID int64) (*models.ServiceListing, error) {
	args := m.Called(ctx, serviceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ServiceListing), args.Error(1)
}

func (m *mockCatalogStore) ListBySeller(ctx context.Context, sellerID int64) ([]models.Service, error) {
	args := m.Called(ctx, sellerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Service), args.Error(1)
}

func (m *mockCatalogStore) Promote(ctx context.Context, serviceID int64, expires time.Time) error {
	args := m.Called(ctx, serviceID, expires)
	return args.Error(0)
}

func (m *mockCatalogStore) ExpirePromotions(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type mockOrderStore struct {
	mock.Mock
}

func (m *mockOrderStore) Create(ctx context.Context, o repository.NewOrder, files []models.OrderFile) (int64, error) {
	args := m.Called(ctx, o, files)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockOrderStore) GetByID(ctx context.Context, orderID int64) (*models.Order, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *mockOrderStore) UpdateStatus(ctx context.Context, orderID int64, from, to models.OrderStatus) error {
	args := m.Called(ctx, orderID, from, to)
	return args.Error(0)
}

func (m *mockOrderStore) UpdateQuote(ctx context.Context, orderID int64, customPrice float64, quote string) error {
	args := m.Called(ctx, orderID, customPrice, quote)
	return args.Error(0)
}

func (m *mockOrderStore) ListByBuyer(ctx context.Context, buyerID int64) ([]models.Order, error) {
	args := m.Called(ctx, buyerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Order), args.Error(1)
}

func (m *mockOrderStore) ListFiles(ctx context.Context, orderID int64) ([]models.OrderFile, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.OrderFile), args.Error(1)
}

type mockReviewStore struct {
	mock.Mock
}

func (m *mockReviewStore) Create(ctx context.Context, orderID, buyerID, sellerID int64, rating int) (int64, error) {
	args := m.Called(ctx, orderID, buyerID, sellerID, rating)
	return args.Get(0).(int64), args.Error(1)
}

type mockStatsStore struct {
	mock.Mock
}

func (m *mockStatsStore) SellerStats(ctx context.Context, sellerID int64) (*models.SellerStats, error) {
	args := m.Called(ctx, sellerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SellerStats), args.Error(1)
}

func (m *mockStatsStore) TopSellers(ctx context.Context, limit int) ([]models.TopSeller, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.TopSeller), args.Error(1)
}

func (m *mockStatsStore) Platform(ctx context.Context) (*models.PlatformStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PlatformStats), args.Error(1)
}
