// Package service implements the marketplace rules on top of the
// repositories: registration, the service catalog, the order lifecycle,
// quoting, reviews and promotions.
package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"log/slog"

	"github.com/xiniluca/skillswap/core/logger"
	"github.com/xiniluca/skillswap/internal/config"
	"github.com/xiniluca/skillswap/internal/models"
	"github.com/xiniluca/skillswap/internal/pricing"
	"github.com/xiniluca/skillswap/internal/repository"
)

var (
	// ErrInvalidRole rejects unknown registration roles.
	ErrInvalidRole = errors.New("invalid role")
	// ErrDescriptionTooLong rejects service descriptions over the limit.
	ErrDescriptionTooLong = errors.New("description too long")
	// ErrInvalidPrice rejects prices that do not parse as a positive number.
	ErrInvalidPrice = errors.New("invalid price")
	// ErrInvalidQuote rejects quotes whose first token is not a positive price.
	ErrInvalidQuote = errors.New("invalid quote format")
	// ErrInvalidRating rejects ratings outside 1..5.
	ErrInvalidRating = errors.New("invalid rating")
	// ErrNotAuthorized rejects actions on orders or services the caller does
	// not own.
	ErrNotAuthorized = errors.New("not authorized")
	// ErrSellerOnly rejects seller operations attempted by pure buyers.
	ErrSellerOnly = errors.New("sellers only")
)

// UserStore is the user persistence surface the marketplace needs.
type UserStore interface {
	Create(ctx context.Context, telegramID int64, name, username string, role models.Role) (int64, error)
	GetByID(ctx context.Context, userID int64) (*models.User, error)
	GetByTelegramID(ctx context.Context, telegramID int64) (*models.User, error)
}

// CatalogStore is the service-listing persistence surface.
type CatalogStore interface {
	Create(ctx context.Context, sellerID int64, title, description string, netPrice float64, deliveryTime, paymentMethod string) (int64, error)
	Search(ctx context.Context, keyword string, limit int) ([]models.ServiceListing, error)
	Browse(ctx context.Context, limit int) ([]models.ServiceListing, error)
	GetListing(ctx context.Context, serviceID int64) (*models.ServiceListing, error)
	ListBySeller(ctx context.Context, sellerID int64) ([]models.Service, error)
	Promote(ctx context.Context, serviceID int64, expires time.Time) error
	ExpirePromotions(ctx context.Context) (int64, error)
}

// OrderStore is the order persistence surface.
type OrderStore interface {
	Create(ctx context.Context, o repository.NewOrder, files []models.OrderFile) (int64, error)
	GetByID(ctx context.Context, orderID int64) (*models.Order, error)
	UpdateStatus(ctx context.Context, orderID int64, from, to models.OrderStatus) error
	UpdateQuote(ctx context.Context, orderID int64, customPrice float64, quote string) error
	ListByBuyer(ctx context.Context, buyerID int64) ([]models.Order, error)
	ListFiles(ctx context.Context, orderID int64) ([]models.OrderFile, error)
}

// ReviewStore is the review persistence surface.
type ReviewStore interface {
	Create(ctx context.Context, orderID, buyerID, sellerID int64, rating int) (int64, error)
}

// StatsStore is the aggregate-query surface.
type StatsStore interface {
	SellerStats(ctx context.Context, sellerID int64) (*models.SellerStats, error)
	TopSellers(ctx context.Context, limit int) ([]models.TopSeller, error)
	Platform(ctx context.Context) (*models.PlatformStats, error)
}

// Marketplace wires the stores together under the marketplace rules.
type Marketplace struct {
	cfg     config.MarketplaceConfig
	users   UserStore
	catalog CatalogStore
	orders  OrderStore
	reviews ReviewStore
	stats   StatsStore
	sched   *Scheduler
}

// NewMarketplace constructs the marketplace service.
func NewMarketplace(cfg config.MarketplaceConfig, users UserStore, catalog CatalogStore, orders OrderStore, reviews ReviewStore, stats StatsStore) *Marketplace {
	return &Marketplace{
		cfg:     cfg,
		users:   users,
		catalog: catalog,
		orders:  orders,
		reviews: reviews,
		stats:   stats,
		sched:   NewScheduler(),
	}
}

// Close cancels all pending deferred callbacks.
func (m *Marketplace) Close() {
	m.sched.Stop()
}

// User returns the registered user for a Telegram id.
func (m *Marketplace) User(ctx context.Context, telegramID int64) (*models.User, error) {
	return m.users.GetByTelegramID(ctx, telegramID)
}

// UserByID returns a user by internal id, used to resolve the Telegram chat
// of an order counterparty.
func (m *Marketplace) UserByID(ctx context.Context, userID int64) (*models.User, error) {
	return m.users.GetByID(ctx, userID)
}

// Register completes the registration flow and returns the stored user.
func (m *Marketplace) Register(ctx context.Context, telegramID int64, name, username string, role models.Role) (*models.User, error) {
	if !role.Valid() {
		return nil, ErrInvalidRole
	}
	if _, err := m.users.Create(ctx, telegramID, name, username, role); err != nil {
		return nil, err
	}
	logger.SVCUsers.Info("user registered",
		slog.String("event", "users.register"),
		slog.Int64("user_id", telegramID),
		slog.String("payload", string(role)),
	)
	return m.users.GetByTelegramID(ctx, telegramID)
}

// ValidateDescription enforces the listing description limit.
func ValidateDescription(description string) error {
	if len([]rune(description)) > models.MaxServiceDescriptionLen {
		return ErrDescriptionTooLong
	}
	return nil
}

// ParsePrice parses a user-typed price, requiring a positive number.
func ParsePrice(text string) (float64, error) {
	price, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil || price <= 0 {
		return 0, ErrInvalidPrice
	}
	return price, nil
}

// CreateService validates and stores a new listing for a seller.
func (m *Marketplace) CreateService(ctx context.Context, sellerID int64, title, description string, netPrice float64, deliveryTime, paymentMethod string) (int64, error) {
	if err := ValidateDescription(description); err != nil {
		return 0, err
	}
	if netPrice <= 0 {
		return 0, ErrInvalidPrice
	}
	id, err := m.catalog.Create(ctx, sellerID, title, description, netPrice, deliveryTime, paymentMethod)
	if err != nil {
		return 0, err
	}
	logger.SVCServices.Info("service created",
		slog.String("event", "catalog.create"),
		slog.Int64("service_id", id),
		slog.Int64("seller_id", sellerID),
		slog.Float64("amount", netPrice),
	)
	return id, nil
}

// Browse returns the top listings.
func (m *Marketplace) Browse(ctx context.Context) ([]models.ServiceListing, error) {
	return m.catalog.Browse(ctx, m.cfg.BrowseLimit)
}

// Search returns listings matching a keyword.
func (m *Marketplace) Search(ctx context.Context, keyword string) ([]models.ServiceListing, error) {
	return m.catalog.Search(ctx, keyword, m.cfg.BrowseLimit)
}

// Listing returns one listing with seller context.
func (m *Marketplace) Listing(ctx context.Context, serviceID int64) (*models.ServiceListing, error) {
	return m.catalog.GetListing(ctx, serviceID)
}

// SellerServices returns a seller's own listings.
func (m *Marketplace) SellerServices(ctx context.Context, sellerID int64) ([]models.Service, error) {
	return m.catalog.ListBySeller(ctx, sellerID)
}

// SellerStats returns a seller's dashboard figures.
func (m *Marketplace) SellerStats(ctx context.Context, sellerID int64) (*models.SellerStats, error) {
	return m.stats.SellerStats(ctx, sellerID)
}

// TopSellers returns the leaderboard.
func (m *Marketplace) TopSellers(ctx context.Context) ([]models.TopSeller, error) {
	return m.stats.TopSellers(ctx, m.cfg.TopSellersLimit)
}

// PlatformStats returns marketplace-wide counters.
func (m *Marketplace) PlatformStats(ctx context.Context) (*models.PlatformStats, error) {
	return m.stats.Platform(ctx)
}

// PromotionOffer describes a pending promotion payment for one service.
type PromotionOffer struct {
	Service    models.Service
	PriceUSD   float64
	Ref        string
	PaymentURL string
}

// OfferPromotion verifies ownership and builds the promotion payment link.
func (m *Marketplace) OfferPromotion(ctx context.Context, sellerID, serviceID int64) (*PromotionOffer, error) {
	services, err := m.catalog.ListBySeller(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	for _, svc := range services {
		if svc.ID != serviceID {
			continue
		}
		ref := NewPromotionRef()
		link, err := PaymentURL(m.cfg.PaymentLinkURL, m.cfg.PromotionPriceUSD, ref)
		if err != nil {
			return nil, err
		}
		return &PromotionOffer{Service: svc, PriceUSD: m.cfg.PromotionPriceUSD, Ref: ref, PaymentURL: link}, nil
	}
	return nil, repository.ErrServiceNotFound
}

// ActivatePromotion marks a service promoted for the configured duration and
// returns the expiry.
func (m *Marketplace) ActivatePromotion(ctx context.Context, serviceID int64) (time.Time, error) {
	expires := time.Now().Add(m.cfg.PromotionDuration())
	if err := m.catalog.Promote(ctx, serviceID, expires); err != nil {
		return time.Time{}, err
	}
	logger.SVCServices.Info("promotion activated",
		slog.String("event", "catalog.promote"),
		slog.Int64("service_id", serviceID),
	)
	return expires, nil
}

// SchedulePromotionActivation queues the simulated payment-confirmation
// callback for a promotion. Activation failures are logged and dropped.
func (m *Marketplace) SchedulePromotionActivation(serviceID int64, notify func(expires time.Time)) {
	m.sched.Schedule(promotionKey(serviceID), m.cfg.PromotionActivateDelay(), func() {
		expires, err := m.ActivatePromotion(context.Background(), serviceID)
		if err != nil {
			logger.SVCSched.Error("promotion activation failed",
				slog.String("event", "sched.promotion"),
				slog.Int64("service_id", serviceID),
				slog.String("err", err.Error()),
			)
			return
		}
		if notify != nil {
			notify(expires)
		}
	})
}

// ExpirePromotions clears expired promotion flags once.
func (m *Marketplace) ExpirePromotions(ctx context.Context) (int64, error) {
	return m.catalog.ExpirePromotions(ctx)
}

// RunPromotionSweeper expires promotions on the given interval until ctx is
// cancelled. This is the only recurring background task.
func (m *Marketplace) RunPromotionSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := m.catalog.ExpirePromotions(ctx)
			if err != nil {
				logger.SVCServices.Error("promotion expiry sweep failed",
					slog.String("event", "catalog.expire"),
					slog.String("err", err.Error()),
				)
				continue
			}
			if n > 0 {
				logger.SVCServices.Info("promotions expired",
					slog.String("event", "catalog.expire"),
					slog.Int64("count", n),
				)
			}
		}
	}
}

func promotionKey(serviceID int64) string {
	return fmt.Sprintf("promo:%d", serviceID)
}

func orderKey(orderID int64) string {
	return fmt.Sprintf("order:%d", orderID)
}

// PromotionPrice returns the configured monthly promotion price.
func (m *Marketplace) PromotionPrice() float64 { return m.cfg.PromotionPriceUSD }

// PromotionDays returns the configured promotion duration in days.
func (m *Marketplace) PromotionDays() int { return m.cfg.PromotionDays }

// FormatListingTotal renders the buyer-facing price of a listing.
func FormatListingTotal(netPrice float64) string {
	return pricing.USD(pricing.Total(netPrice))
}
