package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/xiniluca/skillswap/internal/models"
)

// listingColumns joins a service with seller identity, average rating and the
// effective promotion flag. Promoted listings sort first, then by reputation.
const listingColumns = `
	SELECT s.*, u.name AS seller_name, COALESCE(u.username, '') AS seller_username,
	       COALESCE(AVG(r.rating), 0) AS avg_rating,
	       COUNT(r.rating) AS review_count,
	       CASE WHEN s.is_promoted = TRUE AND s.promotion_expires > NOW() THEN TRUE ELSE FALSE END AS is_currently_promoted
	FROM services s
	JOIN users u ON s.seller_id = u.id
	LEFT JOIN reviews r ON r.seller_id = s.seller_id
`

const listingOrder = `
	GROUP BY s.id, u.name, u.username
	ORDER BY is_currently_promoted DESC, avg_rating DESC, s.created_at DESC
`

// ServiceRepository persists seller listings and their promotion state.
type ServiceRepository struct {
	db *sqlx.DB
}

// NewServiceRepository constructs a ServiceRepository.
func NewServiceRepository(db *sqlx.DB) *ServiceRepository {
	return &ServiceRepository{db: db}
}

// Create stores a new listing and returns its id.
func (r *ServiceRepository) Create(ctx context.Context, sellerID int64, title, description string, netPrice float64, deliveryTime, paymentMethod string) (int64, error) {
	var id int64
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO services (seller_id, title, description, net_price, delivery_time, payment_method)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, sellerID, title, description, netPrice, deliveryTime, paymentMethod).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("services: create: %w", err)
	}
	return id, nil
}

// Search returns listings whose title or description match the keyword.
func (r *ServiceRepository) Search(ctx context.Context, keyword string, limit int) ([]models.ServiceListing, error) {
	var listings []models.ServiceListing
	err := r.db.SelectContext(ctx, &listings,
		listingColumns+` WHERE s.title ILIKE $1 OR s.description ILIKE $1 `+listingOrder+` LIMIT $2`,
		"%"+keyword+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("services: search: %w", err)
	}
	return listings, nil
}

// Browse returns the top listings without a keyword filter.
func (r *ServiceRepository) Browse(ctx context.Context, limit int) ([]models.ServiceListing, error) {
	var listings []models.ServiceListing
	err := r.db.SelectContext(ctx, &listings, listingColumns+listingOrder+` LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("services: browse: %w", err)
	}
	return listings, nil
}

// GetListing returns a single service with seller and rating context.
func (r *ServiceRepository) GetListing(ctx context.Context, serviceID int64) (*models.ServiceListing, error) {
	var listing models.ServiceListing
	err := r.db.GetContext(ctx, &listing,
		listingColumns+` WHERE s.id = $1 GROUP BY s.id, u.name, u.username`, serviceID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrServiceNotFound
		}
		return nil, fmt.Errorf("services: get listing: %w", err)
	}
	return &listing, nil
}

// ListBySeller returns a seller's own listings, newest first.
func (r *ServiceRepository) ListBySeller(ctx context.Context, sellerID int64) ([]models.Service, error) {
	var services []models.Service
	err := r.db.SelectContext(ctx, &services,
		`SELECT * FROM services WHERE seller_id = $1 ORDER BY created_at DESC`, sellerID)
	if err != nil {
		return nil, fmt.Errorf("services: list by seller: %w", err)
	}
	return services, nil
}

// Promote marks a service as promoted until the given expiry.
func (r *ServiceRepository) Promote(ctx context.Context, serviceID int64, expires time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE services SET is_promoted = TRUE, promotion_expires = $1 WHERE id = $2`,
		expires, serviceID)
	if err != nil {
		return fmt.Errorf("services: promote: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrServiceNotFound
	}
	return nil
}

// ExpirePromotions clears the promoted flag on listings past their expiry and
// returns how many rows changed.
func (r *ServiceRepository) ExpirePromotions(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE services SET is_promoted = FALSE WHERE is_promoted = TRUE AND promotion_expires <= NOW()`)
	if err != nil {
		return 0, fmt.Errorf("services: expire promotions: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
