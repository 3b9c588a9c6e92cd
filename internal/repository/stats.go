package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/xiniluca/skillswap/internal/models"
)

// StatsRepository answers the aggregate dashboard and leaderboard queries.
type StatsRepository struct {
	db *sqlx.DB
}

// NewStatsRepository constructs a StatsRepository.
func NewStatsRepository(db *sqlx.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// SellerStats aggregates a seller's order, earnings and reputation figures.
func (r *StatsRepository) SellerStats(ctx context.Context, sellerID int64) (*models.SellerStats, error) {
	var stats models.SellerStats
	err := r.db.GetContext(ctx, &stats, `
		SELECT
			COUNT(DISTINCT o.id) AS total_orders,
			COUNT(DISTINCT CASE WHEN o.status = 'completed' THEN o.id END) AS completed_orders,
			COUNT(DISTINCT CASE WHEN o.status IN ('request_sent', 'quote_sent', 'quote_accepted') THEN o.id END) AS pending_orders,
			COALESCE(SUM(CASE WHEN o.status = 'completed' THEN o.custom_price END), 0) AS total_earned,
			COALESCE(AVG(r.rating), 0) AS avg_rating,
			COUNT(DISTINCT r.id) AS total_reviews,
			COUNT(DISTINCT s.id) AS active_services,
			COUNT(DISTINCT CASE WHEN DATE_TRUNC('month', o.created_at) = DATE_TRUNC('month', NOW()) THEN o.id END) AS monthly_orders
		FROM users u
		LEFT JOIN services s ON u.id = s.seller_id
		LEFT JOIN orders o ON u.id = o.seller_id
		LEFT JOIN reviews r ON u.id = r.seller_id
		WHERE u.id = $1
		GROUP BY u.id
	`, sellerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &models.SellerStats{}, nil
		}
		return nil, fmt.Errorf("stats: seller: %w", err)
	}
	return &stats, nil
}

// TopSellers returns the leaderboard: promoted sellers first, then by rating,
// completed orders and earnings. Sellers without listings are excluded.
func (r *StatsRepository) TopSellers(ctx context.Context, limit int) ([]models.TopSeller, error) {
	var sellers []models.TopSeller
	err := r.db.SelectContext(ctx, &sellers, `
		SELECT
			u.name,
			u.telegram_id,
			COALESCE(AVG(r.rating), 0) AS avg_rating,
			COUNT(DISTINCT o.id) AS total_orders,
			COALESCE(SUM(o.custom_price), 0) AS total_earned,
			COUNT(DISTINCT s.id) AS active_services,
			COALESCE(BOOL_OR(s.is_promoted = TRUE AND s.promotion_expires > NOW()), FALSE) AS is_promoted
		FROM users u
		LEFT JOIN services s ON u.id = s.seller_id
		LEFT JOIN orders o ON u.id = o.seller_id AND o.status = 'completed'
		LEFT JOIN reviews r ON u.id = r.seller_id
		WHERE u.role IN ('Seller', 'Both')
		GROUP BY u.id, u.name
		HAVING COUNT(DISTINCT s.id) > 0
		ORDER BY is_promoted DESC, avg_rating DESC, total_orders DESC, total_earned DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("stats: top sellers: %w", err)
	}
	return sellers, nil
}

// Platform returns marketplace-wide counters.
func (r *StatsRepository) Platform(ctx context.Context) (*models.PlatformStats, error) {
	var stats models.PlatformStats
	err := r.db.GetContext(ctx, &stats, `
		SELECT
			(SELECT COUNT(*) FROM users) AS total_users,
			(SELECT COUNT(*) FROM orders) AS total_orders,
			(SELECT COUNT(*) FROM users WHERE role IN ('Seller', 'Both')) AS active_sellers,
			(SELECT COUNT(*) FROM services) AS total_services
	`)
	if err != nil {
		return nil, fmt.Errorf("stats: platform: %w", err)
	}
	return &stats, nil
}
