package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// pqUniqueViolation is the Postgres error code for unique constraint breaks.
const pqUniqueViolation = "23505"

// ReviewRepository persists order reviews.
type ReviewRepository struct {
	db *sqlx.DB
}

// NewReviewRepository constructs a ReviewRepository.
func NewReviewRepository(db *sqlx.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// Create stores a review. The reviews table carries a unique constraint on
// order_id, so a second review for the same order maps to ErrAlreadyReviewed.
func (r *ReviewRepository) Create(ctx context.Context, orderID, buyerID, sellerID int64, rating int) (int64, error) {
	var id int64
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO reviews (order_id, buyer_id, seller_id, rating)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, orderID, buyerID, sellerID, rating).Scan(&id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			return 0, ErrAlreadyReviewed
		}
		return 0, fmt.Errorf("reviews: create: %w", err)
	}
	return id, nil
}
