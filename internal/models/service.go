package models

import (
	"database/sql"
	"time"
)

// MaxServiceDescriptionLen bounds service descriptions to keep listings scannable.
const MaxServiceDescriptionLen = 120

// Service is a seller's listing. NetPrice is what the seller receives;
// buyers always see the commission-marked-up total.
type Service struct {
	ID               int64        `db:"id"`
	SellerID         int64        `db:"seller_id"`
	Title            string       `db:"title"`
	Description      string       `db:"description"`
	NetPrice         float64      `db:"net_price"`
	DeliveryTime     string       `db:"delivery_time"`
	PaymentMethod    string       `db:"payment_method"`
	IsPromoted       bool         `db:"is_promoted"`
	PromotionExpires sql.NullTime `db:"promotion_expires"`
	CreatedAt        time.Time    `db:"created_at"`
}

// PromotionActive reports whether the promoted flag is set and unexpired.
func (s Service) PromotionActive(now time.Time) bool {
	return s.IsPromoted && s.PromotionExpires.Valid && s.PromotionExpires.Time.After(now)
}

// ServiceListing is a service joined with seller identity and reputation,
// as shown in browse/search results.
type ServiceListing struct {
	Service
	SellerName          string  `db:"seller_name"`
	SellerUsername      string  `db:"seller_username"`
	AvgRating           float64 `db:"avg_rating"`
	ReviewCount         int     `db:"review_count"`
	IsCurrentlyPromoted bool    `db:"is_currently_promoted"`
}
