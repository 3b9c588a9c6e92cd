package models

import "time"

// Review is a buyer's 1-5 star rating of a completed order.
// At most one review exists per order; the database enforces it.
type Review struct {
	ID        int64     `db:"id"`
	OrderID   int64     `db:"order_id"`
	BuyerID   int64     `db:"buyer_id"`
	SellerID  int64     `db:"seller_id"`
	Rating    int       `db:"rating"`
	CreatedAt time.Time `db:"created_at"`
}

// ValidRating reports whether r is a permitted star rating.
func ValidRating(r int) bool { return r >= 1 && r <= 5 }
