package models

// SellerStats aggregates a seller's dashboard figures.
type SellerStats struct {
	TotalOrders     int     `db:"total_orders"`
	CompletedOrders int     `db:"completed_orders"`
	PendingOrders   int     `db:"pending_orders"`
	TotalEarned     float64 `db:"total_earned"`
	AvgRating       float64 `db:"avg_rating"`
	TotalReviews    int     `db:"total_reviews"`
	ActiveServices  int     `db:"active_services"`
	MonthlyOrders   int     `db:"monthly_orders"`
}

// TopSeller is one leaderboard row.
type TopSeller struct {
	TelegramID     int64   `db:"telegram_id"`
	Name           string  `db:"name"`
	AvgRating      float64 `db:"avg_rating"`
	TotalOrders    int     `db:"total_orders"`
	TotalEarned    float64 `db:"total_earned"`
	ActiveServices int     `db:"active_services"`
	IsPromoted     bool    `db:"is_promoted"`
}

// PlatformStats summarizes the marketplace for the admin stats command.
type PlatformStats struct {
	TotalUsers    int `db:"total_users"`
	TotalOrders   int `db:"total_orders"`
	ActiveSellers int `db:"active_sellers"`
	TotalServices int `db:"total_services"`
}
