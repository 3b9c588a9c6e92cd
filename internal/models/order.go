package models

import (
	"database/sql"
	"time"
)

// OrderStatus tracks an order through its one-directional lifecycle.
type OrderStatus string

const (
	StatusRequestSent   OrderStatus = "request_sent"
	StatusQuoteSent     OrderStatus = "quote_sent"
	StatusQuoteAccepted OrderStatus = "quote_accepted"
	StatusCompleted     OrderStatus = "completed"
	StatusQuoteDeclined OrderStatus = "quote_declined"
	StatusDeclined      OrderStatus = "declined"
	StatusCancelled     OrderStatus = "cancelled"
)

// transitions lists the permitted next statuses for every non-terminal status.
// No status may return to an earlier step; a declined quote needs a new order.
var transitions = map[OrderStatus][]OrderStatus{
	StatusRequestSent:   {StatusQuoteSent, StatusDeclined, StatusCancelled},
	StatusQuoteSent:     {StatusQuoteAccepted, StatusQuoteDeclined, StatusCancelled},
	StatusQuoteAccepted: {StatusCompleted, StatusCancelled},
}

// Terminal reports whether no further status transition is permitted.
func (s OrderStatus) Terminal() bool {
	switch s {
	case StatusCompleted, StatusQuoteDeclined, StatusDeclined, StatusCancelled:
		return true
	}
	return false
}

// CanTransition reports whether moving from s to next is a legal lifecycle step.
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Order is a buyer's request against a service. TotalAmount carries the
// commission markup over NetAmount; CustomPrice is set once the seller quotes.
type Order struct {
	ID            int64           `db:"id"`
	BuyerID       int64           `db:"buyer_id"`
	SellerID      int64           `db:"seller_id"`
	ServiceID     int64           `db:"service_id"`
	TransactionID string          `db:"transaction_id"`
	NetAmount     float64         `db:"net_amount"`
	TotalAmount   float64         `db:"total_amount"`
	CustomPrice   sql.NullFloat64 `db:"custom_price"`
	Requirements  string          `db:"buyer_requirements"`
	SellerQuote   sql.NullString  `db:"seller_quote"`
	Status        OrderStatus     `db:"status"`
	CreatedAt     time.Time       `db:"created_at"`
}

// FileKind tags the Telegram content type of an uploaded order file.
type FileKind string

const (
	FileDocument FileKind = "document"
	FilePhoto    FileKind = "photo"
	FileVideo    FileKind = "video"
)

// OrderFile records a file the buyer attached while collecting requirements.
// Append-only; FileID is the Telegram file reference.
type OrderFile struct {
	ID         int64     `db:"id"`
	OrderID    int64     `db:"order_id"`
	FileID     string    `db:"file_id"`
	FileType   FileKind  `db:"file_type"`
	FileName   string    `db:"file_name"`
	UploadedBy int64     `db:"uploaded_by"`
	CreatedAt  time.Time `db:"created_at"`
}
