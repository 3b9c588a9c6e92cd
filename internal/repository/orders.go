package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/xiniluca/skillswap/internal/models"
)

// OrderRepository persists orders, their attached files, and lifecycle state.
type OrderRepository struct {
	db *sqlx.DB
}

// NewOrderRepository constructs an OrderRepository.
func NewOrderRepository(db *sqlx.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// NewOrder carries the fields needed to open an order.
type NewOrder struct {
	BuyerID       int64
	SellerID      int64
	ServiceID     int64
	TransactionID string
	NetAmount     float64
	TotalAmount   float64
	Requirements  string
}

// Create opens an order in status request_sent and stores its attached files
// in the same transaction, so a failure leaves no partial order behind.
func (r *OrderRepository) Create(ctx context.Context, o NewOrder, files []models.OrderFile) (int64, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("orders: begin: %w", err)
	}
	defer tx.Rollback()

	var orderID int64
	err = tx.QueryRowxContext(ctx, `
		INSERT INTO orders (buyer_id, seller_id, service_id, transaction_id, net_amount, total_amount, buyer_requirements)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, o.BuyerID, o.SellerID, o.ServiceID, o.TransactionID, o.NetAmount, o.TotalAmount, o.Requirements).Scan(&orderID)
	if err != nil {
		return 0, fmt.Errorf("orders: create: %w", err)
	}

	for _, f := range files {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO order_files (order_id, file_id, file_type, file_name, uploaded_by)
			VALUES ($1, $2, $3, $4, $5)
		`, orderID, f.FileID, f.FileType, f.FileName, f.UploadedBy); err != nil {
			return 0, fmt.Errorf("orders: save file: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("orders: commit: %w", err)
	}
	return orderID, nil
}

// GetByID returns an order.
func (r *OrderRepository) GetByID(ctx context.Context, orderID int64) (*models.Order, error) {
	var o models.Order
	err := r.db.GetContext(ctx, &o, `SELECT * FROM orders WHERE id = $1`, orderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("orders: get: %w", err)
	}
	return &o, nil
}

// UpdateStatus performs a compare-and-swap transition from one status to the
// next. ErrStatusConflict means the stored status no longer matched from,
// so a concurrent or out-of-order transition already won.
func (r *OrderRepository) UpdateStatus(ctx context.Context, orderID int64, from, to models.OrderStatus) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE orders SET status = $1 WHERE id = $2 AND status = $3`,
		to, orderID, from)
	if err != nil {
		return fmt.Errorf("orders: update status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrStatusConflict
	}
	return nil
}

// UpdateQuote records the seller's quote and advances the order to
// quote_sent. Guarded so a quote can only be attached to a fresh request.
func (r *OrderRepository) UpdateQuote(ctx context.Context, orderID int64, customPrice float64, quote string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders SET custom_price = $1, seller_quote = $2, status = $3
		WHERE id = $4 AND status = $5
	`, customPrice, quote, models.StatusQuoteSent, orderID, models.StatusRequestSent)
	if err != nil {
		return fmt.Errorf("orders: update quote: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrStatusConflict
	}
	return nil
}

// ListByBuyer returns the buyer's orders, newest first.
func (r *OrderRepository) ListByBuyer(ctx context.Context, buyerID int64) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.SelectContext(ctx, &orders,
		`SELECT * FROM orders WHERE buyer_id = $1 ORDER BY created_at DESC`, buyerID)
	if err != nil {
		return nil, fmt.Errorf("orders: list by buyer: %w", err)
	}
	return orders, nil
}

// SaveFile appends a file to an existing order.
func (r *OrderRepository) SaveFile(ctx context.Context, f models.OrderFile) (int64, error) {
	var id int64
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO order_files (order_id, file_id, file_type, file_name, uploaded_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, f.OrderID, f.FileID, f.FileType, f.FileName, f.UploadedBy).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("orders: save file: %w", err)
	}
	return id, nil
}

// ListFiles returns an order's files in upload order.
func (r *OrderRepository) ListFiles(ctx context.Context, orderID int64) ([]models.OrderFile, error) {
	var files []models.OrderFile
	err := r.db.SelectContext(ctx, &files,
		`SELECT * FROM order_files WHERE order_id = $1 ORDER BY created_at ASC`, orderID)
	if err != nil {
		return nil, fmt.Errorf("orders: list files: %w", err)
	}
	return files, nil
}
