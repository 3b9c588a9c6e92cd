package service

import (
	"context"
	"strconv"
	"strings"

	"log/slog"

	"github.com/xiniluca/skillswap/core/logger"
	"github.com/xiniluca/skillswap/internal/models"
	"github.com/xiniluca/skillswap/internal/pricing"
	"github.com/xiniluca/skillswap/internal/repository"
)

// noRequirements is stored when a buyer sends a request without typing
// anything or attaching files.
const noRequirements = "No specific requirements provided."

// RequestInput carries everything collected during the requirements flow.
type RequestInput struct {
	BuyerID      int64
	SellerID     int64
	ServiceID    int64
	NetAmount    float64
	Requirements []string
	Files        []models.OrderFile
}

// RequestResult reports a stored purchase request.
type RequestResult struct {
	OrderID       int64
	TransactionID string
	TotalAmount   float64
}

// SubmitRequest stores a purchase request with its requirement files in a
// single transaction and returns the order handle for notifications.
func (m *Marketplace) SubmitRequest(ctx context.Context, in RequestInput) (*RequestResult, error) {
	requirements := strings.TrimSpace(strings.Join(in.Requirements, "\n\n"))
	if requirements == "" {
		requirements = noRequirements
	}
	total := pricing.Total(in.NetAmount)
	ref := NewRequestRef()
	orderID, err := m.orders.Create(ctx, repository.NewOrder{
		BuyerID:       in.BuyerID,
		SellerID:      in.SellerID,
		ServiceID:     in.ServiceID,
		TransactionID: ref,
		NetAmount:     in.NetAmount,
		TotalAmount:   total,
		Requirements:  requirements,
	}, in.Files)
	if err != nil {
		return nil, err
	}
	logger.SVCOrders.Info("request submitted",
		slog.String("event", "orders.request"),
		slog.Int64("order_id", orderID),
		slog.Int64("buyer_id", in.BuyerID),
		slog.Int64("seller_id", in.SellerID),
		slog.Int64("service_id", in.ServiceID),
		slog.Int("files", len(in.Files)),
		slog.Float64("amount", total),
	)
	return &RequestResult{OrderID: orderID, TransactionID: ref, TotalAmount: total}, nil
}

// Order returns one order by id.
func (m *Marketplace) Order(ctx context.Context, orderID int64) (*models.Order, error) {
	return m.orders.GetByID(ctx, orderID)
}

// OrderFiles returns the requirement files attached to an order.
func (m *Marketplace) OrderFiles(ctx context.Context, orderID int64) ([]models.OrderFile, error) {
	return m.orders.ListFiles(ctx, orderID)
}

// BuyerOrders returns a buyer's orders, newest first.
func (m *Marketplace) BuyerOrders(ctx context.Context, buyerID int64) ([]models.Order, error) {
	return m.orders.ListByBuyer(ctx, buyerID)
}

// ParseQuote splits a seller quote message into its price and description.
// The first whitespace-separated token must be a positive number.
func ParseQuote(text string) (float64, string, error) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return 0, "", ErrInvalidQuote
	}
	price, err := strconv.ParseFloat(fields[0], 64)
	if err != nil || price <= 0 {
		return 0, "", ErrInvalidQuote
	}
	return price, strings.Join(fields[1:], " "), nil
}

// SubmitQuote records a seller's custom quote on a pending request. Only the
// order's seller may quote, and only while the request is still open.
func (m *Marketplace) SubmitQuote(ctx context.Context, sellerID, orderID int64, price float64, description string) (*models.Order, error) {
	order, err := m.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.SellerID != sellerID {
		return nil, ErrNotAuthorized
	}
	if err := m.orders.UpdateQuote(ctx, orderID, price, description); err != nil {
		return nil, err
	}
	logger.SVCOrders.Info("quote sent",
		slog.String("event", "orders.quote"),
		slog.Int64("order_id", orderID),
		slog.Int64("seller_id", sellerID),
		slog.Float64("amount", price),
	)
	return m.orders.GetByID(ctx, orderID)
}

// AcceptResult reports an accepted quote with its payment link.
type AcceptResult struct {
	Order       *models.Order
	TotalAmount float64
	PaymentURL  string
}

// AcceptQuote moves a quoted order to accepted, builds the payment link for
// the marked-up quote price, and schedules the deferred rating prompt.
func (m *Marketplace) AcceptQuote(ctx context.Context, buyerID, orderID int64, prompt func()) (*AcceptResult, error) {
	order, err := m.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.BuyerID != buyerID {
		return nil, ErrNotAuthorized
	}
	if err := m.orders.UpdateStatus(ctx, orderID, models.StatusQuoteSent, models.StatusQuoteAccepted); err != nil {
		return nil, err
	}
	total := order.TotalAmount
	if order.CustomPrice.Valid {
		total = pricing.Total(order.CustomPrice.Float64)
	}
	link, err := PaymentURL(m.cfg.PaymentLinkURL, total, order.TransactionID)
	if err != nil {
		return nil, err
	}
	if prompt != nil {
		m.sched.Schedule(orderKey(orderID), m.cfg.RatingPromptDelay(), prompt)
	}
	logger.SVCOrders.Info("quote accepted",
		slog.String("event", "orders.accept"),
		slog.Int64("order_id", orderID),
		slog.Int64("buyer_id", buyerID),
		slog.Float64("amount", total),
	)
	order.Status = models.StatusQuoteAccepted
	return &AcceptResult{Order: order, TotalAmount: total, PaymentURL: link}, nil
}

// DeclineQuote moves a quoted order to declined by the buyer and cancels any
// pending rating prompt for it.
func (m *Marketplace) DeclineQuote(ctx context.Context, buyerID, orderID int64) (*models.Order, error) {
	order, err := m.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.BuyerID != buyerID {
		return nil, ErrNotAuthorized
	}
	if err := m.orders.UpdateStatus(ctx, orderID, models.StatusQuoteSent, models.StatusQuoteDeclined); err != nil {
		return nil, err
	}
	m.sched.Cancel(orderKey(orderID))
	logger.SVCOrders.Info("quote declined",
		slog.String("event", "orders.decline_quote"),
		slog.Int64("order_id", orderID),
		slog.Int64("buyer_id", buyerID),
	)
	order.Status = models.StatusQuoteDeclined
	return order, nil
}

// DeclineRequest lets the seller turn down an open request before quoting.
func (m *Marketplace) DeclineRequest(ctx context.Context, sellerID, orderID int64) (*models.Order, error) {
	order, err := m.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.SellerID != sellerID {
		return nil, ErrNotAuthorized
	}
	if err := m.orders.UpdateStatus(ctx, orderID, models.StatusRequestSent, models.StatusDeclined); err != nil {
		return nil, err
	}
	logger.SVCOrders.Info("request declined",
		slog.String("event", "orders.decline_request"),
		slog.Int64("order_id", orderID),
		slog.Int64("seller_id", sellerID),
	)
	order.Status = models.StatusDeclined
	return order, nil
}

// RateOrder records the buyer's rating for an accepted order and marks it
// completed. A second rating for the same order is rejected.
func (m *Marketplace) RateOrder(ctx context.Context, buyerID, orderID int64, rating int) (*models.Order, error) {
	if !models.ValidRating(rating) {
		return nil, ErrInvalidRating
	}
	order, err := m.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.BuyerID != buyerID {
		return nil, ErrNotAuthorized
	}
	if !order.Status.CanTransition(models.StatusCompleted) {
		return nil, repository.ErrStatusConflict
	}
	if _, err := m.reviews.Create(ctx, orderID, order.BuyerID, order.SellerID, rating); err != nil {
		return nil, err
	}
	if err := m.orders.UpdateStatus(ctx, orderID, models.StatusQuoteAccepted, models.StatusCompleted); err != nil {
		return nil, err
	}
	logger.SVCReviews.Info("order rated",
		slog.String("event", "reviews.rate"),
		slog.Int64("order_id", orderID),
		slog.Int64("buyer_id", buyerID),
		slog.Int("rating", rating),
	)
	order.Status = models.StatusCompleted
	return order, nil
}

// RelayTarget resolves who the other party of an order is for a direct
// message relay. The sender must be one of the two parties.
func (m *Marketplace) RelayTarget(ctx context.Context, senderID, orderID int64) (*models.Order, int64, error) {
	order, err := m.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, 0, err
	}
	switch senderID {
	case order.BuyerID:
		return order, order.SellerID, nil
	case order.SellerID:
		return order, order.BuyerID, nil
	default:
		return nil, 0, ErrNotAuthorized
	}
}
