package service

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/xiniluca/skillswap/internal/models"
	"github.com/xiniluca/skillswap/internal/repository"
)

func TestParseQuote(t *testing.T) {
	price, desc, err := ParseQuote("25.00 Logo design with 3 revisions")
	require.NoError(t, err)
	assert.Equal(t, 25.0, price)
	assert.Equal(t, "Logo design with 3 revisions", desc)

	price, desc, err = ParseQuote("12")
	require.NoError(t, err)
	assert.Equal(t, 12.0, price)
	assert.Empty(t, desc)

	_, _, err = ParseQuote("abc logo")
	assert.ErrorIs(t, err, ErrInvalidQuote)

	_, _, err = ParseQuote("")
	assert.ErrorIs(t, err, ErrInvalidQuote)

	_, _, err = ParseQuote("-5 discount work")
	assert.ErrorIs(t, err, ErrInvalidQuote)
}

func TestSubmitRequestAppliesMarkupAndDefaults(t *testing.T) {
	m, s := newTestMarketplace(t, testConfig())

	s.orders.On("Create", mock.Anything, mock.MatchedBy(func(o repository.NewOrder) bool {
		return o.BuyerID == 2 &&
			o.SellerID == 1 &&
			o.ServiceID == 5 &&
			o.NetAmount == 10.0 &&
			o.TotalAmount == 11.50 &&
			o.Requirements == "No specific requirements provided." &&
			strings.HasPrefix(o.TransactionID, "REQ_")
	}), mock.Anything).Return(int64(42), nil)

	res, err := m.SubmitRequest(context.Background(), RequestInput{
		BuyerID:   2,
		SellerID:  1,
		ServiceID: 5,
		NetAmount: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(42), res.OrderID)
	assert.Equal(t, 11.50, res.TotalAmount)
	s.orders.AssertExpectations(t)
}

func TestSubmitRequestJoinsRequirements(t *testing.T) {
	m, s := newTestMarketplace(t, testConfig())

	files := []models.OrderFile{{FileID: "f1", FileType: models.FileDocument, FileName: "brief.pdf"}}
	s.orders.On("Create", mock.Anything, mock.MatchedBy(func(o repository.NewOrder) bool {
		return o.Requirements == "Need a minimal logo\n\nBlue and white palette"
	}), files).Return(int64(43), nil)

	_, err := m.SubmitRequest(context.Background(), RequestInput{
		BuyerID:      2,
		SellerID:     1,
		ServiceID:    5,
		NetAmount:    10,
		Requirements: []string{"Need a minimal logo", "Blue and white palette"},
		Files:        files,
	})
	require.NoError(t, err)
	s.orders.AssertExpectations(t)
}

func TestSubmitQuoteRejectsForeignSeller(t *testing.T) {
	m, s := newTestMarketplace(t, testConfig())

	s.orders.On("GetByID", mock.Anything, int64(42)).
		Return(&models.Order{ID: 42, SellerID: 1, BuyerID: 2, Status: models.StatusRequestSent}, nil)

	_, err := m.SubmitQuote(context.Background(), 9, 42, 25, "Full branding")
	assert.ErrorIs(t, err, ErrNotAuthorized)
}

func TestSubmitQuote(t *testing.T) {
	m, s := newTestMarketplace(t, testConfig())

	pending := &models.Order{ID: 42, SellerID: 1, BuyerID: 2, Status: models.StatusRequestSent}
	quoted := &models.Order{ID: 42, SellerID: 1, BuyerID: 2, Status: models.StatusQuoteSent,
		CustomPrice: sql.NullFloat64{Float64: 25, Valid: true}}
	s.orders.On("GetByID", mock.Anything, int64(42)).Return(pending, nil).Once()
	s.orders.On("UpdateQuote", mock.Anything, int64(42), 25.0, "Full branding").Return(nil)
	s.orders.On("GetByID", mock.Anything, int64(42)).Return(quoted, nil).Once()

	order, err := m.SubmitQuote(context.Background(), 1, 42, 25, "Full branding")
	require.NoError(t, err)
	assert.Equal(t, models.StatusQuoteSent, order.Status)
	s.orders.AssertExpectations(t)
}

func TestAcceptQuoteMarksUpCustomPrice(t *testing.T) {
	cfg := testConfig()
	cfg.RatingPromptDelaySeconds = 0
	m, s := newTestMarketplace(t, cfg)

	order := &models.Order{
		ID: 42, BuyerID: 2, SellerID: 1,
		TransactionID: "REQ_abc",
		NetAmount:     10, TotalAmount: 11.50,
		CustomPrice: sql.NullFloat64{Float64: 12, Valid: true},
		Status:      models.StatusQuoteSent,
	}
	s.orders.On("GetByID", mock.Anything, int64(42)).Return(order, nil)
	s.orders.On("UpdateStatus", mock.Anything, int64(42), models.StatusQuoteSent, models.StatusQuoteAccepted).Return(nil)

	prompted := make(chan struct{})
	res, err := m.AcceptQuote(context.Background(), 2, 42, func() { close(prompted) })
	require.NoError(t, err)
	assert.Equal(t, 13.80, res.TotalAmount)
	assert.Contains(t, res.PaymentURL, "amount=13.80")
	assert.Contains(t, res.PaymentURL, "ref=REQ_abc")
	assert.Equal(t, models.StatusQuoteAccepted, res.Order.Status)

	select {
	case <-prompted:
	case <-time.After(time.Second):
		t.Fatal("rating prompt was not scheduled")
	}
}

func TestAcceptQuoteRejectsForeignBuyer(t *testing.T) {
	m, s := newTestMarketplace(t, testConfig())

	s.orders.On("GetByID", mock.Anything, int64(42)).
		Return(&models.Order{ID: 42, BuyerID: 2, SellerID: 1, Status: models.StatusQuoteSent}, nil)

	_, err := m.AcceptQuote(context.Background(), 9, 42, nil)
	assert.ErrorIs(t, err, ErrNotAuthorized)
}

func TestAcceptQuotePropagatesStatusConflict(t *testing.T) {
	m, s := newTestMarketplace(t, testConfig())

	s.orders.On("GetByID", mock.Anything, int64(42)).
		Return(&models.Order{ID: 42, BuyerID: 2, SellerID: 1, Status: models.StatusQuoteDeclined}, nil)
	s.orders.On("UpdateStatus", mock.Anything, int64(42), models.StatusQuoteSent, models.StatusQuoteAccepted).
		Return(repository.ErrStatusConflict)

	_, err := m.AcceptQuote(context.Background(), 2, 42, nil)
	assert.ErrorIs(t, err, repository.ErrStatusConflict)
}

func TestDeclineQuote(t *testing.T) {
	m, s := newTestMarketplace(t, testConfig())

	s.orders.On("GetByID", mock.Anything, int64(42)).
		Return(&models.Order{ID: 42, BuyerID: 2, SellerID: 1, Status: models.StatusQuoteSent}, nil)
	s.orders.On("UpdateStatus", mock.Anything, int64(42), models.StatusQuoteSent, models.StatusQuoteDeclined).Return(nil)

	order, err := m.DeclineQuote(context.Background(), 2, 42)
	require.NoError(t, err)
	assert.Equal(t, models.StatusQuoteDeclined, order.Status)
	assert.True(t, order.Status.Terminal())
}

func TestDeclineRequest(t *testing.T) {
	m, s := newTestMarketplace(t, testConfig())

	s.orders.On("GetByID", mock.Anything, int64(42)).
		Return(&models.Order{ID: 42, BuyerID: 2, SellerID: 1, Status: models.StatusRequestSent}, nil)
	s.orders.On("UpdateStatus", mock.Anything, int64(42), models.StatusRequestSent, models.StatusDeclined).Return(nil)

	order, err := m.DeclineRequest(context.Background(), 1, 42)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDeclined, order.Status)
}

func TestRateOrder(t *testing.T) {
	m, s := newTestMarketplace(t, testConfig())

	s.orders.On("GetByID", mock.Anything, int64(42)).
		Return(&models.Order{ID: 42, BuyerID: 2, SellerID: 1, Status: models.StatusQuoteAccepted}, nil)
	s.reviews.On("Create", mock.Anything, int64(42), int64(2), int64(1), 5).Return(int64(9), nil)
	s.orders.On("UpdateStatus", mock.Anything, int64(42), models.StatusQuoteAccepted, models.StatusCompleted).Return(nil)

	order, err := m.RateOrder(context.Background(), 2, 42, 5)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, order.Status)
	s.reviews.AssertExpectations(t)
	s.orders.AssertExpectations(t)
}

func TestRateOrderRejectsInvalidRating(t *testing.T) {
	m, _ := newTestMarketplace(t, testConfig())

	_, err := m.RateOrder(context.Background(), 2, 42, 0)
	assert.ErrorIs(t, err, ErrInvalidRating)

	_, err = m.RateOrder(context.Background(), 2, 42, 6)
	assert.ErrorIs(t, err, ErrInvalidRating)
}

func TestRateOrderRejectsCompletedOrder(t *testing.T) {
	m, s := newTestMarketplace(t, testConfig())

	s.orders.On("GetByID", mock.Anything, int64(42)).
		Return(&models.Order{ID: 42, BuyerID: 2, SellerID: 1, Status: models.StatusCompleted}, nil)

	_, err := m.RateOrder(context.Background(), 2, 42, 4)
	assert.ErrorIs(t, err, repository.ErrStatusConflict)
	s.reviews.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRateOrderRejectsDuplicateReview(t *testing.T) {
	m, s := newTestMarketplace(t, testConfig())

	s.orders.On("GetByID", mock.Anything, int64(42)).
		Return(&models.Order{ID: 42, BuyerID: 2, SellerID: 1, Status: models.StatusQuoteAccepted}, nil)
	s.reviews.On("Create", mock.Anything, int64(42), int64(2), int64(1), 5).
		Return(int64(0), repository.ErrAlreadyReviewed)

	_, err := m.RateOrder(context.Background(), 2, 42, 5)
	assert.ErrorIs(t, err, repository.ErrAlreadyReviewed)
	s.orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRelayTarget(t *testing.T) {
	m, s := newTestMarketplace(t, testConfig())

	s.orders.On("GetByID", mock.Anything, int64(42)).
		Return(&models.Order{ID: 42, BuyerID: 2, SellerID: 1, Status: models.StatusQuoteSent}, nil)

	_, target, err := m.RelayTarget(context.Background(), 2, 42)
	require.NoError(t, err)
	assert.Equal(t, int64(1), target)

	_, target, err = m.RelayTarget(context.Background(), 1, 42)
	require.NoError(t, err)
	assert.Equal(t, int64(2), target)

	_, _, err = m.RelayTarget(context.Background(), 9, 42)
	assert.ErrorIs(t, err, ErrNotAuthorized)
}
