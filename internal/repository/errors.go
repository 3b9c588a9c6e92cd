package repository

import "errors"

var (
	// ErrUserNotFound indicates the Telegram user has not registered yet.
	ErrUserNotFound = errors.New("user not found")
	// ErrServiceNotFound indicates a stale or unknown service id.
	ErrServiceNotFound = errors.New("service not found")
	// ErrOrderNotFound indicates a stale or unknown order id.
	ErrOrderNotFound = errors.New("order not found")
	// ErrAlreadyReviewed indicates a second review for the same order.
	ErrAlreadyReviewed = errors.New("order already reviewed")
	// ErrStatusConflict indicates a lifecycle update lost against a concurrent
	// or out-of-order transition; the order's stored status no longer matches
	// the expected one.
	ErrStatusConflict = errors.New("order status conflict")
)
