package service

import (
	"fmt"
	"net/url"

	"github.com/google/uuid"

	"github.com/xiniluca/skillswap/internal/pricing"
)

// PaymentURL builds the external checkout link for an amount and transaction
// reference. The provider does the rest; no webhook comes back to the bot.
func PaymentURL(base string, amount float64, ref string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("payment link: %w", err)
	}
	q := u.Query()
	q.Set("amount", pricing.Format(amount))
	q.Set("ref", ref)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// NewRequestRef returns a fresh transaction reference for a service request.
func NewRequestRef() string {
	return "REQ_" + uuid.NewString()
}

// NewPromotionRef returns a fresh transaction reference for a promotion payment.
func NewPromotionRef() string {
	return "PROMO_" + uuid.NewString()
}
