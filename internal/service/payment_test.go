package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaymentURL(t *testing.T) {
	link, err := PaymentURL("https://pay.example.com/checkout", 13.8, "REQ_abc")
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example.com/checkout?amount=13.80&ref=REQ_abc", link)
}

func TestPaymentURLKeepsExistingQuery(t *testing.T) {
	link, err := PaymentURL("https://pay.example.com/checkout?merchant=skillswap", 2.29, "PROMO_x")
	require.NoError(t, err)
	assert.Contains(t, link, "merchant=skillswap")
	assert.Contains(t, link, "amount=2.29")
	assert.Contains(t, link, "ref=PROMO_x")
}

func TestTransactionRefs(t *testing.T) {
	a, b := NewRequestRef(), NewRequestRef()
	assert.True(t, strings.HasPrefix(a, "REQ_"))
	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasPrefix(NewPromotionRef(), "PROMO_"))
}
