package payments

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMinorUnits(t *testing.T) {
	tests := []struct {
		amount   float64
		currency string
		want     int64
	}{
		{19.99, "USD", 1999},
		{1, "eur", 100},
		{0.005, "USD", 1},
		{1000, "JPY", 1000},
		{1000, "krw", 1000},
		{99.6, "JPY", 100},
		{1.234, "KWD", 1230},
		{5, "BHD", 5000},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MinorUnits(tt.amount, tt.currency), "%v %s", tt.amount, tt.currency)
	}
}

func TestNewWithoutKey(t *testing.T) {
	_, err := New("").CreateCheckoutSession(CheckoutRequest{Amount: 5, Currency: "usd"})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestNewWithKey(t *testing.T) {
	assert.IsType(t, StripeCheckout{}, New("sk_test_123"))
}
