package payments

import (
	"errors"
	"math"
	"strings"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
)

// ErrNotConfigured is returned when no Stripe key is set
var ErrNotConfigured = errors.New("card payments are not configured")

// CheckoutRequest describes a one-off contribution paid by card
type CheckoutRequest struct {
	Amount     float64
	Currency   string
	Email      string
	ReceiptID  string
	SuccessURL string
	CancelURL  string
}

// CheckoutSession is the part of the Stripe session the API hands back
type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// CheckoutCreator opens hosted checkout sessions
type CheckoutCreator interface {
	CreateCheckoutSession(req CheckoutRequest) (*CheckoutSession, error)
}

// StripeCheckout creates sessions with Stripe Checkout
type StripeCheckout struct{}

// New sets the Stripe key and returns a checkout creator. Without a key the
// returned creator always fails with ErrNotConfigured.
func New(secretKey string) CheckoutCreator {
	if secretKey == "" {
		return disabled{}
	}
	stripe.Key = secretKey
	return StripeCheckout{}
}

// CreateCheckoutSession opens a payment mode session for a single contribution
func (StripeCheckout) CreateCheckoutSession(req CheckoutRequest) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:          stripe.String(string(stripe.CheckoutSessionModePayment)),
		CustomerEmail: stripe.String(req.Email),
		SuccessURL:    stripe.String(req.SuccessURL),
		CancelURL:     stripe.String(req.CancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(strings.ToLower(req.Currency)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String("Victim DAO contribution"),
					},
					UnitAmount: stripe.Int64(MinorUnits(req.Amount, req.Currency)),
				},
				Quantity: stripe.Int64(1),
			},
		},
	}
	params.AddMetadata("receiptId", req.ReceiptID)

	s, err := session.New(params)
	if err != nil {
		return nil, err
	}
	return &CheckoutSession{ID: s.ID, URL: s.URL}, nil
}

// Stripe charges these currencies in whole units
var zeroDecimal = map[string]bool{
	"BIF": true, "CLP": true, "DJF": true, "GNF": true, "JPY": true, "KMF": true,
	"KRW": true, "MGA": true, "PYG": true, "RWF": true, "UGX": true, "VND": true,
	"VUV": true, "XAF": true, "XOF": true, "XPF": true,
}

// Stripe charges these in thousandths, with the last digit always zero
var threeDecimal = map[string]bool{
	"BHD": true, "JOD": true, "KWD": true, "OMR": true, "TND": true,
}

// MinorUnits converts an amount to the smallest unit Stripe charges in for
// currency, rounding to the nearest unit
func MinorUnits(amount float64, currency string) int64 {
	c := strings.ToUpper(strings.TrimSpace(currency))
	switch {
	case zeroDecimal[c]:
		return int64(math.Round(amount))
	case threeDecimal[c]:
		return int64(math.Round(amount*100)) * 10
	default:
		return int64(math.Round(amount * 100))
	}
}

type disabled struct{}

func (disabled) CreateCheckoutSession(req CheckoutRequest) (*CheckoutSession, error) {
	return nil, ErrNotConfigured
}
