package models

import (
	"fmt"
	"time"
)

// Receipt statuses
const (
	ReceiptPending  = "pending"
	ReceiptAccepted = "accepted"
	ReceiptVerified = "verified"
	ReceiptRejected = "rejected"
)

// Receipt holds the structure for the receipts collection in mongo. A receipt
// is created whenever a user contributes funds.
type Receipt struct {
	ID              string     `json:"id" bson:"_id"`
	UserEmail       string     `json:"userEmail" bson:"userEmail"`
	Amount          float64    `json:"amount" bson:"amount"`
	Currency        string     `json:"currency" bson:"currency"`
	URL             string     `json:"url" bson:"url"`
	Notes           string     `json:"notes" bson:"notes"`
	Verified        bool       `json:"verified" bson:"verified"`
	Status          string     `json:"status" bson:"status"`
	Time            time.Time  `json:"time" bson:"time"`
	VerifiedAt      *time.Time `json:"verifiedAt,omitempty" bson:"verifiedAt,omitempty"`
	StripeSessionID string     `json:"stripeSessionId,omitempty" bson:"stripeSessionId,omitempty"`
}

// pending -> accepted|verified|rejected, accepted -> verified|rejected
var receiptTransitions = map[string][]string{
	ReceiptPending:  {ReceiptAccepted, ReceiptVerified, ReceiptRejected},
	ReceiptAccepted: {ReceiptVerified, ReceiptRejected},
}

// ReceiptSourceStatuses returns every status a receipt may be in for it to move to target
func ReceiptSourceStatuses(target string) ([]string, error) {
	switch target {
	case ReceiptAccepted, ReceiptVerified, ReceiptRejected:
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, target)
	}
	var from []string
	for src, dests := range receiptTransitions {
		for _, d := range dests {
			if d == target {
				from = append(from, src)
			}
		}
	}
	return from, nil
}

// CanTransition reports whether the receipt may move to the given status
func (r Receipt) CanTransition(to string) error {
	if _, err := ReceiptSourceStatuses(to); err != nil {
		return err
	}
	for _, d := range receiptTransitions[r.Status] {
		if d == to {
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, r.Status, to)
}
