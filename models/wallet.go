package models

import "time"

// Wallet holds the structure for the wallets collection in mongo. Wallets are
// the addresses contributors are told to send funds to.
type Wallet struct {
	ID        string    `json:"id" bson:"_id"`
	Name      string    `json:"name" bson:"name"`
	Symbol    string    `json:"symbol" bson:"symbol"`
	Address   string    `json:"address" bson:"address"`
	Network   string    `json:"network" bson:"network"`
	QRCode    string    `json:"qrCode" bson:"qrCode"`
	IsActive  bool      `json:"isActive" bson:"isActive"`
	Rate      float64   `json:"rate" bson:"rate"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}
