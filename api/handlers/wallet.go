package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/linesmerrill/victim-dao-api/config"
	"github.com/linesmerrill/victim-dao-api/databases"
	"github.com/linesmerrill/victim-dao-api/models"
	"github.com/linesmerrill/victim-dao-api/uploads"
)

// Wallet exists for handlers dealing with the contribution wallets
type Wallet struct {
	DB       databases.WalletDatabase
	ActDB    databases.ActivityDatabase
	Uploader uploads.Uploader
	Hub      Notifier
}

type walletRequest struct {
	Name     string  `json:"name"`
	Symbol   string  `json:"symbol"`
	Address  string  `json:"address"`
	Network  string  `json:"network"`
	QRCode   string  `json:"qrCode"`
	IsActive *bool   `json:"isActive"`
	Rate     float64 `json:"rate"`
}

func (req walletRequest) validate() error {
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Address) == "" {
		return errors.New("name and address are required")
	}
	if req.Rate < 0 {
		return errors.New("rate cannot be negative")
	}
	return nil
}

// ListActiveWalletsHandler returns the wallets contributors may pay into
func (h Wallet) ListActiveWalletsHandler(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, bson.M{"isActive": true})
}

// ListAllWalletsHandler returns every wallet
func (h Wallet) ListAllWalletsHandler(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, bson.M{})
}

func (h Wallet) list(w http.ResponseWriter, r *http.Request, filter bson.M) {
	wallets, err := h.DB.Find(r.Context(), filter, databases.Newest("createdAt"))
	if err != nil {
		config.ErrorStatus("failed to get wallets", http.StatusInternalServerError, w, err)
		return
	}
	if wallets == nil {
		wallets = []models.Wallet{}
	}
	respondJSON(w, http.StatusOK, wallets)
}

// CreateWalletHandler adds a wallet, active unless told otherwise
func (h Wallet) CreateWalletHandler(w http.ResponseWriter, r *http.Request) {
	var req walletRequest
	if err := decodeJSON(r, &req); err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}
	if err := req.validate(); err != nil {
		config.ErrorStatus("invalid wallet", http.StatusBadRequest, w, err)
		return
	}

	wallet := models.Wallet{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(req.Name),
		Symbol:    strings.ToUpper(strings.TrimSpace(req.Symbol)),
		Address:   strings.TrimSpace(req.Address),
		Network:   strings.TrimSpace(req.Network),
		QRCode:    strings.TrimSpace(req.QRCode),
		IsActive:  req.IsActive == nil || *req.IsActive,
		Rate:      req.Rate,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := h.DB.InsertOne(r.Context(), wallet); err != nil {
		config.ErrorStatus("failed to create wallet", http.StatusInternalServerError, w, err)
		return
	}

	h.ActDB.Log(r.Context(), models.ActivityWallet, adminEmail(r), fmt.Sprintf("wallet %q added", wallet.Name))
	h.Hub.Broadcast()

	respondJSON(w, http.StatusCreated, wallet)
}

// UpdateWalletHandler replaces a wallet's editable fields
func (h Wallet) UpdateWalletHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["wallet_id"]

	var req walletRequest
	if err := decodeJSON(r, &req); err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}
	if err := req.validate(); err != nil {
		config.ErrorStatus("invalid wallet", http.StatusBadRequest, w, err)
		return
	}

	set := bson.M{
		"name":    strings.TrimSpace(req.Name),
		"symbol":  strings.ToUpper(strings.TrimSpace(req.Symbol)),
		"address": strings.TrimSpace(req.Address),
		"network": strings.TrimSpace(req.Network),
		"qrCode":  strings.TrimSpace(req.QRCode),
		"rate":    req.Rate,
	}
	if req.IsActive != nil {
		set["isActive"] = *req.IsActive
	}
	h.update(w, r, id, set, "updated")
}

// ToggleWalletHandler flips whether a wallet is offered to contributors
func (h Wallet) ToggleWalletHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["wallet_id"]
	wallet, err := h.DB.FindOne(r.Context(), bson.M{"_id": id})
	if err != nil {
		if databases.IsNotFound(err) {
			config.ErrorStatus("wallet not found", http.StatusNotFound, w, err)
			return
		}
		config.ErrorStatus("failed to get wallet", http.StatusInternalServerError, w, err)
		return
	}
	state := "activated"
	if wallet.IsActive {
		state = "deactivated"
	}
	h.update(w, r, id, bson.M{"isActive": !wallet.IsActive}, state)
}

// UploadWalletQRCodeHandler stores a QR image and points the wallet at it
func (h Wallet) UploadWalletQRCodeHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["wallet_id"]
	url, ok := uploadFormFile(w, r, h.Uploader, uploads.WalletFolder)
	if !ok {
		return
	}
	h.update(w, r, id, bson.M{"qrCode": url}, "given a new QR code")
}

func (h Wallet) update(w http.ResponseWriter, r *http.Request, id string, set bson.M, what string) {
	found, err := h.DB.UpdateOne(r.Context(), id, set)
	if err != nil {
		config.ErrorStatus("failed to update wallet", http.StatusInternalServerError, w, err)
		return
	}
	if !found {
		config.ErrorStatus("wallet not found", http.StatusNotFound, w, fmt.Errorf("no wallet %s", id))
		return
	}
	wallet, err := h.DB.FindOne(r.Context(), bson.M{"_id": id})
	if err != nil {
		config.ErrorStatus("failed to get wallet", http.StatusInternalServerError, w, err)
		return
	}

	h.ActDB.Log(r.Context(), models.ActivityWallet, adminEmail(r), fmt.Sprintf("wallet %q %s", wallet.Name, what))
	h.Hub.Broadcast()

	respondJSON(w, http.StatusOK, wallet)
}

// DeleteWalletHandler removes a wallet
func (h Wallet) DeleteWalletHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["wallet_id"]
	deleted, err := h.DB.DeleteOne(r.Context(), id)
	if err != nil {
		config.ErrorStatus("failed to delete wallet", http.StatusInternalServerError, w, err)
		return
	}
	if !deleted {
		config.ErrorStatus("wallet not found", http.StatusNotFound, w, fmt.Errorf("no wallet %s", id))
		return
	}

	h.ActDB.Log(r.Context(), models.ActivityWallet, adminEmail(r), fmt.Sprintf("wallet %s deleted", id))
	h.Hub.Broadcast()

	respondJSON(w, http.StatusOK, map[string]string{"id": id, "message": "wallet deleted"})
}
