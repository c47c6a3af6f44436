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
	"go.uber.org/zap"

	"github.com/linesmerrill/victim-dao-api/api"
	"github.com/linesmerrill/victim-dao-api/config"
	"github.com/linesmerrill/victim-dao-api/databases"
	"github.com/linesmerrill/victim-dao-api/mailer"
	"github.com/linesmerrill/victim-dao-api/models"
	"github.com/linesmerrill/victim-dao-api/payments"
	"github.com/linesmerrill/victim-dao-api/uploads"
	templates "github.com/linesmerrill/victim-dao-api/templates/html"
)

// DefaultCurrency is used when a contribution does not name one
const DefaultCurrency = "USD"

// MaxUploadSize caps multipart uploads
const MaxUploadSize = 10 << 20

// Receipt exists for handlers dealing with contributions and their receipts
type Receipt struct {
	DB       databases.ReceiptDatabase
	MDB      databases.UserMetaDatabase
	ActDB    databases.ActivityDatabase
	Mail     mailer.Mailer
	Uploader uploads.Uploader
	Payments payments.CheckoutCreator
	Hub      Notifier
	BaseURL  string
}

type receiptRequest struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
	URL      string  `json:"url"`
	Notes    string  `json:"notes"`
}

type receiptStatusRequest struct {
	Status string `json:"status"`
}

type checkoutResponse struct {
	SessionID string         `json:"sessionId"`
	URL       string         `json:"url"`
	Receipt   models.Receipt `json:"receipt"`
}

func normalizeCurrency(c string) string {
	c = strings.ToUpper(strings.TrimSpace(c))
	if c == "" {
		return DefaultCurrency
	}
	return c
}

// CreateReceiptHandler records a contribution as a pending receipt
func (h Receipt) CreateReceiptHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := api.UserFromContext(r.Context())
	if !ok {
		config.ErrorStatus("unauthorized", http.StatusUnauthorized, w, errors.New("no user on request"))
		return
	}

	var req receiptRequest
	if err := decodeJSON(r, &req); err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}
	if req.Amount <= 0 {
		config.ErrorStatus("invalid receipt", http.StatusBadRequest, w, errors.New("amount must be greater than zero"))
		return
	}

	receipt := models.Receipt{
		ID:        uuid.NewString(),
		UserEmail: caller.Email,
		Amount:    req.Amount,
		Currency:  normalizeCurrency(req.Currency),
		URL:       strings.TrimSpace(req.URL),
		Notes:     strings.TrimSpace(req.Notes),
		Status:    models.ReceiptPending,
		Time:      time.Now().UTC(),
	}
	if _, err := h.DB.InsertOne(r.Context(), receipt); err != nil {
		config.ErrorStatus("failed to save receipt", http.StatusInternalServerError, w, err)
		return
	}

	h.ActDB.Log(r.Context(), models.ActivityContribution, caller.Email,
		fmt.Sprintf("%s contributed %.2f %s", caller.Email, receipt.Amount, receipt.Currency))
	h.Hub.Broadcast()

	respondJSON(w, http.StatusCreated, receipt)
}

// MyReceiptsHandler lists the caller's receipts, newest first
func (h Receipt) MyReceiptsHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := api.UserFromContext(r.Context())
	if !ok {
		config.ErrorStatus("unauthorized", http.StatusUnauthorized, w, errors.New("no user on request"))
		return
	}
	h.list(w, r, bson.M{"userEmail": caller.Email})
}

// ListReceiptsHandler lists every receipt, optionally filtered by status
func (h Receipt) ListReceiptsHandler(w http.ResponseWriter, r *http.Request) {
	filter := bson.M{}
	if status := r.URL.Query().Get("status"); status != "" {
		switch status {
		case models.ReceiptPending, models.ReceiptAccepted, models.ReceiptVerified, models.ReceiptRejected:
			filter["status"] = status
		default:
			config.ErrorStatus("invalid status filter", http.StatusBadRequest, w, models.ErrInvalidStatus)
			return
		}
	}
	h.list(w, r, filter)
}

func (h Receipt) list(w http.ResponseWriter, r *http.Request, filter bson.M) {
	receipts, err := h.DB.Find(r.Context(), filter, databases.Newest("time"))
	if err != nil {
		config.ErrorStatus("failed to get receipts", http.StatusInternalServerError, w, err)
		return
	}
	if receipts == nil {
		receipts = []models.Receipt{}
	}
	respondJSON(w, http.StatusOK, receipts)
}

// UpdateReceiptStatusHandler moves a receipt through its review states. The
// move to verified awards the amount as contribution points exactly once.
func (h Receipt) UpdateReceiptStatusHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["receipt_id"]

	var req receiptStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}

	receipt, err := h.DB.FindOne(r.Context(), bson.M{"_id": id})
	if err != nil {
		if databases.IsNotFound(err) {
			config.ErrorStatus("receipt not found", http.StatusNotFound, w, err)
			return
		}
		config.ErrorStatus("failed to get receipt", http.StatusInternalServerError, w, err)
		return
	}

	if err := receipt.CanTransition(req.Status); err != nil {
		code := http.StatusConflict
		if errors.Is(err, models.ErrInvalidStatus) {
			code = http.StatusBadRequest
		}
		config.ErrorStatus("invalid status change", code, w, err)
		return
	}
	from, _ := models.ReceiptSourceStatuses(req.Status)

	now := time.Now().UTC()
	update := bson.M{"status": req.Status}
	if req.Status == models.ReceiptVerified {
		update["verified"] = true
		update["verifiedAt"] = now
	}
	changed, err := h.DB.Transition(r.Context(), id, from, update)
	if err != nil {
		config.ErrorStatus("failed to update receipt", http.StatusInternalServerError, w, err)
		return
	}
	if !changed {
		config.ErrorStatus("invalid status change", http.StatusConflict, w,
			fmt.Errorf("%w: receipt %s was already reviewed", models.ErrInvalidTransition, id))
		return
	}

	previous := receipt.Status
	receipt.Status = req.Status
	if req.Status == models.ReceiptVerified {
		receipt.Verified = true
		receipt.VerifiedAt = &now
		if err := h.awardContribution(r, *receipt); err != nil {
			if rerr := h.DB.RevertVerification(r.Context(), id, previous); rerr != nil {
				zap.S().Errorw("failed to revert receipt verification",
					"receipt", id,
					"status", previous,
					"error", rerr)
			}
			config.ErrorStatus("failed to award contribution points", http.StatusInternalServerError, w, err)
			return
		}
		mailer.SendAsync(h.Mail, receipt.UserEmail, templates.ReceiptVerifiedSubject,
			templates.ReceiptVerifiedBody(receipt.Amount, receipt.Currency))
	}

	h.ActDB.Log(r.Context(), models.ActivityReceipt, receipt.UserEmail,
		fmt.Sprintf("receipt %s marked %s", receipt.ID, receipt.Status))
	h.Hub.Broadcast()

	respondJSON(w, http.StatusOK, receipt)
}

func (h Receipt) awardContribution(r *http.Request, receipt models.Receipt) error {
	if _, err := h.MDB.EnsureMeta(r.Context(), receipt.UserEmail); err != nil {
		return err
	}
	if err := h.MDB.AddPoints(r.Context(), receipt.UserEmail, receipt.Amount, models.PointsCategoryContribution); err != nil {
		zap.S().Errorw("failed to award contribution points",
			"receipt", receipt.ID,
			"email", receipt.UserEmail,
			"amount", receipt.Amount,
			"error", err)
		return err
	}
	return nil
}

// UploadReceiptProofHandler stores an uploaded proof file and links it to the caller's receipt
func (h Receipt) UploadReceiptProofHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := api.UserFromContext(r.Context())
	if !ok {
		config.ErrorStatus("unauthorized", http.StatusUnauthorized, w, errors.New("no user on request"))
		return
	}
	id := mux.Vars(r)["receipt_id"]

	url, ok := uploadFormFile(w, r, h.Uploader, uploads.ReceiptFolder)
	if !ok {
		return
	}

	found, err := h.DB.SetURL(r.Context(), id, caller.Email, url)
	if err != nil {
		config.ErrorStatus("failed to update receipt", http.StatusInternalServerError, w, err)
		return
	}
	if !found {
		config.ErrorStatus("receipt not found", http.StatusNotFound, w, fmt.Errorf("no receipt %s for %s", id, caller.Email))
		return
	}

	h.Hub.Broadcast()
	respondJSON(w, http.StatusOK, map[string]string{"id": id, "url": url})
}

// CreateCheckoutSessionHandler opens a card checkout and records the pending receipt it will settle
func (h Receipt) CreateCheckoutSessionHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := api.UserFromContext(r.Context())
	if !ok {
		config.ErrorStatus("unauthorized", http.StatusUnauthorized, w, errors.New("no user on request"))
		return
	}

	var req receiptRequest
	if err := decodeJSON(r, &req); err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}
	if req.Amount <= 0 {
		config.ErrorStatus("invalid contribution", http.StatusBadRequest, w, errors.New("amount must be greater than zero"))
		return
	}

	receipt := models.Receipt{
		ID:        uuid.NewString(),
		UserEmail: caller.Email,
		Amount:    req.Amount,
		Currency:  normalizeCurrency(req.Currency),
		Notes:     "card payment",
		Status:    models.ReceiptPending,
		Time:      time.Now().UTC(),
	}

	sess, err := h.Payments.CreateCheckoutSession(payments.CheckoutRequest{
		Amount:     receipt.Amount,
		Currency:   receipt.Currency,
		Email:      caller.Email,
		ReceiptID:  receipt.ID,
		SuccessURL: h.BaseURL + "/contribute?status=success&receipt=" + receipt.ID,
		CancelURL:  h.BaseURL + "/contribute?status=cancelled&receipt=" + receipt.ID,
	})
	if err != nil {
		code := http.StatusBadGateway
		if errors.Is(err, payments.ErrNotConfigured) {
			code = http.StatusServiceUnavailable
		}
		config.ErrorStatus("failed to create checkout session", code, w, err)
		return
	}

	receipt.StripeSessionID = sess.ID
	receipt.URL = sess.URL
	if _, err := h.DB.InsertOne(r.Context(), receipt); err != nil {
		config.ErrorStatus("failed to save receipt", http.StatusInternalServerError, w, err)
		return
	}

	h.ActDB.Log(r.Context(), models.ActivityContribution, caller.Email,
		fmt.Sprintf("%s started a card contribution of %.2f %s", caller.Email, receipt.Amount, receipt.Currency))
	h.Hub.Broadcast()

	respondJSON(w, http.StatusCreated, checkoutResponse{SessionID: sess.ID, URL: sess.URL, Receipt: receipt})
}

// uploadFormFile reads the multipart "file" field and uploads it. On failure
// the error response has already been written.
func uploadFormFile(w http.ResponseWriter, r *http.Request, up uploads.Uploader, folder string) (string, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize)
	if err := r.ParseMultipartForm(MaxUploadSize); err != nil {
		config.ErrorStatus("failed to parse upload", http.StatusBadRequest, w, err)
		return "", false
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		config.ErrorStatus("missing file", http.StatusBadRequest, w, err)
		return "", false
	}
	defer file.Close()

	url, err := up.Upload(r.Context(), file, folder)
	if err != nil {
		code := http.StatusBadGateway
		if errors.Is(err, uploads.ErrNotConfigured) {
			code = http.StatusServiceUnavailable
		}
		config.ErrorStatus("failed to upload file", code, w, err)
		return "", false
	}
	return url, true
}
