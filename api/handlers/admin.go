package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/linesmerrill/victim-dao-api/api"
	"github.com/linesmerrill/victim-dao-api/config"
	"github.com/linesmerrill/victim-dao-api/databases"
	"github.com/linesmerrill/victim-dao-api/models"
)

type adminLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type adminLoginResponse struct {
	Token string `json:"token"`
	Admin struct {
		ID    string   `json:"id"`
		Email string   `json:"email"`
		Roles []string `json:"roles"`
	} `json:"admin"`
}

// Admin represents the admin handler
type Admin struct {
	ADB       databases.AdminDatabase
	JWTSecret []byte
}

// AdminLoginHandler exchanges admin credentials for a signed admin token
func (h Admin) AdminLoginHandler(w http.ResponseWriter, r *http.Request) {
	var req adminLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}

	email := models.NormalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		config.ErrorStatus("email and password are required", http.StatusBadRequest, w, errors.New("empty credentials"))
		return
	}
	if len(h.JWTSecret) == 0 {
		config.ErrorStatus("admin login is not configured", http.StatusInternalServerError, w, errors.New("JWT_SECRET is not set"))
		return
	}

	admin, err := h.ADB.FindOne(r.Context(), bson.M{"email": email, "active": true})
	if err != nil {
		config.ErrorStatus("invalid credentials", http.StatusUnauthorized, w, err)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.Password)); err != nil {
		config.ErrorStatus("invalid credentials", http.StatusUnauthorized, w, err)
		return
	}

	now := time.Now().UTC()
	signed, err := api.IssueAdminToken(h.JWTSecret, *admin, now)
	if err != nil {
		config.ErrorStatus("failed to issue token", http.StatusInternalServerError, w, err)
		return
	}
	if _, err := h.ADB.UpdateOne(r.Context(), bson.M{"_id": admin.ID}, bson.M{"$set": bson.M{"lastLoginAt": now}}); err != nil {
		zap.S().Warnw("failed to record admin login", "admin", admin.Email, "error", err)
	}

	var resp adminLoginResponse
	resp.Token = signed
	resp.Admin.ID = admin.ID.Hex()
	resp.Admin.Email = admin.Email
	resp.Admin.Roles = admin.Roles
	respondJSON(w, http.StatusOK, resp)
}

// AdminMeHandler echoes the admin identified by the request token
func (h Admin) AdminMeHandler(w http.ResponseWriter, r *http.Request) {
	admin, ok := api.AdminFromContext(r.Context())
	if !ok {
		config.ErrorStatus("unauthorized", http.StatusUnauthorized, w, errors.New("no admin on request"))
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"id":    admin.ID,
		"email": admin.Email,
		"roles": admin.Roles,
	})
}
