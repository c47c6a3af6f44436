package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/linesmerrill/victim-dao-api/config"
	"github.com/linesmerrill/victim-dao-api/databases"
	"github.com/linesmerrill/victim-dao-api/models"
)

// MinPasswordLength is the shortest password accepted on registration
const MinPasswordLength = 8

// Auth exists for the member registration handler
type Auth struct {
	UDB   databases.UserDatabase
	MDB   databases.UserMetaDatabase
	JDB   databases.JoinApplicationDatabase
	ActDB databases.ActivityDatabase
	Hub   Notifier
}

type registerRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// RegisterHandler creates a member account for someone holding a matching join application
func (a Auth) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.Email = models.NormalizeEmail(req.Email)
	if req.FirstName == "" || req.LastName == "" || req.Email == "" {
		config.ErrorStatus("invalid registration", http.StatusBadRequest, w, errors.New("firstName, lastName and email are required"))
		return
	}
	if len(req.Password) < MinPasswordLength {
		config.ErrorStatus("invalid registration", http.StatusBadRequest, w, fmt.Errorf("password must be at least %d characters", MinPasswordLength))
		return
	}

	eligible, err := isEligible(r, a.JDB, req.FirstName, req.LastName, req.Email)
	if err != nil {
		config.ErrorStatus("failed to check eligibility", http.StatusInternalServerError, w, err)
		return
	}
	if !eligible {
		config.ErrorStatus("registration not allowed", http.StatusForbidden, w, errors.New("no join application matches this name and email"))
		return
	}

	_, err = a.UDB.FindOne(r.Context(), bson.M{"user.email": req.Email})
	if err == nil {
		config.ErrorStatus("failed to register", http.StatusConflict, w, errors.New("user already exists"))
		return
	}
	if !databases.IsNotFound(err) {
		config.ErrorStatus("failed to check existing user", http.StatusInternalServerError, w, err)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		config.ErrorStatus("failed to hash password", http.StatusInternalServerError, w, err)
		return
	}

	details := models.UserDetails{
		Email:     req.Email,
		Name:      req.FirstName + " " + req.LastName,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  string(hash),
		Role:      models.RoleUser,
		CreatedAt: time.Now().UTC(),
	}
	res, err := a.UDB.InsertOne(r.Context(), details)
	if err != nil {
		if databases.IsDuplicateKey(err) {
			config.ErrorStatus("failed to register", http.StatusConflict, w, errors.New("user already exists"))
			return
		}
		config.ErrorStatus("failed to create user", http.StatusInternalServerError, w, err)
		return
	}

	meta, err := a.MDB.EnsureMeta(r.Context(), req.Email)
	if err != nil {
		config.ErrorStatus("failed to create user meta", http.StatusInternalServerError, w, err)
		return
	}

	user := models.User{Details: details}
	if id, ok := res.Decode().(primitive.ObjectID); ok {
		user.ID = id
	}

	a.ActDB.Log(r.Context(), models.ActivityRegister, req.Email, details.Name+" registered")
	a.Hub.Broadcast()

	respondJSON(w, http.StatusCreated, models.UserWithMeta{User: user, Meta: *meta})
}
