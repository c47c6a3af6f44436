package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/linesmerrill/victim-dao-api/config"
	"github.com/linesmerrill/victim-dao-api/databases"
	"github.com/linesmerrill/victim-dao-api/mailer"
	"github.com/linesmerrill/victim-dao-api/models"
	templates "github.com/linesmerrill/victim-dao-api/templates/html"
)

// JoinApplication exists for handlers dealing with join applications
type JoinApplication struct {
	DB    databases.JoinApplicationDatabase
	ActDB databases.ActivityDatabase
	Mail  mailer.Mailer
	Hub   Notifier
}

type joinApplicationRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Details   string `json:"details"`
}

func (req joinApplicationRequest) normalize() (joinApplicationRequest, error) {
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.Email = models.NormalizeEmail(req.Email)
	req.Details = strings.TrimSpace(req.Details)
	if req.FirstName == "" || req.LastName == "" || req.Email == "" {
		return req, errors.New("firstName, lastName and email are required")
	}
	return req, nil
}

// SubmitJoinApplicationHandler stores the application, one per email
func (j JoinApplication) SubmitJoinApplicationHandler(w http.ResponseWriter, r *http.Request) {
	var req joinApplicationRequest
	if err := decodeJSON(r, &req); err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}
	req, err := req.normalize()
	if err != nil {
		config.ErrorStatus("invalid join application", http.StatusBadRequest, w, err)
		return
	}

	app := models.JoinApplication{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Details:   req.Details,
		Time:      time.Now().UTC(),
	}
	if err := j.DB.Upsert(r.Context(), app); err != nil {
		config.ErrorStatus("failed to save join application", http.StatusInternalServerError, w, err)
		return
	}

	j.ActDB.Log(r.Context(), models.ActivityJoinApplication, app.Email,
		app.FirstName+" "+app.LastName+" applied to join")
	mailer.SendAsync(j.Mail, app.Email, templates.JoinApplicationSubject, templates.JoinApplicationBody(app.FirstName))
	j.Hub.Broadcast()

	respondJSON(w, http.StatusCreated, app)
}

// CheckEligibilityHandler reports whether a matching application exists
func (j JoinApplication) CheckEligibilityHandler(w http.ResponseWriter, r *http.Request) {
	var req joinApplicationRequest
	if err := decodeJSON(r, &req); err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}

	eligible, err := isEligible(r, j.DB, req.FirstName, req.LastName, req.Email)
	if err != nil {
		config.ErrorStatus("failed to check eligibility", http.StatusInternalServerError, w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"eligible": eligible})
}

// ListJoinApplicationsHandler returns every application, newest first
func (j JoinApplication) ListJoinApplicationsHandler(w http.ResponseWriter, r *http.Request) {
	apps, err := j.DB.Find(r.Context(), bson.M{}, databases.Newest("time"))
	if err != nil {
		config.ErrorStatus("failed to get join applications", http.StatusInternalServerError, w, err)
		return
	}
	if apps == nil {
		apps = []models.JoinApplication{}
	}
	respondJSON(w, http.StatusOK, apps)
}

func isEligible(r *http.Request, db databases.JoinApplicationDatabase, firstName, lastName, email string) (bool, error) {
	email = models.NormalizeEmail(email)
	if email == "" {
		return false, nil
	}
	app, err := db.FindOne(r.Context(), bson.M{"_id": email})
	if err != nil {
		if databases.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return app.Matches(firstName, lastName, email), nil
}
