package handlers

import (
	"errors"
	"net/http"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/linesmerrill/victim-dao-api/api"
	"github.com/linesmerrill/victim-dao-api/config"
	"github.com/linesmerrill/victim-dao-api/databases"
	"github.com/linesmerrill/victim-dao-api/models"
)

// Activity feed page sizes
const (
	DefaultActivityLimit = 50
	MaxActivityLimit     = 500
	MaxActivityPage      = 10000
)

// Activity exists for handlers reading the activity feed
type Activity struct {
	DB databases.ActivityDatabase
}

// MyActivityHandler returns the caller's own activity, newest first
func (a Activity) MyActivityHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := api.UserFromContext(r.Context())
	if !ok {
		config.ErrorStatus("unauthorized", http.StatusUnauthorized, w, errors.New("no user on request"))
		return
	}
	a.list(w, r, bson.M{"userEmail": caller.Email})
}

// ListActivityHandler returns the whole feed, optionally filtered by ?type=
func (a Activity) ListActivityHandler(w http.ResponseWriter, r *http.Request) {
	filter := bson.M{}
	if t := r.URL.Query().Get("type"); t != "" {
		filter["type"] = t
	}
	a.list(w, r, filter)
}

func (a Activity) list(w http.ResponseWriter, r *http.Request, filter bson.M) {
	limit := queryInt(r, "limit", DefaultActivityLimit, MaxActivityLimit)
	page := queryInt(r, "page", 1, MaxActivityPage)

	opts := databases.Page(limit, page).SetSort(bson.D{{Key: "time", Value: -1}})
	entries, err := a.DB.Find(r.Context(), filter, opts)
	if err != nil {
		config.ErrorStatus("failed to get activity", http.StatusInternalServerError, w, err)
		return
	}
	if entries == nil {
		entries = []models.Activity{}
	}
	respondJSON(w, http.StatusOK, entries)
}
