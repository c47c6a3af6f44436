package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/linesmerrill/victim-dao-api/api"
	"github.com/linesmerrill/victim-dao-api/config"
	"github.com/linesmerrill/victim-dao-api/databases"
	"github.com/linesmerrill/victim-dao-api/models"
)

// Leaderboard page sizes
const (
	DefaultLeaderboardLimit = 10
	MaxLeaderboardLimit     = 100
)

// User exists for handlers dealing with members, their points and voting rights
type User struct {
	UDB   databases.UserDatabase
	MDB   databases.UserMetaDatabase
	ActDB databases.ActivityDatabase
	Hub   Notifier
}

type adjustPointsRequest struct {
	Delta    float64 `json:"delta"`
	Category string  `json:"category"`
}

type votingRightsRequest struct {
	VotesAllowed *int `json:"votesAllowed"`
}

// MeHandler returns the signed in member with their meta
func (u User) MeHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := api.UserFromContext(r.Context())
	if !ok {
		config.ErrorStatus("unauthorized", http.StatusUnauthorized, w, errors.New("no user on request"))
		return
	}
	user, err := u.UDB.FindOne(r.Context(), bson.M{"user.email": caller.Email})
	if err != nil {
		config.ErrorStatus("failed to get user", http.StatusNotFound, w, err)
		return
	}
	meta, err := u.MDB.EnsureMeta(r.Context(), caller.Email)
	if err != nil {
		config.ErrorStatus("failed to get user meta", http.StatusInternalServerError, w, err)
		return
	}
	respondJSON(w, http.StatusOK, models.UserWithMeta{User: *user, Meta: *meta})
}

// ListUsersHandler returns every member joined with their meta
func (u User) ListUsersHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	users, err := u.UDB.Find(ctx, bson.M{}, databases.Newest("user.createdAt"))
	if err != nil {
		config.ErrorStatus("failed to get users", http.StatusInternalServerError, w, err)
		return
	}
	metas, err := u.MDB.Find(ctx, bson.M{})
	if err != nil {
		config.ErrorStatus("failed to get user meta", http.StatusInternalServerError, w, err)
		return
	}
	total, err := u.UDB.CountDocuments(ctx, bson.M{})
	if err != nil {
		config.ErrorStatus("failed to count users", http.StatusInternalServerError, w, err)
		return
	}

	byEmail := make(map[string]models.UserMeta, len(metas))
	for _, m := range metas {
		byEmail[m.Email] = m
	}
	out := make([]models.UserWithMeta, 0, len(users))
	for _, user := range users {
		meta, ok := byEmail[user.Details.Email]
		if !ok {
			meta = models.UserMeta{Email: user.Details.Email}
		}
		out = append(out, models.UserWithMeta{User: user, Meta: meta})
	}
	w.Header().Set("X-Total-Count", strconv.FormatInt(total, 10))
	respondJSON(w, http.StatusOK, out)
}

// AdjustPointsHandler adds delta to a member's points, and to a bucket when a category is given
func (u User) AdjustPointsHandler(w http.ResponseWriter, r *http.Request) {
	email := models.NormalizeEmail(mux.Vars(r)["email"])

	var req adjustPointsRequest
	if err := decodeJSON(r, &req); err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}
	if req.Delta == 0 {
		config.ErrorStatus("invalid points adjustment", http.StatusBadRequest, w, errors.New("delta must not be zero"))
		return
	}
	if _, err := models.PointsField(req.Category); err != nil {
		config.ErrorStatus("invalid points adjustment", http.StatusBadRequest, w, err)
		return
	}
	if !u.userExists(w, r, email) {
		return
	}

	if _, err := u.MDB.EnsureMeta(r.Context(), email); err != nil {
		config.ErrorStatus("failed to get user meta", http.StatusInternalServerError, w, err)
		return
	}
	if err := u.MDB.AddPoints(r.Context(), email, req.Delta, req.Category); err != nil {
		config.ErrorStatus("failed to adjust points", http.StatusInternalServerError, w, err)
		return
	}
	meta, err := u.MDB.FindOne(r.Context(), bson.M{"_id": email})
	if err != nil {
		config.ErrorStatus("failed to get user meta", http.StatusInternalServerError, w, err)
		return
	}

	msg := fmt.Sprintf("%+g points for %s", req.Delta, email)
	if req.Category != "" {
		msg += " (" + req.Category + ")"
	}
	u.ActDB.Log(r.Context(), models.ActivityPoints, email, msg)
	u.Hub.Broadcast()

	respondJSON(w, http.StatusOK, meta)
}

// SetVotingRightsHandler replaces how many votes a member may cast in total
func (u User) SetVotingRightsHandler(w http.ResponseWriter, r *http.Request) {
	email := models.NormalizeEmail(mux.Vars(r)["email"])

	var req votingRightsRequest
	if err := decodeJSON(r, &req); err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}
	if req.VotesAllowed == nil || *req.VotesAllowed < 0 {
		config.ErrorStatus("invalid voting rights", http.StatusBadRequest, w, errors.New("votesAllowed must be zero or more"))
		return
	}
	if !u.userExists(w, r, email) {
		return
	}

	if _, err := u.MDB.EnsureMeta(r.Context(), email); err != nil {
		config.ErrorStatus("failed to get user meta", http.StatusInternalServerError, w, err)
		return
	}
	if err := u.MDB.SetVotesAllowed(r.Context(), email, *req.VotesAllowed); err != nil {
		config.ErrorStatus("failed to set voting rights", http.StatusInternalServerError, w, err)
		return
	}
	meta, err := u.MDB.FindOne(r.Context(), bson.M{"_id": email})
	if err != nil {
		config.ErrorStatus("failed to get user meta", http.StatusInternalServerError, w, err)
		return
	}

	u.ActDB.Log(r.Context(), models.ActivityVotingRights, email,
		fmt.Sprintf("voting rights for %s set to %d", email, *req.VotesAllowed))
	u.Hub.Broadcast()

	respondJSON(w, http.StatusOK, meta)
}

// LeaderboardHandler ranks members by total points or by one bucket
func (u User) LeaderboardHandler(w http.ResponseWriter, r *http.Request) {
	field, err := models.LeaderboardField(r.URL.Query().Get("by"))
	if err != nil {
		config.ErrorStatus("invalid leaderboard", http.StatusBadRequest, w, err)
		return
	}
	limit := queryInt(r, "limit", DefaultLeaderboardLimit, MaxLeaderboardLimit)

	opts := options.Find().
		SetSort(bson.D{{Key: field, Value: -1}, {Key: "_id", Value: 1}}).
		SetLimit(int64(limit))
	metas, err := u.MDB.Find(r.Context(), bson.M{}, opts)
	if err != nil {
		config.ErrorStatus("failed to get leaderboard", http.StatusInternalServerError, w, err)
		return
	}

	emails := make([]string, 0, len(metas))
	for _, m := range metas {
		emails = append(emails, m.Email)
	}
	names := map[string]string{}
	if len(emails) > 0 {
		users, err := u.UDB.Find(r.Context(), bson.M{"user.email": bson.M{"$in": emails}})
		if err != nil {
			config.ErrorStatus("failed to get users", http.StatusInternalServerError, w, err)
			return
		}
		for _, user := range users {
			names[user.Details.Email] = user.Details.Name
		}
	}

	board := make([]models.LeaderboardEntry, 0, len(metas))
	for i, m := range metas {
		board = append(board, models.LeaderboardEntry{
			Rank:               i + 1,
			Email:              m.Email,
			Name:               names[m.Email],
			Points:             m.Points,
			PointsVoting:       m.PointsVoting,
			PointsContribution: m.PointsContribution,
			PointsReferral:     m.PointsReferral,
		})
	}
	respondJSON(w, http.StatusOK, board)
}

func (u User) userExists(w http.ResponseWriter, r *http.Request, email string) bool {
	_, err := u.UDB.FindOne(r.Context(), bson.M{"user.email": email})
	if err == nil {
		return true
	}
	if databases.IsNotFound(err) {
		config.ErrorStatus("user not found", http.StatusNotFound, w, err)
		return false
	}
	config.ErrorStatus("failed to get user", http.StatusInternalServerError, w, err)
	return false
}
