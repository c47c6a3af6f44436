package handlers_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/linesmerrill/victim-dao-api/api/handlers"
	"github.com/linesmerrill/victim-dao-api/api/testhelpers"
	"github.com/linesmerrill/victim-dao-api/databases"
	"github.com/linesmerrill/victim-dao-api/models"
)

func newUser(db *testhelpers.MockDB, hub *countingNotifier) handlers.User {
	return handlers.User{
		UDB:   databases.NewUserDatabase(db),
		MDB:   databases.NewUserMetaDatabase(db, 5),
		ActDB: activityDB(db),
		Hub:   hub,
	}
}

func member(email, name string) models.User {
	return models.User{Details: models.UserDetails{Email: email, Name: name}}
}

func TestUser_MeHandler(t *testing.T) {
	db := testhelpers.NewMockDB()
	db.Coll("users").On("FindOne", mock.Anything, bson.M{"user.email": testUserEmail}).Return(testhelpers.Decoded(member(testUserEmail, "Mem Ber")))
	withMeta(db, models.UserMeta{Email: testUserEmail, VotesAllowed: 5, VotesUsed: 2, Points: 12})

	rr := serve(newUser(db, &countingNotifier{}).MeHandler, newRequest(t, "GET", "/api/v1/me", nil, nil, true))

	assert.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var got models.UserWithMeta
	decodeResponse(t, rr, &got)
	assert.Equal(t, "Mem Ber", got.User.Details.Name)
	assert.Equal(t, 3, got.Meta.VotesRemaining())
}

func TestUser_MeHandlerUnauthorized(t *testing.T) {
	db := testhelpers.NewMockDB()
	rr := serve(newUser(db, &countingNotifier{}).MeHandler, newRequest(t, "GET", "/api/v1/me", nil, nil, false))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestUser_LeaderboardHandler(t *testing.T) {
	db := testhelpers.NewMockDB()
	metas := []models.UserMeta{
		{Email: "a@example.com", Points: 30, PointsVoting: 30},
		{Email: "b@example.com", Points: 20, PointsContribution: 20},
	}
	db.Coll("user_meta").On("Find", mock.Anything, bson.M{}, mock.Anything).Return(testhelpers.Cursor(metas), nil)
	db.Coll("users").On("Find", mock.Anything, mock.Anything).
		Return(testhelpers.Cursor([]models.User{member("a@example.com", "Alice"), member("b@example.com", "Bob")}), nil)

	rr := serve(newUser(db, &countingNotifier{}).LeaderboardHandler, newRequest(t, "GET", "/api/v1/leaderboard?limit=2", nil, nil, false))

	assert.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var board []models.LeaderboardEntry
	decodeResponse(t, rr, &board)
	if assert.Len(t, board, 2) {
		assert.Equal(t, 1, board[0].Rank)
		assert.Equal(t, "Alice", board[0].Name)
		assert.Equal(t, 2, board[1].Rank)
	}
}

func TestUser_LeaderboardHandlerBadCategory(t *testing.T) {
	db := testhelpers.NewMockDB()
	rr := serve(newUser(db, &countingNotifier{}).LeaderboardHandler, newRequest(t, "GET", "/api/v1/leaderboard?by=karma", nil, nil, false))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestUser_AdjustPointsHandler(t *testing.T) {
	db := testhelpers.NewMockDB()
	hub := &countingNotifier{}
	db.Coll("users").On("FindOne", mock.Anything, mock.Anything).Return(testhelpers.Decoded(member(testUserEmail, "Mem Ber")))
	withMeta(db, models.UserMeta{Email: testUserEmail, Points: 7, PointsReferral: 7})
	db.Coll("user_meta").On("UpdateOne", mock.Anything, mock.Anything, bson.M{"$inc": bson.M{"points": 7.0, "pointsReferral": 7.0}}).
		Return(testhelpers.Updated(1, 1), nil)

	req := asAdmin(newRequest(t, "PUT", "/api/v1/admin/users/member@example.com/points",
		map[string]interface{}{"delta": 7, "category": "referral"}, map[string]string{"email": testUserEmail}, false))
	rr := serve(newUser(db, hub).AdjustPointsHandler, req)

	assert.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, 1, hub.Count())
}

func TestUser_AdjustPointsHandlerValidation(t *testing.T) {
	tests := []struct {
		name string
		body map[string]interface{}
	}{
		{"zero delta", map[string]interface{}{"delta": 0}},
		{"unknown category", map[string]interface{}{"delta": 3, "category": "karma"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := testhelpers.NewMockDB()
			req := asAdmin(newRequest(t, "PUT", "/api/v1/admin/users/x/points", tt.body, map[string]string{"email": testUserEmail}, false))
			rr := serve(newUser(db, &countingNotifier{}).AdjustPointsHandler, req)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
		})
	}
}

func TestUser_AdjustPointsHandlerUnknownUser(t *testing.T) {
	db := testhelpers.NewMockDB()
	db.Coll("users").On("FindOne", mock.Anything, mock.Anything).Return(testhelpers.NotFound())

	req := asAdmin(newRequest(t, "PUT", "/api/v1/admin/users/ghost@example.com/points",
		map[string]interface{}{"delta": 1}, map[string]string{"email": "ghost@example.com"}, false))
	rr := serve(newUser(db, &countingNotifier{}).AdjustPointsHandler, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestUser_SetVotingRightsHandler(t *testing.T) {
	db := testhelpers.NewMockDB()
	db.Coll("users").On("FindOne", mock.Anything, mock.Anything).Return(testhelpers.Decoded(member(testUserEmail, "Mem Ber")))
	withMeta(db, models.UserMeta{Email: testUserEmail, VotesAllowed: 9})
	db.Coll("user_meta").On("UpdateOne", mock.Anything, mock.Anything, bson.M{"$set": bson.M{"votesAllowed": 9}}).
		Return(testhelpers.Updated(1, 1), nil)

	req := asAdmin(newRequest(t, "PUT", "/api/v1/admin/users/member@example.com/voting-rights",
		map[string]int{"votesAllowed": 9}, map[string]string{"email": testUserEmail}, false))
	rr := serve(newUser(db, &countingNotifier{}).SetVotingRightsHandler, req)

	assert.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Contains(t, rr.Body.String(), `"votesAllowed":9`)
}

func TestUser_SetVotingRightsHandlerNegative(t *testing.T) {
	db := testhelpers.NewMockDB()
	req := asAdmin(newRequest(t, "PUT", "/api/v1/admin/users/member@example.com/voting-rights",
		map[string]int{"votesAllowed": -1}, map[string]string{"email": testUserEmail}, false))
	rr := serve(newUser(db, &countingNotifier{}).SetVotingRightsHandler, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestUser_ListUsersHandler(t *testing.T) {
	db := testhelpers.NewMockDB()
	db.Coll("users").On("Find", mock.Anything, mock.Anything, mock.Anything).
		Return(testhelpers.Cursor([]models.User{member("a@example.com", "Alice"), member("b@example.com", "Bob")}), nil)
	db.Coll("user_meta").On("Find", mock.Anything, mock.Anything).
		Return(testhelpers.Cursor([]models.UserMeta{{Email: "a@example.com", Points: 4}}), nil)
	db.Coll("users").On("CountDocuments", mock.Anything, bson.M{}).Return(int64(2), nil)

	rr := serve(newUser(db, &countingNotifier{}).ListUsersHandler, asAdmin(newRequest(t, "GET", "/api/v1/admin/users", nil, nil, false)))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "2", rr.Header().Get("X-Total-Count"))
	var got []models.UserWithMeta
	decodeResponse(t, rr, &got)
	if assert.Len(t, got, 2) {
		assert.Equal(t, 4.0, got[0].Meta.Points)
		assert.Equal(t, "b@example.com", got[1].Meta.Email)
	}
}

func TestUser_ListUsersHandlerError(t *testing.T) {
	db := testhelpers.NewMockDB()
	db.Coll("users").On("Find", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("mocked-error"))

	rr := serve(newUser(db, &countingNotifier{}).ListUsersHandler, asAdmin(newRequest(t, "GET", "/api/v1/admin/users", nil, nil, false)))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}
