package api_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/linesmerrill/victim-dao-api/api"
	"github.com/linesmerrill/victim-dao-api/api/testhelpers"
	"github.com/linesmerrill/victim-dao-api/databases"
	"github.com/linesmerrill/victim-dao-api/models"
)

func setupAuth(t *testing.T) primitive.ObjectID {
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	require.NoError(t, err)
	id := primitive.NewObjectID()
	user := models.User{ID: id, Details: models.UserDetails{Email: "member@example.com", Password: string(hash)}}

	db := testhelpers.NewMockDB()
	db.Coll("users").On("FindOne", mock.Anything, mock.Anything).Return(testhelpers.Decoded(user))

	m := api.MiddlewareDB{DB: databases.NewUserDatabase(db)}
	m.SetupGoGuardian()
	return id
}

func TestMiddleware_BasicThenBearer(t *testing.T) {
	id := setupAuth(t)
	m := api.MiddlewareDB{}
	tokenHandler := api.Middleware(http.HandlerFunc(m.CreateToken))

	req := httptest.NewRequest("POST", "/api/v1/auth/token", nil)
	req.SetBasicAuth("Member@Example.com", "correct-horse")
	rr := httptest.NewRecorder()
	tokenHandler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var issued map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &issued))
	assert.Equal(t, id.Hex(), issued["_id"])
	require.NotEmpty(t, issued["token"])

	var caller api.AuthUser
	protected := api.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller, _ = api.UserFromContext(r.Context())
	}))
	req = httptest.NewRequest("GET", "/api/v1/me", nil)
	req.Header.Set("Authorization", "Bearer "+issued["token"])
	rr = httptest.NewRecorder()
	protected.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "member@example.com", caller.Email)
	assert.Equal(t, id.Hex(), caller.ID)

	req = httptest.NewRequest("DELETE", "/api/v1/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+issued["token"])
	rr = httptest.NewRecorder()
	api.RevokeToken(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)

	req = httptest.NewRequest("GET", "/api/v1/me", nil)
	req.Header.Set("Authorization", "Bearer "+issued["token"])
	rr = httptest.NewRecorder()
	protected.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestMiddleware_WrongPassword(t *testing.T) {
	setupAuth(t)
	protected := api.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not run")
	}))

	req := httptest.NewRequest("GET", "/api/v1/me", nil)
	req.SetBasicAuth("member@example.com", "wrong")
	rr := httptest.NewRecorder()
	protected.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRevokeTokenWithoutHeader(t *testing.T) {
	setupAuth(t)
	rr := httptest.NewRecorder()
	api.RevokeToken(rr, httptest.NewRequest("DELETE", "/api/v1/auth/logout", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
