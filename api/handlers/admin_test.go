package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"

	"github.com/linesmerrill/victim-dao-api/api"
	"github.com/linesmerrill/victim-dao-api/api/handlers"
	"github.com/linesmerrill/victim-dao-api/databases"
	"github.com/linesmerrill/victim-dao-api/models"
)

// Minimal fake implementing databases.AdminDatabase
type fakeAdminDB struct {
	findOne func(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.AdminUser, error)
	updates *[]interface{}
}

func (f fakeAdminDB) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.AdminUser, error) {
	return f.findOne(ctx, filter, opts...)
}

func (f fakeAdminDB) InsertOne(ctx context.Context, admin models.AdminUser, opts ...*options.InsertOneOptions) (databases.InsertOneResultHelper, error) {
	return nil, nil
}

func (f fakeAdminDB) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	if f.updates != nil {
		*f.updates = append(*f.updates, update)
	}
	return &mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
}

func adminUser(t *testing.T, password string) *models.AdminUser {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	assert.NoError(t, err)
	return &models.AdminUser{
		ID:           primitive.NewObjectID(),
		Email:        "you@example.com",
		PasswordHash: string(hash),
		Active:       true,
		Roles:        []string{models.AdminRoleOwner, models.AdminRoleAdmin},
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
}

func adminLogin(h handlers.Admin, email, password string) *httptest.ResponseRecorder {
	body, _ := json.Marshal(map[string]string{"email": email, "password": password})
	req := httptest.NewRequest("POST", "/api/v1/admin/login", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	h.AdminLoginHandler(rr, req)
	return rr
}

func TestAdminLogin_Success(t *testing.T) {
	admin := adminUser(t, "strong-pass")
	var updates []interface{}
	h := handlers.Admin{
		ADB: fakeAdminDB{findOne: func(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.AdminUser, error) {
			return admin, nil
		}, updates: &updates},
		JWTSecret: []byte("test-secret"),
	}

	rr := adminLogin(h, " You@Example.com", "strong-pass")

	assert.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	if assert.Len(t, updates, 1) {
		set := updates[0].(bson.M)["$set"].(bson.M)
		assert.Contains(t, set, "lastLoginAt")
	}
	var resp struct {
		Token string `json:"token"`
		Admin struct {
			ID    string   `json:"id"`
			Email string   `json:"email"`
			Roles []string `json:"roles"`
		} `json:"admin"`
	}
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, admin.ID.Hex(), resp.Admin.ID)

	parsed, err := api.ParseAdminToken([]byte("test-secret"), resp.Token)
	assert.NoError(t, err)
	assert.Equal(t, admin.Email, parsed.Email)
	assert.Equal(t, admin.Roles, parsed.Roles)
}

func TestAdminLogin_WrongPassword(t *testing.T) {
	admin := adminUser(t, "strong-pass")
	h := handlers.Admin{
		ADB: fakeAdminDB{findOne: func(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.AdminUser, error) {
			return admin, nil
		}},
		JWTSecret: []byte("test-secret"),
	}

	rr := adminLogin(h, "you@example.com", "nope")

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Body.String(), "invalid credentials")
}

func TestAdminLogin_UnknownAdmin(t *testing.T) {
	h := handlers.Admin{
		ADB: fakeAdminDB{findOne: func(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.AdminUser, error) {
			return nil, mongo.ErrNoDocuments
		}},
		JWTSecret: []byte("test-secret"),
	}

	rr := adminLogin(h, "ghost@example.com", "whatever")

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAdminLogin_MissingFields(t *testing.T) {
	h := handlers.Admin{ADB: fakeAdminDB{findOne: func(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.AdminUser, error) {
		return nil, errors.New("should not be called")
	}}}

	rr := adminLogin(h, "", "")

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAdminLogin_NoSecret(t *testing.T) {
	admin := adminUser(t, "strong-pass")
	h := handlers.Admin{ADB: fakeAdminDB{findOne: func(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.AdminUser, error) {
		return admin, nil
	}}}

	rr := adminLogin(h, "you@example.com", "strong-pass")

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestAdminMeHandler(t *testing.T) {
	h := handlers.Admin{}

	rr := httptest.NewRecorder()
	h.AdminMeHandler(rr, httptest.NewRequest("GET", "/api/v1/admin/me", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = httptest.NewRecorder()
	h.AdminMeHandler(rr, asAdmin(httptest.NewRequest("GET", "/api/v1/admin/me", nil)))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), testAdmin)
}
