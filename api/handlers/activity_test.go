package handlers_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/linesmerrill/victim-dao-api/api"
	"github.com/linesmerrill/victim-dao-api/api/handlers"
	"github.com/linesmerrill/victim-dao-api/api/testhelpers"
	"github.com/linesmerrill/victim-dao-api/databases"
	"github.com/linesmerrill/victim-dao-api/models"
)

func TestActivity_MyActivityHandler(t *testing.T) {
	db := testhelpers.NewMockDB()
	entries := []models.Activity{{ID: "a1", Type: models.ActivityVote, UserEmail: testUserEmail, Time: time.Now()}}
	db.Coll("activity").On("Find", mock.Anything, bson.M{"userEmail": testUserEmail}, mock.MatchedBy(func(o *options.FindOptions) bool {
		return o.Limit != nil && *o.Limit == handlers.DefaultActivityLimit && o.Skip != nil && *o.Skip == 0
	})).Return(testhelpers.Cursor(entries), nil)

	h := handlers.Activity{DB: databases.NewActivityDatabase(db)}
	rr := serve(h.MyActivityHandler, newRequest(t, "GET", "/api/v1/activity/mine", nil, nil, true))

	assert.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var got []models.Activity
	decodeResponse(t, rr, &got)
	assert.Len(t, got, 1)
}

func TestActivity_ListActivityHandlerPaging(t *testing.T) {
	db := testhelpers.NewMockDB()
	db.Coll("activity").On("Find", mock.Anything, bson.M{"type": models.ActivityReceipt}, mock.MatchedBy(func(o *options.FindOptions) bool {
		return *o.Limit == 20 && *o.Skip == 40
	})).Return(testhelpers.Cursor([]models.Activity(nil)), nil)

	h := handlers.Activity{DB: databases.NewActivityDatabase(db)}
	rr := serve(h.ListActivityHandler, asAdmin(newRequest(t, "GET", "/api/v1/admin/activity?type=receipt&limit=20&page=3", nil, nil, false)))

	assert.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "[]", rr.Body.String())
}

func TestActivity_ListActivityHandlerClampsPage(t *testing.T) {
	db := testhelpers.NewMockDB()
	db.Coll("activity").On("Find", mock.Anything, bson.M{}, mock.MatchedBy(func(o *options.FindOptions) bool {
		return *o.Limit == 10 && *o.Skip == int64(handlers.MaxActivityPage-1)*10
	})).Return(testhelpers.Cursor([]models.Activity(nil)), nil)

	h := handlers.Activity{DB: databases.NewActivityDatabase(db)}
	rr := serve(h.ListActivityHandler, asAdmin(newRequest(t, "GET", "/api/v1/admin/activity?limit=10&page=9223372036854775807", nil, nil, false)))

	assert.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
}

func TestMetrics_MetricsHandler(t *testing.T) {
	mc := api.NewMetricsCollector()
	now := time.Now()
	mc.Record("GET", "/api/v1/votes", http.StatusOK, 5*time.Millisecond, now)
	mc.Record("POST", "/api/v1/votes/{vote_id}/submit", http.StatusConflict, 50*time.Millisecond, now)

	h := handlers.Metrics{Collector: mc}
	rr := serve(h.MetricsHandler, asAdmin(newRequest(t, "GET", "/api/v1/admin/metrics?limit=1", nil, nil, false)))

	assert.Equal(t, http.StatusOK, rr.Code)
	var got struct {
		Summary api.Summary `json:"summary"`
		Routes  struct {
			All        []map[string]interface{} `json:"all"`
			Slowest    []map[string]interface{} `json:"slowest"`
			TotalCount int                      `json:"totalCount"`
		} `json:"routes"`
	}
	decodeResponse(t, rr, &got)
	assert.Equal(t, int64(2), got.Summary.TotalRequests)
	assert.Equal(t, int64(1), got.Summary.TotalErrors)
	assert.Equal(t, 2, got.Routes.TotalCount)
	if assert.Len(t, got.Routes.Slowest, 1) {
		assert.Equal(t, "/api/v1/votes/{vote_id}/submit", got.Routes.Slowest[0]["path"])
	}
}
