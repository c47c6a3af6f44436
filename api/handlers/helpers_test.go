package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/linesmerrill/victim-dao-api/api"
	"github.com/linesmerrill/victim-dao-api/api/testhelpers"
	"github.com/linesmerrill/victim-dao-api/databases"
	"github.com/linesmerrill/victim-dao-api/models"
)

const (
	testUserID    = "65f1c0ffee0000000000abcd"
	testUserEmail = "member@example.com"
	testAdmin     = "admin@example.com"
)

type countingNotifier struct {
	n int32
}

func (c *countingNotifier) Broadcast() { atomic.AddInt32(&c.n, 1) }

func (c *countingNotifier) Count() int { return int(atomic.LoadInt32(&c.n)) }

// activityDB returns an activity wrapper whose inserts always succeed
func activityDB(db *testhelpers.MockDB) databases.ActivityDatabase {
	db.Coll("activity").On("InsertOne", mock.Anything, mock.Anything).Return(testhelpers.Inserted("activity-id"), nil)
	return databases.NewActivityDatabase(db)
}

func jsonBody(t *testing.T, v interface{}) *bytes.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(b)
}

// newRequest builds a request carrying route vars and, when asUser is set, the signed in member
func newRequest(t *testing.T, method, target string, body interface{}, vars map[string]string, asUser bool) *http.Request {
	t.Helper()
	var req *http.Request
	if body == nil {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, jsonBody(t, body))
	}
	if vars != nil {
		req = mux.SetURLVars(req, vars)
	}
	if asUser {
		req = req.WithContext(api.WithUser(req.Context(), api.AuthUser{ID: testUserID, Email: testUserEmail}))
	}
	return req
}

// asAdmin marks the request as coming from a verified admin
func asAdmin(req *http.Request) *http.Request {
	return req.WithContext(api.WithAdmin(req.Context(), api.AuthAdmin{ID: "admin-id", Email: testAdmin, Roles: []string{"admin"}}))
}

func serve(h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeResponse(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), v), rr.Body.String())
}

// bsonRoundTrip pulls the user details back out of the document handed to InsertOne
func bsonRoundTrip(doc interface{}) (models.UserDetails, error) {
	var out struct {
		User models.UserDetails `bson:"user"`
	}
	b, err := bson.Marshal(doc)
	if err != nil {
		return out.User, err
	}
	err = bson.Unmarshal(b, &out)
	return out.User, err
}

func duplicateKeyError() error {
	return mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000, Message: "E11000 duplicate key error"}}}
}

func decodeBody(t *testing.T, res *http.Response, v interface{}) {
	t.Helper()
	defer res.Body.Close()
	require.NoError(t, json.NewDecoder(res.Body).Decode(v))
}
