package databases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/linesmerrill/victim-dao-api/databases"
	"github.com/linesmerrill/victim-dao-api/databases/mocks"
	"github.com/linesmerrill/victim-dao-api/models"
)

func newMetaMocks() (*mocks.DatabaseHelper, *mocks.CollectionHelper) {
	dbHelper := &mocks.DatabaseHelper{}
	collectionHelper := &mocks.CollectionHelper{}
	dbHelper.On("Collection", "user_meta").Return(collectionHelper)
	return dbHelper, collectionHelper
}

func TestUserMetaDatabase_EnsureMeta(t *testing.T) {
	dbHelper, collectionHelper := newMetaMocks()

	collectionHelper.On("UpdateOne", context.Background(),
		bson.M{"_id": "jane@example.com"},
		bson.M{"$setOnInsert": models.NewUserMeta("jane@example.com", 5)},
		mock.Anything,
	).Return(&mongo.UpdateResult{UpsertedCount: 1}, nil)

	sr := &mocks.SingleResultHelper{}
	sr.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.UserMeta)
		**arg = models.NewUserMeta("jane@example.com", 5)
	})
	collectionHelper.On("FindOne", context.Background(), bson.M{"_id": "jane@example.com"}).Return(sr)

	meta, err := databases.NewUserMetaDatabase(dbHelper, 5).EnsureMeta(context.Background(), " Jane@Example.com ")
	assert.NoError(t, err)
	assert.Equal(t, "jane@example.com", meta.Email)
	assert.Equal(t, 5, meta.VotesAllowed)
	assert.Equal(t, 5, meta.VotesRemaining())
}

func TestUserMetaDatabase_EnsureMetaError(t *testing.T) {
	dbHelper, collectionHelper := newMetaMocks()
	collectionHelper.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("mocked-error"))

	meta, err := databases.NewUserMetaDatabase(dbHelper, 5).EnsureMeta(context.Background(), "jane@example.com")
	assert.Nil(t, meta)
	assert.EqualError(t, err, "mocked-error")
}

func TestUserMetaDatabase_ConsumeVote(t *testing.T) {
	tests := []struct {
		name     string
		modified int64
		want     bool
	}{
		{name: "right available", modified: 1, want: true},
		{name: "no rights left", modified: 0, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dbHelper, collectionHelper := newMetaMocks()
			collectionHelper.On("UpdateOne", context.Background(),
				mock.MatchedBy(func(filter bson.M) bool {
					_, guarded := filter["$expr"]
					return filter["_id"] == "jane@example.com" && guarded
				}),
				bson.M{"$inc": bson.M{"votesUsed": 1}},
			).Return(&mongo.UpdateResult{MatchedCount: tt.modified, ModifiedCount: tt.modified}, nil)

			ok, err := databases.NewUserMetaDatabase(dbHelper, 5).ConsumeVote(context.Background(), "Jane@example.com")
			assert.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestUserMetaDatabase_AddPoints(t *testing.T) {
	dbHelper, collectionHelper := newMetaMocks()
	collectionHelper.On("UpdateOne", context.Background(),
		bson.M{"_id": "jane@example.com"},
		bson.M{"$inc": bson.M{"points": 12.5, "pointsContribution": 12.5}},
	).Return(&mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil)

	err := databases.NewUserMetaDatabase(dbHelper, 5).
		AddPoints(context.Background(), "jane@example.com", 12.5, models.PointsCategoryContribution)
	assert.NoError(t, err)
	collectionHelper.AssertExpectations(t)
}

func TestUserMetaDatabase_AddPointsUnknownCategory(t *testing.T) {
	dbHelper, collectionHelper := newMetaMocks()

	err := databases.NewUserMetaDatabase(dbHelper, 5).
		AddPoints(context.Background(), "jane@example.com", 1, "bonus")
	assert.Error(t, err)
	collectionHelper.AssertNotCalled(t, "UpdateOne", mock.Anything, mock.Anything, mock.Anything)
}
