package databases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/linesmerrill/victim-dao-api/databases"
	"github.com/linesmerrill/victim-dao-api/databases/mocks"
	"github.com/linesmerrill/victim-dao-api/models"
)

func TestReceiptDatabase_Transition(t *testing.T) {
	from := []string{models.ReceiptPending}
	update := bson.M{"status": models.ReceiptVerified, "verified": true}
	filter := bson.M{"_id": "r-1", "status": bson.M{"$in": from}, "verified": false}

	tests := []struct {
		name    string
		result  *mongo.UpdateResult
		err     error
		want    bool
		wantErr string
	}{
		{name: "applied", result: &mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, want: true},
		{name: "already moved", result: &mongo.UpdateResult{}, want: false},
		{name: "driver error", err: errors.New("mocked-error"), wantErr: "mocked-error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dbHelper := &mocks.DatabaseHelper{}
			collectionHelper := &mocks.CollectionHelper{}
			dbHelper.On("Collection", "receipts").Return(collectionHelper)
			collectionHelper.On("UpdateOne", context.Background(), filter, bson.M{"$set": update}).
				Return(tt.result, tt.err)

			ok, err := databases.NewReceiptDatabase(dbHelper).Transition(context.Background(), "r-1", from, update)
			if tt.wantErr != "" {
				assert.EqualError(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestReceiptDatabase_SetURLScopedToOwner(t *testing.T) {
	dbHelper := &mocks.DatabaseHelper{}
	collectionHelper := &mocks.CollectionHelper{}
	dbHelper.On("Collection", "receipts").Return(collectionHelper)
	collectionHelper.On("UpdateOne", context.Background(),
		bson.M{"_id": "r-1", "userEmail": "jane@example.com"},
		bson.M{"$set": bson.M{"url": "https://cdn.example.com/proof.png"}},
	).Return(&mongo.UpdateResult{}, nil)

	ok, err := databases.NewReceiptDatabase(dbHelper).
		SetURL(context.Background(), "r-1", "jane@example.com", "https://cdn.example.com/proof.png")
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestReceiptDatabase_RevertVerification(t *testing.T) {
	dbHelper := &mocks.DatabaseHelper{}
	collectionHelper := &mocks.CollectionHelper{}
	dbHelper.On("Collection", "receipts").Return(collectionHelper)
	collectionHelper.On("UpdateOne", context.Background(),
		bson.M{"_id": "r-1", "status": models.ReceiptVerified, "verified": true},
		bson.M{
			"$set":   bson.M{"status": models.ReceiptAccepted, "verified": false},
			"$unset": bson.M{"verifiedAt": ""},
		},
	).Return(&mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil)

	err := databases.NewReceiptDatabase(dbHelper).RevertVerification(context.Background(), "r-1", models.ReceiptAccepted)
	assert.NoError(t, err)
	collectionHelper.AssertExpectations(t)
}
