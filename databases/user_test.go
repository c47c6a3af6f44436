package databases_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/linesmerrill/victim-dao-api/config"
	"github.com/linesmerrill/victim-dao-api/databases"
	"github.com/linesmerrill/victim-dao-api/databases/mocks"
	"github.com/linesmerrill/victim-dao-api/models"
)

func TestNewUserDatabase(t *testing.T) {
	os.Setenv("DB_URI", "mongodb://127.0.0.1:27017")
	os.Setenv("DB_NAME", "test")
	conf := config.New()

	dbClient, err := databases.NewClient(conf)
	assert.NoError(t, err)

	db := databases.NewDatabase(conf, dbClient)

	userDB := databases.NewUserDatabase(db)

	assert.NotEmpty(t, userDB)
}

func TestUserDatabase_FindOne(t *testing.T) {
	id := primitive.NewObjectID()

	dbHelper := &mocks.DatabaseHelper{}
	collectionHelper := &mocks.CollectionHelper{}
	srHelperErr := &mocks.SingleResultHelper{}
	srHelperCorrect := &mocks.SingleResultHelper{}

	srHelperErr.On("Decode", mock.Anything).Return(errors.New("mocked-error"))
	srHelperCorrect.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.User)
		(*arg).ID = id
	})

	collectionHelper.On("FindOne", context.Background(), bson.M{"error": true}).Return(srHelperErr)
	collectionHelper.On("FindOne", context.Background(), bson.M{"error": false}).Return(srHelperCorrect)
	dbHelper.On("Collection", "users").Return(collectionHelper)

	userDba := databases.NewUserDatabase(dbHelper)

	user, err := userDba.FindOne(context.Background(), bson.M{"error": true})
	assert.Empty(t, user)
	assert.EqualError(t, err, "mocked-error")

	user, err = userDba.FindOne(context.Background(), bson.M{"error": false})
	assert.NoError(t, err)
	assert.Equal(t, &models.User{ID: id}, user)
}

func TestUserDatabase_Find(t *testing.T) {
	id := primitive.NewObjectID()

	dbHelper := &mocks.DatabaseHelper{}
	collectionHelper := &mocks.CollectionHelper{}
	cursorErr := &mocks.CursorHelper{}
	cursorCorrect := &mocks.CursorHelper{}

	cursorErr.On("Decode", mock.Anything).Return(errors.New("mocked-error"))
	cursorCorrect.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(*[]models.User)
		*arg = []models.User{{ID: id}}
	})

	collectionHelper.On("Find", context.Background(), bson.M{"error": true}).Return(cursorErr, nil)
	collectionHelper.On("Find", context.Background(), bson.M{"error": false}).Return(cursorCorrect, nil)
	dbHelper.On("Collection", "users").Return(collectionHelper)

	userDba := databases.NewUserDatabase(dbHelper)

	users, err := userDba.Find(context.Background(), bson.M{"error": true})
	assert.Empty(t, users)
	assert.EqualError(t, err, "mocked-error")

	users, err = userDba.Find(context.Background(), bson.M{"error": false})
	assert.NoError(t, err)
	assert.Equal(t, []models.User{{ID: id}}, users)
}

func TestUserDatabase_InsertOneNestsDetails(t *testing.T) {
	dbHelper := &mocks.DatabaseHelper{}
	collectionHelper := &mocks.CollectionHelper{}
	dbHelper.On("Collection", "users").Return(collectionHelper)

	var inserted struct {
		User models.UserDetails `bson:"user"`
	}
	collectionHelper.On("InsertOne", context.Background(), mock.Anything).Return(&mocks.InsertOneResultHelper{}, nil).
		Run(func(args mock.Arguments) {
			raw, err := bson.Marshal(args.Get(1))
			assert.NoError(t, err)
			assert.NoError(t, bson.Unmarshal(raw, &inserted))
		})

	_, err := databases.NewUserDatabase(dbHelper).InsertOne(context.Background(), models.UserDetails{
		Email: "jane@example.com",
		Name:  "Jane Doe",
	})
	assert.NoError(t, err)

	assert.Equal(t, "jane@example.com", inserted.User.Email)
	assert.Equal(t, "Jane Doe", inserted.User.Name)
}
