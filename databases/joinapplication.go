package databases

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/linesmerrill/victim-dao-api/models"
)

const joinApplicationName = "join_applications"

// JoinApplicationDatabase contains the methods to use with the join_applications collection
type JoinApplicationDatabase interface {
	FindOne(ctx context.Context, filter interface{}) (*models.JoinApplication, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.JoinApplication, error)
	Upsert(ctx context.Context, app models.JoinApplication) error
}

type joinApplicationDatabase struct {
	db DatabaseHelper
}

// NewJoinApplicationDatabase initializes a new instance of join application database
func NewJoinApplicationDatabase(db DatabaseHelper) JoinApplicationDatabase {
	return &joinApplicationDatabase{
		db: db,
	}
}

func (j *joinApplicationDatabase) FindOne(ctx context.Context, filter interface{}) (*models.JoinApplication, error) {
	app := &models.JoinApplication{}
	err := j.db.Collection(joinApplicationName).FindOne(ctx, filter).Decode(&app)
	if err != nil {
		return nil, err
	}
	return app, nil
}

func (j *joinApplicationDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.JoinApplication, error) {
	var apps []models.JoinApplication
	cursor, err := j.db.Collection(joinApplicationName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	err = cursor.Decode(&apps)
	if err != nil {
		return nil, err
	}
	return apps, nil
}

// Upsert keeps one application per email, the latest submission wins
func (j *joinApplicationDatabase) Upsert(ctx context.Context, app models.JoinApplication) error {
	_, err := j.db.Collection(joinApplicationName).UpdateOne(ctx,
		bson.M{"_id": app.Email},
		bson.M{"$set": bson.M{
			"firstName": app.FirstName,
			"lastName":  app.LastName,
			"details":   app.Details,
			"time":      app.Time,
		}},
		options.Update().SetUpsert(true),
	)
	return err
}
