package databases

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/linesmerrill/victim-dao-api/models"
)

const activityName = "activity"

// ActivityDatabase contains the methods to use with the activity log
type ActivityDatabase interface {
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Activity, error)
	InsertOne(ctx context.Context, activity models.Activity) (InsertOneResultHelper, error)
	Log(ctx context.Context, activityType, userEmail, message string)
}

type activityDatabase struct {
	db DatabaseHelper
}

// NewActivityDatabase initializes a new instance of activity database with the provided db connection
func NewActivityDatabase(db DatabaseHelper) ActivityDatabase {
	return &activityDatabase{
		db: db,
	}
}

func (a *activityDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Activity, error) {
	var entries []models.Activity
	cursor, err := a.db.Collection(activityName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	err = cursor.Decode(&entries)
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (a *activityDatabase) InsertOne(ctx context.Context, activity models.Activity) (InsertOneResultHelper, error) {
	return a.db.Collection(activityName).InsertOne(ctx, activity)
}

// Log appends an entry. The write is best effort: a failure is logged and
// never reaches the caller.
func (a *activityDatabase) Log(ctx context.Context, activityType, userEmail, message string) {
	entry := models.Activity{
		ID:        uuid.NewString(),
		Message:   message,
		Type:      activityType,
		UserEmail: userEmail,
		Time:      time.Now().UTC(),
	}
	if _, err := a.InsertOne(ctx, entry); err != nil {
		zap.S().Warnw("failed to write activity",
			"type", activityType,
			"email", userEmail,
			"error", err,
		)
	}
}
