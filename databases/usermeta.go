package databases

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/linesmerrill/victim-dao-api/models"
)

const userMetaName = "user_meta"

// UserMetaDatabase contains the methods to use with the user_meta collection
type UserMetaDatabase interface {
	FindOne(ctx context.Context, filter interface{}) (*models.UserMeta, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.UserMeta, error)
	EnsureMeta(ctx context.Context, email string) (*models.UserMeta, error)
	ConsumeVote(ctx context.Context, email string) (bool, error)
	RefundVote(ctx context.Context, email string) error
	AddPoints(ctx context.Context, email string, delta float64, category string) error
	SetVotesAllowed(ctx context.Context, email string, votesAllowed int) error
}

type userMetaDatabase struct {
	db                  DatabaseHelper
	defaultVotesAllowed int
}

// NewUserMetaDatabase initializes the user_meta wrapper. Metas created lazily
// start with defaultVotesAllowed voting rights.
func NewUserMetaDatabase(db DatabaseHelper, defaultVotesAllowed int) UserMetaDatabase {
	return &userMetaDatabase{
		db:                  db,
		defaultVotesAllowed: defaultVotesAllowed,
	}
}

func (u *userMetaDatabase) FindOne(ctx context.Context, filter interface{}) (*models.UserMeta, error) {
	meta := &models.UserMeta{}
	err := u.db.Collection(userMetaName).FindOne(ctx, filter).Decode(&meta)
	if err != nil {
		return nil, err
	}
	return meta, nil
}

func (u *userMetaDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.UserMeta, error) {
	var metas []models.UserMeta
	cursor, err := u.db.Collection(userMetaName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	err = cursor.Decode(&metas)
	if err != nil {
		return nil, err
	}
	return metas, nil
}

// EnsureMeta creates the defaults for email if they do not exist yet and
// returns the stored document
func (u *userMetaDatabase) EnsureMeta(ctx context.Context, email string) (*models.UserMeta, error) {
	email = models.NormalizeEmail(email)
	defaults := models.NewUserMeta(email, u.defaultVotesAllowed)
	_, err := u.db.Collection(userMetaName).UpdateOne(ctx,
		bson.M{"_id": email},
		bson.M{"$setOnInsert": defaults},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return nil, err
	}
	return u.FindOne(ctx, bson.M{"_id": email})
}

// ConsumeVote uses one voting right. It reports false when none are left.
func (u *userMetaDatabase) ConsumeVote(ctx context.Context, email string) (bool, error) {
	res, err := u.db.Collection(userMetaName).UpdateOne(ctx,
		bson.M{
			"_id":   models.NormalizeEmail(email),
			"$expr": bson.M{"$lt": bson.A{"$votesUsed", "$votesAllowed"}},
		},
		bson.M{"$inc": bson.M{"votesUsed": 1}},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}

// RefundVote gives back a right taken by ConsumeVote
func (u *userMetaDatabase) RefundVote(ctx context.Context, email string) error {
	_, err := u.db.Collection(userMetaName).UpdateOne(ctx,
		bson.M{"_id": models.NormalizeEmail(email), "votesUsed": bson.M{"$gt": 0}},
		bson.M{"$inc": bson.M{"votesUsed": -1}},
	)
	return err
}

// AddPoints moves the total and, when category is set, the matching bucket
func (u *userMetaDatabase) AddPoints(ctx context.Context, email string, delta float64, category string) error {
	field, err := models.PointsField(category)
	if err != nil {
		return err
	}
	inc := bson.M{"points": delta}
	if field != "" {
		inc[field] = delta
	}
	_, err = u.db.Collection(userMetaName).UpdateOne(ctx,
		bson.M{"_id": models.NormalizeEmail(email)},
		bson.M{"$inc": inc},
	)
	return err
}

func (u *userMetaDatabase) SetVotesAllowed(ctx context.Context, email string, votesAllowed int) error {
	_, err := u.db.Collection(userMetaName).UpdateOne(ctx,
		bson.M{"_id": models.NormalizeEmail(email)},
		bson.M{"$set": bson.M{"votesAllowed": votesAllowed}},
	)
	return err
}
