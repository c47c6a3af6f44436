package databases

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/linesmerrill/victim-dao-api/models"
)

const voteName = "votes"

// VoteDatabase contains the methods to use with the votes collection
type VoteDatabase interface {
	FindOne(ctx context.Context, filter interface{}) (*models.Vote, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Vote, error)
	InsertOne(ctx context.Context, vote models.Vote) (InsertOneResultHelper, error)
	UpdateDraft(ctx context.Context, id string, update bson.M) (bool, error)
	SetStatus(ctx context.Context, id string, from []string, update bson.M) (bool, error)
	RecordSubmission(ctx context.Context, vote models.Vote, voterKey, optionID string, now time.Time) (bool, error)
	CompleteExpired(ctx context.Context, now time.Time) (int64, error)
	DeleteOne(ctx context.Context, id string) (bool, error)
}

type voteDatabase struct {
	db DatabaseHelper
}

// NewVoteDatabase initializes a new instance of vote database with the provided db connection
func NewVoteDatabase(db DatabaseHelper) VoteDatabase {
	return &voteDatabase{
		db: db,
	}
}

func (v *voteDatabase) FindOne(ctx context.Context, filter interface{}) (*models.Vote, error) {
	vote := &models.Vote{}
	err := v.db.Collection(voteName).FindOne(ctx, filter).Decode(&vote)
	if err != nil {
		return nil, err
	}
	return vote, nil
}

func (v *voteDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Vote, error) {
	var votes []models.Vote
	cursor, err := v.db.Collection(voteName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	err = cursor.Decode(&votes)
	if err != nil {
		return nil, err
	}
	return votes, nil
}

func (v *voteDatabase) InsertOne(ctx context.Context, vote models.Vote) (InsertOneResultHelper, error) {
	return v.db.Collection(voteName).InsertOne(ctx, vote)
}

// UpdateDraft edits a round that has not been opened yet
func (v *voteDatabase) UpdateDraft(ctx context.Context, id string, update bson.M) (bool, error) {
	res, err := v.db.Collection(voteName).UpdateOne(ctx,
		bson.M{"_id": id, "status": models.VoteDraft},
		bson.M{"$set": update},
	)
	if err != nil {
		return false, err
	}
	return res.MatchedCount == 1, nil
}

// SetStatus moves a round out of one of the from statuses
func (v *voteDatabase) SetStatus(ctx context.Context, id string, from []string, update bson.M) (bool, error) {
	res, err := v.db.Collection(voteName).UpdateOne(ctx,
		bson.M{"_id": id, "status": bson.M{"$in": from}},
		bson.M{"$set": update},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}

// RecordSubmission counts one ballot for optionID. The filter repeats the
// submission guards so a round that closed or a voter that hit the limit
// between the read and this write is not counted.
func (v *voteDatabase) RecordSubmission(ctx context.Context, vote models.Vote, voterKey, optionID string, now time.Time) (bool, error) {
	submissionField := "submissions." + voterKey
	filter := bson.M{
		"_id":        vote.ID,
		"status":     models.VoteActive,
		"options.id": optionID,
		"$and": bson.A{
			bson.M{"$or": bson.A{
				bson.M{"endTime": nil},
				bson.M{"endTime": bson.M{"$gt": now}},
			}},
			bson.M{"$or": bson.A{
				bson.M{submissionField: bson.M{"$exists": false}},
				bson.M{submissionField: bson.M{"$lt": vote.MaxPerUser()}},
			}},
		},
	}
	update := bson.M{"$inc": bson.M{
		"options.$.votes": 1,
		"totalVotes":      1,
		submissionField:   1,
	}}
	res, err := v.db.Collection(voteName).UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}

// CompleteExpired closes every open round whose end time has passed
func (v *voteDatabase) CompleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := v.db.Collection(voteName).UpdateMany(ctx,
		bson.M{
			"status":  bson.M{"$in": bson.A{models.VoteActive, models.VotePaused}},
			"endTime": bson.M{"$ne": nil, "$lte": now},
		},
		bson.M{"$set": bson.M{"status": models.VoteCompleted}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

func (v *voteDatabase) DeleteOne(ctx context.Context, id string) (bool, error) {
	res, err := v.db.Collection(voteName).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return res.DeletedCount == 1, nil
}
