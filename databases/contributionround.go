package databases

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/linesmerrill/victim-dao-api/models"
)

const (
	contributionRoundName = "contribution_rounds"
	contributionTimerName = "contribution_timer"
)

// ContributionRoundDatabase contains the methods to use with the
// contribution_rounds collection and its legacy timer mirror
type ContributionRoundDatabase interface {
	FindOne(ctx context.Context, filter interface{}) (*models.ContributionRound, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.ContributionRound, error)
	InsertOne(ctx context.Context, round models.ContributionRound) (InsertOneResultHelper, error)
	Save(ctx context.Context, round models.ContributionRound, fromStatus string) (bool, error)
	DeleteOne(ctx context.Context, id string) (bool, error)
	FindTimer(ctx context.Context) (*models.ContributionTimer, error)
	SaveTimer(ctx context.Context, timer models.ContributionTimer) error
}

type contributionRoundDatabase struct {
	db DatabaseHelper
}

// NewContributionRoundDatabase initializes a new instance of contribution round database
func NewContributionRoundDatabase(db DatabaseHelper) ContributionRoundDatabase {
	return &contributionRoundDatabase{
		db: db,
	}
}

func (c *contributionRoundDatabase) FindOne(ctx context.Context, filter interface{}) (*models.ContributionRound, error) {
	round := &models.ContributionRound{}
	err := c.db.Collection(contributionRoundName).FindOne(ctx, filter).Decode(&round)
	if err != nil {
		return nil, err
	}
	return round, nil
}

func (c *contributionRoundDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.ContributionRound, error) {
	var rounds []models.ContributionRound
	cursor, err := c.db.Collection(contributionRoundName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	err = cursor.Decode(&rounds)
	if err != nil {
		return nil, err
	}
	return rounds, nil
}

func (c *contributionRoundDatabase) InsertOne(ctx context.Context, round models.ContributionRound) (InsertOneResultHelper, error) {
	return c.db.Collection(contributionRoundName).InsertOne(ctx, round)
}

// Save writes the round's timing fields back, as long as nobody moved it out
// of fromStatus in the meantime
func (c *contributionRoundDatabase) Save(ctx context.Context, round models.ContributionRound, fromStatus string) (bool, error) {
	res, err := c.db.Collection(contributionRoundName).UpdateOne(ctx,
		bson.M{"_id": round.ID, "status": fromStatus},
		bson.M{"$set": bson.M{
			"status":      round.Status,
			"startTime":   round.StartTime,
			"endTime":     round.EndTime,
			"remainingMs": round.RemainingMs,
		}},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}

func (c *contributionRoundDatabase) DeleteOne(ctx context.Context, id string) (bool, error) {
	res, err := c.db.Collection(contributionRoundName).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return res.DeletedCount == 1, nil
}

func (c *contributionRoundDatabase) FindTimer(ctx context.Context) (*models.ContributionTimer, error) {
	timer := &models.ContributionTimer{}
	err := c.db.Collection(contributionTimerName).FindOne(ctx, bson.M{"_id": models.ContributionTimerID}).Decode(&timer)
	if err != nil {
		return nil, err
	}
	return timer, nil
}

// SaveTimer replaces the singleton mirror
func (c *contributionRoundDatabase) SaveTimer(ctx context.Context, timer models.ContributionTimer) error {
	timer.ID = models.ContributionTimerID
	_, err := c.db.Collection(contributionTimerName).UpdateOne(ctx,
		bson.M{"_id": models.ContributionTimerID},
		bson.M{"$set": bson.M{
			"roundId":     timer.RoundID,
			"name":        timer.Name,
			"status":      timer.Status,
			"endTime":     timer.EndTime,
			"remainingMs": timer.RemainingMs,
			"updatedAt":   timer.UpdatedAt,
		}},
		options.Update().SetUpsert(true),
	)
	return err
}

// ExpiredRunningRounds lists running rounds whose end time has passed
func ExpiredRunningRounds(ctx context.Context, c ContributionRoundDatabase, now time.Time) ([]models.ContributionRound, error) {
	return c.Find(ctx, bson.M{
		"status":  models.RoundRunning,
		"endTime": bson.M{"$ne": nil, "$lte": now},
	})
}
