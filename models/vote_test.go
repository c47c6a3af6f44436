package models_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/linesmerrill/victim-dao-api/models"
)

func activeVote(max int) models.Vote {
	return models.Vote{
		ID:     "round-1",
		Status: models.VoteActive,
		Options: []models.VoteOption{
			{ID: "a", Text: "Option A"},
			{ID: "b", Text: "Option B"},
		},
		MaxVotesPerUser: max,
		Submissions:     map[string]int{},
	}
}

func TestVote_CheckSubmissionLimit(t *testing.T) {
	now := time.Now()
	v := activeVote(2)

	assert.NoError(t, v.CheckSubmission("voter", "a", now))
	v.Apply("voter", "a")
	assert.NoError(t, v.CheckSubmission("voter", "b", now))
	v.Apply("voter", "b")

	assert.ErrorIs(t, v.CheckSubmission("voter", "a", now), models.ErrVoteLimitReached)
	assert.NoError(t, v.CheckSubmission("someone-else", "a", now))

	assert.Equal(t, 2, v.TotalVotes)
	assert.Equal(t, 1, v.Options[0].Votes)
	assert.Equal(t, 1, v.Options[1].Votes)
	assert.Equal(t, 2, v.SubmissionsBy("voter"))
}

func TestVote_CheckSubmissionDefaultsToOneVote(t *testing.T) {
	v := activeVote(0)
	v.Apply("voter", "a")

	assert.ErrorIs(t, v.CheckSubmission("voter", "b", time.Now()), models.ErrVoteLimitReached)
}

func TestVote_CheckSubmissionGuards(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Minute)

	paused := activeVote(1)
	paused.Status = models.VotePaused
	assert.ErrorIs(t, paused.CheckSubmission("voter", "a", now), models.ErrRoundNotActive)

	draft := activeVote(1)
	draft.Status = models.VoteDraft
	assert.ErrorIs(t, draft.CheckSubmission("voter", "a", now), models.ErrRoundNotActive)

	expired := activeVote(1)
	expired.EndTime = &past
	assert.ErrorIs(t, expired.CheckSubmission("voter", "a", now), models.ErrRoundExpired)

	v := activeVote(1)
	assert.ErrorIs(t, v.CheckSubmission("voter", "zzz", now), models.ErrUnknownOption)
}

func TestVote_ApplyOnNilSubmissions(t *testing.T) {
	v := activeVote(1)
	v.Submissions = nil
	v.Apply("voter", "b")

	assert.Equal(t, 1, v.Submissions["voter"])
}

func TestVote_CanTransition(t *testing.T) {
	cases := []struct {
		from, to string
		ok       bool
	}{
		{models.VoteDraft, models.VoteActive, true},
		{models.VoteDraft, models.VotePaused, false},
		{models.VoteDraft, models.VoteCompleted, false},
		{models.VoteActive, models.VotePaused, true},
		{models.VotePaused, models.VoteActive, true},
		{models.VoteActive, models.VoteCompleted, true},
		{models.VotePaused, models.VoteCompleted, true},
		{models.VoteCompleted, models.VoteActive, false},
	}
	for _, c := range cases {
		err := models.Vote{Status: c.from}.CanTransition(c.to)
		if c.ok {
			assert.NoError(t, err, "%s -> %s", c.from, c.to)
		} else {
			assert.ErrorIs(t, err, models.ErrInvalidTransition, "%s -> %s", c.from, c.to)
		}
	}

	assert.ErrorIs(t, models.Vote{Status: models.VoteActive}.CanTransition("archived"), models.ErrInvalidStatus)
}

func TestVoteSourceStatuses(t *testing.T) {
	from, err := models.VoteSourceStatuses(models.VoteCompleted)
	assert.NoError(t, err)
	assert.ElementsMatch(t, []string{models.VoteActive, models.VotePaused}, from)

	_, err = models.VoteSourceStatuses(models.VoteDraft)
	assert.ErrorIs(t, err, models.ErrInvalidStatus)
}
