package models

import (
	"fmt"
	"time"
)

// Vote round statuses
const (
	VoteDraft     = "draft"
	VoteActive    = "active"
	VotePaused    = "paused"
	VoteCompleted = "completed"
)

// VoteOption is a single choice on a voting round
type VoteOption struct {
	ID    string `json:"id" bson:"id"`
	Text  string `json:"text" bson:"text"`
	Votes int    `json:"votes" bson:"votes"`
}

// Vote holds the structure for the votes collection in mongo. Each document is
// one admin-defined voting round.
type Vote struct {
	ID              string         `json:"id" bson:"_id"`
	Title           string         `json:"title" bson:"title"`
	Description     string         `json:"description" bson:"description"`
	Options         []VoteOption   `json:"options" bson:"options"`
	Status          string         `json:"status" bson:"status"`
	StartTime       *time.Time     `json:"startTime,omitempty" bson:"startTime,omitempty"`
	EndTime         *time.Time     `json:"endTime,omitempty" bson:"endTime,omitempty"`
	TotalVotes      int            `json:"totalVotes" bson:"totalVotes"`
	PointsReward    float64        `json:"pointsReward" bson:"pointsReward"`
	MaxVotesPerUser int            `json:"maxVotesPerUser" bson:"maxVotesPerUser"`
	Submissions     map[string]int `json:"submissions" bson:"submissions"`
	CreatedAt       time.Time      `json:"createdAt" bson:"createdAt"`
}

var voteTransitions = map[string][]string{
	VoteDraft:  {VoteActive},
	VoteActive: {VotePaused, VoteCompleted},
	VotePaused: {VoteActive, VoteCompleted},
}

// VoteSourceStatuses returns every status a round may be in for it to move to target
func VoteSourceStatuses(target string) ([]string, error) {
	switch target {
	case VoteActive, VotePaused, VoteCompleted:
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, target)
	}
	var from []string
	for src, dests := range voteTransitions {
		for _, d := range dests {
			if d == target {
				from = append(from, src)
			}
		}
	}
	return from, nil
}

// CanTransition reports whether the round may move to the given status
func (v Vote) CanTransition(to string) error {
	if _, err := VoteSourceStatuses(to); err != nil {
		return err
	}
	for _, d := range voteTransitions[v.Status] {
		if d == to {
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, v.Status, to)
}

// MaxPerUser falls back to a single vote when the round was saved without a limit
func (v Vote) MaxPerUser() int {
	if v.MaxVotesPerUser <= 0 {
		return 1
	}
	return v.MaxVotesPerUser
}

// IsExpired is true once the end time has been reached
func (v Vote) IsExpired(now time.Time) bool {
	return v.EndTime != nil && !now.Before(*v.EndTime)
}

// HasOption reports whether optionID belongs to the round
func (v Vote) HasOption(optionID string) bool {
	for _, o := range v.Options {
		if o.ID == optionID {
			return true
		}
	}
	return false
}

// SubmissionsBy returns how many votes the voter has cast on this round
func (v Vote) SubmissionsBy(voterKey string) int {
	return v.Submissions[voterKey]
}

// CheckSubmission applies the vote guards in order: the round must be active
// and not expired, the option must exist and the voter must be under the
// per-user limit.
func (v Vote) CheckSubmission(voterKey, optionID string, now time.Time) error {
	if v.Status != VoteActive {
		return ErrRoundNotActive
	}
	if v.IsExpired(now) {
		return ErrRoundExpired
	}
	if !v.HasOption(optionID) {
		return ErrUnknownOption
	}
	if v.SubmissionsBy(voterKey) >= v.MaxPerUser() {
		return ErrVoteLimitReached
	}
	return nil
}

// Apply records a vote in memory. Persistence does the same through $inc.
func (v *Vote) Apply(voterKey, optionID string) {
	for i := range v.Options {
		if v.Options[i].ID == optionID {
			v.Options[i].Votes++
		}
	}
	v.TotalVotes++
	if v.Submissions == nil {
		v.Submissions = map[string]int{}
	}
	v.Submissions[voterKey]++
}
