package models

import "time"

// Activity types written by the handlers
const (
	ActivityRegister        = "register"
	ActivityJoinApplication = "join_application"
	ActivityContribution    = "contribution"
	ActivityReceipt         = "receipt"
	ActivityVote            = "vote"
	ActivityVoteRound       = "vote_round"
	ActivityContributionRnd = "contribution_round"
	ActivityWallet          = "wallet"
	ActivityPoints          = "points"
	ActivityVotingRights    = "voting_rights"
)

// Activity holds the structure for the append-only activity collection in mongo
type Activity struct {
	ID        string    `json:"id" bson:"_id"`
	Message   string    `json:"message" bson:"message"`
	Type      string    `json:"type" bson:"type"`
	UserEmail string    `json:"userEmail" bson:"userEmail"`
	Time      time.Time `json:"time" bson:"time"`
}
