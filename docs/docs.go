// Package docs Victim DAO API.
//
// Documentation of the Victim DAO API.
//
//     Schemes: https
//     BasePath: /
//     Version: 1.0.0
//
//     Consumes:
//     - application/json
//
//     Produces:
//     - application/json
//
//     Security:
//     - basic
//     - bearer
//
//    SecurityDefinitions:
//    basic:
//      type: basic
//    bearer:
//      type: apiKey
//      name: Authorization
//      in: header
//
// swagger:meta
package docs

import (
	"github.com/linesmerrill/victim-dao-api/models"
)

// swagger:route GET /health health healthEndpointID
// Lists the healthchex of the web service api.
// responses:
//   200: healthResponse

// Shows the current health of the api. true means it is alive, false means it is not.
// swagger:response healthResponse
type healthResponseWrapper struct {
	// in:body
	Body models.HealthCheckResponse
}

// swagger:route GET /api/v1/votes votes listVotes
// Lists every voting round that is not a draft.
// responses:
//   200: votesResponse

// The visible voting rounds, newest first
// swagger:response votesResponse
type votesResponseWrapper struct {
	// in:body
	Body []models.Vote
}

// swagger:route POST /api/v1/votes/{vote_id}/submit votes submitVote
// Casts one ballot on an active round.
// responses:
//   200: voteResponse
//   403: errorResponse
//   409: errorResponse

// The round after the ballot was counted
// swagger:response voteResponse
type voteResponseWrapper struct {
	// in:body
	Body models.Vote
}

// swagger:route GET /api/v1/leaderboard users leaderboard
// Ranks members by points.
// responses:
//   200: leaderboardResponse

// Ranked members
// swagger:response leaderboardResponse
type leaderboardResponseWrapper struct {
	// in:body
	Body []models.LeaderboardEntry
}

// swagger:route GET /api/v1/contribution-timer contributions contributionTimer
// Returns the current contribution countdown.
// responses:
//   200: timerResponse

// The legacy timer with a live remainder
// swagger:response timerResponse
type timerResponseWrapper struct {
	// in:body
	Body models.ContributionTimer
}

// Error body shared by every failing request
// swagger:response errorResponse
type errorResponseWrapper struct {
	// in:body
	Body models.ErrorMessageResponse
}
