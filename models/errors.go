package models

import "errors"

// Domain errors returned by the model rules; handlers map them to status codes
var (
	ErrRoundNotActive    = errors.New("voting round is not active")
	ErrRoundExpired      = errors.New("voting round has ended")
	ErrUnknownOption     = errors.New("unknown option")
	ErrVoteLimitReached  = errors.New("vote limit reached for this round")
	ErrNoVotingRights    = errors.New("no voting rights remaining")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrInvalidStatus     = errors.New("unknown status")
	ErrUnknownCategory   = errors.New("unknown points category")
)
