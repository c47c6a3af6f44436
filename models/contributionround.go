package models

import (
	"fmt"
	"time"
)

// Contribution round statuses
const (
	RoundRunning = "running"
	RoundPaused  = "paused"
	RoundStopped = "stopped"
)

// MaxRoundDuration is the longest a contribution round may run
const MaxRoundDuration = 366 * 24 * time.Hour

// ContributionTimerID is the _id of the singleton legacy timer document
const ContributionTimerID = "current"

// ContributionRound holds the structure for the contribution_rounds collection in mongo
type ContributionRound struct {
	ID          string     `json:"id" bson:"_id"`
	Name        string     `json:"name" bson:"name"`
	Description string     `json:"description" bson:"description"`
	StartTime   *time.Time `json:"startTime,omitempty" bson:"startTime,omitempty"`
	EndTime     *time.Time `json:"endTime,omitempty" bson:"endTime,omitempty"`
	Status      string     `json:"status" bson:"status"`
	RemainingMs int64      `json:"remainingMs" bson:"remainingMs"`
	CreatedAt   time.Time  `json:"createdAt" bson:"createdAt"`
}

// ContributionTimer is the single timer object older clients still read. It
// mirrors whichever round changed state last.
type ContributionTimer struct {
	ID          string     `json:"-" bson:"_id"`
	RoundID     string     `json:"roundId" bson:"roundId"`
	Name        string     `json:"name" bson:"name"`
	Status      string     `json:"status" bson:"status"`
	EndTime     *time.Time `json:"endTime,omitempty" bson:"endTime,omitempty"`
	RemainingMs int64      `json:"remainingMs" bson:"remainingMs"`
	UpdatedAt   time.Time  `json:"updatedAt" bson:"updatedAt"`
}

// NewContributionRound creates a paused round holding its full duration
func NewContributionRound(id, name, description string, duration time.Duration, now time.Time) ContributionRound {
	return ContributionRound{
		ID:          id,
		Name:        name,
		Description: description,
		Status:      RoundPaused,
		RemainingMs: duration.Milliseconds(),
		CreatedAt:   now,
	}
}

// Start runs a paused round for whatever duration it still holds. Resuming is
// the same operation: the end time is rebuilt from the frozen remainder.
func (r *ContributionRound) Start(now time.Time) error {
	if r.Status != RoundPaused {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, r.Status, RoundRunning)
	}
	if r.StartTime == nil {
		start := now
		r.StartTime = &start
	}
	end := now.Add(time.Duration(r.RemainingMs) * time.Millisecond)
	r.EndTime = &end
	r.Status = RoundRunning
	return nil
}

// Pause freezes the time left so a later Start continues from it
func (r *ContributionRound) Pause(now time.Time) error {
	if r.Status != RoundRunning {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, r.Status, RoundPaused)
	}
	r.RemainingMs = r.Remaining(now).Milliseconds()
	r.Status = RoundPaused
	return nil
}

// Stop ends the round for good
func (r *ContributionRound) Stop(now time.Time) error {
	if r.Status == RoundStopped {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, r.Status, RoundStopped)
	}
	if r.Status == RoundRunning && (r.EndTime == nil || now.Before(*r.EndTime)) {
		end := now
		r.EndTime = &end
	}
	r.RemainingMs = 0
	r.Status = RoundStopped
	return nil
}

// Remaining returns the live time left on the round
func (r ContributionRound) Remaining(now time.Time) time.Duration {
	switch r.Status {
	case RoundRunning:
		if r.EndTime == nil {
			return 0
		}
		left := r.EndTime.Sub(now)
		if left < 0 {
			return 0
		}
		return left
	case RoundPaused:
		return time.Duration(r.RemainingMs) * time.Millisecond
	}
	return 0
}

// Timer builds the legacy mirror for this round
func (r ContributionRound) Timer(now time.Time) ContributionTimer {
	return ContributionTimer{
		ID:          ContributionTimerID,
		RoundID:     r.ID,
		Name:        r.Name,
		Status:      r.Status,
		EndTime:     r.EndTime,
		RemainingMs: r.Remaining(now).Milliseconds(),
		UpdatedAt:   now,
	}
}

// LiveRemainingMs recomputes the remainder on a stored timer. Running timers
// count down from their end time, everything else reports the frozen value.
func (t ContributionTimer) LiveRemainingMs(now time.Time) int64 {
	if t.Status != RoundRunning {
		return t.RemainingMs
	}
	if t.EndTime == nil {
		return 0
	}
	left := t.EndTime.Sub(now).Milliseconds()
	if left < 0 {
		return 0
	}
	return left
}
