package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/linesmerrill/victim-dao-api/config"
	"github.com/linesmerrill/victim-dao-api/databases"
	"github.com/linesmerrill/victim-dao-api/models"
)

// ContributionRound exists for handlers dealing with contribution rounds and the public timer
type ContributionRound struct {
	DB    databases.ContributionRoundDatabase
	ActDB databases.ActivityDatabase
	Hub   Notifier
}

type roundRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	DurationMs  int64  `json:"durationMs"`
}

// CurrentTimerHandler returns the legacy timer with a live remainder. Before
// any round has run it reports an idle timer.
func (c ContributionRound) CurrentTimerHandler(w http.ResponseWriter, r *http.Request) {
	timer, err := c.DB.FindTimer(r.Context())
	if err != nil {
		if databases.IsNotFound(err) {
			respondJSON(w, http.StatusOK, models.ContributionTimer{Status: models.RoundStopped})
			return
		}
		config.ErrorStatus("failed to get contribution timer", http.StatusInternalServerError, w, err)
		return
	}
	timer.RemainingMs = timer.LiveRemainingMs(time.Now().UTC())
	respondJSON(w, http.StatusOK, timer)
}

// ListRoundsHandler returns every round with live remainders, newest first
func (c ContributionRound) ListRoundsHandler(w http.ResponseWriter, r *http.Request) {
	rounds, err := c.DB.Find(r.Context(), bson.M{}, databases.Newest("createdAt"))
	if err != nil {
		config.ErrorStatus("failed to get contribution rounds", http.StatusInternalServerError, w, err)
		return
	}
	if rounds == nil {
		rounds = []models.ContributionRound{}
	}
	now := time.Now().UTC()
	for i := range rounds {
		rounds[i].RemainingMs = rounds[i].Remaining(now).Milliseconds()
	}
	respondJSON(w, http.StatusOK, rounds)
}

// CreateRoundHandler saves a paused round holding its whole duration
func (c ContributionRound) CreateRoundHandler(w http.ResponseWriter, r *http.Request) {
	var req roundRequest
	if err := decodeJSON(r, &req); err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" || req.DurationMs <= 0 {
		config.ErrorStatus("invalid contribution round", http.StatusBadRequest, w,
			errors.New("name and a positive durationMs are required"))
		return
	}
	if req.DurationMs > models.MaxRoundDuration.Milliseconds() {
		config.ErrorStatus("invalid contribution round", http.StatusBadRequest, w,
			fmt.Errorf("durationMs cannot exceed %d", models.MaxRoundDuration.Milliseconds()))
		return
	}

	round := models.NewContributionRound(uuid.NewString(), name, strings.TrimSpace(req.Description),
		time.Duration(req.DurationMs)*time.Millisecond, time.Now().UTC())
	if _, err := c.DB.InsertOne(r.Context(), round); err != nil {
		config.ErrorStatus("failed to create contribution round", http.StatusInternalServerError, w, err)
		return
	}

	c.ActDB.Log(r.Context(), models.ActivityContributionRnd, adminEmail(r), fmt.Sprintf("contribution round %q created", round.Name))
	c.Hub.Broadcast()

	respondJSON(w, http.StatusCreated, round)
}

// DeleteRoundHandler removes a round
func (c ContributionRound) DeleteRoundHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["round_id"]
	deleted, err := c.DB.DeleteOne(r.Context(), id)
	if err != nil {
		config.ErrorStatus("failed to delete contribution round", http.StatusInternalServerError, w, err)
		return
	}
	if !deleted {
		config.ErrorStatus("contribution round not found", http.StatusNotFound, w, fmt.Errorf("no round %s", id))
		return
	}

	c.ActDB.Log(r.Context(), models.ActivityContributionRnd, adminEmail(r), fmt.Sprintf("contribution round %s deleted", id))
	c.Hub.Broadcast()

	respondJSON(w, http.StatusOK, map[string]string{"id": id, "message": "contribution round deleted"})
}

// StartRoundHandler runs a paused round. It serves both start and resume.
func (c ContributionRound) StartRoundHandler(w http.ResponseWriter, r *http.Request) {
	c.transition(w, r, (*models.ContributionRound).Start)
}

// PauseRoundHandler freezes a running round
func (c ContributionRound) PauseRoundHandler(w http.ResponseWriter, r *http.Request) {
	c.transition(w, r, (*models.ContributionRound).Pause)
}

// StopRoundHandler ends a round for good
func (c ContributionRound) StopRoundHandler(w http.ResponseWriter, r *http.Request) {
	c.transition(w, r, (*models.ContributionRound).Stop)
}

func (c ContributionRound) transition(w http.ResponseWriter, r *http.Request, apply func(*models.ContributionRound, time.Time) error) {
	id := mux.Vars(r)["round_id"]
	round, err := c.DB.FindOne(r.Context(), bson.M{"_id": id})
	if err != nil {
		if databases.IsNotFound(err) {
			config.ErrorStatus("contribution round not found", http.StatusNotFound, w, err)
			return
		}
		config.ErrorStatus("failed to get contribution round", http.StatusInternalServerError, w, err)
		return
	}

	now := time.Now().UTC()
	prev := round.Status
	if err := apply(round, now); err != nil {
		config.ErrorStatus("invalid status change", http.StatusConflict, w, err)
		return
	}

	saved, err := c.DB.Save(r.Context(), *round, prev)
	if err != nil {
		config.ErrorStatus("failed to update contribution round", http.StatusInternalServerError, w, err)
		return
	}
	if !saved {
		config.ErrorStatus("invalid status change", http.StatusConflict, w,
			fmt.Errorf("%w: round %s changed concurrently", models.ErrInvalidTransition, id))
		return
	}
	if err := c.DB.SaveTimer(r.Context(), round.Timer(now)); err != nil {
		zap.S().Errorw("failed to update contribution timer", "round", round.ID, "error", err)
	}

	c.ActDB.Log(r.Context(), models.ActivityContributionRnd, adminEmail(r),
		fmt.Sprintf("contribution round %q is now %s", round.Name, round.Status))
	c.Hub.Broadcast()

	round.RemainingMs = round.Remaining(now).Milliseconds()
	respondJSON(w, http.StatusOK, round)
}
