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

	"github.com/linesmerrill/victim-dao-api/api"
	"github.com/linesmerrill/victim-dao-api/config"
	"github.com/linesmerrill/victim-dao-api/databases"
	"github.com/linesmerrill/victim-dao-api/models"
)

// MinVoteOptions is the fewest choices a voting round can be saved with
const MinVoteOptions = 2

// Vote exists for handlers dealing with voting rounds and ballots
type Vote struct {
	DB    databases.VoteDatabase
	MDB   databases.UserMetaDatabase
	ActDB databases.ActivityDatabase
	Hub   Notifier
}

type voteOptionRequest struct {
	Text string `json:"text"`
}

type voteRequest struct {
	Title           string              `json:"title"`
	Description     string              `json:"description"`
	Options         []voteOptionRequest `json:"options"`
	EndTime         *time.Time          `json:"endTime"`
	PointsReward    float64             `json:"pointsReward"`
	MaxVotesPerUser int                 `json:"maxVotesPerUser"`
}

type voteStatusRequest struct {
	Status string `json:"status"`
}

type submitVoteRequest struct {
	OptionID string `json:"optionId"`
}

func (req voteRequest) validate() error {
	if strings.TrimSpace(req.Title) == "" {
		return errors.New("title is required")
	}
	if req.PointsReward < 0 {
		return errors.New("pointsReward cannot be negative")
	}
	if req.MaxVotesPerUser < 0 {
		return errors.New("maxVotesPerUser cannot be negative")
	}
	n := 0
	for _, o := range req.Options {
		if strings.TrimSpace(o.Text) != "" {
			n++
		}
	}
	if n < MinVoteOptions {
		return fmt.Errorf("at least %d options are required", MinVoteOptions)
	}
	return nil
}

// buildOptions gives every non blank option a fresh id and a zero tally
func (req voteRequest) buildOptions() []models.VoteOption {
	options := make([]models.VoteOption, 0, len(req.Options))
	for _, o := range req.Options {
		text := strings.TrimSpace(o.Text)
		if text == "" {
			continue
		}
		options = append(options, models.VoteOption{ID: uuid.NewString(), Text: text})
	}
	return options
}

// ListVotesHandler returns every round members can see, which is all but drafts
func (v Vote) ListVotesHandler(w http.ResponseWriter, r *http.Request) {
	v.list(w, r, bson.M{"status": bson.M{"$ne": models.VoteDraft}})
}

// ListAllVotesHandler returns every round including drafts
func (v Vote) ListAllVotesHandler(w http.ResponseWriter, r *http.Request) {
	v.list(w, r, bson.M{})
}

func (v Vote) list(w http.ResponseWriter, r *http.Request, filter bson.M) {
	votes, err := v.DB.Find(r.Context(), filter, databases.Newest("createdAt"))
	if err != nil {
		config.ErrorStatus("failed to get votes", http.StatusInternalServerError, w, err)
		return
	}
	if votes == nil {
		votes = []models.Vote{}
	}
	respondJSON(w, http.StatusOK, votes)
}

// VoteHandler returns a single round. Drafts are hidden from members.
func (v Vote) VoteHandler(w http.ResponseWriter, r *http.Request) {
	vote, ok := v.load(w, r)
	if !ok {
		return
	}
	if vote.Status == models.VoteDraft {
		config.ErrorStatus("vote not found", http.StatusNotFound, w, fmt.Errorf("vote %s is a draft", vote.ID))
		return
	}
	respondJSON(w, http.StatusOK, vote)
}

func (v Vote) load(w http.ResponseWriter, r *http.Request) (*models.Vote, bool) {
	id := mux.Vars(r)["vote_id"]
	vote, err := v.DB.FindOne(r.Context(), bson.M{"_id": id})
	if err != nil {
		if databases.IsNotFound(err) {
			config.ErrorStatus("vote not found", http.StatusNotFound, w, err)
			return nil, false
		}
		config.ErrorStatus("failed to get vote", http.StatusInternalServerError, w, err)
		return nil, false
	}
	return vote, true
}

// SubmitVoteHandler casts one ballot for the caller
func (v Vote) SubmitVoteHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := api.UserFromContext(r.Context())
	if !ok {
		config.ErrorStatus("unauthorized", http.StatusUnauthorized, w, errors.New("no user on request"))
		return
	}

	var req submitVoteRequest
	if err := decodeJSON(r, &req); err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}

	vote, ok := v.load(w, r)
	if !ok {
		return
	}

	now := time.Now().UTC()
	if err := vote.CheckSubmission(caller.ID, req.OptionID, now); err != nil {
		config.ErrorStatus("vote rejected", submissionStatus(err), w, err)
		return
	}

	if _, err := v.MDB.EnsureMeta(r.Context(), caller.Email); err != nil {
		config.ErrorStatus("failed to get user meta", http.StatusInternalServerError, w, err)
		return
	}
	consumed, err := v.MDB.ConsumeVote(r.Context(), caller.Email)
	if err != nil {
		config.ErrorStatus("failed to consume voting right", http.StatusInternalServerError, w, err)
		return
	}
	if !consumed {
		config.ErrorStatus("vote rejected", http.StatusForbidden, w, models.ErrNoVotingRights)
		return
	}

	recorded, err := v.DB.RecordSubmission(r.Context(), *vote, caller.ID, req.OptionID, now)
	if err != nil || !recorded {
		if rerr := v.MDB.RefundVote(r.Context(), caller.Email); rerr != nil {
			zap.S().Errorw("failed to refund voting right", "email", caller.Email, "vote", vote.ID, "error", rerr)
		}
		if err != nil {
			config.ErrorStatus("failed to record vote", http.StatusInternalServerError, w, err)
			return
		}
		config.ErrorStatus("vote rejected", http.StatusConflict, w, models.ErrVoteLimitReached)
		return
	}

	if vote.PointsReward > 0 {
		if err := v.MDB.AddPoints(r.Context(), caller.Email, vote.PointsReward, models.PointsCategoryVoting); err != nil {
			zap.S().Errorw("failed to award voting points", "email", caller.Email, "vote", vote.ID, "error", err)
		}
	}
	vote.Apply(caller.ID, req.OptionID)

	v.ActDB.Log(r.Context(), models.ActivityVote, caller.Email,
		fmt.Sprintf("%s voted on %s", caller.Email, vote.Title))
	v.Hub.Broadcast()

	respondJSON(w, http.StatusOK, vote)
}

func submissionStatus(err error) int {
	switch {
	case errors.Is(err, models.ErrUnknownOption):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrNoVotingRights):
		return http.StatusForbidden
	case errors.Is(err, models.ErrRoundNotActive),
		errors.Is(err, models.ErrRoundExpired),
		errors.Is(err, models.ErrVoteLimitReached):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// CreateVoteHandler saves a new round as a draft
func (v Vote) CreateVoteHandler(w http.ResponseWriter, r *http.Request) {
	var req voteRequest
	if err := decodeJSON(r, &req); err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}
	if err := req.validate(); err != nil {
		config.ErrorStatus("invalid vote", http.StatusBadRequest, w, err)
		return
	}

	maxPerUser := req.MaxVotesPerUser
	if maxPerUser == 0 {
		maxPerUser = 1
	}
	vote := models.Vote{
		ID:              uuid.NewString(),
		Title:           strings.TrimSpace(req.Title),
		Description:     strings.TrimSpace(req.Description),
		Options:         req.buildOptions(),
		Status:          models.VoteDraft,
		EndTime:         req.EndTime,
		PointsReward:    req.PointsReward,
		MaxVotesPerUser: maxPerUser,
		Submissions:     map[string]int{},
		CreatedAt:       time.Now().UTC(),
	}
	if _, err := v.DB.InsertOne(r.Context(), vote); err != nil {
		config.ErrorStatus("failed to create vote", http.StatusInternalServerError, w, err)
		return
	}

	v.ActDB.Log(r.Context(), models.ActivityVoteRound, adminEmail(r), fmt.Sprintf("vote %q created", vote.Title))
	v.Hub.Broadcast()

	respondJSON(w, http.StatusCreated, vote)
}

// UpdateVoteHandler replaces the editable fields of a draft round
func (v Vote) UpdateVoteHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["vote_id"]

	var req voteRequest
	if err := decodeJSON(r, &req); err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}
	if err := req.validate(); err != nil {
		config.ErrorStatus("invalid vote", http.StatusBadRequest, w, err)
		return
	}

	maxPerUser := req.MaxVotesPerUser
	if maxPerUser == 0 {
		maxPerUser = 1
	}
	update := bson.M{
		"title":           strings.TrimSpace(req.Title),
		"description":     strings.TrimSpace(req.Description),
		"options":         req.buildOptions(),
		"endTime":         req.EndTime,
		"pointsReward":    req.PointsReward,
		"maxVotesPerUser": maxPerUser,
	}
	found, err := v.DB.UpdateDraft(r.Context(), id, update)
	if err != nil {
		config.ErrorStatus("failed to update vote", http.StatusInternalServerError, w, err)
		return
	}
	if !found {
		config.ErrorStatus("vote cannot be edited", http.StatusConflict, w, fmt.Errorf("vote %s is missing or no longer a draft", id))
		return
	}

	v.Hub.Broadcast()
	respondJSON(w, http.StatusOK, map[string]string{"id": id, "message": "vote updated"})
}

// DeleteVoteHandler removes a round
func (v Vote) DeleteVoteHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["vote_id"]
	deleted, err := v.DB.DeleteOne(r.Context(), id)
	if err != nil {
		config.ErrorStatus("failed to delete vote", http.StatusInternalServerError, w, err)
		return
	}
	if !deleted {
		config.ErrorStatus("vote not found", http.StatusNotFound, w, fmt.Errorf("no vote %s", id))
		return
	}

	v.ActDB.Log(r.Context(), models.ActivityVoteRound, adminEmail(r), fmt.Sprintf("vote %s deleted", id))
	v.Hub.Broadcast()

	respondJSON(w, http.StatusOK, map[string]string{"id": id, "message": "vote deleted"})
}

// SetVoteStatusHandler moves a round through draft, active, paused and completed
func (v Vote) SetVoteStatusHandler(w http.ResponseWriter, r *http.Request) {
	var req voteStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}

	vote, ok := v.load(w, r)
	if !ok {
		return
	}
	if err := vote.CanTransition(req.Status); err != nil {
		code := http.StatusConflict
		if errors.Is(err, models.ErrInvalidStatus) {
			code = http.StatusBadRequest
		}
		config.ErrorStatus("invalid status change", code, w, err)
		return
	}
	from, _ := models.VoteSourceStatuses(req.Status)

	update := bson.M{"status": req.Status}
	if req.Status == models.VoteActive && vote.StartTime == nil {
		now := time.Now().UTC()
		update["startTime"] = now
		vote.StartTime = &now
	}
	changed, err := v.DB.SetStatus(r.Context(), vote.ID, from, update)
	if err != nil {
		config.ErrorStatus("failed to update vote", http.StatusInternalServerError, w, err)
		return
	}
	if !changed {
		config.ErrorStatus("invalid status change", http.StatusConflict, w,
			fmt.Errorf("%w: vote %s changed concurrently", models.ErrInvalidTransition, vote.ID))
		return
	}
	vote.Status = req.Status

	v.ActDB.Log(r.Context(), models.ActivityVoteRound, adminEmail(r), fmt.Sprintf("vote %q is now %s", vote.Title, vote.Status))
	v.Hub.Broadcast()

	respondJSON(w, http.StatusOK, vote)
}
