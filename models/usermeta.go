package models

// Point buckets that can be adjusted alongside the total
const (
	PointsCategoryVoting       = "voting"
	PointsCategoryContribution = "contribution"
	PointsCategoryReferral     = "referral"
)

// UserMeta holds the per-user voting rights and point totals, keyed by email
type UserMeta struct {
	Email              string  `json:"email" bson:"_id"`
	VotesAllowed       int     `json:"votesAllowed" bson:"votesAllowed"`
	VotesUsed          int     `json:"votesUsed" bson:"votesUsed"`
	Points             float64 `json:"points" bson:"points"`
	PointsVoting       float64 `json:"pointsVoting" bson:"pointsVoting"`
	PointsContribution float64 `json:"pointsContribution" bson:"pointsContribution"`
	PointsReferral     float64 `json:"pointsReferral" bson:"pointsReferral"`
}

// NewUserMeta returns the defaults a user starts with
func NewUserMeta(email string, votesAllowed int) UserMeta {
	return UserMeta{Email: NormalizeEmail(email), VotesAllowed: votesAllowed}
}

// VotesRemaining never goes below zero, even if an admin lowers votesAllowed under votesUsed
func (m UserMeta) VotesRemaining() int {
	if m.VotesUsed >= m.VotesAllowed {
		return 0
	}
	return m.VotesAllowed - m.VotesUsed
}

// PointsField maps a point category to the bucket field it moves. An empty
// category only touches the total.
func PointsField(category string) (string, error) {
	switch category {
	case "":
		return "", nil
	case PointsCategoryVoting:
		return "pointsVoting", nil
	case PointsCategoryContribution:
		return "pointsContribution", nil
	case PointsCategoryReferral:
		return "pointsReferral", nil
	}
	return "", ErrUnknownCategory
}

// LeaderboardField maps the leaderboard "by" parameter to the field to sort on
func LeaderboardField(by string) (string, error) {
	if by == "" || by == "points" {
		return "points", nil
	}
	field, err := PointsField(by)
	if err != nil {
		return "", err
	}
	return field, nil
}

// LeaderboardEntry is one ranked row of the leaderboard
type LeaderboardEntry struct {
	Rank               int     `json:"rank"`
	Email              string  `json:"email"`
	Name               string  `json:"name"`
	Points             float64 `json:"points"`
	PointsVoting       float64 `json:"pointsVoting"`
	PointsContribution float64 `json:"pointsContribution"`
	PointsReferral     float64 `json:"pointsReferral"`
}
