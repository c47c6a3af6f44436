package models

import (
	"strings"
	"time"
)

// JoinApplication holds the structure for the join_applications collection in
// mongo. There is at most one application per email.
type JoinApplication struct {
	FirstName string    `json:"firstName" bson:"firstName"`
	LastName  string    `json:"lastName" bson:"lastName"`
	Email     string    `json:"email" bson:"_id"`
	Details   string    `json:"details" bson:"details"`
	Time      time.Time `json:"time" bson:"time"`
}

// Matches is the registration gate: names must match exactly once surrounding
// whitespace is dropped, the email ignores case.
func (j JoinApplication) Matches(firstName, lastName, email string) bool {
	return j.FirstName == strings.TrimSpace(firstName) &&
		j.LastName == strings.TrimSpace(lastName) &&
		NormalizeEmail(j.Email) == NormalizeEmail(email)
}
