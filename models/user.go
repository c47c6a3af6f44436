package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Roles a registered user can hold
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User holds the structure for the user collection in mongo
type User struct {
	ID      primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Details UserDetails        `json:"user" bson:"user"`
}

// UserDetails holds the structure for the inner user structure as defined in the user collection in mongo
type UserDetails struct {
	Email     string    `json:"email" bson:"email"`
	Name      string    `json:"name" bson:"name"`
	FirstName string    `json:"firstName" bson:"firstName"`
	LastName  string    `json:"lastName" bson:"lastName"`
	Password  string    `json:"-" bson:"password"`
	Role      string    `json:"role" bson:"role"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

// UserWithMeta is returned wherever a user is shown together with their points and voting rights
type UserWithMeta struct {
	User User     `json:"user"`
	Meta UserMeta `json:"meta"`
}

// NormalizeEmail is the single canonical form used to key users, meta and join applications
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
