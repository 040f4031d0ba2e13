package models

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrUsernameTaken = errors.New("username taken")
	ErrDuplicate     = errors.New("duplicate value")
)

// User is a member of the organisation. PasswordHash is a PHC-encoded
// argon2id string and must never be serialized to clients.
type User struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	FirstName    string             `json:"firstName" bson:"first_name"`
	LastName     string             `json:"lastName" bson:"last_name"`
	Username     string             `json:"username" bson:"username"`
	PasswordHash string             `json:"-" bson:"password_hash"`
	Role         Role               `json:"role" bson:"role"`
	Active       bool               `json:"active" bson:"active"`
	PushTokens   []string           `json:"-" bson:"push_tokens,omitempty"`
	CreatedAt    time.Time          `json:"createdAt" bson:"created_at"`
	UpdatedAt    time.Time          `json:"updatedAt" bson:"updated_at"`
}

// UserRef is the curated subset of user fields embedded in expanded
// responses wherever another document references a user.
type UserRef struct {
	ID        primitive.ObjectID `json:"id" bson:"_id"`
	FirstName string             `json:"firstName" bson:"first_name"`
	LastName  string             `json:"lastName" bson:"last_name"`
	Username  string             `json:"username" bson:"username"`
}

// Ref returns the public reference view of the user.
func (u *User) Ref() UserRef {
	return UserRef{ID: u.ID, FirstName: u.FirstName, LastName: u.LastName, Username: u.Username}
}

// PublicView is the shape returned by login/register/me.
type PublicView struct {
	ID        primitive.ObjectID `json:"id"`
	FirstName string             `json:"firstName"`
	LastName  string             `json:"lastName"`
	Username  string             `json:"username"`
	Role      Role               `json:"role"`
	Active    bool               `json:"active"`
	CreatedAt time.Time          `json:"createdAt"`
}

// Public returns the credential-free view of the user.
func (u *User) Public() PublicView {
	return PublicView{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Username:  u.Username,
		Role:      u.Role,
		Active:    u.Active,
		CreatedAt: u.CreatedAt,
	}
}
