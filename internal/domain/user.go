package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is an account record in the users collection. The password hash is
// stored under the legacy "password" field name and is never JSON-encoded.
type User struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FirstName         string             `bson:"firstName" json:"firstName"`
	LastName          string             `bson:"lastName" json:"lastName"`
	UserName          string             `bson:"userName" json:"userName"`
	Email             string             `bson:"email" json:"email"`
	PasswordHash      string             `bson:"password" json:"-"`
	Avatar            string             `bson:"avatar" json:"avatar"`
	Role              Role               `bson:"role" json:"role"`
	IsActive          bool               `bson:"isActive" json:"isActive"`
	ActivationToken   string             `bson:"activationToken,omitempty" json:"-"`
	TokenVersion      int64              `bson:"tokenVersion" json:"-"`
	PasswordChangedAt *time.Time         `bson:"passwordChangedAt,omitempty" json:"-"`
	CreatedAt         time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// FullName joins first and last name for profile responses.
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// PasswordChangedAfter reports whether the password was changed strictly
// after the given token issue time. Tokens issued before a password change
// must be considered dead.
func (u *User) PasswordChangedAfter(issuedAt time.Time) bool {
	if u.PasswordChangedAt == nil {
		return false
	}
	return u.PasswordChangedAt.After(issuedAt)
}
