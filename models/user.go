package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleUser   = "user"
	RoleOwner  = "owner"
	RoleMember = "member"
)

type User struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Name         string              `bson:"name" json:"name"`
	Email        string              `bson:"email" json:"email"`
	Password     string              `bson:"password" json:"-"`
	Organization *primitive.ObjectID `bson:"organization,omitempty" json:"organization,omitempty"`
	Role         string              `bson:"role" json:"role"`
	CreatedAt    time.Time           `bson:"createdAt" json:"createdAt"`
}

// UserRef is the expanded snapshot of a user used wherever another document
// references one. Stored documents only ever hold ObjectIDs; expansion to a
// UserRef happens explicitly at the service boundary.
type UserRef struct {
	ID    primitive.ObjectID `bson:"_id" json:"id"`
	Name  string             `bson:"name" json:"name"`
	Email string             `bson:"email" json:"email"`
}

// Ref returns the reference snapshot for a user.
func (u User) Ref() UserRef {
	return UserRef{ID: u.ID, Name: u.Name, Email: u.Email}
}
