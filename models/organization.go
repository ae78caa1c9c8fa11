package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const MaxOrganizationNameLength = 50

// Organization is the stored form: owner and members are ObjectID references.
// The owner is always present in Members as well; every membership check in
// the system works off the Members list.
type Organization struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name      string               `bson:"name" json:"name"`
	Owner     primitive.ObjectID   `bson:"owner" json:"owner"`
	Members   []primitive.ObjectID `bson:"members" json:"members"`
	CreatedAt time.Time            `bson:"createdAt" json:"createdAt"`
}

func (o *Organization) HasMember(id primitive.ObjectID) bool {
	for _, m := range o.Members {
		if m == id {
			return true
		}
	}
	return false
}

// OrganizationView is the expanded form returned to clients, with owner and
// members resolved to user snapshots.
type OrganizationView struct {
	ID        primitive.ObjectID `json:"id"`
	Name      string             `json:"name"`
	Owner     UserRef            `json:"owner"`
	Members   []UserRef          `json:"members"`
	CreatedAt time.Time          `json:"createdAt"`
}
