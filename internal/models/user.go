package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents an identity stored in MongoDB. Authentication lives in the
// external identity provider; this record carries the profile plus the
// thread-membership back-references the cascade engine maintains.
type User struct {
	ID        primitive.ObjectID   `json:"id,omitempty" bson:"_id,omitempty"`
	Username  string               `json:"username" bson:"username"`
	Name      string               `json:"name" bson:"name"`
	Image     string               `json:"image,omitempty" bson:"image,omitempty"`
	Bio       string               `json:"bio,omitempty" bson:"bio,omitempty"`
	Threads   []primitive.ObjectID `json:"threads" bson:"threads"`
	Followers []primitive.ObjectID `json:"followers,omitempty" bson:"followers,omitempty"`
	Following []primitive.ObjectID `json:"following,omitempty" bson:"following,omitempty"`
	CreatedAt time.Time            `json:"created_at" bson:"created_at"`
}

// UserCompact is the projection embedded in feed and notification responses.
type UserCompact struct {
	ID       primitive.ObjectID `json:"id" bson:"_id"`
	Username string             `json:"username" bson:"username"`
	Name     string             `json:"name" bson:"name"`
	Image    string             `json:"image,omitempty" bson:"image,omitempty"`
}

// ToCompact converts a User to its compact representation
func (u *User) ToCompact() UserCompact {
	return UserCompact{
		ID:       u.ID,
		Username: u.Username,
		Name:     u.Name,
		Image:    u.Image,
	}
}
