package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Community represents a group of users stored in MongoDB. Slug is the
// external identifier clients address communities by.
type Community struct {
	ID        primitive.ObjectID   `json:"id,omitempty" bson:"_id,omitempty"`
	Slug      string               `json:"slug" bson:"slug"`
	Name      string               `json:"name" bson:"name"`
	Image     string               `json:"image,omitempty" bson:"image,omitempty"`
	Members   []primitive.ObjectID `json:"members,omitempty" bson:"members,omitempty"`
	Threads   []primitive.ObjectID `json:"threads" bson:"threads"`
	CreatedAt time.Time            `json:"created_at" bson:"created_at"`
}
