package repositories

import (
	"context"

	"github.com/ThisaraSadesh/Threads-SL/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// CommunityRepository defines the interface for community lookups and
// thread-membership back-references.
type CommunityRepository interface {
	GetCommunityBySlug(ctx context.Context, slug string) (*models.Community, error)
	PushThread(ctx context.Context, communityID, threadID primitive.ObjectID) error
	PullThreads(ctx context.Context, communityIDs, threadIDs []primitive.ObjectID) error
}

// MongoCommunityRepository implements CommunityRepository for MongoDB
type MongoCommunityRepository struct {
	collection *mongo.Collection
}

// NewMongoCommunityRepository creates a new MongoCommunityRepository
func NewMongoCommunityRepository(db *mongo.Database) *MongoCommunityRepository {
	return &MongoCommunityRepository{collection: db.Collection("communities")}
}

// GetCommunityBySlug resolves the external community id
func (r *MongoCommunityRepository) GetCommunityBySlug(ctx context.Context, slug string) (*models.Community, error) {
	var community models.Community
	err := r.collection.FindOne(ctx, bson.M{"slug": slug}).Decode(&community)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &community, nil
}

// PushThread appends a thread id to the community's membership list
func (r *MongoCommunityRepository) PushThread(ctx context.Context, communityID, threadID primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": communityID},
		bson.M{"$push": bson.M{"threads": threadID}},
	)
	return err
}

// PullThreads removes deleted thread ids from every touched community.
// Idempotent; safe to retry after a partial cascade failure.
func (r *MongoCommunityRepository) PullThreads(ctx context.Context, communityIDs, threadIDs []primitive.ObjectID) error {
	if len(communityIDs) == 0 || len(threadIDs) == 0 {
		return nil
	}
	_, err := r.collection.UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": communityIDs}},
		bson.M{"$pull": bson.M{"threads": bson.M{"$in": threadIDs}}},
	)
	return err
}
