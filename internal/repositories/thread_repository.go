package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/ThisaraSadesh/Threads-SL/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ThreadRepository defines the interface for thread graph operations
type ThreadRepository interface {
	CreateThread(ctx context.Context, thread *models.Thread) error
	GetThreadByID(ctx context.Context, id string) (*models.Thread, error)
	GetRootThreads(ctx context.Context, skip, limit int64) ([]models.Thread, int64, error)
	GetChildrenOf(ctx context.Context, parentIDs []string) ([]models.Thread, error)
	PushChild(ctx context.Context, parentID, childID primitive.ObjectID) error
	PullChild(ctx context.Context, parentID, childID primitive.ObjectID) error
	AddUpvote(ctx context.Context, id string, actorID string) (bool, error)
	UpdateThreadText(ctx context.Context, id string, text models.ThreadText) error
	DeleteThreads(ctx context.Context, ids []primitive.ObjectID) (int64, error)
}

// MongoThreadRepository implements ThreadRepository for MongoDB
type MongoThreadRepository struct {
	collection *mongo.Collection
}

// NewMongoThreadRepository creates a new MongoThreadRepository
func NewMongoThreadRepository(db *mongo.Database) *MongoThreadRepository {
	return &MongoThreadRepository{collection: db.Collection("threads")}
}

// EnsureIndexes creates the index set the graph queries rely on, including
// the TTL index that expires self-expiring posts.
func (r *MongoThreadRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "author", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "community", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "parent_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "original_community", Value: 1}, {Key: "created_at", Value: -1}, {Key: "is_shared", Value: 1}}},
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		},
	})
	return err
}

// CreateThread inserts a thread. The id is expected to be pre-generated by
// the caller so dependent records can reference it before the insert.
func (r *MongoThreadRepository) CreateThread(ctx context.Context, thread *models.Thread) error {
	if thread.ID.IsZero() {
		thread.ID = primitive.NewObjectID()
	}
	now := time.Now()
	thread.CreatedAt = now
	thread.UpdatedAt = now
	if thread.Children == nil {
		thread.Children = []primitive.ObjectID{}
	}
	if thread.Upvotes == nil {
		thread.Upvotes = []string{}
	}
	_, err := r.collection.InsertOne(ctx, thread)
	return err
}

// GetThreadByID retrieves a thread by ID from MongoDB
func (r *MongoThreadRepository) GetThreadByID(ctx context.Context, id string) (*models.Thread, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid thread ID format: %w", err)
	}

	var thread models.Thread
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&thread)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &thread, nil
}

// GetRootThreads retrieves top-level posts (no parent) in reverse
// chronological order, plus the total root count for pagination.
func (r *MongoThreadRepository) GetRootThreads(ctx context.Context, skip, limit int64) ([]models.Thread, int64, error) {
	filter := bson.M{"parent_id": bson.M{"$in": bson.A{nil, ""}}}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	findOptions := options.Find().SetSkip(skip).SetLimit(limit).SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var threads []models.Thread
	if err = cursor.All(ctx, &threads); err != nil {
		return nil, 0, err
	}
	return threads, total, nil
}

// GetChildrenOf fetches every direct reply of the given parent ids in one
// query. The cascade traversal calls this once per tree level.
func (r *MongoThreadRepository) GetChildrenOf(ctx context.Context, parentIDs []string) ([]models.Thread, error) {
	if len(parentIDs) == 0 {
		return nil, nil
	}
	cursor, err := r.collection.Find(ctx, bson.M{"parent_id": bson.M{"$in": parentIDs}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var threads []models.Thread
	if err = cursor.All(ctx, &threads); err != nil {
		return nil, err
	}
	return threads, nil
}

// PushChild appends a reply id to the parent's children list
func (r *MongoThreadRepository) PushChild(ctx context.Context, parentID, childID primitive.ObjectID) error {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": parentID},
		bson.M{"$push": bson.M{"children": childID}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// PullChild removes a reply id from the parent's children list. A missing
// parent is not an error: the parent may have been cascaded away already.
func (r *MongoThreadRepository) PullChild(ctx context.Context, parentID, childID primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": parentID},
		bson.M{"$pull": bson.M{"children": childID}},
	)
	return err
}

// AddUpvote appends the actor to the thread's upvotes unless already present.
// The filter guards the push, so a repeated upvote is a single-document no-op
// and never a duplicate append. Returns false when the actor had already
// upvoted, and ErrNotFound when the thread no longer exists.
func (r *MongoThreadRepository) AddUpvote(ctx context.Context, id string, actorID string) (bool, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, fmt.Errorf("invalid thread ID format: %w", err)
	}
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": objID, "upvotes": bson.M{"$ne": actorID}},
		bson.M{"$push": bson.M{"upvotes": actorID}},
	)
	if err != nil {
		return false, err
	}
	if res.ModifiedCount > 0 {
		return true, nil
	}

	// The guarded filter matches neither an already-upvoted thread nor one
	// deleted since the caller's read; only an existence check tells the two
	// apart.
	n, err := r.collection.CountDocuments(ctx, bson.M{"_id": objID})
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, ErrNotFound
	}
	return false, nil
}

// UpdateThreadText replaces a thread's text payload
func (r *MongoThreadRepository) UpdateThreadText(ctx context.Context, id string, text models.ThreadText) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid thread ID format: %w", err)
	}
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": objID},
		bson.M{"$set": bson.M{"text": text, "updated_at": time.Now()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteThreads removes every thread in ids with one batch operation
func (r *MongoThreadRepository) DeleteThreads(ctx context.Context, ids []primitive.ObjectID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := r.collection.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
