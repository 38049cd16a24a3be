package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ThreadText is the textual payload of a thread: a title plus media references.
// Media lives in object storage; only the URLs are kept here.
type ThreadText struct {
	Title  string   `json:"title" bson:"title"`
	Images []string `json:"images,omitempty" bson:"images,omitempty"`
}

// Thread represents a post, reply or repost stored in MongoDB.
//
// ParentID and IsShared are mutually exclusive: a repost is never a reply.
// OriginalPost always points at the canonical non-shared root post, never at
// an intermediate share.
type Thread struct {
	ID        primitive.ObjectID  `json:"id,omitempty" bson:"_id,omitempty"`
	Text      ThreadText          `json:"text" bson:"text"`
	Author    primitive.ObjectID  `json:"author" bson:"author"`
	Community *primitive.ObjectID `json:"community,omitempty" bson:"community,omitempty"`

	// Reply tree. ParentID is kept as a hex string to match the index the
	// cascade traversal queries on.
	ParentID string               `json:"parent_id,omitempty" bson:"parent_id,omitempty"`
	Children []primitive.ObjectID `json:"children" bson:"children"`

	// Actor ids who upvoted, in append order. Never contains duplicates.
	Upvotes []string `json:"upvotes" bson:"upvotes"`

	// Repost chain.
	IsShared          bool                 `json:"is_shared" bson:"is_shared"`
	OriginalPost      *primitive.ObjectID  `json:"original_post,omitempty" bson:"original_post,omitempty"`
	SharedBy          []primitive.ObjectID `json:"shared_by,omitempty" bson:"shared_by,omitempty"`
	OriginalCommunity *primitive.ObjectID  `json:"original_community,omitempty" bson:"original_community,omitempty"`

	FocusMode bool       `json:"focus_mode" bson:"focus_mode"`
	ExpiresAt *time.Time `json:"expires_at,omitempty" bson:"expires_at,omitempty"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// IsRoot reports whether the thread is a top-level post (not a reply).
func (t *Thread) IsRoot() bool {
	return t.ParentID == ""
}

// CreateThreadRequest defines the request body for creating a new thread
type CreateThreadRequest struct {
	Title       string     `json:"title" validate:"required,min=3,max=500"`
	Images      []string   `json:"images,omitempty" validate:"omitempty,max=5,dive,url"`
	CommunityID string     `json:"community_id,omitempty"`
	FocusMode   bool       `json:"focus_mode,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

// UpdateThreadRequest defines the request body for editing a thread's text
type UpdateThreadRequest struct {
	Title  string   `json:"title" validate:"required,min=3,max=500"`
	Images []string `json:"images,omitempty" validate:"omitempty,max=5,dive,url"`
}

// AddCommentRequest defines the request body for replying to a thread
type AddCommentRequest struct {
	Title string `json:"title" validate:"required,min=3,max=500"`
}

// RepostThreadRequest defines the request body for resharing a thread
type RepostThreadRequest struct {
	CommunityID string `json:"community_id,omitempty"`
}
