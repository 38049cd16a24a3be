package models

import (
	"time"
	"unicode/utf8"
)

// Notification types
const (
	NotificationMention = "mention"
	NotificationUpvote  = "upvote"
	NotificationFollow  = "follow"
	NotificationRepost  = "repost"
	NotificationComment = "comment"
)

// MaxExcerptLength bounds the excerpt column; longer text is truncated.
const MaxExcerptLength = 200

// Notification represents a durable per-recipient notification (PostgreSQL).
// Recipient, actor and entity ids are MongoDB ObjectIDs stored as hex strings.
// The entity id is set at creation time; thread ids are generated before any
// notification write, so there is no unlinked window.
type Notification struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	RecipientID string    `json:"recipient_id" gorm:"size:24;index:idx_recipient_read"`
	ActorID     string    `json:"actor_id" gorm:"size:24;index"`
	Type        string    `json:"type" gorm:"size:20;index"` // mention, upvote, follow, repost, comment
	EntityID    string    `json:"entity_id" gorm:"size:24"`
	Excerpt     string    `json:"excerpt,omitempty" gorm:"size:200"`
	Read        bool      `json:"read" gorm:"default:false;index:idx_recipient_read"`
	CreatedAt   time.Time `json:"created_at" gorm:"index"`
}

// Truncate bounds s to MaxExcerptLength bytes for use as a notification
// excerpt. The cut never splits a multibyte rune; the excerpt stays valid
// UTF-8 for the text column.
func Truncate(s string) string {
	if len(s) <= MaxExcerptLength {
		return s
	}
	cut := MaxExcerptLength
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
