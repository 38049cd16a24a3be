package models

import "time"

// Outbox event states
const (
	OutboxPending = "pending"
	OutboxSent    = "sent"
	OutboxFailed  = "failed"
)

// OutboxEvent is the durable record of a realtime push hint, written in the
// same transaction as its Notification row. A background dispatcher drains
// pending events to the messaging service; delivery stays best-effort and the
// Notification row remains the source of truth.
type OutboxEvent struct {
	ID            string    `json:"id" gorm:"primaryKey;size:36"`
	RecipientID   string    `json:"recipient_id" gorm:"size:24;index"`
	Type          string    `json:"type" gorm:"size:20"`
	Title         string    `json:"title" gorm:"size:200"`
	Excerpt       string    `json:"excerpt,omitempty" gorm:"size:200"`
	Status        string    `json:"status" gorm:"size:10;default:'pending';index:idx_status_next"`
	Attempts      int       `json:"attempts"`
	NextAttemptAt time.Time `json:"next_attempt_at" gorm:"index:idx_status_next"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
