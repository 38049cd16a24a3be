package repositories

import (
	"time"

	"github.com/ThisaraSadesh/Threads-SL/internal/models"
	"gorm.io/gorm"
)

// OutboxRepository defines the interface the fan-out dispatcher drains
// pending push events through.
type OutboxRepository interface {
	GetPending(limit int) ([]models.OutboxEvent, error)
	MarkSent(id string) error
	MarkFailedAttempt(id string, attempts int, nextAttemptAt time.Time, terminal bool) error
}

type postgresOutboxRepository struct {
	db *gorm.DB
}

func NewPostgresOutboxRepository(db *gorm.DB) OutboxRepository {
	return &postgresOutboxRepository{db: db}
}

// GetPending returns due pending events, oldest first
func (r *postgresOutboxRepository) GetPending(limit int) ([]models.OutboxEvent, error) {
	var events []models.OutboxEvent
	err := r.db.Where("status = ? AND next_attempt_at <= ?", models.OutboxPending, time.Now()).
		Order("created_at ASC").
		Limit(limit).
		Find(&events).Error
	return events, err
}

func (r *postgresOutboxRepository) MarkSent(id string) error {
	return r.db.Model(&models.OutboxEvent{}).Where("id = ?", id).
		Updates(map[string]interface{}{"status": models.OutboxSent, "updated_at": time.Now()}).Error
}

// MarkFailedAttempt records a failed publish. Terminal failures flip the
// status to failed; otherwise the event stays pending and becomes due again
// at nextAttemptAt.
func (r *postgresOutboxRepository) MarkFailedAttempt(id string, attempts int, nextAttemptAt time.Time, terminal bool) error {
	status := models.OutboxPending
	if terminal {
		status = models.OutboxFailed
	}
	return r.db.Model(&models.OutboxEvent{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":          status,
			"attempts":        attempts,
			"next_attempt_at": nextAttemptAt,
			"updated_at":      time.Now(),
		}).Error
}
