package services

import (
	"context"
	"time"

	"github.com/ThisaraSadesh/Threads-SL/internal/metrics"
	"github.com/ThisaraSadesh/Threads-SL/internal/repositories"
	"go.uber.org/zap"
)

// OutboxDispatcher drains pending outbox events to the push messaging
// service. Publish failures are logged and retried with exponential backoff
// up to maxAttempts, then the event is marked failed. The notification row
// stays the durable source of truth either way.
type OutboxDispatcher struct {
	outbox      repositories.OutboxRepository
	publisher   Publisher
	logger      *zap.Logger
	interval    time.Duration
	batchSize   int
	maxAttempts int
	baseBackoff time.Duration
}

// NewOutboxDispatcher creates an OutboxDispatcher with production defaults.
func NewOutboxDispatcher(outbox repositories.OutboxRepository, publisher Publisher, logger *zap.Logger) *OutboxDispatcher {
	return &OutboxDispatcher{
		outbox:      outbox,
		publisher:   publisher,
		logger:      logger,
		interval:    2 * time.Second,
		batchSize:   100,
		maxAttempts: 5,
		baseBackoff: 30 * time.Second,
	}
}

// Run polls the outbox until ctx is cancelled.
func (d *OutboxDispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := d.DispatchOnce(ctx); err != nil {
				d.logger.Error("outbox poll failed", zap.Error(err))
			}
		}
	}
}

// DispatchOnce drains one batch of due events and returns how many were
// delivered.
func (d *OutboxDispatcher) DispatchOnce(ctx context.Context) (int, error) {
	events, err := d.outbox.GetPending(d.batchSize)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, ev := range events {
		err := d.publisher.Publish(ctx, ev.RecipientID, PushEvent{
			Type:    ev.Type,
			Title:   ev.Title,
			Excerpt: ev.Excerpt,
		})
		if err == nil {
			metrics.OutboxPublishes.WithLabelValues("sent").Inc()
			if err := d.outbox.MarkSent(ev.ID); err != nil {
				d.logger.Error("failed to mark outbox event sent", zap.String("event_id", ev.ID), zap.Error(err))
			}
			sent++
			continue
		}

		attempts := ev.Attempts + 1
		terminal := attempts >= d.maxAttempts
		backoff := d.baseBackoff << uint(ev.Attempts)
		if terminal {
			metrics.OutboxPublishes.WithLabelValues("failed").Inc()
			d.logger.Error("dropping push hint after max attempts",
				zap.String("event_id", ev.ID),
				zap.String("recipient", ev.RecipientID),
				zap.Int("attempts", attempts),
				zap.Error(err))
		} else {
			metrics.OutboxPublishes.WithLabelValues("retry").Inc()
			d.logger.Warn("push hint publish failed, will retry",
				zap.String("event_id", ev.ID),
				zap.Int("attempts", attempts),
				zap.Duration("backoff", backoff),
				zap.Error(err))
		}
		if err := d.outbox.MarkFailedAttempt(ev.ID, attempts, time.Now().Add(backoff), terminal); err != nil {
			d.logger.Error("failed to record outbox attempt", zap.String("event_id", ev.ID), zap.Error(err))
		}
	}
	return sent, nil
}
