package services

import (
	"context"
	"time"

	"firebase.google.com/go/v4/messaging"
)

// PushEvent is the lightweight realtime hint published after a notification
// commits. It carries no authoritative payload; clients reconcile by
// re-fetching the notification store.
type PushEvent struct {
	Type    string
	Title   string
	Excerpt string
}

// Publisher delivers push hints to a recipient's private channel.
// Delivery is best-effort; failures never propagate into any write path.
type Publisher interface {
	Publish(ctx context.Context, recipientID string, event PushEvent) error
}

// NoopPublisher discards events. Used when no messaging credentials are
// configured and in tests.
type NoopPublisher struct{}

func NewNoopPublisher() Publisher { return NoopPublisher{} }

func (NoopPublisher) Publish(ctx context.Context, recipientID string, event PushEvent) error {
	return nil
}

// FCMPublisher publishes push hints over Firebase Cloud Messaging. Each
// recipient has a private topic; clients subscribe to their own.
type FCMPublisher struct {
	client  *messaging.Client
	timeout time.Duration
}

// NewFCMPublisher creates an FCMPublisher
func NewFCMPublisher(client *messaging.Client) *FCMPublisher {
	return &FCMPublisher{client: client, timeout: 3 * time.Second}
}

// Publish sends a data-only message to the recipient's user-<id> topic with
// its own short timeout so a slow broker cannot delay the dispatcher.
func (p *FCMPublisher) Publish(ctx context.Context, recipientID string, event PushEvent) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	msg := &messaging.Message{
		Topic: "user-" + recipientID,
		Data: map[string]string{
			"event":   "new-notification",
			"type":    event.Type,
			"title":   event.Title,
			"excerpt": event.Excerpt,
		},
	}
	_, err := p.client.Send(ctx, msg)
	return err
}
