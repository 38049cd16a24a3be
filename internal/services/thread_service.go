package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ThisaraSadesh/Threads-SL/internal/metrics"
	"github.com/ThisaraSadesh/Threads-SL/internal/models"
	"github.com/ThisaraSadesh/Threads-SL/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ThreadService is the thread graph and notification fan-out engine. Every
// mutating operation gates, writes and notifies in the order the graph
// invariants require; realtime delivery happens asynchronously via the
// outbox.
type ThreadService interface {
	CreateThread(ctx context.Context, actorID string, req models.CreateThreadRequest) (*models.Thread, error)
	DeleteThread(ctx context.Context, actorID, threadID string) error
	UpvoteThread(ctx context.Context, actorID, threadID string) error
	RepostThread(ctx context.Context, actorID, threadID, communitySlug string) (*models.Thread, error)
	AddComment(ctx context.Context, actorID, threadID, title string) (*models.Thread, error)
	UpdateThread(ctx context.Context, actorID, threadID string, text models.ThreadText) error
	FetchPosts(ctx context.Context, page, pageSize int) ([]models.Thread, bool, error)
	FetchThreadByID(ctx context.Context, threadID string) (*models.Thread, error)
	FetchAllDescendants(ctx context.Context, threadID string) ([]models.Thread, error)
	FollowUser(ctx context.Context, actorID, targetID string) error
}

type threadService struct {
	threads       repositories.ThreadRepository
	users         repositories.UserRepository
	communities   repositories.CommunityRepository
	notifications repositories.NotificationRepository
	gate          ModerationGate
	mentions      *MentionResolver
	logger        *zap.Logger
}

// NewThreadService creates the engine with all collaborators injected.
func NewThreadService(
	threads repositories.ThreadRepository,
	users repositories.UserRepository,
	communities repositories.CommunityRepository,
	notifications repositories.NotificationRepository,
	gate ModerationGate,
	mentions *MentionResolver,
	logger *zap.Logger,
) ThreadService {
	return &threadService{
		threads:       threads,
		users:         users,
		communities:   communities,
		notifications: notifications,
		gate:          gate,
		mentions:      mentions,
		logger:        logger,
	}
}

// mapNotFound translates the repository sentinel into the service taxonomy.
func mapNotFound(err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

// CreateThread runs the full creation sequence: moderation gate, mention
// resolution, notification commit, thread insert, back-reference updates.
// The thread id is generated up front so mention notifications are fully
// linked the moment they are written; no patch phase exists.
func (s *threadService) CreateThread(ctx context.Context, actorID string, req models.CreateThreadRequest) (*models.Thread, error) {
	// No side effect may happen before the gate passes.
	if err := s.gate.Check(ctx, req.Title); err != nil {
		return nil, err
	}

	actor, err := s.users.GetUserByID(ctx, actorID)
	if err != nil {
		return nil, mapNotFound(err)
	}

	var communityID *primitive.ObjectID
	if req.CommunityID != "" {
		community, err := s.communities.GetCommunityBySlug(ctx, req.CommunityID)
		if err != nil && !errors.Is(err, repositories.ErrNotFound) {
			return nil, err
		}
		if community != nil {
			communityID = &community.ID
		}
	}

	threadID := primitive.NewObjectID()

	recipients, err := s.mentions.Resolve(ctx, req.Title, actor.ID)
	if err != nil {
		return nil, err
	}
	if len(recipients) > 0 {
		notifications := make([]models.Notification, 0, len(recipients))
		events := make([]models.OutboxEvent, 0, len(recipients))
		excerpt := models.Truncate(req.Title)
		title := fmt.Sprintf("You were mentioned by %s", actor.Username)
		for _, recipient := range recipients {
			notifications = append(notifications, models.Notification{
				RecipientID: recipient.Hex(),
				ActorID:     actor.ID.Hex(),
				Type:        models.NotificationMention,
				EntityID:    threadID.Hex(),
				Excerpt:     excerpt,
			})
			events = append(events, models.OutboxEvent{
				RecipientID: recipient.Hex(),
				Type:        models.NotificationMention,
				Title:       title,
				Excerpt:     excerpt,
			})
		}
		if err := s.notifications.CreateWithOutbox(notifications, events); err != nil {
			return nil, fmt.Errorf("failed to write mention notifications: %w", err)
		}
		metrics.NotificationsCreated.WithLabelValues(models.NotificationMention).Add(float64(len(notifications)))
	}

	thread := &models.Thread{
		ID:        threadID,
		Text:      models.ThreadText{Title: req.Title, Images: req.Images},
		Author:    actor.ID,
		Community: communityID,
		FocusMode: req.FocusMode,
		ExpiresAt: req.ExpiresAt,
	}
	if err := s.threads.CreateThread(ctx, thread); err != nil {
		return nil, fmt.Errorf("failed to create thread: %w", err)
	}

	if err := s.users.PushThread(ctx, actor.ID, thread.ID); err != nil {
		return nil, fmt.Errorf("failed to link thread to author: %w", err)
	}
	if communityID != nil {
		if err := s.communities.PushThread(ctx, *communityID, thread.ID); err != nil {
			return nil, fmt.Errorf("failed to link thread to community: %w", err)
		}
	}
	return thread, nil
}

// AddComment inserts a reply under a thread and notifies its author.
func (s *threadService) AddComment(ctx context.Context, actorID, threadID, title string) (*models.Thread, error) {
	parent, err := s.threads.GetThreadByID(ctx, threadID)
	if err != nil {
		return nil, mapNotFound(err)
	}
	actorOID, err := primitive.ObjectIDFromHex(actorID)
	if err != nil {
		return nil, fmt.Errorf("invalid actor ID format: %w", err)
	}

	comment := &models.Thread{
		ID:       primitive.NewObjectID(),
		Text:     models.ThreadText{Title: title},
		Author:   actorOID,
		ParentID: parent.ID.Hex(),
	}
	if err := s.threads.CreateThread(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}
	if err := s.threads.PushChild(ctx, parent.ID, comment.ID); err != nil {
		return nil, mapNotFound(err)
	}

	if err := s.notify(models.Notification{
		RecipientID: parent.Author.Hex(),
		ActorID:     actorID,
		Type:        models.NotificationComment,
		EntityID:    parent.ID.Hex(),
		Excerpt:     models.Truncate(title),
	}, "New comment"); err != nil {
		return nil, err
	}
	return comment, nil
}

// UpvoteThread appends the actor to the thread's upvote list. A repeated
// upvote by the same identity is rejected, never appended twice.
func (s *threadService) UpvoteThread(ctx context.Context, actorID, threadID string) error {
	thread, err := s.threads.GetThreadByID(ctx, threadID)
	if err != nil {
		return mapNotFound(err)
	}

	added, err := s.threads.AddUpvote(ctx, threadID, actorID)
	if err != nil {
		return mapNotFound(err)
	}
	if !added {
		return ErrAlreadyUpvoted
	}

	return s.notify(models.Notification{
		RecipientID: thread.Author.Hex(),
		ActorID:     actorID,
		Type:        models.NotificationUpvote,
		EntityID:    thread.ID.Hex(),
		Excerpt:     models.Truncate(thread.Text.Title),
	}, "New upvote")
}

// RepostThread creates a shared record of the target thread. Share chains
// always collapse to the canonical root post, and the resharer chain grows by
// exactly one appended entry.
func (s *threadService) RepostThread(ctx context.Context, actorID, threadID, communitySlug string) (*models.Thread, error) {
	source, err := s.threads.GetThreadByID(ctx, threadID)
	if err != nil {
		return nil, mapNotFound(err)
	}
	actorOID, err := primitive.ObjectIDFromHex(actorID)
	if err != nil {
		return nil, fmt.Errorf("invalid actor ID format: %w", err)
	}

	// Collapse the chain: resharing a share points at its original, never at
	// the intermediate share itself.
	originalPostID := source.ID
	if source.IsShared && source.OriginalPost != nil {
		originalPostID = *source.OriginalPost
	}

	originalCommunity := source.OriginalCommunity
	if originalCommunity == nil {
		originalCommunity = source.Community
	}

	var sharedBy []primitive.ObjectID
	if source.IsShared {
		sharedBy = append(append(sharedBy, source.SharedBy...), actorOID)
	} else {
		sharedBy = []primitive.ObjectID{actorOID}
	}

	var communityID *primitive.ObjectID
	if communitySlug != "" {
		community, err := s.communities.GetCommunityBySlug(ctx, communitySlug)
		if err != nil && !errors.Is(err, repositories.ErrNotFound) {
			return nil, err
		}
		if community != nil {
			communityID = &community.ID
		}
	}

	repost := &models.Thread{
		ID:                primitive.NewObjectID(),
		Text:              source.Text, // media is referenced, not duplicated
		Author:            actorOID,
		Community:         communityID,
		IsShared:          true,
		OriginalPost:      &originalPostID,
		SharedBy:          sharedBy,
		OriginalCommunity: originalCommunity,
	}
	if err := s.threads.CreateThread(ctx, repost); err != nil {
		return nil, fmt.Errorf("failed to create repost: %w", err)
	}
	if err := s.users.PushThread(ctx, actorOID, repost.ID); err != nil {
		return nil, fmt.Errorf("failed to link repost to author: %w", err)
	}

	// Only the canonical original author gets notified, and never about
	// their own reshare.
	original := source
	if originalPostID != source.ID {
		original, err = s.threads.GetThreadByID(ctx, originalPostID.Hex())
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				s.logger.Warn("repost original no longer exists", zap.String("original_id", originalPostID.Hex()))
				return repost, nil
			}
			return nil, err
		}
	}
	if original.Author != actorOID {
		if err := s.notify(models.Notification{
			RecipientID: original.Author.Hex(),
			ActorID:     actorID,
			Type:        models.NotificationRepost,
			EntityID:    originalPostID.Hex(),
			Excerpt:     models.Truncate(original.Text.Title),
		}, "New repost"); err != nil {
			return nil, err
		}
	}
	return repost, nil
}

// UpdateThread replaces a thread's text. Only the author may edit.
func (s *threadService) UpdateThread(ctx context.Context, actorID, threadID string, text models.ThreadText) error {
	thread, err := s.threads.GetThreadByID(ctx, threadID)
	if err != nil {
		return mapNotFound(err)
	}
	if thread.Author.Hex() != actorID {
		return ErrUnauthorized
	}
	return mapNotFound(s.threads.UpdateThreadText(ctx, threadID, text))
}

// DeleteThread removes a thread and every transitive descendant, then pulls
// the deleted ids out of the touched author and community aggregates. Only
// the author may delete; deletion always cascades.
func (s *threadService) DeleteThread(ctx context.Context, actorID, threadID string) error {
	root, err := s.threads.GetThreadByID(ctx, threadID)
	if err != nil {
		return mapNotFound(err)
	}
	if root.Author.Hex() != actorID {
		return ErrUnauthorized
	}

	ids, authorIDs, communityIDs, err := s.collectSubtree(ctx, root)
	if err != nil {
		return err
	}

	deleted, err := s.threads.DeleteThreads(ctx, ids)
	if err != nil {
		return fmt.Errorf("failed to delete thread subtree: %w", err)
	}
	metrics.ThreadsDeleted.Add(float64(deleted))

	// The pulls are idempotent, so a transient failure is retried against
	// the same id set rather than surfaced with the graph half-cleaned.
	if err := withRetry(3, func() error {
		return s.users.PullThreads(ctx, authorIDs, ids)
	}); err != nil {
		return fmt.Errorf("failed to update author back-references: %w", err)
	}
	if err := withRetry(3, func() error {
		return s.communities.PullThreads(ctx, communityIDs, ids)
	}); err != nil {
		return fmt.Errorf("failed to update community back-references: %w", err)
	}

	// A deleted reply must also disappear from its parent's children list,
	// or the surviving parent keeps referencing a dead id.
	if root.ParentID != "" {
		parentOID, err := primitive.ObjectIDFromHex(root.ParentID)
		if err != nil {
			s.logger.Warn("skipping parent child-reference pull, malformed parent id",
				zap.String("thread_id", root.ID.Hex()),
				zap.String("parent_id", root.ParentID))
			return nil
		}
		if err := withRetry(3, func() error {
			return s.threads.PullChild(ctx, parentOID, root.ID)
		}); err != nil {
			return fmt.Errorf("failed to update parent child-references: %w", err)
		}
	}
	return nil
}

// collectSubtree materializes the full descendant id set of root (root
// included) with an iterative breadth-first walk, one batched child fetch per
// level. It also accumulates the distinct author and community ids touched.
func (s *threadService) collectSubtree(ctx context.Context, root *models.Thread) ([]primitive.ObjectID, []primitive.ObjectID, []primitive.ObjectID, error) {
	ids := []primitive.ObjectID{root.ID}
	authorSet := map[primitive.ObjectID]struct{}{root.Author: {}}
	communitySet := map[primitive.ObjectID]struct{}{}
	if root.Community != nil {
		communitySet[*root.Community] = struct{}{}
	}

	frontier := []string{root.ID.Hex()}
	for len(frontier) > 0 {
		children, err := s.threads.GetChildrenOf(ctx, frontier)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to fetch thread level: %w", err)
		}
		frontier = frontier[:0]
		for _, child := range children {
			ids = append(ids, child.ID)
			authorSet[child.Author] = struct{}{}
			if child.Community != nil {
				communitySet[*child.Community] = struct{}{}
			}
			frontier = append(frontier, child.ID.Hex())
		}
	}

	authorIDs := make([]primitive.ObjectID, 0, len(authorSet))
	for id := range authorSet {
		authorIDs = append(authorIDs, id)
	}
	communityIDs := make([]primitive.ObjectID, 0, len(communitySet))
	for id := range communitySet {
		communityIDs = append(communityIDs, id)
	}
	return ids, authorIDs, communityIDs, nil
}

// FetchPosts returns one page of root posts, newest first.
func (s *threadService) FetchPosts(ctx context.Context, page, pageSize int) ([]models.Thread, bool, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	skip := int64((page - 1) * pageSize)

	threads, total, err := s.threads.GetRootThreads(ctx, skip, int64(pageSize))
	if err != nil {
		return nil, false, err
	}
	isNext := total > skip+int64(len(threads))
	return threads, isNext, nil
}

// FetchThreadByID returns a single thread.
func (s *threadService) FetchThreadByID(ctx context.Context, threadID string) (*models.Thread, error) {
	thread, err := s.threads.GetThreadByID(ctx, threadID)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return thread, nil
}

// FetchAllDescendants returns every transitive reply under a thread, level by
// level, excluding the thread itself.
func (s *threadService) FetchAllDescendants(ctx context.Context, threadID string) ([]models.Thread, error) {
	root, err := s.threads.GetThreadByID(ctx, threadID)
	if err != nil {
		return nil, mapNotFound(err)
	}

	var descendants []models.Thread
	frontier := []string{root.ID.Hex()}
	for len(frontier) > 0 {
		children, err := s.threads.GetChildrenOf(ctx, frontier)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch thread level: %w", err)
		}
		frontier = frontier[:0]
		for _, child := range children {
			descendants = append(descendants, child)
			frontier = append(frontier, child.ID.Hex())
		}
	}
	return descendants, nil
}

// FollowUser records a follow edge and notifies the followed user.
func (s *threadService) FollowUser(ctx context.Context, actorID, targetID string) error {
	if actorID == targetID {
		return ErrSelfAction
	}
	targetOID, err := primitive.ObjectIDFromHex(targetID)
	if err != nil {
		return fmt.Errorf("invalid user ID format: %w", err)
	}
	actorOID, err := primitive.ObjectIDFromHex(actorID)
	if err != nil {
		return fmt.Errorf("invalid actor ID format: %w", err)
	}

	if err := s.users.AddFollower(ctx, targetOID, actorOID); err != nil {
		return mapNotFound(err)
	}

	return s.notify(models.Notification{
		RecipientID: targetID,
		ActorID:     actorID,
		Type:        models.NotificationFollow,
		EntityID:    actorID,
	}, "New follower")
}

// notify persists one notification with its outbox event atomically.
func (s *threadService) notify(n models.Notification, title string) error {
	event := models.OutboxEvent{
		RecipientID: n.RecipientID,
		Type:        n.Type,
		Title:       title,
		Excerpt:     n.Excerpt,
	}
	if err := s.notifications.CreateWithOutbox([]models.Notification{n}, []models.OutboxEvent{event}); err != nil {
		return fmt.Errorf("failed to write %s notification: %w", n.Type, err)
	}
	metrics.NotificationsCreated.WithLabelValues(n.Type).Inc()
	return nil
}

// withRetry runs fn up to attempts times with a short linear backoff.
func withRetry(attempts int, fn func() error) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		time.Sleep(time.Duration(i+1) * 100 * time.Millisecond)
	}
	return err
}
