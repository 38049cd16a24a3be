package services

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/ThisaraSadesh/Threads-SL/internal/repositories"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

var mentionPattern = regexp.MustCompile(`@(\w+)`)

// handleCacheTTL bounds how long a resolved handle stays cached. Handles can
// be renamed, so the cache is a lookaside only.
const handleCacheTTL = 10 * time.Minute

// ExtractMentions returns the distinct @handles in text, in order of first
// appearance.
func ExtractMentions(text string) []string {
	matches := mentionPattern.FindAllStringSubmatch(text, -1)
	seen := make(map[string]struct{}, len(matches))
	handles := make([]string, 0, len(matches))
	for _, m := range matches {
		if _, ok := seen[m[1]]; ok {
			continue
		}
		seen[m[1]] = struct{}{}
		handles = append(handles, m[1])
	}
	return handles
}

// MentionResolver turns @handles in post text into recipient identities.
// Unresolved handles and self-mentions are dropped silently.
type MentionResolver struct {
	users  repositories.UserRepository
	cache  *redis.Client // optional
	logger *zap.Logger
}

// NewMentionResolver creates a MentionResolver. cache may be nil.
func NewMentionResolver(users repositories.UserRepository, cache *redis.Client, logger *zap.Logger) *MentionResolver {
	return &MentionResolver{users: users, cache: cache, logger: logger}
}

// Resolve maps the mentions in text to distinct user ids, excluding actorID.
func (r *MentionResolver) Resolve(ctx context.Context, text string, actorID primitive.ObjectID) ([]primitive.ObjectID, error) {
	handles := ExtractMentions(text)
	if len(handles) == 0 {
		return nil, nil
	}

	seen := make(map[primitive.ObjectID]struct{}, len(handles))
	recipients := make([]primitive.ObjectID, 0, len(handles))
	for _, handle := range handles {
		id, err := r.resolveHandle(ctx, handle)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				continue
			}
			return nil, err
		}
		if id == actorID {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		recipients = append(recipients, id)
	}
	return recipients, nil
}

func (r *MentionResolver) resolveHandle(ctx context.Context, handle string) (primitive.ObjectID, error) {
	key := "handle:" + handle

	if r.cache != nil {
		hex, err := r.cache.Get(ctx, key).Result()
		if err == nil {
			if id, idErr := primitive.ObjectIDFromHex(hex); idErr == nil {
				return id, nil
			}
		} else if err != redis.Nil {
			r.logger.Warn("handle cache lookup failed", zap.String("handle", handle), zap.Error(err))
		}
	}

	user, err := r.users.GetUserByUsername(ctx, handle)
	if err != nil {
		return primitive.NilObjectID, err
	}

	if r.cache != nil {
		if err := r.cache.Set(ctx, key, user.ID.Hex(), handleCacheTTL).Err(); err != nil {
			r.logger.Warn("handle cache store failed", zap.String("handle", handle), zap.Error(err))
		}
	}
	return user.ID, nil
}
