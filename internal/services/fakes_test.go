package services

import (
	"context"
	"sync"
	"time"

	"github.com/ThisaraSadesh/Threads-SL/internal/models"
	"github.com/ThisaraSadesh/Threads-SL/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory fakes for the repository interfaces. They keep the same
// semantics the Mongo/Postgres implementations guarantee (guarded upvote
// push, idempotent pulls, insertion-ordered children).

type fakeThreadRepo struct {
	mu      sync.Mutex
	order   []string
	threads map[string]*models.Thread
	clock   int
}

func newFakeThreadRepo() *fakeThreadRepo {
	return &fakeThreadRepo{threads: make(map[string]*models.Thread)}
}

func cloneThread(t *models.Thread) *models.Thread {
	cp := *t
	cp.Children = append([]primitive.ObjectID(nil), t.Children...)
	cp.Upvotes = append([]string(nil), t.Upvotes...)
	cp.SharedBy = append([]primitive.ObjectID(nil), t.SharedBy...)
	return &cp
}

func (r *fakeThreadRepo) CreateThread(ctx context.Context, thread *models.Thread) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if thread.ID.IsZero() {
		thread.ID = primitive.NewObjectID()
	}
	r.clock++
	thread.CreatedAt = time.Unix(int64(r.clock), 0)
	thread.UpdatedAt = thread.CreatedAt
	if thread.Children == nil {
		thread.Children = []primitive.ObjectID{}
	}
	if thread.Upvotes == nil {
		thread.Upvotes = []string{}
	}
	r.order = append(r.order, thread.ID.Hex())
	r.threads[thread.ID.Hex()] = cloneThread(thread)
	return nil
}

func (r *fakeThreadRepo) GetThreadByID(ctx context.Context, id string) (*models.Thread, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.threads[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return cloneThread(t), nil
}

func (r *fakeThreadRepo) GetRootThreads(ctx context.Context, skip, limit int64) ([]models.Thread, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var roots []models.Thread
	// newest first: walk insertion order backwards
	for i := len(r.order) - 1; i >= 0; i-- {
		if t, ok := r.threads[r.order[i]]; ok && t.ParentID == "" {
			roots = append(roots, *cloneThread(t))
		}
	}
	total := int64(len(roots))
	if skip >= total {
		return nil, total, nil
	}
	end := skip + limit
	if end > total {
		end = total
	}
	return roots[skip:end], total, nil
}

func (r *fakeThreadRepo) GetChildrenOf(ctx context.Context, parentIDs []string) ([]models.Thread, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	parents := make(map[string]struct{}, len(parentIDs))
	for _, id := range parentIDs {
		parents[id] = struct{}{}
	}
	var children []models.Thread
	for _, id := range r.order {
		t, ok := r.threads[id]
		if !ok {
			continue
		}
		if _, ok := parents[t.ParentID]; ok {
			children = append(children, *cloneThread(t))
		}
	}
	return children, nil
}

func (r *fakeThreadRepo) PushChild(ctx context.Context, parentID, childID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.threads[parentID.Hex()]
	if !ok {
		return repositories.ErrNotFound
	}
	t.Children = append(t.Children, childID)
	return nil
}

func (r *fakeThreadRepo) PullChild(ctx context.Context, parentID, childID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.threads[parentID.Hex()]
	if !ok {
		return nil
	}
	kept := t.Children[:0]
	for _, c := range t.Children {
		if c != childID {
			kept = append(kept, c)
		}
	}
	t.Children = kept
	return nil
}

func (r *fakeThreadRepo) AddUpvote(ctx context.Context, id string, actorID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.threads[id]
	if !ok {
		return false, repositories.ErrNotFound
	}
	for _, v := range t.Upvotes {
		if v == actorID {
			return false, nil
		}
	}
	t.Upvotes = append(t.Upvotes, actorID)
	return true, nil
}

func (r *fakeThreadRepo) UpdateThreadText(ctx context.Context, id string, text models.ThreadText) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.threads[id]
	if !ok {
		return repositories.ErrNotFound
	}
	t.Text = text
	return nil
}

func (r *fakeThreadRepo) DeleteThreads(ctx context.Context, ids []primitive.ObjectID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var deleted int64
	for _, id := range ids {
		if _, ok := r.threads[id.Hex()]; ok {
			delete(r.threads, id.Hex())
			deleted++
		}
	}
	return deleted, nil
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[string]*models.User)}
	for _, u := range users {
		r.users[u.ID.Hex()] = u
	}
	return r
}

func (r *fakeUserRepo) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeUserRepo) PushThread(ctx context.Context, userID, threadID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[userID.Hex()]; ok {
		u.Threads = append(u.Threads, threadID)
	}
	return nil
}

func (r *fakeUserRepo) PullThreads(ctx context.Context, userIDs, threadIDs []primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	drop := make(map[primitive.ObjectID]struct{}, len(threadIDs))
	for _, id := range threadIDs {
		drop[id] = struct{}{}
	}
	for _, uid := range userIDs {
		u, ok := r.users[uid.Hex()]
		if !ok {
			continue
		}
		kept := u.Threads[:0]
		for _, t := range u.Threads {
			if _, gone := drop[t]; !gone {
				kept = append(kept, t)
			}
		}
		u.Threads = kept
	}
	return nil
}

func (r *fakeUserRepo) AddFollower(ctx context.Context, userID, followerID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID.Hex()]
	if !ok {
		return repositories.ErrNotFound
	}
	for _, f := range u.Followers {
		if f == followerID {
			return nil
		}
	}
	u.Followers = append(u.Followers, followerID)
	if follower, ok := r.users[followerID.Hex()]; ok {
		follower.Following = append(follower.Following, userID)
	}
	return nil
}

type fakeCommunityRepo struct {
	mu          sync.Mutex
	communities map[string]*models.Community
}

func newFakeCommunityRepo(communities ...*models.Community) *fakeCommunityRepo {
	r := &fakeCommunityRepo{communities: make(map[string]*models.Community)}
	for _, c := range communities {
		r.communities[c.Slug] = c
	}
	return r
}

func (r *fakeCommunityRepo) GetCommunityBySlug(ctx context.Context, slug string) (*models.Community, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.communities[slug]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return c, nil
}

func (r *fakeCommunityRepo) PushThread(ctx context.Context, communityID, threadID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.communities {
		if c.ID == communityID {
			c.Threads = append(c.Threads, threadID)
		}
	}
	return nil
}

func (r *fakeCommunityRepo) PullThreads(ctx context.Context, communityIDs, threadIDs []primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	drop := make(map[primitive.ObjectID]struct{}, len(threadIDs))
	for _, id := range threadIDs {
		drop[id] = struct{}{}
	}
	for _, c := range r.communities {
		for _, cid := range communityIDs {
			if c.ID != cid {
				continue
			}
			kept := c.Threads[:0]
			for _, t := range c.Threads {
				if _, gone := drop[t]; !gone {
					kept = append(kept, t)
				}
			}
			c.Threads = kept
		}
	}
	return nil
}

type fakeNotificationStore struct {
	mu            sync.Mutex
	notifications []models.Notification
	events        []models.OutboxEvent
}

func newFakeNotificationStore() *fakeNotificationStore {
	return &fakeNotificationStore{}
}

func (r *fakeNotificationStore) CreateWithOutbox(notifications []models.Notification, events []models.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range notifications {
		notifications[i].ID = uint(len(r.notifications) + 1)
		notifications[i].CreatedAt = time.Now()
		r.notifications = append(r.notifications, notifications[i])
	}
	r.events = append(r.events, events...)
	return nil
}

func (r *fakeNotificationStore) GetByRecipientID(recipientID string, page, limit int) ([]models.Notification, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Notification
	for i := len(r.notifications) - 1; i >= 0; i-- {
		if r.notifications[i].RecipientID == recipientID {
			out = append(out, r.notifications[i])
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeNotificationStore) GetUnreadCount(recipientID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, n := range r.notifications {
		if n.RecipientID == recipientID && !n.Read {
			count++
		}
	}
	return count, nil
}

func (r *fakeNotificationStore) MarkAsRead(notificationID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.notifications {
		if r.notifications[i].ID == notificationID {
			r.notifications[i].Read = true
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (r *fakeNotificationStore) MarkAllAsRead(recipientID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.notifications {
		if r.notifications[i].RecipientID == recipientID {
			r.notifications[i].Read = true
		}
	}
	return nil
}

func (r *fakeNotificationStore) byType(typ string) []models.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Notification
	for _, n := range r.notifications {
		if n.Type == typ {
			out = append(out, n)
		}
	}
	return out
}

type fakeGate struct {
	err   error
	calls int
}

func (g *fakeGate) Check(ctx context.Context, text string) error {
	g.calls++
	return g.err
}

type fakeOutboxRepo struct {
	mu     sync.Mutex
	events []models.OutboxEvent
}

func (r *fakeOutboxRepo) GetPending(limit int) ([]models.OutboxEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.OutboxEvent
	for _, ev := range r.events {
		if ev.Status == models.OutboxPending && !ev.NextAttemptAt.After(time.Now()) {
			out = append(out, ev)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (r *fakeOutboxRepo) MarkSent(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.events {
		if r.events[i].ID == id {
			r.events[i].Status = models.OutboxSent
		}
	}
	return nil
}

func (r *fakeOutboxRepo) MarkFailedAttempt(id string, attempts int, nextAttemptAt time.Time, terminal bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.events {
		if r.events[i].ID == id {
			r.events[i].Attempts = attempts
			r.events[i].NextAttemptAt = nextAttemptAt
			if terminal {
				r.events[i].Status = models.OutboxFailed
			}
		}
	}
	return nil
}

type fakePublisher struct {
	mu        sync.Mutex
	failures  int
	published []PushEvent
	err       error
}

func (p *fakePublisher) Publish(ctx context.Context, recipientID string, event PushEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failures > 0 {
		p.failures--
		return p.err
	}
	p.published = append(p.published, event)
	return nil
}
