package app_test

import (
	"context"
	"sort"
	"time"

	"gopherblog/internal/model"
)

// In-memory stores standing in for the gorm repositories. All assignment of
// IDs and creation timestamps mirrors what the database would do.

type fakeUserStore struct {
	users  map[uint]*model.User
	nextID uint
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[uint]*model.User), nextID: 1}
}

func (s *fakeUserStore) Create(user *model.User) error {
	user.ID = s.nextID
	s.nextID++
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	clone := *user
	s.users[user.ID] = &clone
	return nil
}

func (s *fakeUserStore) GetByUsername(username string) (*model.User, error) {
	for _, user := range s.users {
		if user.Username == username {
			clone := *user
			return &clone, nil
		}
	}
	return nil, nil
}

func (s *fakeUserStore) GetByID(id uint) (*model.User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	clone := *user
	return &clone, nil
}

func (s *fakeUserStore) List() ([]model.User, error) {
	users := make([]model.User, 0, len(s.users))
	for _, user := range s.users {
		users = append(users, *user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (s *fakeUserStore) Delete(id uint) error {
	delete(s.users, id)
	return nil
}

type fakePostStore struct {
	posts  map[uint]*model.Post
	nextID uint
	clock  time.Time
}

func newFakePostStore() *fakePostStore {
	return &fakePostStore{
		posts:  make(map[uint]*model.Post),
		nextID: 1,
		clock:  time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (s *fakePostStore) Create(post *model.Post) error {
	post.ID = s.nextID
	s.nextID++
	if post.CreatedAt.IsZero() {
		s.clock = s.clock.Add(time.Second)
		post.CreatedAt = s.clock
	}
	post.UpdatedAt = post.CreatedAt
	clone := *post
	s.posts[post.ID] = &clone
	return nil
}

func (s *fakePostStore) GetByID(id uint) (*model.Post, error) {
	post, ok := s.posts[id]
	if !ok {
		return nil, nil
	}
	clone := *post
	return &clone, nil
}

func (s *fakePostStore) ListNewestFirst() ([]model.Post, error) {
	posts := make([]model.Post, 0, len(s.posts))
	for _, post := range s.posts {
		posts = append(posts, *post)
	}
	sort.Slice(posts, func(i, j int) bool {
		if !posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return posts[i].CreatedAt.After(posts[j].CreatedAt)
		}
		return posts[i].ID < posts[j].ID
	})
	return posts, nil
}

func (s *fakePostStore) Update(post *model.Post) error {
	clone := *post
	s.posts[post.ID] = &clone
	return nil
}

func (s *fakePostStore) Delete(id uint) error {
	delete(s.posts, id)
	return nil
}

type fakeAuditPublisher struct {
	events  []model.AuditEvent
	failErr error
}

func (p *fakeAuditPublisher) Publish(_ context.Context, event model.AuditEvent) error {
	if p.failErr != nil {
		return p.failErr
	}
	p.events = append(p.events, event)
	return nil
}

type fakeAuditStore struct {
	events []model.AuditEvent
}

func (s *fakeAuditStore) ListRecent(limit int) ([]model.AuditEvent, error) {
	if limit <= 0 || limit > len(s.events) {
		limit = len(s.events)
	}
	return s.events[:limit], nil
}

type fakeFeedCache struct {
	feed      []model.PostView
	hasFeed   bool
	dirty     bool
	setCalls  int
	getCalls  int
	delCalls  int
	markCalls int
}

func (c *fakeFeedCache) GetFeed(_ context.Context) ([]model.PostView, bool, error) {
	c.getCalls++
	if !c.hasFeed {
		return nil, false, nil
	}
	return c.feed, true, nil
}

func (c *fakeFeedCache) SetFeed(_ context.Context, feed []model.PostView) error {
	c.setCalls++
	c.feed = feed
	c.hasFeed = true
	return nil
}

func (c *fakeFeedCache) DeleteFeed(_ context.Context) error {
	c.delCalls++
	c.feed = nil
	c.hasFeed = false
	return nil
}

func (c *fakeFeedCache) MarkDirty(_ context.Context) error {
	c.markCalls++
	c.dirty = true
	return nil
}

func (c *fakeFeedCache) IsDirty(_ context.Context) (bool, error) {
	return c.dirty, nil
}
