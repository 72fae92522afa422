package app

import (
	"context"

	"gopherblog/internal/model"
)

// UserStore is the credential store consumed by the services. The gorm
// repository satisfies it; tests substitute an in-memory fake.
type UserStore interface {
	Create(user *model.User) error
	GetByUsername(username string) (*model.User, error)
	GetByID(id uint) (*model.User, error)
	List() ([]model.User, error)
	Delete(id uint) error
}

// PostStore is the post store consumed by the post service.
type PostStore interface {
	Create(post *model.Post) error
	GetByID(id uint) (*model.Post, error)
	ListNewestFirst() ([]model.Post, error)
	Update(post *model.Post) error
	Delete(id uint) error
}

// AuditEventStore reads back the persisted audit trail.
type AuditEventStore interface {
	ListRecent(limit int) ([]model.AuditEvent, error)
}

// AuditPublisher enqueues audit events for asynchronous persistence.
// Publish failures never fail the user-facing call.
type AuditPublisher interface {
	Publish(ctx context.Context, event model.AuditEvent) error
}

// FeedCache caches the rendered post feed. A dirty marker set on every post
// mutation keeps a concurrent reader from re-caching a stale feed.
type FeedCache interface {
	GetFeed(ctx context.Context) ([]model.PostView, bool, error)
	SetFeed(ctx context.Context, feed []model.PostView) error
	DeleteFeed(ctx context.Context) error
	MarkDirty(ctx context.Context) error
	IsDirty(ctx context.Context) (bool, error)
}
