package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"gopherblog/internal/model"
)

const (
	feedKey      = "blog:feed"
	feedDirtyKey = "blog:feed:dirty"
)

// FeedCache keeps the rendered post feed in Redis. The dirty marker is set
// before every post mutation so a reader that raced the mutation cannot
// re-cache a stale feed while the marker lives.
type FeedCache struct {
	client         *redisv9.Client
	feedTTL        time.Duration
	dirtyMarkerTTL time.Duration
}

func NewFeedCache(client *redisv9.Client, feedTTL, dirtyMarkerTTL time.Duration) *FeedCache {
	if feedTTL <= 0 {
		feedTTL = 60 * time.Second
	}
	if dirtyMarkerTTL <= 0 {
		dirtyMarkerTTL = 5 * time.Second
	}
	return &FeedCache{
		client:         client,
		feedTTL:        feedTTL,
		dirtyMarkerTTL: dirtyMarkerTTL,
	}
}

func (c *FeedCache) GetFeed(ctx context.Context) ([]model.PostView, bool, error) {
	raw, err := c.client.Get(ctx, feedKey).Result()
	if err == redisv9.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get feed failed: %w", err)
	}

	var feed []model.PostView
	if err := json.Unmarshal([]byte(raw), &feed); err != nil {
		return nil, false, fmt.Errorf("unmarshal cached feed failed: %w", err)
	}
	return feed, true, nil
}

func (c *FeedCache) SetFeed(ctx context.Context, feed []model.PostView) error {
	payload, err := json.Marshal(feed)
	if err != nil {
		return fmt.Errorf("marshal feed cache failed: %w", err)
	}
	if err := c.client.Set(ctx, feedKey, payload, c.feedTTL).Err(); err != nil {
		return fmt.Errorf("redis set feed failed: %w", err)
	}
	return nil
}

func (c *FeedCache) DeleteFeed(ctx context.Context) error {
	if err := c.client.Del(ctx, feedKey).Err(); err != nil {
		return fmt.Errorf("redis delete feed failed: %w", err)
	}
	return nil
}

func (c *FeedCache) MarkDirty(ctx context.Context) error {
	if err := c.client.Set(ctx, feedDirtyKey, "1", c.dirtyMarkerTTL).Err(); err != nil {
		return fmt.Errorf("redis set dirty marker failed: %w", err)
	}
	return nil
}

func (c *FeedCache) IsDirty(ctx context.Context) (bool, error) {
	exists, err := c.client.Exists(ctx, feedDirtyKey).Result()
	if err != nil {
		return false, fmt.Errorf("redis check dirty marker failed: %w", err)
	}
	return exists > 0, nil
}
