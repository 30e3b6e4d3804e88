package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RatingCache caches computed title ratings. Ratings are derived data, so
// every entry is disposable: all operations fail open when Redis is absent.
type RatingCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRatingCache creates a RatingCache backed by the given client, which may be nil.
func NewRatingCache(rdb *redis.Client) *RatingCache {
	return &RatingCache{rdb: rdb, ttl: 5 * time.Minute}
}

func ratingKey(titleID uint) string {
	return fmt.Sprintf("rating:title:%d", titleID)
}

// Get returns the cached rating for a title. The second return value
// reports a cache hit; a stored "none" marker decodes as a nil rating.
func (c *RatingCache) Get(ctx context.Context, titleID uint) (*float64, bool) {
	if c == nil || c.rdb == nil {
		return nil, false
	}
	val, err := c.rdb.Get(ctx, ratingKey(titleID)).Result()
	if err != nil {
		return nil, false
	}
	if val == "none" {
		return nil, true
	}
	rating, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return nil, false
	}
	return &rating, true
}

// Set stores the computed rating for a title; nil marks "no reviews yet".
func (c *RatingCache) Set(ctx context.Context, titleID uint, rating *float64) {
	if c == nil || c.rdb == nil {
		return
	}
	val := "none"
	if rating != nil {
		val = strconv.FormatFloat(*rating, 'f', -1, 64)
	}
	c.rdb.Set(ctx, ratingKey(titleID), val, c.ttl)
}

// Invalidate drops the cached rating after a review changes.
func (c *RatingCache) Invalidate(ctx context.Context, titleID uint) {
	if c == nil || c.rdb == nil {
		return
	}
	c.rdb.Del(ctx, ratingKey(titleID))
}
