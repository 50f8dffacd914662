package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"campuswall/internal/observability"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
)

const (
	ConfessionKeyPrefix  = "confession:%d"
	FeedKeyPrefix        = "feed:%s:%s"
	RoomKeyPrefix        = "room:%d"
	MessageHistoryPrefix = "room:%d:messages"
	MarketplaceListKey   = "marketplace:items"
	CollegeListKey       = "colleges:active"
)

const (
	ConfessionTTL     = 30 * time.Minute
	FeedTTL           = 1 * time.Minute
	MessageHistoryTTL = 2 * time.Minute
	MarketplaceTTL    = 10 * time.Minute
	CollegeTTL        = 10 * time.Minute
)

func ConfessionKey(confessionID uint) string {
	return fmt.Sprintf(ConfessionKeyPrefix, confessionID)
}

// FeedKey identifies a cached approved-confession page. Category may be
// empty for the unfiltered feed.
func FeedKey(collegeCode, category string) string {
	return fmt.Sprintf(FeedKeyPrefix, collegeCode, category)
}

func RoomKey(roomID uint) string {
	return fmt.Sprintf(RoomKeyPrefix, roomID)
}

func MessageHistoryKey(roomID uint) string {
	return fmt.Sprintf(MessageHistoryPrefix, roomID)
}

// Aside implements the cache-aside pattern: on hit, dest is populated from
// the cached JSON; on miss, load is called and its result cached with ttl.
// A nil client degrades to calling load directly.
func Aside(ctx context.Context, key string, dest interface{}, ttl time.Duration, load func() error) error {
	if client == nil {
		return load()
	}

	ctx, span := observability.TraceRedisOperation(ctx, "cache_aside")
	defer span.End()
	span.SetAttributes(attribute.String("cache.key", key))

	raw, err := client.Get(ctx, key).Result()
	if err == nil {
		if unmarshalErr := json.Unmarshal([]byte(raw), dest); unmarshalErr == nil {
			return nil
		}
		// Corrupt entry, fall through to the loader
		client.Del(ctx, key)
	} else if !errors.Is(err, redis.Nil) {
		// Redis unavailable, serve from the source
		return load()
	}

	if err := load(); err != nil {
		return err
	}

	if encoded, marshalErr := json.Marshal(dest); marshalErr == nil {
		client.Set(ctx, key, encoded, ttl)
	}
	return nil
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateConfession(ctx context.Context, confessionID uint) {
	Invalidate(ctx, ConfessionKey(confessionID))
}

// InvalidateFeeds drops every cached feed page for the college. Category
// pages share the college prefix so a SCAN-free approach deletes the known
// category set plus the unfiltered page.
func InvalidateFeeds(ctx context.Context, collegeCode string, categories []string) {
	Invalidate(ctx, FeedKey(collegeCode, ""))
	for _, cat := range categories {
		Invalidate(ctx, FeedKey(collegeCode, cat))
	}
}

func InvalidateRoom(ctx context.Context, roomID uint) {
	Invalidate(ctx, RoomKey(roomID))
	Invalidate(ctx, MessageHistoryKey(roomID))
}

func InvalidateMarketplace(ctx context.Context) {
	Invalidate(ctx, MarketplaceListKey)
}
