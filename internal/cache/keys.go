package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"hotorflop/internal/middleware"

	"github.com/redis/go-redis/v9"
)

const (
	GraphKeyPrefix   = "graph:%d"
	ResultsKeyPrefix = "post:%d:results"
	UserKeyPrefix    = "user:%d"
)

const (
	ResultsTTL = 30 * time.Second
	UserTTL    = 5 * time.Minute
)

// GraphKey caches the viewer's relationship graph.
func GraphKey(viewerID uint) string {
	return fmt.Sprintf(GraphKeyPrefix, viewerID)
}

// ResultsKey caches a post's vote summary.
func ResultsKey(postID uint) string {
	return fmt.Sprintf(ResultsKeyPrefix, postID)
}

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

// GetJSON decodes key into dest. It reports false on a miss or when no client is set.
func GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	if client == nil {
		return false, nil
	}
	raw, err := client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("decode cached %s: %w", key, err)
	}
	return true, nil
}

// SetJSON stores v under key for ttl. It is a no-op without a client.
func SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	if client == nil {
		return nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return client.Set(ctx, key, raw, ttl).Err()
}

// Aside returns the cached value for key, calling load and caching its result
// on a miss. Cache failures are logged and fall through to load.
func Aside[T any](ctx context.Context, key string, ttl time.Duration, load func(context.Context) (T, error)) (T, bool, error) {
	var cached T
	hit, err := GetJSON(ctx, key, &cached)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "cache read failed", slog.String("key", key), slog.String("error", err.Error()))
	}
	if hit {
		return cached, true, nil
	}

	v, err := load(ctx)
	if err != nil {
		return v, false, err
	}
	if err := SetJSON(ctx, key, v, ttl); err != nil {
		middleware.Logger.WarnContext(ctx, "cache write failed", slog.String("key", key), slog.String("error", err.Error()))
	}
	return v, false, nil
}

// Invalidate drops keys. Failures only mean a stale read until the TTL passes.
func Invalidate(ctx context.Context, keys ...string) {
	if client == nil || len(keys) == 0 {
		return
	}
	if err := client.Del(ctx, keys...).Err(); err != nil {
		middleware.Logger.WarnContext(ctx, "cache invalidation failed", slog.Any("keys", keys), slog.String("error", err.Error()))
	}
}

// InvalidateGraph drops the cached graphs of every listed viewer.
func InvalidateGraph(ctx context.Context, viewerIDs ...uint) {
	keys := make([]string, 0, len(viewerIDs))
	for _, id := range viewerIDs {
		keys = append(keys, GraphKey(id))
	}
	Invalidate(ctx, keys...)
}
