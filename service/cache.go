// file: service/cache.go

package service

import (
	"context"
	"fmt"
	"time"

	"card-bank-api/logger"

	"github.com/redis/go-redis/v9"
)

// ICacheClient defines the contract for a cache client.
// *redis.Client satisfies it; tests substitute a mock.
type ICacheClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

const defaultCacheTTL = 10 * time.Minute

func cardsCacheKey(userID int64) string {
	return fmt.Sprintf("cards:%d", userID)
}

// invalidateCards drops the cached card lists of the given users. Failures are
// logged only: a stale entry expires on its own TTL.
func invalidateCards(ctx context.Context, cache ICacheClient, userIDs ...int64) {
	if cache == nil || len(userIDs) == 0 {
		return
	}
	keys := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		keys = append(keys, cardsCacheKey(id))
	}
	if err := cache.Del(ctx, keys...).Err(); err != nil {
		logger.Log.WithError(err).WithField("keys", keys).Warn("Failed to invalidate card cache")
	}
}
