package cache

import (
	"context"
	"log/slog"
	"time"

	"campusbus/internal/store"
)

// CacheWarmer pre-populates the merged-feed entry from the snapshot store
// so the first request after startup is served hot.
type CacheWarmer struct {
	cache  *RedisCache
	store  *store.Store
	ttl    time.Duration
	logger *slog.Logger
}

func NewCacheWarmer(cache *RedisCache, st *store.Store, ttl time.Duration, logger *slog.Logger) *CacheWarmer {
	return &CacheWarmer{
		cache:  cache,
		store:  st,
		ttl:    ttl,
		logger: logger.With("component", "cache_warmer"),
	}
}

func (w *CacheWarmer) WarmAll(ctx context.Context) error {
	start := time.Now()

	schedules := w.store.Snapshot()
	if len(schedules) == 0 {
		w.logger.Info("nothing to warm, snapshot empty")
		return nil
	}

	if err := w.cache.SetJSON(ctx, KeyMergedAll, schedules, w.ttl); err != nil {
		w.logger.Error("failed to warm merged feed", "error", err)
		return err
	}

	w.logger.Info("cache warming completed",
		"schedules", len(schedules),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}
