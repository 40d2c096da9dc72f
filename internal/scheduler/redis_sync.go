package scheduler

import (
	"context"
	"errors"

	"github.com/MrSnakeDoc/promoavail/internal/index"
	"github.com/MrSnakeDoc/promoavail/internal/logger"
	redisstore "github.com/MrSnakeDoc/promoavail/internal/store/redis"
)

// MirrorLoader returns the last catalog mirrored to redis
type MirrorLoader interface {
	LoadCatalog(ctx context.Context) (redisstore.Mirror, error)
}

// RedisSyncer warm-starts the catalog cache from the redis mirror
type RedisSyncer struct {
	store   MirrorLoader
	catalog *index.Catalog
	logger  logger.Logger
}

// NewRedisSyncer creates a new Redis syncer
func NewRedisSyncer(store MirrorLoader, cat *index.Catalog, log logger.Logger) *RedisSyncer {
	return &RedisSyncer{
		store:   store,
		catalog: cat,
		logger:  log,
	}
}

// Sync swaps in the mirrored snapshot unless the cache is already populated.
// It returns true when a snapshot was installed.
func (rs *RedisSyncer) Sync(ctx context.Context) (bool, error) {
	if rs.catalog.Populated() {
		return false, nil
	}

	rs.logger.Info("warm-starting catalog from redis")

	mirror, err := rs.store.LoadCatalog(ctx)
	if errors.Is(err, redisstore.ErrNoMirror) {
		rs.logger.Info("no catalog mirror found in redis")
		return false, nil
	}
	if err != nil {
		return false, err
	}

	rs.catalog.Restore(index.NewSnapshot(mirror.Products, mirror.Synonyms, mirror.LoadedAt, index.OriginRedis))

	rs.logger.Info("loaded catalog from redis",
		logger.Int("products", len(mirror.Products)),
		logger.Int("synonyms", len(mirror.Synonyms)),
		logger.Time("mirrored_at", mirror.LoadedAt))

	return true, nil
}
