package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"poorito-booking/internal/data/entity"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const mountainKeyPrefix = "poorito:mountain:"

// cachedMountainRepository serves FindByID from Redis and falls back to next on a miss or a Redis error.
// Lists always go to next.
type cachedMountainRepository struct {
	next MountainRepository
	rdb  *redis.Client
	ttl  time.Duration
	log  *zap.Logger
}

func NewCachedMountainRepository(next MountainRepository, rdb *redis.Client, ttl time.Duration, log *zap.Logger) MountainRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &cachedMountainRepository{
		next: next,
		rdb:  rdb,
		ttl:  ttl,
		log:  log.With(zap.String("repository", "mountain_cache")),
	}
}

func mountainKey(id int64) string {
	return fmt.Sprintf("%s%d", mountainKeyPrefix, id)
}

func (r *cachedMountainRepository) FindByID(ctx context.Context, id int64) (*entity.Mountain, error) {
	key := mountainKey(id)

	payload, err := r.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var mountain entity.Mountain
		if err := json.Unmarshal(payload, &mountain); err == nil {
			return &mountain, nil
		}
		r.log.Warn("Discarding unreadable cache entry", zap.String("key", key))
	case !errors.Is(err, redis.Nil):
		r.log.Warn("Mountain cache unavailable", zap.Error(err), zap.Int64("mountain_id", id))
	}

	mountain, err := r.next.FindByID(ctx, id)
	if err != nil || mountain == nil {
		return mountain, err
	}

	if payload, err := json.Marshal(mountain); err == nil {
		if err := r.rdb.Set(ctx, key, payload, r.ttl).Err(); err != nil {
			r.log.Warn("Failed to cache mountain", zap.Error(err), zap.Int64("mountain_id", id))
		}
	}

	return mountain, nil
}

func (r *cachedMountainRepository) FindAll(ctx context.Context) ([]*entity.Mountain, error) {
	return r.next.FindAll(ctx)
}

func (r *cachedMountainRepository) FindByDifficulty(ctx context.Context, difficulty string) ([]*entity.Mountain, error) {
	return r.next.FindByDifficulty(ctx, difficulty)
}
