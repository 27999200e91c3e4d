package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go-vaccination-booking/internal/domain/entity"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	// RedisAvailabilityKeyPrefix prefixes per-date availability snapshots
	RedisAvailabilityKeyPrefix = "availability:date:"

	// RedisAvailabilityGenerationPrefix prefixes per-date invalidation counters
	RedisAvailabilityGenerationPrefix = "availability:gen:"

	// Generation counters outlive snapshots so a slow reader cannot see one reset
	generationRetention = 24 * time.Hour

	// Timeout for individual Redis operations
	redisCacheTimeout = 2 * time.Second
)

// setIfGenerationScript stores a snapshot only while the date's generation
// still equals the one the caller read before querying the database.
var setIfGenerationScript = redis.NewScript(`
	local current = redis.call('GET', KEYS[1]) or '0'
	if current ~= ARGV[1] then
		return 0
	end
	redis.call('SET', KEYS[2], ARGV[2], 'PX', ARGV[3])
	return 1
`)

// AvailabilityCache holds the "available doctors" view per date. It is a
// read-through cache only; slot reservation always goes to the database.
//
// Readers take Generation before loading from the database and pass it to
// Set. Invalidate bumps the generation, so a snapshot loaded before an
// invalidation is never stored after it.
type AvailabilityCache interface {
	Get(ctx context.Context, date time.Time) ([]entity.DoctorAvailability, bool)
	Generation(ctx context.Context, date time.Time) (int64, bool)
	Set(ctx context.Context, date time.Time, generation int64, availability []entity.DoctorAvailability)
	Invalidate(ctx context.Context, dates ...time.Time)
}

// RedisAvailabilityCache stores one JSON snapshot per date. Errors are logged
// and reported as misses.
type RedisAvailabilityCache struct {
	redisClient *redis.Client
	log         *logrus.Logger
	maxTTL      time.Duration
	now         func() time.Time
}

func NewRedisAvailabilityCache(redisClient *redis.Client, log *logrus.Logger, maxTTL time.Duration) *RedisAvailabilityCache {
	return &RedisAvailabilityCache{
		redisClient: redisClient,
		log:         log,
		maxTTL:      maxTTL,
		now:         time.Now,
	}
}

func availabilityKey(date time.Time) string {
	return RedisAvailabilityKeyPrefix + date.Format("2006-01-02")
}

func generationKey(date time.Time) string {
	return RedisAvailabilityGenerationPrefix + date.Format("2006-01-02")
}

func (c *RedisAvailabilityCache) Get(ctx context.Context, date time.Time) ([]entity.DoctorAvailability, bool) {
	ctx, cancel := context.WithTimeout(ctx, redisCacheTimeout)
	defer cancel()

	raw, err := c.redisClient.Get(ctx, availabilityKey(date)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warnf("Failed to read availability cache for %s: %+v", date.Format("2006-01-02"), err)
		}
		return nil, false
	}

	var availability []entity.DoctorAvailability
	if err := json.Unmarshal(raw, &availability); err != nil {
		c.log.Warnf("Dropping corrupt availability cache entry for %s: %+v", date.Format("2006-01-02"), err)
		c.Invalidate(ctx, date)
		return nil, false
	}
	return availability, true
}

// Generation reports the invalidation counter for date. A date never
// invalidated is at generation zero.
func (c *RedisAvailabilityCache) Generation(ctx context.Context, date time.Time) (int64, bool) {
	ctx, cancel := context.WithTimeout(ctx, redisCacheTimeout)
	defer cancel()

	generation, err := c.redisClient.Get(ctx, generationKey(date)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, true
	}
	if err != nil {
		c.log.Warnf("Failed to read availability generation for %s: %+v", date.Format("2006-01-02"), err)
		return 0, false
	}
	return generation, true
}

func (c *RedisAvailabilityCache) Set(ctx context.Context, date time.Time, generation int64, availability []entity.DoctorAvailability) {
	ctx, cancel := context.WithTimeout(ctx, redisCacheTimeout)
	defer cancel()

	raw, err := json.Marshal(availability)
	if err != nil {
		c.log.Warnf("Failed to encode availability for %s: %+v", date.Format("2006-01-02"), err)
		return
	}

	keys := []string{generationKey(date), availabilityKey(date)}
	stored, err := setIfGenerationScript.Run(ctx, c.redisClient, keys, generation, raw, c.calculateTTL(date).Milliseconds()).Int()
	if err != nil {
		c.log.Warnf("Failed to write availability cache for %s: %+v", date.Format("2006-01-02"), err)
		return
	}
	if stored == 0 {
		c.log.Debugf("Skipped stale availability snapshot for %s", date.Format("2006-01-02"))
	}
}

func (c *RedisAvailabilityCache) Invalidate(ctx context.Context, dates ...time.Time) {
	if len(dates) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, redisCacheTimeout)
	defer cancel()

	pipe := c.redisClient.TxPipeline()
	for _, date := range dates {
		pipe.Incr(ctx, generationKey(date))
		pipe.Expire(ctx, generationKey(date), c.calculateTTL(date)+generationRetention)
		pipe.Del(ctx, availabilityKey(date))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		c.log.Warnf("Failed to invalidate availability cache: %+v", err)
	}
}

// calculateTTL keeps an entry until 24 hours after the date, capped by maxTTL
func (c *RedisAvailabilityCache) calculateTTL(date time.Time) time.Duration {
	expireAt := date.AddDate(0, 0, 1)
	ttl := expireAt.Sub(c.now())

	if ttl <= 0 {
		// Past date - short TTL for cleanup
		return 1 * time.Minute
	}
	if c.maxTTL > 0 && ttl > c.maxTTL {
		return c.maxTTL
	}
	return ttl
}

// NopAvailabilityCache disables caching
type NopAvailabilityCache struct{}

func (NopAvailabilityCache) Get(context.Context, time.Time) ([]entity.DoctorAvailability, bool) {
	return nil, false
}

func (NopAvailabilityCache) Generation(context.Context, time.Time) (int64, bool) {
	return 0, false
}

func (NopAvailabilityCache) Set(context.Context, time.Time, int64, []entity.DoctorAvailability) {}

func (NopAvailabilityCache) Invalidate(context.Context, ...time.Time) {}
