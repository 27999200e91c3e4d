package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const unreadCounterKey = "notifications:unread"

// decrFloorScript decrements a hash field without letting it go below zero.
// Runs atomically inside Redis, so concurrent mark-read calls cannot race.
var decrFloorScript = redis.NewScript(`
	local current = tonumber(redis.call('HGET', KEYS[1], ARGV[1]) or '0')
	if current <= 0 then
		redis.call('HSET', KEYS[1], ARGV[1], 0)
		return 0
	end
	return redis.call('HINCRBY', KEYS[1], ARGV[1], -1)
`)

// UnreadCounter maps a user id to the number of unread notifications.
// A user without an entry has zero unread notifications.
type UnreadCounter interface {
	Increment(ctx context.Context, userID uuid.UUID) (int64, error)
	Decrement(ctx context.Context, userID uuid.UUID) (int64, error)
	Get(ctx context.Context, userID uuid.UUID) (int64, error)
	Set(ctx context.Context, userID uuid.UUID, count int64) error
}

// RedisUnreadCounter keeps all counters in one Redis hash
type RedisUnreadCounter struct {
	client *redis.Client
}

func NewRedisUnreadCounter(client *redis.Client) *RedisUnreadCounter {
	return &RedisUnreadCounter{client: client}
}

func (c *RedisUnreadCounter) Increment(ctx context.Context, userID uuid.UUID) (int64, error) {
	n, err := c.client.HIncrBy(ctx, unreadCounterKey, userID.String(), 1).Result()
	if err != nil {
		return 0, fmt.Errorf("increment unread counter for %s: %w", userID, err)
	}
	return n, nil
}

func (c *RedisUnreadCounter) Decrement(ctx context.Context, userID uuid.UUID) (int64, error) {
	n, err := decrFloorScript.Run(ctx, c.client, []string{unreadCounterKey}, userID.String()).Int64()
	if err != nil {
		return 0, fmt.Errorf("decrement unread counter for %s: %w", userID, err)
	}
	return n, nil
}

func (c *RedisUnreadCounter) Get(ctx context.Context, userID uuid.UUID) (int64, error) {
	n, err := c.client.HGet(ctx, unreadCounterKey, userID.String()).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get unread counter for %s: %w", userID, err)
	}
	return n, nil
}

func (c *RedisUnreadCounter) Set(ctx context.Context, userID uuid.UUID, count int64) error {
	if count < 0 {
		count = 0
	}
	if err := c.client.HSet(ctx, unreadCounterKey, userID.String(), count).Err(); err != nil {
		return fmt.Errorf("set unread counter for %s: %w", userID, err)
	}
	return nil
}

// MemoryUnreadCounter is an in-process UnreadCounter for single-node runs
// and tests
type MemoryUnreadCounter struct {
	mu     sync.Mutex
	counts map[uuid.UUID]int64
}

func NewMemoryUnreadCounter() *MemoryUnreadCounter {
	return &MemoryUnreadCounter{counts: make(map[uuid.UUID]int64)}
}

func (c *MemoryUnreadCounter) Increment(ctx context.Context, userID uuid.UUID) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts[userID]++
	return c.counts[userID], nil
}

func (c *MemoryUnreadCounter) Decrement(ctx context.Context, userID uuid.UUID) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.counts[userID] > 0 {
		c.counts[userID]--
	}
	return c.counts[userID], nil
}

func (c *MemoryUnreadCounter) Get(ctx context.Context, userID uuid.UUID) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[userID], nil
}

func (c *MemoryUnreadCounter) Set(ctx context.Context, userID uuid.UUID, count int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if count < 0 {
		count = 0
	}
	c.counts[userID] = count
	return nil
}
