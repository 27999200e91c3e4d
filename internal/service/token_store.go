package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// TokenKind distinguishes access from refresh token registrations
type TokenKind string

const (
	TokenKindAccess  TokenKind = "access_token"
	TokenKindRefresh TokenKind = "refresh_token"
)

// TokenStore tracks issued token ids. A token is valid only while its id is
// registered; logout and refresh rotation remove it.
type TokenStore interface {
	Save(ctx context.Context, kind TokenKind, userID uuid.UUID, tokenID string, ttl time.Duration) error
	Exists(ctx context.Context, kind TokenKind, userID uuid.UUID, tokenID string) (bool, error)
	Revoke(ctx context.Context, kind TokenKind, userID uuid.UUID, tokenID string) error
}

type RedisTokenStore struct {
	redisClient *redis.Client
}

func NewRedisTokenStore(redisClient *redis.Client) *RedisTokenStore {
	return &RedisTokenStore{redisClient: redisClient}
}

func tokenKey(kind TokenKind, userID uuid.UUID, tokenID string) string {
	return fmt.Sprintf("%s:%s:%s", kind, userID.String(), tokenID)
}

func (s *RedisTokenStore) Save(ctx context.Context, kind TokenKind, userID uuid.UUID, tokenID string, ttl time.Duration) error {
	return s.redisClient.Set(ctx, tokenKey(kind, userID, tokenID), "valid", ttl).Err()
}

func (s *RedisTokenStore) Exists(ctx context.Context, kind TokenKind, userID uuid.UUID, tokenID string) (bool, error) {
	n, err := s.redisClient.Exists(ctx, tokenKey(kind, userID, tokenID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *RedisTokenStore) Revoke(ctx context.Context, kind TokenKind, userID uuid.UUID, tokenID string) error {
	return s.redisClient.Del(ctx, tokenKey(kind, userID, tokenID)).Err()
}
