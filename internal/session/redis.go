package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hellosocial/backend/internal/apperrors"
	"github.com/redis/go-redis/v9"
)

// RedisRegistry implements Registry on Redis for deployments that want
// sessions shared across instances. SETNX on the per-user key is the atomic
// insert-if-absent; the per-token key carries the session payload.
type RedisRegistry struct {
	client      *redis.Client
	tokenPrefix string
	userPrefix  string
}

// NewRedisRegistry creates a Redis-backed session registry.
func NewRedisRegistry(client *redis.Client) *RedisRegistry {
	return &RedisRegistry{
		client:      client,
		tokenPrefix: "session:token:",
		userPrefix:  "session:user:",
	}
}

func (r *RedisRegistry) tokenKey(token string) string {
	return r.tokenPrefix + token
}

func (r *RedisRegistry) userKey(userID string) string {
	return r.userPrefix + userID
}

func (r *RedisRegistry) PutIfAbsent(ctx context.Context, s Session) error {
	if s.Token == "" || s.UserID == "" {
		return fmt.Errorf("session: missing token or user id")
	}

	var ttl time.Duration
	if !s.ExpiresAt.IsZero() {
		ttl = time.Until(s.ExpiresAt)
		if ttl <= 0 {
			return fmt.Errorf("session: expires_at must be in the future")
		}
	}

	ok, err := r.client.SetNX(ctx, r.userKey(s.UserID), s.Token, ttl).Result()
	if err != nil {
		return fmt.Errorf("session: failed to reserve user slot: %w", err)
	}
	if !ok {
		return apperrors.ErrDuplicateSession
	}

	data, err := json.Marshal(s)
	if err != nil {
		r.client.Del(ctx, r.userKey(s.UserID))
		return fmt.Errorf("session: failed to marshal: %w", err)
	}
	if err := r.client.Set(ctx, r.tokenKey(s.Token), data, ttl).Err(); err != nil {
		// release the slot so the user is not locked out by a half-write
		r.client.Del(ctx, r.userKey(s.UserID))
		return fmt.Errorf("session: failed to store: %w", err)
	}
	return nil
}

func (r *RedisRegistry) GetByToken(ctx context.Context, token string) (*Session, error) {
	val, err := r.client.Get(ctx, r.tokenKey(token)).Result()
	if err == redis.Nil {
		return nil, nil // not found
	}
	if err != nil {
		return nil, err
	}

	var s Session
	if err := json.Unmarshal([]byte(val), &s); err != nil {
		return nil, fmt.Errorf("session: failed to unmarshal: %w", err)
	}
	return &s, nil
}

func (r *RedisRegistry) DeleteByToken(ctx context.Context, token string) error {
	s, err := r.GetByToken(ctx, token)
	if err != nil {
		return err
	}
	if s == nil {
		return nil
	}
	return r.client.Del(ctx, r.tokenKey(token), r.userKey(s.UserID)).Err()
}

func (r *RedisRegistry) DeleteByUser(ctx context.Context, userID string) error {
	token, err := r.client.Get(ctx, r.userKey(userID)).Result()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return err
	}
	return r.client.Del(ctx, r.tokenKey(token), r.userKey(userID)).Err()
}
