package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/99minutos/admin-console/internal/core/domain"
	"github.com/99minutos/admin-console/internal/core/ports"
)

const (
	defaultPrefix   = "console"
	setUserAttempts = 3
)

// TokenStore keeps the token/user pair in Redis.
// Key format: <prefix>:token and <prefix>:user (JSON). Both keys carry the
// same TTL and are always written and deleted in one transaction.
type TokenStore struct {
	client *redis.Client
	prefix string
	log    zerolog.Logger
}

var _ ports.TokenStore = (*TokenStore)(nil)

// NewTokenStore wraps client. An empty prefix defaults to "console".
func NewTokenStore(client *redis.Client, prefix string, log zerolog.Logger) *TokenStore {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &TokenStore{
		client: client,
		prefix: prefix,
		log:    log.With().Str("component", "redis_token_store").Logger(),
	}
}

// Set writes both keys inside MULTI/EXEC.
func (s *TokenStore) Set(ctx context.Context, token string, user *domain.User, ttl time.Duration) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.tokenKey(), token, ttl)
		pipe.Set(ctx, s.userKey(), data, ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

// Get reads both keys with one MGET. Errors are logged and reported as an
// empty pair.
func (s *TokenStore) Get(ctx context.Context) domain.CachedCredentials {
	vals, err := s.client.MGet(ctx, s.tokenKey(), s.userKey()).Result()
	if err != nil {
		s.log.Warn().Err(err).Msg("read session, treating as absent")
		return domain.CachedCredentials{}
	}

	var out domain.CachedCredentials
	if tok, ok := vals[0].(string); ok {
		out.Token = tok
	}
	if raw, ok := vals[1].(string); ok {
		var u domain.User
		if err := json.Unmarshal([]byte(raw), &u); err != nil {
			s.log.Warn().Err(err).Msg("undecodable cached user, treating as absent")
		} else {
			out.User = &u
		}
	}
	return out
}

// SetUser replaces the user record only while the token key exists, keeping
// the remaining TTL.
func (s *TokenStore) SetUser(ctx context.Context, user *domain.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}

	update := func(tx *redis.Tx) error {
		n, err := tx.Exists(ctx, s.tokenKey()).Result()
		if err != nil {
			return err
		}
		if n == 0 {
			return domain.ErrNotAuthenticated
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.SetArgs(ctx, s.userKey(), data, redis.SetArgs{KeepTTL: true})
			return nil
		})
		return err
	}

	for i := 0; i < setUserAttempts; i++ {
		err = s.client.Watch(ctx, update, s.tokenKey(), s.userKey())
		if !errors.Is(err, redis.TxFailedErr) {
			break
		}
	}
	if err != nil {
		if errors.Is(err, domain.ErrNotAuthenticated) {
			return err
		}
		return fmt.Errorf("update cached user: %w", err)
	}
	return nil
}

// Clear deletes both keys in one command.
func (s *TokenStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.tokenKey(), s.userKey()).Err(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Ping reports whether Redis is reachable.
func (s *TokenStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *TokenStore) tokenKey() string { return s.prefix + ":token" }

func (s *TokenStore) userKey() string { return s.prefix + ":user" }
