// Package memstore keeps the console credentials in process memory. It is the
// default token store when no Redis instance is configured.
package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/99minutos/admin-console/internal/core/domain"
	"github.com/99minutos/admin-console/internal/core/ports"
)

// TokenStore holds one token/user pair guarded by a single mutex, so readers
// never observe half of a write.
type TokenStore struct {
	mu        sync.Mutex
	token     string
	user      *domain.User
	expiresAt time.Time
	now       func() time.Time
}

var _ ports.TokenStore = (*TokenStore)(nil)

// NewTokenStore returns an empty store. now may be nil to use time.Now.
func NewTokenStore(now func() time.Time) *TokenStore {
	if now == nil {
		now = time.Now
	}
	return &TokenStore{now: now}
}

func (s *TokenStore) Set(_ context.Context, token string, user *domain.User, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.user = user.Clone()
	s.expiresAt = s.now().Add(ttl)
	return nil
}

func (s *TokenStore) Get(_ context.Context) domain.CachedCredentials {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.expiredLocked() {
		s.clearLocked()
	}
	return domain.CachedCredentials{Token: s.token, User: s.user.Clone()}
}

func (s *TokenStore) SetUser(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token == "" || s.expiredLocked() {
		s.clearLocked()
		return domain.ErrNotAuthenticated
	}
	s.user = user.Clone()
	return nil
}

func (s *TokenStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked()
	return nil
}

// Seed writes the halves independently. It exists to reproduce partial state
// left behind by older clients and is only meant for tests.
func (s *TokenStore) Seed(token string, user *domain.User, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.user = user.Clone()
	s.expiresAt = s.now().Add(ttl)
}

func (s *TokenStore) expiredLocked() bool {
	return !s.expiresAt.IsZero() && !s.now().Before(s.expiresAt)
}

func (s *TokenStore) clearLocked() {
	s.token, s.user, s.expiresAt = "", nil, time.Time{}
}
