package ports

import (
	"context"
	"time"

	"github.com/99minutos/admin-console/internal/core/domain"
)

// TokenStore persists the short-lived token together with the user record.
// Implementations must write and clear both halves as a single operation.
type TokenStore interface {
	// Set atomically stores the token and user, both expiring after ttl.
	Set(ctx context.Context, token string, user *domain.User, ttl time.Duration) error
	// Get returns whatever is currently cached. Storage failures are reported
	// as absence, never as an error.
	Get(ctx context.Context) domain.CachedCredentials
	// SetUser rewrites the cached user while a token is present, keeping the
	// remaining TTL. It returns domain.ErrNotAuthenticated when no token is cached.
	SetUser(ctx context.Context, user *domain.User) error
	// Clear removes both halves.
	Clear(ctx context.Context) error
}
