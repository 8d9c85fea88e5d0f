package ports

import (
	"context"
	"time"

	"github.com/99minutos/admin-console/internal/core/domain"
)

// LoginResponse is the backend's answer to a successful login.
type LoginResponse struct {
	Token string
	User  *domain.User
	// TTL is the token lifetime the client should honour. Zero means the
	// backend did not say and the configured default applies.
	TTL time.Duration
}

// AuthGateway is the backend collaborator consumed by the session core.
type AuthGateway interface {
	Login(ctx context.Context, creds domain.Credentials) (*LoginResponse, error)
	// WhoAmI verifies token and returns the user it belongs to. Any failure,
	// including transport errors, means the token must not be trusted.
	WhoAmI(ctx context.Context, token string) (*domain.User, error)
}
