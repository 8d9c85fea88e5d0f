package ports

import (
	"context"

	"github.com/99minutos/admin-console/internal/core/domain"
)

// SessionService is the surface the rest of the console uses to read and
// drive the session.
type SessionService interface {
	Init(ctx context.Context)
	Login(ctx context.Context, creds domain.Credentials) (*domain.User, error)
	Logout(ctx context.Context)
	UpdateUser(ctx context.Context, patch domain.UserPatch) (*domain.User, error)
	RefreshUser(ctx context.Context) (*domain.User, error)
	ReportViolation(ctx context.Context, reason string)

	Snapshot(ctx context.Context) domain.Session
	IsAuthenticated(ctx context.Context) bool
	IsLoading() bool
	User(ctx context.Context) *domain.User
}
