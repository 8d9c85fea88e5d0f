package ports

import "github.com/99minutos/admin-console/internal/core/domain"

// Notifier shows notices to the operator.
type Notifier interface {
	Notify(n domain.Notice)
}
