package http

import (
	"github.com/labstack/echo/v4"

	"github.com/99minutos/admin-console/internal/infrastructure/http/handlers"
)

// RegisterProbes mounts the liveness and readiness probes on e. They carry no
// session and never go through the route guard.
func RegisterProbes(e *echo.Echo, deps ...handlers.Dependency) {
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(deps...)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthDepsHandler.Readiness)
}
