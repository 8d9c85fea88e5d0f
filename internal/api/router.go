package api

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/99minutos/admin-console/internal/api/handler"
	"github.com/99minutos/admin-console/internal/api/middleware"
	"github.com/99minutos/admin-console/internal/core/ports"
	"github.com/99minutos/admin-console/internal/core/service"
	infrahttp "github.com/99minutos/admin-console/internal/infrastructure/http"
	"github.com/99minutos/admin-console/internal/infrastructure/http/handlers"
	"github.com/99minutos/admin-console/internal/infrastructure/navigation"
	"github.com/99minutos/admin-console/internal/infrastructure/notify"
)

// Deps carries everything the HTTP surface needs.
type Deps struct {
	Session  ports.SessionService
	Guard    *service.RouteGuard
	Watchdog *service.Watchdog
	History  *navigation.History
	Flash    *notify.Flash
	Audit    ports.SecurityEventRepository
	Limiter  *rate.Limiter
	Probes   []handlers.Dependency
	Log      zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))

	// --- Probes and metrics (no session) ---
	infrahttp.RegisterProbes(e, d.Probes...)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// --- Auth ---
	authHandler := handler.NewAuthHandler(d.Session, d.Limiter, d.Flash, d.Log)
	e.GET(service.LoginPath, authHandler.LoginPage, middleware.NoStore())
	e.POST(service.LoginPath, authHandler.Login)
	e.POST("/logout", authHandler.Logout)

	// --- Session ---
	sessionHandler := handler.NewSessionHandler(d.Session, d.Flash, d.Audit)
	eventsHandler := handler.NewEventsHandler(d.Watchdog, d.History, d.Session, d.Flash, d.Log)

	s := e.Group("/session", middleware.NoStore())
	s.GET("", sessionHandler.Get)
	s.PATCH("/user", sessionHandler.UpdateUser)
	s.POST("/refresh", sessionHandler.Refresh)
	s.GET("/activity", sessionHandler.Activity)
	s.POST("/events", eventsHandler.Handle)

	// --- Protected views ---
	viewHandler := handler.NewViewHandler(d.Session, d.Flash)
	for _, spec := range handler.Views {
		e.GET(spec.Path, viewHandler.Show, middleware.Guard(d.Guard, d.History, spec.View("")))
	}

	return e
}

// requestLogger writes one zerolog entry per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	log = log.With().Str("component", "http").Logger()
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
