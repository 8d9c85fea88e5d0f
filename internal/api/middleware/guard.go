package middleware

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/admin-console/internal/api/metrics"
	"github.com/99minutos/admin-console/internal/core/service"
	"github.com/99minutos/admin-console/internal/infrastructure/navigation"
)

// ViewKey is the context key under which Guard stores the admitted view.
const ViewKey = "view"

// Checker decides whether a view may be rendered.
type Checker interface {
	Check(ctx context.Context, view service.View) service.Verdict
}

// Navigation records each request as a new history entry.
type Navigation interface {
	Push(path string) navigation.Entry
}

type placeholderResponse struct {
	Status string `json:"status"`
}

// Guard runs the route guard before a protected view. Every request is a new
// navigation attempt and is checked from scratch:
//   - loading session: 503 placeholder, nothing rendered.
//   - denied: 303 to the verdict's redirect.
//   - allowed: the view is stored under ViewKey and next runs.
//
// Responses are never cacheable, so back/forward cannot replay a view.
func Guard(checker Checker, nav Navigation, view service.View) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			v := view
			v.Entry = nav.Push(view.Path).ID

			verdict := checker.Check(c.Request().Context(), v)
			metrics.ChecksTotal.WithLabelValues(string(service.TriggerNavigation), verdict.Outcome.String()).Inc()
			setNoStore(c)

			switch {
			case verdict.Outcome == service.OutcomeDefer:
				c.Response().Header().Set("Retry-After", "1")
				return c.JSON(http.StatusServiceUnavailable, placeholderResponse{Status: "loading"})
			case verdict.Denied():
				return c.Redirect(http.StatusSeeOther, verdict.Redirect)
			case !verdict.Allowed():
				return echo.NewHTTPError(http.StatusForbidden, "access forbidden")
			}

			c.Set(ViewKey, v)
			return next(c)
		}
	}
}
