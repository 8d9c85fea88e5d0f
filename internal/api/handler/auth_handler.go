package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/99minutos/admin-console/internal/api/metrics"
	"github.com/99minutos/admin-console/internal/core/domain"
	"github.com/99minutos/admin-console/internal/core/ports"
	"github.com/99minutos/admin-console/internal/core/service"
)

type AuthHandler struct {
	session ports.SessionService
	limiter *rate.Limiter
	notices NoticeSource
	log     zerolog.Logger
}

// NewAuthHandler builds the login/logout handler. A nil limiter disables
// login throttling.
func NewAuthHandler(session ports.SessionService, limiter *rate.Limiter, notices NoticeSource, log zerolog.Logger) *AuthHandler {
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 1)
	}
	return &AuthHandler{
		session: session,
		limiter: limiter,
		notices: notices,
		log:     log.With().Str("component", "auth_handler").Logger(),
	}
}

// LoginPage handles GET /login. An authenticated operator is sent to their
// landing page instead.
func (h *AuthHandler) LoginPage(c echo.Context) error {
	snap := h.session.Snapshot(c.Request().Context())
	if snap.IsAuthenticated() {
		return c.Redirect(http.StatusSeeOther, service.RedirectPathFor(snap.User.Role))
	}
	return c.JSON(http.StatusOK, loginPageResponse{
		View:      "login",
		IsLoading: snap.IsLoading(),
		Notices:   h.notices.Drain(),
	})
}

// Login handles POST /login with a JSON or form body.
func (h *AuthHandler) Login(c echo.Context) error {
	if !h.limiter.Allow() {
		metrics.LoginsTotal.WithLabelValues("throttled").Inc()
		return domain.ErrTooManyAttempts
	}

	var req loginRequest
	if err := c.Bind(&req); err != nil {
		metrics.LoginsTotal.WithLabelValues("invalid").Inc()
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		metrics.LoginsTotal.WithLabelValues("invalid").Inc()
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	user, err := h.session.Login(c.Request().Context(), domain.Credentials{Username: req.Username, Password: req.Password})
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		h.log.Info().Err(err).Str("username", req.Username).Msg("login failed")
		return err
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	metrics.SetSessionState(domain.StateAuthenticated)

	c.Response().Header().Set(echo.HeaderCacheControl, "no-store")
	return c.JSON(http.StatusOK, loginResponse{
		User:     user,
		Redirect: service.RedirectPathFor(user.Role),
		Notices:  h.notices.Drain(),
	})
}

// Logout handles POST /logout: the session is ended, the browser is told to
// drop its caches and is sent back to the login page.
func (h *AuthHandler) Logout(c echo.Context) error {
	h.session.Logout(c.Request().Context())

	metrics.LogoutsTotal.Inc()
	metrics.SetSessionState(domain.StateUnauthenticated)

	c.Response().Header().Set("Clear-Site-Data", `"cache"`)
	c.Response().Header().Set(echo.HeaderCacheControl, "no-store")
	return c.Redirect(http.StatusSeeOther, service.LoginPath)
}
