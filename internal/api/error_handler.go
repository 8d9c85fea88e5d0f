package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/admin-console/internal/core/domain"
)

type errorResponse struct {
	Error string `json:"error"`
}

// sentinelStatus maps domain errors onto responses, first match wins.
var sentinelStatus = []struct {
	err  error
	code int
	msg  string
}{
	{domain.ErrInvalidCredentials, http.StatusUnauthorized, "invalid credentials"},
	{domain.ErrNotAuthenticated, http.StatusUnauthorized, domain.MsgLoginRequired},
	{domain.ErrTokenInvalidOrExpired, http.StatusUnauthorized, domain.MsgLoginRequired},
	{domain.ErrPermissionDenied, http.StatusForbidden, domain.MsgAccessDenied},
	{domain.ErrTooManyAttempts, http.StatusTooManyRequests, "too many login attempts, try again later"},
	{domain.ErrNetworkFailure, http.StatusBadGateway, "backend unreachable"},
	{domain.ErrInvalidUser, http.StatusBadGateway, "invalid user data from backend"},
}

// NewHTTPErrorHandler renders every error as {"error": "..."}. Backend detail
// messages reach the operator unchanged; unknown errors are logged and hidden.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		code, msg := resolveError(err, log, c)
		if code == http.StatusTooManyRequests {
			c.Response().Header().Set("Retry-After", "60")
		}
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprint(he.Message)
	}

	var be *domain.BackendError
	if errors.As(err, &be) {
		if errors.Is(err, domain.ErrInvalidCredentials) || errors.Is(err, domain.ErrTokenInvalidOrExpired) {
			return http.StatusUnauthorized, be.Detail
		}
		log.Warn().Err(err).Int("backend_status", be.Status).Str("path", c.Path()).Msg("backend error")
		return http.StatusBadGateway, be.Detail
	}

	for _, s := range sentinelStatus {
		if errors.Is(err, s.err) {
			return s.code, s.msg
		}
	}

	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")
	return http.StatusInternalServerError, "internal server error"
}
