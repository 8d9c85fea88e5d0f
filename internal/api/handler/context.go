package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/admin-console/internal/api/middleware"
	"github.com/99minutos/admin-console/internal/core/domain"
	"github.com/99minutos/admin-console/internal/core/service"
)

// NoticeSource hands out the notices queued since the last response.
type NoticeSource interface {
	Drain() []domain.Notice
}

// ctxView returns the view admitted by the guard middleware. Its presence
// proves the guard ran.
func ctxView(c echo.Context) (service.View, error) {
	v, ok := c.Get(middleware.ViewKey).(service.View)
	if !ok {
		return service.View{}, echo.NewHTTPError(http.StatusInternalServerError, "view rendered without route guard")
	}
	return v, nil
}
