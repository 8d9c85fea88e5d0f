package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/admin-console/internal/core/ports"
)

// ViewHandler renders the view model of a protected view. Only the guard
// middleware may route requests here.
type ViewHandler struct {
	session ports.SessionService
	notices NoticeSource
}

func NewViewHandler(session ports.SessionService, notices NoticeSource) *ViewHandler {
	return &ViewHandler{session: session, notices: notices}
}

func (h *ViewHandler) Show(c echo.Context) error {
	view, err := ctxView(c)
	if err != nil {
		return err
	}
	spec, _ := LookupView(view.Path)

	return c.JSON(http.StatusOK, viewResponse{
		Path:    view.Path,
		Title:   spec.Title,
		User:    h.session.User(c.Request().Context()),
		Notices: h.notices.Drain(),
	})
}
