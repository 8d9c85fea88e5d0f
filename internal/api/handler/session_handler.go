package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/admin-console/internal/api/metrics"
	"github.com/99minutos/admin-console/internal/core/domain"
	"github.com/99minutos/admin-console/internal/core/ports"
	"github.com/99minutos/admin-console/internal/core/service"
)

const activityLimit = 20

// SessionHandler exposes the session to the client: who is logged in, what
// they may do and where they may go.
type SessionHandler struct {
	session ports.SessionService
	notices NoticeSource
	audit   ports.SecurityEventRepository
}

func NewSessionHandler(session ports.SessionService, notices NoticeSource, audit ports.SecurityEventRepository) *SessionHandler {
	return &SessionHandler{session: session, notices: notices, audit: audit}
}

// Get handles GET /session.
func (h *SessionHandler) Get(c echo.Context) error {
	snap := h.session.Snapshot(c.Request().Context())
	metrics.SetSessionState(snap.State)

	resp := sessionResponse{
		IsAuthenticated: snap.IsAuthenticated(),
		IsLoading:       snap.IsLoading(),
		Permissions:     []domain.Permission{},
		Navigation:      []navItem{},
	}
	if snap.IsAuthenticated() {
		resp.User = snap.User
		resp.Permissions = service.Permissions(snap.User.Role)
		resp.Navigation = navigationFor(snap.User.Role)
	}
	resp.Notices = h.notices.Drain()
	return c.JSON(http.StatusOK, resp)
}

// UpdateUser handles PATCH /session/user.
func (h *SessionHandler) UpdateUser(c echo.Context) error {
	var req updateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	user, err := h.session.UpdateUser(c.Request().Context(), domain.UserPatch{
		Username: req.Username,
		Email:    req.Email,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, updateUserResponse{User: user, Notices: h.notices.Drain()})
}

// Refresh handles POST /session/refresh: the user record, role included, is
// reloaded from the backend.
func (h *SessionHandler) Refresh(c echo.Context) error {
	user, err := h.session.RefreshUser(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, updateUserResponse{User: user, Notices: h.notices.Drain()})
}

// Activity handles GET /session/activity: the newest security events of the
// logged-in operator.
func (h *SessionHandler) Activity(c echo.Context) error {
	ctx := c.Request().Context()
	user := h.session.User(ctx)
	if user == nil {
		return domain.ErrNotAuthenticated
	}

	events, err := h.audit.ListByUsername(ctx, user.Username, activityLimit)
	if err != nil {
		return err
	}

	items := make([]activityItem, 0, len(events))
	for _, ev := range events {
		items = append(items, activityItem{
			Type:      string(ev.Type),
			Path:      ev.Path,
			Trigger:   ev.Trigger,
			Reason:    ev.Reason,
			Timestamp: ev.Timestamp,
		})
	}
	return c.JSON(http.StatusOK, activityResponse{Items: items})
}
