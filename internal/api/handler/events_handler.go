package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/admin-console/internal/api/metrics"
	"github.com/99minutos/admin-console/internal/core/ports"
	"github.com/99minutos/admin-console/internal/core/service"
	"github.com/99minutos/admin-console/internal/infrastructure/navigation"
)

// Watchdog is the revalidation side of the access checks.
type Watchdog interface {
	Mount(ctx context.Context, view service.View) service.Verdict
	RouteChanged(ctx context.Context, view service.View) service.Verdict
	PopState(ctx context.Context, view service.View) service.Verdict
	VisibilityChanged(ctx context.Context, visible bool) service.Verdict
	IsValid() bool
}

// History mirrors the client's navigation stack.
type History interface {
	Push(path string) navigation.Entry
	Back() (navigation.Entry, bool)
	Current() navigation.Entry
}

// EventsHandler receives the client's lifecycle events (mount, route change,
// tab visibility, history pops) and runs them through the watchdog.
type EventsHandler struct {
	watchdog Watchdog
	history  History
	session  ports.SessionService
	notices  NoticeSource
	log      zerolog.Logger
}

func NewEventsHandler(watchdog Watchdog, history History, session ports.SessionService, notices NoticeSource, log zerolog.Logger) *EventsHandler {
	return &EventsHandler{
		watchdog: watchdog,
		history:  history,
		session:  session,
		notices:  notices,
		log:      log.With().Str("component", "events_handler").Logger(),
	}
}

// Handle handles POST /session/events.
func (h *EventsHandler) Handle(c echo.Context) error {
	var req eventRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	ctx := c.Request().Context()

	if req.Type == "violation" {
		metrics.ViolationsTotal.Inc()
		h.session.ReportViolation(ctx, req.Reason)
		return c.JSON(http.StatusOK, eventResponse{
			Outcome:  service.OutcomeLoginRequired.String(),
			Redirect: service.LoginPath,
			Notices:  h.notices.Drain(),
		})
	}

	var (
		verdict service.Verdict
		trigger service.Trigger
	)
	if req.Type == "visibility" {
		trigger = service.TriggerVisibility
		verdict = h.watchdog.VisibilityChanged(ctx, req.Visible == nil || *req.Visible)
	} else {
		if req.Path == "" {
			return echo.NewHTTPError(http.StatusUnprocessableEntity, "path is required")
		}
		spec, ok := LookupView(req.Path)
		if !ok {
			return echo.NewHTTPError(http.StatusNotFound, "unknown view")
		}
		view := spec.View(h.entryFor(req))
		switch req.Type {
		case "mount":
			trigger, verdict = service.TriggerMount, h.watchdog.Mount(ctx, view)
		case "route":
			trigger, verdict = service.TriggerRoute, h.watchdog.RouteChanged(ctx, view)
		case "popstate":
			trigger, verdict = service.TriggerPopState, h.watchdog.PopState(ctx, view)
		}
	}

	metrics.ChecksTotal.WithLabelValues(string(trigger), verdict.Outcome.String()).Inc()
	h.log.Debug().
		Str("type", req.Type).
		Str("path", req.Path).
		Str("outcome", verdict.Outcome.String()).
		Msg("client event")

	return c.JSON(http.StatusOK, eventResponse{
		Valid:    h.watchdog.IsValid(),
		Outcome:  verdict.Outcome.String(),
		Redirect: verdict.Redirect,
		Notices:  h.notices.Drain(),
	})
}

// entryFor resolves the history entry an event refers to. A pop onto the
// previous entry reuses it; anything else the history has not seen is pushed.
func (h *EventsHandler) entryFor(req eventRequest) string {
	if req.Entry != "" {
		return req.Entry
	}
	if req.Type == "popstate" {
		if e, ok := h.history.Back(); ok && e.Path == req.Path {
			return e.ID
		}
	}
	if cur := h.history.Current(); cur.Path == req.Path {
		return cur.ID
	}
	return h.history.Push(req.Path).ID
}
