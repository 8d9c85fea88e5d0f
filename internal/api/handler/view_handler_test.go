package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/admin-console/internal/api/middleware"
	"github.com/99minutos/admin-console/internal/core/domain"
	"github.com/99minutos/admin-console/internal/core/service"
)

func TestViewHandler_Show(t *testing.T) {
	e := newTestEcho()
	stub := &stubSessionService{snapshot: domain.Session{
		State: domain.StateAuthenticated,
		User:  &domain.User{Username: "alice", Role: domain.RoleHR},
	}}
	h := NewViewHandler(stub, &stubNotices{})

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/users", nil), rec)
	c.Set(middleware.ViewKey, service.View{Path: "/users", Entry: "e1"})

	if err := h.Show(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `"title":"User Management"`) || !strings.Contains(body, `"username":"alice"`) {
		t.Fatalf("unexpected body: %s", body)
	}
}

func TestViewHandler_RequiresGuard(t *testing.T) {
	e := newTestEcho()
	h := NewViewHandler(&stubSessionService{}, &stubNotices{})

	err := h.Show(e.NewContext(httptest.NewRequest(http.MethodGet, "/users", nil), httptest.NewRecorder()))
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 without guard, got %v", err)
	}
}
