package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/admin-console/internal/core/domain"
)

type stubAuditRepo struct {
	events []domain.SecurityEvent
}

func (r *stubAuditRepo) InsertEvent(context.Context, *domain.SecurityEvent) error { return nil }

func (r *stubAuditRepo) ListByUsername(_ context.Context, username string, limit int64) ([]domain.SecurityEvent, error) {
	var out []domain.SecurityEvent
	for _, ev := range r.events {
		if ev.Username == username && int64(len(out)) < limit {
			out = append(out, ev)
		}
	}
	return out, nil
}

func getSession(t *testing.T, h *SessionHandler) sessionResponse {
	t.Helper()
	e := newTestEcho()
	rec := httptest.NewRecorder()
	if err := h.Get(e.NewContext(httptest.NewRequest(http.MethodGet, "/session", nil), rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp sessionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func TestSessionHandler_Get_Authenticated(t *testing.T) {
	stub := &stubSessionService{snapshot: domain.Session{
		State: domain.StateAuthenticated,
		User:  &domain.User{Username: "alice", Role: domain.RoleHR},
	}}
	h := NewSessionHandler(stub, &stubNotices{}, &stubAuditRepo{})

	resp := getSession(t, h)

	if !resp.IsAuthenticated || resp.IsLoading || resp.User.Username != "alice" {
		t.Fatalf("unexpected session: %+v", resp)
	}
	if !slices.Contains(resp.Permissions, domain.PermEmployeeCreate) {
		t.Fatalf("expected hr permissions, got %v", resp.Permissions)
	}
	paths := make([]string, 0, len(resp.Navigation))
	for _, item := range resp.Navigation {
		paths = append(paths, item.Path)
	}
	if paths[0] != "/hr" {
		t.Fatalf("first menu entry must be the landing page, got %v", paths)
	}
	if !slices.Contains(paths, "/users") || slices.Contains(paths, "/system") || slices.Contains(paths, "/analytics") {
		t.Fatalf("unexpected menu for hr: %v", paths)
	}
}

func TestSessionHandler_Get_Loading(t *testing.T) {
	h := NewSessionHandler(&stubSessionService{snapshot: domain.Session{State: domain.StateLoading}}, &stubNotices{}, &stubAuditRepo{})

	resp := getSession(t, h)
	if resp.IsAuthenticated || !resp.IsLoading || resp.User != nil || len(resp.Navigation) != 0 {
		t.Fatalf("unexpected loading session: %+v", resp)
	}
}

func TestSessionHandler_UpdateUser(t *testing.T) {
	e := newTestEcho()
	stub := &stubSessionService{
		updateFn: func(_ context.Context, patch domain.UserPatch) (*domain.User, error) {
			if patch.Email == nil || *patch.Email != "alice@example.com" || patch.Username != nil {
				t.Fatalf("unexpected patch: %+v", patch)
			}
			return &domain.User{Username: "alice", Email: *patch.Email, Role: domain.RoleHR}, nil
		},
	}
	h := NewSessionHandler(stub, &stubNotices{}, &stubAuditRepo{})

	req := httptest.NewRequest(http.MethodPatch, "/session/user", strings.NewReader(`{"email":"alice@example.com"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	if err := h.UpdateUser(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), "alice@example.com") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestSessionHandler_UpdateUser_IgnoresRole(t *testing.T) {
	e := newTestEcho()
	var got domain.UserPatch
	stub := &stubSessionService{
		updateFn: func(_ context.Context, patch domain.UserPatch) (*domain.User, error) {
			got = patch
			return &domain.User{Username: "alice", Role: domain.RoleHR}, nil
		},
	}
	h := NewSessionHandler(stub, &stubNotices{}, &stubAuditRepo{})

	req := httptest.NewRequest(http.MethodPatch, "/session/user", strings.NewReader(`{"role":"superadmin","is_active":false}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	if err := h.UpdateUser(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if got.Username != nil || got.Email != nil {
		t.Fatalf("role and status must not reach the session, got %+v", got)
	}
	if !strings.Contains(rec.Body.String(), `"role":"hr"`) {
		t.Fatalf("role must be unchanged, got %s", rec.Body.String())
	}
}

func TestSessionHandler_Refresh(t *testing.T) {
	e := newTestEcho()
	stub := &stubSessionService{
		refreshFn: func(context.Context) (*domain.User, error) {
			return &domain.User{Username: "alice", Role: domain.RoleManager}, nil
		},
	}
	h := NewSessionHandler(stub, &stubNotices{}, &stubAuditRepo{})

	rec := httptest.NewRecorder()
	if err := h.Refresh(e.NewContext(httptest.NewRequest(http.MethodPost, "/session/refresh", nil), rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), `"role":"manager"`) {
		t.Fatalf("expected refreshed role, got %s", rec.Body.String())
	}

	stub.refreshFn = func(context.Context) (*domain.User, error) {
		return nil, domain.ErrTokenInvalidOrExpired
	}
	err := h.Refresh(e.NewContext(httptest.NewRequest(http.MethodPost, "/session/refresh", nil), httptest.NewRecorder()))
	if !errors.Is(err, domain.ErrTokenInvalidOrExpired) {
		t.Fatalf("expected ErrTokenInvalidOrExpired, got %v", err)
	}
}

func TestSessionHandler_UpdateUser_InvalidEmail(t *testing.T) {
	e := newTestEcho()
	h := NewSessionHandler(&stubSessionService{}, &stubNotices{}, &stubAuditRepo{})

	req := httptest.NewRequest(http.MethodPatch, "/session/user", strings.NewReader(`{"email":"nope"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

	err := h.UpdateUser(e.NewContext(req, httptest.NewRecorder()))
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %v", err)
	}
	if !strings.Contains(he.Message.(string), "email must be a valid email") {
		t.Fatalf("unexpected message: %v", he.Message)
	}
}

func TestSessionHandler_Activity(t *testing.T) {
	e := newTestEcho()
	ts := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)
	audit := &stubAuditRepo{events: []domain.SecurityEvent{
		{Type: domain.EventAccessDenied, Username: "alice", Path: "/system", Timestamp: ts},
		{Type: domain.EventLoginSucceeded, Username: "bob", Timestamp: ts},
	}}
	stub := &stubSessionService{snapshot: domain.Session{
		State: domain.StateAuthenticated,
		User:  &domain.User{Username: "alice", Role: domain.RoleHR},
	}}
	h := NewSessionHandler(stub, &stubNotices{}, audit)

	rec := httptest.NewRecorder()
	if err := h.Activity(e.NewContext(httptest.NewRequest(http.MethodGet, "/session/activity", nil), rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp activityResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Items) != 1 || resp.Items[0].Path != "/system" {
		t.Fatalf("expected alice's event only, got %+v", resp.Items)
	}
}

func TestSessionHandler_Activity_RequiresSession(t *testing.T) {
	e := newTestEcho()
	h := NewSessionHandler(&stubSessionService{}, &stubNotices{}, &stubAuditRepo{})

	err := h.Activity(e.NewContext(httptest.NewRequest(http.MethodGet, "/session/activity", nil), httptest.NewRecorder()))
	if !errors.Is(err, domain.ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
}

func TestNavigationFor(t *testing.T) {
	cases := map[domain.Role][]string{
		domain.RoleDirector: {"/director", "/profile", "/users", "/system", "/analytics", "/village"},
		domain.RoleAdmin:    {"/admin", "/profile", "/users", "/system"},
		domain.RoleEmployee: {"/employee", "/profile"},
		domain.RoleUser:     {"/profile", "/profile"},
	}
	for role, want := range cases {
		var got []string
		for _, item := range navigationFor(role) {
			got = append(got, item.Path)
		}
		if !slices.Equal(got, want) {
			t.Errorf("navigationFor(%s) = %v, want %v", role, got, want)
		}
	}
}
