package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/99minutos/admin-console/internal/core/domain"
)

type guardFixture struct {
	*sessionFixture
	guard    *RouteGuard
	watchdog *Watchdog
}

func newGuardFixture(t *testing.T) *guardFixture {
	t.Helper()
	f := newSessionFixture(t)
	policy := NewAccessPolicy(f.svc)
	enforcer := NewEnforcer(f.nav, f.notifier, f.audit, f.svc, zerolog.Nop())
	wd := NewWatchdog(policy, enforcer, zerolog.Nop())
	return &guardFixture{
		sessionFixture: f,
		guard:          NewRouteGuard(policy, wd, enforcer, zerolog.Nop()),
		watchdog:       wd,
	}
}

func TestRouteGuard_LoadingShowsPlaceholder(t *testing.T) {
	f := newGuardFixture(t)

	v := f.guard.Check(context.Background(), View{Path: "/hr", Entry: "e1", Roles: []domain.Role{domain.RoleHR}})

	if v.Outcome != OutcomeDefer {
		t.Fatalf("expected defer while loading, got %s", v.Outcome)
	}
	if len(f.nav.replacements()) != 0 || f.notifier.total() != 0 {
		t.Fatalf("loading must neither redirect nor notify")
	}
	if f.watchdog.IsValid() {
		t.Fatalf("watchdog must not be valid while loading")
	}
}

func TestRouteGuard_UnauthenticatedRedirectsToLogin(t *testing.T) {
	f := newGuardFixture(t)
	ctx := context.Background()
	f.svc.Init(ctx)

	view := View{Path: "/users", Entry: "e1", Permission: domain.PermUserView}
	v := f.guard.Check(ctx, view)

	if v.Outcome != OutcomeLoginRequired || v.Redirect != LoginPath {
		t.Fatalf("expected login redirect, got %+v", v)
	}
	if got := f.nav.replacements(); len(got) != 1 || got[0] != LoginPath {
		t.Fatalf("expected history replaced with %s, got %v", LoginPath, got)
	}
	if n := f.notifier.count(domain.MsgLoginRequired); n != 1 {
		t.Fatalf("expected one login notice, got %d", n)
	}
}

func TestRouteGuard_OneNoticePerNavigationAttempt(t *testing.T) {
	f := newGuardFixture(t)
	ctx := context.Background()
	f.svc.Init(ctx)

	view := View{Path: "/users", Entry: "e1"}
	f.guard.Check(ctx, view)
	f.guard.Check(ctx, view)
	f.guard.Check(ctx, view)

	if n := f.notifier.count(domain.MsgLoginRequired); n != 1 {
		t.Fatalf("expected one notice for repeated renders, got %d", n)
	}
	if len(f.audit.ofType(domain.EventLoginRequired)) != 1 {
		t.Fatalf("expected one audit event for the attempt")
	}

	f.guard.Check(ctx, View{Path: "/users", Entry: "e2"})
	if n := f.notifier.count(domain.MsgLoginRequired); n != 2 {
		t.Fatalf("expected a new notice for a new attempt, got %d", n)
	}
}

func TestRouteGuard_ForbiddenRedirectsToRoleLanding(t *testing.T) {
	f := newGuardFixture(t)
	ctx := context.Background()
	f.login(t, "alice", "secret123")

	v := f.guard.Check(ctx, View{Path: "/system", Entry: "e1", Roles: []domain.Role{domain.RoleAdmin}})

	if v.Outcome != OutcomeForbidden || v.Redirect != "/hr" {
		t.Fatalf("expected redirect to /hr, got %+v", v)
	}
	got := f.nav.replacements()
	if len(got) != 1 || got[0] != "/hr" {
		t.Fatalf("expected history replaced with /hr, got %v", got)
	}
	if n := f.notifier.count(domain.MsgAccessDenied); n != 1 {
		t.Fatalf("expected one access denied notice, got %d", n)
	}
	evs := f.audit.ofType(domain.EventAccessDenied)
	if len(evs) != 1 || evs[0].Username != "alice" || evs[0].Path != "/system" || evs[0].Trigger != string(TriggerNavigation) {
		t.Fatalf("unexpected audit events: %+v", evs)
	}
	if _, mounted := f.watchdog.Current(); mounted {
		t.Fatalf("denied view must not stay mounted")
	}
}

func TestRouteGuard_PermissionDenied(t *testing.T) {
	f := newGuardFixture(t)
	ctx := context.Background()
	f.login(t, "alice", "secret123")

	v := f.guard.Check(ctx, View{Path: "/analytics", Entry: "e1", Permission: domain.PermAnalyticsView})
	if v.Outcome != OutcomeForbidden || v.Redirect != "/hr" {
		t.Fatalf("expected forbidden with /hr redirect, got %+v", v)
	}
}

func TestRouteGuard_Allow(t *testing.T) {
	f := newGuardFixture(t)
	ctx := context.Background()
	f.login(t, "alice", "secret123")

	v := f.guard.Check(ctx, View{Path: "/users", Entry: "e1", Roles: []domain.Role{domain.RoleAdmin, "hr_manager"}, Permission: domain.PermUserView})

	if !v.Allowed() {
		t.Fatalf("expected allow, got %+v", v)
	}
	if !f.watchdog.IsValid() {
		t.Fatalf("watchdog must agree on an allowed view")
	}
	if cur, ok := f.watchdog.Current(); !ok || cur.Path != "/users" {
		t.Fatalf("expected /users mounted, got %+v", cur)
	}
	if len(f.nav.replacements()) != 0 || f.notifier.count(domain.MsgAccessDenied) != 0 {
		t.Fatalf("allowed navigation must not redirect or notify")
	}
}

func TestRouteGuard_RevalidatesEveryNavigation(t *testing.T) {
	f := newGuardFixture(t)
	ctx := context.Background()
	f.login(t, "alice", "secret123")

	view := View{Path: "/hr", Entry: "e1", Roles: []domain.Role{domain.RoleHR}}
	if v := f.guard.Check(ctx, view); !v.Allowed() {
		t.Fatalf("expected allow, got %+v", v)
	}

	f.svc.Logout(ctx)

	view.Entry = "e2"
	if v := f.guard.Check(ctx, view); v.Outcome != OutcomeLoginRequired {
		t.Fatalf("expected login required after logout, got %+v", v)
	}
	if f.watchdog.IsValid() {
		t.Fatalf("watchdog must not stay valid after a denial")
	}
}
