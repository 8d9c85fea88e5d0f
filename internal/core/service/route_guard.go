package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/99minutos/admin-console/internal/core/domain"
)

// RouteGuard gates every protected render. Nothing is memoized: each call
// validates the current session from scratch.
type RouteGuard struct {
	policy   *AccessPolicy
	watchdog *Watchdog
	enforcer *Enforcer
	log      zerolog.Logger
}

func NewRouteGuard(policy *AccessPolicy, watchdog *Watchdog, enforcer *Enforcer, log zerolog.Logger) *RouteGuard {
	return &RouteGuard{
		policy:   policy,
		watchdog: watchdog,
		enforcer: enforcer,
		log:      log.With().Str("component", "route_guard").Logger(),
	}
}

// Check decides whether view may be rendered. A denial has already been
// enforced (notice shown, history entry replaced) when Check returns.
func (g *RouteGuard) Check(ctx context.Context, view View) Verdict {
	v := g.policy.Validate(ctx, view)
	switch {
	case v.Outcome == OutcomeDefer:
		return v
	case v.Denied():
		g.watchdog.Unmount()
		g.enforcer.Enforce(ctx, view, v, TriggerNavigation)
		return v
	}

	// Both the guard and the watchdog must agree before content is committed.
	wv := g.watchdog.Mount(ctx, view)
	if wv.Allowed() && g.watchdog.IsValid() {
		return v
	}
	g.log.Warn().Str("path", view.Path).Str("watchdog", wv.Outcome.String()).Msg("watchdog disagreed with route guard")
	if wv.Outcome == OutcomeDefer {
		return wv
	}
	if !wv.Denied() {
		wv = Verdict{Outcome: OutcomeLoginRequired, Redirect: LoginPath, Reason: domain.MsgLoginRequired}
		g.enforcer.Enforce(ctx, view, wv, TriggerNavigation)
	}
	return wv
}
