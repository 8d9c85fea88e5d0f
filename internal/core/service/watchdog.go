package service

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// Trigger names what caused a revalidation.
type Trigger string

const (
	TriggerNavigation Trigger = "navigation"
	TriggerMount      Trigger = "mount"
	TriggerRoute      Trigger = "route"
	TriggerVisibility Trigger = "visibility"
	TriggerPopState   Trigger = "popstate"
)

// Watchdog re-validates the mounted view whenever it may be redisplayed
// without a fresh navigation: history pops, tab resume, route changes.
type Watchdog struct {
	policy   *AccessPolicy
	enforcer *Enforcer
	log      zerolog.Logger

	mu    sync.Mutex
	view  *View
	last  Verdict
	valid bool
}

func NewWatchdog(policy *AccessPolicy, enforcer *Enforcer, log zerolog.Logger) *Watchdog {
	return &Watchdog{
		policy:   policy,
		enforcer: enforcer,
		log:      log.With().Str("component", "watchdog").Logger(),
	}
}

// Mount records view as the one on screen and validates it.
func (w *Watchdog) Mount(ctx context.Context, view View) Verdict {
	w.setView(view)
	return w.check(ctx, TriggerMount)
}

// RouteChanged is Mount for client-side route changes.
func (w *Watchdog) RouteChanged(ctx context.Context, view View) Verdict {
	w.setView(view)
	return w.check(ctx, TriggerRoute)
}

// PopState handles back/forward navigation onto view.
func (w *Watchdog) PopState(ctx context.Context, view View) Verdict {
	w.setView(view)
	return w.check(ctx, TriggerPopState)
}

// VisibilityChanged re-validates when the client becomes visible again.
// Hiding the client changes nothing and returns the last verdict.
func (w *Watchdog) VisibilityChanged(ctx context.Context, visible bool) Verdict {
	if !visible {
		w.mu.Lock()
		defer w.mu.Unlock()
		return w.last
	}
	return w.check(ctx, TriggerVisibility)
}

// Unmount forgets the current view.
func (w *Watchdog) Unmount() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.view, w.last, w.valid = nil, Verdict{}, false
}

// IsValid reports whether the last check allowed the mounted view. It is false
// while the session is loading.
func (w *Watchdog) IsValid() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.valid
}

// Current returns the mounted view, if any.
func (w *Watchdog) Current() (View, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.view == nil {
		return View{}, false
	}
	return *w.view, true
}

func (w *Watchdog) setView(view View) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.view = &view
}

func (w *Watchdog) check(ctx context.Context, trigger Trigger) Verdict {
	view, ok := w.Current()
	if !ok {
		return Verdict{}
	}

	v := w.policy.Validate(ctx, view)

	w.mu.Lock()
	w.last, w.valid = v, v.Allowed()
	if v.Denied() {
		w.view = nil
	}
	w.mu.Unlock()

	switch {
	case v.Outcome == OutcomeDefer:
		w.log.Debug().Str("path", view.Path).Str("trigger", string(trigger)).Msg("session loading, check deferred")
	case v.Denied():
		w.enforcer.Enforce(ctx, view, v, trigger)
	}
	return v
}
