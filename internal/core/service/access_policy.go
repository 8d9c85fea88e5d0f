package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/99minutos/admin-console/internal/core/domain"
	"github.com/99minutos/admin-console/internal/core/ports"
)

// View describes one protected location the client is trying to show.
type View struct {
	Path string
	// Entry identifies the navigation attempt (a history entry). Repeated
	// renders of the same attempt share it.
	Entry      string
	Roles      []domain.Role
	Permission domain.Permission
}

// attemptKey falls back to the path when the caller has no entry id.
func (v View) attemptKey() string {
	if v.Entry != "" {
		return v.Entry
	}
	return v.Path
}

// Outcome is the result of validating a view.
type Outcome int

const (
	// OutcomeDefer means the session is still loading: commit nothing, decide later.
	OutcomeDefer Outcome = iota
	OutcomeAllow
	OutcomeLoginRequired
	OutcomeForbidden
)

func (o Outcome) String() string {
	switch o {
	case OutcomeDefer:
		return "defer"
	case OutcomeAllow:
		return "allow"
	case OutcomeLoginRequired:
		return "login_required"
	case OutcomeForbidden:
		return "forbidden"
	default:
		return "unknown"
	}
}

// Verdict is the decision for a view. Redirect and Reason are set for denials.
type Verdict struct {
	Outcome  Outcome
	Redirect string
	Reason   string
}

func (v Verdict) Allowed() bool { return v.Outcome == OutcomeAllow }

func (v Verdict) Denied() bool {
	return v.Outcome == OutcomeLoginRequired || v.Outcome == OutcomeForbidden
}

// SessionReader is the read side of the session used by the access checks.
type SessionReader interface {
	Snapshot(ctx context.Context) domain.Session
}

// AccessPolicy holds the single validation routine shared by the route guard
// and the watchdog.
type AccessPolicy struct {
	session SessionReader
}

func NewAccessPolicy(session SessionReader) *AccessPolicy {
	return &AccessPolicy{session: session}
}

// Validate decides whether view may be shown to the current session. It has no
// side effects and is cheap enough to run on every trigger.
func (p *AccessPolicy) Validate(ctx context.Context, view View) Verdict {
	snap := p.session.Snapshot(ctx)
	if snap.IsLoading() {
		return Verdict{Outcome: OutcomeDefer}
	}
	if !snap.IsAuthenticated() {
		return Verdict{Outcome: OutcomeLoginRequired, Redirect: LoginPath, Reason: domain.MsgLoginRequired}
	}

	role := NormalizeRole(snap.User.Role)
	if !HasRole(snap.User, view.Roles...) || (view.Permission != "" && !Can(role, view.Permission)) {
		return Verdict{Outcome: OutcomeForbidden, Redirect: RedirectPathFor(role), Reason: domain.MsgAccessDenied}
	}
	return Verdict{Outcome: OutcomeAllow}
}

const maxRememberedDenials = 256

// Enforcer applies denials: one notice per navigation attempt, then the
// current history entry is replaced with the verdict's redirect.
type Enforcer struct {
	nav      ports.Navigator
	notifier ports.Notifier
	audit    ports.SecurityEventSink
	session  SessionReader
	log      zerolog.Logger

	mu       sync.Mutex
	notified map[string]struct{}
	order    []string
}

func NewEnforcer(nav ports.Navigator, notifier ports.Notifier, audit ports.SecurityEventSink, session SessionReader, log zerolog.Logger) *Enforcer {
	if nav == nil {
		nav = nopNavigator{}
	}
	if notifier == nil {
		notifier = nopNotifier{}
	}
	if audit == nil {
		audit = nopSink{}
	}
	return &Enforcer{
		nav:      nav,
		notifier: notifier,
		audit:    audit,
		session:  session,
		log:      log.With().Str("component", "enforcer").Logger(),
		notified: make(map[string]struct{}),
	}
}

// Enforce is a no-op for verdicts that are not denials.
func (e *Enforcer) Enforce(ctx context.Context, view View, v Verdict, trigger Trigger) {
	if !v.Denied() {
		return
	}

	if e.firstDenial(view.attemptKey() + "|" + v.Outcome.String()) {
		e.notifier.Notify(domain.Notice{Level: domain.NoticeError, Message: v.Reason})

		ev := domain.SecurityEvent{
			ID:        uuid.NewString(),
			Type:      domain.EventLoginRequired,
			Path:      view.Path,
			Trigger:   string(trigger),
			Reason:    v.Reason,
			Timestamp: time.Now().UTC(),
		}
		if v.Outcome == OutcomeForbidden {
			ev.Type = domain.EventAccessDenied
		}
		if e.session != nil {
			if u := e.session.Snapshot(ctx).User; u != nil {
				ev.Username, ev.Role = u.Username, u.Role
			}
		}
		e.audit.Record(ev)
	}

	e.log.Info().
		Str("path", view.Path).
		Str("outcome", v.Outcome.String()).
		Str("trigger", string(trigger)).
		Str("redirect", v.Redirect).
		Msg("navigation denied")
	e.nav.Replace(v.Redirect)
}

func (e *Enforcer) firstDenial(key string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, seen := e.notified[key]; seen {
		return false
	}
	e.notified[key] = struct{}{}
	e.order = append(e.order, key)
	if len(e.order) > maxRememberedDenials {
		delete(e.notified, e.order[0])
		e.order = e.order[1:]
	}
	return true
}
