package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/99minutos/admin-console/internal/core/domain"
	"github.com/99minutos/admin-console/internal/core/ports"
)

// DefaultTokenTTL matches the backend's access token lifetime.
const DefaultTokenTTL = time.Hour

// SessionDeps groups the collaborators of SessionService.
type SessionDeps struct {
	Store     ports.TokenStore
	Gateway   ports.AuthGateway
	Navigator ports.Navigator
	Notifier  ports.Notifier
	Audit     ports.SecurityEventSink
	TokenTTL  time.Duration
	Log       zerolog.Logger
}

// SessionService owns the console session. It is the only writer of the
// session state; everything else reads snapshots.
type SessionService struct {
	store    ports.TokenStore
	gateway  ports.AuthGateway
	nav      ports.Navigator
	notifier ports.Notifier
	audit    ports.SecurityEventSink
	validate *validator.Validate
	tokenTTL time.Duration
	log      zerolog.Logger

	// opMu serializes every state-changing operation.
	opMu     sync.Mutex
	initOnce sync.Once

	mu    sync.RWMutex
	state domain.SessionState
	user  *domain.User

	purgeMu sync.Mutex
	purgers []func()
}

var _ ports.SessionService = (*SessionService)(nil)

// NewSessionService returns a service in the Loading state. Call Init once to
// resolve it.
func NewSessionService(deps SessionDeps) *SessionService {
	ttl := deps.TokenTTL
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	s := &SessionService{
		store:    deps.Store,
		gateway:  deps.Gateway,
		nav:      deps.Navigator,
		notifier: deps.Notifier,
		audit:    deps.Audit,
		validate: validator.New(),
		tokenTTL: ttl,
		log:      deps.Log.With().Str("component", "session").Logger(),
		state:    domain.StateLoading,
	}
	if s.nav == nil {
		s.nav = nopNavigator{}
	}
	if s.notifier == nil {
		s.notifier = nopNotifier{}
	}
	if s.audit == nil {
		s.audit = nopSink{}
	}
	return s
}

// RegisterCachePurger adds a callback run on logout to drop client-side
// response caches.
func (s *SessionService) RegisterCachePurger(fn func()) {
	s.purgeMu.Lock()
	defer s.purgeMu.Unlock()
	s.purgers = append(s.purgers, fn)
}

// Init resolves the Loading state from the cached credentials. Only the first
// call has any effect.
func (s *SessionService) Init(ctx context.Context) {
	s.initOnce.Do(func() {
		s.opMu.Lock()
		defer s.opMu.Unlock()
		s.init(ctx)
	})
}

func (s *SessionService) init(ctx context.Context) {
	// A login that won the race to opMu has already resolved Loading; the
	// pair in the store is its own and must not be re-verified here.
	if !s.IsLoading() {
		s.log.Debug().Msg("session resolved before init")
		return
	}

	cached := s.store.Get(ctx)
	if !cached.Complete() {
		if !cached.Empty() {
			s.log.Warn().Err(domain.ErrMalformedCachedState).
				Bool("has_token", cached.Token != "").
				Bool("has_user", cached.User != nil).
				Msg("discarding partial cached session")
			if err := s.store.Clear(ctx); err != nil {
				s.log.Error().Err(err).Msg("clear partial session")
			}
		}
		s.resolveLoading(domain.StateUnauthenticated, nil)
		s.log.Debug().Msg("no cached session")
		return
	}

	user, err := s.verify(ctx, cached.Token)
	if err == nil {
		err = s.store.SetUser(ctx, user)
	}
	if err != nil {
		s.log.Info().Err(err).Str("username", cached.User.Username).Msg("cached session rejected")
		s.purge(ctx, cached.User, domain.EventVerificationFailed, err.Error())
		s.resolveLoading(domain.StateUnauthenticated, nil)
		s.notifier.Notify(domain.Notice{Level: domain.NoticeError, Message: domain.MsgSessionExpired})
		return
	}

	s.resolveLoading(domain.StateAuthenticated, user)
	s.log.Info().Str("username", user.Username).Str("role", string(user.Role)).Msg("session restored")
}

// verify asks the backend who owns token and returns the normalized user.
func (s *SessionService) verify(ctx context.Context, token string) (*domain.User, error) {
	user, err := s.gateway.WhoAmI(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("verify session: %w", err)
	}
	user = NormalizeUser(user)
	if user == nil {
		return nil, fmt.Errorf("verify session: %w", domain.ErrInvalidUser)
	}
	if err := s.validate.Struct(user); err != nil {
		return nil, fmt.Errorf("verify session: %w: %v", domain.ErrInvalidUser, err)
	}
	return user, nil
}

// Login authenticates against the backend. The token and user are persisted
// together before the session becomes Authenticated. Failures leave the
// session untouched and are returned to the caller.
func (s *SessionService) Login(ctx context.Context, creds domain.Credentials) (*domain.User, error) {
	if err := s.validate.Struct(creds); err != nil {
		return nil, fmt.Errorf("%w: username and password are required", domain.ErrInvalidCredentials)
	}

	s.opMu.Lock()
	defer s.opMu.Unlock()

	resp, err := s.gateway.Login(ctx, creds)
	if err != nil {
		s.record(domain.SecurityEvent{Type: domain.EventLoginFailed, Username: creds.Username, Reason: err.Error()})
		return nil, fmt.Errorf("login: %w", err)
	}
	if resp == nil || resp.Token == "" {
		return nil, fmt.Errorf("login: %w: missing token", domain.ErrInvalidUser)
	}
	user := NormalizeUser(resp.User)
	if user == nil {
		return nil, fmt.Errorf("login: %w: missing user", domain.ErrInvalidUser)
	}
	if err := s.validate.Struct(user); err != nil {
		return nil, fmt.Errorf("login: %w: %v", domain.ErrInvalidUser, err)
	}

	if err := s.store.Set(ctx, resp.Token, user, s.ttlFor(resp.TTL)); err != nil {
		if clearErr := s.store.Clear(ctx); clearErr != nil {
			s.log.Error().Err(clearErr).Msg("clear after failed persist")
		}
		return nil, fmt.Errorf("login: persist session: %w", err)
	}

	s.setState(domain.StateAuthenticated, user)
	s.notifier.Notify(domain.Notice{Level: domain.NoticeSuccess, Message: domain.MsgLoginSucceeded})
	s.record(domain.SecurityEvent{Type: domain.EventLoginSucceeded, Username: user.Username, Role: user.Role})
	s.log.Info().Str("username", user.Username).Str("role", string(user.Role)).Msg("logged in")

	return user.Clone(), nil
}

// ttlFor never extends the configured lifetime, only shortens it.
func (s *SessionService) ttlFor(backendTTL time.Duration) time.Duration {
	if backendTTL > 0 && backendTTL < s.tokenTTL {
		return backendTTL
	}
	return s.tokenTTL
}

// Logout ends the session, drops client caches and reloads the client at the
// login page with its history truncated. Calling it again is harmless.
func (s *SessionService) Logout(ctx context.Context) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.mu.RLock()
	prev, wasAuthenticated := s.user, s.state == domain.StateAuthenticated
	s.mu.RUnlock()

	if err := s.store.Clear(ctx); err != nil {
		s.log.Error().Err(err).Msg("clear session on logout")
	}
	s.setState(domain.StateUnauthenticated, nil)
	s.runPurgers()
	s.nav.Reload(LoginPath)

	if wasAuthenticated {
		s.notifier.Notify(domain.Notice{Level: domain.NoticeSuccess, Message: domain.MsgLoggedOut})
		s.record(domain.SecurityEvent{Type: domain.EventLogout, Username: prev.Username, Role: prev.Role})
		s.log.Info().Str("username", prev.Username).Msg("logged out")
	}
}

func (s *SessionService) runPurgers() {
	s.purgeMu.Lock()
	purgers := append([]func(){}, s.purgers...)
	s.purgeMu.Unlock()
	for _, fn := range purgers {
		fn()
	}
}

// UpdateUser merges patch into the live and the persisted user. The token is
// not touched and the role is kept: see RefreshUser.
func (s *SessionService) UpdateUser(ctx context.Context, patch domain.UserPatch) (*domain.User, error) {
	if err := s.validate.Struct(patch); err != nil {
		return nil, fmt.Errorf("update user: %w: %v", domain.ErrInvalidUser, err)
	}

	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.mu.RLock()
	current, state := s.user, s.state
	s.mu.RUnlock()
	if state != domain.StateAuthenticated || current == nil {
		return nil, fmt.Errorf("update user: %w", domain.ErrNotAuthenticated)
	}

	merged := NormalizeUser(patch.Apply(current))
	if err := s.store.SetUser(ctx, merged); err != nil {
		if errors.Is(err, domain.ErrNotAuthenticated) {
			s.expire(ctx, current)
		}
		return nil, fmt.Errorf("update user: %w", err)
	}

	s.setState(domain.StateAuthenticated, merged)
	return merged.Clone(), nil
}

// ReportViolation ends an authenticated session after a client-side security
// violation.
func (s *SessionService) ReportViolation(ctx context.Context, reason string) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.mu.RLock()
	current, state := s.user, s.state
	s.mu.RUnlock()
	if state != domain.StateAuthenticated {
		return
	}
	s.log.Warn().Str("username", current.Username).Str("reason", reason).Msg("security violation reported")
	s.purge(ctx, current, domain.EventViolation, reason)
	s.setState(domain.StateUnauthenticated, nil)
	s.notifier.Notify(domain.Notice{Level: domain.NoticeError, Message: domain.MsgSessionExpired})
	s.nav.Replace(LoginPath)
}

// RefreshUser asks the backend who owns the cached token and adopts its
// answer, role included. This is the only way the role of a live session
// changes. A rejected token ends the session like a failed Init.
func (s *SessionService) RefreshUser(ctx context.Context) (*domain.User, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.mu.RLock()
	current, state := s.user, s.state
	s.mu.RUnlock()
	if state != domain.StateAuthenticated || current == nil {
		return nil, fmt.Errorf("refresh user: %w", domain.ErrNotAuthenticated)
	}

	cached := s.store.Get(ctx)
	if !cached.Complete() {
		s.expire(ctx, current)
		s.nav.Replace(LoginPath)
		return nil, fmt.Errorf("refresh user: %w", domain.ErrNotAuthenticated)
	}

	user, err := s.verify(ctx, cached.Token)
	if err == nil {
		err = s.store.SetUser(ctx, user)
	}
	if err != nil {
		s.log.Info().Err(err).Str("username", current.Username).Msg("session refresh rejected")
		s.purge(ctx, current, domain.EventVerificationFailed, err.Error())
		s.setState(domain.StateUnauthenticated, nil)
		s.notifier.Notify(domain.Notice{Level: domain.NoticeError, Message: domain.MsgSessionExpired})
		s.nav.Replace(LoginPath)
		return nil, fmt.Errorf("refresh user: %w", err)
	}

	if user.Role != current.Role {
		s.log.Info().Str("username", user.Username).
			Str("from", string(current.Role)).
			Str("to", string(user.Role)).
			Msg("role changed by backend")
	}
	s.setState(domain.StateAuthenticated, user)
	return user.Clone(), nil
}

// Snapshot returns the current session. An Authenticated session whose cached
// credentials have disappeared (TTL expiry) is ended here.
func (s *SessionService) Snapshot(ctx context.Context) domain.Session {
	s.mu.RLock()
	state, user := s.state, s.user
	s.mu.RUnlock()

	if state != domain.StateAuthenticated {
		return domain.Session{State: state}
	}
	if s.store.Get(ctx).Complete() {
		return domain.Session{State: state, User: user.Clone()}
	}

	s.opMu.Lock()
	defer s.opMu.Unlock()
	s.mu.RLock()
	state, user = s.state, s.user
	s.mu.RUnlock()
	if state == domain.StateAuthenticated && !s.store.Get(ctx).Complete() {
		s.expire(ctx, user)
		return domain.Session{State: domain.StateUnauthenticated}
	}
	return domain.Session{State: state, User: user.Clone()}
}

// IsAuthenticated is true only while both token and user are cached.
func (s *SessionService) IsAuthenticated(ctx context.Context) bool {
	return s.Snapshot(ctx).IsAuthenticated()
}

// IsLoading reports whether Init has not resolved yet.
func (s *SessionService) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state == domain.StateLoading
}

// User returns a copy of the authenticated user, or nil.
func (s *SessionService) User(ctx context.Context) *domain.User {
	return s.Snapshot(ctx).User
}

// expire ends the session after its credentials became unusable. Callers hold opMu.
func (s *SessionService) expire(ctx context.Context, user *domain.User) {
	s.purge(ctx, user, domain.EventSessionExpired, domain.ErrTokenInvalidOrExpired.Error())
	s.setState(domain.StateUnauthenticated, nil)
	s.notifier.Notify(domain.Notice{Level: domain.NoticeError, Message: domain.MsgSessionExpired})
}

func (s *SessionService) purge(ctx context.Context, user *domain.User, event domain.SecurityEventType, reason string) {
	if err := s.store.Clear(ctx); err != nil {
		s.log.Error().Err(err).Msg("clear session")
	}
	ev := domain.SecurityEvent{Type: event, Reason: reason}
	if user != nil {
		ev.Username, ev.Role = user.Username, NormalizeRole(user.Role)
	}
	s.record(ev)
}

// resolveLoading moves out of Loading. A login that completed first wins.
func (s *SessionService) resolveLoading(state domain.SessionState, user *domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != domain.StateLoading {
		return
	}
	s.state, s.user = state, user
}

func (s *SessionService) setState(state domain.SessionState, user *domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state, s.user = state, user
}

func (s *SessionService) record(ev domain.SecurityEvent) {
	ev.ID = uuid.NewString()
	ev.Timestamp = time.Now().UTC()
	s.audit.Record(ev)
}

type nopNavigator struct{}

func (nopNavigator) Replace(string) {}
func (nopNavigator) Reload(string)  {}

type nopNotifier struct{}

func (nopNotifier) Notify(domain.Notice) {}

type nopSink struct{}

func (nopSink) Record(domain.SecurityEvent) {}
