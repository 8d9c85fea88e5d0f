package domain

// SessionState is the lifecycle state of the console session.
type SessionState int

const (
	StateLoading SessionState = iota
	StateUnauthenticated
	StateAuthenticated
)

func (s SessionState) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Session is a read-only snapshot of the session. User is nil unless
// State is StateAuthenticated.
type Session struct {
	State SessionState
	User  *User
}

func (s Session) IsAuthenticated() bool { return s.State == StateAuthenticated && s.User != nil }

func (s Session) IsLoading() bool { return s.State == StateLoading }

// CachedCredentials is what the token store currently holds. Either half may
// be missing; callers must treat a partial pair as no session at all.
type CachedCredentials struct {
	Token string
	User  *User
}

// Complete reports whether both token and user are present.
func (c CachedCredentials) Complete() bool { return c.Token != "" && c.User != nil }

// Empty reports whether neither half is present.
func (c CachedCredentials) Empty() bool { return c.Token == "" && c.User == nil }
