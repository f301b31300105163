// Package authhttp is the HTTP client for the editions API. It attaches the
// session's bearer token to every request and recovers from one 403 per
// request by exchanging client credentials for a new token.
package authhttp

import "sync"

// State is where a Session sits in the credential lifecycle.
type State int

const (
	Unauthenticated State = iota
	Authenticated
	RefreshingCredentials
	Failed
)

func (s State) String() string {
	switch s {
	case Unauthenticated:
		return "unauthenticated"
	case Authenticated:
		return "authenticated"
	case RefreshingCredentials:
		return "refreshing_credentials"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Session holds the access token shared by every client built on it.
// It lives as long as the process and is safe for concurrent use.
type Session struct {
	mu    sync.RWMutex
	token string
	state State
}

// NewSession returns a session seeded with token. An empty token starts
// the session unauthenticated.
func NewSession(token string) *Session {
	s := &Session{}
	if token != "" {
		s.token = token
		s.state = Authenticated
	}
	return s
}

// Token returns the current access token, or "" when there is none.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// State returns the current credential state.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Session) beginRefresh() {
	s.mu.Lock()
	s.state = RefreshingCredentials
	s.mu.Unlock()
}

// store replaces any previous token.
func (s *Session) store(token string) {
	s.mu.Lock()
	s.token = token
	s.state = Authenticated
	s.mu.Unlock()
}

func (s *Session) fail() {
	s.mu.Lock()
	s.token = ""
	s.state = Failed
	s.mu.Unlock()
}
