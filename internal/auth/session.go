// Package auth owns the two session state machines (tenant-scoped admin
// and master admin) and the admin account collection the master manages.
//
// Both sessions move Uninitialized → Initializing → Authenticated or
// Unauthenticated.  Initialized stays false until restoration has finished
// so consumers can tell "still restoring" from "checked and found nothing"
// and avoid rejecting a user whose session is about to be restored.
package auth

import (
	"errors"
	"sync"

	"github.com/iliyamo/property-listing/internal/bridge"
	"github.com/iliyamo/property-listing/internal/model"
)

var (
	// ErrInvalidCredentials is returned by Login for an unknown user or a
	// wrong password.  The two cases are not distinguished.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountInactive is returned by Login for a deactivated account.
	ErrAccountInactive = errors.New("account is inactive")
)

// Status is the lifecycle position of a session.
type Status int

const (
	Uninitialized Status = iota
	Initializing
	Authenticated
	Unauthenticated
)

func (s Status) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Initializing:
		return "initializing"
	case Authenticated:
		return "authenticated"
	case Unauthenticated:
		return "unauthenticated"
	}
	return "unknown"
}

// MarshalText renders the status by name in JSON responses.
func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// SessionState is the read model of a session.
type SessionState struct {
	Status      Status           `json:"status"`
	Principal   *model.Principal `json:"principal"`
	Loading     bool             `json:"loading"`
	Initialized bool             `json:"initialized"`
}

// TokenConfig parameterizes the access tokens a session issues.
type TokenConfig struct {
	Secret string
	TTLMin int
}

// session is the state shared by AdminSession and MasterSession.
type session struct {
	mu       sync.Mutex
	state    SessionState
	token    string
	bridge   *bridge.Bridge
	tokenKey string
}

func (s *session) setup(b *bridge.Bridge, tokenKey string) {
	s.bridge = b
	s.tokenKey = tokenKey
}

// State returns a copy of the session read model.
func (s *session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// Token returns the current access token, empty when unauthenticated.
func (s *session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *session) snapshot() SessionState {
	out := s.state
	if s.state.Principal != nil {
		p := *s.state.Principal
		out.Principal = &p
	}
	return out
}

// beginInit moves an uninitialized session to Initializing.  It reports
// false when initialization already ran or is running.
func (s *session) beginInit() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Status != Uninitialized {
		return false
	}
	s.state.Status = Initializing
	s.state.Loading = true
	return true
}

// finishInit records the restoration result unless a login or logout has
// already settled the session in the meantime.
func (s *session) finishInit(p *model.Principal, token string) SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Status == Initializing {
		s.setLocked(p, token)
	}
	s.state.Loading = false
	s.state.Initialized = true
	return s.snapshot()
}

// setLocked installs p as the principal, or clears the session when p is
// nil.  The caller holds s.mu.
func (s *session) setLocked(p *model.Principal, token string) {
	if p == nil {
		s.state.Status = Unauthenticated
		s.state.Principal = nil
		s.token = ""
		return
	}
	s.state.Status = Authenticated
	s.state.Principal = p
	s.token = token
}
