package auth

import (
	"context"
	"log"
	"strings"

	"github.com/iliyamo/property-listing/internal/bridge"
	"github.com/iliyamo/property-listing/internal/model"
	"github.com/iliyamo/property-listing/internal/utils"
)

// MasterCredentials identify the single master admin.  PasswordHash is a
// bcrypt hash; an empty Email disables master login.
type MasterCredentials struct {
	Email        string
	PasswordHash string
}

// MasterSession is the session of the master admin.  Unlike the admin
// session, restoration only succeeds after the token is confirmed by a
// Verifier.
type MasterSession struct {
	session
	creds    MasterCredentials
	tokens   TokenConfig
	verifier Verifier
}

// NewMasterSession builds an uninitialized master session.
func NewMasterSession(b *bridge.Bridge, creds MasterCredentials, tokens TokenConfig, v Verifier) *MasterSession {
	s := &MasterSession{creds: creds, tokens: tokens, verifier: v}
	s.setup(b, bridge.KeyMasterToken)
	return s
}

// Init restores the session from the persisted token after verifying it.
// A token the verifier rejects is removed.  The verifier call runs
// outside the session lock; State reports Initializing meanwhile.
func (s *MasterSession) Init(ctx context.Context) SessionState {
	if !s.beginInit() {
		return s.State()
	}
	raw := bridge.LoadValue(ctx, s.bridge, s.tokenKey, "")
	if raw == "" {
		return s.finishInit(nil, "")
	}
	p, err := s.verifier.Verify(ctx, raw)
	if err != nil {
		log.Printf("auth: master token rejected: %v", err)
		s.bridge.Remove(ctx, s.tokenKey)
		return s.finishInit(nil, "")
	}
	return s.finishInit(&p, raw)
}

// Login checks the master credentials and issues a MASTER token.
func (s *MasterSession) Login(ctx context.Context, email, password string) (utils.AccessToken, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if s.creds.Email == "" || email != strings.ToLower(s.creds.Email) || !utils.VerifyPassword(s.creds.PasswordHash, password) {
		return utils.AccessToken{}, ErrInvalidCredentials
	}
	tok, err := utils.NewAccessToken(s.tokens.Secret, masterSubject, email, model.RoleMaster, s.tokens.TTLMin)
	if err != nil {
		return utils.AccessToken{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.setLocked(&model.Principal{ID: masterSubject, Name: email, Role: model.RoleMaster}, tok.Token)
	s.state.Initialized = true
	s.state.Loading = false
	s.bridge.Save(ctx, s.tokenKey, tok.Token)
	return tok, nil
}

// Logout clears the principal and the persisted token.
func (s *MasterSession) Logout(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setLocked(nil, "")
	s.state.Initialized = true
	s.state.Loading = false
	s.bridge.Remove(ctx, s.tokenKey)
}

const masterSubject = "master"
