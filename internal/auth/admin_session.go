package auth

import (
	"context"
	"log"

	"github.com/iliyamo/property-listing/internal/bridge"
	"github.com/iliyamo/property-listing/internal/model"
	"github.com/iliyamo/property-listing/internal/utils"
)

// AdminSession is the session of a tenant-scoped admin.
type AdminSession struct {
	session
	accounts *Accounts
	tokens   TokenConfig
}

// NewAdminSession builds an uninitialized admin session.  Logins are
// checked against accounts.
func NewAdminSession(b *bridge.Bridge, accounts *Accounts, tokens TokenConfig) *AdminSession {
	s := &AdminSession{accounts: accounts, tokens: tokens}
	s.setup(b, bridge.KeyAdminToken)
	return s
}

// Init restores the session from the persisted token.  Restoration is
// best effort: a present, decodable token is enough, its signature is
// checked by the HTTP layer on each request.  An undecodable token is
// discarded.
func (s *AdminSession) Init(ctx context.Context) SessionState {
	if !s.beginInit() {
		return s.State()
	}
	raw := bridge.LoadValue(ctx, s.bridge, s.tokenKey, "")
	if raw == "" {
		return s.finishInit(nil, "")
	}
	claims, err := utils.DecodeUnverified(raw)
	if err != nil || claims.Role != model.RoleAdmin {
		log.Printf("auth: discarding unreadable admin token")
		s.bridge.Remove(ctx, s.tokenKey)
		return s.finishInit(nil, "")
	}
	return s.finishInit(&model.Principal{ID: claims.Subject, Name: claims.Name, Role: model.RoleAdmin}, raw)
}

// Login authenticates username/password, issues an access token and
// persists it so the session survives a restart.
func (s *AdminSession) Login(ctx context.Context, username, password string) (utils.AccessToken, error) {
	acc, err := s.accounts.Authenticate(username, password)
	if err != nil {
		return utils.AccessToken{}, err
	}
	tok, err := utils.NewAccessToken(s.tokens.Secret, acc.ID, acc.Username, model.RoleAdmin, s.tokens.TTLMin)
	if err != nil {
		return utils.AccessToken{}, err
	}
	s.accounts.RecordLogin(ctx, acc.ID)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.setLocked(&model.Principal{ID: acc.ID, Name: acc.Username, Role: model.RoleAdmin}, tok.Token)
	s.state.Initialized = true
	s.state.Loading = false
	s.bridge.Save(ctx, s.tokenKey, tok.Token)
	return tok, nil
}

// Logout clears the principal and the persisted token.
func (s *AdminSession) Logout(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setLocked(nil, "")
	s.state.Initialized = true
	s.state.Loading = false
	s.bridge.Remove(ctx, s.tokenKey)
}
