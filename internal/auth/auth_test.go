package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/property-listing/internal/bridge"
	"github.com/iliyamo/property-listing/internal/idgen"
	"github.com/iliyamo/property-listing/internal/model"
	"github.com/iliyamo/property-listing/internal/utils"
)

var (
	testNow    = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	testTokens = TokenConfig{Secret: "test-secret", TTLMin: 30}
)

func newBridge() *bridge.Bridge {
	return bridge.New(bridge.NewMemory(), bridge.WithLogger(log.New(&bytes.Buffer{}, "", 0)))
}

func newAccounts(b *bridge.Bridge) *Accounts {
	a := NewAccounts(b,
		WithAccountsClock(func() time.Time { return testNow }),
		WithAccountsIDGenerator(idgen.Sequence()),
		WithBcryptCost(4),
	)
	a.Init(context.Background())
	return a
}

func validInput() CreateAdminInput {
	return CreateAdminInput{Username: "alice", Account: "acme", Password: "secret1", MobileNumber: "+20 100-123-4567"}
}

func TestCreate_Validation(t *testing.T) {
	ctx := context.Background()
	a := newAccounts(newBridge())

	r := a.Create(ctx, CreateAdminInput{Username: "ab"})
	assert.False(t, r.Success)
	assert.Contains(t, r.Message, "at least 3")
	assert.Empty(t, a.List())

	in := validInput()
	in.Account = "ac"
	assert.Contains(t, a.Create(ctx, in).Message, "account")

	in = validInput()
	in.Password = "12345"
	assert.Contains(t, a.Create(ctx, in).Message, "at least 6")

	in = validInput()
	in.MobileNumber = "call me"
	assert.Contains(t, a.Create(ctx, in).Message, "mobile")

	// lengths count characters, not bytes
	in = validInput()
	in.Username = "éa"
	assert.Contains(t, a.Create(ctx, in).Message, "username")
	in = validInput()
	in.Account = "çü"
	assert.Contains(t, a.Create(ctx, in).Message, "account")
	in = validInput()
	in.Password = "ééé"
	assert.Contains(t, a.Create(ctx, in).Message, "at least 6")

	assert.Empty(t, a.List())

	in = validInput()
	in.Username = "élan"
	in.Password = "mötley"
	assert.True(t, a.Create(ctx, in).Success)
}

func TestCreate_PersistsAndRejectsDuplicate(t *testing.T) {
	ctx := context.Background()
	b := newBridge()
	a := newAccounts(b)

	r := a.Create(ctx, validInput())
	require.True(t, r.Success, r.Message)
	require.NotNil(t, r.Account)
	assert.Equal(t, "admin_1", r.Account.ID)
	assert.True(t, r.Account.IsActive)
	assert.Equal(t, testNow, r.Account.CreatedAt)

	dup := validInput()
	dup.Username = "ALICE"
	assert.Equal(t, "username already exists", a.Create(ctx, dup).Message)

	stored := bridge.Load[model.AdminAccount](ctx, b, bridge.KeyAdminAccounts)
	require.Len(t, stored, 1)
	assert.NotEqual(t, "secret1", stored[0].PasswordHash)
	assert.True(t, utils.VerifyPassword(stored[0].PasswordHash, "secret1"))

	reloaded := newAccounts(b)
	assert.Len(t, reloaded.List(), 1)
	got, found := reloaded.GetByUsername("Alice")
	require.True(t, found)
	assert.Equal(t, "admin_1", got.ID)
}

func TestSetActiveAndDelete(t *testing.T) {
	ctx := context.Background()
	a := newAccounts(newBridge())
	id := a.Create(ctx, validInput()).Account.ID

	r := a.SetActive(ctx, id, false)
	require.True(t, r.Success)
	assert.False(t, r.Account.IsActive)
	_, err := a.Authenticate("alice", "secret1")
	assert.ErrorIs(t, err, ErrAccountInactive)

	assert.True(t, a.SetActive(ctx, id, true).Success)
	assert.False(t, a.SetActive(ctx, "nope", true).Success)

	assert.True(t, a.Delete(ctx, id).Success)
	assert.False(t, a.Delete(ctx, id).Success)
	_, found := a.Get(id)
	assert.False(t, found)
}

func TestAdminSession_LoginRestoreLogout(t *testing.T) {
	ctx := context.Background()
	b := newBridge()
	a := newAccounts(b)
	require.True(t, a.Create(ctx, validInput()).Success)

	s := NewAdminSession(b, a, testTokens)
	assert.Equal(t, Uninitialized, s.State().Status)
	st := s.Init(ctx)
	assert.Equal(t, Unauthenticated, st.Status)
	assert.True(t, st.Initialized)
	assert.False(t, st.Loading)

	_, err := s.Login(ctx, "alice", "wrong-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	tok, err := s.Login(ctx, "alice", "secret1")
	require.NoError(t, err)
	assert.Equal(t, tok.Token, s.Token())
	st = s.State()
	assert.Equal(t, Authenticated, st.Status)
	assert.Equal(t, "alice", st.Principal.Name)

	acc, _ := a.Get(st.Principal.ID)
	require.NotNil(t, acc.LastLogin)
	assert.Equal(t, testNow, *acc.LastLogin)

	// a fresh process restores from the persisted token
	restored := NewAdminSession(b, a, testTokens)
	st = restored.Init(ctx)
	assert.Equal(t, Authenticated, st.Status)
	assert.Equal(t, "alice", st.Principal.Name)
	// second Init is a no-op
	assert.Equal(t, st, restored.Init(ctx))

	restored.Logout(ctx)
	assert.Equal(t, Unauthenticated, restored.State().Status)
	assert.Empty(t, bridge.LoadValue(ctx, b, bridge.KeyAdminToken, ""))
}

func TestAdminSession_DiscardsGarbageToken(t *testing.T) {
	ctx := context.Background()
	b := newBridge()
	b.Save(ctx, bridge.KeyAdminToken, "garbage")
	s := NewAdminSession(b, newAccounts(b), testTokens)
	assert.Equal(t, Unauthenticated, s.Init(ctx).Status)
	assert.Empty(t, bridge.LoadValue(ctx, b, bridge.KeyAdminToken, ""))
}

func masterCreds(t *testing.T) MasterCredentials {
	h, err := utils.HashPassword("master-pass", 4)
	require.NoError(t, err)
	return MasterCredentials{Email: "root@example.com", PasswordHash: h}
}

func TestMasterSession_VerifiesOnRestore(t *testing.T) {
	ctx := context.Background()
	b := newBridge()
	creds := masterCreds(t)

	s := NewMasterSession(b, creds, testTokens, JWTVerifier{Secret: testTokens.Secret})
	s.Init(ctx)
	_, err := s.Login(ctx, "root@example.com", "nope")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = s.Login(ctx, " Root@Example.com ", "master-pass")
	require.NoError(t, err)
	assert.Equal(t, model.RoleMaster, s.State().Principal.Role)

	ok := NewMasterSession(b, creds, testTokens, JWTVerifier{Secret: testTokens.Secret})
	st := ok.Init(ctx)
	assert.Equal(t, Authenticated, st.Status)
	assert.Equal(t, "root@example.com", st.Principal.Name)

	rejected := NewMasterSession(b, creds, testTokens, VerifierFunc(func(context.Context, string) (model.Principal, error) {
		return model.Principal{}, errors.New("revoked")
	}))
	st = rejected.Init(ctx)
	assert.Equal(t, Unauthenticated, st.Status)
	assert.True(t, st.Initialized)
	assert.Empty(t, bridge.LoadValue(ctx, b, bridge.KeyMasterToken, ""), "rejected token is removed")
}

func TestMasterSession_InitializingWhileVerifying(t *testing.T) {
	ctx := context.Background()
	b := newBridge()
	tok, err := utils.NewAccessToken(testTokens.Secret, "master", "root@example.com", model.RoleMaster, 5)
	require.NoError(t, err)
	b.Save(ctx, bridge.KeyMasterToken, tok.Token)

	release := make(chan struct{})
	entered := make(chan struct{})
	s := NewMasterSession(b, masterCreds(t), testTokens, VerifierFunc(func(ctx context.Context, raw string) (model.Principal, error) {
		close(entered)
		<-release
		return JWTVerifier{Secret: testTokens.Secret}.Verify(ctx, raw)
	}))

	done := make(chan SessionState)
	go func() { done <- s.Init(ctx) }()
	<-entered
	st := s.State()
	assert.Equal(t, Initializing, st.Status)
	assert.False(t, st.Initialized)
	assert.True(t, st.Loading)
	close(release)
	assert.Equal(t, Authenticated, (<-done).Status)
}

func TestJWTVerifier_RejectsAdminToken(t *testing.T) {
	tok, err := utils.NewAccessToken(testTokens.Secret, "admin_1", "alice", model.RoleAdmin, 5)
	require.NoError(t, err)
	_, err = JWTVerifier{Secret: testTokens.Secret}.Verify(context.Background(), tok.Token)
	assert.ErrorIs(t, err, ErrNotMaster)
}

func TestHTTPVerifier(t *testing.T) {
	tok, err := utils.NewAccessToken(testTokens.Secret, "master", "root@example.com", model.RoleMaster, 5)
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["token"] != tok.Token || r.Header.Get("Authorization") != "Bearer "+tok.Token {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	v := HTTPVerifier{URL: srv.URL, Client: srv.Client()}
	p, err := v.Verify(context.Background(), tok.Token)
	require.NoError(t, err)
	assert.Equal(t, "master", p.ID)
	assert.Equal(t, "root@example.com", p.Name)

	_, err = v.Verify(context.Background(), "other")
	assert.ErrorContains(t, err, "401")
}
