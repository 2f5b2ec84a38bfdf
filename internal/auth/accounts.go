package auth

import (
	"context"
	"regexp"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/iliyamo/property-listing/internal/bridge"
	"github.com/iliyamo/property-listing/internal/idgen"
	"github.com/iliyamo/property-listing/internal/model"
	"github.com/iliyamo/property-listing/internal/utils"
)

// Minimum field lengths enforced by Create, counted in characters.
const (
	MinUsernameLen = 3
	MinAccountLen  = 3
	MinPasswordLen = 6
)

// mobilePattern accepts digits, spaces, dashes, parentheses and an
// optional leading plus.
var mobilePattern = regexp.MustCompile(`^\+?[0-9\s\-()]{7,20}$`)

// CreateAdminInput is the payload of Create.
type CreateAdminInput struct {
	Username     string `json:"username"`
	Account      string `json:"account"`
	Password     string `json:"password"`
	MobileNumber string `json:"mobileNumber"`
	IsActive     *bool  `json:"isActive,omitempty"` // defaults to true
}

// Result reports the outcome of an account operation.  Validation and
// not-found failures are carried here instead of as errors.
type Result struct {
	Success bool                      `json:"success"`
	Message string                    `json:"message"`
	Account *model.PublicAdminAccount `json:"account,omitempty"`
}

func fail(msg string) Result { return Result{Success: false, Message: msg} }

func ok(msg string, a model.AdminAccount) Result {
	pub := a.Public()
	return Result{Success: true, Message: msg, Account: &pub}
}

// Accounts is the admin account collection, persisted as a whole under
// bridge.KeyAdminAccounts after every change.
type Accounts struct {
	mu         sync.Mutex
	list       []model.AdminAccount
	bridge     *bridge.Bridge
	now        func() time.Time
	newID      idgen.Generator
	bcryptCost int
}

// AccountsOption configures Accounts.
type AccountsOption func(*Accounts)

// WithAccountsClock overrides the clock stamping CreatedAt and LastLogin.
func WithAccountsClock(now func() time.Time) AccountsOption {
	return func(a *Accounts) { a.now = now }
}

// WithAccountsIDGenerator overrides id generation.
func WithAccountsIDGenerator(g idgen.Generator) AccountsOption {
	return func(a *Accounts) { a.newID = g }
}

// WithBcryptCost sets the password hashing cost.
func WithBcryptCost(cost int) AccountsOption {
	return func(a *Accounts) { a.bcryptCost = cost }
}

// NewAccounts returns an empty collection; call Init to load it.
func NewAccounts(b *bridge.Bridge, opts ...AccountsOption) *Accounts {
	a := &Accounts{
		bridge:     b,
		now:        func() time.Time { return time.Now().UTC() },
		newID:      idgen.New,
		bcryptCost: 10,
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Init loads the persisted accounts.
func (a *Accounts) Init(ctx context.Context) {
	list := bridge.Load[model.AdminAccount](ctx, a.bridge, bridge.KeyAdminAccounts)
	a.mu.Lock()
	a.list = list
	a.mu.Unlock()
}

// Create validates in and appends a new account.  Nothing is added when
// validation fails.
func (a *Accounts) Create(ctx context.Context, in CreateAdminInput) Result {
	username := strings.TrimSpace(in.Username)
	account := strings.TrimSpace(in.Account)
	mobile := strings.TrimSpace(in.MobileNumber)
	switch {
	case utf8.RuneCountInString(username) < MinUsernameLen:
		return fail("username must be at least 3 characters")
	case utf8.RuneCountInString(account) < MinAccountLen:
		return fail("account must be at least 3 characters")
	case utf8.RuneCountInString(in.Password) < MinPasswordLen:
		return fail("password must be at least 6 characters")
	case !mobilePattern.MatchString(mobile):
		return fail("mobile number is invalid")
	}

	// hash outside the lock, bcrypt is slow on purpose
	hash, err := utils.HashPassword(in.Password, a.bcryptCost)
	if err != nil {
		return fail("could not hash password")
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.indexByUsername(username) >= 0 {
		return fail("username already exists")
	}
	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}
	acc := model.AdminAccount{
		ID:           a.newID(idgen.PrefixAdmin),
		Username:     username,
		Account:      account,
		PasswordHash: hash,
		MobileNumber: mobile,
		IsActive:     active,
		CreatedAt:    a.now(),
	}
	a.list = append(a.list, acc)
	a.persistLocked(ctx)
	return ok("admin account created", acc)
}

// List returns every account in creation order.
func (a *Accounts) List() []model.AdminAccount {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]model.AdminAccount, len(a.list))
	copy(out, a.list)
	return out
}

// Get returns the account with id.
func (a *Accounts) Get(id string) (model.AdminAccount, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if i := a.indexByID(id); i >= 0 {
		return a.list[i], true
	}
	return model.AdminAccount{}, false
}

// GetByUsername returns the account registered under username.
func (a *Accounts) GetByUsername(username string) (model.AdminAccount, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if i := a.indexByUsername(username); i >= 0 {
		return a.list[i], true
	}
	return model.AdminAccount{}, false
}

// SetActive activates or deactivates an account.
func (a *Accounts) SetActive(ctx context.Context, id string, active bool) Result {
	a.mu.Lock()
	defer a.mu.Unlock()
	i := a.indexByID(id)
	if i < 0 {
		return fail("admin account not found")
	}
	a.list[i].IsActive = active
	a.persistLocked(ctx)
	if active {
		return ok("admin account activated", a.list[i])
	}
	return ok("admin account deactivated", a.list[i])
}

// Delete removes an account.
func (a *Accounts) Delete(ctx context.Context, id string) Result {
	a.mu.Lock()
	defer a.mu.Unlock()
	i := a.indexByID(id)
	if i < 0 {
		return fail("admin account not found")
	}
	removed := a.list[i]
	a.list = append(a.list[:i:i], a.list[i+1:]...)
	a.persistLocked(ctx)
	return ok("admin account deleted", removed)
}

// Authenticate returns the account matching username and password.
func (a *Accounts) Authenticate(username, password string) (model.AdminAccount, error) {
	a.mu.Lock()
	i := a.indexByUsername(strings.TrimSpace(username))
	var acc model.AdminAccount
	if i >= 0 {
		acc = a.list[i]
	}
	a.mu.Unlock()
	if i < 0 || !utils.VerifyPassword(acc.PasswordHash, password) {
		return model.AdminAccount{}, ErrInvalidCredentials
	}
	if !acc.IsActive {
		return model.AdminAccount{}, ErrAccountInactive
	}
	return acc, nil
}

// RecordLogin stamps LastLogin on the account.  Unknown ids are ignored.
func (a *Accounts) RecordLogin(ctx context.Context, id string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if i := a.indexByID(id); i >= 0 {
		t := a.now()
		a.list[i].LastLogin = &t
		a.persistLocked(ctx)
	}
}

func (a *Accounts) indexByID(id string) int {
	for i := range a.list {
		if a.list[i].ID == id {
			return i
		}
	}
	return -1
}

func (a *Accounts) indexByUsername(username string) int {
	for i := range a.list {
		if strings.EqualFold(a.list[i].Username, username) {
			return i
		}
	}
	return -1
}

func (a *Accounts) persistLocked(ctx context.Context) {
	list := a.list
	if list == nil {
		list = []model.AdminAccount{}
	}
	a.bridge.Save(ctx, bridge.KeyAdminAccounts, list)
}
