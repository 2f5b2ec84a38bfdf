package model

import "time"

// Session roles carried in access tokens.
const (
	RoleAdmin  = "ADMIN"
	RoleMaster = "MASTER"
)

// AdminAccount represents a tenant-scoped administrator managed by the
// master admin.  Accounts are persisted as a single collection.
//
// Fields:
//  ID           – unique identifier.
//  Username     – login name, unique across accounts.
//  Account      – account (agency) name the admin belongs to.
//  PasswordHash – bcrypt hash of the password.  Never serialized to clients.
//  MobileNumber – contact phone number.
//  IsActive     – inactive accounts cannot log in.
//  CreatedAt    – timestamp of creation.
//  LastLogin    – timestamp of the last successful login (nil if never).
type AdminAccount struct {
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	Account      string     `json:"account"`
	PasswordHash string     `json:"passwordHash"`
	MobileNumber string     `json:"mobileNumber"`
	IsActive     bool       `json:"isActive"`
	CreatedAt    time.Time  `json:"createdAt"`
	LastLogin    *time.Time `json:"lastLogin,omitempty"`
}

// PublicAdminAccount is the client-facing view of an AdminAccount without
// the password hash.
type PublicAdminAccount struct {
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	Account      string     `json:"account"`
	MobileNumber string     `json:"mobileNumber"`
	IsActive     bool       `json:"isActive"`
	CreatedAt    time.Time  `json:"createdAt"`
	LastLogin    *time.Time `json:"lastLogin,omitempty"`
}

// Public strips secrets from the account.
func (a AdminAccount) Public() PublicAdminAccount {
	return PublicAdminAccount{
		ID:           a.ID,
		Username:     a.Username,
		Account:      a.Account,
		MobileNumber: a.MobileNumber,
		IsActive:     a.IsActive,
		CreatedAt:    a.CreatedAt,
		LastLogin:    a.LastLogin,
	}
}

// MasterAdmin is the elevated principal that administers admin accounts.
// There is at most one per session and it is not part of the AdminAccount
// collection.
type MasterAdmin struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Principal is the authenticated identity held by a session.
type Principal struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}
