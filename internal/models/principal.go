package models

import "time"

// Role tags a principal variant. Users and admins are structurally identical
// but live in separate tables and must never cross-resolve.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// OAuthProviderGoogle is the only external identity provider currently wired.
const OAuthProviderGoogle = "google"

// Principal represents an authenticated identity, either a user or an admin.
// PasswordHash is empty for federated accounts and is only populated by the
// explicit ...WithPassword repository lookups used during login.
type Principal struct {
	ID            string    `db:"id" json:"id"`
	Username      string    `db:"username" json:"username"`
	Email         string    `db:"email" json:"email"`
	PasswordHash  string    `db:"password_hash" json:"-"`
	Role          Role      `db:"role" json:"role"`
	OAuthProvider *string   `db:"oauth_provider" json:"oauthProvider,omitempty"`
	OAuthID       *string   `db:"oauth_id" json:"oauthId,omitempty"`
	IsActive      bool      `db:"is_active" json:"isActive"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time `db:"updated_at" json:"updatedAt"`

	// Assignments is a denormalized convenience view, hydrated on demand.
	// The assignments table is the authoritative source.
	Assignments []Assignment `db:"-" json:"assignments,omitempty"`
}

// PrincipalRef is a compact (kind, id) reference to a principal, used to
// rehydrate the full record from the correct table. Replaces stringly-typed
// role branching at lookup sites.
type PrincipalRef struct {
	Kind Role   `json:"role"`
	ID   string `json:"id"`
}

// UserRef builds a reference into the users table.
func UserRef(id string) PrincipalRef { return PrincipalRef{Kind: RoleUser, ID: id} }

// AdminRef builds a reference into the admins table.
func AdminRef(id string) PrincipalRef { return PrincipalRef{Kind: RoleAdmin, ID: id} }

// Ref returns the compact reference for this principal.
func (p *Principal) Ref() PrincipalRef {
	return PrincipalRef{Kind: p.Role, ID: p.ID}
}

// PrincipalInfo is the public projection returned by register and login.
type PrincipalInfo struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Info returns the public projection of the principal.
func (p *Principal) Info() PrincipalInfo {
	return PrincipalInfo{ID: p.ID, Username: p.Username, Email: p.Email}
}

// AdminSummary is the directory listing entry for admins.
type AdminSummary struct {
	ID       string `db:"id" json:"id"`
	Username string `db:"username" json:"username"`
}
