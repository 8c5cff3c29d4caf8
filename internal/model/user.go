package model

import "time"

// User represents an application user record as stored in the
// `users` table.  Every user belongs to a tenant; an OWNER creates
// the tenant at registration and may invite STAFF accounts into it.
// The json tags are omitted here because these structs are primarily
// used internally by the repository layer; handlers define separate
// response types with appropriate JSON tags.
//
// Fields:
//
//	ID           – primary key identifier of the user.
//	TenantID     – tenant the user operates in.
//	Email        – unique email address.
//	PasswordHash – bcrypt hashed password.
//	Role         – role name (OWNER or STAFF).
//	IsActive     – whether the account is active.
//	CreatedAt    – timestamp of creation.
//	UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    // users.id
	TenantID     uint64    // users.tenant_id
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	Role         string    // users.role
	IsActive     bool      // users.is_active
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// Tenant is the minimal identity row for a coworking space.  Tenant
// management beyond creation is out of the core's scope; the row
// exists so desks, catalog entries and sessions have a stable owner.
//
// Fields:
//
//	ID        – numeric identifier of the tenant.
//	Name      – display name of the space.
//	CreatedAt – timestamp of creation.
type Tenant struct {
	ID        uint64    // tenants.id
	Name      string    // tenants.name
	CreatedAt time.Time // tenants.created_at
}

// RefreshToken models an entry in the `refresh_tokens` table.  Each
// refresh token belongs to a user and contains metadata for expiry
// and revocation.  The plain token is not stored; only its
// SHA-256 hash.
//
// Fields:
//
//	ID        – primary key identifier.
//	UserID    – owner of the token.
//	TokenHash – SHA-256 hex digest of the token value.
//	ExpiresAt – expiration timestamp of the token.
//	RevokedAt – when the token was revoked (null if still active).
//	CreatedAt – timestamp of creation.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    uint64     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
