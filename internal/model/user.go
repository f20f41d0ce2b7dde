package model

import "time"

// User represents a rider record as stored in the `users` table.  The
// json tags are omitted because these structs are used internally by the
// repository layer; handlers define separate response types with
// appropriate JSON tags.
//
// Fields:
//  ID           – primary key identifier of the rider.
//  Name         – display name.
//  Email        – unique email address.
//  Phone        – contact phone number.
//  Age          – rider age (zero when not provided).
//  PasswordHash – bcrypt hashed password.
//  IsActive     – whether the account may log in and request passes.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
    ID           uint64    // users.id
    Name         string    // users.name
    Email        string    // users.email
    Phone        string    // users.phone
    Age          uint8     // users.age
    PasswordHash string    // users.password_hash
    IsActive     bool      // users.is_active
    CreatedAt    time.Time // users.created_at
    UpdatedAt    time.Time // users.updated_at
}

// Admin represents an administrator record in the `admins` table.
// Admins approve or reject passes and manage rider accounts; superadmins
// additionally manage other admin accounts.
//
// Fields:
//  ID           – primary key identifier.
//  Name         – display name.
//  Email        – unique email address.
//  PasswordHash – bcrypt hashed password.
//  Role         – RoleAdmin or RoleSuperAdmin.
//  IsActive     – whether the account may log in.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type Admin struct {
    ID           uint64    // admins.id
    Name         string    // admins.name
    Email        string    // admins.email
    PasswordHash string    // admins.password_hash
    Role         Role      // admins.role
    IsActive     bool      // admins.is_active
    CreatedAt    time.Time // admins.created_at
    UpdatedAt    time.Time // admins.updated_at
}

// RefreshToken models an entry in the `refresh_tokens` table.  Each
// refresh token belongs to a principal (rider or admin) and contains
// metadata for expiry and revocation.  The plain token is not stored;
// only its SHA-256 hash.
//
// Fields:
//  ID            – primary key identifier.
//  PrincipalID   – owner of the token.
//  PrincipalKind – "rider" or "admin".
//  TokenHash     – SHA-256 hex digest of the token value.
//  ExpiresAt     – expiration timestamp of the token.
//  RevokedAt     – when the token was revoked (null if still active).
//  CreatedAt     – timestamp of creation.
type RefreshToken struct {
    ID            uint64     // refresh_tokens.id
    PrincipalID   uint64     // refresh_tokens.principal_id
    PrincipalKind string     // refresh_tokens.principal_kind
    TokenHash     string     // refresh_tokens.token_hash
    ExpiresAt     time.Time  // refresh_tokens.expires_at
    RevokedAt     *time.Time // refresh_tokens.revoked_at (nullable)
    CreatedAt     time.Time  // refresh_tokens.created_at
}
