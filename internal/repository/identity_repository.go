package repository

import (
    "context"
    "database/sql"
    "strings"

    "github.com/iliyamo/bus-pass-system/internal/model"
)

// Principal kinds used in tokens and the refresh_tokens table.
const (
    KindRider = "rider"
    KindAdmin = "admin"
)

// Identity is the tagged result of resolving a login email against both
// principal tables.  Callers switch on Kind instead of branching on which
// of two lookups happened to populate a field.
type Identity struct {
    Kind         string // KindRider or KindAdmin
    ID           uint64
    Name         string
    Email        string
    PasswordHash string
    Role         model.Role
    IsActive     bool
}

// IdentityRepo resolves a login identity from the union of riders and
// admins.  Rider emails and admin emails live in separate tables; a
// single UNION query keeps resolution one round trip and one code path.
type IdentityRepo struct{ DB *sql.DB }

func NewIdentityRepo(db *sql.DB) *IdentityRepo { return &IdentityRepo{DB: db} }

// ResolveByEmail returns the principal registered under the given email.
// Riders take precedence on the (unexpected) event the same address
// exists in both tables.  sql.ErrNoRows is returned when neither table
// has the email.
func (r *IdentityRepo) ResolveByEmail(ctx context.Context, email string) (Identity, error) {
    email = strings.ToLower(strings.TrimSpace(email))
    const q = `SELECT 'rider' AS kind, id, name, email, password_hash, 'rider' AS role, is_active
               FROM users WHERE email = ?
               UNION ALL
               SELECT 'admin' AS kind, id, name, email, password_hash, role, is_active
               FROM admins WHERE email = ?
               LIMIT 1`
    var ident Identity
    var role string
    err := r.DB.QueryRowContext(ctx, q, email, email).Scan(
        &ident.Kind, &ident.ID, &ident.Name, &ident.Email,
        &ident.PasswordHash, &role, &ident.IsActive)
    if err != nil {
        return Identity{}, err
    }
    ident.Role = model.Role(role)
    return ident, nil
}

// Resolve returns the principal for a (kind, id) pair, used when a
// refresh token is exchanged and the stored principal must be reloaded.
func (r *IdentityRepo) Resolve(ctx context.Context, kind string, id uint64) (Identity, error) {
    var q string
    switch kind {
    case KindRider:
        q = `SELECT 'rider', id, name, email, password_hash, 'rider', is_active FROM users WHERE id = ?`
    case KindAdmin:
        q = `SELECT 'admin', id, name, email, password_hash, role, is_active FROM admins WHERE id = ?`
    default:
        return Identity{}, sql.ErrNoRows
    }
    var ident Identity
    var role string
    err := r.DB.QueryRowContext(ctx, q, id).Scan(
        &ident.Kind, &ident.ID, &ident.Name, &ident.Email,
        &ident.PasswordHash, &role, &ident.IsActive)
    if err != nil {
        return Identity{}, err
    }
    ident.Role = model.Role(role)
    return ident, nil
}
