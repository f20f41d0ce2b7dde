package repository

import (
    "context"
    "database/sql"
    "strings"

    "github.com/iliyamo/bus-pass-system/internal/model"
    "github.com/iliyamo/bus-pass-system/internal/utils"
)

// AdminRepo provides CRUD over administrator accounts in the `admins`
// table.  Only superadmins may reach the mutating operations; that is
// enforced by middleware, not here.
type AdminRepo struct{ DB *sql.DB }

func NewAdminRepo(db *sql.DB) *AdminRepo { return &AdminRepo{DB: db} }

const adminColumns = `id, name, email, password_hash, role, is_active, created_at, updated_at`

// Create inserts an admin and returns its ID.
func (r *AdminRepo) Create(ctx context.Context, name, email, password string, role model.Role, cost int) (uint64, error) {
    email = strings.ToLower(strings.TrimSpace(email))
    hash, err := utils.HashPassword(password, cost)
    if err != nil {
        return 0, err
    }
    res, err := r.DB.ExecContext(ctx,
        "INSERT INTO admins (name, email, password_hash, role) VALUES (?,?,?,?)",
        name, email, hash, role)
    if err != nil {
        if strings.Contains(strings.ToLower(err.Error()), "1062") {
            return 0, ErrEmailExists
        }
        return 0, err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return 0, err
    }
    return uint64(id), nil
}

// GetByEmail fetches an admin by normalized email.
func (r *AdminRepo) GetByEmail(ctx context.Context, email string) (model.Admin, error) {
    email = strings.ToLower(strings.TrimSpace(email))
    return r.scan(r.DB.QueryRowContext(ctx,
        "SELECT "+adminColumns+" FROM admins WHERE email=? LIMIT 1", email))
}

// GetByID fetches an admin by id.
func (r *AdminRepo) GetByID(ctx context.Context, id uint64) (model.Admin, error) {
    return r.scan(r.DB.QueryRowContext(ctx,
        "SELECT "+adminColumns+" FROM admins WHERE id=? LIMIT 1", id))
}

// List returns all admins ordered by creation time descending.
func (r *AdminRepo) List(ctx context.Context) ([]model.Admin, error) {
    rows, err := r.DB.QueryContext(ctx,
        "SELECT "+adminColumns+" FROM admins ORDER BY created_at DESC")
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]model.Admin, 0)
    for rows.Next() {
        var a model.Admin
        if err := rows.Scan(&a.ID, &a.Name, &a.Email, &a.PasswordHash,
            &a.Role, &a.IsActive, &a.CreatedAt, &a.UpdatedAt); err != nil {
            return nil, err
        }
        out = append(out, a)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return out, nil
}

// Update writes the mutable fields (name, email, role, is_active).
func (r *AdminRepo) Update(ctx context.Context, a model.Admin) error {
    _, err := r.DB.ExecContext(ctx,
        "UPDATE admins SET name=?, email=?, role=?, is_active=? WHERE id=?",
        a.Name, strings.ToLower(strings.TrimSpace(a.Email)), a.Role, a.IsActive, a.ID)
    if err != nil && strings.Contains(strings.ToLower(err.Error()), "1062") {
        return ErrEmailExists
    }
    return err
}

// ToggleActive flips is_active and returns the new value.
func (r *AdminRepo) ToggleActive(ctx context.Context, id uint64) (bool, error) {
    if _, err := r.DB.ExecContext(ctx,
        "UPDATE admins SET is_active = NOT is_active WHERE id=?", id); err != nil {
        return false, err
    }
    var active bool
    err := r.DB.QueryRowContext(ctx, "SELECT is_active FROM admins WHERE id=?", id).Scan(&active)
    return active, err
}

// Delete removes an admin account.
func (r *AdminRepo) Delete(ctx context.Context, id uint64) error {
    res, err := r.DB.ExecContext(ctx, "DELETE FROM admins WHERE id=?", id)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        return sql.ErrNoRows
    }
    return nil
}

func (r *AdminRepo) scan(row *sql.Row) (model.Admin, error) {
    var a model.Admin
    err := row.Scan(&a.ID, &a.Name, &a.Email, &a.PasswordHash,
        &a.Role, &a.IsActive, &a.CreatedAt, &a.UpdatedAt)
    return a, err
}
