package repository

import (
    "context"
    "database/sql"
    "errors"
    "strings"

    "github.com/iliyamo/bus-pass-system/internal/model"
    "github.com/iliyamo/bus-pass-system/internal/pass"
    "github.com/iliyamo/bus-pass-system/internal/utils"
)

// UserRepo provides CRUD over rider accounts in the `users` table.  It
// also implements pass.OwnerDirectory so the verifier can resolve a pass
// owner's display snapshot.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

var ErrEmailExists = errors.New("email already exists")

const userColumns = `id, name, email, phone, age, password_hash, is_active, created_at, updated_at`

// Create inserts a rider and returns its ID.
func (r *UserRepo) Create(ctx context.Context, name, email, phone string, age uint8, password string, cost int) (uint64, error) {
    email = strings.ToLower(strings.TrimSpace(email))
    hash, err := utils.HashPassword(password, cost)
    if err != nil {
        return 0, err
    }
    res, err := r.DB.ExecContext(ctx,
        "INSERT INTO users (name, email, phone, age, password_hash) VALUES (?,?,?,?,?)",
        name, email, phone, age, hash)
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

// GetByEmail fetches a rider by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
    email = strings.ToLower(strings.TrimSpace(email))
    return r.scan(r.DB.QueryRowContext(ctx,
        "SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email))
}

// GetByID fetches a rider by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
    return r.scan(r.DB.QueryRowContext(ctx,
        "SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}

// List returns all riders ordered by creation time descending.
func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
    rows, err := r.DB.QueryContext(ctx,
        "SELECT "+userColumns+" FROM users ORDER BY created_at DESC")
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]model.User, 0)
    for rows.Next() {
        var u model.User
        if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.Age,
            &u.PasswordHash, &u.IsActive, &u.CreatedAt, &u.UpdatedAt); err != nil {
            return nil, err
        }
        out = append(out, u)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return out, nil
}

// Update writes the mutable profile fields.  The email uniqueness
// constraint surfaces as ErrEmailExists.
func (r *UserRepo) Update(ctx context.Context, u model.User) error {
    _, err := r.DB.ExecContext(ctx,
        "UPDATE users SET name=?, email=?, phone=?, age=?, is_active=? WHERE id=?",
        u.Name, strings.ToLower(strings.TrimSpace(u.Email)), u.Phone, u.Age, u.IsActive, u.ID)
    if err != nil && strings.Contains(strings.ToLower(err.Error()), "1062") {
        return ErrEmailExists
    }
    return err
}

// UpdatePassword replaces the stored bcrypt hash.
func (r *UserRepo) UpdatePassword(ctx context.Context, id uint64, password string, cost int) error {
    hash, err := utils.HashPassword(password, cost)
    if err != nil {
        return err
    }
    _, err = r.DB.ExecContext(ctx, "UPDATE users SET password_hash=? WHERE id=?", hash, id)
    return err
}

// ToggleActive flips is_active and returns the new value.
func (r *UserRepo) ToggleActive(ctx context.Context, id uint64) (bool, error) {
    if _, err := r.DB.ExecContext(ctx,
        "UPDATE users SET is_active = NOT is_active WHERE id=?", id); err != nil {
        return false, err
    }
    var active bool
    err := r.DB.QueryRowContext(ctx, "SELECT is_active FROM users WHERE id=?", id).Scan(&active)
    return active, err
}

// Delete removes a rider.  A rider still holding a pending or active pass
// cannot be deleted; ErrConflict is returned instead so the handler can
// explain the dependency.
func (r *UserRepo) Delete(ctx context.Context, id uint64) error {
    var open int
    err := r.DB.QueryRowContext(ctx,
        "SELECT COUNT(*) FROM passes WHERE owner_id=? AND status IN (?, ?)",
        id, model.PassPending, model.PassActive).Scan(&open)
    if err != nil {
        return err
    }
    if open > 0 {
        return ErrConflict
    }
    res, err := r.DB.ExecContext(ctx, "DELETE FROM users WHERE id=?", id)
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

// OwnerSnapshot implements pass.OwnerDirectory for the verifier.
func (r *UserRepo) OwnerSnapshot(ctx context.Context, ownerID uint64) (pass.OwnerSnapshot, error) {
    u, err := r.GetByID(ctx, ownerID)
    if err != nil {
        return pass.OwnerSnapshot{}, err
    }
    return pass.OwnerSnapshot{ID: u.ID, Name: u.Name, Email: u.Email, Phone: u.Phone}, nil
}

func (r *UserRepo) scan(row *sql.Row) (model.User, error) {
    var u model.User
    err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.Age,
        &u.PasswordHash, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
    return u, err
}
