package repository

import (
    "context"
    "database/sql"
    "strings"
    "time"

    "github.com/iliyamo/bus-pass-system/internal/model"
    "github.com/iliyamo/bus-pass-system/internal/pass"
)

// PassRepo persists pass records in the `passes` table.  It implements
// pass.Repository for the lifecycle engine and the verifier, plus the
// listing queries the handlers need.  All timestamps are stored in UTC.
type PassRepo struct {
    db *sql.DB
}

// NewPassRepo returns a new PassRepo bound to the given database.
func NewPassRepo(db *sql.DB) *PassRepo { return &PassRepo{db: db} }

const passColumns = `id, owner_id, tier, price, status, valid_from, valid_till, token, short_code, source, destination, created_at, updated_at`

// Create inserts a new pending pass and reads the row back to populate
// the generated id and timestamps.
func (r *PassRepo) Create(ctx context.Context, p *model.Pass) error {
    const q = `INSERT INTO passes (owner_id, tier, price, status, source, destination) VALUES (?, ?, ?, ?, ?, ?)`
    res, err := r.db.ExecContext(ctx, q, p.OwnerID, p.Tier, p.Price, p.Status, p.Source, p.Destination)
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    p.ID = uint64(id)
    got, err := r.GetByID(ctx, p.ID)
    if err != nil {
        return err
    }
    *p = *got
    return nil
}

// GetByID returns the pass with the given id, or pass.ErrNotFound.
func (r *PassRepo) GetByID(ctx context.Context, id uint64) (*model.Pass, error) {
    const q = `SELECT ` + passColumns + ` FROM passes WHERE id = ?`
    return r.scanOne(r.db.QueryRowContext(ctx, q, id))
}

// GetByShortCode returns the pass carrying the given short code, or
// pass.ErrNotFound.
func (r *PassRepo) GetByShortCode(ctx context.Context, code string) (*model.Pass, error) {
    const q = `SELECT ` + passColumns + ` FROM passes WHERE short_code = ?`
    return r.scanOne(r.db.QueryRowContext(ctx, q, code))
}

// GetByIDForOwner returns the pass only when it belongs to the given
// rider.  Returns pass.ErrNotFound when the id does not exist and
// ErrForbidden when it exists under a different owner.
func (r *PassRepo) GetByIDForOwner(ctx context.Context, id, ownerID uint64) (*model.Pass, error) {
    p, err := r.GetByID(ctx, id)
    if err != nil {
        return nil, err
    }
    if p.OwnerID != ownerID {
        return nil, ErrForbidden
    }
    return p, nil
}

// Activate writes the validity window and both credentials and moves the
// pass from pending to active in a single conditional update.  A
// duplicate short code surfaces as pass.ErrDuplicateShortCode so the
// engine can regenerate; a pass that is no longer pending yields
// (false, nil).
func (r *PassRepo) Activate(ctx context.Context, id uint64, validFrom, validTill time.Time, token, shortCode string) (bool, error) {
    const q = `UPDATE passes
               SET status = ?, valid_from = ?, valid_till = ?, token = ?, short_code = ?
               WHERE id = ? AND status = ?`
    res, err := r.db.ExecContext(ctx, q, model.PassActive, validFrom, validTill, token, shortCode, id, model.PassPending)
    if err != nil {
        // MySQL duplicate key on the short_code unique index
        if strings.Contains(strings.ToLower(err.Error()), "1062") {
            return false, pass.ErrDuplicateShortCode
        }
        return false, err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return false, err
    }
    return n > 0, nil
}

// UpdateStatusIf moves the pass from one status to another only when the
// precondition holds.  Losing racers get (false, nil).
func (r *PassRepo) UpdateStatusIf(ctx context.Context, id uint64, from, to model.PassStatus) (bool, error) {
    const q = `UPDATE passes SET status = ? WHERE id = ? AND status = ?`
    res, err := r.db.ExecContext(ctx, q, to, id, from)
    if err != nil {
        return false, err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return false, err
    }
    return n > 0, nil
}

// ListByOwner returns all of a rider's passes, newest first.
func (r *PassRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]model.Pass, error) {
    const q = `SELECT ` + passColumns + ` FROM passes WHERE owner_id = ? ORDER BY created_at DESC`
    rows, err := r.db.QueryContext(ctx, q, ownerID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    return r.scanAll(rows)
}

// CountNonTerminal returns how many pending or active passes the rider
// currently holds.  The one-open-pass-per-rider rule is enforced at the
// handler layer with this count; the engine itself stays per-record.
func (r *PassRepo) CountNonTerminal(ctx context.Context, ownerID uint64) (int, error) {
    const q = `SELECT COUNT(*) FROM passes WHERE owner_id = ? AND status IN (?, ?)`
    var n int
    err := r.db.QueryRowContext(ctx, q, ownerID, model.PassPending, model.PassActive).Scan(&n)
    return n, err
}

// PassWithOwner joins a pass with its owner's display fields for the
// admin listing.
type PassWithOwner struct {
    Pass       model.Pass
    OwnerName  string
    OwnerEmail string
    OwnerPhone string
    OwnerAge   uint8
}

// ListWithOwner returns passes joined with their owner snapshot, newest
// first.  When status is non-empty the listing is filtered to that
// lifecycle state.
func (r *PassRepo) ListWithOwner(ctx context.Context, status string) ([]PassWithOwner, error) {
    q := `SELECT p.id, p.owner_id, p.tier, p.price, p.status, p.valid_from, p.valid_till,
                 p.token, p.short_code, p.source, p.destination, p.created_at, p.updated_at,
                 u.name, u.email, u.phone, u.age
          FROM passes p
          JOIN users u ON u.id = p.owner_id`
    args := []interface{}{}
    if status != "" {
        q += ` WHERE p.status = ?`
        args = append(args, status)
    }
    q += ` ORDER BY p.created_at DESC`
    rows, err := r.db.QueryContext(ctx, q, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]PassWithOwner, 0)
    for rows.Next() {
        var (
            item      PassWithOwner
            validFrom sql.NullTime
            validTill sql.NullTime
            token     sql.NullString
            shortCode sql.NullString
        )
        if err := rows.Scan(
            &item.Pass.ID, &item.Pass.OwnerID, &item.Pass.Tier, &item.Pass.Price, &item.Pass.Status,
            &validFrom, &validTill, &token, &shortCode,
            &item.Pass.Source, &item.Pass.Destination, &item.Pass.CreatedAt, &item.Pass.UpdatedAt,
            &item.OwnerName, &item.OwnerEmail, &item.OwnerPhone, &item.OwnerAge,
        ); err != nil {
            return nil, err
        }
        applyNullable(&item.Pass, validFrom, validTill, token, shortCode)
        out = append(out, item)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return out, nil
}

func (r *PassRepo) scanOne(row *sql.Row) (*model.Pass, error) {
    var (
        p         model.Pass
        validFrom sql.NullTime
        validTill sql.NullTime
        token     sql.NullString
        shortCode sql.NullString
    )
    err := row.Scan(
        &p.ID, &p.OwnerID, &p.Tier, &p.Price, &p.Status,
        &validFrom, &validTill, &token, &shortCode,
        &p.Source, &p.Destination, &p.CreatedAt, &p.UpdatedAt,
    )
    if err == sql.ErrNoRows {
        return nil, pass.ErrNotFound
    }
    if err != nil {
        return nil, err
    }
    applyNullable(&p, validFrom, validTill, token, shortCode)
    return &p, nil
}

func (r *PassRepo) scanAll(rows *sql.Rows) ([]model.Pass, error) {
    out := make([]model.Pass, 0)
    for rows.Next() {
        var (
            p         model.Pass
            validFrom sql.NullTime
            validTill sql.NullTime
            token     sql.NullString
            shortCode sql.NullString
        )
        if err := rows.Scan(
            &p.ID, &p.OwnerID, &p.Tier, &p.Price, &p.Status,
            &validFrom, &validTill, &token, &shortCode,
            &p.Source, &p.Destination, &p.CreatedAt, &p.UpdatedAt,
        ); err != nil {
            return nil, err
        }
        applyNullable(&p, validFrom, validTill, token, shortCode)
        out = append(out, p)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return out, nil
}

func applyNullable(p *model.Pass, validFrom, validTill sql.NullTime, token, shortCode sql.NullString) {
    if validFrom.Valid {
        t := validFrom.Time.UTC()
        p.ValidFrom = &t
    }
    if validTill.Valid {
        t := validTill.Time.UTC()
        p.ValidTill = &t
    }
    if token.Valid {
        s := token.String
        p.Token = &s
    }
    if shortCode.Valid {
        s := shortCode.String
        p.ShortCode = &s
    }
}
