package pass

import (
    "context"
    "errors"
    "time"

    "github.com/iliyamo/bus-pass-system/internal/model"
)

// ErrDuplicateShortCode is returned by Repository.Activate when the minted
// short code collides with an existing one.  The engine regenerates and
// retries; a collision is astronomically unlikely at 64 bits of entropy
// but must never be silently absorbed.
var ErrDuplicateShortCode = errors.New("short code already in use")

// Repository is the persistence contract the lifecycle engine and the
// verifier depend on.  Every transition is a single conditional update
// ("apply only if the current status matches the precondition") so that
// concurrent racers lose cleanly instead of corrupting state.
// Implementations return ErrNotFound when no pass matches.
type Repository interface {
    // Create persists a new pending pass and populates p.ID and timestamps.
    Create(ctx context.Context, p *model.Pass) error

    // GetByID returns the pass with the given id.
    GetByID(ctx context.Context, id uint64) (*model.Pass, error)

    // GetByShortCode returns the pass carrying the given short code.
    GetByShortCode(ctx context.Context, code string) (*model.Pass, error)

    // Activate writes the validity window, token and short code and moves
    // the pass to active, only if it is still pending.  Returns
    // (false, nil) when the pass exists but is no longer pending, and
    // ErrDuplicateShortCode when the code collides.
    Activate(ctx context.Context, id uint64, validFrom, validTill time.Time, token, shortCode string) (bool, error)

    // UpdateStatusIf moves the pass from one status to another, only if it
    // currently holds the expected status.  Returns (false, nil) when the
    // precondition did not hold.  Setting expired on an already expired
    // pass is therefore a no-op, which keeps the lazy expiry transition
    // idempotent under concurrent verification.
    UpdateStatusIf(ctx context.Context, id uint64, from, to model.PassStatus) (bool, error)
}

// OwnerSnapshot is the public-facing identity of a pass owner returned by
// verification.  It deliberately excludes anything beyond display fields.
type OwnerSnapshot struct {
    ID    uint64
    Name  string
    Email string
    Phone string
}

// OwnerDirectory resolves a pass owner to their display snapshot.  Backed
// by the rider repository in production.
type OwnerDirectory interface {
    OwnerSnapshot(ctx context.Context, ownerID uint64) (OwnerSnapshot, error)
}
