package pass

import (
    "context"
    "strings"
    "time"

    "github.com/iliyamo/bus-pass-system/internal/catalog"
    "github.com/iliyamo/bus-pass-system/internal/model"
)

// shortCodeAttempts bounds the regenerate-and-retry loop on a short code
// collision.  One retry should never happen in practice; exhausting the
// budget means the generator is broken and the error must surface.
const shortCodeAttempts = 5

// Engine enforces the pass state machine and its transition side effects.
// Approval and rejection share the same precondition (pending only) so a
// pass can never be approved twice — which would silently reissue
// credentials — or rejected after activation.
type Engine struct {
    repo  Repository
    codec *Codec
    now   func() time.Time
}

// NewEngine returns an engine over the given repository and codec.
func NewEngine(repo Repository, codec *Codec) *Engine {
    return &Engine{repo: repo, codec: codec, now: time.Now}
}

// Create validates the request and persists a new pending pass with the
// catalog price stamped.  No credentials and no validity window yet.
func (e *Engine) Create(ctx context.Context, ownerID uint64, tier, source, destination string) (*model.Pass, error) {
    fare, err := catalog.Lookup(tier)
    if err != nil {
        return nil, ErrInvalidTier
    }
    source = strings.TrimSpace(source)
    destination = strings.TrimSpace(destination)
    if source == "" || destination == "" || strings.EqualFold(source, destination) {
        return nil, ErrMissingRoute
    }
    p := &model.Pass{
        OwnerID:     ownerID,
        Tier:        tier,
        Price:       fare.Price,
        Status:      model.PassPending,
        Source:      source,
        Destination: destination,
    }
    if err := e.repo.Create(ctx, p); err != nil {
        return nil, err
    }
    return p, nil
}

// Approve transitions a pending pass to active: it computes the validity
// window from the tier's duration, mints the token and short code bound
// to (passID, ownerID, validTill), and persists everything in one
// conditional update.  A short code collision against the unique index is
// regenerated and retried.  Fails with ErrNotFound when the pass does not
// exist and with *InvalidStateError when it is no longer pending.
func (e *Engine) Approve(ctx context.Context, id uint64) (*model.Pass, error) {
    p, err := e.repo.GetByID(ctx, id)
    if err != nil {
        return nil, err
    }
    if p.Status != model.PassPending {
        return nil, &InvalidStateError{Current: p.Status}
    }
    fare, err := catalog.Lookup(p.Tier)
    if err != nil {
        // Tier was validated at creation; an unknown tier here means the
        // record is corrupt and must not be activated.
        return nil, err
    }
    validFrom := e.now().UTC()
    validTill := validFrom.Add(time.Duration(fare.DurationDays) * 24 * time.Hour)

    for attempt := 0; attempt < shortCodeAttempts; attempt++ {
        creds, err := e.codec.Mint(p.ID, p.OwnerID, validTill)
        if err != nil {
            return nil, err
        }
        applied, err := e.repo.Activate(ctx, p.ID, validFrom, validTill, creds.Token, creds.ShortCode)
        if err == ErrDuplicateShortCode {
            continue
        }
        if err != nil {
            return nil, err
        }
        if !applied {
            // Lost a race against a concurrent approve/reject; report the
            // state the winner left behind.
            return e.staleState(ctx, p.ID)
        }
        return e.repo.GetByID(ctx, p.ID)
    }
    return nil, ErrDuplicateShortCode
}

// Reject transitions a pending pass to rejected (terminal, no
// credentials).  Same preconditions and failure modes as Approve;
// re-rejecting an already rejected pass fails with *InvalidStateError
// carrying the current status so callers can render "already rejected".
func (e *Engine) Reject(ctx context.Context, id uint64) (*model.Pass, error) {
    p, err := e.repo.GetByID(ctx, id)
    if err != nil {
        return nil, err
    }
    if p.Status != model.PassPending {
        return nil, &InvalidStateError{Current: p.Status}
    }
    applied, err := e.repo.UpdateStatusIf(ctx, p.ID, model.PassPending, model.PassRejected)
    if err != nil {
        return nil, err
    }
    if !applied {
        return e.staleState(ctx, p.ID)
    }
    return e.repo.GetByID(ctx, p.ID)
}

// staleState re-reads a pass after a lost conditional update and wraps
// its current status in an InvalidStateError.
func (e *Engine) staleState(ctx context.Context, id uint64) (*model.Pass, error) {
    cur, err := e.repo.GetByID(ctx, id)
    if err != nil {
        return nil, err
    }
    return nil, &InvalidStateError{Current: cur.Status}
}
