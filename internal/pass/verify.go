package pass

import (
    "context"
    "strings"
    "time"

    "github.com/iliyamo/bus-pass-system/internal/model"
)

// Result is the public-facing outcome of a successful verification.  It
// carries the owner's display snapshot and the pass window but never the
// token or any internal linkage beyond what a scanner screen shows.
type Result struct {
    PassID      uint64     `json:"pass_id"`
    OwnerID     uint64     `json:"owner_id"`
    OwnerName   string     `json:"owner_name"`
    OwnerEmail  string     `json:"owner_email"`
    OwnerPhone  string     `json:"owner_phone"`
    Tier        string     `json:"tier"`
    ValidFrom   *time.Time `json:"valid_from"`
    ValidTill   *time.Time `json:"valid_till"`
    Status      string     `json:"status"`
    Source      string     `json:"source"`
    Destination string     `json:"destination"`
}

// Verifier resolves a presented credential to a pass record and applies
// the validity rules.  This is a read path with one possible write side
// effect: an overdue active pass is transitioned to expired on the spot
// rather than by a background sweep.
type Verifier struct {
    repo   Repository
    codec  *Codec
    owners OwnerDirectory
    now    func() time.Time
}

// NewVerifier returns a verifier over the given collaborators.
func NewVerifier(repo Repository, codec *Codec, owners OwnerDirectory) *Verifier {
    return &Verifier{repo: repo, codec: codec, owners: owners, now: time.Now}
}

// Verify accepts exactly one of token or code and returns the pass's
// public fields, or a typed failure:
//
//   ErrAmbiguousInput    – both or neither credential supplied
//   ErrInvalidCredential – token signature or payload invalid
//   ErrMalformedCode     – code is not 16 hex characters
//   ErrNotFound          – no pass matches the credential
//   *NotActiveError      – pass exists but is pending/rejected/expired
//   ErrExpired           – pass was active but past valid_till; it has
//                          been moved to expired as a side effect
//
// Lookups by token use only the signed pass id, never any user-facing
// data embedded in the token.  The token's own expiry claim is advisory
// and is not checked; the stored record is authoritative.
func (v *Verifier) Verify(ctx context.Context, token, code string) (*Result, error) {
    token = strings.TrimSpace(token)
    code = strings.TrimSpace(code)
    if (token == "") == (code == "") {
        return nil, ErrAmbiguousInput
    }

    var p *model.Pass
    var err error
    switch {
    case token != "":
        claims, cerr := v.codec.VerifyToken(token)
        if cerr != nil {
            return nil, ErrInvalidCredential
        }
        p, err = v.repo.GetByID(ctx, claims.PassID)
    default:
        if !WellFormedShortCode(code) {
            return nil, ErrMalformedCode
        }
        p, err = v.repo.GetByShortCode(ctx, strings.ToUpper(code))
    }
    if err != nil {
        return nil, err
    }

    if p.Status != model.PassActive {
        return nil, &NotActiveError{Status: p.Status}
    }
    if p.ValidTill != nil && v.now().UTC().After(*p.ValidTill) {
        // Lazy expiry: flip the record, then report.  The update is
        // conditional on the pass still being active, so two racing
        // verifications both observe the same terminal state and the
        // loser's no-op write is harmless.
        if _, err := v.repo.UpdateStatusIf(ctx, p.ID, model.PassActive, model.PassExpired); err != nil {
            return nil, err
        }
        return nil, ErrExpired
    }

    owner, err := v.owners.OwnerSnapshot(ctx, p.OwnerID)
    if err != nil {
        return nil, err
    }
    return &Result{
        PassID:      p.ID,
        OwnerID:     owner.ID,
        OwnerName:   owner.Name,
        OwnerEmail:  owner.Email,
        OwnerPhone:  owner.Phone,
        Tier:        p.Tier,
        ValidFrom:   p.ValidFrom,
        ValidTill:   p.ValidTill,
        Status:      string(p.Status),
        Source:      p.Source,
        Destination: p.Destination,
    }, nil
}
