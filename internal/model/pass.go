package model

import "time"

// PassStatus enumerates the lifecycle states of a bus pass.  A pass is
// created as pending, moves to active or rejected by an admin decision,
// and an active pass becomes expired once its validity window lapses.
// Rejected and expired are terminal.
type PassStatus string

const (
    PassPending  PassStatus = "pending"
    PassActive   PassStatus = "active"
    PassRejected PassStatus = "rejected"
    PassExpired  PassStatus = "expired"
)

// ValidPassStatus reports whether s is one of the recognized lifecycle
// states.  Used when filtering pass listings by a caller-supplied status.
func ValidPassStatus(s string) bool {
    switch PassStatus(s) {
    case PassPending, PassActive, PassRejected, PassExpired:
        return true
    }
    return false
}

// Pass represents a row in the `passes` table.  A pass is a rider's
// entitlement to travel between two stops for the duration of its tier.
// Credentials (Token, ShortCode) and the validity window are populated
// only when the pass is approved; they persist through expiry.
//
// Fields:
//  ID          – primary key identifier.
//  OwnerID     – rider who requested the pass; immutable.
//  Tier        – pass tier name (monthly, quarterly, half-yearly, yearly).
//  Price       – price stamped from the fare catalog at creation time.
//  Status      – lifecycle state, see PassStatus.
//  ValidFrom   – start of the validity window (null until approved).
//  ValidTill   – end of the validity window (null until approved).
//  Token       – signed credential string (null until approved).
//  ShortCode   – 16 hex character fallback credential (null until approved, unique).
//  Source      – boarding stop, immutable.
//  Destination – alighting stop, immutable.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Pass struct {
    ID          uint64     // passes.id
    OwnerID     uint64     // passes.owner_id
    Tier        string     // passes.tier
    Price       uint32     // passes.price
    Status      PassStatus // passes.status
    ValidFrom   *time.Time // passes.valid_from (nullable)
    ValidTill   *time.Time // passes.valid_till (nullable)
    Token       *string    // passes.token (nullable)
    ShortCode   *string    // passes.short_code (nullable, unique)
    Source      string     // passes.source
    Destination string     // passes.destination
    CreatedAt   time.Time  // passes.created_at
    UpdatedAt   time.Time  // passes.updated_at
}

// Terminal reports whether the pass can never transition again.
func (p *Pass) Terminal() bool {
    return p.Status == PassRejected || p.Status == PassExpired
}
