// Package catalog holds the static fare table.  Each pass tier maps to a
// fixed price and a validity duration in days.  The table is consulted at
// pass creation (to stamp the price) and at approval (to compute the
// validity window); it never changes at runtime and performs no I/O.
package catalog

import "errors"

// ErrUnknownTier is returned when a tier name is not one of the four
// recognized values.
var ErrUnknownTier = errors.New("unknown pass tier")

// Tier names recognized by the catalog.
const (
    TierMonthly    = "monthly"
    TierQuarterly  = "quarterly"
    TierHalfYearly = "half-yearly"
    TierYearly     = "yearly"
)

// Fare describes what a tier buys: the price charged and how many days
// the pass stays valid after approval.
type Fare struct {
    Price        uint32
    DurationDays int
}

var fares = map[string]Fare{
    TierMonthly:    {Price: 500, DurationDays: 30},
    TierQuarterly:  {Price: 1200, DurationDays: 90},
    TierHalfYearly: {Price: 2000, DurationDays: 180},
    TierYearly:     {Price: 3500, DurationDays: 365},
}

// Lookup returns the fare for the given tier, or ErrUnknownTier when the
// tier is not in the table.
func Lookup(tier string) (Fare, error) {
    f, ok := fares[tier]
    if !ok {
        return Fare{}, ErrUnknownTier
    }
    return f, nil
}

// Tiers returns the recognized tier names in a stable order, for
// presenting the catalog to clients.
func Tiers() []string {
    return []string{TierMonthly, TierQuarterly, TierHalfYearly, TierYearly}
}
