package catalog

import (
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestLookupKnownTiers(t *testing.T) {
    cases := []struct {
        tier     string
        price    uint32
        duration int
    }{
        {TierMonthly, 500, 30},
        {TierQuarterly, 1200, 90},
        {TierHalfYearly, 2000, 180},
        {TierYearly, 3500, 365},
    }
    for _, tc := range cases {
        fare, err := Lookup(tc.tier)
        require.NoError(t, err, tc.tier)
        assert.Equal(t, tc.price, fare.Price, tc.tier)
        assert.Equal(t, tc.duration, fare.DurationDays, tc.tier)
    }
}

func TestLookupUnknownTier(t *testing.T) {
    _, err := Lookup("weekly")
    assert.ErrorIs(t, err, ErrUnknownTier)

    // Tier names are exact; no case folding.
    _, err = Lookup("Monthly")
    assert.ErrorIs(t, err, ErrUnknownTier)
}

func TestTiersCoversCatalog(t *testing.T) {
    tiers := Tiers()
    require.Len(t, tiers, 4)
    for _, tier := range tiers {
        _, err := Lookup(tier)
        assert.NoError(t, err, tier)
    }
}
