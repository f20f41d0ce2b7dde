package pass

import (
    "context"
    "strings"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/bus-pass-system/internal/catalog"
    "github.com/iliyamo/bus-pass-system/internal/model"
)

type memOwners map[uint64]OwnerSnapshot

func (m memOwners) OwnerSnapshot(_ context.Context, ownerID uint64) (OwnerSnapshot, error) {
    o, ok := m[ownerID]
    if !ok {
        return OwnerSnapshot{}, ErrNotFound
    }
    return o, nil
}

// activePass builds an approved monthly pass for owner 9 and returns the
// collaborators plus the minted credentials.
func activePass(t *testing.T) (*memRepo, *Codec, *Verifier, *model.Pass) {
    t.Helper()
    repo := newMemRepo()
    codec := NewCodec("verify-test-secret")
    e := NewEngine(repo, codec)

    created, err := e.Create(context.Background(), 9, catalog.TierMonthly, "Central", "Airport")
    require.NoError(t, err)
    p, err := e.Approve(context.Background(), created.ID)
    require.NoError(t, err)

    owners := memOwners{9: {ID: 9, Name: "Asha Rao", Email: "asha@example.com", Phone: "9000000001"}}
    v := NewVerifier(repo, codec, owners)
    return repo, codec, v, p
}

func TestVerifyRequiresExactlyOneCredential(t *testing.T) {
    _, _, v, p := activePass(t)
    ctx := context.Background()

    _, err := v.Verify(ctx, "", "")
    assert.ErrorIs(t, err, ErrAmbiguousInput)

    _, err = v.Verify(ctx, *p.Token, *p.ShortCode)
    assert.ErrorIs(t, err, ErrAmbiguousInput)

    // Whitespace-only input counts as absent.
    _, err = v.Verify(ctx, "   ", "  ")
    assert.ErrorIs(t, err, ErrAmbiguousInput)
}

func TestVerifyByToken(t *testing.T) {
    _, _, v, p := activePass(t)

    res, err := v.Verify(context.Background(), *p.Token, "")
    require.NoError(t, err)

    assert.Equal(t, p.ID, res.PassID)
    assert.Equal(t, uint64(9), res.OwnerID)
    assert.Equal(t, "Asha Rao", res.OwnerName)
    assert.Equal(t, "asha@example.com", res.OwnerEmail)
    assert.Equal(t, "9000000001", res.OwnerPhone)
    assert.Equal(t, catalog.TierMonthly, res.Tier)
    assert.Equal(t, string(model.PassActive), res.Status)
    assert.Equal(t, "Central", res.Source)
    assert.Equal(t, "Airport", res.Destination)
    require.NotNil(t, res.ValidTill)
    assert.Equal(t, p.ValidTill.Unix(), res.ValidTill.Unix())
}

func TestVerifyByShortCode(t *testing.T) {
    _, _, v, p := activePass(t)

    res, err := v.Verify(context.Background(), "", *p.ShortCode)
    require.NoError(t, err)
    assert.Equal(t, p.ID, res.PassID)

    // Lower case input normalizes to the stored upper case code.
    res, err = v.Verify(context.Background(), "", strings.ToLower(*p.ShortCode))
    require.NoError(t, err)
    assert.Equal(t, p.ID, res.PassID)
}

func TestVerifyRejectsForgedToken(t *testing.T) {
    _, _, v, p := activePass(t)

    forged := NewCodec("some-other-secret")
    creds, err := forged.Mint(p.ID, p.OwnerID, *p.ValidTill)
    require.NoError(t, err)

    _, err = v.Verify(context.Background(), creds.Token, "")
    assert.ErrorIs(t, err, ErrInvalidCredential)
}

func TestVerifyRejectsMalformedShortCode(t *testing.T) {
    _, _, v, _ := activePass(t)

    _, err := v.Verify(context.Background(), "", "not-a-code")
    assert.ErrorIs(t, err, ErrMalformedCode)
}

func TestVerifyUnknownShortCode(t *testing.T) {
    _, _, v, p := activePass(t)

    unknown := "0123456789ABCDEF"
    if unknown == *p.ShortCode {
        unknown = "FEDCBA9876543210"
    }
    _, err := v.Verify(context.Background(), "", unknown)
    assert.ErrorIs(t, err, ErrNotFound)
}

func TestVerifyTokenForMissingPass(t *testing.T) {
    repo := newMemRepo()
    codec := NewCodec("verify-test-secret")
    v := NewVerifier(repo, codec, memOwners{})

    creds, err := codec.Mint(777, 9, time.Now().Add(time.Hour))
    require.NoError(t, err)

    _, err = v.Verify(context.Background(), creds.Token, "")
    assert.ErrorIs(t, err, ErrNotFound)
}

func TestVerifyPendingPass(t *testing.T) {
    repo := newMemRepo()
    codec := NewCodec("verify-test-secret")
    e := NewEngine(repo, codec)
    created, err := e.Create(context.Background(), 9, catalog.TierMonthly, "Central", "Airport")
    require.NoError(t, err)

    v := NewVerifier(repo, codec, memOwners{})
    creds, err := codec.Mint(created.ID, 9, time.Now().Add(time.Hour))
    require.NoError(t, err)

    _, err = v.Verify(context.Background(), creds.Token, "")
    var notActive *NotActiveError
    require.ErrorAs(t, err, &notActive)
    assert.Equal(t, model.PassPending, notActive.Status)
}

func TestVerifyExpiresOverduePass(t *testing.T) {
    repo, _, v, p := activePass(t)

    // Jump past the validity window.
    v.now = func() time.Time { return p.ValidTill.Add(time.Minute) }

    _, err := v.Verify(context.Background(), "", *p.ShortCode)
    assert.ErrorIs(t, err, ErrExpired)

    stored, err := repo.GetByID(context.Background(), p.ID)
    require.NoError(t, err)
    assert.Equal(t, model.PassExpired, stored.Status)

    // A second verification sees the terminal state, not another flip.
    _, err = v.Verify(context.Background(), "", *p.ShortCode)
    var notActive *NotActiveError
    require.ErrorAs(t, err, &notActive)
    assert.Equal(t, model.PassExpired, notActive.Status)
}

func TestVerifyAtWindowBoundary(t *testing.T) {
    _, _, v, p := activePass(t)

    // Exactly valid_till is still valid; only strictly after expires.
    v.now = func() time.Time { return *p.ValidTill }

    res, err := v.Verify(context.Background(), "", *p.ShortCode)
    require.NoError(t, err)
    assert.Equal(t, string(model.PassActive), res.Status)
}
