package pass

import (
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestMintAndVerifyRoundTrip(t *testing.T) {
    codec := NewCodec("test-secret")
    validTill := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

    creds, err := codec.Mint(42, 7, validTill)
    require.NoError(t, err)
    require.NotEmpty(t, creds.Token)
    assert.True(t, WellFormedShortCode(creds.ShortCode))

    claims, err := codec.VerifyToken(creds.Token)
    require.NoError(t, err)
    assert.Equal(t, uint64(42), claims.PassID)
    assert.Equal(t, uint64(7), claims.OwnerID)
    assert.Equal(t, validTill.Unix(), claims.Expiry)
}

func TestVerifyTokenRejectsWrongSecret(t *testing.T) {
    minter := NewCodec("secret-a")
    creds, err := minter.Mint(1, 1, time.Now().Add(time.Hour))
    require.NoError(t, err)

    verifier := NewCodec("secret-b")
    _, err = verifier.VerifyToken(creds.Token)
    assert.ErrorIs(t, err, ErrBadSignature)
}

func TestVerifyTokenRejectsGarbage(t *testing.T) {
    codec := NewCodec("test-secret")
    for _, raw := range []string{"", "not.a.jwt", "aaaa.bbbb.cccc"} {
        _, err := codec.VerifyToken(raw)
        assert.ErrorIs(t, err, ErrBadSignature, raw)
    }
}

func TestVerifyTokenRejectsTampering(t *testing.T) {
    codec := NewCodec("test-secret")
    creds, err := codec.Mint(42, 7, time.Now().Add(time.Hour))
    require.NoError(t, err)

    tampered := creds.Token[:len(creds.Token)-2] + "xx"
    _, err = codec.VerifyToken(tampered)
    assert.ErrorIs(t, err, ErrBadSignature)
}

func TestVerifyTokenIgnoresEmbeddedExpiry(t *testing.T) {
    // The expiry claim is advisory; a token minted with a past window
    // still decodes.  Enforcement happens against the stored record.
    codec := NewCodec("test-secret")
    creds, err := codec.Mint(42, 7, time.Now().Add(-time.Hour))
    require.NoError(t, err)

    claims, err := codec.VerifyToken(creds.Token)
    require.NoError(t, err)
    assert.Less(t, claims.Expiry, time.Now().Unix())
}

func TestNewShortCodeFormat(t *testing.T) {
    seen := make(map[string]bool)
    for i := 0; i < 100; i++ {
        code, err := NewShortCode()
        require.NoError(t, err)
        assert.Regexp(t, `^[0-9A-F]{16}$`, code)
        assert.False(t, seen[code], "duplicate short code %s", code)
        seen[code] = true
    }
}

func TestWellFormedShortCode(t *testing.T) {
    assert.True(t, WellFormedShortCode("0123456789ABCDEF"))
    assert.True(t, WellFormedShortCode("0123456789abcdef")) // lower case accepted

    assert.False(t, WellFormedShortCode(""))
    assert.False(t, WellFormedShortCode("0123456789ABCDE"))   // too short
    assert.False(t, WellFormedShortCode("0123456789ABCDEF0")) // too long
    assert.False(t, WellFormedShortCode("0123456789ABCDEG"))  // not hex
}
