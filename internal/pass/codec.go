package pass

import (
    "crypto/rand"
    "encoding/hex"
    "regexp"
    "strings"
    "time"

    "github.com/golang-jwt/jwt/v5"
)

// shortCodePattern matches a well-formed short code: exactly 16 uppercase
// hexadecimal characters (8 random bytes, 64 bits of entropy).
var shortCodePattern = regexp.MustCompile(`^[0-9A-F]{16}$`)

// WellFormedShortCode reports whether s has the short code shape.  Lower
// case hex is accepted on input; lookups normalize to upper case.
func WellFormedShortCode(s string) bool {
    return shortCodePattern.MatchString(strings.ToUpper(s))
}

// NewShortCode returns a fresh 16 character uppercase hex code from
// crypto/rand.  It has no cryptographic relationship to the signed token;
// it exists as a low-tech fallback an operator can read over a phone.
func NewShortCode() (string, error) {
    buf := make([]byte, 8)
    if _, err := rand.Read(buf); err != nil {
        return "", err
    }
    return strings.ToUpper(hex.EncodeToString(buf)), nil
}

// Claims are the decoded contents of a pass token.  Expiry mirrors the
// record's valid_till at mint time as seconds since epoch.  It is
// advisory only: verification always checks the live record's window, so
// a token is never trusted about its own expiry.
type Claims struct {
    PassID  uint64
    OwnerID uint64
    Expiry  int64
}

// Credentials bundles the two credential forms minted on approval.
type Credentials struct {
    Token     string
    ShortCode string
}

// Codec mints and verifies pass credentials.  Tokens are HS256 JWTs
// signed with a server-held secret; the signature is the forgery defense,
// not secrecy of the payload.  The short code generator is injectable so
// collision handling can be exercised in tests.
type Codec struct {
    secret    []byte
    ShortCode func() (string, error)
}

// NewCodec returns a codec signing with the given secret.
func NewCodec(secret string) *Codec {
    return &Codec{secret: []byte(secret), ShortCode: NewShortCode}
}

// Mint produces a signed token bound to (passID, ownerID, validTill) and
// an independent short code.
func (c *Codec) Mint(passID, ownerID uint64, validTill time.Time) (Credentials, error) {
    claims := jwt.MapClaims{
        "pass_id":  passID,
        "owner_id": ownerID,
        "expiry":   validTill.Unix(),
    }
    t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
    signed, err := t.SignedString(c.secret)
    if err != nil {
        return Credentials{}, err
    }
    code, err := c.ShortCode()
    if err != nil {
        return Credentials{}, err
    }
    return Credentials{Token: signed, ShortCode: code}, nil
}

// VerifyToken checks the token's signature and decodes its claims.  It
// returns ErrBadSignature on any signature or payload problem.  Expiry is
// NOT enforced here; that is a business rule applied against the stored
// record's valid_till.
func (c *Codec) VerifyToken(raw string) (Claims, error) {
    tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
        if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
            return nil, ErrBadSignature
        }
        return c.secret, nil
    })
    if err != nil || !tok.Valid {
        return Claims{}, ErrBadSignature
    }
    mc, ok := tok.Claims.(jwt.MapClaims)
    if !ok {
        return Claims{}, ErrBadSignature
    }
    passID, ok1 := claimUint(mc, "pass_id")
    ownerID, ok2 := claimUint(mc, "owner_id")
    expiry, ok3 := claimInt(mc, "expiry")
    if !ok1 || !ok2 || !ok3 {
        return Claims{}, ErrBadSignature
    }
    return Claims{PassID: passID, OwnerID: ownerID, Expiry: expiry}, nil
}

func claimUint(mc jwt.MapClaims, key string) (uint64, bool) {
    v, ok := mc[key].(float64)
    if !ok || v < 0 {
        return 0, false
    }
    return uint64(v), true
}

func claimInt(mc jwt.MapClaims, key string) (int64, bool) {
    v, ok := mc[key].(float64)
    if !ok {
        return 0, false
    }
    return int64(v), true
}
