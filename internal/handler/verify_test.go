package handler

import (
    "context"
    "encoding/json"
    "net/http"
    "net/http/httptest"
    "strings"
    "testing"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/bus-pass-system/internal/model"
    "github.com/iliyamo/bus-pass-system/internal/pass"
)

// stubPassRepo serves a single pass record for verification tests.
type stubPassRepo struct {
    p *model.Pass
}

func (s *stubPassRepo) Create(_ context.Context, _ *model.Pass) error { return nil }

func (s *stubPassRepo) GetByID(_ context.Context, id uint64) (*model.Pass, error) {
    if s.p != nil && s.p.ID == id {
        clone := *s.p
        return &clone, nil
    }
    return nil, pass.ErrNotFound
}

func (s *stubPassRepo) GetByShortCode(_ context.Context, code string) (*model.Pass, error) {
    if s.p != nil && s.p.ShortCode != nil && *s.p.ShortCode == code {
        clone := *s.p
        return &clone, nil
    }
    return nil, pass.ErrNotFound
}

func (s *stubPassRepo) Activate(_ context.Context, _ uint64, _, _ time.Time, _, _ string) (bool, error) {
    return false, nil
}

func (s *stubPassRepo) UpdateStatusIf(_ context.Context, id uint64, from, to model.PassStatus) (bool, error) {
    if s.p != nil && s.p.ID == id && s.p.Status == from {
        s.p.Status = to
        return true, nil
    }
    return false, nil
}

type stubOwners struct{}

func (stubOwners) OwnerSnapshot(_ context.Context, ownerID uint64) (pass.OwnerSnapshot, error) {
    return pass.OwnerSnapshot{ID: ownerID, Name: "Asha Rao", Email: "asha@example.com", Phone: "9000000001"}, nil
}

func verifyFixture(t *testing.T) (*stubPassRepo, *VerifyHandler, pass.Credentials) {
    t.Helper()
    codec := pass.NewCodec("handler-test-secret")
    validFrom := time.Now().UTC().Add(-time.Hour)
    validTill := validFrom.Add(30 * 24 * time.Hour)

    creds, err := codec.Mint(1, 9, validTill)
    require.NoError(t, err)

    token := creds.Token
    code := creds.ShortCode
    repo := &stubPassRepo{p: &model.Pass{
        ID: 1, OwnerID: 9, Tier: "monthly", Price: 500, Status: model.PassActive,
        ValidFrom: &validFrom, ValidTill: &validTill, Token: &token, ShortCode: &code,
        Source: "Central", Destination: "Airport",
    }}
    h := NewVerifyHandler(pass.NewVerifier(repo, codec, stubOwners{}))
    return repo, h, creds
}

func doVerify(t *testing.T, h *VerifyHandler, body string) *httptest.ResponseRecorder {
    t.Helper()
    e := echo.New()
    req := httptest.NewRequest(http.MethodPost, "/v1/passes/verify", strings.NewReader(body))
    req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
    rec := httptest.NewRecorder()
    require.NoError(t, h.Verify(e.NewContext(req, rec)))
    return rec
}

func TestVerifyHandlerByToken(t *testing.T) {
    _, h, creds := verifyFixture(t)

    rec := doVerify(t, h, `{"token":"`+creds.Token+`"}`)
    assert.Equal(t, http.StatusOK, rec.Code)

    var resp struct {
        Valid bool        `json:"valid"`
        Pass  pass.Result `json:"pass"`
    }
    require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
    assert.True(t, resp.Valid)
    assert.Equal(t, uint64(1), resp.Pass.PassID)
    assert.Equal(t, "Asha Rao", resp.Pass.OwnerName)
    assert.Equal(t, "active", resp.Pass.Status)
}

func TestVerifyHandlerByShortCode(t *testing.T) {
    _, h, creds := verifyFixture(t)

    rec := doVerify(t, h, `{"short_code":"`+creds.ShortCode+`"}`)
    assert.Equal(t, http.StatusOK, rec.Code)
}

func TestVerifyHandlerAmbiguousInput(t *testing.T) {
    _, h, creds := verifyFixture(t)

    rec := doVerify(t, h, `{}`)
    assert.Equal(t, http.StatusBadRequest, rec.Code)

    rec = doVerify(t, h, `{"token":"`+creds.Token+`","short_code":"`+creds.ShortCode+`"}`)
    assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestVerifyHandlerMalformedShortCode(t *testing.T) {
    _, h, _ := verifyFixture(t)

    rec := doVerify(t, h, `{"short_code":"zzzz"}`)
    assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestVerifyHandlerForgedToken(t *testing.T) {
    _, h, _ := verifyFixture(t)

    forged, err := pass.NewCodec("wrong-secret").Mint(1, 9, time.Now().Add(time.Hour))
    require.NoError(t, err)

    rec := doVerify(t, h, `{"token":"`+forged.Token+`"}`)
    assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestVerifyHandlerUnknownShortCode(t *testing.T) {
    _, h, _ := verifyFixture(t)

    rec := doVerify(t, h, `{"short_code":"0123456789ABCDEF"}`)
    assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestVerifyHandlerPendingPass(t *testing.T) {
    repo, h, creds := verifyFixture(t)
    repo.p.Status = model.PassPending

    rec := doVerify(t, h, `{"token":"`+creds.Token+`"}`)
    assert.Equal(t, http.StatusConflict, rec.Code)

    var resp map[string]interface{}
    require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
    assert.Equal(t, "pending", resp["status"])
    assert.Equal(t, false, resp["valid"])
}

func TestVerifyHandlerExpiredPass(t *testing.T) {
    repo, h, creds := verifyFixture(t)
    past := time.Now().UTC().Add(-time.Minute)
    repo.p.ValidTill = &past

    rec := doVerify(t, h, `{"token":"`+creds.Token+`"}`)
    assert.Equal(t, http.StatusGone, rec.Code)
    assert.Equal(t, model.PassExpired, repo.p.Status)
}
