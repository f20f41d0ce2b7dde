package pass

import (
    "context"
    "sync"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/bus-pass-system/internal/catalog"
    "github.com/iliyamo/bus-pass-system/internal/model"
)

// memRepo is an in-memory Repository with the same conditional-update
// semantics as the SQL implementation, including the unique short code
// constraint.
type memRepo struct {
    mu   sync.Mutex
    seq  uint64
    rows map[uint64]*model.Pass
}

func newMemRepo() *memRepo {
    return &memRepo{rows: make(map[uint64]*model.Pass)}
}

func (m *memRepo) Create(_ context.Context, p *model.Pass) error {
    m.mu.Lock()
    defer m.mu.Unlock()
    m.seq++
    p.ID = m.seq
    p.CreatedAt = time.Now().UTC()
    p.UpdatedAt = p.CreatedAt
    clone := *p
    m.rows[p.ID] = &clone
    return nil
}

func (m *memRepo) GetByID(_ context.Context, id uint64) (*model.Pass, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    p, ok := m.rows[id]
    if !ok {
        return nil, ErrNotFound
    }
    clone := *p
    return &clone, nil
}

func (m *memRepo) GetByShortCode(_ context.Context, code string) (*model.Pass, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    for _, p := range m.rows {
        if p.ShortCode != nil && *p.ShortCode == code {
            clone := *p
            return &clone, nil
        }
    }
    return nil, ErrNotFound
}

func (m *memRepo) Activate(_ context.Context, id uint64, validFrom, validTill time.Time, token, shortCode string) (bool, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    for otherID, other := range m.rows {
        if otherID != id && other.ShortCode != nil && *other.ShortCode == shortCode {
            return false, ErrDuplicateShortCode
        }
    }
    p, ok := m.rows[id]
    if !ok || p.Status != model.PassPending {
        return false, nil
    }
    p.Status = model.PassActive
    p.ValidFrom = &validFrom
    p.ValidTill = &validTill
    p.Token = &token
    p.ShortCode = &shortCode
    p.UpdatedAt = time.Now().UTC()
    return true, nil
}

func (m *memRepo) UpdateStatusIf(_ context.Context, id uint64, from, to model.PassStatus) (bool, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    p, ok := m.rows[id]
    if !ok || p.Status != from {
        return false, nil
    }
    p.Status = to
    p.UpdatedAt = time.Now().UTC()
    return true, nil
}

func newTestEngine(repo Repository) *Engine {
    return NewEngine(repo, NewCodec("engine-test-secret"))
}

func TestCreatePendingPass(t *testing.T) {
    repo := newMemRepo()
    e := newTestEngine(repo)

    p, err := e.Create(context.Background(), 9, catalog.TierMonthly, "Central", "Airport")
    require.NoError(t, err)

    assert.Equal(t, model.PassPending, p.Status)
    assert.Equal(t, uint32(500), p.Price)
    assert.Equal(t, uint64(9), p.OwnerID)
    assert.Nil(t, p.ValidFrom)
    assert.Nil(t, p.Token)
    assert.Nil(t, p.ShortCode)
}

func TestCreateRejectsUnknownTier(t *testing.T) {
    e := newTestEngine(newMemRepo())
    _, err := e.Create(context.Background(), 9, "weekly", "Central", "Airport")
    assert.ErrorIs(t, err, ErrInvalidTier)
}

func TestCreateRejectsBadRoute(t *testing.T) {
    e := newTestEngine(newMemRepo())
    ctx := context.Background()

    _, err := e.Create(ctx, 9, catalog.TierMonthly, "", "Airport")
    assert.ErrorIs(t, err, ErrMissingRoute)

    _, err = e.Create(ctx, 9, catalog.TierMonthly, "Central", "   ")
    assert.ErrorIs(t, err, ErrMissingRoute)

    // Same stop both ways, case-insensitively.
    _, err = e.Create(ctx, 9, catalog.TierMonthly, "Central", "central")
    assert.ErrorIs(t, err, ErrMissingRoute)
}

func TestApproveActivatesAndMintsCredentials(t *testing.T) {
    repo := newMemRepo()
    e := newTestEngine(repo)
    fixed := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
    e.now = func() time.Time { return fixed }

    created, err := e.Create(context.Background(), 9, catalog.TierQuarterly, "Central", "Airport")
    require.NoError(t, err)

    p, err := e.Approve(context.Background(), created.ID)
    require.NoError(t, err)

    assert.Equal(t, model.PassActive, p.Status)
    require.NotNil(t, p.ValidFrom)
    require.NotNil(t, p.ValidTill)
    assert.Equal(t, fixed, *p.ValidFrom)
    assert.Equal(t, fixed.Add(90*24*time.Hour), *p.ValidTill)
    require.NotNil(t, p.Token)
    require.NotNil(t, p.ShortCode)
    assert.True(t, WellFormedShortCode(*p.ShortCode))

    claims, err := NewCodec("engine-test-secret").VerifyToken(*p.Token)
    require.NoError(t, err)
    assert.Equal(t, p.ID, claims.PassID)
    assert.Equal(t, uint64(9), claims.OwnerID)
    assert.Equal(t, p.ValidTill.Unix(), claims.Expiry)
}

func TestApproveUnknownPass(t *testing.T) {
    e := newTestEngine(newMemRepo())
    _, err := e.Approve(context.Background(), 12345)
    assert.ErrorIs(t, err, ErrNotFound)
}

func TestApproveTwiceFails(t *testing.T) {
    repo := newMemRepo()
    e := newTestEngine(repo)
    created, err := e.Create(context.Background(), 9, catalog.TierMonthly, "Central", "Airport")
    require.NoError(t, err)

    _, err = e.Approve(context.Background(), created.ID)
    require.NoError(t, err)

    _, err = e.Approve(context.Background(), created.ID)
    var state *InvalidStateError
    require.ErrorAs(t, err, &state)
    assert.Equal(t, model.PassActive, state.Current)
}

func TestApproveAfterRejectFails(t *testing.T) {
    repo := newMemRepo()
    e := newTestEngine(repo)
    created, err := e.Create(context.Background(), 9, catalog.TierMonthly, "Central", "Airport")
    require.NoError(t, err)

    _, err = e.Reject(context.Background(), created.ID)
    require.NoError(t, err)

    _, err = e.Approve(context.Background(), created.ID)
    var state *InvalidStateError
    require.ErrorAs(t, err, &state)
    assert.Equal(t, model.PassRejected, state.Current)
}

func TestApproveRetriesShortCodeCollision(t *testing.T) {
    repo := newMemRepo()
    codec := NewCodec("engine-test-secret")

    taken := "AAAAAAAAAAAAAAAA"
    calls := 0
    codec.ShortCode = func() (string, error) {
        calls++
        if calls == 1 {
            return taken, nil
        }
        return NewShortCode()
    }
    e := NewEngine(repo, codec)

    // Occupy the colliding code on another pass.
    other, err := e.Create(context.Background(), 1, catalog.TierMonthly, "A", "B")
    require.NoError(t, err)
    _, err = e.Approve(context.Background(), other.ID)
    require.NoError(t, err)

    calls = 0 // next mint collides once, then succeeds
    created, err := e.Create(context.Background(), 2, catalog.TierMonthly, "Central", "Airport")
    require.NoError(t, err)
    p, err := e.Approve(context.Background(), created.ID)
    require.NoError(t, err)

    assert.Equal(t, 2, calls)
    require.NotNil(t, p.ShortCode)
    assert.NotEqual(t, taken, *p.ShortCode)
}

func TestApproveGivesUpAfterRepeatedCollisions(t *testing.T) {
    repo := newMemRepo()
    codec := NewCodec("engine-test-secret")
    taken := "AAAAAAAAAAAAAAAA"
    codec.ShortCode = func() (string, error) { return taken, nil }
    e := NewEngine(repo, codec)

    other, err := e.Create(context.Background(), 1, catalog.TierMonthly, "A", "B")
    require.NoError(t, err)
    _, err = e.Approve(context.Background(), other.ID)
    require.NoError(t, err)

    created, err := e.Create(context.Background(), 2, catalog.TierMonthly, "Central", "Airport")
    require.NoError(t, err)
    _, err = e.Approve(context.Background(), created.ID)
    assert.ErrorIs(t, err, ErrDuplicateShortCode)
}

func TestRejectPendingPass(t *testing.T) {
    repo := newMemRepo()
    e := newTestEngine(repo)
    created, err := e.Create(context.Background(), 9, catalog.TierMonthly, "Central", "Airport")
    require.NoError(t, err)

    p, err := e.Reject(context.Background(), created.ID)
    require.NoError(t, err)
    assert.Equal(t, model.PassRejected, p.Status)
    assert.Nil(t, p.Token)
    assert.Nil(t, p.ShortCode)
    assert.True(t, p.Terminal())
}

func TestRejectTwiceFails(t *testing.T) {
    repo := newMemRepo()
    e := newTestEngine(repo)
    created, err := e.Create(context.Background(), 9, catalog.TierMonthly, "Central", "Airport")
    require.NoError(t, err)

    _, err = e.Reject(context.Background(), created.ID)
    require.NoError(t, err)

    _, err = e.Reject(context.Background(), created.ID)
    var state *InvalidStateError
    require.ErrorAs(t, err, &state)
    assert.Equal(t, model.PassRejected, state.Current)
}
