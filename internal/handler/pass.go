package handler

import (
    "context"
    "errors"
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/bus-pass-system/internal/catalog"
    "github.com/iliyamo/bus-pass-system/internal/middleware"
    "github.com/iliyamo/bus-pass-system/internal/model"
    "github.com/iliyamo/bus-pass-system/internal/pass"
    "github.com/iliyamo/bus-pass-system/internal/repository"
)

// PassHandler serves the rider-facing pass endpoints: requesting a pass,
// listing one's own passes and fetching a single pass with credentials.
type PassHandler struct {
    Engine *pass.Engine
    Passes *repository.PassRepo
}

func NewPassHandler(engine *pass.Engine, passes *repository.PassRepo) *PassHandler {
    return &PassHandler{Engine: engine, Passes: passes}
}

// ----- DTOs -----

type requestPassReq struct {
    Tier        string `json:"tier"`
    Source      string `json:"source"`
    Destination string `json:"destination"`
}

// passResp is the pass representation returned to its owner.  Credentials
// are included (the rider presents them at verification); they are empty
// until the pass is approved.
type passResp struct {
    ID          uint64     `json:"id"`
    Tier        string     `json:"tier"`
    Price       uint32     `json:"price"`
    Status      string     `json:"status"`
    ValidFrom   *time.Time `json:"valid_from,omitempty"`
    ValidTill   *time.Time `json:"valid_till,omitempty"`
    Token       *string    `json:"token,omitempty"`
    ShortCode   *string    `json:"short_code,omitempty"`
    Source      string     `json:"source"`
    Destination string     `json:"destination"`
    CreatedAt   time.Time  `json:"created_at"`
}

func toPassResp(p *model.Pass) passResp {
    return passResp{
        ID:          p.ID,
        Tier:        p.Tier,
        Price:       p.Price,
        Status:      string(p.Status),
        ValidFrom:   p.ValidFrom,
        ValidTill:   p.ValidTill,
        Token:       p.Token,
        ShortCode:   p.ShortCode,
        Source:      p.Source,
        Destination: p.Destination,
        CreatedAt:   p.CreatedAt,
    }
}

// Request creates a pending pass for the authenticated rider.  A rider
// with a pending or active pass cannot request another; that business
// rule lives here, not in the lifecycle engine.
func (h *PassHandler) Request(c echo.Context) error {
    p, ok := middleware.CurrentPrincipal(c)
    if !ok {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    var req requestPassReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    open, err := h.Passes.CountNonTerminal(ctx, p.ID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    if open > 0 {
        return c.JSON(http.StatusConflict, echo.Map{"error": "a pending or active pass already exists"})
    }

    created, err := h.Engine.Create(ctx, p.ID, req.Tier, req.Source, req.Destination)
    if err != nil {
        switch {
        case errors.Is(err, pass.ErrInvalidTier):
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid pass tier", "tiers": catalog.Tiers()})
        case errors.Is(err, pass.ErrMissingRoute):
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "source and destination required and must differ"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create pass failed"})
    }
    return c.JSON(http.StatusCreated, toPassResp(created))
}

// List returns the rider's own passes, newest first.
func (h *PassHandler) List(c echo.Context) error {
    p, ok := middleware.CurrentPrincipal(c)
    if !ok {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    passes, err := h.Passes.ListByOwner(ctx, p.ID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    out := make([]passResp, 0, len(passes))
    for i := range passes {
        out = append(out, toPassResp(&passes[i]))
    }
    return c.JSON(http.StatusOK, echo.Map{"data": out})
}

// Get returns one of the rider's passes by id.
func (h *PassHandler) Get(c echo.Context) error {
    p, ok := middleware.CurrentPrincipal(c)
    if !ok {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    id, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid pass id"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    got, err := h.Passes.GetByIDForOwner(ctx, id, p.ID)
    if err != nil {
        switch {
        case errors.Is(err, pass.ErrNotFound):
            return c.JSON(http.StatusNotFound, echo.Map{"error": "pass not found"})
        case errors.Is(err, repository.ErrForbidden):
            return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    return c.JSON(http.StatusOK, toPassResp(got))
}

// Catalog lists the recognized tiers with price and duration so clients
// can render the purchase form without hardcoding the fare table.
func (h *PassHandler) Catalog(c echo.Context) error {
    type fareResp struct {
        Tier         string `json:"tier"`
        Price        uint32 `json:"price"`
        DurationDays int    `json:"duration_days"`
    }
    out := make([]fareResp, 0, 4)
    for _, tier := range catalog.Tiers() {
        fare, err := catalog.Lookup(tier)
        if err != nil {
            continue
        }
        out = append(out, fareResp{Tier: tier, Price: fare.Price, DurationDays: fare.DurationDays})
    }
    return c.JSON(http.StatusOK, echo.Map{"data": out})
}
