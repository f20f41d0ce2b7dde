package handler

import (
    "context"
    "errors"
    "log"
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/bus-pass-system/internal/model"
    "github.com/iliyamo/bus-pass-system/internal/pass"
    "github.com/iliyamo/bus-pass-system/internal/queue"
    "github.com/iliyamo/bus-pass-system/internal/repository"
    queue_publisher "github.com/iliyamo/bus-pass-system/internal/service"
)

// AdminPassHandler serves the admin review endpoints: listing requests
// and deciding them.  Decisions are published to the message broker on a
// best effort basis; a broker outage never fails the HTTP request.
type AdminPassHandler struct {
    Engine *pass.Engine
    Passes *repository.PassRepo
}

func NewAdminPassHandler(engine *pass.Engine, passes *repository.PassRepo) *AdminPassHandler {
    return &AdminPassHandler{Engine: engine, Passes: passes}
}

type adminPassResp struct {
    passResp
    OwnerID    uint64 `json:"owner_id"`
    OwnerName  string `json:"owner_name"`
    OwnerEmail string `json:"owner_email"`
    OwnerPhone string `json:"owner_phone"`
    OwnerAge   uint8  `json:"owner_age"`
}

// List returns all passes joined with their owners, optionally filtered
// by ?status=.
func (h *AdminPassHandler) List(c echo.Context) error {
    status := c.QueryParam("status")
    if status != "" && !model.ValidPassStatus(status) {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status filter"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    items, err := h.Passes.ListWithOwner(ctx, status)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    out := make([]adminPassResp, 0, len(items))
    for i := range items {
        out = append(out, adminPassResp{
            passResp:   toPassResp(&items[i].Pass),
            OwnerID:    items[i].Pass.OwnerID,
            OwnerName:  items[i].OwnerName,
            OwnerEmail: items[i].OwnerEmail,
            OwnerPhone: items[i].OwnerPhone,
            OwnerAge:   items[i].OwnerAge,
        })
    }
    return c.JSON(http.StatusOK, echo.Map{"data": out})
}

// Approve activates a pending pass and returns it with the freshly
// minted credentials.
func (h *AdminPassHandler) Approve(c echo.Context) error {
    return h.decide(c, "approved")
}

// Reject marks a pending pass rejected.
func (h *AdminPassHandler) Reject(c echo.Context) error {
    return h.decide(c, "rejected")
}

func (h *AdminPassHandler) decide(c echo.Context, decision string) error {
    id, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid pass id"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    var decided *model.Pass
    if decision == "approved" {
        decided, err = h.Engine.Approve(ctx, id)
    } else {
        decided, err = h.Engine.Reject(ctx, id)
    }
    if err != nil {
        var state *pass.InvalidStateError
        switch {
        case errors.Is(err, pass.ErrNotFound):
            return c.JSON(http.StatusNotFound, echo.Map{"error": "pass not found"})
        case errors.As(err, &state):
            return c.JSON(http.StatusConflict, echo.Map{
                "error":  "pass is already " + string(state.Current),
                "status": string(state.Current),
            })
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "decision failed"})
    }

    h.publish(decided, decision)
    return c.JSON(http.StatusOK, toPassResp(decided))
}

// publish emits the decision event.  Failures are already logged by the
// publisher; nothing else to do here.
func (h *AdminPassHandler) publish(p *model.Pass, decision string) {
    ev := queue.PassDecidedEvent{
        PassID:      p.ID,
        OwnerID:     p.OwnerID,
        Tier:        p.Tier,
        Price:       p.Price,
        Source:      p.Source,
        Destination: p.Destination,
        Decision:    decision,
        DecidedAt:   time.Now().UTC().Format(time.RFC3339),
    }
    if p.ValidFrom != nil {
        ev.ValidFrom = p.ValidFrom.Format(time.RFC3339)
    }
    if p.ValidTill != nil {
        ev.ValidTill = p.ValidTill.Format(time.RFC3339)
    }
    ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
    defer cancel()
    if err := queue_publisher.PublishPassDecided(ctx, ev); err != nil {
        log.Printf("admin-pass: publish %s event for pass %d failed: %v", decision, p.ID, err)
    }
}
