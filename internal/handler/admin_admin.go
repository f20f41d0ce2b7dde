package handler

import (
    "context"
    "database/sql"
    "errors"
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/bus-pass-system/internal/config"
    "github.com/iliyamo/bus-pass-system/internal/middleware"
    "github.com/iliyamo/bus-pass-system/internal/model"
    "github.com/iliyamo/bus-pass-system/internal/repository"
)

// AdminAdminHandler serves the superadmin-only endpoints that manage
// administrator accounts.
type AdminAdminHandler struct {
    Cfg    config.Config
    Admins *repository.AdminRepo
}

func NewAdminAdminHandler(cfg config.Config, admins *repository.AdminRepo) *AdminAdminHandler {
    return &AdminAdminHandler{Cfg: cfg, Admins: admins}
}

type adminResp struct {
    ID        uint64    `json:"id"`
    Name      string    `json:"name"`
    Email     string    `json:"email"`
    Role      string    `json:"role"`
    IsActive  bool      `json:"is_active"`
    CreatedAt time.Time `json:"created_at"`
}

func toAdminResp(a model.Admin) adminResp {
    return adminResp{
        ID: a.ID, Name: a.Name, Email: a.Email, Role: string(a.Role),
        IsActive: a.IsActive, CreatedAt: a.CreatedAt,
    }
}

type createAdminReq struct {
    Name     string `json:"name"`
    Email    string `json:"email"`
    Password string `json:"password"`
    Role     string `json:"role"`
}

type updateAdminReq struct {
    Name     string `json:"name"`
    Email    string `json:"email"`
    Role     string `json:"role"`
    IsActive *bool  `json:"is_active"`
}

// List returns every administrator account.
func (h *AdminAdminHandler) List(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    admins, err := h.Admins.List(ctx)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    out := make([]adminResp, 0, len(admins))
    for _, a := range admins {
        out = append(out, toAdminResp(a))
    }
    return c.JSON(http.StatusOK, echo.Map{"data": out})
}

// Create registers a new administrator with the given role.
func (h *AdminAdminHandler) Create(c echo.Context) error {
    var req createAdminReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    if req.Name == "" || req.Email == "" || len(req.Password) < 8 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "name, email and a password of at least 8 characters are required"})
    }
    if !model.ValidAdminRole(req.Role) {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "role must be admin or superadmin"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    id, err := h.Admins.Create(ctx, req.Name, req.Email, req.Password, model.Role(req.Role), h.Cfg.BcryptCost)
    if err != nil {
        if errors.Is(err, repository.ErrEmailExists) {
            return c.JSON(http.StatusConflict, echo.Map{"error": "email already in use"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
    }
    a, err := h.Admins.GetByID(ctx, id)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    return c.JSON(http.StatusCreated, toAdminResp(a))
}

// Get returns a single administrator account.
func (h *AdminAdminHandler) Get(c echo.Context) error {
    id, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid admin id"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    a, err := h.Admins.GetByID(ctx, id)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "admin not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    return c.JSON(http.StatusOK, toAdminResp(a))
}

// Update writes an administrator's mutable fields.
func (h *AdminAdminHandler) Update(c echo.Context) error {
    id, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid admin id"})
    }
    var req updateAdminReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    if req.Role != "" && !model.ValidAdminRole(req.Role) {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "role must be admin or superadmin"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    a, err := h.Admins.GetByID(ctx, id)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "admin not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    if req.Name != "" {
        a.Name = req.Name
    }
    if req.Email != "" {
        a.Email = req.Email
    }
    if req.Role != "" {
        a.Role = model.Role(req.Role)
    }
    if req.IsActive != nil {
        a.IsActive = *req.IsActive
    }
    if err := h.Admins.Update(ctx, a); err != nil {
        if errors.Is(err, repository.ErrEmailExists) {
            return c.JSON(http.StatusConflict, echo.Map{"error": "email already in use"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
    }
    return c.JSON(http.StatusOK, toAdminResp(a))
}

// ToggleActive flips an administrator's active flag.
func (h *AdminAdminHandler) ToggleActive(c echo.Context) error {
    id, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid admin id"})
    }
    if p, ok := middleware.CurrentPrincipal(c); ok && p.Kind == repository.KindAdmin && p.ID == id {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot deactivate your own account"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    active, err := h.Admins.ToggleActive(ctx, id)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "admin not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"id": id, "is_active": active})
}

// Delete removes an administrator.  A superadmin cannot delete their own
// account; that would lock the system out of admin management.
func (h *AdminAdminHandler) Delete(c echo.Context) error {
    id, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid admin id"})
    }
    if p, ok := middleware.CurrentPrincipal(c); ok && p.Kind == repository.KindAdmin && p.ID == id {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot delete your own account"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    if err := h.Admins.Delete(ctx, id); err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "admin not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
    }
    return c.NoContent(http.StatusNoContent)
}
