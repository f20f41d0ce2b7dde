package handler

import (
    "context"      // provides context with cancellation for DB calls
    "crypto/rand"  // secure random generation for reset codes
    "database/sql" // SQL database interactions
    "fmt"          // formatting for reset codes
    "math/big"     // uniform random integers for reset codes
    "net/http"     // HTTP status codes and primitives
    "strings"      // string manipulation utilities
    "time"         // timeouts for DB calls

    "github.com/labstack/echo/v4" // Echo framework for HTTP routing

    "github.com/iliyamo/bus-pass-system/internal/config"     // app configuration
    "github.com/iliyamo/bus-pass-system/internal/mailer"     // reset email delivery
    "github.com/iliyamo/bus-pass-system/internal/middleware" // authenticated principal access
    "github.com/iliyamo/bus-pass-system/internal/model"      // domain records
    "github.com/iliyamo/bus-pass-system/internal/repository" // DB repositories
    "github.com/iliyamo/bus-pass-system/internal/utils"      // helper functions (hashing, token issuing)
)

// AuthHandler bundles dependencies for auth endpoints.  One login surface
// serves riders and admins; the identity repository resolves the email to
// a tagged principal so no handler branches on "which table matched".
type AuthHandler struct {
    Cfg        config.Config
    Identities *repository.IdentityRepo
    Users      *repository.UserRepo
    Tokens     *repository.TokenRepo
    Resets     *repository.ResetCodeRepo
    Mail       *mailer.Mailer
}

func NewAuthHandler(cfg config.Config, ids *repository.IdentityRepo, u *repository.UserRepo, t *repository.TokenRepo, resets *repository.ResetCodeRepo, mail *mailer.Mailer) *AuthHandler {
    return &AuthHandler{Cfg: cfg, Identities: ids, Users: u, Tokens: t, Resets: resets, Mail: mail}
}

// ----- DTOs -----

type registerReq struct {
    Name     string `json:"name"`
    Email    string `json:"email"`
    Phone    string `json:"phone"`
    Age      uint8  `json:"age"`
    Password string `json:"password"`
}
type loginReq struct {
    Email    string `json:"email"`
    Password string `json:"password"`
}
type refreshReq struct {
    RefreshToken string `json:"refresh_token"`
}
type changePasswordReq struct {
    CurrentPassword string `json:"current_password"`
    NewPassword     string `json:"new_password"`
    ConfirmPassword string `json:"confirm_password"`
}
type forgotReq struct {
    Email string `json:"email"`
}
type resetReq struct {
    Code        string `json:"code"`
    NewPassword string `json:"new_password"`
}

type tokenPart struct {
    Token   string    `json:"token"`
    Expires time.Time `json:"expires"`
}
type principalPart struct {
    ID    uint64 `json:"id"`
    Kind  string `json:"kind"`
    Name  string `json:"name"`
    Email string `json:"email"`
    Role  string `json:"role"`
}
type authResp struct {
    Principal principalPart `json:"principal"`
    Access    tokenPart     `json:"access"`
    Refresh   tokenPart     `json:"refresh"`
}

// Register: create a rider account and return tokens immediately.
// Admin accounts are provisioned through the superadmin CRUD surface, not
// through public registration.
func (h *AuthHandler) Register(c echo.Context) error {
    var req registerReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    req.Email = strings.ToLower(strings.TrimSpace(req.Email))
    req.Name = strings.TrimSpace(req.Name)
    if req.Name == "" || req.Email == "" || req.Password == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "name/email/password required"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    uid, err := h.Users.Create(ctx, req.Name, req.Email, req.Phone, req.Age, req.Password, h.Cfg.BcryptCost)
    if err != nil {
        if err == repository.ErrEmailExists {
            return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
    }

    return h.issuePair(c, ctx, http.StatusCreated, repository.Identity{
        Kind: repository.KindRider, ID: uid, Name: req.Name, Email: req.Email, Role: model.RoleRider,
    })
}

// Login: resolve the email against the union of riders and admins, verify
// the password and return a new token pair.
func (h *AuthHandler) Login(c echo.Context) error {
    var req loginReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    req.Email = strings.ToLower(strings.TrimSpace(req.Email))
    if req.Email == "" || req.Password == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    ident, err := h.Identities.ResolveByEmail(ctx, req.Email)
    if err != nil {
        if err == sql.ErrNoRows {
            return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    if !utils.VerifyPassword(ident.PasswordHash, req.Password) {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
    }
    if !ident.IsActive {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "account is inactive"})
    }

    return h.issuePair(c, ctx, http.StatusOK, ident)
}

// Refresh: validate by hash, revoke old, issue new pair.
func (h *AuthHandler) Refresh(c echo.Context) error {
    var req refreshReq
    if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
    }
    raw := strings.TrimSpace(req.RefreshToken)
    hash := utils.HashRefreshRaw(raw)

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    kind, principalID, err := h.Tokens.ValidateRefresh(ctx, hash)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
    }
    _ = h.Tokens.RevokeByHash(ctx, hash)

    ident, err := h.Identities.Resolve(ctx, kind, principalID)
    if err != nil {
        if err == sql.ErrNoRows {
            return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load principal failed"})
    }
    if !ident.IsActive {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "account is inactive"})
    }

    return h.issuePair(c, ctx, http.StatusOK, ident)
}

// Logout: revoke the presented refresh token.
func (h *AuthHandler) Logout(c echo.Context) error {
    var req refreshReq
    if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
    }
    hash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    if _, _, err := h.Tokens.ValidateRefresh(ctx, hash); err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
    }
    if err := h.Tokens.RevokeByHash(ctx, hash); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "revoke failed"})
    }
    return c.NoContent(http.StatusNoContent)
}

// Me returns the authenticated principal's profile.
func (h *AuthHandler) Me(c echo.Context) error {
    p, ok := middleware.CurrentPrincipal(c)
    if !ok {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    ident, err := h.Identities.Resolve(ctx, p.Kind, p.ID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load principal failed"})
    }
    return c.JSON(http.StatusOK, principalPart{
        ID: ident.ID, Kind: ident.Kind, Name: ident.Name, Email: ident.Email, Role: string(ident.Role),
    })
}

// ChangePassword lets an authenticated rider replace their password after
// proving the current one.
func (h *AuthHandler) ChangePassword(c echo.Context) error {
    p, ok := middleware.CurrentPrincipal(c)
    if !ok || p.Kind != repository.KindRider {
        return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
    }
    var req changePasswordReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    if req.CurrentPassword == "" || req.NewPassword == "" || req.ConfirmPassword == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "current/new/confirm passwords required"})
    }
    if req.NewPassword != req.ConfirmPassword {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "new passwords do not match"})
    }
    if req.NewPassword == req.CurrentPassword {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "new password must differ from current"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    u, err := h.Users.GetByID(ctx, p.ID)
    if err != nil {
        if err == sql.ErrNoRows {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    if !utils.VerifyPassword(u.PasswordHash, req.CurrentPassword) {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "current password is incorrect"})
    }
    if err := h.Users.UpdatePassword(ctx, u.ID, req.NewPassword, h.Cfg.BcryptCost); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
    }
    // Changing the password invalidates every open session.
    _ = h.Tokens.RevokeAllForPrincipal(ctx, repository.KindRider, u.ID)
    return c.JSON(http.StatusOK, echo.Map{"message": "password changed"})
}

// ForgotPassword issues a short-lived reset code and emails it to the
// rider.  To avoid leaking which emails are registered, the response is
// identical whether or not the account exists.
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
    var req forgotReq
    if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Email) == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "email required"})
    }
    email := strings.ToLower(strings.TrimSpace(req.Email))

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    accepted := echo.Map{"message": "if the email is registered, a reset code has been sent"}

    u, err := h.Users.GetByEmail(ctx, email)
    if err != nil {
        if err == sql.ErrNoRows {
            return c.JSON(http.StatusOK, accepted)
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }

    code, err := newResetCode()
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue code failed"})
    }
    if err := h.Resets.Put(ctx, code, u.Email); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "store code failed"})
    }
    // Best-effort delivery; the code is already stored and will expire on
    // its own if the mail never arrives.
    _ = h.Mail.SendPasswordReset(u.Email, u.Name, code, h.Cfg.ResetCodeTTLMin)

    return c.JSON(http.StatusOK, accepted)
}

// ResetPassword consumes a reset code and sets the new password.  Codes
// are single use: consumption deletes the Redis key atomically.
func (h *AuthHandler) ResetPassword(c echo.Context) error {
    var req resetReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    req.Code = strings.TrimSpace(req.Code)
    if req.Code == "" || req.NewPassword == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "code and new_password required"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    email, err := h.Resets.Consume(ctx, req.Code)
    if err != nil {
        if err == repository.ErrResetCodeInvalid {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid or expired reset code"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "consume code failed"})
    }
    u, err := h.Users.GetByEmail(ctx, email)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    if err := h.Users.UpdatePassword(ctx, u.ID, req.NewPassword, h.Cfg.BcryptCost); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
    }
    _ = h.Tokens.RevokeAllForPrincipal(ctx, repository.KindRider, u.ID)
    return c.JSON(http.StatusOK, echo.Map{"message": "password reset"})
}

// issuePair mints an access/refresh pair for the principal and writes the
// standard auth response.
func (h *AuthHandler) issuePair(c echo.Context, ctx context.Context, status int, ident repository.Identity) error {
    access, err := utils.NewAccessToken(h.Cfg.JWTSecret, ident.ID, ident.Kind, string(ident.Role), h.Cfg.AccessTTLMin)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
    }
    refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue refresh failed"})
    }
    if err := h.Tokens.StoreRefresh(ctx, ident.Kind, ident.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save refresh failed"})
    }
    return c.JSON(status, authResp{
        Principal: principalPart{ID: ident.ID, Kind: ident.Kind, Name: ident.Name, Email: ident.Email, Role: string(ident.Role)},
        Access:    tokenPart{Token: access.Token, Expires: access.Exp},
        Refresh:   tokenPart{Token: refresh.Raw, Expires: refresh.Exp}, // raw back to client
    })
}

// newResetCode returns a uniformly random 6 digit code, zero padded.
func newResetCode() (string, error) {
    n, err := rand.Int(rand.Reader, big.NewInt(1000000))
    if err != nil {
        return "", err
    }
    return fmt.Sprintf("%06d", n.Int64()), nil
}
