// Package router wires HTTP routes to their handlers and attaches the
// authentication and authorization middleware each group needs.
package router

import (
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/bus-pass-system/internal/handler"
    "github.com/iliyamo/bus-pass-system/internal/middleware"
    "github.com/iliyamo/bus-pass-system/internal/model"
)

// RegisterRoutes registers routes that require neither authentication
// nor rate limiting.  Currently that is only the health check.
func RegisterRoutes(e *echo.Echo) {
    e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the authentication surface.  The credential
// endpoints under /v1/auth are unauthenticated and rate limited; the
// session endpoints under /v1 require a valid access token.  rl may be
// nil when rate limiting is disabled.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string, rl echo.MiddlewareFunc) {
    g := e.Group("/v1/auth")
    if rl != nil {
        g.Use(rl)
    }
    g.POST("/register", a.Register)
    g.POST("/login", a.Login)
    g.POST("/refresh", a.Refresh)
    g.POST("/logout", a.Logout)
    g.POST("/forgot-password", a.ForgotPassword)
    g.POST("/reset-password", a.ResetPassword)

    auth := e.Group("/v1")
    auth.Use(middleware.JWTAuth(jwtSecret))
    auth.GET("/me", a.Me)
    auth.PUT("/me/password", a.ChangePassword)
}

// RegisterRider registers the rider-facing pass endpoints.  The fare
// catalog is public so clients can render the request form before
// logging in.
func RegisterRider(e *echo.Echo, p *handler.PassHandler, jwtSecret string) {
    e.GET("/v1/catalog", p.Catalog)

    g := e.Group("/v1/passes")
    g.Use(middleware.JWTAuth(jwtSecret))
    g.Use(middleware.RequireAction(model.ActionRequestPass))
    g.POST("", p.Request)
    g.GET("", p.List)
    g.GET("/:id", p.Get)
}

// RegisterVerify registers the public verification endpoint.  No JWT:
// possession of a pass credential is the proof.  Rate limited to slow
// down short code guessing.  rl may be nil.
func RegisterVerify(e *echo.Echo, v *handler.VerifyHandler, rl echo.MiddlewareFunc) {
    if rl != nil {
        e.POST("/v1/passes/verify", v.Verify, rl)
        return
    }
    e.POST("/v1/passes/verify", v.Verify)
}

// RegisterAdmin registers the admin surface under /v1/admin.  Every
// group carries the JWT middleware plus the capability check for its
// action, so a plain admin cannot reach the superadmin-only admin CRUD.
func RegisterAdmin(e *echo.Echo, passes *handler.AdminPassHandler, users *handler.AdminUserHandler, admins *handler.AdminAdminHandler, jwtSecret string) {
    g := e.Group("/v1/admin")
    g.Use(middleware.JWTAuth(jwtSecret))

    pg := g.Group("/passes")
    pg.Use(middleware.RequireAction(model.ActionDecidePasses))
    pg.GET("", passes.List)
    pg.POST("/:id/approve", passes.Approve)
    pg.POST("/:id/reject", passes.Reject)

    ug := g.Group("/users")
    ug.Use(middleware.RequireAction(model.ActionManageUsers))
    ug.GET("", users.List)
    ug.GET("/:id", users.Get)
    ug.PUT("/:id", users.Update)
    ug.PATCH("/:id/toggle", users.ToggleActive)
    ug.DELETE("/:id", users.Delete)

    ag := g.Group("/admins")
    ag.Use(middleware.RequireAction(model.ActionManageAdmins))
    ag.GET("", admins.List)
    ag.POST("", admins.Create)
    ag.GET("/:id", admins.Get)
    ag.PUT("/:id", admins.Update)
    ag.PATCH("/:id/toggle", admins.ToggleActive)
    ag.DELETE("/:id", admins.Delete)
}
