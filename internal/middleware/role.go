package middleware // middleware provides shared request processing for handlers

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/bus-pass-system/internal/model"
)

// RequireAction returns a middleware that rejects requests whose
// authenticated principal's role does not permit the given action.  It
// assumes JWTAuth has already stored the Principal in the context; a
// missing principal is treated as forbidden.  Handlers behind this
// middleware never compare role strings themselves.
func RequireAction(action model.Action) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            p, ok := CurrentPrincipal(c)
            if !ok || !p.Role.Permits(action) {
                return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
            }
            return next(c)
        }
    }
}
