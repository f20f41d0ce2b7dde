package middleware

// identity.go defines the tagged principal stored in the request context
// by JWTAuth.  Handlers switch on the principal's Kind (rider or admin)
// and test capabilities through Role.Permits instead of branching on
// which of two lookups succeeded or comparing role strings.

import (
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/bus-pass-system/internal/model"
)

// principalKey is the context key JWTAuth writes the Principal under.
const principalKey = "principal"

// Principal identifies the authenticated caller for the duration of a
// request.  Kind is "rider" or "admin"; Role refines admins into admin
// and superadmin.
type Principal struct {
    ID   uint64
    Kind string
    Role model.Role
}

// CurrentPrincipal returns the authenticated principal stored by JWTAuth,
// if any.
func CurrentPrincipal(c echo.Context) (Principal, bool) {
    p, ok := c.Get(principalKey).(Principal)
    return p, ok
}
