package handler

import (
    "context"
    "errors"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/bus-pass-system/internal/pass"
)

// VerifyHandler serves the public verification endpoint used by
// conductors and gate scanners.  No authentication: possession of a
// valid credential is the proof.
type VerifyHandler struct {
    Verifier *pass.Verifier
}

func NewVerifyHandler(v *pass.Verifier) *VerifyHandler {
    return &VerifyHandler{Verifier: v}
}

type verifyReq struct {
    Token     string `json:"token"`
    ShortCode string `json:"short_code"`
}

// Verify checks exactly one presented credential and returns the pass's
// public fields when it is currently valid.
func (h *VerifyHandler) Verify(c echo.Context) error {
    var req verifyReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    res, err := h.Verifier.Verify(ctx, req.Token, req.ShortCode)
    if err != nil {
        var notActive *pass.NotActiveError
        switch {
        case errors.Is(err, pass.ErrAmbiguousInput):
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "supply exactly one of token or short_code"})
        case errors.Is(err, pass.ErrMalformedCode):
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "short code must be 16 hex characters"})
        case errors.Is(err, pass.ErrInvalidCredential):
            return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credential", "valid": false})
        case errors.Is(err, pass.ErrNotFound):
            return c.JSON(http.StatusNotFound, echo.Map{"error": "no pass matches the credential", "valid": false})
        case errors.As(err, &notActive):
            return c.JSON(http.StatusConflict, echo.Map{
                "error":  "pass is not active",
                "status": string(notActive.Status),
                "valid":  false,
            })
        case errors.Is(err, pass.ErrExpired):
            return c.JSON(http.StatusGone, echo.Map{"error": "pass has expired", "status": "expired", "valid": false})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "verification failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"valid": true, "pass": res})
}
