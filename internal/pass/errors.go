// Package pass implements the pass lifecycle: creation, approval,
// rejection, credential minting and verification.  It owns the state
// machine (pending → active|rejected, active → expired) and the rules
// under which a presented credential is accepted.  Persistence and
// identity resolution are injected; the package does no logging of its
// own.
package pass

import (
    "errors"
    "fmt"

    "github.com/iliyamo/bus-pass-system/internal/model"
)

// Input validation failures.  These are caller mistakes and are never
// retried.
var (
    // ErrInvalidTier is returned by Create when the tier is not in the catalog.
    ErrInvalidTier = errors.New("invalid pass tier")
    // ErrMissingRoute is returned by Create when a route endpoint is absent
    // or source equals destination.
    ErrMissingRoute = errors.New("route source and destination required and must differ")
    // ErrAmbiguousInput is returned by Verify when both or neither of
    // token and short code are supplied.
    ErrAmbiguousInput = errors.New("provide exactly one of token or code")
    // ErrMalformedCode is returned by Verify when the short code is not 16
    // hexadecimal characters.
    ErrMalformedCode = errors.New("malformed short code")
)

// ErrNotFound is returned when no pass matches the given id or credential.
var ErrNotFound = errors.New("pass not found")

// Credential failures.  Terminal verification outcomes.
var (
    // ErrBadSignature is returned by the codec when a token's signature or
    // payload is invalid.
    ErrBadSignature = errors.New("bad token signature")
    // ErrInvalidCredential is returned by Verify when the presented token
    // fails signature verification.
    ErrInvalidCredential = errors.New("invalid credential")
    // ErrExpired is returned by Verify when the pass is past its validity
    // window.  The pass has been transitioned to expired as a side effect.
    ErrExpired = errors.New("pass has expired")
)

// InvalidStateError is returned by Approve and Reject when the pass is not
// pending.  Current carries the actual status so callers can render
// "already rejected" and treat duplicates as success-equivalent.
type InvalidStateError struct {
    Current model.PassStatus
}

func (e *InvalidStateError) Error() string {
    return fmt.Sprintf("pass is already %s", e.Current)
}

// NotActiveError is returned by Verify when the resolved pass is not
// active.  Status carries the actual state (pending, rejected or expired).
type NotActiveError struct {
    Status model.PassStatus
}

func (e *NotActiveError) Error() string {
    return fmt.Sprintf("pass is not active (status: %s)", e.Status)
}
