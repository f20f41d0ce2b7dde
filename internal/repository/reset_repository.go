package repository

import (
    "context"
    "errors"
    "time"

    "github.com/redis/go-redis/v9"
)

// ErrResetCodeInvalid is returned when a reset code does not exist or has
// already expired or been consumed.
var ErrResetCodeInvalid = errors.New("invalid or expired reset code")

// ErrResetStoreUnavailable is returned when Redis is not connected.  The
// reset flow degrades to an error instead of taking the server down.
var ErrResetStoreUnavailable = errors.New("reset code store unavailable")

// ResetCodeRepo stores password reset codes in Redis with a TTL.  Each
// code maps to the rider's email and disappears either when the TTL
// lapses or when it is consumed, making codes single use and letting the
// state survive process restarts.
type ResetCodeRepo struct {
    rdb    *redis.Client
    prefix string
    ttl    time.Duration
}

// NewResetCodeRepo returns a repo writing under "reset:<code>" keys with
// the given lifetime.
func NewResetCodeRepo(rdb *redis.Client, ttl time.Duration) *ResetCodeRepo {
    return &ResetCodeRepo{rdb: rdb, prefix: "reset:", ttl: ttl}
}

// Put stores a code for the given email, replacing any previous value
// under the same code.
func (r *ResetCodeRepo) Put(ctx context.Context, code, email string) error {
    if r.rdb == nil {
        return ErrResetStoreUnavailable
    }
    return r.rdb.Set(ctx, r.prefix+code, email, r.ttl).Err()
}

// Consume atomically fetches and deletes the code, returning the email it
// was issued for.  A missing key yields ErrResetCodeInvalid.
func (r *ResetCodeRepo) Consume(ctx context.Context, code string) (string, error) {
    if r.rdb == nil {
        return "", ErrResetStoreUnavailable
    }
    email, err := r.rdb.GetDel(ctx, r.prefix+code).Result()
    if err == redis.Nil {
        return "", ErrResetCodeInvalid
    }
    if err != nil {
        return "", err
    }
    return email, nil
}
