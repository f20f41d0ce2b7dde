package repository

import (
	"context"
	"database/sql"
	"time"
)

// TokenRepo persists/validates refresh tokens (single 'token_hash' column).
// Tokens are scoped to a principal (kind, id) so rider and admin sessions
// share one table.
type TokenRepo struct{ DB *sql.DB }

func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{DB: db} }

// StoreRefresh inserts a refresh token hash row.
func (r *TokenRepo) StoreRefresh(ctx context.Context, kind string, principalID uint64, tokenHash string, exp time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO refresh_tokens (principal_kind, principal_id, token_hash, expires_at) VALUES (?,?,?,?)",
		kind, principalID, tokenHash, exp)
	return err
}

// ValidateRefresh returns the principal if a non-revoked, non-expired token exists.
func (r *TokenRepo) ValidateRefresh(ctx context.Context, tokenHash string) (string, uint64, error) {
	var (
		kind        string
		principalID uint64
		expiresAt   time.Time
		revokedAt   sql.NullTime
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT principal_kind, principal_id, expires_at, revoked_at FROM refresh_tokens WHERE token_hash=? LIMIT 1",
		tokenHash).Scan(&kind, &principalID, &expiresAt, &revokedAt)
	if err != nil {
		return "", 0, err
	}
	if revokedAt.Valid {
		return "", 0, sql.ErrNoRows
	}
	if time.Now().UTC().After(expiresAt) {
		return "", 0, sql.ErrNoRows
	}
	return kind, principalID, nil
}

// RevokeByHash marks a token as revoked.
func (r *TokenRepo) RevokeByHash(ctx context.Context, tokenHash string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked_at=NOW() WHERE token_hash=? AND revoked_at IS NULL",
		tokenHash)
	return err
}

// RevokeAllForPrincipal revokes all of a principal's active tokens.
func (r *TokenRepo) RevokeAllForPrincipal(ctx context.Context, kind string, principalID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked_at=NOW() WHERE principal_kind=? AND principal_id=? AND revoked_at IS NULL",
		kind, principalID)
	return err
}
