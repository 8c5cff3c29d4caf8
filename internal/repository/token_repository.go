package repository

import (
	"context"
	"database/sql"
	"time"
)

// TokenRepo stores SHA-256 hashes of the refresh tokens issued to
// owner and staff dashboard logins.  Raw tokens never touch the
// database; revocation and expiry are both checked on use so a stolen
// row is worthless once rotated out.
type TokenRepo struct {
	db *sql.DB
}

func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{db: db} }

// StoreRefresh records a freshly issued refresh token hash with its
// expiry.
func (r *TokenRepo) StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error {
	const q = `INSERT INTO refresh_tokens (user_id, token_hash, expires_at) VALUES (?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q, userID, tokenHash, exp)
	return err
}

// ValidateRefresh resolves a presented token hash to its user.  A
// revoked or expired token is reported as sql.ErrNoRows so callers
// treat it exactly like a token that was never issued.
func (r *TokenRepo) ValidateRefresh(ctx context.Context, tokenHash string) (uint64, error) {
	const q = `SELECT user_id, expires_at, revoked_at FROM refresh_tokens WHERE token_hash = ? LIMIT 1`
	var (
		userID    uint64
		expiresAt time.Time
		revokedAt sql.NullTime
	)
	if err := r.db.QueryRowContext(ctx, q, tokenHash).Scan(&userID, &expiresAt, &revokedAt); err != nil {
		return 0, err
	}
	if revokedAt.Valid || time.Now().UTC().After(expiresAt) {
		return 0, sql.ErrNoRows
	}
	return userID, nil
}

// RevokeByHash retires a single refresh token.  Used on logout and on
// rotation, and idempotent either way.
func (r *TokenRepo) RevokeByHash(ctx context.Context, tokenHash string) error {
	const q = `UPDATE refresh_tokens SET revoked_at = NOW() WHERE token_hash = ? AND revoked_at IS NULL`
	_, err := r.db.ExecContext(ctx, q, tokenHash)
	return err
}

// RevokeAllForUser retires every live refresh token a user holds,
// signing them out of all devices at once.
func (r *TokenRepo) RevokeAllForUser(ctx context.Context, userID uint64) error {
	const q = `UPDATE refresh_tokens SET revoked_at = NOW() WHERE user_id = ? AND revoked_at IS NULL`
	_, err := r.db.ExecContext(ctx, q, userID)
	return err
}
