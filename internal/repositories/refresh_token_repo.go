package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/suhejbmusliu/Full-Stack-Blog-Post/internal/database"
	"github.com/suhejbmusliu/Full-Stack-Blog-Post/internal/models"
	"github.com/suhejbmusliu/Full-Stack-Blog-Post/pkg/auth"
)

// RefreshTokenRepository is the refresh token ledger. A record stores only a
// bcrypt hash of the opaque secret; revoked and expired rows are kept for
// audit rather than deleted.
type RefreshTokenRepository struct {
	pool database.Querier
}

func NewRefreshTokenRepository(db *database.DB) *RefreshTokenRepository {
	return &RefreshTokenRepository{pool: db.Pool}
}

const refreshTokenColumns = `id, admin_id, token_hash, expires_at, revoked_at, ip, user_agent, created_at`

func scanRefreshTokenRow(scanner rowScanner) (*models.RefreshToken, error) {
	var token models.RefreshToken
	var revokedAt *time.Time
	var ip, userAgent *string

	err := scanner.Scan(
		&token.ID, &token.AdminID, &token.TokenHash,
		&token.ExpiresAt, &revokedAt, &ip, &userAgent, &token.CreatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	token.RevokedAt = revokedAt
	if ip != nil {
		token.IP = *ip
	}
	if userAgent != nil {
		token.UserAgent = *userAgent
	}
	return &token, nil
}

// CreateRefreshTokenParams carries everything needed to mint a ledger row.
// RawSecret is hashed here and never stored.
type CreateRefreshTokenParams struct {
	AdminID   string
	RawSecret string
	ExpiresAt time.Time
	IP        string
	UserAgent string
}

// Create hashes the opaque secret and inserts the ledger record, returning
// the stored row (its id goes into the signed refresh claims).
func (r *RefreshTokenRepository) Create(ctx context.Context, params CreateRefreshTokenParams) (*models.RefreshToken, error) {
	tokenHash, err := auth.HashRefreshSecret(params.RawSecret)
	if err != nil {
		return nil, err
	}

	query := `
		INSERT INTO refresh_tokens (id, admin_id, token_hash, expires_at, ip, user_agent)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + refreshTokenColumns

	return scanRefreshTokenRow(r.pool.QueryRow(ctx, query,
		uuid.New().String(), params.AdminID, tokenHash, params.ExpiresAt, params.IP, params.UserAgent,
	))
}

// Validate checks the opaque secret against the stored record. The failure
// reason is for internal logging only and must never reach a client.
func (r *RefreshTokenRepository) Validate(ctx context.Context, tokenID, rawSecret string) (*models.RefreshValidation, error) {
	query := `SELECT ` + refreshTokenColumns + ` FROM refresh_tokens WHERE id = $1`

	token, err := scanRefreshTokenRow(r.pool.QueryRow(ctx, query, tokenID))
	if err != nil {
		if err == models.ErrNotFound {
			return &models.RefreshValidation{OK: false, Reason: models.RefreshReasonNotFound}, nil
		}
		return nil, err
	}

	if token.RevokedAt != nil {
		return &models.RefreshValidation{OK: false, Reason: models.RefreshReasonRevoked}, nil
	}
	if token.ExpiresAt.Before(time.Now()) {
		return &models.RefreshValidation{OK: false, Reason: models.RefreshReasonExpired}, nil
	}
	if err := auth.CompareRefreshSecret(token.TokenHash, rawSecret); err != nil {
		return &models.RefreshValidation{OK: false, Reason: models.RefreshReasonMismatch}, nil
	}

	return &models.RefreshValidation{OK: true, Token: token}, nil
}

// Revoke idempotently marks the record revoked. Revoking an already revoked
// or missing record is not an error.
func (r *RefreshTokenRepository) Revoke(ctx context.Context, tokenID string) error {
	query := `UPDATE refresh_tokens SET revoked_at = NOW() WHERE id = $1 AND revoked_at IS NULL`
	_, err := r.pool.Exec(ctx, query, tokenID)
	return database.MapPostgresError(err)
}

// RevokeAllForAdmin force-logs-out every session, e.g. after 2FA recovery.
func (r *RefreshTokenRepository) RevokeAllForAdmin(ctx context.Context, q database.Querier, adminID string) (int64, error) {
	query := `UPDATE refresh_tokens SET revoked_at = NOW() WHERE admin_id = $1 AND revoked_at IS NULL`
	result, err := q.Exec(ctx, query, adminID)
	if err != nil {
		return 0, database.MapPostgresError(err)
	}
	return result.RowsAffected(), nil
}

// DeleteExpiredBefore purges rows whose expiry passed before the cutoff.
// Recent expired rows stay around for audit.
func (r *RefreshTokenRepository) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM refresh_tokens WHERE expires_at < $1`
	result, err := r.pool.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, database.MapPostgresError(err)
	}
	return result.RowsAffected(), nil
}
