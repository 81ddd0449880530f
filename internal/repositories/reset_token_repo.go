package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/suhejbmusliu/Full-Stack-Blog-Post/internal/database"
	"github.com/suhejbmusliu/Full-Stack-Blog-Post/internal/models"
)

// ResetTokenRepository is a single-use recovery token ledger. Two instances
// exist over different tables: password reset and 2FA reset. The 2FA variant
// enforces at most one live token per admin by invalidating prior unused
// tokens at create time; the password variant tolerates coexisting requests
// and honors the latest matching one.
type ResetTokenRepository struct {
	pool           database.Querier
	table          string
	supersedePrior bool
}

func NewPasswordResetTokenRepository(db *database.DB) *ResetTokenRepository {
	return &ResetTokenRepository{pool: db.Pool, table: "password_reset_tokens"}
}

func NewTwoFactorResetTokenRepository(db *database.DB) *ResetTokenRepository {
	return &ResetTokenRepository{pool: db.Pool, table: "two_factor_reset_tokens", supersedePrior: true}
}

const resetTokenColumns = `id, admin_id, token_hash, expires_at, used_at, created_at`

func scanResetTokenRow(scanner rowScanner) (*models.ResetToken, error) {
	var token models.ResetToken
	var usedAt *time.Time

	err := scanner.Scan(
		&token.ID, &token.AdminID, &token.TokenHash,
		&token.ExpiresAt, &usedAt, &token.CreatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	token.UsedAt = usedAt
	return &token, nil
}

// Create inserts a new recovery token record. For the single-live-token
// variant it first marks all prior unused tokens used; run it inside a
// transaction so both writes commit together.
func (r *ResetTokenRepository) Create(ctx context.Context, q database.Querier, adminID, tokenHash string, expiresAt time.Time) (*models.ResetToken, error) {
	if r.supersedePrior {
		invalidate := `UPDATE ` + r.table + ` SET used_at = NOW() WHERE admin_id = $1 AND used_at IS NULL`
		if _, err := q.Exec(ctx, invalidate, adminID); err != nil {
			return nil, database.MapPostgresError(err)
		}
	}

	query := `
		INSERT INTO ` + r.table + ` (id, admin_id, token_hash, expires_at)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + resetTokenColumns

	return scanResetTokenRow(q.QueryRow(ctx, query, uuid.New().String(), adminID, tokenHash, expiresAt))
}

// FindLatestUnused returns the most recently created unused record matching
// the token hash, or ErrNotFound. Expiry is checked by the caller so an
// expired-but-matching token yields the same error as a missing one.
func (r *ResetTokenRepository) FindLatestUnused(ctx context.Context, adminID, tokenHash string) (*models.ResetToken, error) {
	query := `
		SELECT ` + resetTokenColumns + `
		FROM ` + r.table + `
		WHERE admin_id = $1 AND token_hash = $2 AND used_at IS NULL
		ORDER BY created_at DESC
		LIMIT 1
	`
	return scanResetTokenRow(r.pool.QueryRow(ctx, query, adminID, tokenHash))
}

// MarkUsed stamps the record used. Takes a Querier so it can commit together
// with the recovery's side effect (password change or 2FA disable).
func (r *ResetTokenRepository) MarkUsed(ctx context.Context, q database.Querier, id string) error {
	query := `UPDATE ` + r.table + ` SET used_at = NOW() WHERE id = $1 AND used_at IS NULL`
	result, err := q.Exec(ctx, query, id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// DeleteExpiredBefore purges long-expired rows.
func (r *ResetTokenRepository) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM ` + r.table + ` WHERE expires_at < $1`
	result, err := r.pool.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, database.MapPostgresError(err)
	}
	return result.RowsAffected(), nil
}
