package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/suhejbmusliu/Full-Stack-Blog-Post/internal/database"
	"github.com/suhejbmusliu/Full-Stack-Blog-Post/internal/models"
)

// AdminRepository is the credential store. Each mutation is a named,
// single-row operation; the ones that participate in compound commits take a
// database.Querier so callers can supply a transaction.
type AdminRepository struct {
	pool database.Querier
}

func NewAdminRepository(db *database.DB) *AdminRepository {
	return &AdminRepository{pool: db.Pool}
}

// rowScanner covers pgx.Row and pgx.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

const adminColumns = `id, email, password_hash, name, role, is_active,
	failed_logins, locked_until, last_login_at,
	two_factor_enabled, two_factor_secret, two_factor_temp,
	created_at, updated_at`

func scanAdminRow(scanner rowScanner) (*models.Admin, error) {
	var admin models.Admin
	var name, twoFactorSecret, twoFactorTemp *string
	var lockedUntil, lastLoginAt *time.Time

	err := scanner.Scan(
		&admin.ID, &admin.Email, &admin.PasswordHash, &name, &admin.Role, &admin.IsActive,
		&admin.FailedLogins, &lockedUntil, &lastLoginAt,
		&admin.TwoFactorEnabled, &twoFactorSecret, &twoFactorTemp,
		&admin.CreatedAt, &admin.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	if name != nil {
		admin.Name = *name
	}
	if twoFactorSecret != nil {
		admin.TwoFactorSecret = *twoFactorSecret
	}
	if twoFactorTemp != nil {
		admin.TwoFactorTemp = *twoFactorTemp
	}
	admin.LockedUntil = lockedUntil
	admin.LastLoginAt = lastLoginAt

	return &admin, nil
}

func (r *AdminRepository) GetByID(ctx context.Context, id string) (*models.Admin, error) {
	query := `SELECT ` + adminColumns + ` FROM admins WHERE id = $1`
	return scanAdminRow(r.pool.QueryRow(ctx, query, id))
}

// GetByEmail looks up an admin by its lowercase-normalized email.
func (r *AdminRepository) GetByEmail(ctx context.Context, email string) (*models.Admin, error) {
	query := `SELECT ` + adminColumns + ` FROM admins WHERE email = $1`
	return scanAdminRow(r.pool.QueryRow(ctx, query, email))
}

// Create inserts a new admin. Used by the startup seeding path only; the
// auth subsystem itself never creates accounts.
func (r *AdminRepository) Create(ctx context.Context, admin *models.Admin) (*models.Admin, error) {
	admin.ID = uuid.New().String()
	if admin.Role == "" {
		admin.Role = "ADMIN"
	}

	query := `
		INSERT INTO admins (id, email, password_hash, name, role, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + adminColumns

	return scanAdminRow(r.pool.QueryRow(ctx, query,
		admin.ID, admin.Email, admin.PasswordHash, admin.Name, admin.Role, admin.IsActive,
	))
}

// RecordLoginFailure persists an incremented failure counter and, once the
// lockout threshold is reached, the lockout expiry. The write commits before
// the response so the next attempt observes it.
func (r *AdminRepository) RecordLoginFailure(ctx context.Context, id string, failedLogins int, lockedUntil *time.Time) error {
	query := `
		UPDATE admins SET failed_logins = $1, locked_until = $2, updated_at = NOW()
		WHERE id = $3
	`
	result, err := r.pool.Exec(ctx, query, failedLogins, lockedUntil, id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// RecordLoginSuccess clears the failure counter and lockout and stamps the
// last successful login.
func (r *AdminRepository) RecordLoginSuccess(ctx context.Context, id string) error {
	query := `
		UPDATE admins
		SET failed_logins = 0, locked_until = NULL, last_login_at = NOW(), updated_at = NOW()
		WHERE id = $1
	`
	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// UpdatePassword replaces the password hash. Takes a Querier so the
// password-reset confirm can commit it together with marking the reset token
// used.
func (r *AdminRepository) UpdatePassword(ctx context.Context, q database.Querier, id, passwordHash string) error {
	query := `UPDATE admins SET password_hash = $1, updated_at = NOW() WHERE id = $2`
	result, err := q.Exec(ctx, query, passwordHash, id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// SetTwoFactorPending stores a fresh enrollment secret in the temporary
// slot. The committed secret and enabled flag are untouched.
func (r *AdminRepository) SetTwoFactorPending(ctx context.Context, id, tempSecret string) error {
	query := `UPDATE admins SET two_factor_temp = $1, updated_at = NOW() WHERE id = $2`
	result, err := r.pool.Exec(ctx, query, tempSecret, id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// PromoteTwoFactor moves the pending secret into the committed slot and sets
// the enabled flag in a single statement, so the two slots can never both
// hold a live secret.
func (r *AdminRepository) PromoteTwoFactor(ctx context.Context, id string) error {
	query := `
		UPDATE admins
		SET two_factor_enabled = TRUE,
		    two_factor_secret = two_factor_temp,
		    two_factor_temp = NULL,
		    updated_at = NOW()
		WHERE id = $1 AND two_factor_temp IS NOT NULL
	`
	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNoSetupInProgress
	}
	return nil
}

// DisableTwoFactor clears both secret slots and the enabled flag.
func (r *AdminRepository) DisableTwoFactor(ctx context.Context, q database.Querier, id string) error {
	query := `
		UPDATE admins
		SET two_factor_enabled = FALSE, two_factor_secret = NULL, two_factor_temp = NULL, updated_at = NOW()
		WHERE id = $1
	`
	result, err := q.Exec(ctx, query, id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// ResetTwoFactorRecovery is the lost-device path: clears all 2FA state and
// also unlocks the account, since the owner just proved control of the email.
func (r *AdminRepository) ResetTwoFactorRecovery(ctx context.Context, q database.Querier, id string) error {
	query := `
		UPDATE admins
		SET two_factor_enabled = FALSE,
		    two_factor_secret = NULL,
		    two_factor_temp = NULL,
		    failed_logins = 0,
		    locked_until = NULL,
		    updated_at = NOW()
		WHERE id = $1
	`
	result, err := q.Exec(ctx, query, id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}
