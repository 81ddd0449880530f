package repositories

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/suhejbmusliu/Full-Stack-Blog-Post/internal/database"
	"github.com/suhejbmusliu/Full-Stack-Blog-Post/internal/models"
)

type AdminLogRepository struct {
	pool database.Querier
}

func NewAdminLogRepository(db *database.DB) *AdminLogRepository {
	return &AdminLogRepository{pool: db.Pool}
}

func (r *AdminLogRepository) Insert(ctx context.Context, log *models.AdminLog) error {
	var meta []byte
	if len(log.Meta) > 0 {
		var err error
		meta, err = json.Marshal(log.Meta)
		if err != nil {
			return err
		}
	}

	query := `
		INSERT INTO admin_logs (id, admin_id, action, entity, entity_id, meta, ip, user_agent)
		VALUES ($1, NULLIF($2, ''), $3, NULLIF($4, ''), NULLIF($5, ''), $6, NULLIF($7, ''), NULLIF($8, ''))`

	_, err := r.pool.Exec(ctx, query,
		uuid.New().String(), log.AdminID, log.Action, log.Entity,
		log.EntityID, meta, log.IP, log.UserAgent,
	)
	return database.MapPostgresError(err)
}

// List returns recent entries newest-first, optionally filtered by action.
func (r *AdminLogRepository) List(ctx context.Context, action string, limit int) ([]*models.AdminLog, error) {
	if limit < 1 || limit > 500 {
		limit = 100
	}

	query := `
		SELECT id, COALESCE(admin_id, ''), action, COALESCE(entity, ''),
			COALESCE(entity_id, ''), meta, COALESCE(ip, ''), COALESCE(user_agent, ''), created_at
		FROM admin_logs
		WHERE ($1 = '' OR action = $1)
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := r.pool.Query(ctx, query, action, limit)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	defer rows.Close()

	logs := []*models.AdminLog{}
	for rows.Next() {
		var entry models.AdminLog
		var meta []byte
		if err := rows.Scan(
			&entry.ID, &entry.AdminID, &entry.Action, &entry.Entity,
			&entry.EntityID, &meta, &entry.IP, &entry.UserAgent, &entry.CreatedAt,
		); err != nil {
			return nil, database.MapPostgresError(err)
		}
		if len(meta) > 0 {
			_ = json.Unmarshal(meta, &entry.Meta)
		}
		logs = append(logs, &entry)
	}
	return logs, database.MapPostgresError(rows.Err())
}

// DeleteBefore prunes entries older than the cutoff.
func (r *AdminLogRepository) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.pool.Exec(ctx, `DELETE FROM admin_logs WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, database.MapPostgresError(err)
	}
	return result.RowsAffected(), nil
}
