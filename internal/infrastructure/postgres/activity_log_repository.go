package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/inventory-alerts/internal/domain/entity"
	"github.com/jhoicas/inventory-alerts/internal/domain/repository"
)

var _ repository.ActivityLogRepository = (*ActivityLogRepo)(nil)

// ActivityLogRepo registro de actividad append-only sobre PostgreSQL (usable con pool o tx).
type ActivityLogRepo struct {
	q Querier
}

// NewActivityLogRepository construye el adaptador. Pasar pool o tx (Querier).
func NewActivityLogRepository(q Querier) *ActivityLogRepo {
	return &ActivityLogRepo{q: q}
}

// Append inserta la entrada. Completa ID y CreatedAt si vienen vacíos.
func (r *ActivityLogRepo) Append(ctx context.Context, e *entity.ActivityLog) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	query := `
		INSERT INTO activity_logs (id, company_id, activity_type, action, item_name, user_id, reference_id, reference_type, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		e.ID, e.CompanyID, e.ActivityType, e.Action, e.ItemName, e.UserID, e.ReferenceID, e.ReferenceType, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert activity log: %w", err)
	}
	return nil
}

// ListRecent últimas entradas de la empresa, más recientes primero.
func (r *ActivityLogRepo) ListRecent(ctx context.Context, companyID string, limit int) ([]*entity.ActivityLog, error) {
	query := `
		SELECT id, company_id, activity_type, action, item_name, user_id, reference_id, reference_type, created_at
		FROM activity_logs
		WHERE company_id = $1
		ORDER BY created_at DESC
		LIMIT $2`
	if !isUUID(companyID) {
		return []*entity.ActivityLog{}, nil
	}
	rows, err := r.q.Query(ctx, query, companyID, limit)
	if err != nil {
		return nil, fmt.Errorf("list activity logs: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.ActivityLog, 0)
	for rows.Next() {
		var e entity.ActivityLog
		if err := rows.Scan(
			&e.ID, &e.CompanyID, &e.ActivityType, &e.Action, &e.ItemName,
			&e.UserID, &e.ReferenceID, &e.ReferenceType, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan activity log: %w", err)
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}
