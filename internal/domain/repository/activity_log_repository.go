package repository

import (
	"context"

	"github.com/jhoicas/inventory-alerts/internal/domain/entity"
)

// ActivityLogRepository puerto del registro de actividad (solo inserción y lectura).
type ActivityLogRepository interface {
	Append(ctx context.Context, entry *entity.ActivityLog) error
	// ListRecent últimas entradas de la empresa, más recientes primero.
	ListRecent(ctx context.Context, companyID string, limit int) ([]*entity.ActivityLog, error)
}
