package alerting

import (
	"context"

	"github.com/jhoicas/inventory-alerts/internal/domain/repository"
)

// TxRunner ejecuta fn dentro de una transacción, con el registro de actividad atado a esa tx.
// Todas las entradas de una revisión se confirman juntas.
type TxRunner interface {
	RunActivity(ctx context.Context, fn func(activity repository.ActivityLogRepository) error) error
}

// MetricsRecorder subconjunto de métricas que usa el paquete.
type MetricsRecorder interface {
	AlertEmitted(severity string)
	AlertSuppressed()
}
