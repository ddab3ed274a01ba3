package alerting

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/inventory-alerts/internal/domain/entity"
	"github.com/jhoicas/inventory-alerts/internal/domain/repository"
	"github.com/jhoicas/inventory-alerts/pkg/logger"
	"github.com/shopspring/decimal"
)

// ScanResult resultado de una revisión de stock.
type ScanResult struct {
	AlertsCreated int                     `json:"alerts_created"`
	Details       []entity.AlertCandidate `json:"details"`
}

// Engine detecta pares (producto, bodega) bajo el mínimo y deja rastro en el log de actividad.
// Cada llamada a ScanAndAlert vuelve a alertar todos los pares que sigan bajo mínimo.
type Engine struct {
	levels  repository.InventoryLevelRepository
	tx      TxRunner
	metrics MetricsRecorder
	log     *logger.Logger
	now     func() time.Time
}

// NewEngine construye el motor. metrics puede ser nil.
func NewEngine(levels repository.InventoryLevelRepository, tx TxRunner, metrics MetricsRecorder, log *logger.Logger) *Engine {
	return &Engine{
		levels:  levels,
		tx:      tx,
		metrics: metrics,
		log:     log,
		now:     time.Now,
	}
}

// ListLowStockItems devuelve los candidatos actuales sin efectos secundarios.
func (e *Engine) ListLowStockItems(ctx context.Context) ([]entity.AlertCandidate, error) {
	rows, err := e.levels.ListBelowMinStock(ctx)
	if err != nil {
		return nil, fmt.Errorf("list low stock: %w", err)
	}
	return toCandidates(rows), nil
}

// ListLowStockItemsForCompany igual que ListLowStockItems, solo con productos de la empresa.
func (e *Engine) ListLowStockItemsForCompany(ctx context.Context, companyID string) ([]entity.AlertCandidate, error) {
	rows, err := e.levels.ListBelowMinStockByCompany(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("list low stock company %s: %w", companyID, err)
	}
	return toCandidates(rows), nil
}

func toCandidates(rows []repository.LowStockRow) []entity.AlertCandidate {
	candidates := make([]entity.AlertCandidate, 0, len(rows))
	for _, r := range rows {
		// El repositorio ya filtra; se revalida el predicado para no alertar filas fuera de rango.
		if r.Quantity.IsNegative() || !r.Quantity.LessThan(decimal.NewFromInt(r.MinStockLevel)) {
			continue
		}
		candidates = append(candidates, entity.NewAlertCandidate(
			r.CompanyID, r.ProductID, r.ProductName, r.WarehouseID, r.WarehouseName, r.Quantity, r.MinStockLevel,
		))
	}
	return candidates
}

// ScanAndAlert escribe una entrada de actividad "alert" por candidato (user_id nulo, referencia al producto)
// y devuelve el conteo y el detalle. Sin candidatos el resultado es 0 y lista vacía.
func (e *Engine) ScanAndAlert(ctx context.Context) (*ScanResult, error) {
	candidates, err := e.ListLowStockItems(ctx)
	if err != nil {
		return nil, err
	}
	result := &ScanResult{Details: candidates}
	if len(candidates) == 0 {
		return result, nil
	}

	refType := entity.ActivityTypeProduct
	err = e.tx.RunActivity(ctx, func(activity repository.ActivityLogRepository) error {
		for i := range candidates {
			c := &candidates[i]
			productID := c.ProductID
			entry := &entity.ActivityLog{
				CompanyID:     c.CompanyID,
				ActivityType:  entity.ActivityTypeAlert,
				Action:        c.Action(),
				ItemName:      c.ItemName(),
				UserID:        nil,
				ReferenceID:   &productID,
				ReferenceType: &refType,
				CreatedAt:     e.now(),
			}
			if err := activity.Append(ctx, entry); err != nil {
				return fmt.Errorf("registrar alerta %s: %w", c.Key(), err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for i := range candidates {
		if e.metrics != nil {
			e.metrics.AlertEmitted(string(candidates[i].Severity))
		}
	}
	result.AlertsCreated = len(candidates)
	e.log.Debug().Int("alerts_created", result.AlertsCreated).Msg("revisión de stock completada")
	return result, nil
}
