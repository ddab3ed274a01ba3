package alerting

import (
	"context"

	"github.com/jhoicas/inventory-alerts/internal/domain/entity"
	"github.com/jhoicas/inventory-alerts/pkg/logger"
)

// CheckResult resultado de una revisión completa: auditoría + notificaciones.
type CheckResult struct {
	ScanResult
	NotificationsCreated int `json:"notifications_created"`

	notifiedByCompany map[string]int
}

// ForCompany vista del resultado restringida a una empresa: detalle, conteo de alertas y de
// notificaciones de esa empresa. La revisión en sí cubre todas las empresas.
func (r *CheckResult) ForCompany(companyID string) *CheckResult {
	details := make([]entity.AlertCandidate, 0, len(r.Details))
	for _, d := range r.Details {
		if d.CompanyID == companyID {
			details = append(details, d)
		}
	}
	return &CheckResult{
		ScanResult:           ScanResult{AlertsCreated: len(details), Details: details},
		NotificationsCreated: r.notifiedByCompany[companyID],
		notifiedByCompany:    map[string]int{companyID: r.notifiedByCompany[companyID]},
	}
}

// LowStockCheckUseCase revisa el stock y notifica a los responsables.
// Lo invocan el endpoint "revisar ahora" y la tarea programada.
type LowStockCheckUseCase struct {
	engine   *Engine
	notifier *Notifier
	log      *logger.Logger
}

// NewLowStockCheckUseCase construye el caso de uso.
func NewLowStockCheckUseCase(engine *Engine, notifier *Notifier, log *logger.Logger) *LowStockCheckUseCase {
	return &LowStockCheckUseCase{engine: engine, notifier: notifier, log: log}
}

// Run ejecuta ScanAndAlert y notifica cada candidato.
func (uc *LowStockCheckUseCase) Run(ctx context.Context) (*CheckResult, error) {
	scan, err := uc.engine.ScanAndAlert(ctx)
	if err != nil {
		return nil, err
	}
	result := &CheckResult{ScanResult: *scan, notifiedByCompany: map[string]int{}}
	if scan.AlertsCreated == 0 {
		return result, nil
	}
	byCompany, err := uc.notifier.Notify(ctx, scan.Details)
	total := 0
	for _, n := range byCompany {
		total += n
	}
	if err != nil {
		uc.log.Error().Err(err).Int("alerts_created", scan.AlertsCreated).
			Int("notifications_created", total).Msg("notificación de alertas incompleta")
		return nil, err
	}
	result.NotificationsCreated = total
	result.notifiedByCompany = byCompany
	return result, nil
}

// ListLowStockItems consulta de solo lectura para la UI, acotada a la empresa del usuario.
func (uc *LowStockCheckUseCase) ListLowStockItems(ctx context.Context, companyID string) ([]entity.AlertCandidate, error) {
	return uc.engine.ListLowStockItemsForCompany(ctx, companyID)
}
