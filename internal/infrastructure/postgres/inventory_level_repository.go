package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/inventory-alerts/internal/domain/repository"
)

var _ repository.InventoryLevelRepository = (*InventoryLevelRepo)(nil)

// belowMinStockQuery join stock × producto × bodega con el predicado de alerta.
// Solo se consideran registros de stock existentes; un producto sin fila en una bodega no alerta.
const belowMinStockQuery = `
	SELECT
		p.company_id,
		p.id,
		p.name,
		w.id,
		w.name,
		s.quantity,
		p.min_stock_level
	FROM stock s
	JOIN products p   ON p.id = s.product_id
	JOIN warehouses w ON w.id = s.warehouse_id
	WHERE p.is_active
	  AND s.quantity >= 0
	  AND s.quantity < p.min_stock_level`

// InventoryLevelRepo implementación de InventoryLevelRepository sobre PostgreSQL.
type InventoryLevelRepo struct {
	q Querier
}

// NewInventoryLevelRepository construye el adaptador. Acepta pool o tx (Querier).
func NewInventoryLevelRepository(q Querier) *InventoryLevelRepo {
	return &InventoryLevelRepo{q: q}
}

// ListBelowMinStock devuelve los pares (producto, bodega) de productos activos con 0 <= stock < mínimo,
// de todas las empresas.
func (r *InventoryLevelRepo) ListBelowMinStock(ctx context.Context) ([]repository.LowStockRow, error) {
	rows, err := r.q.Query(ctx, belowMinStockQuery+`
	ORDER BY p.id, w.id`)
	if err != nil {
		return nil, fmt.Errorf("list below min stock: %w", err)
	}
	return scanLowStockRows(rows)
}

// ListBelowMinStockByCompany mismo predicado, solo productos de companyID.
func (r *InventoryLevelRepo) ListBelowMinStockByCompany(ctx context.Context, companyID string) ([]repository.LowStockRow, error) {
	if !isUUID(companyID) {
		return []repository.LowStockRow{}, nil
	}
	rows, err := r.q.Query(ctx, belowMinStockQuery+`
	  AND p.company_id = $1
	ORDER BY p.id, w.id`, companyID)
	if err != nil {
		return nil, fmt.Errorf("list below min stock company: %w", err)
	}
	return scanLowStockRows(rows)
}

func scanLowStockRows(rows pgx.Rows) ([]repository.LowStockRow, error) {
	defer rows.Close()
	list := make([]repository.LowStockRow, 0)
	for rows.Next() {
		var row repository.LowStockRow
		if err := rows.Scan(
			&row.CompanyID, &row.ProductID, &row.ProductName,
			&row.WarehouseID, &row.WarehouseName,
			&row.Quantity, &row.MinStockLevel,
		); err != nil {
			return nil, fmt.Errorf("scan low stock row: %w", err)
		}
		list = append(list, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate low stock rows: %w", err)
	}
	return list, nil
}
