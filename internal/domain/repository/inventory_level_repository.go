package repository

import (
	"context"

	"github.com/shopspring/decimal"
)

// LowStockRow resultado crudo del join stock × producto × bodega para un par bajo mínimo.
type LowStockRow struct {
	CompanyID     string
	ProductID     string
	ProductName   string
	WarehouseID   string
	WarehouseName string
	Quantity      decimal.Decimal
	MinStockLevel int64
}

// InventoryLevelRepository define el puerto de lectura del stock por bodega+producto (DIP).
// El motor de alertas nunca modifica el inventario.
type InventoryLevelRepository interface {
	// ListBelowMinStock devuelve los registros de productos activos con
	// 0 <= quantity < min_stock_level, en orden estable (producto, bodega).
	ListBelowMinStock(ctx context.Context) ([]LowStockRow, error)
	// ListBelowMinStockByCompany mismo filtro, restringido a los productos de la empresa.
	ListBelowMinStockByCompany(ctx context.Context, companyID string) ([]LowStockRow, error)
}
