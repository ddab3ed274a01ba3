package entity

import "github.com/shopspring/decimal"

// AlertSeverity severidad de una alerta de stock.
type AlertSeverity string

const (
	SeverityCritical AlertSeverity = "critical" // agotado
	SeverityWarning  AlertSeverity = "warning"  // stock bajo
)

// AlertKind clasificación de la alerta.
type AlertKind string

const (
	AlertOutOfStock AlertKind = "out_of_stock"
	AlertLowStock   AlertKind = "low_stock"
)

// Acciones registradas en el log de actividad. Las consumen clientes existentes; no traducir.
const (
	ActionOutOfStockAlert = "缺货警报"
	ActionLowStockAlert   = "低库存警报"
)

// AlertCandidate par (producto, bodega) con stock por debajo del mínimo. Derivado, no se persiste.
type AlertCandidate struct {
	CompanyID       string        `json:"company_id"`
	ProductID       string        `json:"product_id"`
	ProductName     string        `json:"product_name"`
	WarehouseID     string        `json:"warehouse_id"`
	WarehouseName   string        `json:"warehouse_name"`
	CurrentQuantity int64         `json:"current_quantity"`
	MinStockLevel   int64         `json:"min_stock_level"`
	Shortage        int64         `json:"shortage"`
	Kind            AlertKind     `json:"kind"`
	Severity        AlertSeverity `json:"severity"`
}

// NewAlertCandidate clasifica un registro bajo mínimo. quantity == 0 es agotado (critical),
// 0 < quantity < minStock es stock bajo (warning). Las cantidades fraccionarias se redondean
// hacia abajo para mostrar y el faltante hacia arriba.
func NewAlertCandidate(companyID, productID, productName, warehouseID, warehouseName string, quantity decimal.Decimal, minStock int64) AlertCandidate {
	c := AlertCandidate{
		CompanyID:       companyID,
		ProductID:       productID,
		ProductName:     productName,
		WarehouseID:     warehouseID,
		WarehouseName:   warehouseName,
		CurrentQuantity: quantity.Floor().IntPart(),
		MinStockLevel:   minStock,
		Shortage:        decimal.NewFromInt(minStock).Sub(quantity).Ceil().IntPart(),
		Kind:            AlertLowStock,
		Severity:        SeverityWarning,
	}
	if quantity.IsZero() {
		c.Kind = AlertOutOfStock
		c.Severity = SeverityCritical
	}
	return c
}

// ItemName etiqueta legible "{producto} - {bodega}".
func (c AlertCandidate) ItemName() string {
	return c.ProductName + " - " + c.WarehouseName
}

// Action etiqueta de la acción para el log de actividad.
func (c AlertCandidate) Action() string {
	if c.Kind == AlertOutOfStock {
		return ActionOutOfStockAlert
	}
	return ActionLowStockAlert
}

// Key identifica el par (producto, bodega).
func (c AlertCandidate) Key() string {
	return c.ProductID + ":" + c.WarehouseID
}
