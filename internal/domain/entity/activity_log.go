package entity

import "time"

// Tipos de actividad.
const (
	ActivityTypeInventory = "inventory"
	ActivityTypeOrder     = "order"
	ActivityTypeProduct   = "product"
	ActivityTypeAlert     = "alert"
)

// ActivityLog entrada inmutable del registro de actividad (auditoría, "actividad reciente").
// UserID nil indica una entrada generada por el sistema. CompanyID acota la lectura por empresa.
type ActivityLog struct {
	ID            string
	CompanyID     string
	ActivityType  string
	Action        string
	ItemName      string
	UserID        *string
	ReferenceID   *string
	ReferenceType *string
	CreatedAt     time.Time
}
