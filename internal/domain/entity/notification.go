package entity

import "time"

// DefaultNotificationTTLDays días de vida de una notificación si no se indica otro valor.
const DefaultNotificationTTLDays = 7

// Tipos de notificación.
const (
	NotificationTypeOrder     = "order"
	NotificationTypeInventory = "inventory"
	NotificationTypeAlert     = "alert"
	NotificationTypeProduct   = "product"
	NotificationTypeSystem    = "system"
)

// Notification entrada del buzón de un usuario. Se elimina al vencer ExpiresAt.
// Invariante: ExpiresAt > CreatedAt.
type Notification struct {
	ID               string
	UserID           string
	Title            string
	Message          string
	NotificationType string
	ReferenceID      *string
	ReferenceType    *string
	IsRead           bool
	CreatedAt        time.Time
	ExpiresAt        time.Time
}

// IsExpired indica si la notificación ya es elegible para la limpieza.
func (n *Notification) IsExpired(now time.Time) bool {
	return !n.ExpiresAt.After(now)
}
