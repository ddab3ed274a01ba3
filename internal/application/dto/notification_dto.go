package dto

import (
	"time"

	"github.com/jhoicas/inventory-alerts/internal/domain/entity"
)

// NotificationResponse salida de una notificación.
type NotificationResponse struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	Title            string    `json:"title"`
	Message          string    `json:"message"`
	NotificationType string    `json:"notification_type"`
	ReferenceID      *string   `json:"reference_id"`
	ReferenceType    *string   `json:"reference_type"`
	IsRead           bool      `json:"is_read"`
	CreatedAt        time.Time `json:"created_at"`
	ExpiresAt        time.Time `json:"expires_at"`
}

// UnreadCountResponse salida de GET /api/notifications/unread-count.
type UnreadCountResponse struct {
	UnreadCount int `json:"unread_count"`
}

// MarkAllReadResponse salida de PUT /api/notifications/read-all.
type MarkAllReadResponse struct {
	Message string `json:"message"`
	Count   int    `json:"count"`
}

// ToNotificationResponse mapea la entidad a su salida HTTP.
func ToNotificationResponse(n *entity.Notification) NotificationResponse {
	return NotificationResponse{
		ID:               n.ID,
		UserID:           n.UserID,
		Title:            n.Title,
		Message:          n.Message,
		NotificationType: n.NotificationType,
		ReferenceID:      n.ReferenceID,
		ReferenceType:    n.ReferenceType,
		IsRead:           n.IsRead,
		CreatedAt:        n.CreatedAt,
		ExpiresAt:        n.ExpiresAt,
	}
}
