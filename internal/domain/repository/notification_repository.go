package repository

import (
	"context"
	"time"

	"github.com/jhoicas/inventory-alerts/internal/domain/entity"
)

// NotificationFilter parámetros de listado del buzón de un usuario.
type NotificationFilter struct {
	UserID     string
	Now        time.Time // solo notificaciones con expires_at > Now
	Offset     int
	Limit      int
	UnreadOnly bool
}

// NotificationRepository puerto de persistencia del buzón de notificaciones.
type NotificationRepository interface {
	Create(ctx context.Context, n *entity.Notification) error
	GetByID(ctx context.Context, id string) (*entity.Notification, error)
	// ListByUser ordena por created_at descendente.
	ListByUser(ctx context.Context, f NotificationFilter) ([]*entity.Notification, error)
	CountUnread(ctx context.Context, userID string, now time.Time) (int, error)
	// MarkRead devuelve nil si no existe o pertenece a otro usuario.
	MarkRead(ctx context.Context, id, userID string) (*entity.Notification, error)
	MarkAllRead(ctx context.Context, userID string, now time.Time) (int, error)
	Delete(ctx context.Context, id string) error
	// DeleteExpired borra todas las notificaciones con expires_at <= now.
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}
