package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/inventory-alerts/internal/domain"
	"github.com/jhoicas/inventory-alerts/internal/domain/entity"
	"github.com/jhoicas/inventory-alerts/internal/domain/repository"
	"github.com/jhoicas/inventory-alerts/pkg/logger"
)

const (
	defaultListLimit = 50
	maxListLimit     = 100
)

// Publisher encola la entrega en tiempo real; nunca bloquea ni devuelve error al llamador.
type Publisher interface {
	Publish(userID string, payload []byte) bool
}

// MetricsRecorder subconjunto de métricas que usa el servicio.
type MetricsRecorder interface {
	NotificationCreated()
	NotificationsSwept(n int)
}

// CreateInput datos para crear una notificación. TTLDays <= 0 usa el valor por defecto del servicio.
type CreateInput struct {
	UserID           string
	Title            string
	Message          string
	NotificationType string
	ReferenceID      *string
	ReferenceType    *string
	TTLDays          int
}

// Service buzón de notificaciones por usuario con vencimiento.
type Service struct {
	repo      repository.NotificationRepository
	publisher Publisher
	ttlDays   int
	metrics   MetricsRecorder
	log       *logger.Logger
	now       func() time.Time
}

// NewService construye el servicio. publisher y metrics pueden ser nil.
func NewService(repo repository.NotificationRepository, publisher Publisher, ttlDays int, metrics MetricsRecorder, log *logger.Logger) *Service {
	if ttlDays <= 0 {
		ttlDays = entity.DefaultNotificationTTLDays
	}
	return &Service{
		repo:      repo,
		publisher: publisher,
		ttlDays:   ttlDays,
		metrics:   metrics,
		log:       log,
		now:       time.Now,
	}
}

// Create persiste la notificación con expires_at = ahora + TTL y encola el push al destinatario.
// Un fallo del push no afecta el resultado: la notificación ya quedó guardada.
func (s *Service) Create(ctx context.Context, in CreateInput) (*entity.Notification, error) {
	if in.UserID == "" || in.Title == "" || in.NotificationType == "" {
		return nil, domain.ErrInvalidInput
	}
	ttl := in.TTLDays
	if ttl <= 0 {
		ttl = s.ttlDays
	}
	now := s.now().UTC()
	n := &entity.Notification{
		ID:               uuid.New().String(),
		UserID:           in.UserID,
		Title:            in.Title,
		Message:          in.Message,
		NotificationType: in.NotificationType,
		ReferenceID:      in.ReferenceID,
		ReferenceType:    in.ReferenceType,
		IsRead:           false,
		CreatedAt:        now,
		ExpiresAt:        now.AddDate(0, 0, ttl),
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, fmt.Errorf("crear notificación: %w", err)
	}
	if s.metrics != nil {
		s.metrics.NotificationCreated()
	}
	s.publish(n)
	return n, nil
}

func (s *Service) publish(n *entity.Notification) {
	if s.publisher == nil {
		return
	}
	payload, err := EncodeNotification(n)
	if err != nil {
		s.log.Warn().Err(err).Str("notification_id", n.ID).Msg("serializar push")
		return
	}
	s.publisher.Publish(n.UserID, payload)
}

// ListForUser devuelve las notificaciones vigentes del usuario, más recientes primero.
func (s *Service) ListForUser(ctx context.Context, userID string, skip, limit int, unreadOnly bool) ([]*entity.Notification, error) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	list, err := s.repo.ListByUser(ctx, repository.NotificationFilter{
		UserID:     userID,
		Now:        s.now().UTC(),
		Offset:     skip,
		Limit:      limit,
		UnreadOnly: unreadOnly,
	})
	if err != nil {
		return nil, fmt.Errorf("listar notificaciones: %w", err)
	}
	return list, nil
}

// UnreadCount cuenta las notificaciones vigentes sin leer.
func (s *Service) UnreadCount(ctx context.Context, userID string) (int, error) {
	n, err := s.repo.CountUnread(ctx, userID, s.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("contar no leídas: %w", err)
	}
	return n, nil
}

// MarkRead marca como leída. Devuelve (nil, nil) si no existe, si el id no es un UUID
// o si pertenece a otro usuario.
func (s *Service) MarkRead(ctx context.Context, id, userID string) (*entity.Notification, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}
	n, err := s.repo.MarkRead(ctx, id, userID)
	if err != nil {
		return nil, fmt.Errorf("marcar leída: %w", err)
	}
	return n, nil
}

// MarkAllRead marca como leídas todas las vigentes sin leer del usuario.
func (s *Service) MarkAllRead(ctx context.Context, userID string) (int, error) {
	n, err := s.repo.MarkAllRead(ctx, userID, s.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("marcar todas leídas: %w", err)
	}
	return n, nil
}

// Remove elimina la notificación. ErrNotFound si no existe, ErrForbidden si es de otro usuario.
func (s *Service) Remove(ctx context.Context, id, userID string) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrNotFound
	}
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("obtener notificación: %w", err)
	}
	if n == nil {
		return domain.ErrNotFound
	}
	if n.UserID != userID {
		return domain.ErrForbidden
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("eliminar notificación: %w", err)
	}
	return nil
}

// SweepExpired elimina todas las notificaciones vencidas (expires_at <= ahora).
func (s *Service) SweepExpired(ctx context.Context) (int, error) {
	deleted, err := s.repo.DeleteExpired(ctx, s.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("limpiar notificaciones vencidas: %w", err)
	}
	if s.metrics != nil {
		s.metrics.NotificationsSwept(deleted)
	}
	return deleted, nil
}
