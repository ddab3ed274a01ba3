package alerting

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/inventory-alerts/internal/application/notification"
	"github.com/jhoicas/inventory-alerts/internal/domain/entity"
	"github.com/jhoicas/inventory-alerts/internal/domain/repository"
	"github.com/jhoicas/inventory-alerts/pkg/logger"
	"github.com/patrickmn/go-cache"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// NotificationCreator crea y entrega una notificación (lo implementa *notification.Service).
type NotificationCreator interface {
	Create(ctx context.Context, in notification.CreateInput) (*entity.Notification, error)
}

// Notifier convierte candidatos de alerta en notificaciones para los responsables de inventario
// (admin y bodeguero) de la empresa dueña del producto.
type Notifier struct {
	users         repository.UserRepository
	notifications NotificationCreator
	suppressed    *cache.Cache // nil = sin ventana de supresión
	metrics       MetricsRecorder
	log           *logger.Logger
	printer       *message.Printer
}

// NewNotifier construye el notificador. window > 0 activa la supresión de alertas repetidas
// para el mismo (producto, bodega) durante ese tiempo.
func NewNotifier(users repository.UserRepository, notifications NotificationCreator, window time.Duration, metrics MetricsRecorder, log *logger.Logger) *Notifier {
	n := &Notifier{
		users:         users,
		notifications: notifications,
		metrics:       metrics,
		log:           log,
		printer:       message.NewPrinter(language.Spanish),
	}
	if window > 0 {
		n.suppressed = cache.New(window, 2*window)
	}
	return n
}

// Notify crea una notificación por candidato y destinatario. Devuelve cuántas se crearon por empresa.
// Un fallo de persistencia corta la operación; el mapa refleja lo creado hasta ese punto.
func (n *Notifier) Notify(ctx context.Context, candidates []entity.AlertCandidate) (map[string]int, error) {
	recipientsByCompany := make(map[string][]*entity.User)
	created := make(map[string]int)

	for i := range candidates {
		c := &candidates[i]
		if n.isSuppressed(c.Key()) {
			if n.metrics != nil {
				n.metrics.AlertSuppressed()
			}
			continue
		}

		recipients, ok := recipientsByCompany[c.CompanyID]
		if !ok {
			var err error
			recipients, err = n.users.ListActiveByRoles(ctx, c.CompanyID, entity.AlertRecipientRoles)
			if err != nil {
				return created, fmt.Errorf("destinatarios de alerta: %w", err)
			}
			recipientsByCompany[c.CompanyID] = recipients
		}
		if len(recipients) == 0 {
			n.log.Warn().Str("company_id", c.CompanyID).Str("product_id", c.ProductID).
				Msg("alerta de stock sin destinatarios")
			continue
		}

		title, msg := n.render(c)
		productID := c.ProductID
		refType := entity.ActivityTypeProduct
		for _, u := range recipients {
			_, err := n.notifications.Create(ctx, notification.CreateInput{
				UserID:           u.ID,
				Title:            title,
				Message:          msg,
				NotificationType: entity.NotificationTypeAlert,
				ReferenceID:      &productID,
				ReferenceType:    &refType,
			})
			if err != nil {
				return created, fmt.Errorf("notificar alerta %s: %w", c.Key(), err)
			}
			created[c.CompanyID]++
		}
		n.markNotified(c.Key())
	}
	return created, nil
}

func (n *Notifier) isSuppressed(key string) bool {
	if n.suppressed == nil {
		return false
	}
	_, found := n.suppressed.Get(key)
	return found
}

func (n *Notifier) markNotified(key string) {
	if n.suppressed == nil {
		return
	}
	n.suppressed.SetDefault(key, struct{}{})
}

func (n *Notifier) render(c *entity.AlertCandidate) (title, msg string) {
	if c.Kind == entity.AlertOutOfStock {
		return "Producto agotado", n.printer.Sprintf("%s sin existencias en %s (mínimo %d unidades)",
			c.ProductName, c.WarehouseName, c.MinStockLevel)
	}
	return "Stock bajo", n.printer.Sprintf("%s en %s: %d unidades disponibles, mínimo %d (faltan %d)",
		c.ProductName, c.WarehouseName, c.CurrentQuantity, c.MinStockLevel, c.Shortage)
}
