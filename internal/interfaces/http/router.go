package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/inventory-alerts/internal/application/alerting"
	"github.com/jhoicas/inventory-alerts/internal/application/auth"
	"github.com/jhoicas/inventory-alerts/internal/application/notification"
	"github.com/jhoicas/inventory-alerts/internal/domain/entity"
	"github.com/jhoicas/inventory-alerts/internal/domain/repository"
	"github.com/jhoicas/inventory-alerts/internal/infrastructure/realtime"
	"github.com/jhoicas/inventory-alerts/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC        *auth.AuthUseCase
	LowStockUC    *alerting.LowStockCheckUseCase
	Notifications *notification.Service
	Activity      repository.ActivityLogRepository
	Registry      *realtime.Registry
	JWTSecret     string
	WSPingPeriod  time.Duration
	Log           *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")
	requireAuth := AuthMiddleware(deps.JWTSecret)

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC)
	api.Post("/auth/login", authHandler.Login)

	// Alertas de stock
	alerts := api.Group("/alerts", requireAuth)
	alertHandler := NewAlertHandler(deps.LowStockUC, deps.Log)
	alerts.Post("/check-low-stock", RequireRole(entity.RoleAdmin, entity.RoleBodeguero), alertHandler.CheckLowStock)
	alerts.Get("/low-stock-items", alertHandler.LowStockItems)

	// Buzón de notificaciones del usuario autenticado
	notifications := api.Group("/notifications", requireAuth)
	notificationHandler := NewNotificationHandler(deps.Notifications)
	notifications.Get("/", notificationHandler.List)
	notifications.Get("/unread-count", notificationHandler.UnreadCount)
	notifications.Put("/read-all", notificationHandler.MarkAllRead)
	notifications.Put("/:id/read", notificationHandler.MarkRead)
	notifications.Delete("/:id", notificationHandler.Delete)

	// Actividad reciente
	activityHandler := NewActivityHandler(deps.Activity)
	api.Get("/activity", requireAuth, activityHandler.Recent)

	// Tiempo real (token por query en el handshake)
	wsHandler := NewWebSocketHandler(deps.Registry, deps.WSPingPeriod, deps.Log)
	api.Get("/ws/stats", requireAuth, RequireRole(entity.RoleAdmin), wsHandler.Stats)
	api.Get("/ws/notifications", QueryTokenMiddleware(deps.JWTSecret), wsHandler.Upgrade, wsHandler.Notifications())
}
