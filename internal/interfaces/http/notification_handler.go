package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/inventory-alerts/internal/application/dto"
	"github.com/jhoicas/inventory-alerts/internal/application/notification"
)

const (
	notificationsDefaultLimit = 50
	notificationsMaxLimit     = 100
)

// NotificationHandler buzón de notificaciones del usuario autenticado.
type NotificationHandler struct {
	svc *notification.Service
}

// NewNotificationHandler construye el handler.
func NewNotificationHandler(svc *notification.Service) *NotificationHandler {
	return &NotificationHandler{svc: svc}
}

// List godoc
// @Summary      Listar notificaciones vigentes
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Param        skip         query  int   false  "desplazamiento"
// @Param        limit        query  int   false  "máximo 100"
// @Param        unread_only  query  bool  false  "solo no leídas"
// @Success      200  {array}  dto.NotificationResponse
// @Router       /api/notifications [get]
func (h *NotificationHandler) List(c *fiber.Ctx) error {
	page := dto.PageRequest{Skip: c.QueryInt("skip", 0), Limit: c.QueryInt("limit", notificationsDefaultLimit)}
	page.DefaultPage(notificationsDefaultLimit, notificationsMaxLimit)
	list, err := h.svc.ListForUser(c.UserContext(), GetUserID(c), page.Skip, page.Limit, c.QueryBool("unread_only", false))
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.NotificationResponse, 0, len(list))
	for _, n := range list {
		out = append(out, dto.ToNotificationResponse(n))
	}
	return c.JSON(out)
}

// UnreadCount godoc
// @Summary      Contar notificaciones no leídas
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.UnreadCountResponse
// @Router       /api/notifications/unread-count [get]
func (h *NotificationHandler) UnreadCount(c *fiber.Ctx) error {
	n, err := h.svc.UnreadCount(c.UserContext(), GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.UnreadCountResponse{UnreadCount: n})
}

// MarkRead godoc
// @Summary      Marcar notificación como leída
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string  true  "ID de la notificación"
// @Success      200  {object}  dto.NotificationResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/notifications/{id}/read [put]
func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
	n, err := h.svc.MarkRead(c.UserContext(), c.Params("id"), GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	if n == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "notificación no encontrada"})
	}
	return c.JSON(dto.ToNotificationResponse(n))
}

// MarkAllRead godoc
// @Summary      Marcar todas como leídas
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.MarkAllReadResponse
// @Router       /api/notifications/read-all [put]
func (h *NotificationHandler) MarkAllRead(c *fiber.Ctx) error {
	n, err := h.svc.MarkAllRead(c.UserContext(), GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.MarkAllReadResponse{Message: "notificaciones marcadas como leídas", Count: n})
}

// Delete godoc
// @Summary      Eliminar notificación
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string  true  "ID de la notificación"
// @Success      200  {object}  dto.MessageResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/notifications/{id} [delete]
func (h *NotificationHandler) Delete(c *fiber.Ctx) error {
	if err := h.svc.Remove(c.UserContext(), c.Params("id"), GetUserID(c)); err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "notificación eliminada"})
}
