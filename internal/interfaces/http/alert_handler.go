package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/inventory-alerts/internal/application/alerting"
	"github.com/jhoicas/inventory-alerts/internal/application/dto"
	"github.com/jhoicas/inventory-alerts/pkg/logger"
)

// AlertHandler revisión de stock bajo bajo demanda.
type AlertHandler struct {
	uc  *alerting.LowStockCheckUseCase
	log *logger.Logger
}

// NewAlertHandler construye el handler de alertas.
func NewAlertHandler(uc *alerting.LowStockCheckUseCase, log *logger.Logger) *AlertHandler {
	return &AlertHandler{uc: uc, log: log}
}

// CheckLowStock godoc
// @Summary      Revisar stock bajo ahora
// @Description  Registra una alerta por cada producto/bodega bajo el mínimo y notifica a administradores y bodegueros.
// @Description  La respuesta solo incluye los productos y notificaciones de la empresa del usuario.
// @Tags         alerts
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.CheckLowStockResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/alerts/check-low-stock [post]
func (h *AlertHandler) CheckLowStock(c *fiber.Ctx) error {
	run, err := h.uc.Run(c.UserContext())
	if err != nil {
		h.log.Error().Err(err).Str("user_id", GetUserID(c)).Msg("revisión de stock bajo")
		return writeError(c, err)
	}
	res := run.ForCompany(GetCompanyID(c))
	return c.JSON(dto.CheckLowStockResponse{
		Message:              "revisión de stock completada",
		AlertsCreated:        res.AlertsCreated,
		NotificationsCreated: res.NotificationsCreated,
		Details:              res.Details,
	})
}

// LowStockItems godoc
// @Summary      Listar productos bajo el mínimo
// @Tags         alerts
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   entity.AlertCandidate
// @Router       /api/alerts/low-stock-items [get]
func (h *AlertHandler) LowStockItems(c *fiber.Ctx) error {
	items, err := h.uc.ListLowStockItems(c.UserContext(), GetCompanyID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(items)
}
