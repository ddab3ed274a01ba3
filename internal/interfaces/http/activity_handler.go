package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/inventory-alerts/internal/application/dto"
	"github.com/jhoicas/inventory-alerts/internal/domain/repository"
)

// ActivityHandler actividad reciente (incluye las alertas generadas por el sistema).
type ActivityHandler struct {
	repo repository.ActivityLogRepository
}

// NewActivityHandler construye el handler.
func NewActivityHandler(repo repository.ActivityLogRepository) *ActivityHandler {
	return &ActivityHandler{repo: repo}
}

// Recent godoc
// @Summary      Actividad reciente de la empresa
// @Tags         activity
// @Produce      json
// @Security     BearerAuth
// @Param        limit  query  int  false  "máximo 100"
// @Success      200  {array}  dto.ActivityResponse
// @Router       /api/activity [get]
func (h *ActivityHandler) Recent(c *fiber.Ctx) error {
	page := dto.PageRequest{Limit: c.QueryInt("limit", 20)}
	page.DefaultPage(20, 100)
	list, err := h.repo.ListRecent(c.UserContext(), GetCompanyID(c), page.Limit)
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.ActivityResponse, 0, len(list))
	for _, e := range list {
		out = append(out, dto.ToActivityResponse(e))
	}
	return c.JSON(out)
}
