package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/taller-api/internal/application/warranty"
	"github.com/jhoicas/taller-api/internal/domain/entity"
)

// WarrantyHandler garantías derivadas de tickets completados.
type WarrantyHandler struct {
	uc *warranty.UseCase
}

// NewWarrantyHandler construye el handler.
func NewWarrantyHandler(uc *warranty.UseCase) *WarrantyHandler {
	return &WarrantyHandler{uc: uc}
}

// List godoc
// @Summary      Listar garantías
// @Description  Un Técnico solo ve las propias; Recepción y Administrador pueden filtrar por user_id.
// @Tags         warranties
// @Security     Bearer
// @Produce      json
// @Param        user_id  query  string  false  "Filtrar por solicitante"
// @Success      200  {array}  dto.WarrantyResponse
// @Router       /api/warranties [get]
func (h *WarrantyHandler) List(c *fiber.Ctx) error {
	userID := c.Query("user_id")
	if GetRole(c) == entity.RoleTechnician {
		userID = GetUserID(c)
	}
	out, err := h.uc.List(c.UserContext(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
