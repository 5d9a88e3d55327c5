package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/taller-api/internal/application/dto"
	"github.com/jhoicas/taller-api/internal/application/inventory"
)

// InventoryHandler movimientos manuales y consulta de stock.
type InventoryHandler struct {
	uc            *inventory.RegisterMovementUseCase
	replenishment *inventory.ReplenishmentUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(uc *inventory.RegisterMovementUseCase, replenishment *inventory.ReplenishmentUseCase) *InventoryHandler {
	return &InventoryHandler{uc: uc, replenishment: replenishment}
}

// RegisterMovement godoc
// @Summary      Registrar movimiento de inventario
// @Description  Entrada, Salida, Ajuste (quantity = nuevo total) o Devolución.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterMovementRequest  true  "product_id, type, quantity, motive"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [post]
func (h *InventoryHandler) RegisterMovement(c *fiber.Ctx) error {
	var in dto.RegisterMovementRequest
	if err := bind(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.RegisterMovement(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetStock godoc
// @Summary      Stock de un producto
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {object}  dto.StockResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id}/stock [get]
func (h *InventoryHandler) GetStock(c *fiber.Ctx) error {
	out, err := h.uc.GetStock(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ListMovements godoc
// @Summary      Movimientos de un producto (más recientes primero)
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id      path   string  true   "ID del producto"
// @Param        limit   query  int     false  "Máximo (default 20)"
// @Param        offset  query  int     false  "Desplazamiento"
// @Success      200  {object}  dto.MovementListResponse
// @Router       /api/products/{id}/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	page := dto.PageRequest{Limit: c.QueryInt("limit", 0), Offset: c.QueryInt("offset", 0)}
	page.Normalize()
	out, err := h.uc.ListMovements(c.UserContext(), c.Params("id"), page.Limit, page.Offset)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ReplenishmentList godoc
// @Summary      Lista de reposición
// @Description  Productos en estado Bajo o Agotado con cantidad sugerida, priorizados por salidas de 90 días.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.ReplenishmentSuggestion
// @Router       /api/inventory/replenishment-list [get]
func (h *InventoryHandler) ReplenishmentList(c *fiber.Ctx) error {
	out, err := h.replenishment.GenerateReplenishmentList(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
