package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/taller-api/internal/application/dto"
	"github.com/jhoicas/taller-api/internal/application/order"
)

// OrderHandler órdenes de servicio y su máquina de estados.
type OrderHandler struct {
	uc *order.UseCase
}

// NewOrderHandler construye el handler.
func NewOrderHandler(uc *order.UseCase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

// Create godoc
// @Summary      Recepción de equipo (nueva orden)
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateOrderRequest  true  "Cliente, equipo y prioridad"
// @Success      201   {object}  dto.OrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/orders [post]
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateOrderRequest
	if err := bind(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.Create(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// RecordDiagnosis godoc
// @Summary      Registrar diagnóstico y costo de reparación
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                true  "ID de la orden"
// @Param        body  body  dto.DiagnosisRequest  true  "Diagnóstico"
// @Success      200   {object}  dto.OrderResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/diagnosis [post]
func (h *OrderHandler) RecordDiagnosis(c *fiber.Ctx) error {
	var in dto.DiagnosisRequest
	if err := bind(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.RecordDiagnosis(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// RecordApproval godoc
// @Summary      Registrar aprobación del cliente
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string               true  "ID de la orden"
// @Param        body  body  dto.ApprovalRequest  true  "approved"
// @Success      200   {object}  dto.OrderResponse
// @Router       /api/orders/{id}/approval [post]
func (h *OrderHandler) RecordApproval(c *fiber.Ctx) error {
	var in dto.ApprovalRequest
	if err := bind(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.RecordApproval(c.UserContext(), c.Params("id"), in.Approved)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Transition godoc
// @Summary      Cambiar estado de la orden
// @Description  Valida tabla de transiciones, permiso del rol y precondiciones de negocio.
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                 true  "ID de la orden"
// @Param        body  body  dto.TransitionRequest  true  "Estado destino y notas"
// @Success      200   {object}  dto.OrderResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/transition [post]
func (h *OrderHandler) Transition(c *fiber.Ctx) error {
	var in dto.TransitionRequest
	if err := bind(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.Transition(c.UserContext(), c.Params("id"), GetUserID(c), GetRole(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Get godoc
// @Summary      Obtener orden (incluye transiciones permitidas para el rol)
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la orden"
// @Success      200  {object}  dto.OrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id} [get]
func (h *OrderHandler) Get(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), c.Params("id"), GetRole(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// History godoc
// @Summary      Historial de estados de la orden
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la orden"
// @Success      200  {array}   dto.OrderHistoryResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/history [get]
func (h *OrderHandler) History(c *fiber.Ctx) error {
	out, err := h.uc.History(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
