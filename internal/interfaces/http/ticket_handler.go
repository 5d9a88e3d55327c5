package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/taller-api/internal/application/dto"
	"github.com/jhoicas/taller-api/internal/application/ticket"
)

// TicketHandler tickets de retiro: checkout, canje, cancelación y comprobante.
type TicketHandler struct {
	uc       *ticket.UseCase
	receipts ticket.ReceiptGenerator
}

// NewTicketHandler construye el handler.
func NewTicketHandler(uc *ticket.UseCase, receipts ticket.ReceiptGenerator) *TicketHandler {
	return &TicketHandler{uc: uc, receipts: receipts}
}

// Create godoc
// @Summary      Crear ticket de retiro (checkout del carrito)
// @Description  Reserva todas las líneas o ninguna. El código vence en 24 horas.
// @Tags         tickets
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateTicketRequest  true  "Líneas producto/cantidad"
// @Success      201   {object}  dto.TicketResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/tickets [post]
func (h *TicketHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateTicketRequest
	if err := bind(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.Create(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Validate godoc
// @Summary      Canjear ticket en almacén
// @Tags         tickets
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ValidateTicketRequest  true  "Código de 6 caracteres"
// @Success      200   {object}  dto.TicketResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      410   {object}  dto.ErrorResponse
// @Router       /api/tickets/validate [post]
func (h *TicketHandler) Validate(c *fiber.Ctx) error {
	var in dto.ValidateTicketRequest
	if err := bind(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.Validate(c.UserContext(), in.Code, GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Cancel godoc
// @Summary      Cancelar ticket pendiente
// @Tags         tickets
// @Security     Bearer
// @Produce      json
// @Param        code  path  string  true  "Código del ticket"
// @Success      200   {object}  dto.TicketResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/tickets/{code}/cancel [post]
func (h *TicketHandler) Cancel(c *fiber.Ctx) error {
	out, err := h.uc.Cancel(c.UserContext(), c.Params("code"), GetUserID(c), GetRole(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Get godoc
// @Summary      Consultar ticket por código
// @Tags         tickets
// @Security     Bearer
// @Produce      json
// @Param        code  path  string  true  "Código del ticket (sin distinguir mayúsculas)"
// @Success      200   {object}  dto.TicketResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/tickets/{code} [get]
func (h *TicketHandler) Get(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), c.Params("code"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Receipt godoc
// @Summary      Comprobante PDF del ticket
// @Tags         tickets
// @Security     Bearer
// @Produce      application/pdf
// @Param        code  path  string  true  "Código del ticket"
// @Success      200   {file}  binary
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/tickets/{code}/pdf [get]
func (h *TicketHandler) Receipt(c *fiber.Ctx) error {
	pdf, filename, err := h.uc.Receipt(c.UserContext(), c.Params("code"), h.receipts)
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="`+filename+`"`)
	return c.Send(pdf)
}

// Expire godoc
// @Summary      Expirar tickets vencidos y liberar sus reservas
// @Tags         tickets
// @Security     Bearer
// @Produce      json
// @Param        limit  query  int  false  "Máximo de tickets por barrido (default 100)"
// @Success      200    {object}  dto.ExpireResponse
// @Router       /api/tickets/expire [post]
func (h *TicketHandler) Expire(c *fiber.Ctx) error {
	n, err := h.uc.ExpireStale(c.UserContext(), c.QueryInt("limit", 0))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ExpireResponse{Expired: n})
}
