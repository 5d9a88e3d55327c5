package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/taller-api/internal/application/dto"
	"github.com/jhoicas/taller-api/internal/application/payment"
)

// PaymentHandler abonos a órdenes y ventas.
type PaymentHandler struct {
	uc *payment.UseCase
}

// NewPaymentHandler construye el handler.
func NewPaymentHandler(uc *payment.UseCase) *PaymentHandler {
	return &PaymentHandler{uc: uc}
}

// Record godoc
// @Summary      Registrar pago
// @Description  Recalcula saldo y estado de pago. Si una orden queda saldada y lista para entrega, intenta entregarla.
// @Tags         payments
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RecordPaymentRequest  true  "owner_type order|sale, owner_id, amount, method"
// @Success      201   {object}  dto.PaymentResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/payments [post]
func (h *PaymentHandler) Record(c *fiber.Ctx) error {
	var in dto.RecordPaymentRequest
	if err := bind(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.Record(c.UserContext(), GetUserID(c), GetRole(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}
