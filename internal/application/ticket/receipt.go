package ticket

import (
	"context"
	"fmt"

	"github.com/jhoicas/taller-api/internal/application/dto"
)

// ReceiptGenerator genera el comprobante imprimible de un ticket.
type ReceiptGenerator interface {
	TicketReceipt(ctx context.Context, t *dto.TicketResponse) ([]byte, error)
}

// Receipt devuelve el PDF del ticket y el nombre de archivo sugerido.
func (uc *UseCase) Receipt(ctx context.Context, code string, gen ReceiptGenerator) ([]byte, string, error) {
	t, err := uc.Get(ctx, code)
	if err != nil {
		return nil, "", err
	}
	pdf, err := gen.TicketReceipt(ctx, t)
	if err != nil {
		return nil, "", fmt.Errorf("generar comprobante: %w", err)
	}
	return pdf, "ticket-" + t.Code + ".pdf", nil
}
