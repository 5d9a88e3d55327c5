package sale

import (
	"context"
	"fmt"

	"github.com/jhoicas/taller-api/internal/application/dto"
)

// ReceiptGenerator genera la nota de venta imprimible.
type ReceiptGenerator interface {
	SaleReceipt(ctx context.Context, s *dto.SaleResponse) ([]byte, error)
}

// Receipt devuelve el PDF de la venta y el nombre de archivo sugerido.
func (uc *UseCase) Receipt(ctx context.Context, id string, gen ReceiptGenerator) ([]byte, string, error) {
	s, err := uc.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}
	pdf, err := gen.SaleReceipt(ctx, s)
	if err != nil {
		return nil, "", fmt.Errorf("generar nota de venta: %w", err)
	}
	return pdf, s.Folio + ".pdf", nil
}
