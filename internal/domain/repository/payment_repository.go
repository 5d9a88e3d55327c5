package repository

import (
	"context"

	"github.com/jhoicas/taller-api/internal/domain/entity"
)

// PaymentRepository pagos inmutables; la suma por dueño es el monto pagado.
type PaymentRepository interface {
	Create(ctx context.Context, payment *entity.Payment) error
	// ListByOwner en orden de creación.
	ListByOwner(ctx context.Context, ownerType, ownerID string) ([]entity.Payment, error)
}
