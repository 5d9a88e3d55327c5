package repository

import (
	"context"
	"time"

	"github.com/jhoicas/taller-api/internal/domain/entity"
)

// InventoryMovementRepository bitácora append-only de movimientos. No hay Update ni Delete.
type InventoryMovementRepository interface {
	Create(ctx context.Context, movement *entity.InventoryMovement) error
	ListByProduct(ctx context.Context, productID string, limit, offset int) ([]*entity.InventoryMovement, error)
	ListByTicket(ctx context.Context, ticketID string) ([]*entity.InventoryMovement, error)
	// OutflowSince unidades salidas por producto desde la fecha dada (Salida en positivo).
	OutflowSince(ctx context.Context, since time.Time) (map[string]int, error)
}
