package warranty

import (
	"context"

	"github.com/jhoicas/taller-api/internal/application/dto"
	"github.com/jhoicas/taller-api/internal/application/ports"
	"github.com/jhoicas/taller-api/internal/domain/entity"
	"github.com/jhoicas/taller-api/internal/domain/repository"
	domwarranty "github.com/jhoicas/taller-api/internal/domain/warranty"
)

// UseCase proyección de garantías; se recalcula en cada consulta.
type UseCase struct {
	tickets  repository.TicketRepository
	products repository.ProductRepository
	clock    ports.Clock
}

// NewUseCase construye el caso de uso.
func NewUseCase(tickets repository.TicketRepository, products repository.ProductRepository, clock ports.Clock) *UseCase {
	return &UseCase{tickets: tickets, products: products, clock: clock}
}

// List garantías de todos los tickets completados. Con userID != "" filtra por solicitante.
func (uc *UseCase) List(ctx context.Context, userID string) ([]dto.WarrantyResponse, error) {
	tickets, err := uc.tickets.ListCompleted(ctx)
	if err != nil {
		return nil, err
	}
	if userID != "" {
		filtered := tickets[:0]
		for _, t := range tickets {
			if t.UserID == userID {
				filtered = append(filtered, t)
			}
		}
		tickets = filtered
	}

	seen := map[string]struct{}{}
	var ids []string
	for _, t := range tickets {
		for _, it := range t.Items {
			if _, ok := seen[it.ProductID]; !ok {
				seen[it.ProductID] = struct{}{}
				ids = append(ids, it.ProductID)
			}
		}
	}
	products := make(map[string]*entity.Product, len(ids))
	if len(ids) > 0 {
		list, err := uc.products.ListByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		for _, p := range list {
			products[p.ID] = p
		}
	}

	ws := domwarranty.Derive(tickets, products, uc.clock.Now())
	out := make([]dto.WarrantyResponse, 0, len(ws))
	for _, w := range ws {
		out = append(out, dto.WarrantyResponse{
			TicketCode:  w.TicketCode,
			UserID:      w.UserID,
			ProductID:   w.ProductID,
			SKU:         w.SKU,
			ProductName: w.ProductName,
			Quantity:    w.Quantity,
			Months:      w.Months,
			StartsAt:    w.StartsAt,
			EndsAt:      w.EndsAt,
			Status:      w.Status,
		})
	}
	return out, nil
}
