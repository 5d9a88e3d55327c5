package inventory

import (
	"context"
	"math"
	"sort"

	"github.com/jhoicas/taller-api/internal/application/dto"
	"github.com/jhoicas/taller-api/internal/application/ports"
	"github.com/jhoicas/taller-api/internal/domain/repository"
	"github.com/jhoicas/taller-api/internal/domain/stock"
)

// idealFactor cuántas veces el mínimo se considera stock sano tras reponer.
const idealFactor = 1.5

// ReplenishmentUseCase genera la lista de reposición de refacciones y accesorios.
// Combina el estado de stock con las salidas recientes para priorizar los SKUs críticos.
type ReplenishmentUseCase struct {
	productRepo repository.ProductRepository
	movRepo     repository.InventoryMovementRepository
	clock       ports.Clock
}

// NewReplenishmentUseCase construye el caso de uso de reposición.
func NewReplenishmentUseCase(
	productRepo repository.ProductRepository,
	movRepo repository.InventoryMovementRepository,
	clock ports.Clock,
) *ReplenishmentUseCase {
	return &ReplenishmentUseCase{productRepo: productRepo, movRepo: movRepo, clock: clock}
}

// GenerateReplenishmentList devuelve los productos en estado Bajo o Agotado con la cantidad
// sugerida de pedido y un ranking de prioridad por salidas de los últimos 90 días.
func (uc *ReplenishmentUseCase) GenerateReplenishmentList(ctx context.Context) ([]dto.ReplenishmentSuggestion, error) {
	products, err := uc.productRepo.ListBelowMinimum(ctx)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return []dto.ReplenishmentSuggestion{}, nil
	}

	outflow, err := uc.movRepo.OutflowSince(ctx, uc.clock.Now().AddDate(0, 0, -90))
	if err != nil {
		return nil, err
	}

	suggestions := make([]dto.ReplenishmentSuggestion, 0, len(products))
	for _, p := range products {
		lv := stock.LevelOf(p)
		ideal := int(math.Ceil(float64(lv.Min) * idealFactor))
		if ideal < 1 {
			ideal = 1
		}
		suggestions = append(suggestions, dto.ReplenishmentSuggestion{
			ProductID:         p.ID,
			SKU:               p.SKU,
			Name:              p.Name,
			Category:          p.Category,
			Stock:             lv.Stock,
			Reserved:          lv.Reserved,
			Available:         lv.Available(),
			MinStock:          lv.Min,
			Status:            lv.Status(),
			IdealStock:        ideal,
			SuggestedOrderQty: max(ideal-lv.Available(), 0),
			UnitsOutLast90:    outflow[p.ID],
		})
	}

	// Primero mayor rotación, luego mayor déficit; el SKU desempata.
	sort.SliceStable(suggestions, func(i, j int) bool {
		a, b := suggestions[i], suggestions[j]
		if a.UnitsOutLast90 != b.UnitsOutLast90 {
			return a.UnitsOutLast90 > b.UnitsOutLast90
		}
		if a.SuggestedOrderQty != b.SuggestedOrderQty {
			return a.SuggestedOrderQty > b.SuggestedOrderQty
		}
		return a.SKU < b.SKU
	})
	for i := range suggestions {
		suggestions[i].Priority = i + 1
	}
	return suggestions, nil
}
