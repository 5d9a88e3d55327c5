package sale

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/taller-api/internal/application/dto"
	"github.com/jhoicas/taller-api/internal/application/inventory"
	"github.com/jhoicas/taller-api/internal/application/ports"
	"github.com/jhoicas/taller-api/internal/domain"
	"github.com/jhoicas/taller-api/internal/domain/entity"
	"github.com/jhoicas/taller-api/internal/domain/repository"
)

// FolioPrefix prefijo de folio de ventas.
const FolioPrefix = "RS-VT-"

// UseCase venta directa de mostrador: descuenta stock y registra una Salida por línea
// en la misma transacción que la venta.
type UseCase struct {
	txRunner ports.TxRunner
	products repository.ProductRepository
	sales    repository.SaleRepository
	clock    ports.Clock
	notifier ports.Notifier
	log      zerolog.Logger
}

// NewUseCase construye el caso de uso.
func NewUseCase(txRunner ports.TxRunner, products repository.ProductRepository, sales repository.SaleRepository, clock ports.Clock, notifier ports.Notifier, log zerolog.Logger) *UseCase {
	return &UseCase{txRunner: txRunner, products: products, sales: sales, clock: clock, notifier: notifier, log: log}
}

// Create cobra el carrito. Si alguna línea no tiene disponible suficiente no se descuenta nada.
func (uc *UseCase) Create(ctx context.Context, actorID string, in dto.CreateSaleRequest) (*dto.SaleResponse, error) {
	if actorID == "" || len(in.Items) == 0 {
		return nil, domain.ErrInvalidInput
	}
	qty := map[string]int{}
	for _, it := range in.Items {
		if it.ProductID == "" || it.Quantity <= 0 {
			return nil, domain.NewError(domain.ErrInvalidInput, "cada línea requiere producto y cantidad positiva", it.ProductID)
		}
		qty[it.ProductID] += it.Quantity
	}
	ids := make([]string, 0, len(qty))
	for id := range qty {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	now := uc.clock.Now()
	s := &entity.Sale{
		ID:            uuid.New().String(),
		ClientID:      in.ClientID,
		PaidAmount:    decimal.Zero,
		PaymentStatus: entity.PaymentStatusPending,
		CreatedBy:     actorID,
		CreatedAt:     now,
	}
	err := uc.txRunner.Run(ctx, func(repos repository.Repos) error {
		products := make(map[string]*entity.Product, len(ids))
		for _, id := range ids {
			p, err := repos.Products.GetForUpdate(ctx, id)
			if err != nil {
				return err
			}
			if p == nil {
				return domain.NotFound("producto", id)
			}
			if !p.Active {
				return domain.InvalidState("el producto está dado de baja", p.ID)
			}
			products[id] = p
		}
		n, err := repos.Sales.NextFolio(ctx)
		if err != nil {
			return err
		}
		s.Folio = fmt.Sprintf("%s%d", FolioPrefix, n)

		recorder := inventory.NewRecorder(repos)
		total := decimal.Zero
		for _, id := range ids {
			p := products[id]
			if _, err := recorder.Apply(ctx, inventory.MovementInput{
				ProductID: id,
				Type:      entity.MovementTypeSalida,
				Quantity:  qty[id],
				ActorID:   actorID,
				Motive:    "Venta " + s.Folio,
				SaleID:    s.ID,
			}, now); err != nil {
				return err
			}
			sub := p.Price.Mul(decimal.NewFromInt(int64(qty[id])))
			s.Items = append(s.Items, entity.SaleItem{
				ID:        uuid.New().String(),
				SaleID:    s.ID,
				ProductID: id,
				Quantity:  qty[id],
				UnitPrice: p.Price,
				Subtotal:  sub,
			})
			total = total.Add(sub)
		}
		s.TotalAmount = total
		s.Balance = total
		return repos.Sales.Create(ctx, s)
	})
	if err != nil {
		return nil, err
	}

	ports.Publish(ctx, uc.notifier, uc.log, ports.Event{
		Type:       ports.EventSaleCreated,
		ResourceID: s.ID,
		ActorID:    actorID,
		Message:    fmt.Sprintf("Venta %s por %s", s.Folio, s.TotalAmount.StringFixed(2)),
		Data:       map[string]any{"folio": s.Folio, "total": s.TotalAmount},
		OccurredAt: now,
	})
	inventory.AlertLowStock(ctx, uc.products, uc.notifier, uc.log, ids...)
	return toResponse(s), nil
}

// Get devuelve la venta por ID.
func (uc *UseCase) Get(ctx context.Context, id string) (*dto.SaleResponse, error) {
	s, err := uc.sales.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.NotFound("venta", id)
	}
	return toResponse(s), nil
}

func toResponse(s *entity.Sale) *dto.SaleResponse {
	out := &dto.SaleResponse{
		ID:            s.ID,
		Folio:         s.Folio,
		ClientID:      s.ClientID,
		TotalAmount:   s.TotalAmount,
		PaidAmount:    s.PaidAmount,
		Balance:       s.Balance,
		PaymentStatus: s.PaymentStatus,
		CreatedAt:     s.CreatedAt,
		Items:         make([]dto.SaleItemResponse, 0, len(s.Items)),
	}
	for _, it := range s.Items {
		out.Items = append(out.Items, dto.SaleItemResponse{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			Subtotal:  it.Subtotal,
		})
	}
	return out
}
