package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/taller-api/internal/domain"
	"github.com/jhoicas/taller-api/internal/domain/entity"
	"github.com/jhoicas/taller-api/internal/domain/repository"
)

// MovementInput datos de un movimiento. Quantity es siempre positiva salvo en Ajuste,
// donde es el nuevo total absoluto.
type MovementInput struct {
	ProductID string
	Type      string
	Quantity  int
	ActorID   string
	Motive    string
	OrderID   string
	TicketID  string
	SaleID    string
}

// Recorder es el único escritor de Product.Stock: cada cambio pasa por el Ledger
// y deja exactamente un movimiento en la misma transacción.
type Recorder struct {
	ledger    Ledger
	products  repository.ProductRepository
	movements repository.InventoryMovementRepository
}

// NewRecorder construye el recorder con los repositorios de la tx en curso.
func NewRecorder(repos repository.Repos) Recorder {
	return Recorder{ledger: NewLedger(repos), products: repos.Products, movements: repos.Movements}
}

// Ledger expone el ledger de la misma tx (reservas y liberaciones no generan movimiento).
func (r Recorder) Ledger() Ledger { return r.ledger }

// Withdraw canjea una reserva: Commit en el ledger y un movimiento Salida.
func (r Recorder) Withdraw(ctx context.Context, in MovementInput, now time.Time) (*entity.InventoryMovement, error) {
	p, err := r.lock(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if err := r.ledger.Commit(ctx, in.ProductID, in.Quantity); err != nil {
		return nil, err
	}
	return r.append(ctx, in, entity.MovementTypeSalida, -in.Quantity, p.Stock, now)
}

// Apply registra Entrada, Salida, Devolución o Ajuste sobre stock no reservado.
func (r Recorder) Apply(ctx context.Context, in MovementInput, now time.Time) (*entity.InventoryMovement, error) {
	p, err := r.lock(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	switch in.Type {
	case entity.MovementTypeEntrada, entity.MovementTypeDevolucion:
		if in.Quantity <= 0 {
			return nil, fmt.Errorf("cantidad %d: %w", in.Quantity, domain.ErrInvalidInput)
		}
		if err := r.ledger.Add(ctx, in.ProductID, in.Quantity); err != nil {
			return nil, err
		}
		return r.append(ctx, in, in.Type, in.Quantity, p.Stock, now)
	case entity.MovementTypeSalida:
		if in.Quantity <= 0 {
			return nil, fmt.Errorf("cantidad %d: %w", in.Quantity, domain.ErrInvalidInput)
		}
		if err := r.ledger.Add(ctx, in.ProductID, -in.Quantity); err != nil {
			return nil, err
		}
		return r.append(ctx, in, in.Type, -in.Quantity, p.Stock, now)
	case entity.MovementTypeAjuste:
		delta := in.Quantity - p.Stock
		if delta == 0 {
			return nil, domain.NewError(domain.ErrInvalidInput, "el ajuste no cambia el stock", in.ProductID)
		}
		if err := r.ledger.Adjust(ctx, in.ProductID, in.Quantity); err != nil {
			return nil, err
		}
		return r.append(ctx, in, in.Type, delta, p.Stock, now)
	default:
		return nil, domain.NewError(domain.ErrInvalidInput, "tipo de movimiento desconocido", in.Type)
	}
}

func (r Recorder) lock(ctx context.Context, productID string) (*entity.Product, error) {
	p, err := r.products.GetForUpdate(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.NotFound("producto", productID)
	}
	return p, nil
}

func (r Recorder) append(ctx context.Context, in MovementInput, movType string, delta, before int, now time.Time) (*entity.InventoryMovement, error) {
	mov := &entity.InventoryMovement{
		ID:          uuid.New().String(),
		ProductID:   in.ProductID,
		Type:        movType,
		Quantity:    delta,
		StockBefore: before,
		StockAfter:  before + delta,
		Motive:      in.Motive,
		OrderID:     in.OrderID,
		TicketID:    in.TicketID,
		SaleID:      in.SaleID,
		CreatedBy:   in.ActorID,
		CreatedAt:   now,
	}
	if err := r.movements.Create(ctx, mov); err != nil {
		return nil, err
	}
	return mov, nil
}
