package inventory

import (
	"context"
	"fmt"

	"github.com/jhoicas/taller-api/internal/domain"
	"github.com/jhoicas/taller-api/internal/domain/repository"
	"github.com/jhoicas/taller-api/internal/domain/stock"
)

// Ledger Stock Ledger atado a una transacción: reserva, libera, confirma y ajusta
// mediante UPDATE condicionales. Cuando una guarda no se cumple, relee el producto
// para devolver el error de dominio preciso.
type Ledger struct {
	products repository.ProductRepository
	stock    repository.StockRepository
}

// NewLedger construye el ledger con los repositorios de la tx en curso.
func NewLedger(repos repository.Repos) Ledger {
	return Ledger{products: repos.Products, stock: repos.Stock}
}

// Reserve aparta qty unidades. ErrInsufficientStock si no alcanza el disponible.
func (l Ledger) Reserve(ctx context.Context, productID string, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("reservar %d: %w", qty, domain.ErrInvalidInput)
	}
	ok, err := l.stock.Reserve(ctx, productID, qty)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	return l.explain(ctx, productID, func(lv stock.Level) error {
		_, err := lv.Reserve(productID, qty)
		return err
	})
}

// Release libera qty unidades; liberar de más se recorta a cero.
func (l Ledger) Release(ctx context.Context, productID string, qty int) error {
	if qty <= 0 {
		return nil
	}
	return l.stock.Release(ctx, productID, qty)
}

// Commit convierte la reserva en salida (total y reservado bajan qty). ErrInvalidState si no alcanza.
func (l Ledger) Commit(ctx context.Context, productID string, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("confirmar %d: %w", qty, domain.ErrInvalidInput)
	}
	ok, err := l.stock.Commit(ctx, productID, qty)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	return l.explain(ctx, productID, func(lv stock.Level) error {
		_, err := lv.Commit(productID, qty)
		return err
	})
}

// Adjust fija el total absoluto (corrección manual).
func (l Ledger) Adjust(ctx context.Context, productID string, newTotal int) error {
	if newTotal < 0 {
		return fmt.Errorf("ajuste a %d: %w", newTotal, domain.ErrInvalidInput)
	}
	ok, err := l.stock.Adjust(ctx, productID, newTotal)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	return l.explain(ctx, productID, func(lv stock.Level) error {
		_, err := lv.Adjust(productID, newTotal)
		return err
	})
}

// Add suma delta al total; una salida solo consume disponible.
func (l Ledger) Add(ctx context.Context, productID string, delta int) error {
	ok, err := l.stock.Add(ctx, productID, delta)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	return l.explain(ctx, productID, func(lv stock.Level) error {
		_, err := lv.Add(productID, delta)
		return err
	})
}

func (l Ledger) explain(ctx context.Context, productID string, attempt func(stock.Level) error) error {
	p, err := l.products.GetByID(ctx, productID)
	if err != nil {
		return err
	}
	if p == nil {
		return domain.NotFound("producto", productID)
	}
	if err := attempt(stock.LevelOf(p)); err != nil {
		return err
	}
	return fmt.Errorf("stock de %s cambió durante la operación: %w", productID, domain.ErrConflict)
}
