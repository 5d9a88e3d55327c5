package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/taller-api/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo primitivas del ledger como UPDATE condicionales de una fila.
// La guarda va en el WHERE: si no se cumple, 0 filas afectadas y ok=false.
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

func (r *StockRepo) exec(ctx context.Context, op, query string, args ...any) (bool, error) {
	tag, err := r.q.Exec(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("%s stock: %w", op, err)
	}
	return tag.RowsAffected() == 1, nil
}

// Reserve aparta qty si hay disponible.
func (r *StockRepo) Reserve(ctx context.Context, productID string, qty int) (bool, error) {
	return r.exec(ctx, "reserve", `
		UPDATE products SET reserved = reserved + $2, updated_at = now()
		WHERE id = $1 AND stock - reserved >= $2`, productID, qty)
}

// Release libera qty, recortando en cero.
func (r *StockRepo) Release(ctx context.Context, productID string, qty int) error {
	_, err := r.exec(ctx, "release", `
		UPDATE products SET reserved = GREATEST(reserved - $2, 0), updated_at = now()
		WHERE id = $1`, productID, qty)
	return err
}

// Commit descuenta qty de total y reservado.
func (r *StockRepo) Commit(ctx context.Context, productID string, qty int) (bool, error) {
	return r.exec(ctx, "commit", `
		UPDATE products SET stock = stock - $2, reserved = reserved - $2, updated_at = now()
		WHERE id = $1 AND stock >= $2 AND reserved >= $2`, productID, qty)
}

// Adjust fija el total absoluto sin quedar por debajo de lo reservado.
func (r *StockRepo) Adjust(ctx context.Context, productID string, newTotal int) (bool, error) {
	return r.exec(ctx, "adjust", `
		UPDATE products SET stock = $2, updated_at = now()
		WHERE id = $1 AND $2 >= 0 AND $2 >= reserved`, productID, newTotal)
}

// Add suma delta al total (negativo para salidas) respetando lo reservado.
func (r *StockRepo) Add(ctx context.Context, productID string, delta int) (bool, error) {
	return r.exec(ctx, "add", `
		UPDATE products SET stock = stock + $2, updated_at = now()
		WHERE id = $1 AND stock + $2 >= reserved AND stock + $2 >= 0`, productID, delta)
}
