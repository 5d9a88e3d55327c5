package repository

import "context"

// StockRepository primitivas del Stock Ledger. Cada método es un UPDATE condicional
// de una sola fila que corre dentro de la transacción del caller.
// ok=false indica que la guarda no se cumplió o que el producto no existe.
type StockRepository interface {
	// Reserve: reservado += qty si total - reservado >= qty.
	Reserve(ctx context.Context, productID string, qty int) (ok bool, err error)
	// Release: reservado = max(reservado - qty, 0).
	Release(ctx context.Context, productID string, qty int) error
	// Commit: total -= qty y reservado -= qty si ambos alcanzan.
	Commit(ctx context.Context, productID string, qty int) (ok bool, err error)
	// Adjust: total = newTotal si newTotal >= reservado.
	Adjust(ctx context.Context, productID string, newTotal int) (ok bool, err error)
	// Add: total += delta si el resultado no queda por debajo de lo reservado.
	Add(ctx context.Context, productID string, delta int) (ok bool, err error)
}
