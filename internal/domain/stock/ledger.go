// Package stock contiene la aritmética del Stock Ledger: disponibilidad, estado
// y las transiciones puras de reservar, liberar, confirmar y ajustar.
// La persistencia aplica las mismas reglas como UPDATE condicionales de una sola fila.
package stock

import (
	"fmt"

	"github.com/jhoicas/taller-api/internal/domain"
	"github.com/jhoicas/taller-api/internal/domain/entity"
)

// Level snapshot de stock de un producto.
type Level struct {
	Stock    int
	Reserved int
	Min      int
}

// LevelOf toma el snapshot de un producto.
func LevelOf(p *entity.Product) Level {
	return Level{Stock: p.Stock, Reserved: p.Reserved, Min: p.MinStock}
}

// Available stock libre (total - reservado).
func (l Level) Available() int { return l.Stock - l.Reserved }

// Status Agotado / Bajo / Disponible según disponible vs. mínimo.
func (l Level) Status() string {
	switch avail := l.Available(); {
	case avail <= 0:
		return entity.StockStatusOut
	case avail <= l.Min:
		return entity.StockStatusLow
	default:
		return entity.StockStatusAvailable
	}
}

// Valid verifica 0 <= reservado <= total.
func (l Level) Valid() bool {
	return l.Reserved >= 0 && l.Reserved <= l.Stock
}

// Reserve aparta qty unidades.
func (l Level) Reserve(productID string, qty int) (Level, error) {
	if qty <= 0 {
		return l, fmt.Errorf("reservar %d: %w", qty, domain.ErrInvalidInput)
	}
	if l.Available() < qty {
		return l, domain.InsufficientStock(productID, l.Available(), qty)
	}
	l.Reserved += qty
	return l, nil
}

// Release libera qty unidades reservadas; nunca baja de cero.
func (l Level) Release(qty int) Level {
	if qty <= 0 {
		return l
	}
	l.Reserved -= qty
	if l.Reserved < 0 {
		l.Reserved = 0
	}
	return l
}

// Commit convierte una reserva en salida: descuenta total y reservado.
func (l Level) Commit(productID string, qty int) (Level, error) {
	if qty <= 0 {
		return l, fmt.Errorf("confirmar %d: %w", qty, domain.ErrInvalidInput)
	}
	if l.Stock < qty || l.Reserved < qty {
		return l, domain.InvalidState(
			fmt.Sprintf("no se puede confirmar %d unidades (total %d, reservado %d)", qty, l.Stock, l.Reserved),
			productID)
	}
	l.Stock -= qty
	l.Reserved -= qty
	return l, nil
}

// Adjust fija el total absoluto. No puede quedar por debajo de lo reservado.
func (l Level) Adjust(productID string, newTotal int) (Level, error) {
	if newTotal < 0 {
		return l, fmt.Errorf("ajuste a %d: %w", newTotal, domain.ErrInvalidInput)
	}
	if newTotal < l.Reserved {
		return l, domain.InvalidState(
			fmt.Sprintf("el nuevo total %d es menor que lo reservado %d", newTotal, l.Reserved),
			productID)
	}
	l.Stock = newTotal
	return l, nil
}

// Add suma delta al total (entradas positivas, salidas negativas) sin tocar lo reservado.
// Una salida solo puede consumir stock disponible.
func (l Level) Add(productID string, delta int) (Level, error) {
	if delta == 0 {
		return l, fmt.Errorf("movimiento sin cantidad: %w", domain.ErrInvalidInput)
	}
	if delta < 0 && l.Available() < -delta {
		return l, domain.InsufficientStock(productID, l.Available(), -delta)
	}
	l.Stock += delta
	return l, nil
}
