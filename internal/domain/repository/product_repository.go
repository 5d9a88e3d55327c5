package repository

import (
	"context"

	"github.com/jhoicas/taller-api/internal/domain/entity"
)

// ProductRepository define el puerto de lectura de productos (DIP).
// Alta y baja lógica pertenecen al catálogo; aquí solo se consulta y se bloquea.
// Los Get devuelven (nil, nil) si el producto no existe.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	GetBySKU(ctx context.Context, sku string) (*entity.Product, error)
	// GetForUpdate bloquea la fila del producto hasta el fin de la transacción (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, id string) (*entity.Product, error)
	ListByIDs(ctx context.Context, ids []string) ([]*entity.Product, error)
	SetActive(ctx context.Context, id string, active bool) error
	// ListBelowMinimum productos activos con disponible <= mínimo, excluye servicios.
	ListBelowMinimum(ctx context.Context) ([]*entity.Product, error)
}
