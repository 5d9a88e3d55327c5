package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/taller-api/internal/domain/entity"
)

// SaleRepository persistencia de ventas de mostrador.
type SaleRepository interface {
	Create(ctx context.Context, sale *entity.Sale) error
	NextFolio(ctx context.Context) (int64, error)
	GetByID(ctx context.Context, id string) (*entity.Sale, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Sale, error)
	UpdateBalance(ctx context.Context, id string, total, paid, due decimal.Decimal, status string) error
}
