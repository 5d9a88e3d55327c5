package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/taller-api/internal/domain/entity"
)

// ServiceOrderRepository persistencia de órdenes de servicio y su historial.
type ServiceOrderRepository interface {
	Create(ctx context.Context, order *entity.ServiceOrder) error
	NextFolio(ctx context.Context) (int64, error)
	GetByID(ctx context.Context, id string) (*entity.ServiceOrder, error)
	GetForUpdate(ctx context.Context, id string) (*entity.ServiceOrder, error)
	// UpdateStatus compare-and-swap: solo cambia si el estado actual sigue siendo from.
	UpdateStatus(ctx context.Context, id string, from, to entity.OrderStatus, deliveredAt *time.Time) (ok bool, err error)
	UpdateDiagnosis(ctx context.Context, id, diagnosis string, repairCost decimal.Decimal) error
	UpdateApproval(ctx context.Context, id string, approved bool) error
	UpdateBalance(ctx context.Context, id string, total, paid, due decimal.Decimal, status string) error
	AddHistory(ctx context.Context, h *entity.OrderHistory) error
	ListHistory(ctx context.Context, orderID string) ([]*entity.OrderHistory, error)
}
