package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/taller-api/internal/application/dto"
	"github.com/jhoicas/taller-api/internal/application/ports"
	"github.com/jhoicas/taller-api/internal/domain"
	"github.com/jhoicas/taller-api/internal/domain/entity"
	dompayment "github.com/jhoicas/taller-api/internal/domain/payment"
	"github.com/jhoicas/taller-api/internal/domain/repository"
	"github.com/jhoicas/taller-api/pkg/textnorm"
)

// OrderTransitioner intento de entrega al saldar una orden.
type OrderTransitioner interface {
	Transition(ctx context.Context, orderID, actorID string, role entity.Role, in dto.TransitionRequest) (*dto.OrderResponse, error)
}

var methods = []string{entity.PaymentMethodCash, entity.PaymentMethodCard, entity.PaymentMethodTransfer}

// ParseMethod reconoce el método de pago sin distinguir mayúsculas ni acentos.
func ParseMethod(s string) (string, error) {
	for _, m := range methods {
		if textnorm.Equal(m, s) {
			return m, nil
		}
	}
	return "", domain.NewError(domain.ErrInvalidInput, "método de pago desconocido", s)
}

// UseCase registra pagos y recalcula el saldo del dueño (orden o venta).
type UseCase struct {
	txRunner ports.TxRunner
	orders   OrderTransitioner
	clock    ports.Clock
	notifier ports.Notifier
	log      zerolog.Logger
}

// NewUseCase construye el caso de uso. orders puede ser nil si no se desea entrega automática.
func NewUseCase(txRunner ports.TxRunner, orders OrderTransitioner, clock ports.Clock, notifier ports.Notifier, log zerolog.Logger) *UseCase {
	return &UseCase{txRunner: txRunner, orders: orders, clock: clock, notifier: notifier, log: log}
}

type owner struct {
	total  decimal.Decimal
	status entity.OrderStatus
	folio  string
	update func(b dompayment.Balance) error
}

// Record agrega el pago, recalcula total pagado, saldo y estado en una sola transacción.
// Si una orden queda Pagado y está Lista para entrega, intenta la entrega; si la máquina
// de estados la rechaza el pago se conserva y el rechazo solo queda en el log.
func (uc *UseCase) Record(ctx context.Context, actorID string, role entity.Role, in dto.RecordPaymentRequest) (*dto.PaymentResponse, error) {
	if err := dompayment.ValidateAmount(in.Amount); err != nil {
		return nil, err
	}
	method, err := ParseMethod(in.Method)
	if err != nil {
		return nil, err
	}
	if in.OwnerType != entity.PaymentOwnerOrder && in.OwnerType != entity.PaymentOwnerSale {
		return nil, domain.NewError(domain.ErrInvalidInput, "owner_type debe ser order o sale", in.OwnerType)
	}
	if in.OwnerID == "" {
		return nil, domain.ErrInvalidInput
	}

	now := uc.clock.Now()
	p := &entity.Payment{
		ID:        uuid.New().String(),
		OwnerType: in.OwnerType,
		OwnerID:   in.OwnerID,
		Amount:    in.Amount,
		Method:    method,
		Reference: in.Reference,
		CreatedBy: actorID,
		CreatedAt: now,
	}

	var (
		bal dompayment.Balance
		own *owner
	)
	err = uc.txRunner.Run(ctx, func(repos repository.Repos) error {
		var err error
		own, err = lockOwner(ctx, repos, in.OwnerType, in.OwnerID)
		if err != nil {
			return err
		}
		if err := repos.Payments.Create(ctx, p); err != nil {
			return err
		}
		payments, err := repos.Payments.ListByOwner(ctx, in.OwnerType, in.OwnerID)
		if err != nil {
			return err
		}
		bal = dompayment.Reconcile(own.total, payments)
		return own.update(bal)
	})
	if err != nil {
		return nil, err
	}

	ports.Publish(ctx, uc.notifier, uc.log, ports.Event{
		Type:       ports.EventPaymentRecorded,
		ResourceID: in.OwnerID,
		ActorID:    actorID,
		Message:    fmt.Sprintf("Pago de %s en %s (%s)", p.Amount.StringFixed(2), own.folio, bal.Status),
		Data:       map[string]any{"owner_type": in.OwnerType, "amount": p.Amount, "balance": bal.Due, "status": bal.Status},
		OccurredAt: now,
	})

	out := &dto.PaymentResponse{
		ID:            p.ID,
		OwnerType:     p.OwnerType,
		OwnerID:       p.OwnerID,
		Amount:        p.Amount,
		Method:        p.Method,
		Reference:     p.Reference,
		CreatedAt:     p.CreatedAt,
		TotalAmount:   bal.Total,
		PaidAmount:    bal.Paid,
		Balance:       bal.Due,
		PaymentStatus: bal.Status,
		OrderStatus:   string(own.status),
	}
	if in.OwnerType == entity.PaymentOwnerOrder && bal.Status == entity.PaymentStatusPaid {
		out.OrderStatus = string(uc.deliver(ctx, in.OwnerID, actorID, role, own.status))
	}
	return out, nil
}

// deliver intenta Lista para entrega → Pagado y entregado. Nunca falla el pago.
func (uc *UseCase) deliver(ctx context.Context, orderID, actorID string, role entity.Role, current entity.OrderStatus) entity.OrderStatus {
	if uc.orders == nil || current != entity.OrderReadyForPickup {
		return current
	}
	res, err := uc.orders.Transition(ctx, orderID, actorID, role, dto.TransitionRequest{
		Status: string(entity.OrderPaidAndDelivered),
		Notes:  "Entrega al saldar la orden",
	})
	if err != nil {
		ev := uc.log.Warn()
		if !errors.Is(err, domain.ErrPreconditionFailed) && !errors.Is(err, domain.ErrPermissionDenied) && !errors.Is(err, domain.ErrInvalidState) {
			ev = uc.log.Error()
		}
		ev.Err(err).Str("order_id", orderID).Str("code", domain.Code(err)).Msg("entrega automática rechazada; el pago se conserva")
		return current
	}
	return entity.OrderStatus(res.Status)
}

func lockOwner(ctx context.Context, repos repository.Repos, ownerType, ownerID string) (*owner, error) {
	if ownerType == entity.PaymentOwnerSale {
		s, err := repos.Sales.GetForUpdate(ctx, ownerID)
		if err != nil {
			return nil, err
		}
		if s == nil {
			return nil, domain.NotFound("venta", ownerID)
		}
		return &owner{total: s.TotalAmount, folio: s.Folio, update: func(b dompayment.Balance) error {
			return repos.Sales.UpdateBalance(ctx, s.ID, b.Total, b.Paid, b.Due, b.Status)
		}}, nil
	}

	o, err := repos.Orders.GetForUpdate(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, domain.NotFound("orden", ownerID)
	}
	if o.Status == entity.OrderCancelled {
		return nil, domain.InvalidState(fmt.Sprintf("la orden %s está cancelada", o.Folio), string(o.Status))
	}
	return &owner{total: o.TotalAmount, status: o.Status, folio: o.Folio, update: func(b dompayment.Balance) error {
		return repos.Orders.UpdateBalance(ctx, o.ID, b.Total, b.Paid, b.Due, b.Status)
	}}, nil
}
