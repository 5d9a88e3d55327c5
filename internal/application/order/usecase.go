package order

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/taller-api/internal/application/dto"
	"github.com/jhoicas/taller-api/internal/application/ports"
	"github.com/jhoicas/taller-api/internal/domain"
	"github.com/jhoicas/taller-api/internal/domain/entity"
	"github.com/jhoicas/taller-api/internal/domain/orderflow"
	"github.com/jhoicas/taller-api/internal/domain/payment"
	"github.com/jhoicas/taller-api/internal/domain/repository"
	"github.com/jhoicas/taller-api/pkg/textnorm"
)

// FolioPrefix prefijo de folio de órdenes de servicio.
const FolioPrefix = "RS-OS-"

// Config parámetros de órdenes.
type Config struct {
	DiagnosisFee decimal.Decimal // cero = orderflow.DefaultDiagnosisFee
}

// UseCase ciclo de vida de la orden de servicio. Todo cambio de estado pasa por
// orderflow.Validate y se aplica con compare-and-swap sobre el estado actual.
type UseCase struct {
	txRunner ports.TxRunner
	orders   repository.ServiceOrderRepository
	clock    ports.Clock
	notifier ports.Notifier
	log      zerolog.Logger
	fee      decimal.Decimal
}

// NewUseCase construye el caso de uso.
func NewUseCase(txRunner ports.TxRunner, orders repository.ServiceOrderRepository, clock ports.Clock, notifier ports.Notifier, log zerolog.Logger, cfg Config) *UseCase {
	fee := cfg.DiagnosisFee
	if !fee.IsPositive() {
		fee = orderflow.DefaultDiagnosisFee
	}
	return &UseCase{txRunner: txRunner, orders: orders, clock: clock, notifier: notifier, log: log, fee: fee}
}

// Create recibe un equipo: folio secuencial y estado Esperando diagnóstico.
func (uc *UseCase) Create(ctx context.Context, actorID string, in dto.CreateOrderRequest) (*dto.OrderResponse, error) {
	if in.ClientID == "" || in.EquipmentID == "" {
		return nil, domain.NewError(domain.ErrInvalidInput, "cliente y equipo son obligatorios", "")
	}
	priority, err := parsePriority(in.Priority)
	if err != nil {
		return nil, err
	}
	fee := uc.fee
	if in.DiagnosisFee != nil {
		if in.DiagnosisFee.IsNegative() {
			return nil, domain.NewError(domain.ErrInvalidAmount, "el costo de diagnóstico no puede ser negativo", in.DiagnosisFee.String())
		}
		fee = *in.DiagnosisFee
	}
	total := decimal.Zero
	if in.TotalAmount != nil {
		if in.TotalAmount.IsNegative() {
			return nil, domain.NewError(domain.ErrInvalidAmount, "el monto total no puede ser negativo", in.TotalAmount.String())
		}
		total = *in.TotalAmount
	}

	now := uc.clock.Now()
	o := &entity.ServiceOrder{
		ID:            uuid.New().String(),
		ClientID:      in.ClientID,
		EquipmentID:   in.EquipmentID,
		TechnicianID:  in.TechnicianID,
		Status:        entity.OrderWaitingDiagnosis,
		Priority:      priority,
		DiagnosisFee:  fee,
		RepairCost:    decimal.Zero,
		TotalAmount:   total,
		PaidAmount:    decimal.Zero,
		Balance:       total,
		PaymentStatus: entity.PaymentStatusPending,
		CreatedBy:     actorID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	err = uc.txRunner.Run(ctx, func(repos repository.Repos) error {
		n, err := repos.Orders.NextFolio(ctx)
		if err != nil {
			return err
		}
		o.Folio = fmt.Sprintf("%s%d", FolioPrefix, n)
		if err := repos.Orders.Create(ctx, o); err != nil {
			return err
		}
		return repos.Orders.AddHistory(ctx, &entity.OrderHistory{
			ID:        uuid.New().String(),
			OrderID:   o.ID,
			To:        o.Status,
			ActorID:   actorID,
			Notes:     "Recepción del equipo",
			CreatedAt: now,
		})
	})
	if err != nil {
		return nil, err
	}
	return toResponse(o, ""), nil
}

// RecordDiagnosis guarda el diagnóstico y el costo de reparación.
func (uc *UseCase) RecordDiagnosis(ctx context.Context, orderID string, in dto.DiagnosisRequest) (*dto.OrderResponse, error) {
	if in.Diagnosis == "" {
		return nil, domain.NewError(domain.ErrInvalidInput, "el diagnóstico no puede estar vacío", orderID)
	}
	if in.RepairCost.IsNegative() {
		return nil, domain.NewError(domain.ErrInvalidAmount, "el costo de reparación no puede ser negativo", in.RepairCost.String())
	}
	return uc.mutate(ctx, orderID, func(repos repository.Repos, o *entity.ServiceOrder) error {
		if err := repos.Orders.UpdateDiagnosis(ctx, o.ID, in.Diagnosis, in.RepairCost); err != nil {
			return err
		}
		o.Diagnosis = in.Diagnosis
		o.RepairCost = in.RepairCost
		return nil
	})
}

// RecordApproval registra la decisión del cliente sobre la reparación.
func (uc *UseCase) RecordApproval(ctx context.Context, orderID string, approved bool) (*dto.OrderResponse, error) {
	return uc.mutate(ctx, orderID, func(repos repository.Repos, o *entity.ServiceOrder) error {
		if err := repos.Orders.UpdateApproval(ctx, o.ID, approved); err != nil {
			return err
		}
		o.ClientApproved = approved
		return nil
	})
}

func (uc *UseCase) mutate(ctx context.Context, orderID string, fn func(repository.Repos, *entity.ServiceOrder) error) (*dto.OrderResponse, error) {
	var o *entity.ServiceOrder
	err := uc.txRunner.Run(ctx, func(repos repository.Repos) error {
		var err error
		o, err = lock(ctx, repos, orderID)
		if err != nil {
			return err
		}
		if orderflow.IsTerminal(o.Status) {
			return domain.InvalidState(fmt.Sprintf("la orden %s está %s", o.Folio, o.Status), string(o.Status))
		}
		return fn(repos, o)
	})
	if err != nil {
		return nil, err
	}
	return toResponse(o, ""), nil
}

// Transition mueve la orden al estado pedido si la arista existe, el rol la permite y
// se cumplen las precondiciones. Si el nuevo estado tiene una salida automática,
// se aplica en la misma transacción.
func (uc *UseCase) Transition(ctx context.Context, orderID, actorID string, role entity.Role, in dto.TransitionRequest) (*dto.OrderResponse, error) {
	to, err := orderflow.ParseStatus(in.Status)
	if err != nil {
		return nil, err
	}
	now := uc.clock.Now()

	var (
		o       *entity.ServiceOrder
		applied []entity.OrderHistory
	)
	err = uc.txRunner.Run(ctx, func(repos repository.Repos) error {
		var err error
		o, err = lock(ctx, repos, orderID)
		if err != nil {
			return err
		}
		payments, err := repos.Payments.ListByOwner(ctx, entity.PaymentOwnerOrder, o.ID)
		if err != nil {
			return err
		}
		fc := orderflow.Context{
			Role:           role,
			HasDiagnosis:   o.Diagnosis != "",
			ClientApproved: o.ClientApproved,
			TotalPaid:      payment.Sum(payments),
			RepairCost:     o.RepairCost,
			DiagnosisFee:   o.DiagnosisFee,
		}
		h, err := apply(ctx, repos, o, to, fc, actorID, in.Notes, now)
		if err != nil {
			return err
		}
		applied = append(applied, h)

		if next, ok := orderflow.NextAutomaticState(o.Status); ok {
			fc.Automatic = true
			h, err := apply(ctx, repos, o, next, fc, "", "Transición automática", now)
			if err != nil {
				return err
			}
			applied = append(applied, h)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, h := range applied {
		ports.Publish(ctx, uc.notifier, uc.log, ports.Event{
			Type:       ports.EventOrderTransitioned,
			ResourceID: o.ID,
			ActorID:    h.ActorID,
			Message:    fmt.Sprintf("Orden %s: %s → %s", o.Folio, h.From, h.To),
			Data:       map[string]any{"folio": o.Folio, "from": h.From, "to": h.To, "automatic": h.Automatic},
			OccurredAt: now,
		})
	}
	return toResponse(o, role), nil
}

// apply valida y aplica una transición con CAS sobre el estado leído.
func apply(ctx context.Context, repos repository.Repos, o *entity.ServiceOrder, to entity.OrderStatus, fc orderflow.Context, actorID, notes string, now time.Time) (entity.OrderHistory, error) {
	from := o.Status
	if err := orderflow.Validate(from, to, fc); err != nil {
		return entity.OrderHistory{}, err
	}
	var deliveredAt *time.Time
	if to == entity.OrderPaidAndDelivered {
		deliveredAt = &now
	}
	ok, err := repos.Orders.UpdateStatus(ctx, o.ID, from, to, deliveredAt)
	if err != nil {
		return entity.OrderHistory{}, err
	}
	if !ok {
		return entity.OrderHistory{}, domain.InvalidState("la orden cambió de estado durante la operación", string(from))
	}
	h := entity.OrderHistory{
		ID:        uuid.New().String(),
		OrderID:   o.ID,
		From:      from,
		To:        to,
		ActorID:   actorID,
		Automatic: fc.Automatic,
		Notes:     notes,
		CreatedAt: now,
	}
	if err := repos.Orders.AddHistory(ctx, &h); err != nil {
		return entity.OrderHistory{}, err
	}
	o.Status = to
	o.UpdatedAt = now
	if deliveredAt != nil {
		o.DeliveredAt = deliveredAt
	}
	return h, nil
}

// Get devuelve la orden y los estados a los que el rol puede moverla.
func (uc *UseCase) Get(ctx context.Context, orderID string, role entity.Role) (*dto.OrderResponse, error) {
	o, err := uc.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, domain.NotFound("orden", orderID)
	}
	return toResponse(o, role), nil
}

// History historial de transiciones en orden cronológico.
func (uc *UseCase) History(ctx context.Context, orderID string) ([]dto.OrderHistoryResponse, error) {
	o, err := uc.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, domain.NotFound("orden", orderID)
	}
	list, err := uc.orders.ListHistory(ctx, orderID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.OrderHistoryResponse, 0, len(list))
	for _, h := range list {
		out = append(out, dto.OrderHistoryResponse{
			From:      string(h.From),
			To:        string(h.To),
			ActorID:   h.ActorID,
			Automatic: h.Automatic,
			Notes:     h.Notes,
			CreatedAt: h.CreatedAt,
		})
	}
	return out, nil
}

func lock(ctx context.Context, repos repository.Repos, orderID string) (*entity.ServiceOrder, error) {
	o, err := repos.Orders.GetForUpdate(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, domain.NotFound("orden", orderID)
	}
	return o, nil
}

func parsePriority(s string) (string, error) {
	if s == "" {
		return entity.PriorityNormal, nil
	}
	for _, p := range []string{entity.PriorityNormal, entity.PriorityHigh, entity.PriorityUrgent} {
		if textnorm.Equal(p, s) {
			return p, nil
		}
	}
	return "", domain.NewError(domain.ErrInvalidInput, "prioridad desconocida", s)
}

func toResponse(o *entity.ServiceOrder, role entity.Role) *dto.OrderResponse {
	out := &dto.OrderResponse{
		ID:             o.ID,
		Folio:          o.Folio,
		ClientID:       o.ClientID,
		EquipmentID:    o.EquipmentID,
		TechnicianID:   o.TechnicianID,
		Status:         string(o.Status),
		Priority:       o.Priority,
		Diagnosis:      o.Diagnosis,
		ClientApproved: o.ClientApproved,
		DiagnosisFee:   o.DiagnosisFee,
		RepairCost:     o.RepairCost,
		TotalAmount:    o.TotalAmount,
		PaidAmount:     o.PaidAmount,
		Balance:        o.Balance,
		PaymentStatus:  o.PaymentStatus,
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
		DeliveredAt:    o.DeliveredAt,
	}
	if role != "" {
		for _, s := range orderflow.AllowedTargets(o.Status, role) {
			out.AllowedNext = append(out.AllowedNext, string(s))
		}
	}
	return out
}
