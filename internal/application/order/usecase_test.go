package order_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/taller-api/internal/application/dto"
	"github.com/jhoicas/taller-api/internal/application/order"
	"github.com/jhoicas/taller-api/internal/application/payment"
	"github.com/jhoicas/taller-api/internal/application/ports"
	"github.com/jhoicas/taller-api/internal/domain"
	"github.com/jhoicas/taller-api/internal/domain/entity"
	"github.com/jhoicas/taller-api/internal/infrastructure/memory"
)

const actor = "user-1"

func newUseCase() (*order.UseCase, *memory.Store) {
	store := memory.NewStore()
	clock := &ports.FixedClock{T: time.Date(2025, 5, 2, 10, 0, 0, 0, time.UTC)}
	uc := order.NewUseCase(store, store.Repos().Orders, clock, ports.NopNotifier{}, zerolog.Nop(), order.Config{})
	return uc, store
}

func newOrder(t *testing.T, uc *order.UseCase) *dto.OrderResponse {
	t.Helper()
	o, err := uc.Create(context.Background(), actor, dto.CreateOrderRequest{ClientID: "cli-1", EquipmentID: "eq-1"})
	require.NoError(t, err)
	return o
}

func move(t *testing.T, uc *order.UseCase, id string, role entity.Role, to entity.OrderStatus) (*dto.OrderResponse, error) {
	t.Helper()
	return uc.Transition(context.Background(), id, actor, role, dto.TransitionRequest{Status: string(to)})
}

func TestCreate_FolioYEstadoInicial(t *testing.T) {
	uc, _ := newUseCase()

	a := newOrder(t, uc)
	b := newOrder(t, uc)

	assert.Equal(t, "RS-OS-1001", a.Folio)
	assert.Equal(t, "RS-OS-1002", b.Folio)
	assert.Equal(t, string(entity.OrderWaitingDiagnosis), a.Status)
	assert.Equal(t, entity.PriorityNormal, a.Priority)
	assert.True(t, a.DiagnosisFee.Equal(decimal.NewFromInt(150)))
	assert.Equal(t, entity.PaymentStatusPending, a.PaymentStatus)
}

func TestCreate_Validaciones(t *testing.T) {
	uc, _ := newUseCase()
	ctx := context.Background()

	_, err := uc.Create(ctx, actor, dto.CreateOrderRequest{ClientID: "cli-1"})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	_, err = uc.Create(ctx, actor, dto.CreateOrderRequest{ClientID: "cli-1", EquipmentID: "eq-1", Priority: "urgente"})
	assert.NoError(t, err, "prioridad sin distinguir mayúsculas")

	neg := decimal.NewFromInt(-1)
	_, err = uc.Create(ctx, actor, dto.CreateOrderRequest{ClientID: "cli-1", EquipmentID: "eq-1", DiagnosisFee: &neg})
	assert.True(t, errors.Is(err, domain.ErrInvalidAmount))
}

func TestTransition_FlujoCompletoConAutomatica(t *testing.T) {
	uc, _ := newUseCase()
	ctx := context.Background()
	o := newOrder(t, uc)

	_, err := move(t, uc, o.ID, entity.RoleTechnician, entity.OrderInDiagnosis)
	require.NoError(t, err)
	_, err = move(t, uc, o.ID, entity.RoleTechnician, entity.OrderDiagnosisDone)
	require.NoError(t, err)

	_, err = move(t, uc, o.ID, entity.RoleTechnician, entity.OrderWaitingApproval)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrPreconditionFailed))
	assert.Equal(t, domain.PreconditionDiagnosisMissing, domain.DetailOf(err))

	_, err = uc.RecordDiagnosis(ctx, o.ID, dto.DiagnosisRequest{Diagnosis: "Pantalla dañada", RepairCost: decimal.NewFromInt(500)})
	require.NoError(t, err)
	_, err = move(t, uc, o.ID, entity.RoleTechnician, entity.OrderWaitingApproval)
	require.NoError(t, err)

	_, err = move(t, uc, o.ID, entity.RoleReception, entity.OrderInRepair)
	assert.Equal(t, domain.PreconditionApprovalMissing, domain.DetailOf(err))

	_, err = uc.RecordApproval(ctx, o.ID, true)
	require.NoError(t, err)
	_, err = move(t, uc, o.ID, entity.RoleReception, entity.OrderInRepair)
	require.NoError(t, err)

	res, err := move(t, uc, o.ID, entity.RoleTechnician, entity.OrderRepairDone)
	require.NoError(t, err)
	assert.Equal(t, string(entity.OrderReadyForPickup), res.Status, "la salida automática se aplica en la misma operación")

	hist, err := uc.History(ctx, o.ID)
	require.NoError(t, err)
	last := hist[len(hist)-1]
	assert.Equal(t, string(entity.OrderRepairDone), last.From)
	assert.Equal(t, string(entity.OrderReadyForPickup), last.To)
	assert.True(t, last.Automatic)
	assert.Len(t, hist, 7, "alta + 6 transiciones")
}

func TestTransition_AprobacionFaltanteNoCambiaEstado(t *testing.T) {
	uc, _ := newUseCase()
	ctx := context.Background()
	o := newOrder(t, uc)

	_, err := move(t, uc, o.ID, entity.RoleAdmin, entity.OrderInDiagnosis)
	require.NoError(t, err)
	_, err = move(t, uc, o.ID, entity.RoleAdmin, entity.OrderDiagnosisDone)
	require.NoError(t, err)

	_, err = move(t, uc, o.ID, entity.RoleReception, entity.OrderInRepair)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrPreconditionFailed))
	assert.Equal(t, "approval-missing", domain.DetailOf(err))

	got, err := uc.Get(ctx, o.ID, entity.RoleReception)
	require.NoError(t, err)
	assert.Equal(t, string(entity.OrderDiagnosisDone), got.Status)
}

func TestTransition_RolSinPermiso(t *testing.T) {
	uc, _ := newUseCase()
	o := newOrder(t, uc)

	_, err := move(t, uc, o.ID, entity.RoleReception, entity.OrderInDiagnosis)
	assert.True(t, errors.Is(err, domain.ErrPermissionDenied))
}

func TestTransition_NoSaltaEtapas(t *testing.T) {
	uc, _ := newUseCase()
	o := newOrder(t, uc)

	_, err := move(t, uc, o.ID, entity.RoleAdmin, entity.OrderInRepair)
	assert.True(t, errors.Is(err, domain.ErrInvalidState))
}

func TestTransition_TerminalSinSalidas(t *testing.T) {
	uc, _ := newUseCase()
	ctx := context.Background()
	o := newOrder(t, uc)

	_, err := move(t, uc, o.ID, entity.RoleReception, entity.OrderCancelled)
	require.NoError(t, err)

	_, err = move(t, uc, o.ID, entity.RoleAdmin, entity.OrderInDiagnosis)
	assert.True(t, errors.Is(err, domain.ErrInvalidState))

	_, err = uc.RecordDiagnosis(ctx, o.ID, dto.DiagnosisRequest{Diagnosis: "x"})
	assert.True(t, errors.Is(err, domain.ErrInvalidState))
}

func TestTransition_EstadoDesconocidoYOrdenInexistente(t *testing.T) {
	uc, _ := newUseCase()
	o := newOrder(t, uc)
	ctx := context.Background()

	_, err := uc.Transition(ctx, o.ID, actor, entity.RoleAdmin, dto.TransitionRequest{Status: "Volando"})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	_, err = uc.Transition(ctx, "nope", actor, entity.RoleAdmin, dto.TransitionRequest{Status: "en diagnostico"})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestGet_EstadosPermitidosPorRol(t *testing.T) {
	uc, _ := newUseCase()
	o := newOrder(t, uc)

	got, err := uc.Get(context.Background(), o.ID, entity.RoleTechnician)
	require.NoError(t, err)
	assert.Equal(t, []string{string(entity.OrderInDiagnosis)}, got.AllowedNext)
}

// readyWaivedOrder lleva hasta Lista para entrega una orden de 100 sin costo de diagnóstico.
func readyWaivedOrder(t *testing.T, uc *order.UseCase) string {
	t.Helper()
	ctx := context.Background()
	total := decimal.NewFromInt(100)
	o, err := uc.Create(ctx, actor, dto.CreateOrderRequest{ClientID: "cli-1", EquipmentID: "eq-1", DiagnosisFee: &decimal.Zero, TotalAmount: &total})
	require.NoError(t, err)
	assert.True(t, o.DiagnosisFee.IsZero())

	for _, to := range []entity.OrderStatus{entity.OrderInDiagnosis, entity.OrderDiagnosisDone} {
		_, err = move(t, uc, o.ID, entity.RoleAdmin, to)
		require.NoError(t, err)
	}
	_, err = uc.RecordDiagnosis(ctx, o.ID, dto.DiagnosisRequest{Diagnosis: "Limpieza interna", RepairCost: decimal.NewFromInt(100)})
	require.NoError(t, err)
	_, err = uc.RecordApproval(ctx, o.ID, true)
	require.NoError(t, err)
	for _, to := range []entity.OrderStatus{entity.OrderInRepair, entity.OrderRepairDone} {
		_, err = move(t, uc, o.ID, entity.RoleAdmin, to)
		require.NoError(t, err)
	}
	return o.ID
}

func TestDiagnosticoCondonado_EntregaAlSaldar(t *testing.T) {
	uc, store := newUseCase()
	ctx := context.Background()
	clock := &ports.FixedClock{T: time.Date(2025, 5, 2, 11, 0, 0, 0, time.UTC)}
	req := func(id string) dto.RecordPaymentRequest {
		return dto.RecordPaymentRequest{OwnerType: entity.PaymentOwnerOrder, OwnerID: id, Amount: decimal.NewFromInt(100), Method: "efectivo"}
	}

	t.Run("entrega automática", func(t *testing.T) {
		id := readyWaivedOrder(t, uc)
		pays := payment.NewUseCase(store, uc, clock, ports.NopNotifier{}, zerolog.Nop())
		res, err := pays.Record(ctx, actor, entity.RoleReception, req(id))
		require.NoError(t, err)
		assert.Equal(t, entity.PaymentStatusPaid, res.PaymentStatus)
		assert.True(t, res.Balance.IsZero())
		assert.Equal(t, string(entity.OrderPaidAndDelivered), res.OrderStatus)
	})

	t.Run("entrega manual", func(t *testing.T) {
		id := readyWaivedOrder(t, uc)
		pays := payment.NewUseCase(store, nil, clock, ports.NopNotifier{}, zerolog.Nop())
		_, err := pays.Record(ctx, actor, entity.RoleReception, req(id))
		require.NoError(t, err)

		res, err := move(t, uc, id, entity.RoleReception, entity.OrderPaidAndDelivered)
		require.NoError(t, err)
		assert.Equal(t, string(entity.OrderPaidAndDelivered), res.Status)
	})
}
