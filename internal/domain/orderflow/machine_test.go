package orderflow_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/taller-api/internal/domain"
	"github.com/jhoicas/taller-api/internal/domain/entity"
	"github.com/jhoicas/taller-api/internal/domain/orderflow"
)

func TestIsValidTransition_TerminalSinSalidas(t *testing.T) {
	for _, to := range entity.OrderStatuses {
		assert.False(t, orderflow.IsValidTransition(entity.OrderPaidAndDelivered, to), "Pagado y entregado → %s", to)
		assert.False(t, orderflow.IsValidTransition(entity.OrderCancelled, to), "Cancelada → %s", to)
	}
}

func TestIsValidTransition_NoSaltaEtapas(t *testing.T) {
	assert.True(t, orderflow.IsValidTransition(entity.OrderWaitingDiagnosis, entity.OrderInDiagnosis))
	assert.False(t, orderflow.IsValidTransition(entity.OrderWaitingDiagnosis, entity.OrderInRepair))
	assert.False(t, orderflow.IsValidTransition(entity.OrderInRepair, entity.OrderPaidAndDelivered))
	assert.False(t, orderflow.IsValidTransition(entity.OrderReadyForPickup, entity.OrderInRepair))
}

func TestIsValidTransition_CanceladaDesdeTodoNoTerminal(t *testing.T) {
	for _, from := range entity.OrderStatuses {
		if orderflow.IsTerminal(from) {
			continue
		}
		assert.True(t, orderflow.IsValidTransition(from, entity.OrderCancelled), "%s → Cancelada", from)
	}
}

func TestHasPermission_EntregaSoloRecepcionYAdmin(t *testing.T) {
	from, to := entity.OrderReadyForPickup, entity.OrderPaidAndDelivered
	assert.False(t, orderflow.HasPermission(from, to, entity.RoleTechnician))
	assert.True(t, orderflow.HasPermission(from, to, entity.RoleReception))
	assert.True(t, orderflow.HasPermission(from, to, entity.RoleAdmin))
}

func TestValidate_RolSinPermiso(t *testing.T) {
	err := orderflow.Validate(entity.OrderReadyForPickup, entity.OrderPaidAndDelivered,
		orderflow.Context{Role: entity.RoleTechnician})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrPermissionDenied))
}

func TestValidate_DesdeTerminalEsInvalidState(t *testing.T) {
	err := orderflow.Validate(entity.OrderCancelled, entity.OrderInDiagnosis, orderflow.Context{Role: entity.RoleAdmin})
	assert.True(t, errors.Is(err, domain.ErrInvalidState))
}

func TestValidate_Precondiciones(t *testing.T) {
	t.Run("diagnóstico faltante", func(t *testing.T) {
		err := orderflow.Validate(entity.OrderDiagnosisDone, entity.OrderWaitingApproval,
			orderflow.Context{Role: entity.RoleTechnician})
		assert.True(t, errors.Is(err, domain.ErrPreconditionFailed))
		assert.Equal(t, domain.PreconditionDiagnosisMissing, domain.DetailOf(err))
	})
	t.Run("aprobación faltante", func(t *testing.T) {
		err := orderflow.Validate(entity.OrderDiagnosisDone, entity.OrderInRepair,
			orderflow.Context{Role: entity.RoleReception, HasDiagnosis: true})
		assert.True(t, errors.Is(err, domain.ErrPreconditionFailed))
		assert.Equal(t, domain.PreconditionApprovalMissing, domain.DetailOf(err))
	})
	t.Run("saldo pendiente", func(t *testing.T) {
		err := orderflow.Validate(entity.OrderReadyForPickup, entity.OrderPaidAndDelivered, orderflow.Context{
			Role:         entity.RoleReception,
			TotalPaid:    decimal.NewFromInt(500),
			RepairCost:   decimal.NewFromInt(500),
			DiagnosisFee: orderflow.DefaultDiagnosisFee,
		})
		assert.True(t, errors.Is(err, domain.ErrPreconditionFailed))
		assert.Equal(t, domain.PreconditionBalanceUnpaid, domain.DetailOf(err))
	})
	t.Run("saldo cubierto con costo de diagnóstico", func(t *testing.T) {
		err := orderflow.Validate(entity.OrderReadyForPickup, entity.OrderPaidAndDelivered, orderflow.Context{
			Role:         entity.RoleReception,
			TotalPaid:    decimal.NewFromInt(650),
			RepairCost:   decimal.NewFromInt(500),
			DiagnosisFee: orderflow.DefaultDiagnosisFee,
		})
		assert.NoError(t, err)
	})
	t.Run("diagnóstico condonado no se cobra", func(t *testing.T) {
		err := orderflow.Validate(entity.OrderReadyForPickup, entity.OrderPaidAndDelivered, orderflow.Context{
			Role:       entity.RoleReception,
			TotalPaid:  decimal.NewFromInt(500),
			RepairCost: decimal.NewFromInt(500),
		})
		assert.NoError(t, err)
	})
	t.Run("rol se verifica antes que precondición", func(t *testing.T) {
		err := orderflow.Validate(entity.OrderDiagnosisDone, entity.OrderInRepair,
			orderflow.Context{Role: entity.RoleTechnician})
		assert.True(t, errors.Is(err, domain.ErrPermissionDenied))
	})
}

func TestNextAutomaticState(t *testing.T) {
	next, ok := orderflow.NextAutomaticState(entity.OrderRepairDone)
	require.True(t, ok)
	assert.Equal(t, entity.OrderReadyForPickup, next)

	_, ok = orderflow.NextAutomaticState(entity.OrderInRepair)
	assert.False(t, ok)

	assert.NoError(t, orderflow.Validate(entity.OrderRepairDone, entity.OrderReadyForPickup, orderflow.Context{Automatic: true}))
	assert.True(t, errors.Is(
		orderflow.Validate(entity.OrderInRepair, entity.OrderRepairDone, orderflow.Context{Automatic: true}),
		domain.ErrInvalidState))
}

func TestAllowedTargets(t *testing.T) {
	got := orderflow.AllowedTargets(entity.OrderWaitingDiagnosis, entity.RoleTechnician)
	assert.Equal(t, []entity.OrderStatus{entity.OrderInDiagnosis}, got)

	got = orderflow.AllowedTargets(entity.OrderWaitingDiagnosis, entity.RoleReception)
	assert.Equal(t, []entity.OrderStatus{entity.OrderCancelled}, got)
}

func TestParse(t *testing.T) {
	st, err := orderflow.ParseStatus("lista PARA entrega")
	require.NoError(t, err)
	assert.Equal(t, entity.OrderReadyForPickup, st)

	role, err := orderflow.ParseRole("tecnico")
	require.NoError(t, err)
	assert.Equal(t, entity.RoleTechnician, role)

	role, err = orderflow.ParseRole("admin")
	require.NoError(t, err)
	assert.Equal(t, entity.RoleAdmin, role)

	_, err = orderflow.ParseRole("bodeguero")
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}
