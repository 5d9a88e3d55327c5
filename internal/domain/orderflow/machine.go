// Package orderflow define la máquina de estados de las órdenes de servicio:
// qué transiciones existen, qué rol puede ejecutarlas y qué precondiciones de
// negocio (diagnóstico, aprobación, saldo) deben cumplirse.
package orderflow

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/taller-api/internal/domain"
	"github.com/jhoicas/taller-api/internal/domain/entity"
	"github.com/jhoicas/taller-api/pkg/textnorm"
)

// DefaultDiagnosisFee costo de diagnóstico usado cuando la orden no define otro.
var DefaultDiagnosisFee = decimal.NewFromInt(150)

type edge struct {
	from, to entity.OrderStatus
}

type permKey struct {
	from, to entity.OrderStatus
	role     entity.Role
}

type rule struct {
	roles     []entity.Role
	automatic bool
}

var (
	tech  = entity.RoleTechnician
	recep = entity.RoleReception
	admin = entity.RoleAdmin
)

// transitions tabla fija de aristas dirigidas. Cancelada se agrega abajo para todo estado no terminal.
var transitions = map[edge]rule{
	{entity.OrderWaitingDiagnosis, entity.OrderInDiagnosis}:    {roles: []entity.Role{tech, admin}},
	{entity.OrderInDiagnosis, entity.OrderDiagnosisDone}:       {roles: []entity.Role{tech, admin}},
	{entity.OrderDiagnosisDone, entity.OrderWaitingApproval}:   {roles: []entity.Role{tech, recep, admin}},
	{entity.OrderDiagnosisDone, entity.OrderInRepair}:          {roles: []entity.Role{recep, admin}}, // aprobación en mostrador
	{entity.OrderWaitingApproval, entity.OrderInRepair}:        {roles: []entity.Role{tech, recep, admin}},
	{entity.OrderInRepair, entity.OrderRepairDone}:             {roles: []entity.Role{tech, admin}},
	{entity.OrderRepairDone, entity.OrderReadyForPickup}:       {roles: []entity.Role{tech, recep, admin}, automatic: true},
	{entity.OrderReadyForPickup, entity.OrderPaidAndDelivered}: {roles: []entity.Role{recep, admin}},
}

var permissions = map[permKey]struct{}{}

func init() {
	for _, s := range entity.OrderStatuses {
		if !IsTerminal(s) {
			transitions[edge{s, entity.OrderCancelled}] = rule{roles: []entity.Role{recep, admin}}
		}
	}
	for e, r := range transitions {
		for _, role := range r.roles {
			permissions[permKey{e.from, e.to, role}] = struct{}{}
		}
	}
}

// Context datos de negocio necesarios para evaluar una transición.
type Context struct {
	Role           entity.Role
	Automatic      bool // transición disparada por el sistema, sin actor
	HasDiagnosis   bool
	ClientApproved bool
	TotalPaid      decimal.Decimal
	RepairCost     decimal.Decimal
	DiagnosisFee   decimal.Decimal // tal como quedó en la orden; cero es condonado
}

// IsTerminal Pagado y entregado o Cancelada.
func IsTerminal(s entity.OrderStatus) bool {
	return s == entity.OrderPaidAndDelivered || s == entity.OrderCancelled
}

// IsValidTransition indica si existe la arista from→to.
func IsValidTransition(from, to entity.OrderStatus) bool {
	if IsTerminal(from) {
		return false
	}
	_, ok := transitions[edge{from, to}]
	return ok
}

// HasPermission indica si el rol puede ejecutar from→to.
func HasPermission(from, to entity.OrderStatus, role entity.Role) bool {
	_, ok := permissions[permKey{from, to, role}]
	return ok
}

// NextAutomaticState devuelve el estado al que se avanza sin intervención del actor.
func NextAutomaticState(from entity.OrderStatus) (entity.OrderStatus, bool) {
	for e, r := range transitions {
		if e.from == from && r.automatic {
			return e.to, true
		}
	}
	return "", false
}

// Validate comprueba existencia de la arista, luego rol, luego precondiciones.
func Validate(from, to entity.OrderStatus, ctx Context) error {
	if IsTerminal(from) {
		return domain.InvalidState(fmt.Sprintf("la orden ya está en estado terminal %q", from), string(from))
	}
	r, ok := transitions[edge{from, to}]
	if !ok {
		return domain.InvalidState(fmt.Sprintf("transición no permitida de %q a %q", from, to), string(from))
	}
	if ctx.Automatic {
		if !r.automatic {
			return domain.InvalidState(fmt.Sprintf("la transición a %q no es automática", to), string(from))
		}
	} else if !HasPermission(from, to, ctx.Role) {
		return domain.NewError(domain.ErrPermissionDenied,
			fmt.Sprintf("el rol %q no puede mover la orden de %q a %q", ctx.Role, from, to), string(ctx.Role))
	}
	return checkPreconditions(to, ctx)
}

func checkPreconditions(to entity.OrderStatus, ctx Context) error {
	switch to {
	case entity.OrderWaitingApproval:
		if !ctx.HasDiagnosis {
			return domain.PreconditionFailed(domain.PreconditionDiagnosisMissing)
		}
	case entity.OrderInRepair:
		if !ctx.ClientApproved {
			return domain.PreconditionFailed(domain.PreconditionApprovalMissing)
		}
	case entity.OrderPaidAndDelivered:
		if ctx.TotalPaid.LessThan(ctx.RepairCost.Add(ctx.DiagnosisFee)) {
			return domain.PreconditionFailed(domain.PreconditionBalanceUnpaid)
		}
	}
	return nil
}

// AllowedTargets estados a los que el rol puede mover la orden desde from, en orden del flujo.
func AllowedTargets(from entity.OrderStatus, role entity.Role) []entity.OrderStatus {
	var out []entity.OrderStatus
	for _, to := range entity.OrderStatuses {
		if IsValidTransition(from, to) && HasPermission(from, to, role) {
			out = append(out, to)
		}
	}
	return out
}

// ParseStatus reconoce un estado sin distinguir mayúsculas ni acentos.
func ParseStatus(s string) (entity.OrderStatus, error) {
	for _, st := range entity.OrderStatuses {
		if textnorm.Equal(string(st), s) {
			return st, nil
		}
	}
	return "", domain.NewError(domain.ErrInvalidInput, "estado de orden desconocido", s)
}

// ParseRole reconoce un rol sin distinguir mayúsculas ni acentos ("admin" se acepta como alias).
func ParseRole(s string) (entity.Role, error) {
	if textnorm.Equal(s, "admin") {
		return entity.RoleAdmin, nil
	}
	for _, r := range entity.Roles {
		if textnorm.Equal(string(r), s) {
			return r, nil
		}
	}
	return "", domain.NewError(domain.ErrInvalidInput, "rol desconocido", s)
}
