package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")
	ErrInsufficientStock  = errors.New("stock insuficiente")
	ErrInvalidState       = errors.New("estado inválido para la operación")
	ErrExpired            = errors.New("ticket expirado")
	ErrPermissionDenied   = errors.New("rol sin permiso para la transición")
	ErrPreconditionFailed = errors.New("precondición no cumplida")
	ErrInvalidAmount      = errors.New("monto inválido")
)

// Nombres de precondiciones del flujo de órdenes.
const (
	PreconditionDiagnosisMissing = "diagnosis-missing"
	PreconditionApprovalMissing  = "approval-missing"
	PreconditionBalanceUnpaid    = "balance-unpaid"
)

// Error agrega mensaje legible y detalle máquina a un tipo de error (Kind).
// errors.Is(err, domain.ErrX) funciona a través de Unwrap.
type Error struct {
	Kind    error
	Message string
	Detail  string
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Detail)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Kind }

// NewError construye un error de dominio tipado.
func NewError(kind error, message, detail string) *Error {
	if message == "" {
		message = kind.Error()
	}
	return &Error{Kind: kind, Message: message, Detail: detail}
}

// NotFound recurso inexistente (ticket, producto, orden, venta).
func NotFound(resource, id string) *Error {
	return NewError(ErrNotFound, resource+" no encontrado", id)
}

// InsufficientStock nombra el producto que no alcanza.
func InsufficientStock(productID string, available, requested int) *Error {
	return NewError(ErrInsufficientStock,
		fmt.Sprintf("stock insuficiente: disponible %d, solicitado %d", available, requested),
		productID)
}

// InvalidState expone el estado actual del recurso.
func InvalidState(message, current string) *Error {
	return NewError(ErrInvalidState, message, current)
}

// PreconditionFailed nombra la condición incumplida (ej. diagnosis-missing).
func PreconditionFailed(condition string) *Error {
	return NewError(ErrPreconditionFailed, "precondición no cumplida", condition)
}

// Code devuelve el código estable (máquina) de un error.
func Code(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, ErrInsufficientStock):
		return "INSUFFICIENT_STOCK"
	case errors.Is(err, ErrInvalidState):
		return "INVALID_STATE"
	case errors.Is(err, ErrExpired):
		return "EXPIRED"
	case errors.Is(err, ErrPermissionDenied):
		return "PERMISSION_DENIED"
	case errors.Is(err, ErrPreconditionFailed):
		return "PRECONDITION_FAILED"
	case errors.Is(err, ErrInvalidAmount):
		return "INVALID_AMOUNT"
	case errors.Is(err, ErrInvalidInput):
		return "VALIDATION"
	case errors.Is(err, ErrDuplicate):
		return "DUPLICATE"
	case errors.Is(err, ErrConflict):
		return "CONFLICT"
	case errors.Is(err, ErrUnauthorized):
		return "UNAUTHORIZED"
	case errors.Is(err, ErrForbidden):
		return "FORBIDDEN"
	default:
		return "INTERNAL"
	}
}

// DetailOf extrae el detalle máquina si err es un *Error.
func DetailOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Detail
	}
	return ""
}
