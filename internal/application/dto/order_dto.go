package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateOrderRequest recepción de equipo.
type CreateOrderRequest struct {
	ClientID     string           `json:"client_id" validate:"required"`
	EquipmentID  string           `json:"equipment_id" validate:"required"`
	TechnicianID string           `json:"technician_id"`
	Priority     string           `json:"priority" validate:"omitempty,oneof=Normal Alta Urgente"`
	DiagnosisFee *decimal.Decimal `json:"diagnosis_fee,omitempty"`
	TotalAmount  *decimal.Decimal `json:"total_amount,omitempty"`
}

// DiagnosisRequest registra diagnóstico y costo de reparación.
type DiagnosisRequest struct {
	Diagnosis  string          `json:"diagnosis" validate:"notblank"`
	RepairCost decimal.Decimal `json:"repair_cost"`
}

// ApprovalRequest aprobación (o rechazo) del cliente.
type ApprovalRequest struct {
	Approved bool `json:"approved"`
}

// TransitionRequest cambio de estado solicitado por un actor.
type TransitionRequest struct {
	Status string `json:"status" validate:"required"`
	Notes  string `json:"notes"`
}

// OrderResponse orden de servicio.
type OrderResponse struct {
	ID             string          `json:"id"`
	Folio          string          `json:"folio"`
	ClientID       string          `json:"client_id"`
	EquipmentID    string          `json:"equipment_id"`
	TechnicianID   string          `json:"technician_id,omitempty"`
	Status         string          `json:"status"`
	Priority       string          `json:"priority"`
	Diagnosis      string          `json:"diagnosis,omitempty"`
	ClientApproved bool            `json:"client_approved"`
	DiagnosisFee   decimal.Decimal `json:"diagnosis_fee"`
	RepairCost     decimal.Decimal `json:"repair_cost"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	PaidAmount     decimal.Decimal `json:"paid_amount"`
	Balance        decimal.Decimal `json:"balance"`
	PaymentStatus  string          `json:"payment_status"`
	AllowedNext    []string        `json:"allowed_next,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	DeliveredAt    *time.Time      `json:"delivered_at,omitempty"`
}

// OrderHistoryResponse entrada del historial de estados.
type OrderHistoryResponse struct {
	From      string    `json:"from"`
	To        string    `json:"to"`
	ActorID   string    `json:"actor_id,omitempty"`
	Automatic bool      `json:"automatic"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
