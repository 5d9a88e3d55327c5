package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus estado del flujo de reparación.
type OrderStatus string

const (
	OrderWaitingDiagnosis OrderStatus = "Esperando diagnóstico"
	OrderInDiagnosis      OrderStatus = "En diagnóstico"
	OrderDiagnosisDone    OrderStatus = "Diagnóstico terminado"
	OrderWaitingApproval  OrderStatus = "Esperando aprobación"
	OrderInRepair         OrderStatus = "En reparación"
	OrderRepairDone       OrderStatus = "Reparación terminada"
	OrderReadyForPickup   OrderStatus = "Lista para entrega"
	OrderPaidAndDelivered OrderStatus = "Pagado y entregado"
	OrderCancelled        OrderStatus = "Cancelada"
)

// OrderStatuses en orden del flujo (Cancelada al final).
var OrderStatuses = []OrderStatus{
	OrderWaitingDiagnosis, OrderInDiagnosis, OrderDiagnosisDone, OrderWaitingApproval,
	OrderInRepair, OrderRepairDone, OrderReadyForPickup, OrderPaidAndDelivered, OrderCancelled,
}

// Prioridades de orden.
const (
	PriorityNormal = "Normal"
	PriorityHigh   = "Alta"
	PriorityUrgent = "Urgente"
)

// ServiceOrder orden de servicio de reparación.
type ServiceOrder struct {
	ID             string
	Folio          string // RS-OS-<n>
	ClientID       string
	EquipmentID    string
	TechnicianID   string
	Status         OrderStatus
	Priority       string
	Diagnosis      string
	ClientApproved bool
	DiagnosisFee   decimal.Decimal
	RepairCost     decimal.Decimal
	TotalAmount    decimal.Decimal // montoTotal; cero = aún sin definir
	PaidAmount     decimal.Decimal // Σ pagos (derivado)
	Balance        decimal.Decimal // saldoPendiente = total - pagado
	PaymentStatus  string
	CreatedBy      string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	DeliveredAt    *time.Time
}

// OrderHistory registro de una transición de estado.
type OrderHistory struct {
	ID        string
	OrderID   string
	From      OrderStatus
	To        OrderStatus
	ActorID   string
	Automatic bool
	Notes     string
	CreatedAt time.Time
}
