package entity

import "time"

// Tipos de movimiento de inventario.
const (
	MovementTypeEntrada    = "Entrada"
	MovementTypeSalida     = "Salida"
	MovementTypeAjuste     = "Ajuste"
	MovementTypeDevolucion = "Devolución"
)

// InventoryMovement registro inmutable de un cambio en el stock total de un producto.
// Quantity es el efecto con signo sobre Product.Stock (negativo en salidas).
type InventoryMovement struct {
	ID          string
	ProductID   string
	Type        string
	Quantity    int
	StockBefore int
	StockAfter  int
	Motive      string
	OrderID     string // orden de servicio relacionada (opcional)
	TicketID    string // ticket de retiro relacionado (opcional)
	SaleID      string // venta relacionada (opcional)
	CreatedBy   string
	CreatedAt   time.Time
}
