package dto

import "time"

// RegisterMovementRequest body para POST /api/inventory/movements.
// En Ajuste, quantity es el nuevo total absoluto.
type RegisterMovementRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Type      string `json:"type" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gte=0"`
	Motive    string `json:"motive" validate:"max=255"`
	OrderID   string `json:"order_id,omitempty"`
}

// StockResponse estado de stock de un producto.
type StockResponse struct {
	ProductID string `json:"product_id"`
	SKU       string `json:"sku"`
	Name      string `json:"name"`
	Stock     int    `json:"stock"`
	Reserved  int    `json:"reserved"`
	Available int    `json:"available"`
	MinStock  int    `json:"min_stock"`
	Status    string `json:"status"`
	Active    bool   `json:"active"`
}

// MovementResponse movimiento de inventario.
type MovementResponse struct {
	ID          string    `json:"id"`
	ProductID   string    `json:"product_id"`
	Type        string    `json:"type"`
	Quantity    int       `json:"quantity"`
	StockBefore int       `json:"stock_before"`
	StockAfter  int       `json:"stock_after"`
	Motive      string    `json:"motive,omitempty"`
	OrderID     string    `json:"order_id,omitempty"`
	TicketID    string    `json:"ticket_id,omitempty"`
	SaleID      string    `json:"sale_id,omitempty"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// MovementListResponse listado paginado de movimientos.
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// ReplenishmentSuggestion fila de la lista de reposición. Priority 1 es la más urgente.
type ReplenishmentSuggestion struct {
	ProductID         string `json:"product_id"`
	SKU               string `json:"sku"`
	Name              string `json:"name"`
	Category          string `json:"category"`
	Stock             int    `json:"stock"`
	Reserved          int    `json:"reserved"`
	Available         int    `json:"available"`
	MinStock          int    `json:"min_stock"`
	Status            string `json:"status"`
	IdealStock        int    `json:"ideal_stock"`
	SuggestedOrderQty int    `json:"suggested_order_qty"`
	UnitsOutLast90    int    `json:"units_out_last_90_days"`
	Priority          int    `json:"priority"`
}
