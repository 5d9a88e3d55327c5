package dto

import "time"

// CreateTicketRequest body para POST /api/tickets (checkout del carrito).
type CreateTicketRequest struct {
	Items []TicketItemRequest `json:"items" validate:"required,min=1,dive"`
}

// TicketItemRequest línea solicitada.
type TicketItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gt=0"`
}

// ValidateTicketRequest body para POST /api/tickets/validate.
type ValidateTicketRequest struct {
	Code string `json:"code" validate:"required,len=6,alphanum"`
}

// TicketResponse ticket con sus líneas resueltas.
type TicketResponse struct {
	ID          string               `json:"id"`
	Code        string               `json:"code"`
	UserID      string               `json:"user_id"`
	Status      string               `json:"status"`
	CreatedAt   time.Time            `json:"created_at"`
	ExpiresAt   time.Time            `json:"expires_at"`
	CompletedAt *time.Time           `json:"completed_at,omitempty"`
	ValidatedBy string               `json:"validated_by,omitempty"`
	Items       []TicketItemResponse `json:"items"`
}

// TicketItemResponse línea con datos del producto.
type TicketItemResponse struct {
	ProductID string `json:"product_id"`
	SKU       string `json:"sku"`
	Name      string `json:"name"`
	Category  string `json:"category"`
	Quantity  int    `json:"quantity"`
}

// ExpireResponse resultado del barrido de tickets vencidos.
type ExpireResponse struct {
	Expired int `json:"expired"`
}
